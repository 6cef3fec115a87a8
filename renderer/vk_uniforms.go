package renderer

import (
	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"

	"github.com/pkg/errors"
)

// UniformSet holds one uniform region per swapchain image. Writing image i never touches the region of
// another image, which may still be read by a frame in flight.
type UniformSet struct {
	regions []common.MappedRegion
}

func NewUniformSet(regions []common.MappedRegion) *UniformSet {
	return &UniformSet{regions: regions}
}

func (u *UniformSet) Len() int {
	return len(u.regions)
}

// Write maps the region of imageIdx, copies data and unmaps it again.
func (u *UniformSet) Write(imageIdx uint32, data *model.PerFrameData) error {
	region, err := perImage(u.regions, imageIdx, "uniform region")
	if err != nil {
		return err
	}
	mem, err := region.Map()
	if err != nil {
		return err
	}
	defer region.Unmap()

	payload := data.Bytes()
	if len(mem) < len(payload) {
		return errors.Errorf("uniform region %d holds %d bytes, %d needed", imageIdx, len(mem), len(payload))
	}
	copy(mem, payload)
	return nil
}
