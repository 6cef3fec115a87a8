package common

import (
	"math"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers and
// images on the selected device. Every resource is a handle paired with the one allocation bound to it.

// FindMemoryType returns the first memory type allowed by typeBits whose property flags contain all of required.
func FindMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	count := memProps.MemoryTypeCount
	if count > uint32(len(memProps.MemoryTypes)) {
		count = uint32(len(memProps.MemoryTypes))
	}
	for i := uint32(0); i < count; i++ {
		ofType := typeBits&(1<<i) != 0
		hasProperties := memProps.MemoryTypes[i].PropertyFlags&required == required
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "type bits %032b, properties %b", typeBits, required)
}

func allocateAndBind(ctx *Context, req vk.MemoryRequirements, props vk.MemoryPropertyFlags, what string) vk.DeviceMemory {
	typeIdx, err := FindMemoryType(ctx.MemProps, req.MemoryTypeBits, props)
	Checkf(err, "select memory type for %s", what)
	LogDebug("%s: %s -> %d %s", what, toStringMemoryRequirements(req), typeIdx,
		toStringMemoryType(ctx.MemProps.MemoryTypes[typeIdx]))
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIdx,
	}
	deviceMem, err := VkAllocateMemory(ctx.Device, &allocInfo, ctx.Alloc)
	Checkf(err, "allocate %s memory", what)
	return deviceMem
}

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	Props     vk.MemoryPropertyFlags
}

// CreateBuffer creates the buffer, picks a memory type satisfying both its requirements and props, allocates
// and binds at offset 0.
func CreateBuffer(ctx *Context, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) *Buffer {
	if size == 0 {
		Fatalf("create buffer: size must be positive")
	}
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  size,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}
	buf, err := VkCreateBuffer(ctx.Device, &bufferInfo, ctx.Alloc)
	Check(err, "create buffer")

	deviceMem := allocateAndBind(ctx, ReadBufferMemoryRequirements(ctx.Device, buf), props, "buffer")
	Check(VkBindBufferMemory(ctx.Device, buf, deviceMem, 0), "bind buffer memory")

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		Props:     props,
	}
}

func (b *Buffer) HostVisible() bool {
	return b.Props&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0
}

func (b *Buffer) HostCoherent() bool {
	return b.Props&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0
}

// Write copies payload to the start of a host visible buffer: map -> copy -> unmap. Non coherent memory is
// flushed before unmapping.
func (b *Buffer) Write(ctx *Context, payload []byte) error {
	if !b.HostVisible() {
		return errors.New("buffer memory is not host visible")
	}
	if vk.DeviceSize(len(payload)) > b.Size {
		return errors.Errorf("payload of %d bytes exceeds buffer of %d bytes", len(payload), b.Size)
	}
	region := b.Region(ctx)
	mem, err := region.Map()
	if err != nil {
		return err
	}
	copy(mem, payload)
	region.Unmap()
	return nil
}

// Destroy frees the memory, then destroys the handle.
func (b *Buffer) Destroy(ctx *Context) {
	vk.FreeMemory(ctx.Device, b.DeviceMem, ctx.Alloc)
	vk.DestroyBuffer(ctx.Device, b.Handle, ctx.Alloc)
	b.DeviceMem = vk.NullDeviceMemory
	b.Handle = vk.NullBuffer
}

// MappedRegion is host memory the GPU reads from. Map exposes it as a byte slice that is only valid until Unmap.
type MappedRegion interface {
	Map() ([]byte, error)
	Unmap()
}

// Region exposes the whole buffer as a MappedRegion.
func (b *Buffer) Region(ctx *Context) MappedRegion {
	return &bufferRegion{ctx: ctx, buf: b}
}

type bufferRegion struct {
	ctx *Context
	buf *Buffer
}

func (r *bufferRegion) Map() ([]byte, error) {
	p, err := VkMapMemory(r.ctx.Device, r.buf.DeviceMem, 0, r.buf.Size, 0)
	if err != nil {
		return nil, errors.Wrap(err, "map buffer memory")
	}
	return unsafe.Slice((*byte)(p), int(r.buf.Size)), nil
}

func (r *bufferRegion) Unmap() {
	if !r.buf.HostCoherent() {
		rng := vk.MappedMemoryRange{
			SType:  vk.StructureTypeMappedMemoryRange,
			Memory: r.buf.DeviceMem,
			Offset: 0,
			Size:   vk.DeviceSize(math.MaxUint64),
		}
		CheckResult(vk.FlushMappedMemoryRanges(r.ctx.Device, 1, []vk.MappedMemoryRange{rng}), "flush buffer memory")
	}
	vk.UnmapMemory(r.ctx.Device, r.buf.DeviceMem)
}

// ImageSpec describes a single mip, single layer 2D image.
type ImageSpec struct {
	Width, Height uint32
	Format        vk.Format
	Samples       vk.SampleCountFlagBits
	Tiling        vk.ImageTiling
	Usage         vk.ImageUsageFlags
	Props         vk.MemoryPropertyFlags
}

func (s ImageSpec) Validate() error {
	switch {
	case s.Width == 0 || s.Height == 0:
		return errors.Errorf("image extent %dx%d is empty", s.Width, s.Height)
	case s.Format == vk.FormatUndefined:
		return errors.New("image format is undefined")
	case s.Usage == 0:
		return errors.New("image usage is empty")
	}
	return nil
}

type Image struct {
	Handle    vk.Image
	DeviceMem vk.DeviceMemory
	Format    vk.Format
	Extent    vk.Extent2D
	Samples   vk.SampleCountFlagBits
}

// CreateImage follows the same binding algorithm as CreateBuffer.
func CreateImage(ctx *Context, spec ImageSpec) *Image {
	Check(spec.Validate(), "create image")
	if spec.Samples == 0 {
		spec.Samples = vk.SampleCount1Bit
	}
	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		PNext:     nil,
		Flags:     0,
		ImageType: vk.ImageType2d,
		Format:    spec.Format,
		Extent: vk.Extent3D{
			Width:  spec.Width,
			Height: spec.Height,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               spec.Samples,
		Tiling:                spec.Tiling,
		Usage:                 spec.Usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		InitialLayout:         vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(ctx.Device, imageInfo, ctx.Alloc)
	Check(err, "create image")

	imgMemory := allocateAndBind(ctx, ReadImageMemoryRequirements(ctx.Device, img), spec.Props, "image")
	Check(VkBindImageMemory(ctx.Device, img, imgMemory, 0), "bind image memory")
	return &Image{
		Handle:    img,
		DeviceMem: imgMemory,
		Format:    spec.Format,
		Extent:    vk.Extent2D{Width: spec.Width, Height: spec.Height},
		Samples:   spec.Samples,
	}
}

// Destroy frees the memory, then destroys the handle.
func (img *Image) Destroy(ctx *Context) {
	vk.FreeMemory(ctx.Device, img.DeviceMem, ctx.Alloc)
	vk.DestroyImage(ctx.Device, img.Handle, ctx.Alloc)
	img.DeviceMem = vk.NullDeviceMemory
	img.Handle = vk.NullImage
}

// ViewSpec selects the image, format and aspect of a view. A zero ViewType means 2D, the renderer never builds 1D
// views. Components defaults to identity.
type ViewSpec struct {
	Image      vk.Image
	Format     vk.Format
	Aspect     vk.ImageAspectFlags
	ViewType   vk.ImageViewType
	Components *vk.ComponentMapping
}

var identityMapping = vk.ComponentMapping{
	R: vk.ComponentSwizzleIdentity,
	G: vk.ComponentSwizzleIdentity,
	B: vk.ComponentSwizzleIdentity,
	A: vk.ComponentSwizzleIdentity,
}

// ViewCreateInfo builds the create info of a view over one mip level and one array layer.
func ViewCreateInfo(spec ViewSpec) vk.ImageViewCreateInfo {
	components := identityMapping
	if spec.Components != nil {
		components = *spec.Components
	}
	viewType := spec.ViewType
	if viewType == vk.ImageViewType1d {
		viewType = vk.ImageViewType2d
	}
	return vk.ImageViewCreateInfo{
		SType:      vk.StructureTypeImageViewCreateInfo,
		PNext:      nil,
		Flags:      0,
		Image:      spec.Image,
		ViewType:   viewType,
		Format:     spec.Format,
		Components: components,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     spec.Aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}

func CreateImageView(ctx *Context, spec ViewSpec) vk.ImageView {
	createInfo := ViewCreateInfo(spec)
	imgView, err := VkCreateImageView(ctx.Device, &createInfo, ctx.Alloc)
	Check(err, "create image view")
	return imgView
}
