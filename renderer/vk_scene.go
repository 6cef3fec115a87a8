package renderer

import (
	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/meshio"
	"GPU_mesh_renderer/model"

	vk "github.com/goki/vulkan"
)

// meshBuffers are the device copies of one batch: a vertex buffer per attribute and the index buffer.
type meshBuffers struct {
	name       string
	positions  *common.Buffer
	colors     *common.Buffer
	normals    *common.Buffer
	indices    *common.Buffer
	indexCount uint32
}

func (m *meshBuffers) vertexBuffers() []vk.Buffer {
	return []vk.Buffer{m.positions.Handle, m.colors.Handle, m.normals.Handle}
}

func (m *meshBuffers) destroy(ctx *common.Context) {
	for _, b := range []*common.Buffer{m.indices, m.normals, m.colors, m.positions} {
		if b != nil {
			b.Destroy(ctx)
		}
	}
}

// LoadBatch returns the mesh file when one is configured, the named primitive otherwise.
func LoadBatch(meshPath, primitive string) (*model.Batch, error) {
	if meshPath != "" {
		return meshio.LoadMesh(meshPath)
	}
	b, err := model.Primitive(primitive)
	if err != nil {
		return nil, err
	}
	return b, b.Validate()
}

// uploadBatch copies every attribute of b through a host visible staging buffer into device local memory.
func (c *Core) uploadBatch(b *model.Batch) *meshBuffers {
	common.Check(b.Validate(), "upload batch")
	vertexUsage := vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	m := &meshBuffers{
		name:       b.Name,
		positions:  c.uploadBuffer(b.PositionBytes(), vertexUsage),
		colors:     c.uploadBuffer(b.ColorBytes(), vertexUsage),
		normals:    c.uploadBuffer(b.NormalBytes(), vertexUsage),
		indices:    c.uploadBuffer(b.IndexBytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)),
		indexCount: b.IndexCount(),
	}
	c.log.Info("Uploaded batch", "name", b.Name, "vertices", b.VertexCount(), "indices", m.indexCount)
	return m
}

func (c *Core) uploadBuffer(payload []byte, usage vk.BufferUsageFlags) *common.Buffer {
	bufSize := vk.DeviceSize(len(payload))
	stgBuf := common.CreateBuffer(
		c.ctx,
		bufSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	defer stgBuf.Destroy(c.ctx)
	common.Check(stgBuf.Write(c.ctx, payload), "fill staging buffer")

	dst := common.CreateBuffer(
		c.ctx,
		bufSize,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	c.copyBuffer(stgBuf, dst, bufSize)
	return dst
}

func (c *Core) createScene(b *model.Batch) {
	c.mesh = c.uploadBatch(b)
	c.releases.push("mesh buffers", func() { c.mesh.destroy(c.ctx) })
}
