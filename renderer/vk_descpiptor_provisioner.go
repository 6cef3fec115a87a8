package renderer

import (
	"GPU_mesh_renderer/common"

	vk "github.com/goki/vulkan"
)

// DescriptorProvisioner owns the uniform buffer descriptors: one layout with a single vertex stage uniform
// binding, a pool sized for one set per swapchain image, and the sets themselves.
type DescriptorProvisioner struct {
	ctx *common.Context

	layout vk.DescriptorSetLayout
	pool   vk.DescriptorPool
	sets   []vk.DescriptorSet
}

func NewDescriptorProvisioner(ctx *common.Context) *DescriptorProvisioner {
	return &DescriptorProvisioner{ctx: ctx}
}

func uniformLayoutBinding() vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:            0, // layout(binding = 0) in the vertex shader
		DescriptorType:     vk.DescriptorTypeUniformBuffer,
		DescriptorCount:    1,
		StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		PImmutableSamplers: nil,
	}
}

func uniformPoolSizes(setCount uint32) []vk.DescriptorPoolSize {
	return []vk.DescriptorPoolSize{{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: setCount,
	}}
}

// uniformWrite points binding 0 of set at the first size bytes of buf.
func uniformWrite(set vk.DescriptorSet, buf vk.Buffer, size vk.DeviceSize) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		PNext:           nil,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buf,
			Offset: 0,
			Range:  size,
		}},
	}
}

func (dp *DescriptorProvisioner) createDescriptorSetLayout() {
	bindings := []vk.DescriptorSetLayoutBinding{uniformLayoutBinding()}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		PNext:        nil,
		Flags:        0,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	dsl, err := common.VkCreateDescriptorSetLayout(dp.ctx.Device, &layoutInfo, dp.ctx.Alloc)
	common.Check(err, "create descriptor set layout")
	dp.layout = dsl
}

func (dp *DescriptorProvisioner) createDescriptorPool(setCount uint32) {
	poolSizes := uniformPoolSizes(setCount)
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       setCount,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	pool, err := common.VkCreateDescriptorPool(dp.ctx.Device, &poolInfo, dp.ctx.Alloc)
	common.Check(err, "create descriptor pool")
	dp.pool = pool
}

// createDescriptorSets allocates one set per uniform buffer and binds set i to buffer i.
func (dp *DescriptorProvisioner) createDescriptorSets(ubos []*common.Buffer) {
	layouts := make([]vk.DescriptorSetLayout, len(ubos))
	for i := range layouts {
		layouts[i] = dp.layout
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     dp.pool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        layouts,
	}
	sets, err := common.VkAllocateDescriptorSets(dp.ctx.Device, &allocInfo)
	common.Check(err, "allocate descriptor sets")
	dp.sets = sets

	writes := make([]vk.WriteDescriptorSet, len(ubos))
	for i, ubo := range ubos {
		writes[i] = uniformWrite(dp.sets[i], ubo.Handle, ubo.Size)
	}
	vk.UpdateDescriptorSets(dp.ctx.Device, uint32(len(writes)), writes, 0, nil)
}

// Destroy releases pool (and with it the sets) and layout.
func (dp *DescriptorProvisioner) Destroy() {
	vk.DestroyDescriptorPool(dp.ctx.Device, dp.pool, dp.ctx.Alloc)
	vk.DestroyDescriptorSetLayout(dp.ctx.Device, dp.layout, dp.ctx.Alloc)
	dp.sets = nil
}
