package renderer

import (
	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"

	vk "github.com/goki/vulkan"
)

// These functions abstract from the raw Vulkan API by assuming some reasonable defaults where possible. They
// differ from the VKS functions in vk_simplifications.go by being tied to a Core and its command pool.

func (c *Core) beginSingleTimeCommands() vk.CommandBuffer {
	cmdBuffer, err := common.VKBeginSingleTimeCommands(c.ctx.Device, c.commandPool)
	common.Check(err, "begin single time command buffer")
	return cmdBuffer
}

func (c *Core) endSingleTimeCommands(cmdBuf vk.CommandBuffer) {
	err := common.VKEndSingleTimeCommands(c.ctx.Device, c.commandPool, c.ctx.Queue, cmdBuf)
	common.Check(err, "submit single time command buffer")
}

// copyBuffer records a copy of the first s bytes of src into dst and waits for the queue to finish it.
func (c *Core) copyBuffer(src *common.Buffer, dst *common.Buffer, s vk.DeviceSize) {
	cmdBuf := c.beginSingleTimeCommands()
	copyRegions := []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      s,
		},
	}
	vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	c.endSingleTimeCommands(cmdBuf)
}

func (c *Core) createCommandPool() {
	commandPool, err := common.VKSCreateCommandPool(
		c.ctx.Device,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		c.ctx.QFamilies.Graphics,
		c.ctx.Alloc,
	)
	common.Check(err, "create command pool")
	c.commandPool = commandPool
	c.releases.push("command pool", func() {
		vk.DestroyCommandPool(c.ctx.Device, c.commandPool, c.ctx.Alloc)
	})
}

func (c *Core) createCommandBuffer() {
	buffers, err := common.VKAllocateCommandBuffersPrimary(c.ctx.Device, c.commandPool, 1)
	common.Check(err, "allocate command buffer")
	c.commandBuffer = buffers[0]
	c.releases.push("command buffer", func() {
		vk.FreeCommandBuffers(c.ctx.Device, c.commandPool, 1, buffers)
	})
}

// createSyncObjects creates the two semaphores and the in flight fence of the single frame in flight. The
// fence starts signaled so that the first wait returns at once.
func (c *Core) createSyncObjects() {
	var err error
	c.imageAvailable, err = common.VkCreateSemaphore(c.ctx.Device, c.ctx.Alloc)
	common.Check(err, "create image available semaphore")
	c.releases.push("image available semaphore", func() {
		vk.DestroySemaphore(c.ctx.Device, c.imageAvailable, c.ctx.Alloc)
	})
	c.renderFinished, err = common.VkCreateSemaphore(c.ctx.Device, c.ctx.Alloc)
	common.Check(err, "create render finished semaphore")
	c.releases.push("render finished semaphore", func() {
		vk.DestroySemaphore(c.ctx.Device, c.renderFinished, c.ctx.Alloc)
	})
	c.inFlight, err = common.VkCreateFence(c.ctx.Device, vk.FenceCreateFlags(vk.FenceCreateSignaledBit), c.ctx.Alloc)
	common.Check(err, "create in flight fence")
	c.releases.push("in flight fence", func() {
		vk.DestroyFence(c.ctx.Device, c.inFlight, c.ctx.Alloc)
	})
}

// createUniformBuffers creates one host visible uniform buffer per swapchain image.
func (c *Core) createUniformBuffers() {
	memProps := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	n := len(c.swapChain.Images)
	c.uniformBuffers = make([]*common.Buffer, n)
	regions := make([]common.MappedRegion, n)
	for i := 0; i < n; i++ {
		c.uniformBuffers[i] = common.CreateBuffer(
			c.ctx,
			model.SizeOfPerFrameData,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			memProps,
		)
		regions[i] = c.uniformBuffers[i].Region(c.ctx)
	}
	c.uniforms = NewUniformSet(regions)
	c.releases.push("uniform buffers", func() {
		for _, b := range c.uniformBuffers {
			b.Destroy(c.ctx)
		}
	})
	c.log.Debug("Created uniform buffers", "count", n, "size", model.SizeOfPerFrameData)
}

func (c *Core) createDescriptors() {
	c.descriptors = NewDescriptorProvisioner(c.ctx)
	c.descriptors.createDescriptorSetLayout()
	c.descriptors.createDescriptorPool(uint32(len(c.uniformBuffers)))
	c.descriptors.createDescriptorSets(c.uniformBuffers)
	c.releases.push("descriptors", c.descriptors.Destroy)
}
