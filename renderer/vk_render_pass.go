package renderer

import (
	"GPU_mesh_renderer/common"

	vk "github.com/goki/vulkan"
)

// renderPassLayout fixes the attachment order of the render pass and of every framebuffer built for it:
// [color, depth?, resolve?]. With a single sample the color attachment is the swapchain image itself.
type renderPassLayout struct {
	ColorFormat vk.Format
	DepthFormat vk.Format // vk.FormatUndefined without depth
	Samples     vk.SampleCountFlagBits
}

func (l renderPassLayout) HasDepth() bool {
	return l.DepthFormat != vk.FormatUndefined
}

func (l renderPassLayout) Multisampled() bool {
	return l.Samples != vk.SampleCount1Bit
}

func (l renderPassLayout) depthIndex() uint32 {
	return 1
}

func (l renderPassLayout) resolveIndex() uint32 {
	if l.HasDepth() {
		return 2
	}
	return 1
}

func (l renderPassLayout) AttachmentCount() int {
	n := 1
	if l.HasDepth() {
		n++
	}
	if l.Multisampled() {
		n++
	}
	return n
}

func (l renderPassLayout) attachments() []vk.AttachmentDescription {
	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         l.ColorFormat,
		Samples:        l.Samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	if l.Multisampled() {
		colorAttachment.FinalLayout = vk.ImageLayoutColorAttachmentOptimal
	}
	out := []vk.AttachmentDescription{colorAttachment}

	if l.HasDepth() {
		out = append(out, vk.AttachmentDescription{
			Flags:          0,
			Format:         l.DepthFormat,
			Samples:        l.Samples,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpClear,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
	}
	if l.Multisampled() {
		out = append(out, vk.AttachmentDescription{
			Flags:          0,
			Format:         l.ColorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		})
	}
	return out
}

func (l renderPassLayout) subpass() vk.SubpassDescription {
	subpass := vk.SubpassDescription{
		Flags:                0,
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		InputAttachmentCount: 0,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}
	if l.Multisampled() {
		subpass.PResolveAttachments = []vk.AttachmentReference{{
			Attachment: l.resolveIndex(),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}}
	}
	if l.HasDepth() {
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: l.depthIndex(),
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}
	return subpass
}

func (l renderPassLayout) dependency() vk.SubpassDependency {
	stages := vk.PipelineStageColorAttachmentOutputBit
	access := vk.AccessColorAttachmentWriteBit
	if l.HasDepth() {
		stages |= vk.PipelineStageEarlyFragmentTestsBit
		access |= vk.AccessDepthStencilAttachmentWriteBit
	}
	return vk.SubpassDependency{
		SrcSubpass:      vk.SubpassExternal,
		DstSubpass:      0,
		SrcStageMask:    vk.PipelineStageFlags(stages),
		DstStageMask:    vk.PipelineStageFlags(stages),
		SrcAccessMask:   0,
		DstAccessMask:   vk.AccessFlags(access),
		DependencyFlags: 0,
	}
}

// framebufferAttachments orders the views of one framebuffer like the render pass attachments.
func (l renderPassLayout) framebufferAttachments(color, depth, swapchainView vk.ImageView) []vk.ImageView {
	return orderAttachments(l, color, depth, swapchainView)
}

func orderAttachments[T any](l renderPassLayout, color, depth, swapchain T) []T {
	if !l.Multisampled() {
		color = swapchain
	}
	out := []T{color}
	if l.HasDepth() {
		out = append(out, depth)
	}
	if l.Multisampled() {
		out = append(out, swapchain)
	}
	return out
}

// clearValues has one entry per attachment. Only color and depth are cleared, the resolve entry is ignored.
func (l renderPassLayout) clearValues(color [4]float32) []vk.ClearValue {
	values := []vk.ClearValue{vk.NewClearValue(color[:])}
	if l.HasDepth() {
		values = append(values, vk.NewClearDepthStencil(1, 0))
	}
	if l.Multisampled() {
		values = append(values, vk.NewClearValue(color[:]))
	}
	return values
}

func (c *Core) createRenderPass() {
	attachments := c.layout.attachments()
	subpass := c.layout.subpass()
	dependency := c.layout.dependency()
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	var err error
	c.renderPass, err = common.VkCreateRenderPass(c.ctx.Device, &renderPassInfo, c.ctx.Alloc)
	common.Check(err, "create render pass")
	c.releases.push("render pass", func() {
		vk.DestroyRenderPass(c.ctx.Device, c.renderPass, c.ctx.Alloc)
	})
	c.log.Info("Created render pass", "attachments", len(attachments), "samples", common.ToStringSampleCount(c.layout.Samples), "depth", c.layout.HasDepth())
}

// createRenderTargets creates the multisampled color image and the depth image, both sized like the swapchain.
func (c *Core) createRenderTargets() {
	extent := c.swapChain.Extent
	if c.layout.Multisampled() {
		c.colorTarget = common.CreateImage(c.ctx, common.ImageSpec{
			Width:   extent.Width,
			Height:  extent.Height,
			Format:  c.layout.ColorFormat,
			Samples: c.layout.Samples,
			Tiling:  vk.ImageTilingOptimal,
			Usage:   vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit | vk.ImageUsageColorAttachmentBit),
			Props:   vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		})
		c.releases.push("msaa color image", func() { c.colorTarget.Destroy(c.ctx) })
		c.colorView = common.CreateImageView(c.ctx, common.ViewSpec{
			Image:  c.colorTarget.Handle,
			Format: c.layout.ColorFormat,
			Aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		})
		c.releases.push("msaa color view", func() { vk.DestroyImageView(c.ctx.Device, c.colorView, c.ctx.Alloc) })
	}
	if c.layout.HasDepth() {
		c.depthTarget = common.CreateImage(c.ctx, common.ImageSpec{
			Width:   extent.Width,
			Height:  extent.Height,
			Format:  c.layout.DepthFormat,
			Samples: c.layout.Samples,
			Tiling:  vk.ImageTilingOptimal,
			Usage:   vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
			Props:   vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		})
		c.releases.push("depth image", func() { c.depthTarget.Destroy(c.ctx) })
		aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if common.HasStencilComponent(c.layout.DepthFormat) {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		c.depthView = common.CreateImageView(c.ctx, common.ViewSpec{
			Image:  c.depthTarget.Handle,
			Format: c.layout.DepthFormat,
			Aspect: aspect,
		})
		c.releases.push("depth view", func() { vk.DestroyImageView(c.ctx.Device, c.depthView, c.ctx.Alloc) })
	}
}

// createFrameBuffers builds one framebuffer per swapchain image.
func (c *Core) createFrameBuffers() {
	c.framebuffers = make([]vk.Framebuffer, len(c.swapChain.ImgViews))
	for i, scView := range c.swapChain.ImgViews {
		views := c.layout.framebufferAttachments(c.colorView, c.depthView, scView)
		frameBufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      c.renderPass,
			AttachmentCount: uint32(len(views)),
			PAttachments:    views,
			Width:           c.swapChain.Extent.Width,
			Height:          c.swapChain.Extent.Height,
			Layers:          1,
		}
		var err error
		c.framebuffers[i], err = common.VkCreateFrameBuffer(c.ctx.Device, &frameBufferInfo, c.ctx.Alloc)
		common.Checkf(err, "create framebuffer %d", i)
	}
	c.releases.push("framebuffers", func() {
		for _, fb := range c.framebuffers {
			vk.DestroyFramebuffer(c.ctx.Device, fb, c.ctx.Alloc)
		}
	})
}
