// Package renderer drives one window: it builds the frame pipeline on top of a common.Context, uploads a single
// batch and renders it once per loop iteration.
package renderer

import (
	"time"

	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/config"
	"GPU_mesh_renderer/hostalloc"
	"GPU_mesh_renderer/model"

	"github.com/charmbracelet/log"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Core struct {
	ID  uuid.UUID
	log *log.Logger
	cfg config.Config

	// OS/Window level
	win       common.Window
	heap      *hostalloc.Aligned
	hostAlloc *hostalloc.Callbacks
	minimized bool

	// Device level
	ctx *common.Context

	// Target level
	swapChain    *common.SwapChain
	layout       renderPassLayout
	renderPass   vk.RenderPass
	colorTarget  *common.Image
	colorView    vk.ImageView
	depthTarget  *common.Image
	depthView    vk.ImageView
	framebuffers []vk.Framebuffer

	// Drawing infrastructure level
	uniformBuffers []*common.Buffer
	uniforms       *UniformSet
	descriptors    *DescriptorProvisioner
	pipelineLayout vk.PipelineLayout
	pipelines      []vk.Pipeline
	commandPool    vk.CommandPool

	// Frame level
	commandBuffer  vk.CommandBuffer
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
	guard          fenceGuard
	warnedFallback bool

	// 3D World
	mesh      *meshBuffers
	Cam       *model.Camera
	Wireframe bool

	run      *RunContext
	watcher  *ShaderWatcher
	releases releaseStack
}

// Externally facing functions

func NewCore(cfg config.Config) *Core {
	id := uuid.New()
	l := common.Logger().With("renderer", id.String())
	return &Core{
		ID:        id,
		log:       l,
		cfg:       cfg,
		Wireframe: cfg.Render.Wireframe,
		releases:  releaseStack{log: l},
	}
}

func contextConfig(cfg config.Config) common.ContextConfig {
	return common.ContextConfig{
		AppName:          cfg.Window.Title,
		Validation:       cfg.Vulkan.Validation,
		Layers:           cfg.Vulkan.Layers,
		DeviceExtensions: cfg.Vulkan.DeviceExtensions,
		Features:         cfg.Vulkan.Features,
		OptionalFeatures: cfg.Vulkan.OptionalFeatures,
	}
}

// Init creates everything up to the first frame. Mesh and primitive errors are returned before any GPU object
// exists, GPU failures are returned as *common.FatalError. TearDown must be called in both cases.
func (c *Core) Init() (err error) {
	defer common.RecoverFatal(&err)

	batch, err := LoadBatch(c.cfg.Render.Mesh, c.cfg.Render.Primitive)
	if err != nil {
		return errors.Wrap(err, "load scene")
	}

	c.heap = hostalloc.NewAligned(nil)
	c.hostAlloc = hostalloc.NewCallbacks(c.heap)
	c.releases.push("host allocator", func() {
		st := c.heap.Stats()
		c.log.Debug("Host allocations", "total", st.Allocations, "frees", st.Frees, "live", st.Live, "live_bytes", st.LiveBytes)
		c.hostAlloc.Release()
		if err := c.heap.Destroy(); err != nil {
			c.log.Warn("Host allocator leaked", "err", err)
		}
	})

	c.win, err = common.CreateWindow(c.cfg.Window.Backend, c.cfg.Window.Title, c.cfg.Window.Width, c.cfg.Window.Height, 0)
	common.Check(err, "create window")
	c.releases.push("window", c.win.Destroy)

	c.ctx = common.NewContext(c.win, contextConfig(c.cfg), c.hostAlloc)
	c.releases.push("context", c.ctx.Destroy)
	c.log.Info("Selected GPU", "name", c.ctx.GPU.Name(), "queue_family", c.ctx.QFamilies.Graphics)

	formats, err := c.cfg.Vulkan.Formats()
	common.Check(err, "resolve surface formats")
	c.swapChain = common.NewSwapChain(c.ctx, common.SwapChainConfig{
		PreferredFormats:  formats,
		DesiredImageCount: c.cfg.Vulkan.DesiredImageCount,
	}, vk.NullSwapchain)
	c.releases.push("swapchain", func() { c.swapChain.Destroy(c.ctx) })

	c.layout = renderPassLayout{
		ColorFormat: c.swapChain.Format.Format,
		DepthFormat: vk.FormatUndefined,
		Samples:     common.QuerySampleCounts(c.ctx.PhysicalDevice, common.SampleCountFromInt(c.cfg.Vulkan.MaxSamples)),
	}
	if c.cfg.Vulkan.Depth {
		c.layout.DepthFormat = common.QueryDepthFormat(c.ctx.PhysicalDevice)
	}

	c.createRenderPass()
	c.createRenderTargets()
	c.createFrameBuffers()
	c.createUniformBuffers()
	c.createDescriptors()
	c.createPipelineLayout()
	c.createGraphicsPipelines()
	c.releases.push("pipelines", c.destroyPipelines)
	c.createCommandPool()
	c.createCommandBuffer()
	c.createSyncObjects()
	c.createScene(batch)

	c.Cam = model.NewCamera(c.cfg.Camera.Fov, c.cfg.Camera.Near, c.cfg.Camera.Far)
	c.cfg.Camera.Apply(c.Cam)
	c.run = NewRunContext(c.cfg.Render.TargetFPS)

	if c.cfg.Render.HotReload {
		c.watcher, err = NewShaderWatcher(c.cfg.Render.VertexShader, c.cfg.Render.FragmentShader)
		if err != nil {
			c.log.Warn("Shader hot reload disabled", "err", err)
		} else {
			c.releases.push("shader watcher", func() { _ = c.watcher.Close() })
		}
	}
	c.log.Info("Renderer ready", "objects", c.releases.len(), "images", len(c.swapChain.Images))
	return nil
}

// Update runs one loop iteration: events, camera, and at most one frame. It returns false once the user asked to
// quit. A started frame always completes.
func (c *Core) Update() (running bool, err error) {
	defer common.RecoverFatal(&err)

	st := drainEvents(c.win, c.minimized)
	c.minimized = st.minimized
	if st.quit {
		return false, nil
	}
	if st.toggleWireframe {
		c.Wireframe = !c.Wireframe
		c.log.Debug("Toggled wireframe", "on", c.Wireframe)
	}
	if st.toggleProjection {
		c.Cam.ToggleProjection()
		c.log.Debug("Switched projection", "type", c.Cam.ProjectionType)
	}

	dt := c.run.Tick()
	steerCamera(c.Cam, c.win.Keys(), dt)

	if !canRender(c.win, c.minimized) {
		// Sleep until new events change the window state
		c.win.WaitEvent()
		return true, nil
	}

	if c.watcher != nil && c.watcher.Changed() {
		c.reloadPipelines()
	}

	in := &FrameInput{
		Data:      c.Cam.Frame(c.swapChain.Aspect),
		Wireframe: c.Wireframe,
	}
	if _, err := renderFrame(c, &c.guard, c.uniforms, in, c.cfg.Vulkan.FenceTimeout.Duration); err != nil {
		common.Check(err, "render frame")
	}
	c.run.Pace()
	return true, nil
}

// TearDown waits for the device and releases every created object in reverse creation order. It is safe after a
// failed Init and safe to call twice.
func (c *Core) TearDown() {
	if c.ctx != nil && c.ctx.Device != nil {
		// We need to wait for the last asynchronous call to finish before tear down
		if res := vk.DeviceWaitIdle(c.ctx.Device); res != vk.Success {
			c.log.Error("Wait for device idle failed", "err", common.ResultError(res))
		}
	}
	c.releases.unwind()
	if c.run != nil {
		c.log.Info("Run finished", "elapsed", c.run.Elapsed().Round(time.Millisecond), "frames", c.run.Frames(), "avg_fps", c.run.AverageFPS())
		c.run = nil
	}
}

// FrameDevice

func (c *Core) WaitFence(timeout time.Duration) error {
	res := common.VKSWaitForFence(c.ctx.Device, c.inFlight, timeoutNanos(timeout))
	if err := waitError(res, "wait for in flight fence", timeout); err != nil {
		c.log.Error("Frame fence did not signal", "err", err)
		return err
	}
	return nil
}

func (c *Core) ResetFence() error {
	return common.VKSResetFence(c.ctx.Device, c.inFlight)
}

func (c *Core) Acquire(timeout time.Duration) (uint32, error) {
	var imgIdx uint32
	res := vk.AcquireNextImage(c.ctx.Device, c.swapChain.Handle, timeoutNanos(timeout), c.imageAvailable, vk.NullFence, &imgIdx)
	switch res {
	case vk.Success, vk.Suboptimal:
		return imgIdx, nil
	case vk.ErrorOutOfDate:
		return 0, errors.Wrap(common.ResultError(res), "acquire image: swapchain is out of date")
	}
	return 0, waitError(res, "acquire image", timeout)
}

func (c *Core) RecordFrame(imageIdx uint32, wireframe bool) error {
	framebuffer, err := perImage(c.framebuffers, imageIdx, "framebuffer")
	if err != nil {
		return err
	}
	set, err := perImage(c.descriptors.sets, imageIdx, "descriptor set")
	if err != nil {
		return err
	}
	variant, fellBack := selectVariant(wireframe, len(c.pipelines))
	if fellBack && !c.warnedFallback {
		c.log.Warn("Wireframe requested but not available, drawing solid")
		c.warnedFallback = true
	}

	buffer := c.commandBuffer
	if res := vk.ResetCommandBuffer(buffer, 0); res != vk.Success {
		return errors.Wrap(common.ResultError(res), "reset command buffer")
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            0,
		PInheritanceInfo: nil,
	}
	if res := vk.BeginCommandBuffer(buffer, &beginInfo); res != vk.Success {
		return errors.Wrap(common.ResultError(res), "begin command buffer")
	}

	extent := c.swapChain.Extent
	renderArea := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	clearValues := c.layout.clearValues(c.cfg.Render.ClearColor)
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		PNext:           nil,
		RenderPass:      c.renderPass,
		Framebuffer:     framebuffer,
		RenderArea:      renderArea,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)

	vk.CmdBindPipeline(buffer, vk.PipelineBindPointGraphics, c.pipelines[variant])

	viewport := []vk.Viewport{
		{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1.0,
		},
	}
	vk.CmdSetViewport(buffer, 0, 1, viewport)
	vk.CmdSetScissor(buffer, 0, 1, []vk.Rect2D{renderArea})

	vertBuffers := c.mesh.vertexBuffers()
	offsets := make([]vk.DeviceSize, len(vertBuffers))
	vk.CmdBindVertexBuffers(buffer, 0, uint32(len(vertBuffers)), vertBuffers, offsets)
	vk.CmdBindIndexBuffer(buffer, c.mesh.indices.Handle, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(buffer, vk.PipelineBindPointGraphics, c.pipelineLayout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
	vk.CmdDrawIndexed(buffer, c.mesh.indexCount, 1, 0, 0, 0)

	vk.CmdEndRenderPass(buffer)
	if res := vk.EndCommandBuffer(buffer); res != vk.Success {
		return errors.Wrap(common.ResultError(res), "record command buffer")
	}
	return nil
}

func (c *Core) Submit() error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.commandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.renderFinished},
	}
	if res := vk.QueueSubmit(c.ctx.Queue, 1, []vk.SubmitInfo{submitInfo}, c.inFlight); res != vk.Success {
		return errors.Wrap(common.ResultError(res), "submit command buffer")
	}
	return nil
}

func (c *Core) Present(imageIdx uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapChain.Handle},
		PImageIndices:      []uint32{imageIdx},
		PResults:           nil,
	}
	switch res := vk.QueuePresent(c.ctx.Queue, &presentInfo); res {
	case vk.Success, vk.Suboptimal:
		return nil
	default:
		return errors.Wrapf(common.ResultError(res), "present image %d", imageIdx)
	}
}
