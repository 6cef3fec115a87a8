package common

import (
	"math"

	vk "github.com/goki/vulkan"
)

// SwapChainConfig carries the surface preferences. PreferredFormats is walked in order.
type SwapChainConfig struct {
	PreferredFormats  []vk.Format
	DesiredImageCount uint32
}

var DefaultSurfaceFormats = []vk.Format{vk.FormatB8g8r8a8Srgb, vk.FormatB8g8r8a8Unorm, vk.FormatR8g8b8a8Unorm}

// SwapChain owns the presentable images and one color view per image. Framebuffers over these views belong
// to the frame pipeline.
type SwapChain struct {
	Handle vk.Swapchain

	Format       vk.SurfaceFormat
	PresentMode  vk.PresentMode
	Extent       vk.Extent2D
	Capabilities vk.SurfaceCapabilities

	Images   []vk.Image
	ImgViews []vk.ImageView
	Aspect   float32
}

// NewSwapChain creates a FIFO swapchain on the context surface. old is handed to the driver as the swapchain
// being replaced and may be vk.NullSwapchain.
func NewSwapChain(ctx *Context, cfg SwapChainConfig, old vk.Swapchain) *SwapChain {
	preferred := cfg.PreferredFormats
	if len(preferred) == 0 {
		preferred = DefaultSurfaceFormats
	}
	LogDebug("Surface present modes %v, using FIFO", ReadSurfacePresentModes(ctx.PhysicalDevice, ctx.Surface))
	sc := &SwapChain{
		Format:       QuerySurfaceFormat(ctx.PhysicalDevice, ctx.Surface, preferred),
		PresentMode:  vk.PresentModeFifo,
		Capabilities: QuerySurfaceCapabilities(ctx.PhysicalDevice, ctx.Surface, cfg.DesiredImageCount),
	}
	fbW, fbH := ctx.Win.FramebufferSize()
	sc.Extent = ResolveExtent(sc.Capabilities, fbW, fbH)
	sc.createSwapChainHandle(ctx, old)
	sc.Images = ReadSwapChainImages(ctx.Device, sc.Handle)
	sc.createImageViews(ctx)

	// Precalculate the images' aspect ratio for later
	if sc.Extent.Height > 0 {
		sc.Aspect = float32(sc.Extent.Width) / float32(sc.Extent.Height)
	}
	LogInfo("Created swap chain: %d images, %dx%d, format %d, color space %d",
		len(sc.Images), sc.Extent.Width, sc.Extent.Height, sc.Format.Format, sc.Format.ColorSpace)
	return sc
}

// ResolveExtent uses the surface's current extent. A surface that leaves the extent to the swapchain reports
// 0xFFFFFFFF, the framebuffer size clamped to the allowed range is used then.
func ResolveExtent(caps vk.SurfaceCapabilities, fbWidth, fbHeight uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampU32(fbWidth, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(fbHeight, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

func (sc *SwapChain) createSwapChainHandle(ctx *Context, old vk.Swapchain) {
	// A single family draws and presents, so the images are never shared across queues.
	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               ctx.Surface,
		MinImageCount:         sc.Capabilities.MinImageCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		PreTransform:          sc.Capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          old,
	}
	var err error
	sc.Handle, err = VkCreateSwapChain(ctx.Device, createInfo, ctx.Alloc)
	Check(err, "create swapchain")
}

func (sc *SwapChain) createImageViews(ctx *Context) {
	sc.ImgViews = make([]vk.ImageView, len(sc.Images))
	for i := range sc.Images {
		sc.ImgViews[i] = CreateImageView(ctx, ViewSpec{
			Image:  sc.Images[i],
			Format: sc.Format.Format,
			Aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		})
	}
}

// Destroy removes the image views, then the swapchain. The images belong to the swapchain.
func (sc *SwapChain) Destroy(ctx *Context) {
	for i := range sc.ImgViews {
		vk.DestroyImageView(ctx.Device, sc.ImgViews[i], ctx.Alloc)
	}
	sc.ImgViews = nil
	vk.DestroySwapchain(ctx.Device, sc.Handle, ctx.Alloc)
	sc.Handle = vk.NullSwapchain
	sc.Images = nil
}
