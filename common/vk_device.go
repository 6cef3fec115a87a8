package common

import (
	"GPU_mesh_renderer/hostalloc"

	vk "github.com/goki/vulkan"
)

const ENGINE_NAME = "GPU mesh renderer"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

const VALIDATION_LAYER = "VK_LAYER_KHRONOS_validation"
const SWAPCHAIN_EXTENSION = "VK_KHR_swapchain"

// ContextConfig selects what the context asks the driver for.
type ContextConfig struct {
	AppName          string
	Validation       bool
	Layers           []string
	DeviceExtensions []string
	// Features are vk.PhysicalDeviceFeatures field names, e.g. "FillModeNonSolid". A GPU lacking one is not selected.
	Features []string
	// OptionalFeatures are enabled when the selected GPU has them and never take part in selection.
	OptionalFeatures []string
}

// Context is the one graphics context of a renderer: instance, diagnostic channel, surface, selected GPU,
// logical device and its queue. Everything else is created from it and must be destroyed before it.
type Context struct {
	Win   Window
	Alloc *vk.AllocationCallbacks

	Instance vk.Instance
	debug    vk.DebugReportCallback
	Surface  vk.Surface

	GPU            GPUCandidate
	PhysicalDevice vk.PhysicalDevice
	MemProps       vk.PhysicalDeviceMemoryProperties
	QFamilies      QueueFamilyIndices
	Features       vk.PhysicalDeviceFeatures
	Extensions     []string

	Device vk.Device
	Queue  vk.Queue
}

// NewContext builds the context in creation order. Every failure is fatal.
func NewContext(win Window, cfg ContextConfig, alloc *hostalloc.Callbacks) *Context {
	ctx := &Context{Win: win, Alloc: alloc.Vk()}

	features, err := FeaturesFromNames(cfg.Features)
	Check(err, "parse device features")
	ctx.Features = features
	_, err = FeaturesFromNames(cfg.OptionalFeatures)
	Check(err, "parse optional device features")
	ctx.Extensions = cfg.DeviceExtensions
	if !AllOfAinB([]string{SWAPCHAIN_EXTENSION}, ctx.Extensions) {
		ctx.Extensions = append([]string{SWAPCHAIN_EXTENSION}, ctx.Extensions...)
	}

	ctx.createInstance(cfg)
	if cfg.Validation {
		ctx.debug, err = CreateDebugChannel(ctx.Instance, ctx.Alloc)
		Check(err, "create debug report callback")
	}
	ctx.Surface, err = win.CreateSurface(ctx.Instance)
	Check(err, "create window surface")

	ctx.GPU = QueryGpu(ctx.Instance, ctx.Features, ctx.Extensions)
	ctx.PhysicalDevice = ctx.GPU.Handle
	var optional []string
	ctx.Features, optional = EnableSupported(ctx.Features, ctx.GPU.Features, cfg.OptionalFeatures)
	if len(optional) > 0 {
		LogDebug("Enabling optional features %v", optional)
	}
	ctx.MemProps = ReadDeviceMemoryProperties(ctx.PhysicalDevice)

	family := QueryQueueFamily(ctx.PhysicalDevice, ctx.Surface, vk.QueueFlags(vk.QueueGraphicsBit), true, nil)
	ctx.QFamilies = QueueFamilyIndices{Graphics: family, Present: family}

	ctx.createLogicalDevice(cfg)
	ctx.Queue = VkGetDeviceQueue(ctx.Device, ctx.QFamilies.Graphics, 0)
	return ctx
}

func (ctx *Context) createInstance(cfg ContextConfig) {
	vk.SetGetInstanceProcAddr(ctx.Win.VulkanProcAddr())
	Check(vk.Init(), "initialize Vulkan loader")

	requiredExtensions := ctx.Win.RequiredInstanceExtensions()
	var layers []string
	if cfg.Validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		layers = cfg.Layers
		if len(layers) == 0 {
			layers = []string{VALIDATION_LAYER}
		}
		installed := ReadInstanceLayerProperties()
		LogDebug("Installed instance layers (%d):\n%s", len(installed), TableStringLayerProps(installed))
		if missing := MissingOfAinB(layers, ReadInstanceLayerPropertyNames()); len(missing) > 0 {
			LogWarn("Validation layers %v are not installed, continuing without validation", missing)
			layers = nil
		}
	}
	supported := ReadInstanceExtensionPropertyNames()
	LogDebug("Available instance extensions (%d):\n%s", len(supported), TableStringExtensionProps(ReadInstanceExtensionProperties()))
	if missing := MissingOfAinB(requiredExtensions, supported); len(missing) > 0 {
		Fatalf("required instance extensions %v are not supported", missing)
	}

	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   TerminatedStr(cfg.AppName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(1, 0, 0),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     TerminatedStrs(layers),
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(requiredExtensions),
	}
	ins, err := VkCreateInstance(createInfo, ctx.Alloc)
	Check(err, "create instance")
	ctx.Instance = ins
	LogInfo("Created instance, extensions %v, layers %v", requiredExtensions, layers)
}

func (ctx *Context) createLogicalDevice(cfg ContextConfig) {
	queueInfos := ctx.QFamilies.ToQueueCreateInfos()
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(ctx.Extensions)),
		PpEnabledExtensionNames: TerminatedStrs(ctx.Extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{ctx.Features},
	}
	var err error
	ctx.Device, err = VkCreateDevice(ctx.PhysicalDevice, deviceCreateInfo, ctx.Alloc)
	Check(err, "create logical device")
	LogInfo("Created logical device on queue family %d, features %v", ctx.QFamilies.Graphics, FeatureNames(ctx.Features))
}

// HasFeature reports whether the device was created with the named feature.
func (ctx *Context) HasFeature(name string) bool {
	return HasFeature(ctx.Features, name)
}

// WaitIdle drains all queues of the device.
func (ctx *Context) WaitIdle() {
	CheckResult(vk.DeviceWaitIdle(ctx.Device), "wait for device idle")
}

// Destroy releases device, surface, diagnostic channel and instance, in that order. The window is left alone.
func (ctx *Context) Destroy() {
	if ctx.Device != nil {
		vk.DestroyDevice(ctx.Device, ctx.Alloc)
		ctx.Device = nil
	}
	if ctx.Surface != vk.NullSurface {
		ctx.Win.DestroySurface(ctx.Instance, ctx.Surface)
		ctx.Surface = vk.NullSurface
	}
	if ctx.debug != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(ctx.Instance, ctx.debug, ctx.Alloc)
		ctx.debug = vk.NullDebugReportCallback
	}
	if ctx.Instance != nil {
		vk.DestroyInstance(ctx.Instance, ctx.Alloc)
		ctx.Instance = nil
	}
}
