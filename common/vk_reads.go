package common

import (
	vk "github.com/goki/vulkan"
)

// Read operations that require duplicated function calls, allocations and dereferencing. They are pulled out to
// provide a more go-lang feel and tidy the core code. Every failing read is fatal.

// ReadInstanceExtensionPropertyNames is a convenience method obfuscating the spec defined []vk.ExtensionProperties
// type in favor of their respective names in order to simplify support checks to a point of string comparisons.
func ReadInstanceExtensionPropertyNames() []string {
	supportedExts := ReadInstanceExtensionProperties()
	supportedExtNames := make([]string, len(supportedExts))
	for i, ext := range supportedExts {
		supportedExtNames[i] = vk.ToString(ext.ExtensionName[:])
	}
	return supportedExtNames
}

func ReadInstanceExtensionProperties() []vk.ExtensionProperties {
	extensionCount := uint32(0)
	CheckResult(vk.EnumerateInstanceExtensionProperties("", &extensionCount, nil), "count instance extensions")
	extensionProperties := make([]vk.ExtensionProperties, extensionCount)
	CheckResult(vk.EnumerateInstanceExtensionProperties("", &extensionCount, extensionProperties), "read instance extensions")
	for i := range extensionProperties {
		extensionProperties[i].Deref()
	}
	return extensionProperties
}

// ReadInstanceLayerPropertyNames is the layer counterpart of ReadInstanceExtensionPropertyNames.
func ReadInstanceLayerPropertyNames() []string {
	supportedLayers := ReadInstanceLayerProperties()
	supLayerNames := make([]string, len(supportedLayers))
	for i, l := range supportedLayers {
		supLayerNames[i] = vk.ToString(l.LayerName[:])
	}
	return supLayerNames
}

func ReadInstanceLayerProperties() []vk.LayerProperties {
	layerCount := uint32(0)
	CheckResult(vk.EnumerateInstanceLayerProperties(&layerCount, nil), "count instance layers")
	layers := make([]vk.LayerProperties, layerCount)
	CheckResult(vk.EnumerateInstanceLayerProperties(&layerCount, layers), "read instance layers")
	for i := range layers {
		layers[i].Deref()
	}
	return layers
}

func ReadPhysicalDevices(instance vk.Instance) []vk.PhysicalDevice {
	var gpuCount uint32
	CheckResult(vk.EnumeratePhysicalDevices(instance, &gpuCount, nil), "count physical devices")
	if gpuCount == 0 {
		Check(ErrNoSuitableGPU, "enumerate physical devices")
	}
	physDevices := make([]vk.PhysicalDevice, gpuCount)
	CheckResult(vk.EnumeratePhysicalDevices(instance, &gpuCount, physDevices), "read physical devices")
	return physDevices[:gpuCount]
}

func ReadPhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var pdProps vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &pdProps)
	pdProps.Deref()
	pdProps.Limits.Deref()
	return pdProps
}

func ReadPhysicalDeviceFeatures(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var pdFeatures vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(pd, &pdFeatures)
	pdFeatures.Deref()
	return pdFeatures
}

func ReadQueueFamilies(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	qFamilyCount := uint32(0)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, nil)
	qFamilyProps := make([]vk.QueueFamilyProperties, qFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, qFamilyProps)
	for i := range qFamilyProps {
		qFamilyProps[i].Deref()
		qFamilyProps[i].MinImageTransferGranularity.Deref()
	}
	return qFamilyProps
}

func ReadDeviceExtensionProperties(pd vk.PhysicalDevice) []vk.ExtensionProperties {
	extensionCount := uint32(0)
	CheckResult(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, nil), "count device extensions")
	extensionProperties := make([]vk.ExtensionProperties, extensionCount)
	CheckResult(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, extensionProperties), "read device extensions")
	for i := range extensionProperties {
		extensionProperties[i].Deref()
	}
	return extensionProperties
}

func ReadDeviceExtensionNames(pd vk.PhysicalDevice) []string {
	exts := ReadDeviceExtensionProperties(pd)
	names := make([]string, len(exts))
	for i, ext := range exts {
		names[i] = vk.ToString(ext.ExtensionName[:])
	}
	return names
}

func ReadSurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) vk.SurfaceCapabilities {
	var caps vk.SurfaceCapabilities
	CheckResult(vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &caps), "read surface capabilities")
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps
}

func ReadSurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) []vk.SurfaceFormat {
	var formatCount uint32
	CheckResult(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, nil), "count surface formats")
	formats := make([]vk.SurfaceFormat, formatCount)
	CheckResult(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, formats), "read surface formats")
	for i := range formats {
		formats[i].Deref()
	}
	return formats
}

func ReadSurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) []vk.PresentMode {
	var presentModeCount uint32
	CheckResult(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, nil), "count present modes")
	modes := make([]vk.PresentMode, presentModeCount)
	CheckResult(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, modes), "read present modes")
	return modes
}

func ReadSurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) bool {
	var presentSupport vk.Bool32
	CheckResult(vk.GetPhysicalDeviceSurfaceSupport(pd, family, surface, &presentSupport), "read surface support")
	return presentSupport == vk.True
}

func ReadSwapChainImages(device vk.Device, swapChain vk.Swapchain) []vk.Image {
	var imgCount uint32
	CheckResult(vk.GetSwapchainImages(device, swapChain, &imgCount, nil), "count swapchain images")
	imgs := make([]vk.Image, imgCount)
	CheckResult(vk.GetSwapchainImages(device, swapChain, &imgCount, imgs), "read swapchain images")
	return imgs[:imgCount]
}

func ReadDeviceMemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var pdMemProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &pdMemProps)
	pdMemProps.Deref()
	for i := range pdMemProps.MemoryTypes {
		pdMemProps.MemoryTypes[i].Deref()
	}
	for i := range pdMemProps.MemoryHeaps {
		pdMemProps.MemoryHeaps[i].Deref()
	}
	return pdMemProps
}

func ReadBufferMemoryRequirements(device vk.Device, b vk.Buffer) vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, b, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}

func ReadImageMemoryRequirements(device vk.Device, img vk.Image) vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, img, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}

func ReadFormatProperties(pd vk.PhysicalDevice, format vk.Format) vk.FormatProperties {
	var fProps vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(pd, format, &fProps)
	fProps.Deref()
	return fProps
}
