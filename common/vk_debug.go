package common

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

// DebugReportFlags is the severity filter of the diagnostic channel.
const DebugReportFlags = vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit)

// CreateDebugChannel installs a VK_EXT_debug_report callback routing driver and validation messages into the
// structured logger.
func CreateDebugChannel(instance vk.Instance, pAllocator *vk.AllocationCallbacks) (vk.DebugReportCallback, error) {
	dbgCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       DebugReportFlags,
		PfnCallback: debugReport,
	}
	return VkCreateDebugReportCallback(instance, &dbgCreateInfo, pAllocator)
}

func debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64,
	messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	l := Logger().With("layer", pLayerPrefix, "code", messageCode, "object", object, "severity", ToStringDebugFlags(flags))
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		l.Error(pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		l.Warn(pMessage)
	default:
		l.Info(pMessage)
	}
	return vk.Bool32(vk.False)
}
