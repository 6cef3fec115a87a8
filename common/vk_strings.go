package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// ExtensionProperties
func TableStringExtensionProps(ext []vk.ExtensionProperties) string {
	strBuilder := strings.Builder{}
	for i := range ext {
		strBuilder.WriteString(fmt.Sprintf(" %s\n", toStringExtensionPropsTable(ext[i])))
	}
	return strBuilder.String()
}

func toStringExtensionPropsTable(e vk.ExtensionProperties) string {
	return fmt.Sprintf("%-59s%10s", vk.ToString(e.ExtensionName[:]), vk.Version(e.SpecVersion).String())
}

// LayerProperties
func TableStringLayerProps(lay []vk.LayerProperties) string {
	strBuilder := strings.Builder{}
	for i := range lay {
		strBuilder.WriteString(fmt.Sprintf(" %s\n", toStringLayerPropsTable(lay[i])))
	}
	return strBuilder.String()
}

func toStringLayerPropsTable(l vk.LayerProperties) string {
	return fmt.Sprintf(
		"%-40sspec: %8s   impl: %8s%50s",
		vk.ToString(l.LayerName[:]),
		vk.Version(l.SpecVersion).String(),
		vk.Version(l.ImplementationVersion).String(),
		vk.ToString(l.Description[:]),
	)
}

// Physical device
func ToStringPhysicalDeviceTable(
	pdProps vk.PhysicalDeviceProperties,
	qFamilies []vk.QueueFamilyProperties,
	score int,
) string {
	strBuilder := strings.Builder{}
	for i := range qFamilies {
		if i == len(qFamilies)-1 {
			strBuilder.WriteString(fmt.Sprintf("|_Qfamily[%d] %s\n", i, toStringQueueFamilyPropsTable(qFamilies[i])))
		} else {
			strBuilder.WriteString(fmt.Sprintf("| Qfamily[%d] %s\n", i, toStringQueueFamilyPropsTable(qFamilies[i])))
		}
	}
	return fmt.Sprintf(
		"%s (score %d):\n|_%s\n%s",
		vk.ToString(pdProps.DeviceName[:]),
		score,
		toStringPhysicalDevicePropsTable(pdProps),
		strBuilder.String(),
	)
}

func asVendorName(v vk.VendorId) string {
	// There seem to only be a handful of vendors and Ids as stated in:
	// https://www.reddit.com/r/vulkan/comments/4ta9nj/is_there_a_comprehensive_list_of_the_names_and/
	switch v {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

func asDriverVersion(vendor vk.VendorId, raw uint32) string {
	// Only nvidia uses its own packing.
	if vendor == 0x10DE {
		return fmt.Sprintf(
			"%d.%d.%d.%d",
			(raw>>22)&0x3ff,
			(raw>>14)&0x0ff,
			(raw>>6)&0x0ff,
			raw&0x003f,
		)
	}
	return vk.Version(raw).String()
}

func toStringPhysicalDevicePropsTable(pdProps vk.PhysicalDeviceProperties) string {
	return fmt.Sprintf("api: %s, driver: %s, vendorId: %d (%s), deviceId: %d, deviceType: %d (%s), UUID: %v",
		vk.Version(pdProps.ApiVersion).String(),
		asDriverVersion(vk.VendorId(pdProps.VendorID), pdProps.DriverVersion),
		vk.VendorId(pdProps.VendorID),
		asVendorName(vk.VendorId(pdProps.VendorID)),
		pdProps.DeviceID,
		pdProps.DeviceType,
		ToStringDeviceType(pdProps.DeviceType),
		hex.EncodeToString(pdProps.PipelineCacheUUID[:]),
	)
}

func ToStringDeviceType(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeOther:
		return "other"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated Gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete Gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual Gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

func toStringMemoryType(mt vk.MemoryType) string {
	return fmt.Sprintf("MemoryType(Flags:%032b, HeapIdx:%d)", mt.PropertyFlags, mt.HeapIndex)
}

func toStringMemoryRequirements(mr vk.MemoryRequirements) string {
	return fmt.Sprintf("MemoryRequirements(Size:%d Byte, Alignment:%d Byte, MemTypeBits:[%032b])", mr.Size, mr.Alignment, mr.MemoryTypeBits)
}

func toStringQueueFamilyPropsTable(q vk.QueueFamilyProperties) string {
	return fmt.Sprintf(
		"Count: %2d, Valid ts bits: %d, ImageGranularity: (%d,%d,%d), Flags: %v",
		q.QueueCount,
		q.TimestampValidBits,
		q.MinImageTransferGranularity.Width,
		q.MinImageTransferGranularity.Height,
		q.MinImageTransferGranularity.Depth,
		ToStringQueueFlags(q.QueueFlags),
	)
}

// QueueFlags
func ToStringQueueFlags(bits vk.QueueFlags) []string {
	var properties []string
	flags := vk.QueueFlagBits(bits)
	if flags&vk.QueueGraphicsBit > 0 {
		properties = append(properties, "VK_QUEUE_GRAPHICS_BIT")
	}
	if flags&vk.QueueComputeBit > 0 {
		properties = append(properties, "VK_QUEUE_COMPUTE_BIT")
	}
	if flags&vk.QueueTransferBit > 0 {
		properties = append(properties, "VK_QUEUE_TRANSFER_BIT")
	}
	if flags&vk.QueueSparseBindingBit > 0 {
		properties = append(properties, "VK_QUEUE_SPARSE_BINDING_BIT")
	}
	if flags&vk.QueueProtectedBit > 0 {
		properties = append(properties, "VK_QUEUE_PROTECTED_BIT")
	}
	return properties
}

// ToStringSampleCount renders a single sample count bit as "4x".
func ToStringSampleCount(s vk.SampleCountFlagBits) string {
	return fmt.Sprintf("%dx", uint32(s))
}

// ToStringDebugFlags names the severity bits of a debug report message.
func ToStringDebugFlags(flags vk.DebugReportFlags) string {
	var names []string
	f := vk.DebugReportFlagBits(flags)
	if f&vk.DebugReportErrorBit != 0 {
		names = append(names, "error")
	}
	if f&vk.DebugReportWarningBit != 0 {
		names = append(names, "warning")
	}
	if f&vk.DebugReportPerformanceWarningBit != 0 {
		names = append(names, "performance")
	}
	if f&vk.DebugReportInformationBit != 0 {
		names = append(names, "info")
	}
	if f&vk.DebugReportDebugBit != 0 {
		names = append(names, "debug")
	}
	return strings.Join(names, "|")
}
