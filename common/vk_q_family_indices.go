package common

import (
	vk "github.com/goki/vulkan"
)

// QueueFamilyIndices holds the families the logical device requests queues from. The renderer claims one
// family that can both draw and present, so Graphics and Present usually match.
type QueueFamilyIndices struct {
	Graphics uint32
	Present  uint32
}

// Unique lists each claimed family once, in claim order.
func (q QueueFamilyIndices) Unique() []uint32 {
	uniq := []uint32{q.Graphics}
	if q.Present != q.Graphics {
		uniq = append(uniq, q.Present)
	}
	return uniq
}

// ToQueueCreateInfos requests one queue per unique family, all at priority 1.
func (q QueueFamilyIndices) ToQueueCreateInfos() []vk.DeviceQueueCreateInfo {
	uniqIndices := q.Unique()
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}
