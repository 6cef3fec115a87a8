package common

import (
	"reflect"
	"sort"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// Score contributions used when ranking physical devices.
const (
	ScoreRequirementsMet    = 40
	ScoreRequirementsFailed = -40
	ScoreDiscreteGPU        = 10
)

const DefaultImageCount = 3

// GPUCandidate bundles everything the scoring heuristic needs to know about one physical device.
type GPUCandidate struct {
	Handle     vk.PhysicalDevice
	Props      vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Extensions []string
	Families   []vk.QueueFamilyProperties
}

func (c GPUCandidate) Name() string {
	return vk.ToString(c.Props.DeviceName[:])
}

// ScoreGPU rates a candidate. Missing any requested feature or extension fails closed.
func ScoreGPU(c GPUCandidate, features vk.PhysicalDeviceFeatures, extensions []string) int {
	score := ScoreRequirementsFailed
	if len(MissingFeatures(features, c.Features)) == 0 && AllOfAinB(extensions, c.Extensions) {
		score = ScoreRequirementsMet
	}
	if c.Props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
		score += ScoreDiscreteGPU
	}
	return score
}

// SelectGPU returns the index of the best scoring candidate. Ties go to the first enumerated device.
func SelectGPU(candidates []GPUCandidate, features vk.PhysicalDeviceFeatures, extensions []string) (int, []int, error) {
	if len(candidates) == 0 {
		return -1, nil, ErrNoSuitableGPU
	}
	scores := make([]int, len(candidates))
	best := 0
	for i := range candidates {
		scores[i] = ScoreGPU(candidates[i], features, extensions)
		if scores[i] > scores[best] {
			best = i
		}
	}
	if scores[best] < 0 {
		return -1, scores, errors.Wrapf(ErrNoSuitableGPU, "best score %d", scores[best])
	}
	return best, scores, nil
}

// SelectQueueFamily finds the first family that has all bits of flags set, can present when requirePresent
// is set and has not been claimed yet.
func SelectQueueFamily(
	families []vk.QueueFamilyProperties,
	flags vk.QueueFlags,
	requirePresent bool,
	canPresent func(family uint32) bool,
	exclude []uint32,
) (uint32, error) {
	for i := range families {
		idx := uint32(i)
		if families[i].QueueFlags&flags != flags {
			continue
		}
		if inList(idx, exclude) {
			continue
		}
		if requirePresent && (canPresent == nil || !canPresent(idx)) {
			continue
		}
		return idx, nil
	}
	return 0, errors.Wrapf(ErrNoQueueFamily, "flags %v, present %t, excluded %v",
		ToStringQueueFlags(flags), requirePresent, exclude)
}

// SelectSurfaceFormat walks the preferred formats in order and picks the first one the surface supports.
// Without a match the surface's first format is used.
func SelectSurfaceFormat(supported []vk.SurfaceFormat, preferred []vk.Format) (vk.SurfaceFormat, error) {
	if len(supported) == 0 {
		return vk.SurfaceFormat{}, ErrNoSurfaceFormat
	}
	for _, want := range preferred {
		for _, sf := range supported {
			if sf.Format == want {
				return sf, nil
			}
		}
	}
	return supported[0], nil
}

// ClampSurfaceCapabilities forces MinImageCount to desired, bounded by a nonzero MaxImageCount, and prefers the
// identity transform when the surface supports it.
func ClampSurfaceCapabilities(caps vk.SurfaceCapabilities, desired uint32) vk.SurfaceCapabilities {
	if desired == 0 {
		desired = DefaultImageCount
	}
	caps.MinImageCount = desired
	if caps.MaxImageCount > 0 && desired > caps.MaxImageCount {
		caps.MinImageCount = caps.MaxImageCount
	}
	identity := vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit)
	if caps.SupportedTransforms&identity != 0 {
		caps.CurrentTransform = vk.SurfaceTransformIdentityBit
	}
	return caps
}

var sampleCountPreference = []vk.SampleCountFlagBits{
	vk.SampleCount8Bit,
	vk.SampleCount4Bit,
	vk.SampleCount2Bit,
	vk.SampleCount1Bit,
}

// SelectSampleCount picks the highest count supported for color, depth and stencil framebuffers alike. A
// nonzero max caps the result.
func SelectSampleCount(limits vk.PhysicalDeviceLimits, max vk.SampleCountFlagBits) vk.SampleCountFlagBits {
	counts := limits.FramebufferColorSampleCounts &
		limits.FramebufferDepthSampleCounts &
		limits.FramebufferStencilSampleCounts
	for _, s := range sampleCountPreference {
		if max != 0 && s > max {
			continue
		}
		if counts&vk.SampleCountFlags(s) != 0 {
			return s
		}
	}
	return vk.SampleCount1Bit
}

// SampleCountFromInt maps 1, 2, 4, 8 onto the matching flag bit. Anything else yields 0 (no cap).
func SampleCountFromInt(n int) vk.SampleCountFlagBits {
	switch n {
	case 1:
		return vk.SampleCount1Bit
	case 2:
		return vk.SampleCount2Bit
	case 4:
		return vk.SampleCount4Bit
	case 8:
		return vk.SampleCount8Bit
	default:
		return 0
	}
}

// SelectSupportedFormat returns the first candidate whose properties for the given tiling carry all features.
func SelectSupportedFormat(
	candidates []vk.Format,
	tiling vk.ImageTiling,
	features vk.FormatFeatureFlags,
	props func(vk.Format) vk.FormatProperties,
) (vk.Format, error) {
	for _, format := range candidates {
		fProps := props(format)
		if tiling == vk.ImageTilingLinear && (fProps.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == vk.ImageTilingOptimal && (fProps.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}
	return vk.FormatUndefined, ErrNoSupportedFormat
}

func HasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

var bool32Type = reflect.TypeOf(vk.Bool32(0))

// FeaturesFromNames builds a feature set from vk.PhysicalDeviceFeatures field names like "FillModeNonSolid".
func FeaturesFromNames(names []string) (vk.PhysicalDeviceFeatures, error) {
	var f vk.PhysicalDeviceFeatures
	v := reflect.ValueOf(&f).Elem()
	for _, name := range names {
		field, ok := v.Type().FieldByName(name)
		if !ok || !field.IsExported() || field.Type != bool32Type {
			return vk.PhysicalDeviceFeatures{}, errors.Errorf("unknown device feature %q", name)
		}
		v.FieldByIndex(field.Index).SetUint(uint64(vk.True))
	}
	return f, nil
}

// FeatureNames lists the enabled features of f in sorted order.
func FeatureNames(f vk.PhysicalDeviceFeatures) []string {
	var names []string
	forEachFeature(f, func(name string, enabled bool) {
		if enabled {
			names = append(names, name)
		}
	})
	sort.Strings(names)
	return names
}

// MissingFeatures lists the features enabled in requested but not in supported.
func MissingFeatures(requested, supported vk.PhysicalDeviceFeatures) []string {
	sup := reflect.ValueOf(supported)
	var missing []string
	forEachFeature(requested, func(name string, enabled bool) {
		if enabled && vk.Bool32(sup.FieldByName(name).Uint()) != vk.True {
			missing = append(missing, name)
		}
	})
	return missing
}

// EnableSupported turns on the named features in requested that supported offers and returns the names it turned
// on. Unknown or unsupported names are skipped.
func EnableSupported(requested, supported vk.PhysicalDeviceFeatures, names []string) (vk.PhysicalDeviceFeatures, []string) {
	v := reflect.ValueOf(&requested).Elem()
	sup := reflect.ValueOf(supported)
	var added []string
	for _, name := range names {
		field, ok := v.Type().FieldByName(name)
		if !ok || !field.IsExported() || field.Type != bool32Type {
			continue
		}
		if vk.Bool32(sup.FieldByIndex(field.Index).Uint()) != vk.True {
			continue
		}
		if vk.Bool32(v.FieldByIndex(field.Index).Uint()) != vk.True {
			v.FieldByIndex(field.Index).SetUint(uint64(vk.True))
			added = append(added, name)
		}
	}
	return requested, added
}

func HasFeature(f vk.PhysicalDeviceFeatures, name string) bool {
	for _, n := range FeatureNames(f) {
		if n == name {
			return true
		}
	}
	return false
}

func forEachFeature(f vk.PhysicalDeviceFeatures, fn func(name string, enabled bool)) {
	v := reflect.ValueOf(f)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Type != bool32Type {
			continue
		}
		fn(field.Name, vk.Bool32(v.Field(i).Uint()) == vk.True)
	}
}

func inList(e uint32, l []uint32) bool {
	for i := range l {
		if l[i] == e {
			return true
		}
	}
	return false
}

// Queries binding the selection functions above to a live device. Failing queries are fatal.

func ReadGPUCandidate(pd vk.PhysicalDevice) GPUCandidate {
	return GPUCandidate{
		Handle:     pd,
		Props:      ReadPhysicalDeviceProperties(pd),
		Features:   ReadPhysicalDeviceFeatures(pd),
		Extensions: ReadDeviceExtensionNames(pd),
		Families:   ReadQueueFamilies(pd),
	}
}

// QueryGpu enumerates the physical devices of instance and returns the best scoring one.
func QueryGpu(instance vk.Instance, features vk.PhysicalDeviceFeatures, extensions []string) GPUCandidate {
	devices := ReadPhysicalDevices(instance)
	candidates := make([]GPUCandidate, len(devices))
	for i := range devices {
		candidates[i] = ReadGPUCandidate(devices[i])
	}
	best, scores, err := SelectGPU(candidates, features, extensions)
	for i := range candidates {
		LogDebug("Physical device\n%s", ToStringPhysicalDeviceTable(candidates[i].Props, candidates[i].Families, scores[i]))
		if missing := MissingFeatures(features, candidates[i].Features); len(missing) > 0 {
			LogInfo("%s lacks features %v", candidates[i].Name(), missing)
		}
		if missing := MissingOfAinB(extensions, candidates[i].Extensions); len(missing) > 0 {
			LogInfo("%s lacks extensions %v", candidates[i].Name(), missing)
		}
	}
	Check(err, "select physical device")
	LogInfo("Selected %s (%s), score %d",
		candidates[best].Name(), ToStringDeviceType(candidates[best].Props.DeviceType), scores[best])
	return candidates[best]
}

func QueryQueueFamily(gpu vk.PhysicalDevice, surface vk.Surface, flags vk.QueueFlags, requirePresent bool, exclude []uint32) uint32 {
	canPresent := func(family uint32) bool {
		return ReadSurfaceSupport(gpu, family, surface)
	}
	idx, err := SelectQueueFamily(ReadQueueFamilies(gpu), flags, requirePresent, canPresent, exclude)
	Check(err, "select queue family")
	return idx
}

func QuerySurfaceFormat(gpu vk.PhysicalDevice, surface vk.Surface, preferred []vk.Format) vk.SurfaceFormat {
	sf, err := SelectSurfaceFormat(ReadSurfaceFormats(gpu, surface), preferred)
	Check(err, "select surface format")
	return sf
}

func QuerySurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface, desired uint32) vk.SurfaceCapabilities {
	return ClampSurfaceCapabilities(ReadSurfaceCapabilities(gpu, surface), desired)
}

func QuerySampleCounts(gpu vk.PhysicalDevice, max vk.SampleCountFlagBits) vk.SampleCountFlagBits {
	props := ReadPhysicalDeviceProperties(gpu)
	return SelectSampleCount(props.Limits, max)
}

func QueryDepthFormat(gpu vk.PhysicalDevice) vk.Format {
	format, err := SelectSupportedFormat(
		[]vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint},
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
		func(f vk.Format) vk.FormatProperties { return ReadFormatProperties(gpu, f) },
	)
	Check(err, "select depth format")
	return format
}
