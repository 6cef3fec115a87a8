package renderer

import (
	"os"

	"GPU_mesh_renderer/common"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// ReadShader returns the SPIR-V bytes of a compiled shader unchanged.
func ReadShader(path string) ([]byte, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	return code, nil
}

// LoadVert reads a '.spv' file containing a vertex shader. The module and the stage info binding it to a
// pipeline are returned.
func LoadVert(ctx *common.Context, path string) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadStage(ctx, path, vk.ShaderStageVertexBit)
}

// LoadFrag is LoadVert for fragment shaders.
func LoadFrag(ctx *common.Context, path string) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadStage(ctx, path, vk.ShaderStageFragmentBit)
}

func loadStage(ctx *common.Context, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	code, err := ReadShader(path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, errors.Wrap(err, path)
	}
	mod, err := createShaderModule(ctx, code, path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	return mod, vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               "main\x00", // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}, nil
}

// DeleteShaderMod discards a shader module. Modules are only needed while pipelines are created.
func DeleteShaderMod(ctx *common.Context, mod vk.ShaderModule) {
	vk.DestroyShaderModule(ctx.Device, mod, ctx.Alloc)
}

func createShaderModule(ctx *common.Context, code []byte, name string) (vk.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("shader %s: code size %d is not a positive multiple of 4", name, len(code))
	}
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint64(len(code)),
		PCode:    common.AsUint32Arr(code),
	}
	module, err := common.VkCreateShaderModule(ctx.Device, createInfo, ctx.Alloc)
	if err != nil {
		return nil, errors.Wrapf(err, "create shader module %s", name)
	}
	common.LogDebug("Created shader module %s (%d bytes)", name, len(code))
	return module, nil
}
