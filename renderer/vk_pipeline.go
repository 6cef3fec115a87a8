package renderer

import (
	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

const (
	VariantSolid = iota
	VariantWireframe
)

const featureFillModeNonSolid = "FillModeNonSolid"

// pipelineSpec is the state shared by all pipeline variants.
type pipelineSpec struct {
	Samples vk.SampleCountFlagBits
	Depth   bool
	Blend   bool
}

func rasterizationState(mode vk.PolygonMode) vk.PipelineRasterizationStateCreateInfo {
	return vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             mode,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}
}

func colorBlendAttachment(blend bool) vk.PipelineColorBlendAttachmentState {
	state := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	if blend {
		state.BlendEnable = vk.True
	}
	return state
}

func depthStencilState(enabled bool) vk.PipelineDepthStencilStateCreateInfo {
	state := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		DepthTestEnable:       vk.False,
		DepthWriteEnable:      vk.False,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0,
		MaxDepthBounds:        1,
	}
	if enabled {
		state.DepthTestEnable = vk.True
		state.DepthWriteEnable = vk.True
	}
	return state
}

// polygonModes lists the variants to build. Wireframe needs the FillModeNonSolid device feature.
func polygonModes(nonSolid bool) []vk.PolygonMode {
	if nonSolid {
		return []vk.PolygonMode{vk.PolygonModeFill, vk.PolygonModeLine}
	}
	return []vk.PolygonMode{vk.PolygonModeFill}
}

// selectVariant falls back to the solid pipeline when no wireframe variant was built.
func selectVariant(wireframe bool, built int) (variant int, fellBack bool) {
	if !wireframe {
		return VariantSolid, false
	}
	if built > VariantWireframe {
		return VariantWireframe, false
	}
	return VariantSolid, true
}

func (c *Core) createPipelineLayout() {
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{c.descriptors.layout},
		PushConstantRangeCount: 0,
	}
	var err error
	c.pipelineLayout, err = common.VkCreatePipelineLayout(c.ctx.Device, &pipelineLayoutInfo, c.ctx.Alloc)
	common.Check(err, "create pipeline layout")
	c.releases.push("pipeline layout", func() {
		vk.DestroyPipelineLayout(c.ctx.Device, c.pipelineLayout, c.ctx.Alloc)
	})
}

// createGraphicsPipelines builds the initial variants. Pipelines are released through destroyPipelines so that hot
// reload can rebuild them.
func (c *Core) createGraphicsPipelines() {
	pipelines, err := c.compilePipelines()
	common.Check(err, "create graphics pipelines")
	c.pipelines = pipelines
}

// compilePipelines builds every variant in one call from the configured shaders. The shader modules are only
// needed during creation.
func (c *Core) compilePipelines() ([]vk.Pipeline, error) {
	vertShaderMod, vertStageInfo, err := LoadVert(c.ctx, c.cfg.Render.VertexShader)
	if err != nil {
		return nil, err
	}
	defer DeleteShaderMod(c.ctx, vertShaderMod)
	fragShaderMod, fragStageInfo, err := LoadFrag(c.ctx, c.cfg.Render.FragmentShader)
	if err != nil {
		return nil, err
	}
	defer DeleteShaderMod(c.ctx, fragShaderMod)
	return c.buildPipelines([]vk.PipelineShaderStageCreateInfo{vertStageInfo, fragStageInfo})
}

func (c *Core) buildPipelines(shaderStages []vk.PipelineShaderStageCreateInfo) ([]vk.Pipeline, error) {
	spec := pipelineSpec{
		Samples: c.layout.Samples,
		Depth:   c.layout.HasDepth(),
		Blend:   c.cfg.Render.Blend,
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	bindingDesc := model.GetVertexBindingDescriptions()
	attributeDesc := model.GetVertexAttributeDescriptions()
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindingDesc)),
		PVertexBindingDescriptions:      bindingDesc,
		VertexAttributeDescriptionCount: uint32(len(attributeDesc)),
		PVertexAttributeDescriptions:    attributeDesc,
	}
	inputAssemblyInfo := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	// viewport and scissor are dynamic, only their count is fixed here
	viewportStateInfo := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	multisamplingInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  spec.Samples,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}
	colorBlendingInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment(spec.Blend)},
	}
	depthStencil := depthStencilState(spec.Depth)

	modes := polygonModes(c.ctx.HasFeature(featureFillModeNonSolid))
	rasterizers := make([]vk.PipelineRasterizationStateCreateInfo, len(modes))
	pipelineInfos := make([]vk.GraphicsPipelineCreateInfo, len(modes))
	for i, mode := range modes {
		rasterizers[i] = rasterizationState(mode)
		pipelineInfos[i] = vk.GraphicsPipelineCreateInfo{
			SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount:          uint32(len(shaderStages)),
			PStages:             shaderStages,
			PVertexInputState:   &vertexInputInfo,
			PInputAssemblyState: &inputAssemblyInfo,
			PViewportState:      &viewportStateInfo,
			PRasterizationState: &rasterizers[i],
			PMultisampleState:   &multisamplingInfo,
			PDepthStencilState:  &depthStencil,
			PColorBlendState:    &colorBlendingInfo,
			PDynamicState:       &dynamicStateCreateInfo,
			Layout:              c.pipelineLayout,
			RenderPass:          c.renderPass,
			Subpass:             0,
			BasePipelineIndex:   -1,
		}
	}
	pipelines, err := common.VkCreateGraphicsPipelines(c.ctx.Device, nil, uint32(len(pipelineInfos)), pipelineInfos, c.ctx.Alloc)
	if err != nil {
		return nil, errors.Wrap(err, "create graphics pipelines")
	}
	if len(modes) == 1 {
		c.log.Warn("Device lacks " + featureFillModeNonSolid + ", wireframe rendering falls back to solid")
	}
	c.log.Info("Created graphics pipelines", "variants", len(pipelines), "samples", common.ToStringSampleCount(spec.Samples), "blend", spec.Blend)
	return pipelines, nil
}

func (c *Core) destroyPipelines() {
	c.destroyPipelineSet(c.pipelines)
	c.pipelines = nil
}

func (c *Core) destroyPipelineSet(pipelines []vk.Pipeline) {
	for _, p := range pipelines {
		vk.DestroyPipeline(c.ctx.Device, p, c.ctx.Alloc)
	}
}

// swapPipelines builds a replacement set and destroys old only after the build succeeded. On failure old is
// returned untouched so rendering can continue with it.
func swapPipelines(old []vk.Pipeline, build func() ([]vk.Pipeline, error), destroy func([]vk.Pipeline)) ([]vk.Pipeline, error) {
	fresh, err := build()
	if err != nil {
		return old, err
	}
	destroy(old)
	return fresh, nil
}
