package vulkan

import (
	"encoding/binary"
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

// hal.Device implementation. Every method performs exactly one driver
// creation call under the matching lock group and returns the raw Vulkan
// object behind the hal opaque type.

func (b *Backend) CreateDescriptorSetLayout(bindings []hal.DescriptorSetLayoutBinding) (hal.DescriptorSetLayout, error) {
	layoutBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, binding := range bindings {
		layoutBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         binding.Binding,
			DescriptorType:  vulkanDescriptorType(binding.Type),
			DescriptorCount: uint32(binding.Count),
			StageFlags:      vulkanShaderStageFlags(binding.Stages),
		}
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layoutBindings)),
		PBindings:    layoutBindings,
	}

	var layout vk.DescriptorSetLayout
	if err := lockPool.SafeCall(DescriptorManagement, func() error {
		if res := vk.CreateDescriptorSetLayout(b.LogicalDevice, &layoutInfo, b.Allocator, &layout); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return layout, nil
}

func (b *Backend) CreatePipelineLayout(setLayouts []hal.DescriptorSetLayout) (hal.PipelineLayout, error) {
	layouts := make([]vk.DescriptorSetLayout, len(setLayouts))
	for i, l := range setLayouts {
		layouts[i] = l.(vk.DescriptorSetLayout)
	}

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(layouts)),
		PSetLayouts:    layouts,
		// TODO: push constant ranges.
		PushConstantRangeCount: 0,
		PPushConstantRanges:    nil,
	}

	var pipelineLayout vk.PipelineLayout
	if err := lockPool.SafeCall(PipelineManagement, func() error {
		if res := vk.CreatePipelineLayout(b.LogicalDevice, &pipelineLayoutCreateInfo, b.Allocator, &pipelineLayout); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkCreatePipelineLayout failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return pipelineLayout, nil
}

func (b *Backend) CreateShaderModule(code []byte) (hal.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader byte code length %d is not a multiple of 4", len(code))
		core.LogError(err.Error())
		return nil, err
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}

	var module vk.ShaderModule
	if err := lockPool.SafeCall(ShaderManagement, func() error {
		if res := vk.CreateShaderModule(b.LogicalDevice, &createInfo, b.Allocator, &module); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkCreateShaderModule failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return module, nil
}

func (b *Backend) CreateRenderPass(attachments []hal.Attachment) (hal.RenderPass, error) {
	attachmentDescriptions := make([]vk.AttachmentDescription, len(attachments))
	colorAttachmentReferences := []vk.AttachmentReference{}
	var depthAttachmentReference *vk.AttachmentReference

	for i, attachment := range attachments {
		finalLayout := vulkanImageLayout(attachment.FinalLayout)
		if isDepthFormat(attachment.Format) {
			finalLayout = vk.ImageLayoutDepthStencilAttachmentOptimal
		}
		description := vk.AttachmentDescription{
			Format:         vulkanFormat(attachment.Format),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vulkanLoadOp(attachment.LoadOp),
			StoreOp:        vulkanStoreOp(attachment.StoreOp),
			StencilLoadOp:  vulkanLoadOp(attachment.StencilLoadOp),
			StencilStoreOp: vulkanStoreOp(attachment.StencilStoreOp),
			InitialLayout:  vulkanImageLayout(attachment.InitialLayout),
			FinalLayout:    finalLayout,
			Flags:          0,
		}
		description.Deref()
		attachmentDescriptions[i] = description

		if isDepthFormat(attachment.Format) {
			depthAttachmentReference = &vk.AttachmentReference{
				Attachment: uint32(i),
				Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
			}
		} else {
			colorAttachmentReferences = append(colorAttachmentReferences, vk.AttachmentReference{
				Attachment: uint32(i),
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			})
		}
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    uint32(len(colorAttachmentReferences)),
		PColorAttachments:       colorAttachmentReferences,
		PDepthStencilAttachment: depthAttachmentReference,
	}
	subpass.Deref()

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	dependency.Deref()

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	renderpassCreateInfo.Deref()

	var renderPass vk.RenderPass
	if err := lockPool.SafeCall(RenderpassManagement, func() error {
		if res := vk.CreateRenderPass(b.LogicalDevice, &renderpassCreateInfo, b.Allocator, &renderPass); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkCreateRenderPass failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return renderPass, nil
}

func (b *Backend) CreateGraphicsPipeline(desc hal.GraphicsPipelineDesc) (hal.Pipeline, error) {
	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: desc.Vertex.Module.(vk.ShaderModule),
		PName:  VulkanSafeString(desc.Vertex.EntryPoint),
	}}
	if desc.Fragment != nil {
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: desc.Fragment.Module.(vk.ShaderModule),
			PName:  VulkanSafeString(desc.Fragment.EntryPoint),
		})
	}

	// Viewport and scissor are dynamic; placeholder values here.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{{Width: 1, Height: 1, MaxDepth: 1.0}},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{{Extent: vk.Extent2D{Width: 1, Height: 1}}},
	}
	viewportState.Deref()

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
	}
	rasterizerCreateInfo.Deref()

	// TODO: multisampling is deferred; always one sample.
	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}
	multisamplingCreateInfo.Deref()

	depthWrite := vk.Bool32(vk.False)
	if desc.DepthStencil.DepthWriteEnabled {
		depthWrite = vk.Bool32(vk.True)
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   vk.True,
		DepthWriteEnable:  depthWrite,
		DepthCompareOp:    vulkanCompareOp(desc.DepthStencil.DepthCompare),
		StencilTestEnable: vk.False,
		Front:             vulkanStencilOpState(desc.DepthStencil.Front, desc.DepthStencil.StencilReadMask, desc.DepthStencil.StencilWriteMask),
		Back:              vulkanStencilOpState(desc.DepthStencil.Back, desc.DepthStencil.StencilReadMask, desc.DepthStencil.StencilWriteMask),
	}
	depthStencil.Deref()

	blendAttachments := make([]vk.PipelineColorBlendAttachmentState, len(desc.Blend))
	for i, target := range desc.Blend {
		enabled := vk.Bool32(vk.False)
		if target.Enabled {
			enabled = vk.Bool32(vk.True)
		}
		state := vk.PipelineColorBlendAttachmentState{
			BlendEnable:         enabled,
			SrcColorBlendFactor: vulkanBlendFactor(target.ColorSrc),
			DstColorBlendFactor: vulkanBlendFactor(target.ColorDst),
			ColorBlendOp:        vulkanBlendOp(target.ColorOp),
			SrcAlphaBlendFactor: vulkanBlendFactor(target.AlphaSrc),
			DstAlphaBlendFactor: vulkanBlendFactor(target.AlphaDst),
			AlphaBlendOp:        vulkanBlendOp(target.AlphaOp),
			ColorWriteMask:      vk.ColorComponentFlags(target.WriteMask),
		}
		state.Deref()
		blendAttachments[i] = state
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}
	colorBlendStateCreateInfo.Deref()

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	dynamicStateCreateInfo.Deref()

	// TODO: vertex buffer layouts are deferred; no bindings or attributes.
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   0,
		VertexAttributeDescriptionCount: 0,
	}
	vertexInputInfo.Deref()

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vulkanTopology(desc.Topology),
		PrimitiveRestartEnable: vk.False,
	}
	inputAssembly.Deref()

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              desc.Layout.(vk.PipelineLayout),
		RenderPass:          desc.Pass.(vk.RenderPass),
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
	pipelineCreateInfo.Deref()

	pPipelines := make([]vk.Pipeline, 1)
	if err := lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreateGraphicsPipelines(
			b.LogicalDevice,
			vk.NullPipelineCache,
			1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
			b.Allocator,
			pPipelines)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	core.LogDebug("Graphics pipeline created!")
	return pPipelines[0], nil
}

func (b *Backend) CreateCommandBuffer(queueFamily uint32) (hal.CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        b.GraphicsCommandPool,
		CommandBufferCount: 1,
		Level:              vk.CommandBufferLevelPrimary,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := lockPool.SafeCall(CommandBufferManagement, func() error {
		if res := vk.AllocateCommandBuffers(b.LogicalDevice, &allocateInfo, commandBuffers); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to allocate command buffer: %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return commandBuffers[0], nil
}

func (b *Backend) FreeCommandBuffer(cb hal.CommandBuffer) {
	_ = lockPool.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(b.LogicalDevice, b.GraphicsCommandPool, 1, []vk.CommandBuffer{cb.(vk.CommandBuffer)})
		return nil
	})
}
