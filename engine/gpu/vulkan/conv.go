package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

func vulkanFormat(format hal.Format) vk.Format {
	switch format {
	case hal.FormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case hal.FormatBGRA8Unorm:
		return vk.FormatB8g8r8a8Unorm
	case hal.FormatD32SFloatS8UInt:
		return vk.FormatD32SfloatS8Uint
	}
	return vk.FormatUndefined
}

func isDepthFormat(format hal.Format) bool {
	return format == hal.FormatD32SFloatS8UInt
}

func vulkanLoadOp(op hal.AttachmentLoadOp) vk.AttachmentLoadOp {
	switch op {
	case hal.AttachmentLoadOpClear:
		return vk.AttachmentLoadOpClear
	case hal.AttachmentLoadOpLoad:
		return vk.AttachmentLoadOpLoad
	case hal.AttachmentLoadOpDontCare:
		return vk.AttachmentLoadOpDontCare
	}
	return vk.AttachmentLoadOpDontCare
}

func vulkanStoreOp(op hal.AttachmentStoreOp) vk.AttachmentStoreOp {
	switch op {
	case hal.AttachmentStoreOpStore:
		return vk.AttachmentStoreOpStore
	case hal.AttachmentStoreOpDontCare:
		return vk.AttachmentStoreOpDontCare
	}
	return vk.AttachmentStoreOpDontCare
}

func vulkanImageLayout(layout hal.ImageLayout) vk.ImageLayout {
	switch layout {
	case hal.ImageLayoutUndefined:
		return vk.ImageLayoutUndefined
	case hal.ImageLayoutColorAttachmentOptimal:
		return vk.ImageLayoutColorAttachmentOptimal
	case hal.ImageLayoutPresent:
		return vk.ImageLayoutPresentSrc
	}
	return vk.ImageLayoutUndefined
}

func vulkanTopology(topology hal.PrimitiveTopology) vk.PrimitiveTopology {
	switch topology {
	case hal.PrimitiveTopologyPointList:
		return vk.PrimitiveTopologyPointList
	case hal.PrimitiveTopologyLineList:
		return vk.PrimitiveTopologyLineList
	case hal.PrimitiveTopologyLineStrip:
		return vk.PrimitiveTopologyLineStrip
	case hal.PrimitiveTopologyTriangleList:
		return vk.PrimitiveTopologyTriangleList
	case hal.PrimitiveTopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	}
	return vk.PrimitiveTopologyTriangleList
}

func vulkanBlendFactor(factor hal.BlendFactor) vk.BlendFactor {
	switch factor {
	case hal.BlendFactorZero:
		return vk.BlendFactorZero
	case hal.BlendFactorOne:
		return vk.BlendFactorOne
	case hal.BlendFactorSrcColor:
		return vk.BlendFactorSrcColor
	case hal.BlendFactorOneMinusSrcColor:
		return vk.BlendFactorOneMinusSrcColor
	case hal.BlendFactorSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case hal.BlendFactorOneMinusSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case hal.BlendFactorDstColor:
		return vk.BlendFactorDstColor
	case hal.BlendFactorOneMinusDstColor:
		return vk.BlendFactorOneMinusDstColor
	case hal.BlendFactorDstAlpha:
		return vk.BlendFactorDstAlpha
	case hal.BlendFactorOneMinusDstAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	}
	return vk.BlendFactorZero
}

func vulkanBlendOp(op hal.BlendOp) vk.BlendOp {
	switch op {
	case hal.BlendOpAdd:
		return vk.BlendOpAdd
	case hal.BlendOpSubtract:
		return vk.BlendOpSubtract
	case hal.BlendOpReverseSubtract:
		return vk.BlendOpReverseSubtract
	case hal.BlendOpMin:
		return vk.BlendOpMin
	case hal.BlendOpMax:
		return vk.BlendOpMax
	}
	return vk.BlendOpAdd
}

func vulkanCompareOp(op hal.CompareOp) vk.CompareOp {
	switch op {
	case hal.CompareOpNever:
		return vk.CompareOpNever
	case hal.CompareOpLess:
		return vk.CompareOpLess
	case hal.CompareOpEqual:
		return vk.CompareOpEqual
	case hal.CompareOpLessEqual:
		return vk.CompareOpLessOrEqual
	case hal.CompareOpGreater:
		return vk.CompareOpGreater
	case hal.CompareOpNotEqual:
		return vk.CompareOpNotEqual
	case hal.CompareOpGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	case hal.CompareOpAlways:
		return vk.CompareOpAlways
	}
	return vk.CompareOpAlways
}

func vulkanStencilOp(op hal.StencilOp) vk.StencilOp {
	switch op {
	case hal.StencilOpKeep:
		return vk.StencilOpKeep
	case hal.StencilOpZero:
		return vk.StencilOpZero
	case hal.StencilOpReplace:
		return vk.StencilOpReplace
	case hal.StencilOpInvert:
		return vk.StencilOpInvert
	case hal.StencilOpIncrementClamp:
		return vk.StencilOpIncrementAndClamp
	case hal.StencilOpDecrementClamp:
		return vk.StencilOpDecrementAndClamp
	case hal.StencilOpIncrementWrap:
		return vk.StencilOpIncrementAndWrap
	case hal.StencilOpDecrementWrap:
		return vk.StencilOpDecrementAndWrap
	}
	return vk.StencilOpKeep
}

func vulkanStencilOpState(face hal.StencilFace, readMask, writeMask uint32) vk.StencilOpState {
	return vk.StencilOpState{
		FailOp:      vulkanStencilOp(face.FailOp),
		PassOp:      vulkanStencilOp(face.PassOp),
		DepthFailOp: vulkanStencilOp(face.DepthFailOp),
		CompareOp:   vulkanCompareOp(face.Compare),
		CompareMask: readMask,
		WriteMask:   writeMask,
	}
}

func vulkanDescriptorType(t hal.DescriptorType) vk.DescriptorType {
	switch t {
	case hal.DescriptorTypeUniformBuffer:
		return vk.DescriptorTypeUniformBuffer
	case hal.DescriptorTypeSampler:
		return vk.DescriptorTypeSampler
	case hal.DescriptorTypeSampledImage:
		return vk.DescriptorTypeCombinedImageSampler
	case hal.DescriptorTypeStorageBuffer:
		return vk.DescriptorTypeStorageBuffer
	}
	return vk.DescriptorTypeUniformBuffer
}

func vulkanShaderStageFlags(flags hal.ShaderStageFlags) vk.ShaderStageFlags {
	var out vk.ShaderStageFlags
	if flags&hal.ShaderStageFlagVertex != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if flags&hal.ShaderStageFlagFragment != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	if flags&hal.ShaderStageFlagCompute != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageComputeBit)
	}
	return out
}
