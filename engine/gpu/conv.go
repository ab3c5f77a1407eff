package gpu

import "github.com/spaghettifunk/tundra/engine/gpu/hal"

// Pure descriptor-to-backend translation. Every function copies out of the
// caller's descriptor; nothing here retains a caller slice.

func convBindingType(t BindingType) hal.DescriptorType {
	switch t {
	case BindingTypeUniformBuffer:
		return hal.DescriptorTypeUniformBuffer
	case BindingTypeSampler:
		return hal.DescriptorTypeSampler
	case BindingTypeSampledTexture:
		return hal.DescriptorTypeSampledImage
	case BindingTypeStorageBuffer:
		return hal.DescriptorTypeStorageBuffer
	}
	return hal.DescriptorTypeUniformBuffer
}

func convShaderStageFlags(flags ShaderStageFlags) hal.ShaderStageFlags {
	var out hal.ShaderStageFlags
	if flags&ShaderStageFlagVertex != 0 {
		out |= hal.ShaderStageFlagVertex
	}
	if flags&ShaderStageFlagFragment != 0 {
		out |= hal.ShaderStageFlagFragment
	}
	if flags&ShaderStageFlagCompute != 0 {
		out |= hal.ShaderStageFlagCompute
	}
	return out
}

func convBindGroupLayoutBindings(bindings []BindGroupLayoutBinding) []hal.DescriptorSetLayoutBinding {
	out := make([]hal.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		out[i] = hal.DescriptorSetLayoutBinding{
			Binding: b.Binding,
			Type:    convBindingType(b.Type),
			Count:   1,
			Stages:  convShaderStageFlags(b.Visibility),
		}
	}
	return out
}

func convTextureFormat(format TextureFormat) hal.Format {
	switch format {
	case TextureFormatR8G8B8A8Unorm:
		return hal.FormatRGBA8Unorm
	case TextureFormatB8G8R8A8Unorm:
		return hal.FormatBGRA8Unorm
	case TextureFormatD32FloatS8Uint:
		return hal.FormatD32SFloatS8UInt
	}
	return hal.FormatUndefined
}

func convBlendFactor(factor BlendFactor) hal.BlendFactor {
	switch factor {
	case BlendFactorZero:
		return hal.BlendFactorZero
	case BlendFactorOne:
		return hal.BlendFactorOne
	case BlendFactorSrcColor:
		return hal.BlendFactorSrcColor
	case BlendFactorOneMinusSrcColor:
		return hal.BlendFactorOneMinusSrcColor
	case BlendFactorSrcAlpha:
		return hal.BlendFactorSrcAlpha
	case BlendFactorOneMinusSrcAlpha:
		return hal.BlendFactorOneMinusSrcAlpha
	case BlendFactorDstColor:
		return hal.BlendFactorDstColor
	case BlendFactorOneMinusDstColor:
		return hal.BlendFactorOneMinusDstColor
	case BlendFactorDstAlpha:
		return hal.BlendFactorDstAlpha
	case BlendFactorOneMinusDstAlpha:
		return hal.BlendFactorOneMinusDstAlpha
	}
	return hal.BlendFactorZero
}

func convBlendOperation(op BlendOperation) hal.BlendOp {
	switch op {
	case BlendOperationAdd:
		return hal.BlendOpAdd
	case BlendOperationSubtract:
		return hal.BlendOpSubtract
	case BlendOperationReverseSubtract:
		return hal.BlendOpReverseSubtract
	case BlendOperationMin:
		return hal.BlendOpMin
	case BlendOperationMax:
		return hal.BlendOpMax
	}
	return hal.BlendOpAdd
}

func convBlendStateDescriptor(desc *BlendStateDescriptor) hal.BlendTarget {
	return hal.BlendTarget{
		Enabled:   desc.BlendEnabled,
		ColorSrc:  convBlendFactor(desc.Color.SrcFactor),
		ColorDst:  convBlendFactor(desc.Color.DstFactor),
		ColorOp:   convBlendOperation(desc.Color.Operation),
		AlphaSrc:  convBlendFactor(desc.Alpha.SrcFactor),
		AlphaDst:  convBlendFactor(desc.Alpha.DstFactor),
		AlphaOp:   convBlendOperation(desc.Alpha.Operation),
		WriteMask: uint32(desc.WriteMask),
	}
}

func convCompareFunction(fn CompareFunction) hal.CompareOp {
	switch fn {
	case CompareFunctionNever:
		return hal.CompareOpNever
	case CompareFunctionLess:
		return hal.CompareOpLess
	case CompareFunctionEqual:
		return hal.CompareOpEqual
	case CompareFunctionLessEqual:
		return hal.CompareOpLessEqual
	case CompareFunctionGreater:
		return hal.CompareOpGreater
	case CompareFunctionNotEqual:
		return hal.CompareOpNotEqual
	case CompareFunctionGreaterEqual:
		return hal.CompareOpGreaterEqual
	case CompareFunctionAlways:
		return hal.CompareOpAlways
	}
	return hal.CompareOpAlways
}

func convStencilOperation(op StencilOperation) hal.StencilOp {
	switch op {
	case StencilOperationKeep:
		return hal.StencilOpKeep
	case StencilOperationZero:
		return hal.StencilOpZero
	case StencilOperationReplace:
		return hal.StencilOpReplace
	case StencilOperationInvert:
		return hal.StencilOpInvert
	case StencilOperationIncrementClamp:
		return hal.StencilOpIncrementClamp
	case StencilOperationDecrementClamp:
		return hal.StencilOpDecrementClamp
	case StencilOperationIncrementWrap:
		return hal.StencilOpIncrementWrap
	case StencilOperationDecrementWrap:
		return hal.StencilOpDecrementWrap
	}
	return hal.StencilOpKeep
}

func convStencilFace(desc StencilStateFaceDescriptor) hal.StencilFace {
	return hal.StencilFace{
		Compare:     convCompareFunction(desc.Compare),
		FailOp:      convStencilOperation(desc.StencilFailOp),
		DepthFailOp: convStencilOperation(desc.DepthStencilFailOp),
		PassOp:      convStencilOperation(desc.PassOp),
	}
}

func convDepthStencilStateDescriptor(desc *DepthStencilStateDescriptor) hal.DepthStencil {
	return hal.DepthStencil{
		DepthWriteEnabled: desc.DepthWriteEnabled,
		DepthCompare:      convCompareFunction(desc.DepthCompare),
		Front:             convStencilFace(desc.Front),
		Back:              convStencilFace(desc.Back),
		StencilReadMask:   desc.StencilReadMask,
		StencilWriteMask:  desc.StencilWriteMask,
	}
}

func convPrimitiveTopology(topology PrimitiveTopology) hal.PrimitiveTopology {
	switch topology {
	case PrimitiveTopologyPointList:
		return hal.PrimitiveTopologyPointList
	case PrimitiveTopologyLineList:
		return hal.PrimitiveTopologyLineList
	case PrimitiveTopologyLineStrip:
		return hal.PrimitiveTopologyLineStrip
	case PrimitiveTopologyTriangleList:
		return hal.PrimitiveTopologyTriangleList
	case PrimitiveTopologyTriangleStrip:
		return hal.PrimitiveTopologyTriangleStrip
	}
	return hal.PrimitiveTopologyTriangleList
}

func convAttachmentStateDescriptor(desc *AttachmentStateDescriptor) []hal.Attachment {
	attachments := make([]hal.Attachment, len(desc.Formats))
	for i, format := range desc.Formats {
		attachments[i] = hal.Attachment{
			Format:         convTextureFormat(format),
			Samples:        1,
			LoadOp:         hal.AttachmentLoadOpClear,
			StoreOp:        hal.AttachmentStoreOpStore,
			StencilLoadOp:  hal.AttachmentLoadOpDontCare,
			StencilStoreOp: hal.AttachmentStoreOpDontCare,
			InitialLayout:  hal.ImageLayoutUndefined,
			FinalLayout:    hal.ImageLayoutPresent,
		}
	}
	return attachments
}
