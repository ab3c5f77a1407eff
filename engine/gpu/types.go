package gpu

// Public descriptor enums. These are the caller-facing vocabulary; conv.go
// maps them onto the backend's native representation.

type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageCompute:
		return "compute"
	}
	return "unknown"
}

type ShaderStageFlags uint32

const (
	ShaderStageFlagNone     ShaderStageFlags = 0
	ShaderStageFlagVertex   ShaderStageFlags = 1 << 0
	ShaderStageFlagFragment ShaderStageFlags = 1 << 1
	ShaderStageFlagCompute  ShaderStageFlags = 1 << 2
)

type BindingType int

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeSampler
	BindingTypeSampledTexture
	BindingTypeStorageBuffer
)

type TextureFormat int

const (
	TextureFormatR8G8B8A8Unorm TextureFormat = iota
	TextureFormatB8G8R8A8Unorm
	TextureFormatD32FloatS8Uint
)

type PrimitiveTopology int

const (
	PrimitiveTopologyPointList PrimitiveTopology = iota
	PrimitiveTopologyLineList
	PrimitiveTopologyLineStrip
	PrimitiveTopologyTriangleList
	PrimitiveTopologyTriangleStrip
)

type BlendFactor int

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorOneMinusSrcColor
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstColor
	BlendFactorOneMinusDstColor
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

type BlendOperation int

const (
	BlendOperationAdd BlendOperation = iota
	BlendOperationSubtract
	BlendOperationReverseSubtract
	BlendOperationMin
	BlendOperationMax
)

type ColorWriteFlags uint32

const (
	ColorWriteFlagR   ColorWriteFlags = 1 << 0
	ColorWriteFlagG   ColorWriteFlags = 1 << 1
	ColorWriteFlagB   ColorWriteFlags = 1 << 2
	ColorWriteFlagA   ColorWriteFlags = 1 << 3
	ColorWriteFlagAll ColorWriteFlags = ColorWriteFlagR | ColorWriteFlagG | ColorWriteFlagB | ColorWriteFlagA
)

type CompareFunction int

const (
	CompareFunctionNever CompareFunction = iota
	CompareFunctionLess
	CompareFunctionEqual
	CompareFunctionLessEqual
	CompareFunctionGreater
	CompareFunctionNotEqual
	CompareFunctionGreaterEqual
	CompareFunctionAlways
)

type StencilOperation int

const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationInvert
	StencilOperationIncrementClamp
	StencilOperationDecrementClamp
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)
