// Package hal declares the interface the gpu layer consumes from a hardware
// abstraction backend. Backend objects are opaque to the caller: they are
// created by a Device, stored behind handles by the gpu registries and handed
// back verbatim on dependent creation calls. Every operation is synchronous
// and fallible; a failed creation produces no object.
package hal

// Opaque backend-owned objects. Concrete backends return their own types
// behind these interfaces; the gpu layer never inspects them.
type (
	DescriptorSetLayout interface{}
	PipelineLayout      interface{}
	ShaderModule        interface{}
	RenderPass          interface{}
	Pipeline            interface{}
	CommandBuffer       interface{}
	Semaphore           interface{}
)

// Fence is the backend's completion signal for one submission. Done must be
// safe to call from any thread and must never flip back to false. Release
// frees the backend object; it is called exactly once, after Done reports
// true or when the submission is abandoned, and the fence must not be used
// afterwards.
type Fence interface {
	Done() bool
	Release()
}

type Device interface {
	CreateDescriptorSetLayout(bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, error)
	CreatePipelineLayout(setLayouts []DescriptorSetLayout) (PipelineLayout, error)
	CreateShaderModule(code []byte) (ShaderModule, error)
	CreateRenderPass(attachments []Attachment) (RenderPass, error)
	CreateGraphicsPipeline(desc GraphicsPipelineDesc) (Pipeline, error)

	// CreateCommandBuffer allocates a primary command buffer from the pool of
	// the given queue family.
	CreateCommandBuffer(queueFamily uint32) (CommandBuffer, error)
	FreeCommandBuffer(cb CommandBuffer)
}

type Queue interface {
	Family() uint32

	// Submit enqueues one command buffer with explicit (possibly empty)
	// wait/signal semaphore lists. The returned fence reports completion.
	Submit(cb CommandBuffer, waits, signals []Semaphore) (Fence, error)
}

type DescriptorType int

const (
	DescriptorTypeUniformBuffer DescriptorType = iota
	DescriptorTypeSampler
	DescriptorTypeSampledImage
	DescriptorTypeStorageBuffer
)

type ShaderStageFlags uint32

const (
	ShaderStageFlagNone     ShaderStageFlags = 0
	ShaderStageFlagVertex   ShaderStageFlags = 1 << 0
	ShaderStageFlagFragment ShaderStageFlags = 1 << 1
	ShaderStageFlagCompute  ShaderStageFlags = 1 << 2
)

type DescriptorSetLayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   int
	Stages  ShaderStageFlags
}

type Format int

const (
	FormatUndefined Format = iota
	FormatRGBA8Unorm
	FormatBGRA8Unorm
	FormatD32SFloatS8UInt
)

type AttachmentLoadOp int

const (
	AttachmentLoadOpClear AttachmentLoadOp = iota
	AttachmentLoadOpLoad
	AttachmentLoadOpDontCare
)

type AttachmentStoreOp int

const (
	AttachmentStoreOpStore AttachmentStoreOp = iota
	AttachmentStoreOpDontCare
)

type ImageLayout int

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutColorAttachmentOptimal
	ImageLayoutPresent
)

type Attachment struct {
	Format         Format
	Samples        uint32
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

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

type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

type BlendTarget struct {
	Enabled   bool
	ColorSrc  BlendFactor
	ColorDst  BlendFactor
	ColorOp   BlendOp
	AlphaSrc  BlendFactor
	AlphaDst  BlendFactor
	AlphaOp   BlendOp
	WriteMask uint32
}

type CompareOp int

const (
	CompareOpNever CompareOp = iota
	CompareOpLess
	CompareOpEqual
	CompareOpLessEqual
	CompareOpGreater
	CompareOpNotEqual
	CompareOpGreaterEqual
	CompareOpAlways
)

type StencilOp int

const (
	StencilOpKeep StencilOp = iota
	StencilOpZero
	StencilOpReplace
	StencilOpInvert
	StencilOpIncrementClamp
	StencilOpDecrementClamp
	StencilOpIncrementWrap
	StencilOpDecrementWrap
)

type StencilFace struct {
	Compare     CompareOp
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
}

type DepthStencil struct {
	DepthWriteEnabled bool
	DepthCompare      CompareOp
	Front             StencilFace
	Back              StencilFace
	StencilReadMask   uint32
	StencilWriteMask  uint32
}

type PrimitiveTopology int

const (
	PrimitiveTopologyPointList PrimitiveTopology = iota
	PrimitiveTopologyLineList
	PrimitiveTopologyLineStrip
	PrimitiveTopologyTriangleList
	PrimitiveTopologyTriangleStrip
)

// ShaderEntry names one stage's entry point inside a compiled module.
type ShaderEntry struct {
	Module     ShaderModule
	EntryPoint string
}

// GraphicsPipelineDesc carries the fully resolved native arguments for one
// pipeline compilation. The fragment stage is optional.
type GraphicsPipelineDesc struct {
	Layout       PipelineLayout
	Vertex       ShaderEntry
	Fragment     *ShaderEntry
	Topology     PrimitiveTopology
	Blend        []BlendTarget
	DepthStencil DepthStencil
	Pass         RenderPass
}

type MemoryType struct {
	PropertyFlags uint32
	HeapIndex     int
}

type MemoryHeap struct {
	Size uint64
}

type MemoryProperties struct {
	Types []MemoryType
	Heaps []MemoryHeap
}

// Memory property bits, matching the usual Vulkan semantics.
const (
	MemoryDeviceLocal  uint32 = 1 << 0
	MemoryHostVisible  uint32 = 1 << 1
	MemoryHostCoherent uint32 = 1 << 2
	MemoryHostCached   uint32 = 1 << 3
)
