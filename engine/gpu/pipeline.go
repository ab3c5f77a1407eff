package gpu

import "github.com/spaghettifunk/tundra/engine/gpu/hal"

type BlendDescriptor struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Operation BlendOperation
}

type BlendStateDescriptor struct {
	BlendEnabled bool
	Color        BlendDescriptor
	Alpha        BlendDescriptor
	WriteMask    ColorWriteFlags
}

type StencilStateFaceDescriptor struct {
	Compare            CompareFunction
	StencilFailOp      StencilOperation
	DepthStencilFailOp StencilOperation
	PassOp             StencilOperation
}

type DepthStencilStateDescriptor struct {
	DepthWriteEnabled bool
	DepthCompare      CompareFunction
	Front             StencilStateFaceDescriptor
	Back              StencilStateFaceDescriptor
	StencilReadMask   uint32
	StencilWriteMask  uint32
}

// ShaderModuleDescriptor carries SPIR-V byte code. The slice is a call-scoped
// borrow: the backend copies what it needs before the creation call returns.
type ShaderModuleDescriptor struct {
	Code []byte
}

// AttachmentStateDescriptor lists the color attachment formats a pipeline
// renders into. The Formats slice is copied during conversion.
type AttachmentStateDescriptor struct {
	Formats []TextureFormat
}

type PipelineStageDescriptor struct {
	Module     ShaderModuleID
	Stage      ShaderStage
	EntryPoint string
}

type RenderPipelineDescriptor struct {
	Layout            PipelineLayoutID
	Stages            []PipelineStageDescriptor
	PrimitiveTopology PrimitiveTopology
	BlendStates       []BlendStateID
	DepthStencilState DepthStencilStateID
	AttachmentState   AttachmentStateID
}

// BlendState and DepthStencilState are pure descriptor translations: the
// backend representation is computed eagerly at creation time and the caller
// descriptor is dropped.
type BlendState struct {
	raw hal.BlendTarget
}

func (s *BlendState) Raw() hal.BlendTarget {
	return s.raw
}

type DepthStencilState struct {
	raw hal.DepthStencil
}

func (s *DepthStencilState) Raw() hal.DepthStencil {
	return s.raw
}

type AttachmentState struct {
	raw []hal.Attachment
}

func (s *AttachmentState) Raw() []hal.Attachment {
	return s.raw
}

type ShaderModule struct {
	raw hal.ShaderModule
}

func (m *ShaderModule) Raw() hal.ShaderModule {
	return m.raw
}

// RenderPipeline owns the compiled backend pipeline and the render pass that
// was built from the attachment state as a side effect of compilation.
type RenderPipeline struct {
	raw  hal.Pipeline
	pass hal.RenderPass
}

func (p *RenderPipeline) Raw() hal.Pipeline {
	return p.raw
}

func (p *RenderPipeline) Pass() hal.RenderPass {
	return p.pass
}
