package gpu

import "github.com/spaghettifunk/tundra/engine/gpu/hal"

type BindGroupLayoutBinding struct {
	Binding    uint32
	Visibility ShaderStageFlags
	Type       BindingType
}

// BindGroupLayoutDescriptor is a call-scoped borrow; the Bindings slice is
// copied during conversion and never retained.
type BindGroupLayoutDescriptor struct {
	Bindings []BindGroupLayoutBinding
}

type PipelineLayoutDescriptor struct {
	BindGroupLayouts []BindGroupLayoutID
}

// BindGroupLayout owns one backend descriptor-set layout.
type BindGroupLayout struct {
	raw hal.DescriptorSetLayout
}

// Raw returns the backend object, for backend interop and inspection.
func (l *BindGroupLayout) Raw() hal.DescriptorSetLayout {
	return l.raw
}

// PipelineLayout owns one backend pipeline layout.
type PipelineLayout struct {
	raw hal.PipelineLayout
}

func (l *PipelineLayout) Raw() hal.PipelineLayout {
	return l.raw
}
