package gpu

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

// Options configures a Context.
type Options struct {
	// RecycledCommandBuffers caps the per-device pool of completed command
	// buffers kept for reuse.
	RecycledCommandBuffers int
}

// Context owns one registry per object kind. Its lifetime is explicit:
// create it at startup, tear it down with Destroy at shutdown. All entry
// points are safe to call from any goroutine.
//
// Lock ordering is fixed across all operations: the device registry is
// always acquired before any dependent-resource registry, and same-kind
// dependent lookups are collected under a single acquisition. No registry
// lock is ever held across two entry points.
type Context struct {
	opts Options

	devices            *Registry[Device]
	bindGroupLayouts   *Registry[BindGroupLayout]
	pipelineLayouts    *Registry[PipelineLayout]
	blendStates        *Registry[BlendState]
	depthStencilStates *Registry[DepthStencilState]
	attachmentStates   *Registry[AttachmentState]
	shaderModules      *Registry[ShaderModule]
	renderPipelines    *Registry[RenderPipeline]
	commandBuffers     *Registry[CommandBuffer]
}

func NewContext(opts Options) *Context {
	return &Context{
		opts:               opts,
		devices:            NewRegistry[Device](),
		bindGroupLayouts:   NewRegistry[BindGroupLayout](),
		pipelineLayouts:    NewRegistry[PipelineLayout](),
		blendStates:        NewRegistry[BlendState](),
		depthStencilStates: NewRegistry[DepthStencilState](),
		attachmentStates:   NewRegistry[AttachmentState](),
		shaderModules:      NewRegistry[ShaderModule](),
		renderPipelines:    NewRegistry[RenderPipeline](),
		commandBuffers:     NewRegistry[CommandBuffer](),
	}
}

// CreateDevice registers a backend device with its hardware queues and
// memory properties. The label is generated when empty.
func (c *Context) CreateDevice(raw hal.Device, queues []hal.Queue, props hal.MemoryProperties, label string) (DeviceID, error) {
	if len(queues) == 0 {
		return HandleNone, core.ErrNoQueues
	}
	if label == "" {
		label = uuid.New().String()
	}

	device := newDevice(raw, queues, props, label, c.opts.RecycledCommandBuffers)
	id := c.devices.Register(device)
	core.LogInfo("device %q registered (queue family %d)", label, queues[0].Family())
	return id, nil
}

// DestroyDevice removes the device from the registry and drops it. Backend
// teardown of the underlying objects stays with the backend.
func (c *Context) DestroyDevice(deviceID DeviceID) {
	device := c.devices.Take(deviceID)
	core.LogInfo("device %q destroyed", device.Label())
}

func (c *Context) CreateBindGroupLayout(deviceID DeviceID, desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error) {
	device := c.devices.Get(deviceID)

	raw, err := device.raw.CreateDescriptorSetLayout(convBindGroupLayoutBindings(desc.Bindings))
	if err != nil {
		return HandleNone, fmt.Errorf("create bind group layout: %w", err)
	}
	return c.bindGroupLayouts.Register(&BindGroupLayout{raw: raw}), nil
}

func (c *Context) CreatePipelineLayout(deviceID DeviceID, desc *PipelineLayoutDescriptor) (PipelineLayoutID, error) {
	device := c.devices.Get(deviceID)

	// One shared acquisition per dependent registry; resolved objects are
	// collected into a transient list before the backend call.
	setLayouts := make([]hal.DescriptorSetLayout, len(desc.BindGroupLayouts))
	for i, id := range desc.BindGroupLayouts {
		setLayouts[i] = c.bindGroupLayouts.Get(id).raw
	}

	raw, err := device.raw.CreatePipelineLayout(setLayouts)
	if err != nil {
		return HandleNone, fmt.Errorf("create pipeline layout: %w", err)
	}
	return c.pipelineLayouts.Register(&PipelineLayout{raw: raw}), nil
}

// CreateBlendState is a pure descriptor translation; no backend call is made.
func (c *Context) CreateBlendState(deviceID DeviceID, desc *BlendStateDescriptor) (BlendStateID, error) {
	_ = c.devices.Get(deviceID)

	return c.blendStates.Register(&BlendState{raw: convBlendStateDescriptor(desc)}), nil
}

// CreateDepthStencilState is a pure descriptor translation.
func (c *Context) CreateDepthStencilState(deviceID DeviceID, desc *DepthStencilStateDescriptor) (DepthStencilStateID, error) {
	_ = c.devices.Get(deviceID)

	return c.depthStencilStates.Register(&DepthStencilState{raw: convDepthStencilStateDescriptor(desc)}), nil
}

// CreateAttachmentState translates the attachment formats eagerly; the
// backend render pass is built later, at pipeline creation.
func (c *Context) CreateAttachmentState(deviceID DeviceID, desc *AttachmentStateDescriptor) (AttachmentStateID, error) {
	_ = c.devices.Get(deviceID)

	return c.attachmentStates.Register(&AttachmentState{raw: convAttachmentStateDescriptor(desc)}), nil
}

func (c *Context) CreateShaderModule(deviceID DeviceID, desc *ShaderModuleDescriptor) (ShaderModuleID, error) {
	device := c.devices.Get(deviceID)

	raw, err := device.raw.CreateShaderModule(desc.Code)
	if err != nil {
		return HandleNone, fmt.Errorf("create shader module: %w", err)
	}
	return c.shaderModules.Register(&ShaderModule{raw: raw}), nil
}

// CreateCommandBuffer allocates a buffer from the device's command allocator
// and hands ownership to the command-buffer registry for recording.
func (c *Context) CreateCommandBuffer(deviceID DeviceID) (CommandBufferID, error) {
	var cb *CommandBuffer
	err := c.devices.Write(deviceID, func(device *Device) error {
		var err error
		cb, err = device.comAllocator.Allocate(device.raw)
		return err
	})
	if err != nil {
		return HandleNone, fmt.Errorf("create command buffer: %w", err)
	}
	return c.commandBuffers.Register(cb), nil
}

// CreateRenderPipeline resolves the pipeline layout, the shader stages, the
// blend states, the depth-stencil state and the attachment state, builds a
// render pass from the attachments as a side effect and compiles the
// graphics pipeline. Either the whole object is created and registered or
// nothing is.
func (c *Context) CreateRenderPipeline(deviceID DeviceID, desc *RenderPipelineDescriptor) (RenderPipelineID, error) {
	device := c.devices.Get(deviceID)
	layout := c.pipelineLayouts.Get(desc.Layout).raw

	var vertex *hal.ShaderEntry
	var fragment *hal.ShaderEntry
	for _, stage := range desc.Stages {
		entry := hal.ShaderEntry{
			Module:     c.shaderModules.Get(stage.Module).raw,
			EntryPoint: stage.EntryPoint,
		}
		switch stage.Stage {
		case ShaderStageVertex:
			vertex = &entry
		case ShaderStageFragment:
			fragment = &entry
		case ShaderStageCompute:
			// Accepted by the descriptor shape, rejected here: a compute
			// stage cannot appear in the graphics pipeline path.
			return HandleNone, fmt.Errorf("create render pipeline: %s stage: %w", stage.Stage, core.ErrUnsupportedShaderStage)
		default:
			return HandleNone, fmt.Errorf("create render pipeline: %s stage: %w", stage.Stage, core.ErrUnsupportedShaderStage)
		}
	}
	if vertex == nil {
		return HandleNone, fmt.Errorf("create render pipeline: %w", core.ErrMissingVertexStage)
	}

	blend := make([]hal.BlendTarget, len(desc.BlendStates))
	for i, id := range desc.BlendStates {
		blend[i] = c.blendStates.Get(id).raw
	}

	depthStencil := c.depthStencilStates.Get(desc.DepthStencilState).raw
	attachments := c.attachmentStates.Get(desc.AttachmentState).raw

	pass, err := device.raw.CreateRenderPass(attachments)
	if err != nil {
		return HandleNone, fmt.Errorf("create render pass: %w", err)
	}

	pipeline, err := device.raw.CreateGraphicsPipeline(hal.GraphicsPipelineDesc{
		Layout:       layout,
		Vertex:       *vertex,
		Fragment:     fragment,
		Topology:     convPrimitiveTopology(desc.PrimitiveTopology),
		Blend:        blend,
		DepthStencil: depthStencil,
		Pass:         pass,
	})
	if err != nil {
		return HandleNone, fmt.Errorf("create graphics pipeline: %w", err)
	}

	core.LogDebug("graphics pipeline created")
	return c.renderPipelines.Register(&RenderPipeline{raw: pipeline, pass: pass}), nil
}

// Queue resolves the device's primary queue handle.
func (c *Context) Queue(deviceID DeviceID) QueueID {
	return deviceID
}

// Submit hands the command buffers to the hardware queue in the given order.
// Each buffer is taken out of the command-buffer registry (its handle dies
// here) and returned to the device's command allocator for recycling once
// the backend signals completion. Buffers are submitted one at a time;
// batching them into a single hardware submission is an open optimization.
func (c *Context) Submit(queueID QueueID, bufferIDs []CommandBufferID) error {
	return c.devices.Write(queueID, func(device *Device) error {
		queue := device.queues[0]
		for _, id := range bufferIDs {
			cb := c.commandBuffers.Take(id)
			fence, err := queue.Submit(cb.raw, nil, nil)
			if err != nil {
				// The handle died with Take; give the buffer back to the
				// allocator so it keeps an owner.
				device.comAllocator.Recycle(device.raw, cb)
				return fmt.Errorf("submit command buffer %d: %w", id, err)
			}
			device.comAllocator.Submit(cb, fence)
		}
		return nil
	})
}

// Lookup helpers for callers that hold a handle and need the backend object.

func (c *Context) Device(id DeviceID) *Device {
	return c.devices.Get(id)
}

func (c *Context) BindGroupLayout(id BindGroupLayoutID) *BindGroupLayout {
	return c.bindGroupLayouts.Get(id)
}

func (c *Context) PipelineLayout(id PipelineLayoutID) *PipelineLayout {
	return c.pipelineLayouts.Get(id)
}

func (c *Context) BlendState(id BlendStateID) *BlendState {
	return c.blendStates.Get(id)
}

func (c *Context) DepthStencilState(id DepthStencilStateID) *DepthStencilState {
	return c.depthStencilStates.Get(id)
}

func (c *Context) AttachmentState(id AttachmentStateID) *AttachmentState {
	return c.attachmentStates.Get(id)
}

func (c *Context) ShaderModule(id ShaderModuleID) *ShaderModule {
	return c.shaderModules.Get(id)
}

func (c *Context) RenderPipeline(id RenderPipelineID) *RenderPipeline {
	return c.renderPipelines.Get(id)
}

func (c *Context) CommandBuffer(id CommandBufferID) *CommandBuffer {
	return c.commandBuffers.Get(id)
}

// Destroy drains every registry. Live objects left behind are logged; their
// backend teardown is the backend's concern.
func (c *Context) Destroy() {
	leaked := 0
	leaked += drain(c.renderPipelines)
	leaked += drain(c.commandBuffers)
	leaked += drain(c.shaderModules)
	leaked += drain(c.attachmentStates)
	leaked += drain(c.depthStencilStates)
	leaked += drain(c.blendStates)
	leaked += drain(c.pipelineLayouts)
	leaked += drain(c.bindGroupLayouts)
	leaked += drain(c.devices)
	if leaked > 0 {
		core.LogWarn("context destroyed with %d live objects", leaked)
	}
}

func drain[T any](r *Registry[T]) int {
	handles := r.Handles()
	for _, h := range handles {
		r.Take(h)
	}
	return len(handles)
}
