package gpu

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
	"github.com/spaghettifunk/tundra/engine/gpu/noop"
)

// Minimal SPIR-V-shaped payloads; the noop backend only rejects empty code.
var (
	vertexCode   = []byte{0x03, 0x02, 0x23, 0x07}
	fragmentCode = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x00, 0x01}
)

func newTestContext(t *testing.T) (*Context, *noop.Device, *noop.Queue, DeviceID) {
	t.Helper()

	ctx := NewContext(Options{RecycledCommandBuffers: 8})
	device := noop.NewDevice()
	queue := noop.NewQueue(0)

	id, err := ctx.CreateDevice(device, []hal.Queue{queue}, device.MemoryProperties(), "test-device")
	if err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}
	return ctx, device, queue, id
}

func TestCreateDeviceRequiresQueues(t *testing.T) {
	ctx := NewContext(Options{})

	_, err := ctx.CreateDevice(noop.NewDevice(), nil, hal.MemoryProperties{}, "")
	if !errors.Is(err, core.ErrNoQueues) {
		t.Fatalf("err = %v, want ErrNoQueues", err)
	}
}

func TestCreateDeviceGeneratesLabel(t *testing.T) {
	ctx := NewContext(Options{})
	device := noop.NewDevice()

	id, err := ctx.CreateDevice(device, []hal.Queue{noop.NewQueue(0)}, device.MemoryProperties(), "")
	if err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}
	if ctx.Device(id).Label() == "" {
		t.Fatalf("empty label was not replaced")
	}
}

func TestRenderPipelineCreation(t *testing.T) {
	ctx, _, _, deviceID := newTestContext(t)

	bglID, err := ctx.CreateBindGroupLayout(deviceID, &BindGroupLayoutDescriptor{
		Bindings: []BindGroupLayoutBinding{
			{Binding: 0, Visibility: ShaderStageFlagVertex, Type: BindingTypeUniformBuffer},
			{Binding: 1, Visibility: ShaderStageFlagFragment, Type: BindingTypeSampledTexture},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}

	layoutID, err := ctx.CreatePipelineLayout(deviceID, &PipelineLayoutDescriptor{
		BindGroupLayouts: []BindGroupLayoutID{bglID},
	})
	if err != nil {
		t.Fatalf("CreatePipelineLayout failed: %v", err)
	}

	vsID, err := ctx.CreateShaderModule(deviceID, &ShaderModuleDescriptor{Code: vertexCode})
	if err != nil {
		t.Fatalf("CreateShaderModule (vertex) failed: %v", err)
	}
	fsID, err := ctx.CreateShaderModule(deviceID, &ShaderModuleDescriptor{Code: fragmentCode})
	if err != nil {
		t.Fatalf("CreateShaderModule (fragment) failed: %v", err)
	}

	blendID, err := ctx.CreateBlendState(deviceID, &BlendStateDescriptor{
		BlendEnabled: true,
		Color:        BlendDescriptor{SrcFactor: BlendFactorSrcAlpha, DstFactor: BlendFactorOneMinusSrcAlpha, Operation: BlendOperationAdd},
		Alpha:        BlendDescriptor{SrcFactor: BlendFactorOne, DstFactor: BlendFactorZero, Operation: BlendOperationAdd},
		WriteMask:    ColorWriteFlagAll,
	})
	if err != nil {
		t.Fatalf("CreateBlendState failed: %v", err)
	}

	dsID, err := ctx.CreateDepthStencilState(deviceID, &DepthStencilStateDescriptor{
		DepthWriteEnabled: true,
		DepthCompare:      CompareFunctionLess,
	})
	if err != nil {
		t.Fatalf("CreateDepthStencilState failed: %v", err)
	}

	attachID, err := ctx.CreateAttachmentState(deviceID, &AttachmentStateDescriptor{
		Formats: []TextureFormat{TextureFormatB8G8R8A8Unorm},
	})
	if err != nil {
		t.Fatalf("CreateAttachmentState failed: %v", err)
	}

	pipelineID, err := ctx.CreateRenderPipeline(deviceID, &RenderPipelineDescriptor{
		Layout: layoutID,
		Stages: []PipelineStageDescriptor{
			{Module: vsID, Stage: ShaderStageVertex, EntryPoint: "main"},
			{Module: fsID, Stage: ShaderStageFragment, EntryPoint: "main"},
		},
		PrimitiveTopology: PrimitiveTopologyTriangleList,
		BlendStates:       []BlendStateID{blendID},
		DepthStencilState: dsID,
		AttachmentState:   attachID,
	})
	if err != nil {
		t.Fatalf("CreateRenderPipeline failed: %v", err)
	}

	pipeline := ctx.RenderPipeline(pipelineID)
	pass, ok := pipeline.Pass().(*noop.RenderPass)
	if !ok {
		t.Fatalf("render pass has type %T, want *noop.RenderPass", pipeline.Pass())
	}
	formats := pass.Formats()
	if len(formats) != 1 || formats[0] != hal.FormatBGRA8Unorm {
		t.Fatalf("render pass formats = %v, want [BGRA8Unorm]", formats)
	}

	raw := pipeline.Raw().(*noop.Pipeline)
	if raw.Desc.Fragment == nil {
		t.Fatalf("fragment stage was dropped")
	}
	if raw.Desc.Vertex.EntryPoint != "main" {
		t.Fatalf("vertex entry point = %q, want %q", raw.Desc.Vertex.EntryPoint, "main")
	}
	if len(raw.Desc.Blend) != 1 || !raw.Desc.Blend[0].Enabled {
		t.Fatalf("blend targets = %+v, want one enabled target", raw.Desc.Blend)
	}
}

func TestRenderPipelineRejectsComputeStage(t *testing.T) {
	ctx, _, _, deviceID := newTestContext(t)

	layoutID, err := ctx.CreatePipelineLayout(deviceID, &PipelineLayoutDescriptor{})
	if err != nil {
		t.Fatalf("CreatePipelineLayout failed: %v", err)
	}
	csID, err := ctx.CreateShaderModule(deviceID, &ShaderModuleDescriptor{Code: vertexCode})
	if err != nil {
		t.Fatalf("CreateShaderModule failed: %v", err)
	}
	dsID, _ := ctx.CreateDepthStencilState(deviceID, &DepthStencilStateDescriptor{})
	attachID, _ := ctx.CreateAttachmentState(deviceID, &AttachmentStateDescriptor{
		Formats: []TextureFormat{TextureFormatR8G8B8A8Unorm},
	})

	_, err = ctx.CreateRenderPipeline(deviceID, &RenderPipelineDescriptor{
		Layout: layoutID,
		Stages: []PipelineStageDescriptor{
			{Module: csID, Stage: ShaderStageCompute, EntryPoint: "main"},
		},
		DepthStencilState: dsID,
		AttachmentState:   attachID,
	})
	if !errors.Is(err, core.ErrUnsupportedShaderStage) {
		t.Fatalf("err = %v, want ErrUnsupportedShaderStage", err)
	}
}

func TestRenderPipelineRequiresVertexStage(t *testing.T) {
	ctx, _, _, deviceID := newTestContext(t)

	layoutID, _ := ctx.CreatePipelineLayout(deviceID, &PipelineLayoutDescriptor{})
	fsID, _ := ctx.CreateShaderModule(deviceID, &ShaderModuleDescriptor{Code: fragmentCode})
	dsID, _ := ctx.CreateDepthStencilState(deviceID, &DepthStencilStateDescriptor{})
	attachID, _ := ctx.CreateAttachmentState(deviceID, &AttachmentStateDescriptor{
		Formats: []TextureFormat{TextureFormatR8G8B8A8Unorm},
	})

	_, err := ctx.CreateRenderPipeline(deviceID, &RenderPipelineDescriptor{
		Layout: layoutID,
		Stages: []PipelineStageDescriptor{
			{Module: fsID, Stage: ShaderStageFragment, EntryPoint: "main"},
		},
		DepthStencilState: dsID,
		AttachmentState:   attachID,
	})
	if !errors.Is(err, core.ErrMissingVertexStage) {
		t.Fatalf("err = %v, want ErrMissingVertexStage", err)
	}
}

func TestShaderModuleCreationFailureLeavesNoEntry(t *testing.T) {
	ctx, _, _, deviceID := newTestContext(t)

	_, err := ctx.CreateShaderModule(deviceID, &ShaderModuleDescriptor{Code: nil})
	if !errors.Is(err, noop.ErrEmptyShader) {
		t.Fatalf("err = %v, want ErrEmptyShader", err)
	}
}

func TestSubmitPreservesOrderAndKillsHandles(t *testing.T) {
	ctx, _, queue, deviceID := newTestContext(t)

	first, err := ctx.CreateCommandBuffer(deviceID)
	if err != nil {
		t.Fatalf("CreateCommandBuffer failed: %v", err)
	}
	second, err := ctx.CreateCommandBuffer(deviceID)
	if err != nil {
		t.Fatalf("CreateCommandBuffer failed: %v", err)
	}

	firstRaw := ctx.CommandBuffer(first).Raw()
	secondRaw := ctx.CommandBuffer(second).Raw()

	if err := ctx.Submit(ctx.Queue(deviceID), []CommandBufferID{first, second}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	submitted := queue.Submitted()
	if len(submitted) != 2 || submitted[0] != firstRaw || submitted[1] != secondRaw {
		t.Fatalf("submission order not preserved")
	}

	// Submitted handles are dead.
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("lookup of submitted handle did not panic")
			}
		}()
		ctx.CommandBuffer(first)
	}()
}

// failingQueue rejects every submission.
type failingQueue struct {
	family uint32
}

func (q *failingQueue) Family() uint32 {
	return q.family
}

func (q *failingQueue) Submit(cb hal.CommandBuffer, waits, signals []hal.Semaphore) (hal.Fence, error) {
	return nil, errors.New("queue rejected the submission")
}

func TestFailedSubmitReturnsBufferToAllocator(t *testing.T) {
	ctx := NewContext(Options{RecycledCommandBuffers: 8})
	device := noop.NewDevice()

	deviceID, err := ctx.CreateDevice(device, []hal.Queue{&failingQueue{}}, device.MemoryProperties(), "failing")
	if err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}

	id, err := ctx.CreateCommandBuffer(deviceID)
	if err != nil {
		t.Fatalf("CreateCommandBuffer failed: %v", err)
	}

	if err := ctx.Submit(ctx.Queue(deviceID), []CommandBufferID{id}); err == nil {
		t.Fatalf("Submit against a failing queue did not error")
	}

	// The buffer is back in the allocator's pool, not stranded: the next
	// allocation reuses it instead of creating a fresh one.
	if got := ctx.Device(deviceID).CommandAllocator().InFlight(); got != 0 {
		t.Fatalf("InFlight = %d after failed submit, want 0", got)
	}
	if _, err := ctx.CreateCommandBuffer(deviceID); err != nil {
		t.Fatalf("CreateCommandBuffer after failed submit: %v", err)
	}
	if device.CreatedCommandBuffers() != 1 {
		t.Fatalf("backend created %d buffers, want 1 (recycled after failure)", device.CreatedCommandBuffers())
	}
	if device.FreedCommandBuffers() != 0 {
		t.Fatalf("backend freed %d buffers, want 0", device.FreedCommandBuffers())
	}
}

func TestSubmittedBuffersAreRecycledAfterCompletion(t *testing.T) {
	ctx, device, queue, deviceID := newTestContext(t)

	id, _ := ctx.CreateCommandBuffer(deviceID)
	if err := ctx.Submit(ctx.Queue(deviceID), []CommandBufferID{id}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := ctx.Device(deviceID).CommandAllocator().InFlight(); got != 1 {
		t.Fatalf("InFlight = %d, want 1", got)
	}

	queue.CompleteAll()

	if _, err := ctx.CreateCommandBuffer(deviceID); err != nil {
		t.Fatalf("CreateCommandBuffer failed: %v", err)
	}
	if device.CreatedCommandBuffers() != 1 {
		t.Fatalf("backend created %d buffers, want 1 (recycled)", device.CreatedCommandBuffers())
	}
}

func TestDestroyDeviceKillsHandle(t *testing.T) {
	ctx, _, _, deviceID := newTestContext(t)

	ctx.DestroyDevice(deviceID)

	defer func() {
		if recover() == nil {
			t.Fatalf("lookup of destroyed device did not panic")
		}
	}()
	ctx.Device(deviceID)
}

func TestContextDestroyDrainsRegistries(t *testing.T) {
	ctx, _, _, deviceID := newTestContext(t)

	if _, err := ctx.CreateShaderModule(deviceID, &ShaderModuleDescriptor{Code: vertexCode}); err != nil {
		t.Fatalf("CreateShaderModule failed: %v", err)
	}

	ctx.Destroy()

	defer func() {
		if recover() == nil {
			t.Fatalf("lookup after Destroy did not panic")
		}
	}()
	ctx.Device(deviceID)
}
