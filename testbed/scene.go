// Package testbed drives the gpu layer end to end against a live backend:
// device registration, resource creation, pipeline compilation and a few
// record/submit/recycle rounds. It is the headless equivalent of a demo
// scene.
package testbed

import (
	"fmt"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

// Placeholder SPIR-V payloads. Real shaders are only needed on backends that
// compile them; the noop backend accepts any non-empty code.
var (
	triangleVertSPV = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	triangleFragSPV = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
)

type Scene struct {
	ctx      *gpu.Context
	deviceID gpu.DeviceID

	// Signals pending submissions on backends without real hardware
	// progress; nil when the backend completes work on its own.
	completeSubmissions func()
}

func NewScene(cfg *core.Config, device hal.Device, queue hal.Queue, props hal.MemoryProperties, completeSubmissions func()) (*Scene, error) {
	ctx := gpu.NewContext(gpu.Options{
		RecycledCommandBuffers: cfg.GPU.RecycledCommandBuffers,
	})

	deviceID, err := ctx.CreateDevice(device, []hal.Queue{queue}, props, "testbed")
	if err != nil {
		return nil, err
	}
	return &Scene{
		ctx:                 ctx,
		deviceID:            deviceID,
		completeSubmissions: completeSubmissions,
	}, nil
}

// Run builds a textured-triangle pipeline and pushes a few command buffers
// through the submit/recycle cycle.
func (s *Scene) Run(rounds int) error {
	clock := core.NewClock()
	clock.Start()

	if err := s.buildPipeline(); err != nil {
		return err
	}

	for i := 0; i < rounds; i++ {
		if err := s.submitRound(); err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}
	}

	clock.Update()
	core.LogInfo("scene finished %d rounds in %.2fms", rounds, clock.Elapsed().Seconds()*1000)
	return nil
}

func (s *Scene) buildPipeline() error {
	bglID, err := s.ctx.CreateBindGroupLayout(s.deviceID, &gpu.BindGroupLayoutDescriptor{
		Bindings: []gpu.BindGroupLayoutBinding{
			{Binding: 0, Visibility: gpu.ShaderStageFlagVertex, Type: gpu.BindingTypeUniformBuffer},
			{Binding: 1, Visibility: gpu.ShaderStageFlagFragment, Type: gpu.BindingTypeSampledTexture},
		},
	})
	if err != nil {
		return err
	}

	layoutID, err := s.ctx.CreatePipelineLayout(s.deviceID, &gpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []gpu.BindGroupLayoutID{bglID},
	})
	if err != nil {
		return err
	}

	vsID, err := s.ctx.CreateShaderModule(s.deviceID, &gpu.ShaderModuleDescriptor{Code: triangleVertSPV})
	if err != nil {
		return err
	}
	fsID, err := s.ctx.CreateShaderModule(s.deviceID, &gpu.ShaderModuleDescriptor{Code: triangleFragSPV})
	if err != nil {
		return err
	}

	blendID, err := s.ctx.CreateBlendState(s.deviceID, &gpu.BlendStateDescriptor{
		BlendEnabled: true,
		Color: gpu.BlendDescriptor{
			SrcFactor: gpu.BlendFactorSrcAlpha,
			DstFactor: gpu.BlendFactorOneMinusSrcAlpha,
			Operation: gpu.BlendOperationAdd,
		},
		Alpha: gpu.BlendDescriptor{
			SrcFactor: gpu.BlendFactorOne,
			DstFactor: gpu.BlendFactorZero,
			Operation: gpu.BlendOperationAdd,
		},
		WriteMask: gpu.ColorWriteFlagAll,
	})
	if err != nil {
		return err
	}

	dsID, err := s.ctx.CreateDepthStencilState(s.deviceID, &gpu.DepthStencilStateDescriptor{
		DepthWriteEnabled: true,
		DepthCompare:      gpu.CompareFunctionLess,
	})
	if err != nil {
		return err
	}

	attachID, err := s.ctx.CreateAttachmentState(s.deviceID, &gpu.AttachmentStateDescriptor{
		Formats: []gpu.TextureFormat{gpu.TextureFormatB8G8R8A8Unorm},
	})
	if err != nil {
		return err
	}

	pipelineID, err := s.ctx.CreateRenderPipeline(s.deviceID, &gpu.RenderPipelineDescriptor{
		Layout: layoutID,
		Stages: []gpu.PipelineStageDescriptor{
			{Module: vsID, Stage: gpu.ShaderStageVertex, EntryPoint: "main"},
			{Module: fsID, Stage: gpu.ShaderStageFragment, EntryPoint: "main"},
		},
		PrimitiveTopology: gpu.PrimitiveTopologyTriangleList,
		BlendStates:       []gpu.BlendStateID{blendID},
		DepthStencilState: dsID,
		AttachmentState:   attachID,
	})
	if err != nil {
		return err
	}
	core.LogInfo("render pipeline %d ready", pipelineID)
	return nil
}

func (s *Scene) submitRound() error {
	first, err := s.ctx.CreateCommandBuffer(s.deviceID)
	if err != nil {
		return err
	}
	second, err := s.ctx.CreateCommandBuffer(s.deviceID)
	if err != nil {
		return err
	}

	if err := s.ctx.Submit(s.ctx.Queue(s.deviceID), []gpu.CommandBufferID{first, second}); err != nil {
		return err
	}
	if s.completeSubmissions != nil {
		s.completeSubmissions()
	}

	core.LogDebug("submitted buffers %d and %d, %d in flight",
		first, second, s.ctx.Device(s.deviceID).CommandAllocator().InFlight())
	return nil
}

func (s *Scene) Shutdown() {
	s.ctx.Destroy()
}
