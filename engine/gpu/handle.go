package gpu

// Handle is an opaque identifier naming one live slot in the registry of its
// kind. The kind is carried by the type parameter, so handles of different
// kinds cannot be mixed up at compile time. The zero value is never issued
// and never names a live slot.
type Handle[T any] uint32

// HandleNone is the invalid handle value for any kind.
const HandleNone = 0

func (h Handle[T]) IsValid() bool {
	return h != HandleNone
}

type (
	DeviceID            = Handle[Device]
	BindGroupLayoutID   = Handle[BindGroupLayout]
	PipelineLayoutID    = Handle[PipelineLayout]
	BlendStateID        = Handle[BlendState]
	DepthStencilStateID = Handle[DepthStencilState]
	AttachmentStateID   = Handle[AttachmentState]
	ShaderModuleID      = Handle[ShaderModule]
	RenderPipelineID    = Handle[RenderPipeline]
	CommandBufferID     = Handle[CommandBuffer]
)

// QueueID addresses a hardware queue through its owning device, so it is the
// device handle under another name. Per-queue-index addressing is a possible
// extension once devices expose more than the primary queue.
type QueueID = DeviceID
