package gpu

import (
	"sync"

	"github.com/spaghettifunk/tundra/engine/containers"
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

type CommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY CommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

// CommandBuffer wraps one backend command buffer plus lifecycle bookkeeping.
// Exactly one owner holds it at any time: the allocator's recycle pool, the
// command-buffer registry while the caller records, or the allocator's
// in-flight list after submission.
type CommandBuffer struct {
	raw         hal.CommandBuffer
	queueFamily uint32
	state       CommandBufferState

	// Completion signal of the last submission; nil while not in flight.
	fence hal.Fence
}

func (c *CommandBuffer) Raw() hal.CommandBuffer {
	return c.raw
}

func (c *CommandBuffer) QueueFamily() uint32 {
	return c.queueFamily
}

func (c *CommandBuffer) State() CommandBufferState {
	return c.state
}

// CommandAllocator manages the command-buffer pool of one queue family.
// Buffers are created lazily, handed out for recording, tracked while the
// hardware may still be executing them, and recycled once their fence
// signals. A buffer whose fence has not signalled is never handed out.
type CommandAllocator struct {
	mu          sync.Mutex
	queueFamily uint32
	recycled    *containers.RingQueue[*CommandBuffer]
	inFlight    []*CommandBuffer
}

func NewCommandAllocator(queueFamily uint32, recycledCap int) *CommandAllocator {
	if recycledCap <= 0 {
		recycledCap = 64
	}
	return &CommandAllocator{
		queueFamily: queueFamily,
		recycled:    containers.NewRingQueue[*CommandBuffer](recycledCap),
	}
}

func (a *CommandAllocator) QueueFamily() uint32 {
	return a.queueFamily
}

// Allocate returns a command buffer ready to record, recycling a completed
// one when available and asking the backend for a fresh one otherwise.
func (a *CommandAllocator) Allocate(device hal.Device) (*CommandBuffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.reclaimCompleted(device)

	if cb, err := a.recycled.Dequeue(); err == nil {
		cb.state = COMMAND_BUFFER_STATE_RECORDING
		cb.fence = nil
		return cb, nil
	}

	raw, err := device.CreateCommandBuffer(a.queueFamily)
	if err != nil {
		core.LogError("failed to allocate command buffer: %v", err)
		return nil, err
	}
	return &CommandBuffer{
		raw:         raw,
		queueFamily: a.queueFamily,
		state:       COMMAND_BUFFER_STATE_RECORDING,
	}, nil
}

// Submit takes back ownership of a buffer that has been handed to a hardware
// queue. The buffer becomes reclaimable once fence signals.
func (a *CommandAllocator) Submit(cb *CommandBuffer, fence hal.Fence) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cb.state = COMMAND_BUFFER_STATE_SUBMITTED
	cb.fence = fence
	a.inFlight = append(a.inFlight, cb)
}

// Recycle returns a buffer whose submission never reached the hardware to
// the pool, so it keeps exactly one owner. The buffer must not be in flight.
func (a *CommandAllocator) Recycle(device hal.Device, cb *CommandBuffer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cb.state = COMMAND_BUFFER_STATE_READY
	cb.fence = nil
	if err := a.recycled.Enqueue(cb); err != nil {
		cb.state = COMMAND_BUFFER_STATE_NOT_ALLOCATED
		device.FreeCommandBuffer(cb.raw)
	}
}

// InFlight returns the number of buffers awaiting completion.
func (a *CommandAllocator) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.inFlight)
}

// reclaimCompleted moves every in-flight buffer whose fence has signalled
// into the recycle ring. Called with a.mu held. Fences may complete out of
// submission order, so the whole list is scanned.
func (a *CommandAllocator) reclaimCompleted(device hal.Device) {
	remaining := a.inFlight[:0]
	for _, cb := range a.inFlight {
		if cb.fence == nil || !cb.fence.Done() {
			remaining = append(remaining, cb)
			continue
		}
		cb.state = COMMAND_BUFFER_STATE_READY
		cb.fence.Release()
		cb.fence = nil
		if err := a.recycled.Enqueue(cb); err != nil {
			// Ring full; give the buffer back to the backend instead.
			cb.state = COMMAND_BUFFER_STATE_NOT_ALLOCATED
			device.FreeCommandBuffer(cb.raw)
		}
	}
	a.inFlight = remaining
}
