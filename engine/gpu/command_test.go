package gpu

import (
	"testing"

	"github.com/spaghettifunk/tundra/engine/gpu/noop"
)

func TestCommandAllocatorAllocatesFreshBuffers(t *testing.T) {
	device := noop.NewDevice()
	alloc := NewCommandAllocator(0, 4)

	cb, err := alloc.Allocate(device)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if cb.State() != COMMAND_BUFFER_STATE_RECORDING {
		t.Fatalf("state = %d, want RECORDING", cb.State())
	}
	if device.CreatedCommandBuffers() != 1 {
		t.Fatalf("backend created %d buffers, want 1", device.CreatedCommandBuffers())
	}
}

func TestCommandAllocatorRecyclesCompletedBuffers(t *testing.T) {
	device := noop.NewDevice()
	queue := noop.NewQueue(0)
	alloc := NewCommandAllocator(0, 4)

	cb, err := alloc.Allocate(device)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	fence, err := queue.Submit(cb.Raw(), nil, nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	alloc.Submit(cb, fence)

	if cb.State() != COMMAND_BUFFER_STATE_SUBMITTED {
		t.Fatalf("state = %d after submit, want SUBMITTED", cb.State())
	}
	if alloc.InFlight() != 1 {
		t.Fatalf("InFlight = %d, want 1", alloc.InFlight())
	}

	queue.CompleteAll()

	recycled, err := alloc.Allocate(device)
	if err != nil {
		t.Fatalf("Allocate after completion failed: %v", err)
	}
	if recycled != cb {
		t.Fatalf("expected the completed buffer to be recycled")
	}
	if device.CreatedCommandBuffers() != 1 {
		t.Fatalf("backend created %d buffers, want 1 (recycled)", device.CreatedCommandBuffers())
	}
	if alloc.InFlight() != 0 {
		t.Fatalf("InFlight = %d after reclaim, want 0", alloc.InFlight())
	}
}

func TestCommandAllocatorReleasesFenceOnReclaim(t *testing.T) {
	device := noop.NewDevice()
	alloc := NewCommandAllocator(0, 4)

	cb, _ := alloc.Allocate(device)
	fence := &noop.Fence{}
	alloc.Submit(cb, fence)
	fence.Signal()

	if _, err := alloc.Allocate(device); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if !fence.Released() {
		t.Fatalf("fence was not released after reclaim")
	}
}

func TestCommandAllocatorRecycleKeepsBufferOwned(t *testing.T) {
	device := noop.NewDevice()
	alloc := NewCommandAllocator(0, 4)

	cb, _ := alloc.Allocate(device)
	alloc.Recycle(device, cb)

	if cb.State() != COMMAND_BUFFER_STATE_READY {
		t.Fatalf("state = %d after Recycle, want READY", cb.State())
	}
	recycled, err := alloc.Allocate(device)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if recycled != cb {
		t.Fatalf("recycled buffer was not handed out again")
	}
}

func TestCommandAllocatorRecycleFreesWhenRingIsFull(t *testing.T) {
	device := noop.NewDevice()
	alloc := NewCommandAllocator(0, 1)

	first, _ := alloc.Allocate(device)
	second, _ := alloc.Allocate(device)

	alloc.Recycle(device, first)
	alloc.Recycle(device, second)

	if second.State() != COMMAND_BUFFER_STATE_NOT_ALLOCATED {
		t.Fatalf("state = %d for overflow buffer, want NOT_ALLOCATED", second.State())
	}
	if device.FreedCommandBuffers() != 1 {
		t.Fatalf("backend freed %d buffers, want 1", device.FreedCommandBuffers())
	}
}

func TestCommandAllocatorDoesNotReclaimPendingBuffers(t *testing.T) {
	device := noop.NewDevice()
	queue := noop.NewQueue(0)
	alloc := NewCommandAllocator(0, 4)

	cb, _ := alloc.Allocate(device)
	fence, _ := queue.Submit(cb.Raw(), nil, nil)
	alloc.Submit(cb, fence)

	// Fence never signalled: the next Allocate must not hand the buffer out.
	fresh, err := alloc.Allocate(device)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if fresh == cb {
		t.Fatalf("in-flight buffer was handed out before its fence signalled")
	}
	if device.CreatedCommandBuffers() != 2 {
		t.Fatalf("backend created %d buffers, want 2", device.CreatedCommandBuffers())
	}
}

func TestCommandAllocatorReclaimsOutOfOrderCompletion(t *testing.T) {
	device := noop.NewDevice()
	alloc := NewCommandAllocator(0, 4)

	first, _ := alloc.Allocate(device)
	second, _ := alloc.Allocate(device)

	firstFence := &noop.Fence{}
	secondFence := &noop.Fence{}
	alloc.Submit(first, firstFence)
	alloc.Submit(second, secondFence)

	// Only the later submission completes.
	secondFence.Signal()

	recycled, err := alloc.Allocate(device)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if recycled != second {
		t.Fatalf("expected the completed buffer, got another one")
	}
	if alloc.InFlight() != 1 {
		t.Fatalf("InFlight = %d, want 1 (first still pending)", alloc.InFlight())
	}
}

func TestCommandAllocatorFreesBuffersWhenRingIsFull(t *testing.T) {
	device := noop.NewDevice()
	alloc := NewCommandAllocator(0, 1)

	first, _ := alloc.Allocate(device)
	second, _ := alloc.Allocate(device)

	firstFence := &noop.Fence{}
	secondFence := &noop.Fence{}
	alloc.Submit(first, firstFence)
	alloc.Submit(second, secondFence)
	firstFence.Signal()
	secondFence.Signal()

	// Both completed but the ring holds one: the overflow goes back to the
	// backend.
	third, err := alloc.Allocate(device)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if third != first && third != second {
		t.Fatalf("expected a recycled buffer")
	}
	if device.FreedCommandBuffers() != 1 {
		t.Fatalf("backend freed %d buffers, want 1", device.FreedCommandBuffers())
	}
}
