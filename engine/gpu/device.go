package gpu

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

// Device owns the backend device, its hardware queues, the memory allocator
// and the command allocator. It lives in the device registry; every resource
// created from it carries the device handle only, never a direct reference,
// so the registry stays the sole owner.
type Device struct {
	raw    hal.Device
	queues []hal.Queue
	label  string

	memAllocator *MemoryAllocator
	comAllocator *CommandAllocator
}

func newDevice(raw hal.Device, queues []hal.Queue, props hal.MemoryProperties, label string, recycledCap int) *Device {
	return &Device{
		raw:          raw,
		queues:       queues,
		label:        label,
		memAllocator: NewMemoryAllocator(props),
		comAllocator: NewCommandAllocator(queues[0].Family(), recycledCap),
	}
}

func (d *Device) Raw() hal.Device {
	return d.raw
}

// Queue returns the hardware queue at the given index.
func (d *Device) Queue(index int) hal.Queue {
	return d.queues[index]
}

func (d *Device) Label() string {
	return d.label
}

func (d *Device) MemoryAllocator() *MemoryAllocator {
	return d.memAllocator
}

func (d *Device) CommandAllocator() *CommandAllocator {
	return d.comAllocator
}

// MemoryAllocator selects memory types for sub-allocations against the
// device's memory properties. The sub-allocation strategy itself lives in
// the backend; this layer only resolves type indices.
type MemoryAllocator struct {
	mu    sync.Mutex
	props hal.MemoryProperties
}

func NewMemoryAllocator(props hal.MemoryProperties) *MemoryAllocator {
	return &MemoryAllocator{props: props}
}

// MemoryTypeIndex returns the first memory type allowed by typeFilter whose
// property flags contain all of required.
func (a *MemoryAllocator) MemoryTypeIndex(typeFilter uint32, required uint32) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, t := range a.props.Types {
		// Check each memory type to see if its bit is set to 1.
		if typeFilter&(1<<uint32(i)) != 0 && t.PropertyFlags&required == required {
			return i, nil
		}
	}
	return -1, fmt.Errorf("memory type filter 0x%x with properties 0x%x: %w", typeFilter, required, core.ErrNoSuitableMemoryType)
}
