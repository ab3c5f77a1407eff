// Package noop implements the hal interfaces entirely in memory. It performs
// no GPU work: every created object records the arguments it was built from,
// and submissions complete only when the test or demo driving the backend
// says so. Useful for headless runs and CI.
package noop

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

var ErrEmptyShader = errors.New("noop: empty shader byte code")

type DescriptorSetLayout struct {
	Bindings []hal.DescriptorSetLayoutBinding
}

type PipelineLayout struct {
	SetLayouts []hal.DescriptorSetLayout
}

type ShaderModule struct {
	Code []byte
}

type RenderPass struct {
	Attachments []hal.Attachment
}

// Formats returns the attachment formats the pass was built from.
func (p *RenderPass) Formats() []hal.Format {
	formats := make([]hal.Format, len(p.Attachments))
	for i, a := range p.Attachments {
		formats[i] = a.Format
	}
	return formats
}

type Pipeline struct {
	Desc hal.GraphicsPipelineDesc
}

type CommandBuffer struct {
	Index       int
	QueueFamily uint32
}

type Fence struct {
	done     atomic.Bool
	released atomic.Bool
}

func (f *Fence) Done() bool {
	return f.done.Load()
}

// Signal marks the submission complete.
func (f *Fence) Signal() {
	f.done.Store(true)
}

func (f *Fence) Release() {
	f.released.Store(true)
}

// Released reports whether the owner gave the fence back.
func (f *Fence) Released() bool {
	return f.released.Load()
}

// Device is an in-memory hal.Device. Creation counters and freed-buffer
// counts are exposed for assertions.
type Device struct {
	mu             sync.Mutex
	commandBuffers int
	freedBuffers   int
}

func NewDevice() *Device {
	return &Device{}
}

func (d *Device) CreateDescriptorSetLayout(bindings []hal.DescriptorSetLayoutBinding) (hal.DescriptorSetLayout, error) {
	copied := make([]hal.DescriptorSetLayoutBinding, len(bindings))
	copy(copied, bindings)
	return &DescriptorSetLayout{Bindings: copied}, nil
}

func (d *Device) CreatePipelineLayout(setLayouts []hal.DescriptorSetLayout) (hal.PipelineLayout, error) {
	copied := make([]hal.DescriptorSetLayout, len(setLayouts))
	copy(copied, setLayouts)
	return &PipelineLayout{SetLayouts: copied}, nil
}

func (d *Device) CreateShaderModule(code []byte) (hal.ShaderModule, error) {
	if len(code) == 0 {
		return nil, ErrEmptyShader
	}
	copied := make([]byte, len(code))
	copy(copied, code)
	return &ShaderModule{Code: copied}, nil
}

func (d *Device) CreateRenderPass(attachments []hal.Attachment) (hal.RenderPass, error) {
	copied := make([]hal.Attachment, len(attachments))
	copy(copied, attachments)
	return &RenderPass{Attachments: copied}, nil
}

func (d *Device) CreateGraphicsPipeline(desc hal.GraphicsPipelineDesc) (hal.Pipeline, error) {
	if desc.Pass == nil {
		return nil, fmt.Errorf("noop: graphics pipeline without a render pass")
	}
	return &Pipeline{Desc: desc}, nil
}

func (d *Device) CreateCommandBuffer(queueFamily uint32) (hal.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.commandBuffers++
	return &CommandBuffer{Index: d.commandBuffers, QueueFamily: queueFamily}, nil
}

func (d *Device) FreeCommandBuffer(cb hal.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.freedBuffers++
}

// CreatedCommandBuffers returns how many buffers the backend has handed out.
func (d *Device) CreatedCommandBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.commandBuffers
}

// FreedCommandBuffers returns how many buffers were given back.
func (d *Device) FreedCommandBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.freedBuffers
}

// MemoryProperties returns a plausible discrete-GPU layout: one device-local
// heap and one host-visible heap.
func (d *Device) MemoryProperties() hal.MemoryProperties {
	return hal.MemoryProperties{
		Types: []hal.MemoryType{
			{PropertyFlags: hal.MemoryDeviceLocal, HeapIndex: 0},
			{PropertyFlags: hal.MemoryHostVisible | hal.MemoryHostCoherent, HeapIndex: 1},
		},
		Heaps: []hal.MemoryHeap{
			{Size: 4 << 30},
			{Size: 8 << 30},
		},
	}
}

type submission struct {
	cb    hal.CommandBuffer
	fence *Fence
}

// Queue records submissions in order. Fences stay unsignalled until
// Complete or CompleteAll is called, modelling the hardware finishing work.
type Queue struct {
	mu          sync.Mutex
	family      uint32
	submissions []submission
	completed   int
}

func NewQueue(family uint32) *Queue {
	return &Queue{family: family}
}

func (q *Queue) Family() uint32 {
	return q.family
}

func (q *Queue) Submit(cb hal.CommandBuffer, waits, signals []hal.Semaphore) (hal.Fence, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	fence := &Fence{}
	q.submissions = append(q.submissions, submission{cb: cb, fence: fence})
	return fence, nil
}

// Submitted returns the command buffers in submission order.
func (q *Queue) Submitted() []hal.CommandBuffer {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]hal.CommandBuffer, len(q.submissions))
	for i, s := range q.submissions {
		out[i] = s.cb
	}
	return out
}

// Complete signals the fences of the next n pending submissions.
func (q *Queue) Complete(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < n && q.completed < len(q.submissions); i++ {
		q.submissions[q.completed].fence.Signal()
		q.completed++
	}
}

// CompleteAll signals every pending submission.
func (q *Queue) CompleteAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for ; q.completed < len(q.submissions); q.completed++ {
		q.submissions[q.completed].fence.Signal()
	}
}
