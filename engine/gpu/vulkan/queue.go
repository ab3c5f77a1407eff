package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

// Queue wraps one vk.Queue. Submissions on the same family are serialized
// through the lock pool; Vulkan forbids concurrent vkQueueSubmit on the
// same queue.
type Queue struct {
	backend *Backend
	handle  vk.Queue
	family  uint32
}

func (q *Queue) Family() uint32 {
	return q.family
}

// Submit enqueues the command buffer and returns a fence that signals when
// the GPU has consumed it. Wait semaphores gate execution at the color
// attachment output stage.
func (q *Queue) Submit(cb hal.CommandBuffer, waits, signals []hal.Semaphore) (hal.Fence, error) {
	fence, err := newFence(q.backend, false)
	if err != nil {
		return nil, err
	}

	waitSemaphores := make([]vk.Semaphore, len(waits))
	waitStages := make([]vk.PipelineStageFlags, len(waits))
	for i, s := range waits {
		waitSemaphores[i] = s.(vk.Semaphore)
		waitStages[i] = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	signalSemaphores := make([]vk.Semaphore, len(signals))
	for i, s := range signals {
		signalSemaphores[i] = s.(vk.Semaphore)
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.(vk.CommandBuffer)},
		WaitSemaphoreCount:   uint32(len(waitSemaphores)),
		PWaitSemaphores:      waitSemaphores,
		PWaitDstStageMask:    waitStages,
		SignalSemaphoreCount: uint32(len(signalSemaphores)),
		PSignalSemaphores:    signalSemaphores,
	}
	submitInfo.Deref()

	if err := lockPool.SafeQueueCall(q.family, func() error {
		if res := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{submitInfo}, fence.handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		fence.Release()
		return nil, err
	}
	return fence, nil
}

// Fence wraps one vk.Fence created per submission.
type Fence struct {
	backend *Backend
	handle  vk.Fence
}

func newFence(backend *Backend, createSignaled bool) (*Fence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	fence := &Fence{backend: backend}
	if err := lockPool.SafeCall(SynchronizationManagement, func() error {
		if res := vk.CreateFence(backend.LogicalDevice, &fenceCreateInfo, backend.Allocator, &fence.handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create fence: %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return fence, nil
}

// Done polls the fence without blocking. Once the driver reports success the
// result never regresses.
func (f *Fence) Done() bool {
	return vk.GetFenceStatus(f.backend.LogicalDevice, f.handle) == vk.Success
}

// Release destroys the driver fence. Called once per submission, either by
// the command allocator after Done reports true or on a failed submit.
func (f *Fence) Release() {
	_ = lockPool.SafeCall(SynchronizationManagement, func() error {
		vk.DestroyFence(f.backend.LogicalDevice, f.handle, f.backend.Allocator)
		f.handle = vk.NullFence
		return nil
	})
}
