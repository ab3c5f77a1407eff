package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
)

var lockPool *VulkanLockPool = NewVulkanLockPool()

// Backend owns the Vulkan instance, the selected physical device, the
// logical device and the graphics command pool. It implements hal.Device;
// the queue wrapper implementing hal.Queue is obtained with GraphicsQueue.
// Headless: no surface, no swapchain.
type Backend struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks

	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device

	GraphicsQueueIndex  uint32
	GraphicsCommandPool vk.CommandPool

	graphicsQueue *Queue

	debug bool
}

// New initializes the Vulkan loader, creates an instance and a logical
// device with one graphics queue, and builds the graphics command pool.
func New(appName string) (*Backend, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		core.LogError("failed to locate the Vulkan loader: %s", err)
		return nil, err
	}
	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return nil, err
	}

	b := &Backend{
		// TODO: custom allocator.
		Allocator: nil,
		debug:     false,
	}

	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Tundra"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{}
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	if res := vk.CreateInstance(&createInfo, b.Allocator, &b.Instance); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	if err := vk.InitInstance(b.Instance); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.LogInfo("Vulkan Instance created.")

	if err := b.selectPhysicalDevice(); err != nil {
		return nil, err
	}
	if err := b.createLogicalDevice(); err != nil {
		return nil, err
	}

	return b, nil
}

// selectPhysicalDevice picks the first adapter exposing a graphics-capable
// queue family. Surface/present support is not required.
func (b *Backend) selectPhysicalDevice() error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(b.Instance, &physicalDeviceCount, nil); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("error in EnumeratePhysicalDevices: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}
	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found")
		core.LogError(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(b.Instance, &physicalDeviceCount, physicalDevices); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("error in EnumeratePhysicalDevices: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}

	for _, device := range physicalDevices {
		index, found := graphicsQueueFamilyIndex(device)
		if !found {
			continue
		}

		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &properties)
		properties.Deref()

		b.PhysicalDevice = device
		b.GraphicsQueueIndex = index
		core.LogInfo("Selected device: '%s' (graphics queue family %d).",
			vk.ToString(properties.DeviceName[:]), index)
		return nil
	}

	err := fmt.Errorf("no physical device with a graphics queue family was found")
	core.LogError(err.Error())
	return err
}

func graphicsQueueFamilyIndex(device vk.PhysicalDevice) (uint32, bool) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := range queueFamilies {
		queueFamilies[i].Deref()
		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func (b *Backend) createLogicalDevice() error {
	core.LogInfo("Creating logical device...")

	queuePriority := float32(1.0)
	queueCreateInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: b.GraphicsQueueIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{queuePriority},
	}}

	// VK_KHR_portability_subset must be enabled when the implementation
	// advertises it.
	extensionNames := []string{}
	var availableExtensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(b.PhysicalDevice, "", &availableExtensionCount, nil); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("error in EnumerateDeviceExtensionProperties")
		core.LogError(err.Error())
		return err
	}
	if availableExtensionCount != 0 {
		availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
		if res := vk.EnumerateDeviceExtensionProperties(b.PhysicalDevice, "", &availableExtensionCount, availableExtensions); !VulkanResultIsSuccess(res) {
			err := fmt.Errorf("error in EnumerateDeviceExtensionProperties")
			core.LogError(err.Error())
			return err
		}
		for i := 0; i < int(availableExtensionCount); i++ {
			availableExtensions[i].Deref()
			end := FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])
			if vk.ToString(availableExtensions[i].ExtensionName[:end+1]) == "VK_KHR_portability_subset" {
				core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
				extensionNames = append(extensionNames, "VK_KHR_portability_subset")
				break
			}
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	if res := vk.CreateDevice(
		b.PhysicalDevice,
		&deviceCreateInfo,
		b.Allocator,
		&b.LogicalDevice); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to create logical device: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Logical device created.")

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(b.LogicalDevice, b.GraphicsQueueIndex, 0, &graphicsQueue)
	lockPool.SetQueueFamily(b.GraphicsQueueIndex)
	b.graphicsQueue = &Queue{
		backend: b,
		handle:  graphicsQueue,
		family:  b.GraphicsQueueIndex,
	}
	core.LogInfo("Queues obtained.")

	// Create command pool for graphics queue.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: b.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if err := lockPool.SafeCall(CommandPoolManagement, func() error {
		if res := vk.CreateCommandPool(
			b.LogicalDevice,
			&poolCreateInfo,
			b.Allocator,
			&b.GraphicsCommandPool); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create command pool: %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

// GraphicsQueue returns the hal queue wrapper for the graphics family.
func (b *Backend) GraphicsQueue() hal.Queue {
	return b.graphicsQueue
}

// MemoryProperties translates the adapter's memory layout for the device's
// memory allocator.
func (b *Backend) MemoryProperties() hal.MemoryProperties {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(b.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	props := hal.MemoryProperties{
		Types: make([]hal.MemoryType, memoryProperties.MemoryTypeCount),
		Heaps: make([]hal.MemoryHeap, memoryProperties.MemoryHeapCount),
	}
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		props.Types[i] = hal.MemoryType{
			PropertyFlags: uint32(memoryProperties.MemoryTypes[i].PropertyFlags),
			HeapIndex:     int(memoryProperties.MemoryTypes[i].HeapIndex),
		}
	}
	for i := uint32(0); i < memoryProperties.MemoryHeapCount; i++ {
		memoryProperties.MemoryHeaps[i].Deref()
		props.Heaps[i] = hal.MemoryHeap{
			Size: uint64(memoryProperties.MemoryHeaps[i].Size),
		}
	}
	return props
}

// Shutdown destroys the command pool, the logical device and the instance.
func (b *Backend) Shutdown() {
	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(b.LogicalDevice, b.GraphicsCommandPool, b.Allocator)

	core.LogInfo("Destroying logical device...")
	if b.LogicalDevice != nil {
		vk.DestroyDevice(b.LogicalDevice, b.Allocator)
		b.LogicalDevice = nil
	}

	core.LogInfo("Destroying instance...")
	if b.Instance != nil {
		vk.DestroyInstance(b.Instance, b.Allocator)
		b.Instance = nil
	}
}
