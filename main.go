/*
Headless driver for the gpu layer: picks a backend, builds the testbed
scene and runs a few submission rounds.
*/
package main

import (
	"flag"
	"os"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/gpu/hal"
	"github.com/spaghettifunk/tundra/engine/gpu/noop"
	"github.com/spaghettifunk/tundra/engine/gpu/vulkan"
	"github.com/spaghettifunk/tundra/testbed"
)

func main() {
	backendName := flag.String("backend", "noop", "gpu backend to use: noop or vulkan")
	configPath := flag.String("config", "", "path to a TOML configuration file")
	rounds := flag.Int("rounds", 3, "number of submission rounds to run")
	flag.Parse()

	cfg := core.DefaultConfig()
	if *configPath != "" {
		loaded, err := core.LoadConfig(*configPath)
		if err != nil {
			core.LogFatal("failed to load config %q: %v", *configPath, err)
		}
		cfg = loaded
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		core.LogFatal("invalid log level %q: %v", cfg.Log.Level, err)
	}

	var (
		device   hal.Device
		queue    hal.Queue
		props    hal.MemoryProperties
		complete func()
		shutdown func()
	)

	switch *backendName {
	case "noop":
		noopDevice := noop.NewDevice()
		noopQueue := noop.NewQueue(0)
		device = noopDevice
		queue = noopQueue
		props = noopDevice.MemoryProperties()
		complete = noopQueue.CompleteAll
	case "vulkan":
		backend, err := vulkan.New("Tundra Testbed")
		if err != nil {
			core.LogFatal("failed to initialize the Vulkan backend: %v", err)
		}
		device = backend
		queue = backend.GraphicsQueue()
		props = backend.MemoryProperties()
		shutdown = backend.Shutdown
	default:
		core.LogError("unknown backend %q", *backendName)
		os.Exit(2)
	}

	scene, err := testbed.NewScene(cfg, device, queue, props, complete)
	if err != nil {
		core.LogFatal("failed to build the scene: %v", err)
	}

	if err := scene.Run(*rounds); err != nil {
		core.LogFatal("scene failed: %v", err)
	}

	scene.Shutdown()
	if shutdown != nil {
		shutdown()
	}
}
