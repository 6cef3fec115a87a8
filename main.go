package main

import (
	"os"
	"runtime"

	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/config"
	"GPU_mesh_renderer/renderer"
)

func init() {
	// SDL, GLFW and the Vulkan surface calls must stay on the main OS thread
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

// run loads the configuration given as the only argument, or the defaults without one, and renders until the window
// is closed. It returns the process exit status.
func run() int {
	logger := common.Logger()
	logger.Info("Starting GPU mesh renderer", "go", runtime.Version())

	cfg := config.Default()
	if len(os.Args) > 1 {
		var err error
		cfg, err = config.Load(os.Args[1])
		if err != nil {
			logger.Error("Invalid configuration", "err", err)
			return 1
		}
	}
	if err := common.SetLogLevel(cfg.LogLevel); err != nil {
		logger.Error("Invalid configuration", "err", err)
		return 1
	}

	core := renderer.NewCore(cfg)
	defer core.TearDown()
	if err := core.Init(); err != nil {
		logger.Error("Initialization failed", "err", err)
		return 1
	}

	for {
		running, err := core.Update()
		if err != nil {
			logger.Error("Frame failed", "err", err)
			return 1
		}
		if !running {
			return 0
		}
	}
}
