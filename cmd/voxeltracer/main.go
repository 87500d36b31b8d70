// Command voxeltracer opens a window and ray-marches a small voxel scene on the GPU.
//
// The scene is read from voxeltracer.toml, voxeltracer.yaml or voxeltracer.yml in the working
// directory when present, and reloaded whenever the file is written. Without a scene file the
// built-in five-voxel scene is shown.
//
// Controls: left click renders, right click toggles realtime, middle click saves the frame to
// ~/voxeltracer.png, left drag orbits and the scroll wheel zooms.
package main

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine"
	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/engine/tracer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/ui"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
)

func main() {
	os.Exit(run())
}

// run wires the window, GPU context, tracer and loop, and blocks until the window closes.
// Resources are released in reverse order of creation.
//
// Returns:
//   - int: the process exit code
func run() int {
	// GLFW and the surface must stay on the main OS thread.
	runtime.LockOSThread()

	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	log := common.Logger()

	params := scene.NewParams()
	scenePath, found := config.Find(".")
	if found {
		p, err := config.Load(scenePath)
		if err != nil {
			log.Error("failed to load scene", "path", scenePath, "err", err)
			return 1
		}
		params = p
		log.Info("scene loaded", "path", scenePath, "voxels", len(params.Grid))
	}

	win, err := window.NewWindow(
		window.WithTitle("Voxel Renderer"),
		window.WithSize(1280, 720),
		window.WithResizable(true),
	)
	if err != nil {
		log.Error("failed to create window", "err", err)
		return 1
	}
	defer win.Close()

	gpu, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(renderer.PresentModeUncapped),
	)
	if err != nil {
		log.Error("failed to initialize GPU", "err", err)
		return 1
	}
	defer gpu.Release()

	tr, err := tracer.NewTracer(gpu, params.Uniforms.Resolution)
	if err != nil {
		log.Error("failed to build tracer", "err", err)
		return 1
	}
	defer tr.Release()

	options := []engine.EngineBuilderOption{
		engine.WithParams(params),
		engine.WithUI(ui.NewHost(ui.WithSavePath(ui.DefaultSavePath))),
		engine.WithProfiling(true),
	}
	if found {
		w, err := config.NewWatcher(scenePath)
		if err != nil {
			log.Warn("live reload disabled", "path", scenePath, "err", err)
		} else {
			options = append(options, engine.WithWatcher(w))
		}
	}

	eng, err := engine.NewEngine(win, tr, gpu, options...)
	if err != nil {
		log.Error("failed to create engine", "err", err)
		return 1
	}

	w, h := tr.Resolution()
	log.Info("tracer ready", "width", w, "height", h, "format", gpu.SurfaceFormat().String())
	if err := eng.Run(); err != nil {
		log.Error("engine stopped", "err", err)
		return 1
	}
	return 0
}
