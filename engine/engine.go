// Package engine is the application loop of the voxel tracer. It owns the parameter block, ticks once
// per window message loop iteration and turns UI actions into dispatches, saves and presents.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/Carmen-Shannon/oxy-voxel/engine/profiler"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/engine/ui"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// State is the lifecycle state of the loop.
type State int

const (
	// StateRunning ticks on every message loop iteration.
	StateRunning State = iota
	// StateShutdown is terminal. Ticks are ignored and Run returns.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNoWindow is returned by NewEngine when no window was supplied.
var ErrNoWindow = errors.New("engine requires a window")

// Dispatcher traces parameter snapshots and saves the latest frame. Satisfied by tracer.Tracer.
type Dispatcher interface {
	Trace(s scene.Snapshot) (*wgpu.TextureView, error)
	FrameToImage(path string) error
}

// Presenter composites a traced frame onto the window surface. Satisfied by renderer.Renderer.
type Presenter interface {
	Present(view *wgpu.TextureView) error
	Resize(width, height int)
}

// engine implements the Engine interface.
type engine struct {
	state State
	err   error

	window     window.Window
	dispatcher Dispatcher
	presenter  Presenter
	host       ui.Host
	watcher    config.Watcher

	params *scene.Params
	view   *wgpu.TextureView

	profiler         *profiler.Profiler
	profilingEnabled bool

	start    time.Time
	lastTick time.Time
}

// Engine is the main entry point of the tracer application.
// All of its methods run on the window's thread; nothing is shared with other goroutines.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Params returns the parameter block owned by the loop.
	//
	// Returns:
	//   - *scene.Params: the live parameter block
	Params() *scene.Params

	// State returns the current lifecycle state.
	State() State

	// Stats returns the loop statistics, including the dispatch counter.
	Stats() profiler.Stats

	// EnableProfiler enables the once-per-interval profiler log line.
	EnableProfiler()

	// DisableProfiler disables the profiler log line.
	DisableProfiler()

	// Run traces the initial frame, then blocks in the window message loop until shutdown.
	//
	// Returns:
	//   - error: the terminal error that stopped the loop, nil on a user close
	Run() error

	// Tick advances the loop by one iteration.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous tick
	//
	// Returns:
	//   - error: a terminal presentation error, nil otherwise
	Tick(deltaTime float32) error

	// Shutdown moves the loop to StateShutdown and asks the window to stop its message loop.
	// Safe to call multiple times.
	Shutdown()
}

// NewEngine creates an Engine around an initialized window, dispatcher and presenter.
// The parameter block defaults to scene.NewParams unless WithParams is supplied.
//
// Parameters:
//   - w: the window driving the loop
//   - d: the frame dispatcher
//   - p: the presentation sink
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: ErrNoWindow when w is nil
func NewEngine(w window.Window, d Dispatcher, p Presenter, options ...EngineBuilderOption) (Engine, error) {
	if w == nil {
		return nil, ErrNoWindow
	}

	now := time.Now()
	e := &engine{
		state:      StateRunning,
		window:     w,
		dispatcher: d,
		presenter:  p,
		profiler:   profiler.NewProfiler(),
		start:      now,
		lastTick:   now,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.params == nil {
		e.params = scene.NewParams()
	}
	e.profiler.SetLogging(e.profilingEnabled)

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Params() *scene.Params {
	return e.params
}

func (e *engine) State() State {
	return e.state
}

func (e *engine) Stats() profiler.Stats {
	return e.profiler.Stats()
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
	e.profiler.SetLogging(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	e.profiler.SetLogging(false)
}

func (e *engine) Run() error {
	defer e.closeWatcher()

	e.start = time.Now()
	e.lastTick = e.start
	e.dispatch()

	e.window.SetResizeCallback(func(width, height int) {
		e.presenter.Resize(width, height)
	})
	e.window.SetCloseCallback(e.Shutdown)
	e.window.SetUpdateCallback(func() {
		now := time.Now()
		dt := float32(now.Sub(e.lastTick).Seconds())
		e.lastTick = now

		if err := e.Tick(dt); err != nil {
			common.Logger().Error("loop stopped", "err", err)
			e.err = err
			e.Shutdown()
		}
	})
	if e.host != nil {
		e.host.Attach(e.window)
	}

	e.window.ProcessMessages()
	e.state = StateShutdown
	return e.err
}

func (e *engine) Tick(deltaTime float32) error {
	if e.state == StateShutdown {
		return nil
	}

	e.drainWatcher()

	realtime := e.host != nil && e.host.Realtime()
	if realtime {
		e.dispatch()
	}

	var actions ui.Actions
	if e.host != nil {
		actions = e.host.Update(e.params)
	}
	if actions.Render && !realtime {
		e.dispatch()
	}
	if actions.Save {
		e.save(e.host.SavePath())
	}

	if err := e.present(); err != nil {
		return err
	}

	e.params.Uniforms.Frames++
	e.params.Uniforms.Time = float32(time.Since(e.start).Seconds())
	if e.profiler.Tick(deltaTime) && e.host != nil {
		e.window.SetTitle(e.host.Title(e.profiler.Stats()))
	}
	return nil
}

func (e *engine) Shutdown() {
	if e.state == StateShutdown {
		return
	}
	e.state = StateShutdown
	e.window.RequestClose()
}

// dispatch traces a snapshot of the parameter block and records its wall time.
// Failures leave the previous frame on screen.
func (e *engine) dispatch() {
	if e.dispatcher == nil {
		return
	}

	snap, err := e.params.Snapshot()
	if err != nil {
		common.Logger().Warn("skipping dispatch", "err", err)
		return
	}

	began := time.Now()
	view, err := e.dispatcher.Trace(snap)
	if err != nil {
		common.Logger().Warn("dispatch failed", "err", err)
		return
	}
	e.view = view
	e.profiler.RecordDispatch(time.Since(began))
}

// save blocks until the latest frame is written to path.
func (e *engine) save(path string) {
	if e.dispatcher == nil {
		return
	}
	if err := e.dispatcher.FrameToImage(path); err != nil {
		common.Logger().Error("save failed", "path", path, "err", err)
		return
	}
	common.Logger().Info("frame saved", "path", path)
}

// present hands the latest frame to the presenter. A lost surface is reconfigured and retried once.
func (e *engine) present() error {
	if e.presenter == nil {
		return nil
	}

	err := e.presenter.Present(e.view)
	if errors.Is(err, renderer.ErrSurfaceAcquire) {
		common.Logger().Warn("reconfiguring surface", "err", err)
		e.presenter.Resize(e.window.Width(), e.window.Height())
		err = e.presenter.Present(e.view)
	}
	if err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// drainWatcher applies the newest reloaded scene file. The resolution, frame counter and clock stay with the loop.
func (e *engine) drainWatcher() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case p, ok := <-e.watcher.Updates():
			if !ok || p == nil {
				return
			}
			p.Uniforms.Resolution = e.params.Uniforms.Resolution
			p.Uniforms.Frames = e.params.Uniforms.Frames
			p.Uniforms.Time = e.params.Uniforms.Time
			*e.params = *p
			common.Logger().Info("scene reloaded", "path", e.watcher.Path(), "voxels", len(p.Grid))
		case err, ok := <-e.watcher.Errors():
			if !ok {
				return
			}
			common.Logger().Warn("scene reload failed", "path", e.watcher.Path(), "err", err)
		default:
			return
		}
	}
}

func (e *engine) closeWatcher() {
	if e.watcher == nil {
		return
	}
	if err := e.watcher.Close(); err != nil {
		common.Logger().Warn("closing scene watcher", "err", err)
	}
}
