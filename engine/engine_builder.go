package engine

import (
	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/Carmen-Shannon/oxy-voxel/engine/profiler"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/engine/ui"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the profiler log line.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, for example to change its update interval.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithParams sets the parameter block the loop owns, typically one loaded from a scene file.
//
// Parameters:
//   - p: the parameter block
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithParams(p *scene.Params) EngineBuilderOption {
	return func(e *engine) {
		e.params = p
	}
}

// WithUI attaches a UI host. Without one the loop only presents the initial frame.
//
// Parameters:
//   - h: the UI host
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUI(h ui.Host) EngineBuilderOption {
	return func(e *engine) {
		e.host = h
	}
}

// WithWatcher applies reloaded scene files between ticks. The engine closes the watcher when Run returns.
//
// Parameters:
//   - w: the scene file watcher
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWatcher(w config.Watcher) EngineBuilderOption {
	return func(e *engine) {
		e.watcher = w
	}
}
