package ui

import "github.com/Carmen-Shannon/oxy-voxel/engine/camera"

// HostBuilderOption is a functional option for configuring a Host.
type HostBuilderOption func(*host)

// WithSavePath sets the destination of the Save action. A leading ~ expands to the home directory.
//
// Parameters:
//   - path: the image path, its extension selects the encoding
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithSavePath(path string) HostBuilderOption {
	return func(h *host) {
		if path != "" {
			h.savePath = path
		}
	}
}

// WithRealtime sets the initial realtime mode.
//
// Parameters:
//   - enabled: true to start dispatching every tick
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithRealtime(enabled bool) HostBuilderOption {
	return func(h *host) {
		h.realtime = enabled
	}
}

// WithTitle sets the title prefix shown before the statistics.
//
// Parameters:
//   - title: the prefix
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithTitle(title string) HostBuilderOption {
	return func(h *host) {
		h.title = title
	}
}

// WithCameraController replaces the default orbit controller.
//
// Parameters:
//   - cc: the controller
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithCameraController(cc camera.CameraController) HostBuilderOption {
	return func(h *host) {
		if cc != nil {
			h.controller = cc
		}
	}
}
