package renderer

import "errors"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency. This is the default.
	PresentModeUncapped PresentMode = iota

	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync
)

var (
	// ErrNoAdapter is returned when no GPU adapter compatible with the surface is available.
	ErrNoAdapter = errors.New("no compatible GPU adapter")

	// ErrSurfaceAcquire is returned when the next surface texture cannot be acquired.
	ErrSurfaceAcquire = errors.New("failed to acquire surface texture")

	// ErrPipelineNotFound is returned when a pipeline key is not registered.
	ErrPipelineNotFound = errors.New("pipeline not registered")
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
