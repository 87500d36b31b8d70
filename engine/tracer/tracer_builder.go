package tracer

import "time"

// DefaultMapTimeout bounds how long a readback waits for the GPU to map its buffer.
const DefaultMapTimeout = 5 * time.Second

// TracerBuilderOption is a functional option applied to a tracer during construction via NewTracer.
type TracerBuilderOption func(*tracer)

// WithShaderPath loads the ray-march shader from a file instead of shaders/voxel.wgsl.
//
// Parameters:
//   - path: the WGSL file path, relative to the working directory
//
// Returns:
//   - TracerBuilderOption: a function that applies the shader path option to a tracer
func WithShaderPath(path string) TracerBuilderOption {
	return func(t *tracer) {
		t.shaderPath = path
	}
}

// WithShaderSource compiles the ray-march shader from source text. Takes precedence over WithShaderPath.
//
// Parameters:
//   - source: the WGSL source with @oxy: annotations
//
// Returns:
//   - TracerBuilderOption: a function that applies the shader source option to a tracer
func WithShaderSource(source string) TracerBuilderOption {
	return func(t *tracer) {
		t.shaderSource = source
	}
}

// WithMapTimeout sets the readback map deadline. Non-positive values keep DefaultMapTimeout.
//
// Parameters:
//   - timeout: the deadline
//
// Returns:
//   - TracerBuilderOption: a function that applies the map timeout option to a tracer
func WithMapTimeout(timeout time.Duration) TracerBuilderOption {
	return func(t *tracer) {
		if timeout > 0 {
			t.mapTimeout = timeout
		}
	}
}
