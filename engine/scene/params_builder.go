package scene

import "github.com/Carmen-Shannon/oxy-voxel/engine/camera"

// ParamsBuilderOption is a functional option for configuring Params.
// Use the With* functions to create options.
type ParamsBuilderOption func(p *Params)

// WithResolution sets the render resolution.
//
// Parameters:
//   - width: output width in pixels
//   - height: output height in pixels
//
// Returns:
//   - ParamsBuilderOption: option function to apply
func WithResolution(width, height uint32) ParamsBuilderOption {
	return func(p *Params) {
		p.Uniforms.Resolution = [2]uint32{width, height}
	}
}

// WithGrid replaces the startup voxel grid. A nil grid renders only the floor.
//
// Parameters:
//   - grid: the voxels to render
//
// Returns:
//   - ParamsBuilderOption: option function to apply
func WithGrid(grid VoxelGrid) ParamsBuilderOption {
	return func(p *Params) {
		p.Grid = grid
	}
}

// WithCamera replaces the startup camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - ParamsBuilderOption: option function to apply
func WithCamera(cam camera.Camera) ParamsBuilderOption {
	return func(p *Params) {
		p.Camera = cam
	}
}

// WithUniforms replaces the startup uniforms.
//
// Parameters:
//   - u: the uniforms
//
// Returns:
//   - ParamsBuilderOption: option function to apply
func WithUniforms(u Uniforms) ParamsBuilderOption {
	return func(p *Params) {
		p.Uniforms = u
	}
}
