// Package shaders holds the WGSL programs of the voxel tracer. The sources are embedded so
// tests and tools can parse them without a working directory, while the binary loads
// VoxelPath from disk at startup.
package shaders

import _ "embed"

// VoxelPath is the ray-marcher location relative to the working directory.
const VoxelPath = "shaders/voxel.wgsl"

// Voxel is the compute ray-marcher source.
//
//go:embed voxel.wgsl
var Voxel string

// Present is the presentation pass that samples the traced frame onto the surface.
//
//go:embed present.wgsl
var Present string
