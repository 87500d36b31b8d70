package scene

import "github.com/go-gl/mathgl/mgl32"

// Voxel is a unit cube centered on an integer lattice position with a linear-RGB albedo.
type Voxel struct {
	Position [3]int32  `toml:"position" yaml:"position"`
	Color    mgl32.Vec3 `toml:"color" yaml:"color"`
}

// Center returns the world-space center of the voxel.
//
// Returns:
//   - mgl32.Vec3: the cube center
func (v Voxel) Center() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2])}
}

// VoxelGrid is the ordered voxel list the shader iterates. Duplicates are allowed.
type VoxelGrid []Voxel

// DefaultGrid returns the five hand-placed startup voxels.
//
// Returns:
//   - VoxelGrid: the default grid
func DefaultGrid() VoxelGrid {
	return VoxelGrid{
		{Position: [3]int32{0, 0, 0}, Color: mgl32.Vec3{1, 1, 1}},
		{Position: [3]int32{1, 1, 0}, Color: mgl32.Vec3{0, 1, 0}},
		{Position: [3]int32{1, 2, 0}, Color: mgl32.Vec3{1, 1, 0}},
		{Position: [3]int32{-1, 1, 0}, Color: mgl32.Vec3{0, 0, 1}},
		{Position: [3]int32{0, 1, -1}, Color: mgl32.Vec3{1, 0, 0}},
	}
}

// StorageSize returns the byte size of the storage buffer holding the grid.
// An empty grid still occupies one element because zero-sized bindings are invalid.
//
// Returns:
//   - uint64: the buffer size in bytes
func (g VoxelGrid) StorageSize() uint64 {
	var v GPUVoxel
	return uint64(max(len(g), 1) * v.Size())
}

// Marshal serializes the grid into its storage buffer layout, one 32-byte element per voxel.
// An empty grid yields a single zeroed element.
//
// Returns:
//   - []byte: the serialized storage buffer contents
func (g VoxelGrid) Marshal() []byte {
	var gv GPUVoxel
	stride := gv.Size()
	buf := make([]byte, g.StorageSize())
	for i, v := range g {
		gv = GPUVoxel{Position: v.Position, Color: [3]float32(v.Color)}
		gv.MarshalInto(buf[i*stride:])
	}
	return buf
}
