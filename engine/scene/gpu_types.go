package scene

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUUniformsSource is the canonical WGSL definition of the Uniforms struct.
// Matches GPUUniforms layout exactly (112 bytes, uniform address space).
//
//go:embed assets/uniforms.wgsl
var GPUUniformsSource string

// GPUVoxelSource is the canonical WGSL definition of the Voxel struct.
// Matches GPUVoxel layout exactly (32 bytes, array stride 32 in storage).
//
//go:embed assets/voxel.wgsl
var GPUVoxelSource string

// GPUUniforms is the GPU-aligned representation of the scene uniform buffer.
// Size: 112 bytes. resolution is 8-byte aligned, every vec3 and vec4 is 16-byte aligned.
type GPUUniforms struct {
	Time             float32    // offset   0: f32
	Frames           uint32     // offset   4: u32
	MaxSteps         uint32     // offset   8: u32
	VoxelAmount      uint32     // offset  12: u32
	Resolution       [2]uint32  // offset  16: vec2<u32>
	_pad0            [2]uint32  // offset  24: alignment of background_color
	BackgroundColor  [4]float32 // offset  32: vec4<f32>
	FloorColor       [4]float32 // offset  48: vec4<f32>
	ObjectColor      [3]float32 // offset  64: vec3<f32>
	_pad1            float32    // offset  76: alignment of light_position
	LightPosition    [3]float32 // offset  80: vec3<f32>
	SunIntensity     float32    // offset  92: f32
	Smoothing        float32    // offset  96: f32
	AmbientOcclusion int32      // offset 100: i32
	_pad2            [2]uint32  // offset 104: struct size rounded to 16
}

// Size returns the size of the GPUUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[4:], g.Frames)
	binary.LittleEndian.PutUint32(buf[8:], g.MaxSteps)
	binary.LittleEndian.PutUint32(buf[12:], g.VoxelAmount)
	binary.LittleEndian.PutUint32(buf[16:], g.Resolution[0])
	binary.LittleEndian.PutUint32(buf[20:], g.Resolution[1])
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.BackgroundColor[i]))
		binary.LittleEndian.PutUint32(buf[48+i*4:], math.Float32bits(g.FloorColor[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.ObjectColor[i]))
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.LightPosition[i]))
	}
	binary.LittleEndian.PutUint32(buf[92:], math.Float32bits(g.SunIntensity))
	binary.LittleEndian.PutUint32(buf[96:], math.Float32bits(g.Smoothing))
	binary.LittleEndian.PutUint32(buf[100:], uint32(g.AmbientOcclusion))
	return buf
}

// GPUVoxel is the GPU-aligned representation of one element of the voxel storage array.
// Size: 32 bytes, which is also the runtime array stride.
type GPUVoxel struct {
	Position [3]int32   // offset  0: vec3<i32>
	_pad0    int32      // offset 12: alignment of color
	Color    [3]float32 // offset 16: vec3<f32>
	_pad1    float32    // offset 28: struct size rounded to 16
}

// Size returns the size of the GPUVoxel struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUVoxel) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalInto writes the voxel into dst, which must hold at least Size() bytes.
//
// Parameters:
//   - dst: destination slice
func (g *GPUVoxel) MarshalInto(dst []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(g.Position[i]))
		binary.LittleEndian.PutUint32(dst[16+i*4:], math.Float32bits(g.Color[i]))
	}
	binary.LittleEndian.PutUint32(dst[12:], 0)
	binary.LittleEndian.PutUint32(dst[28:], 0)
}

// Marshal serializes the GPUVoxel struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUVoxel) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalInto(buf)
	return buf
}
