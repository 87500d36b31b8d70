package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraSource is the canonical WGSL definition of the Camera struct.
// Matches GPUCamera layout exactly (32 bytes, uniform address space).
//
//go:embed assets/camera.wgsl
var GPUCameraSource string

// GPUCamera is the GPU-aligned representation of the camera uniform buffer.
// Size: 32 bytes. vec3 members are 16-byte aligned, zoom packs into the tail of look_at.
type GPUCamera struct {
	Position [3]float32 // offset  0: vec3<f32>
	_pad0    float32    // offset 12: alignment of look_at
	LookAt   [3]float32 // offset 16: vec3<f32>
	Zoom     float32    // offset 28: f32
}

// Size returns the size of the GPUCamera struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUCamera) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCamera struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCamera) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.LookAt[i]))
	}
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.Zoom))
	return buf
}
