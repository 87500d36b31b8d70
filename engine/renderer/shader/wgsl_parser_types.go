package shader

import "github.com/cogentcore/webgpu/wgpu"

// sampledTextureInfo holds the view dimension and multisampled flag for a sampled texture type
type sampledTextureInfo struct {
	viewDimension wgpu.TextureViewDimension
	multisampled  bool
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// StructLayout is the host-shareable memory layout of a WGSL struct as parsed from shader source.
// Used to check that Go marshalling matches what the shader reads.
type StructLayout struct {
	// Size is the struct size in bytes, rounded up to Align.
	Size uint64

	// Align is the largest member alignment.
	Align uint64

	// Offsets maps each member name to its byte offset.
	Offsets map[string]uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
