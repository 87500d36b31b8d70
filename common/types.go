// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/cogentcore/webgpu/wgpu"

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// The renderer uses it to build the sampler the presentation pass reads the traced image with.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level. Must be 1 when any filter is nearest.
	MaxAnisotropy uint16
}

// Descriptor converts the staging data into a wgpu sampler descriptor.
//
// Parameters:
//   - label: debug label for the sampler
//
// Returns:
//   - *wgpu.SamplerDescriptor: descriptor ready for device.CreateSampler
func (s SamplerStagingData) Descriptor(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  s.AddressModeU,
		AddressModeV:  s.AddressModeV,
		AddressModeW:  s.AddressModeW,
		MagFilter:     s.MagFilter,
		MinFilter:     s.MinFilter,
		MipmapFilter:  s.MipmapFilter,
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   s.LodMaxClamp,
		MaxAnisotropy: Coalesce(s.MaxAnisotropy, 1),
	}
}

// NearestClampSampler is the sampler configuration used to show traced frames pixel-exact.
var NearestClampSampler = SamplerStagingData{
	AddressModeU:  wgpu.AddressModeClampToEdge,
	AddressModeV:  wgpu.AddressModeClampToEdge,
	AddressModeW:  wgpu.AddressModeClampToEdge,
	MagFilter:     wgpu.FilterModeNearest,
	MinFilter:     wgpu.FilterModeNearest,
	MipmapFilter:  wgpu.MipmapFilterModeNearest,
	LodMinClamp:   0,
	LodMaxClamp:   32,
	MaxAnisotropy: 1,
}

// Viewport is an axis-aligned rectangle in surface pixels.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// CenteredSquare returns the largest square that fits a surface of the given size, centered on it.
// A zero-sized surface yields a zero viewport.
//
// Parameters:
//   - width: surface width in pixels
//   - height: surface height in pixels
//
// Returns:
//   - Viewport: the centered square
func CenteredSquare(width, height uint32) Viewport {
	side := min(width, height)
	return Viewport{
		X:      float32(width-side) / 2,
		Y:      float32(height-side) / 2,
		Width:  float32(side),
		Height: float32(side),
	}
}
