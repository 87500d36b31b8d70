package common

import "github.com/chewxy/math32"

// AlignUp rounds value up to the next multiple of align. An align of zero returns value unchanged.
// Used for GPU copy row pitches and buffer sizes.
//
// Parameters:
//   - value: the value to align
//   - align: the required alignment, need not be a power of two
//
// Returns:
//   - uint32: value rounded up to a multiple of align
func AlignUp(value, align uint32) uint32 {
	if align == 0 {
		return value
	}
	return (value + align - 1) / align * align
}

// SmoothMin blends two distances with the exponential soft minimum
// -log(exp(-k*a) + exp(-k*b)) / k. A k of zero or less is a hard minimum.
// The exponentials are taken relative to min(a, b) so large k does not overflow.
//
// Parameters:
//   - a: first distance
//   - b: second distance
//   - k: blend sharpness, larger values approach a hard minimum
//
// Returns:
//   - float32: the blended distance
func SmoothMin(a, b, k float32) float32 {
	m := math32.Min(a, b)
	if k <= 0 {
		return m
	}
	sum := math32.Exp(-k*(a-m)) + math32.Exp(-k*(b-m))
	return m - math32.Log(sum)/k
}

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float32: the clamped value
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// UnitToByte converts a [0, 1] channel value to an 8-bit unorm value the way the GPU
// stores rgba8unorm texels: clamp, scale by 255 and round to nearest.
//
// Parameters:
//   - v: the channel value
//
// Returns:
//   - uint8: the quantized channel
func UnitToByte(v float32) uint8 {
	return uint8(math32.Floor(Clamp(v, 0, 1)*255 + 0.5))
}
