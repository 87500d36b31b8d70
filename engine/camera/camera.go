package camera

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidCamera is returned when the camera position coincides with its look-at point.
	ErrInvalidCamera = errors.New("camera position must differ from look_at")

	// ErrInvalidZoom is returned when the camera zoom is not strictly positive.
	ErrInvalidZoom = errors.New("camera zoom must be positive")
)

// WorldUp is the reference up vector used to derive the view basis.
var WorldUp = mgl32.Vec3{0, 1, 0}

// Camera is the plain-data pinhole camera traced by the ray-marcher.
// It is copied by value into every frame snapshot.
type Camera struct {
	// Position is the ray origin in world space.
	Position mgl32.Vec3 `toml:"position" yaml:"position"`

	// LookAt is the world-space point the camera faces.
	LookAt mgl32.Vec3 `toml:"look_at" yaml:"look_at"`

	// Zoom divides the normalized screen coordinate, so values above 1 magnify.
	Zoom float32 `toml:"zoom" yaml:"zoom"`
}

// Default returns the startup camera: two units back on +Z looking at the origin.
//
// Returns:
//   - Camera: the default camera
func Default() Camera {
	return Camera{
		Position: mgl32.Vec3{0, 0, 2},
		LookAt:   mgl32.Vec3{0, 0, 0},
		Zoom:     1,
	}
}

// Validate checks the camera invariants.
//
// Returns:
//   - error: ErrInvalidCamera or ErrInvalidZoom wrapped with the offending values, nil when valid
func (c Camera) Validate() error {
	if c.Position.ApproxEqual(c.LookAt) {
		return fmt.Errorf("%w: position %v, look_at %v", ErrInvalidCamera, c.Position, c.LookAt)
	}
	if !(c.Zoom > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, c.Zoom)
	}
	return nil
}

// Basis derives the right-handed view basis of the camera.
// forward = normalize(look_at - position), right = normalize(forward x up), up = right x forward.
// When forward is parallel to WorldUp the +Z axis is used as the reference instead.
//
// Returns:
//   - forward: unit view direction
//   - right: unit screen-right direction
//   - up: unit screen-up direction
func (c Camera) Basis() (forward, right, up mgl32.Vec3) {
	forward = c.LookAt.Sub(c.Position).Normalize()
	ref := WorldUp
	if mgl32.Abs(forward.Dot(ref)) > 1-1e-6 {
		ref = mgl32.Vec3{0, 0, 1}
	}
	right = forward.Cross(ref).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// GPU converts the camera into its uniform buffer layout.
//
// Returns:
//   - GPUCamera: the GPU-aligned camera record
func (c Camera) GPU() GPUCamera {
	return GPUCamera{
		Position: [3]float32(c.Position),
		LookAt:   [3]float32(c.LookAt),
		Zoom:     c.Zoom,
	}
}
