package camera

// CameraController defines the mouse-driven orbit control for a Camera.
// The controller owns no camera state of its own; every call reads the camera it is
// given, derives spherical coordinates around LookAt, applies the input and writes
// the new Position or Zoom back. Distance to LookAt is preserved by orbiting.
type CameraController interface {
	// Orbit rotates the camera around its look-at point by a mouse drag delta.
	// Horizontal drag changes azimuth, vertical drag changes elevation, clamped
	// to the controller's elevation limits.
	//
	// Parameters:
	//   - cam: the camera to modify in place
	//   - dx: horizontal drag in pixels, positive to the right
	//   - dy: vertical drag in pixels, positive downward
	Orbit(cam *Camera, dx, dy float32)

	// Zoom scales the camera zoom by a scroll delta. Positive delta magnifies.
	// The result is clamped to the controller's minimum zoom so it stays positive.
	//
	// Parameters:
	//   - cam: the camera to modify in place
	//   - delta: scroll amount in wheel steps
	Zoom(cam *Camera, delta float32)

	// MouseSensitivity returns the radians of rotation per dragged pixel.
	//
	// Returns:
	//   - float32: multiplier for mouse movement
	MouseSensitivity() float32

	// ZoomSpeed returns the fractional zoom change per wheel step.
	//
	// Returns:
	//   - float32: multiplier for zoom input
	ZoomSpeed() float32

	// MinElevation returns the minimum allowed elevation angle.
	//
	// Returns:
	//   - float32: minimum elevation in radians
	MinElevation() float32

	// MaxElevation returns the maximum allowed elevation angle.
	//
	// Returns:
	//   - float32: maximum elevation in radians
	MaxElevation() float32
}
