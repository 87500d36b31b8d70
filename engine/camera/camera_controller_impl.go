package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the orbit implementation of CameraController.
// Spherical coordinates are measured from LookAt: azimuth around +Y starting at +Z,
// elevation from the horizontal plane.
type cameraControllerImpl struct {
	minElevation float32
	maxElevation float32
	minZoom      float32

	mouseSensitivity float32
	zoomSpeed        float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		minElevation:     float32(-math.Pi/2 + 0.05),
		maxElevation:     float32(math.Pi/2 - 0.05),
		minZoom:          0.05,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.1,
	}

	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Orbit(cam *Camera, dx, dy float32) {
	offset := cam.Position.Sub(cam.LookAt)
	radius, azimuth, elevation := toSpherical(offset)
	if radius < 1e-6 {
		return
	}

	azimuth -= dx * cc.mouseSensitivity
	elevation += dy * cc.mouseSensitivity
	elevation = mgl32.Clamp(elevation, cc.minElevation, cc.maxElevation)

	cam.Position = cam.LookAt.Add(fromSpherical(radius, azimuth, elevation))
}

func (cc *cameraControllerImpl) Zoom(cam *Camera, delta float32) {
	factor := float32(math.Pow(float64(1+cc.zoomSpeed), float64(delta)))
	cam.Zoom = max(cam.Zoom*factor, cc.minZoom)
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) MinElevation() float32 {
	return cc.minElevation
}

func (cc *cameraControllerImpl) MaxElevation() float32 {
	return cc.maxElevation
}

// --- internal helpers ---

// toSpherical converts an offset from the look-at point to (radius, azimuth, elevation).
func toSpherical(v mgl32.Vec3) (radius, azimuth, elevation float32) {
	radius = v.Len()
	if radius < 1e-6 {
		return 0, 0, 0
	}
	azimuth = float32(math.Atan2(float64(v.X()), float64(v.Z())))
	elevation = float32(math.Asin(float64(mgl32.Clamp(v.Y()/radius, -1, 1))))
	return radius, azimuth, elevation
}

// fromSpherical is the inverse of toSpherical.
func fromSpherical(radius, azimuth, elevation float32) mgl32.Vec3 {
	cosElev := float32(math.Cos(float64(elevation)))
	sinElev := float32(math.Sin(float64(elevation)))
	cosAzim := float32(math.Cos(float64(azimuth)))
	sinAzim := float32(math.Sin(float64(azimuth)))
	return mgl32.Vec3{
		radius * cosElev * sinAzim,
		radius * sinElev,
		radius * cosElev * cosAzim,
	}
}
