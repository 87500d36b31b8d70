package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithMouseSensitivity sets the radians of rotation applied per dragged pixel.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - CameraControllerOption: functional option to set the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the fractional zoom change applied per wheel step.
//
// Parameters:
//   - speed: zoom change per step, 0.1 means 10% per step
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithElevationLimits sets the minimum and maximum elevation angles.
//
// Parameters:
//   - minElevation: minimum angle in radians
//   - maxElevation: maximum angle in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation limits
func WithElevationLimits(minElevation, maxElevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation = minElevation
		cc.maxElevation = maxElevation
	}
}

// WithMinZoom sets the smallest zoom the controller will produce.
//
// Parameters:
//   - minZoom: a strictly positive lower bound
//
// Returns:
//   - CameraControllerOption: functional option to set the minimum zoom
func WithMinZoom(minZoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if minZoom > 0 {
			cc.minZoom = minZoom
		}
	}
}
