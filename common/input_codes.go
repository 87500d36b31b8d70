package common

// Mouse button codes for cross-platform input handling.
// These values match GLFW mouse button codes.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#MouseButton
const (
	MouseButtonLeft   = 0 // Primary button (GLFW MouseButton1)
	MouseButtonRight  = 1 // Secondary button (GLFW MouseButton2)
	MouseButtonMiddle = 2 // Wheel button (GLFW MouseButton3)
)

// Mouse button actions reported by the window layer.
const (
	ActionRelease = 0 // Button released (GLFW Release)
	ActionPress   = 1 // Button pressed (GLFW Press)
)
