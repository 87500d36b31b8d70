// Package ui is the mouse-only host of the tracer. It turns window mouse events into camera edits
// and the Render, Realtime and Save actions, and publishes loop statistics in the window title.
//
//   - left click: render once (ignored while realtime)
//   - right click: toggle realtime
//   - middle click: save the current frame
//   - left drag: orbit the camera around its look-at point
//   - scroll: zoom
package ui

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/profiler"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
)

// DefaultSavePath is where the middle-click save writes the frame.
const DefaultSavePath = "~/voxeltracer.png"

// clickSlop is the largest cursor travel in pixels for which a left press and release still count as a click.
const clickSlop = 4

// Actions are the one-shot requests gathered since the previous Update.
type Actions struct {
	// Render requests a single dispatch. Never set while realtime is on.
	Render bool
	// Save requests a blocking readback of the most recent frame.
	Save bool
}

// MouseSource is the part of the window the host listens to.
type MouseSource interface {
	SetScrollCallback(callback func(delta float32))
	SetMouseButtonCallback(callback func(button, action int, x, y float32))
	SetMouseMoveCallback(callback func(x, y float32))
}

// host is the implementation of the Host interface.
type host struct {
	controller camera.CameraController
	title      string
	savePath   string
	realtime   bool

	pending Actions

	dragging       bool
	lastX, lastY   float32
	travel         float32
	orbitX, orbitY float32
	zoom           float32
}

// Host is the UI layer of the application loop. Event handlers only record input; Update applies it
// to the owner's parameter block during the UI phase of a tick.
type Host interface {
	// Attach registers the host's mouse handlers on a window.
	//
	// Parameters:
	//   - src: the event source
	Attach(src MouseSource)

	// Update applies pending camera input to p and returns the actions requested since the last call.
	//
	// Parameters:
	//   - p: the parameter block owned by the loop
	//
	// Returns:
	//   - Actions: the pending one-shot requests, cleared by this call
	Update(p *scene.Params) Actions

	// Realtime reports whether a dispatch is issued every tick.
	Realtime() bool

	// SetRealtime switches realtime mode.
	//
	// Parameters:
	//   - enabled: true to dispatch every tick
	SetRealtime(enabled bool)

	// SavePath returns the destination of the Save action.
	SavePath() string

	// Title formats the window title for the given statistics.
	//
	// Parameters:
	//   - s: the loop statistics
	//
	// Returns:
	//   - string: the title text
	Title(s profiler.Stats) string

	// OnScroll handles a scroll wheel delta.
	OnScroll(delta float32)

	// OnMouseButton handles a press or release of a common.MouseButton* code at x, y.
	OnMouseButton(button, action int, x, y float32)

	// OnMouseMove handles cursor movement to x, y.
	OnMouseMove(x, y float32)
}

var _ Host = &host{}

// NewHost creates a host with realtime off and the default save path.
//
// Parameters:
//   - options: functional options for the host
//
// Returns:
//   - Host: the new host
func NewHost(options ...HostBuilderOption) Host {
	h := &host{
		controller: camera.NewCameraController(),
		title:      "Voxel Renderer",
		savePath:   DefaultSavePath,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (h *host) Attach(src MouseSource) {
	src.SetScrollCallback(h.OnScroll)
	src.SetMouseButtonCallback(h.OnMouseButton)
	src.SetMouseMoveCallback(h.OnMouseMove)
}

func (h *host) OnScroll(delta float32) {
	h.zoom += delta
}

func (h *host) OnMouseButton(button, action int, x, y float32) {
	switch button {
	case common.MouseButtonLeft:
		switch action {
		case common.ActionPress:
			h.dragging = true
			h.lastX, h.lastY = x, y
			h.travel = 0
		case common.ActionRelease:
			if h.dragging && h.travel <= clickSlop && !h.realtime {
				h.pending.Render = true
			}
			h.dragging = false
		}
	case common.MouseButtonRight:
		if action == common.ActionPress {
			h.realtime = !h.realtime
			common.Logger().Info("realtime toggled", "enabled", h.realtime)
		}
	case common.MouseButtonMiddle:
		if action == common.ActionPress {
			h.pending.Save = true
		}
	}
}

func (h *host) OnMouseMove(x, y float32) {
	if !h.dragging {
		return
	}
	dx, dy := x-h.lastX, y-h.lastY
	h.lastX, h.lastY = x, y
	h.travel += max(dx, -dx) + max(dy, -dy)
	h.orbitX += dx
	h.orbitY += dy
}

func (h *host) Update(p *scene.Params) Actions {
	if h.orbitX != 0 || h.orbitY != 0 {
		h.controller.Orbit(&p.Camera, h.orbitX, h.orbitY)
		h.orbitX, h.orbitY = 0, 0
	}
	if h.zoom != 0 {
		h.controller.Zoom(&p.Camera, h.zoom)
		h.zoom = 0
	}

	a := h.pending
	h.pending = Actions{}
	if h.realtime {
		a.Render = false
	}
	return a
}

func (h *host) Realtime() bool {
	return h.realtime
}

func (h *host) SetRealtime(enabled bool) {
	h.realtime = enabled
}

func (h *host) SavePath() string {
	return h.savePath
}

func (h *host) Title(s profiler.Stats) string {
	mode := "manual"
	if h.realtime {
		mode = "realtime"
	}
	return fmt.Sprintf("%s | %.1f fps | frame %.2f ms | %s",
		h.title, s.FPS, float64(s.FrameTime.Microseconds())/1000, mode)
}
