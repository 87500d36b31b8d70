package ui

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/profiler"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	scroll func(delta float32)
	button func(button, action int, x, y float32)
	move   func(x, y float32)
}

func (f *fakeSource) SetScrollCallback(cb func(delta float32))                       { f.scroll = cb }
func (f *fakeSource) SetMouseButtonCallback(cb func(button, action int, x, y float32)) { f.button = cb }
func (f *fakeSource) SetMouseMoveCallback(cb func(x, y float32))                     { f.move = cb }

func newParams(t *testing.T) *scene.Params {
	t.Helper()
	return scene.NewParams()
}

func TestAttachRegistersHandlers(t *testing.T) {
	src := &fakeSource{}
	NewHost().Attach(src)

	assert.NotNil(t, src.scroll)
	assert.NotNil(t, src.button)
	assert.NotNil(t, src.move)
}

func TestLeftClickRequestsRender(t *testing.T) {
	h := NewHost()
	p := newParams(t)

	h.OnMouseButton(common.MouseButtonLeft, common.ActionPress, 10, 10)
	h.OnMouseButton(common.MouseButtonLeft, common.ActionRelease, 10, 10)

	a := h.Update(p)
	assert.True(t, a.Render)
	assert.False(t, a.Save)

	assert.False(t, h.Update(p).Render, "actions are cleared once reported")
}

func TestDragOrbitsWithoutRender(t *testing.T) {
	h := NewHost()
	p := newParams(t)
	before := p.Camera.Position

	h.OnMouseButton(common.MouseButtonLeft, common.ActionPress, 0, 0)
	h.OnMouseMove(40, 0)
	h.OnMouseButton(common.MouseButtonLeft, common.ActionRelease, 40, 0)

	a := h.Update(p)
	assert.False(t, a.Render)
	assert.NotEqual(t, before, p.Camera.Position)
	assert.InDelta(t, before.Sub(p.Camera.LookAt).Len(), p.Camera.Position.Sub(p.Camera.LookAt).Len(), 1e-4)
}

func TestMoveWithoutPressIsIgnored(t *testing.T) {
	h := NewHost()
	p := newParams(t)
	before := p.Camera

	h.OnMouseMove(100, 100)
	h.Update(p)

	assert.Equal(t, before, p.Camera)
}

func TestScrollZooms(t *testing.T) {
	h := NewHost()
	p := newParams(t)

	h.OnScroll(2)
	h.Update(p)
	assert.Greater(t, p.Camera.Zoom, float32(1))
}

func TestRightClickTogglesRealtime(t *testing.T) {
	h := NewHost()
	require.False(t, h.Realtime())

	h.OnMouseButton(common.MouseButtonRight, common.ActionPress, 0, 0)
	assert.True(t, h.Realtime())

	h.OnMouseButton(common.MouseButtonRight, common.ActionRelease, 0, 0)
	assert.True(t, h.Realtime(), "release does not toggle")

	h.OnMouseButton(common.MouseButtonRight, common.ActionPress, 0, 0)
	assert.False(t, h.Realtime())
}

func TestRenderSuppressedInRealtime(t *testing.T) {
	h := NewHost(WithRealtime(true))
	p := newParams(t)

	h.OnMouseButton(common.MouseButtonLeft, common.ActionPress, 5, 5)
	h.OnMouseButton(common.MouseButtonLeft, common.ActionRelease, 5, 5)

	assert.False(t, h.Update(p).Render)
}

func TestMiddleClickRequestsSave(t *testing.T) {
	h := NewHost(WithSavePath("/tmp/frame.png"))
	p := newParams(t)

	h.OnMouseButton(common.MouseButtonMiddle, common.ActionPress, 0, 0)

	assert.True(t, h.Update(p).Save)
	assert.Equal(t, "/tmp/frame.png", h.SavePath())
}

func TestDefaultSavePath(t *testing.T) {
	assert.Equal(t, DefaultSavePath, NewHost(WithSavePath("")).SavePath())
}

func TestTitle(t *testing.T) {
	h := NewHost(WithTitle("Tracer"))
	s := profiler.Stats{FPS: 59.94, FrameTime: 1500 * time.Microsecond}

	assert.Equal(t, "Tracer | 59.9 fps | frame 1.50 ms | manual", h.Title(s))

	h.SetRealtime(true)
	assert.Equal(t, "Tracer | 59.9 fps | frame 1.50 ms | realtime", h.Title(s))
}
