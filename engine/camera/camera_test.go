package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCameraIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsDegenerateCamera(t *testing.T) {
	cam := Default()
	cam.LookAt = cam.Position
	assert.ErrorIs(t, cam.Validate(), ErrInvalidCamera)

	cam = Default()
	cam.Zoom = 0
	assert.ErrorIs(t, cam.Validate(), ErrInvalidZoom)

	cam.Zoom = -1
	assert.ErrorIs(t, cam.Validate(), ErrInvalidZoom)
}

func TestBasisIsOrthonormalAndRightHanded(t *testing.T) {
	cams := []Camera{
		Default(),
		{Position: mgl32.Vec3{3, 2, -1}, LookAt: mgl32.Vec3{0, 0.5, 0}, Zoom: 1},
		{Position: mgl32.Vec3{0, 5, 0}, LookAt: mgl32.Vec3{0, 0, 0}, Zoom: 1},
	}
	for _, cam := range cams {
		f, r, u := cam.Basis()
		assert.InDelta(t, 1, f.Len(), 1e-5)
		assert.InDelta(t, 1, r.Len(), 1e-5)
		assert.InDelta(t, 1, u.Len(), 1e-5)
		assert.InDelta(t, 0, f.Dot(r), 1e-5)
		assert.InDelta(t, 0, f.Dot(u), 1e-5)
		assert.InDelta(t, 0, r.Dot(u), 1e-5)
		assert.True(t, r.Cross(f).ApproxEqualThreshold(u, 1e-5))
	}
}

func TestDefaultBasis(t *testing.T) {
	f, r, u := Default().Basis()
	assert.True(t, f.ApproxEqual(mgl32.Vec3{0, 0, -1}))
	assert.True(t, r.ApproxEqual(mgl32.Vec3{1, 0, 0}))
	assert.True(t, u.ApproxEqual(mgl32.Vec3{0, 1, 0}))
}

func TestGPUCameraMarshal(t *testing.T) {
	cam := Camera{Position: mgl32.Vec3{1, 2, 3}, LookAt: mgl32.Vec3{4, 5, 6}, Zoom: 1.5}
	g := cam.GPU()
	buf := g.Marshal()
	require.Len(t, buf, 32)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(3), f(8))
	assert.Equal(t, float32(0), f(12))
	assert.Equal(t, float32(4), f(16))
	assert.Equal(t, float32(6), f(24))
	assert.Equal(t, float32(1.5), f(28))
}

func TestOrbitPreservesRadius(t *testing.T) {
	cc := NewCameraController()
	cam := Default()
	before := cam.Position.Sub(cam.LookAt).Len()

	cc.Orbit(&cam, 120, -40)

	assert.InDelta(t, before, cam.Position.Sub(cam.LookAt).Len(), 1e-4)
	assert.False(t, cam.Position.ApproxEqual(Default().Position))
	assert.NoError(t, cam.Validate())
}

func TestOrbitClampsElevation(t *testing.T) {
	cc := NewCameraController(WithElevationLimits(-0.5, 0.5))
	cam := Default()

	cc.Orbit(&cam, 0, 100000)

	_, _, elevation := toSpherical(cam.Position.Sub(cam.LookAt))
	assert.InDelta(t, 0.5, elevation, 1e-4)
}

func TestZoomStaysPositive(t *testing.T) {
	cc := NewCameraController(WithZoomSpeed(0.5), WithMinZoom(0.25))
	cam := Default()

	cc.Zoom(&cam, 1)
	assert.InDelta(t, 1.5, cam.Zoom, 1e-5)

	cc.Zoom(&cam, -50)
	assert.Equal(t, float32(0.25), cam.Zoom)
}
