package softtracer

import (
	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	epsilon     float32 = 1e-3
	farPlane    float32 = 100
	floorHeight float32 = -0.5
	aoStep      float32 = 0.02
)

// marcher holds the per-render constants of one snapshot. It is read-only once built and shared
// by every row worker.
type marcher struct {
	u       scene.Uniforms
	origin  mgl32.Vec3
	zoom    float32
	centers []mgl32.Vec3
	colors  []mgl32.Vec3

	forward, right, up mgl32.Vec3
	width, height      float32
}

func newMarcher(s scene.Snapshot) *marcher {
	m := &marcher{
		u:       s.Uniforms,
		origin:  s.Camera.Position,
		zoom:    s.Camera.Zoom,
		centers: make([]mgl32.Vec3, len(s.Grid)),
		colors:  make([]mgl32.Vec3, len(s.Grid)),
		width:   float32(s.Uniforms.Resolution[0]),
		height:  float32(s.Uniforms.Resolution[1]),
	}
	for i, v := range s.Grid {
		m.centers[i] = v.Center()
		m.colors[i] = v.Color
	}
	m.forward, m.right, m.up = s.Camera.Basis()
	return m
}

func length(v mgl32.Vec3) float32 {
	return math32.Sqrt(v.Dot(v))
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	return v.Mul(1 / length(v))
}

func sdBox(p, center mgl32.Vec3) float32 {
	q := mgl32.Vec3{
		math32.Abs(p[0]-center[0]) - 0.5,
		math32.Abs(p[1]-center[1]) - 0.5,
		math32.Abs(p[2]-center[2]) - 0.5,
	}
	outside := length(mgl32.Vec3{math32.Max(q[0], 0), math32.Max(q[1], 0), math32.Max(q[2], 0)})
	inside := math32.Min(math32.Max(q[0], math32.Max(q[1], q[2])), 0)
	return outside + inside
}

func sdFloor(p mgl32.Vec3) float32 {
	return p[1] - floorHeight
}

func (m *marcher) sdf(p mgl32.Vec3) float32 {
	d := sdFloor(p)
	for _, c := range m.centers {
		d = common.SmoothMin(d, sdBox(p, c), m.u.Smoothing)
	}
	return d
}

func (m *marcher) normal(p mgl32.Vec3) mgl32.Vec3 {
	hx := mgl32.Vec3{epsilon, 0, 0}
	hy := mgl32.Vec3{0, epsilon, 0}
	hz := mgl32.Vec3{0, 0, epsilon}
	return normalize(mgl32.Vec3{
		m.sdf(p.Add(hx)) - m.sdf(p.Sub(hx)),
		m.sdf(p.Add(hy)) - m.sdf(p.Sub(hy)),
		m.sdf(p.Add(hz)) - m.sdf(p.Sub(hz)),
	})
}

func (m *marcher) ambientOcclusion(p, n mgl32.Vec3) float32 {
	samples := m.u.AmbientOcclusion
	if samples <= 0 {
		return 1
	}
	var occlusion float32
	for i := int32(1); i <= samples; i++ {
		h := aoStep * float32(i)
		occlusion += math32.Max(h-m.sdf(p.Add(n.Mul(h))), 0) / h
	}
	return common.Clamp(1-occlusion/float32(samples), 0, 1)
}

// albedo picks the surface color at a hit point. Equal distances resolve to the voxel.
func (m *marcher) albedo(p mgl32.Vec3) mgl32.Vec4 {
	best := farPlane
	index := 0
	for i, c := range m.centers {
		if d := sdBox(p, c); d < best {
			best = d
			index = i
		}
	}
	if len(m.centers) > 0 && best <= sdFloor(p) {
		c := m.colors[index]
		o := m.u.ObjectColor
		return mgl32.Vec4{c[0] * o[0], c[1] * o[1], c[2] * o[2], 1}
	}
	return m.u.FloorColor
}

// shade returns the clamped color of pixel (x, y), row 0 being the top of the image.
func (m *marcher) shade(x, y int) mgl32.Vec4 {
	px := float32(x) + 0.5
	py := m.height - (float32(y) + 0.5)
	side := math32.Min(m.width, m.height)
	uvx := (2*px - m.width) / side / m.zoom
	uvy := (2*py - m.height) / side / m.zoom

	direction := normalize(m.forward.Add(m.right.Mul(uvx)).Add(m.up.Mul(uvy)))

	color := m.u.BackgroundColor
	var t float32
	for i := uint32(0); i < m.u.MaxSteps; i++ {
		p := m.origin.Add(direction.Mul(t))
		d := m.sdf(p)
		if d < epsilon {
			n := m.normal(p)
			light := normalize(m.origin.Add(m.u.LightPosition).Sub(p))
			diffuse := math32.Max(n.Dot(light), 0) * m.u.SunIntensity
			surface := m.albedo(p)
			shade := diffuse * m.ambientOcclusion(p, n)
			color = mgl32.Vec4{surface[0] * shade, surface[1] * shade, surface[2] * shade, surface[3]}
			break
		}
		t += d
		if t > farPlane {
			break
		}
	}

	for i := range color {
		color[i] = common.Clamp(color[i], 0, 1)
	}
	return color
}
