package tracer

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/shaders"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider keeps a placeholder bind group so rebuilds can be observed without a device.
type stubProvider struct {
	bind_group_provider.BindGroupProvider
	group         *wgpu.BindGroup
	invalidations int
}

func (p *stubProvider) BindGroup() *wgpu.BindGroup       { return p.group }
func (p *stubProvider) SetBindGroup(bg *wgpu.BindGroup) { p.group = bg }
func (p *stubProvider) Release()                        { p.group = nil }

func (p *stubProvider) Invalidate() {
	p.invalidations++
	p.group = nil
}

// recordingRenderer records the calls Trace makes. Methods Trace never calls are left to the
// embedded nil interface.
type recordingRenderer struct {
	renderer.Renderer

	group *wgpu.BindGroup
	sizes map[int]uint64

	ensured    []uint64
	usages     []wgpu.BufferUsage
	inits      int
	writes     [][]bind_group_provider.BufferWrite
	keys       []string
	dispatches [][3]uint32
	begins     int
	ends       int

	ensureErr   error
	beginErr    error
	dispatchErr error
	endErr      error
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{group: &wgpu.BindGroup{}, sizes: map[int]uint64{}}
}

func (r *recordingRenderer) EnsureBuffer(p bind_group_provider.BindGroupProvider, binding int, usage wgpu.BufferUsage, size uint64) (bool, error) {
	r.ensured = append(r.ensured, size)
	r.usages = append(r.usages, usage)
	if r.ensureErr != nil {
		return false, r.ensureErr
	}
	if r.sizes[binding] >= size {
		return false, nil
	}
	r.sizes[binding] = size
	p.Invalidate()
	return true, nil
}

func (r *recordingRenderer) InitBindGroup(p bind_group_provider.BindGroupProvider, _ wgpu.BindGroupLayoutDescriptor, _ map[int]uint64) error {
	r.inits++
	p.SetBindGroup(r.group)
	return nil
}

func (r *recordingRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	r.writes = append(r.writes, writes)
	return nil
}

func (r *recordingRenderer) BeginComputeFrame() error {
	r.begins++
	return r.beginErr
}

func (r *recordingRenderer) DispatchCompute(key string, _ bind_group_provider.BindGroupProvider, count [3]uint32) error {
	r.keys = append(r.keys, key)
	r.dispatches = append(r.dispatches, count)
	return r.dispatchErr
}

func (r *recordingRenderer) EndComputeFrame() error {
	r.ends++
	return r.endErr
}

func newTestTracer(t *testing.T, gpu renderer.Renderer, width, height uint32) (*tracer, *stubProvider) {
	t.Helper()
	tr := &tracer{
		mu:           &sync.Mutex{},
		gpu:          gpu,
		width:        width,
		height:       height,
		shaderSource: shaders.Voxel,
		mapTimeout:   DefaultMapTimeout,
	}
	require.NoError(t, tr.initShader())

	p := &stubProvider{BindGroupProvider: bind_group_provider.NewBindGroupProvider("test")}
	tr.provider = p
	return tr, p
}

func gridOf(n int) scene.VoxelGrid {
	grid := make(scene.VoxelGrid, n)
	for i := range grid {
		grid[i] = scene.Voxel{Position: [3]int32{int32(i), 0, 0}, Color: mgl32.Vec3{1, 1, 1}}
	}
	return grid
}

func traceSnapshot(t *testing.T, grid scene.VoxelGrid) scene.Snapshot {
	t.Helper()
	s, err := scene.NewParams(scene.WithResolution(64, 48), scene.WithGrid(grid)).Snapshot()
	require.NoError(t, err)
	return s
}

// writeFor returns the queued write for a binding.
func writeFor(t *testing.T, writes []bind_group_provider.BufferWrite, binding int) bind_group_provider.BufferWrite {
	t.Helper()
	for _, w := range writes {
		if w.Binding == binding {
			return w
		}
	}
	require.Failf(t, "missing write", "binding %d", binding)
	return bind_group_provider.BufferWrite{}
}

func TestTraceResolvesBindings(t *testing.T) {
	tr, _ := newTestTracer(t, newRecordingRenderer(), 64, 48)

	assert.Equal(t, 0, tr.uniformsBinding)
	assert.Equal(t, 1, tr.cameraBinding)
	assert.Equal(t, 2, tr.voxelsBinding)
	assert.Equal(t, 3, tr.outputBinding)
}

func TestTraceDispatchesOneThreadPerPixel(t *testing.T) {
	gpu := newRecordingRenderer()
	tr, _ := newTestTracer(t, gpu, 64, 48)

	_, err := tr.Trace(traceSnapshot(t, gridOf(5)))
	require.NoError(t, err)

	assert.Equal(t, []string{PipelineKey}, gpu.keys)
	assert.Equal(t, [][3]uint32{{4, 3, 1}}, gpu.dispatches)
	assert.Equal(t, 1, gpu.begins)
	assert.Equal(t, 1, gpu.ends)
	assert.True(t, tr.traced)
}

func TestTraceForcesResolutionAndVoxelCount(t *testing.T) {
	gpu := newRecordingRenderer()
	tr, _ := newTestTracer(t, gpu, 64, 48)

	s := traceSnapshot(t, gridOf(3))
	s.Uniforms.Resolution = [2]uint32{1088, 1088}
	s.Uniforms.VoxelAmount = 99
	_, err := tr.Trace(s)
	require.NoError(t, err)

	require.Len(t, gpu.writes, 1)
	u := writeFor(t, gpu.writes[0], tr.uniformsBinding).Data
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(u[12:]))
	assert.Equal(t, uint32(64), binary.LittleEndian.Uint32(u[16:]))
	assert.Equal(t, uint32(48), binary.LittleEndian.Uint32(u[20:]))

	assert.Len(t, writeFor(t, gpu.writes[0], tr.cameraBinding).Data, 32)
	assert.Len(t, writeFor(t, gpu.writes[0], tr.voxelsBinding).Data, 3*32)
}

func TestTraceRebuildsBindGroupWhenGridGrows(t *testing.T) {
	gpu := newRecordingRenderer()
	tr, p := newTestTracer(t, gpu, 64, 48)

	for _, n := range []int{5, 5, 2, 7} {
		_, err := tr.Trace(traceSnapshot(t, gridOf(n)))
		require.NoError(t, err)
	}

	assert.Equal(t, []uint64{5 * 32, 5 * 32, 2 * 32, 7 * 32}, gpu.ensured)
	assert.Equal(t, 2, gpu.inits, "built once, rebuilt once for the larger grid")
	assert.Equal(t, 2, p.invalidations)
	assert.Same(t, gpu.group, p.BindGroup())
	for _, usage := range gpu.usages {
		assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, usage)
	}
}

func TestTraceEmptyGridUploadsOneElement(t *testing.T) {
	gpu := newRecordingRenderer()
	tr, _ := newTestTracer(t, gpu, 64, 48)

	_, err := tr.Trace(traceSnapshot(t, scene.VoxelGrid{}))
	require.NoError(t, err)

	assert.Equal(t, []uint64{32}, gpu.ensured)
	assert.Equal(t, make([]byte, 32), writeFor(t, gpu.writes[0], tr.voxelsBinding).Data)
	u := writeFor(t, gpu.writes[0], tr.uniformsBinding).Data
	assert.Zero(t, binary.LittleEndian.Uint32(u[12:]))
}

func TestTraceFaults(t *testing.T) {
	cause := errors.New("device lost")

	tests := []struct {
		name   string
		setup  func(r *recordingRenderer)
		begins int
		ends   int
	}{
		{"ensure buffer", func(r *recordingRenderer) { r.ensureErr = cause }, 0, 0},
		{"begin frame", func(r *recordingRenderer) { r.beginErr = cause }, 1, 0},
		{"dispatch", func(r *recordingRenderer) { r.dispatchErr = cause }, 1, 1},
		{"end frame", func(r *recordingRenderer) { r.endErr = cause }, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpu := newRecordingRenderer()
			tt.setup(gpu)
			tr, _ := newTestTracer(t, gpu, 64, 48)

			view, err := tr.Trace(traceSnapshot(t, gridOf(1)))
			assert.Nil(t, view)
			assert.ErrorIs(t, err, ErrRenderFault)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, tt.begins, gpu.begins)
			assert.Equal(t, tt.ends, gpu.ends)
			assert.False(t, tr.traced)
		})
	}
}

func TestTraceAfterRelease(t *testing.T) {
	gpu := newRecordingRenderer()
	tr, _ := newTestTracer(t, gpu, 64, 48)
	tr.Release()

	_, err := tr.Trace(traceSnapshot(t, gridOf(1)))
	assert.ErrorIs(t, err, ErrRenderFault)
	assert.Empty(t, gpu.ensured)
	assert.Empty(t, gpu.dispatches)
}
