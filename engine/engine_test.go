package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/profiler"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/engine/ui"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	iterations int
	closed     bool
	title      string

	onUpdate      func()
	onResize      func(width, height int)
	onClose       func()
	onScroll      func(delta float32)
	onMouseButton func(button, action int, x, y float32)
	onMouseMove   func(x, y float32)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func())                                      { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int))                     { w.onResize = cb }
func (w *fakeWindow) SetCloseCallback(cb func())                                       { w.onClose = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))                         { w.onScroll = cb }
func (w *fakeWindow) SetMouseButtonCallback(cb func(button, action int, x, y float32)) { w.onMouseButton = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y float32))                       { w.onMouseMove = cb }
func (w *fakeWindow) SetTitle(title string)                                            { w.title = title }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor                       { return nil }
func (w *fakeWindow) IsRunning() bool                                                  { return !w.closed }
func (w *fakeWindow) RequestClose()                                                    { w.closed = true }
func (w *fakeWindow) Width() int                                                       { return 640 }
func (w *fakeWindow) Height() int                                                      { return 480 }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

// ProcessMessages runs the configured number of iterations, then delivers a user close.
func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < w.iterations && !w.closed; i++ {
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
	if !w.closed && w.onClose != nil {
		w.onClose()
	}
}

type fakeDispatcher struct {
	traces    int
	saves     []string
	traceErr  error
	snapshots []scene.Snapshot
}

func (d *fakeDispatcher) Trace(s scene.Snapshot) (*wgpu.TextureView, error) {
	if d.traceErr != nil {
		return nil, d.traceErr
	}
	d.traces++
	d.snapshots = append(d.snapshots, s)
	return nil, nil
}

func (d *fakeDispatcher) FrameToImage(path string) error {
	d.saves = append(d.saves, path)
	return nil
}

type fakePresenter struct {
	presents int
	resizes  [][2]int
	failures int
}

func (p *fakePresenter) Present(view *wgpu.TextureView) error {
	p.presents++
	if p.failures != 0 {
		if p.failures > 0 {
			p.failures--
		}
		return errors.New("wrapped: " + renderer.ErrSurfaceAcquire.Error())
	}
	return nil
}

func (p *fakePresenter) Resize(width, height int) {
	p.resizes = append(p.resizes, [2]int{width, height})
}

// acquireFailingPresenter wraps ErrSurfaceAcquire so errors.Is can classify it.
type acquireFailingPresenter struct {
	fakePresenter
}

func (p *acquireFailingPresenter) Present(view *wgpu.TextureView) error {
	p.presents++
	if p.failures != 0 {
		if p.failures > 0 {
			p.failures--
		}
		return errors.Join(renderer.ErrSurfaceAcquire, errors.New("surface outdated"))
	}
	return nil
}

type fakeWatcher struct {
	updates chan *scene.Params
	errs    chan error
	closed  int
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{updates: make(chan *scene.Params, 4), errs: make(chan error, 4)}
}

func (w *fakeWatcher) Updates() <-chan *scene.Params { return w.updates }
func (w *fakeWatcher) Errors() <-chan error          { return w.errs }
func (w *fakeWatcher) Path() string                  { return "voxeltracer.toml" }

func (w *fakeWatcher) Close() error {
	w.closed++
	return nil
}

func newTestEngine(t *testing.T, d Dispatcher, p Presenter, options ...EngineBuilderOption) (Engine, *fakeWindow) {
	t.Helper()
	w := &fakeWindow{}
	options = append([]EngineBuilderOption{WithParams(scene.NewParams(scene.WithResolution(64, 64)))}, options...)
	e, err := NewEngine(w, d, p, options...)
	require.NoError(t, err)
	return e, w
}

func TestNewEngineRequiresWindow(t *testing.T) {
	_, err := NewEngine(nil, &fakeDispatcher{}, &fakePresenter{})
	assert.ErrorIs(t, err, ErrNoWindow)
}

func TestNewEngineDefaults(t *testing.T) {
	e, err := NewEngine(&fakeWindow{}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, StateRunning, e.State())
	assert.Equal(t, scene.DefaultUniforms().Resolution, e.Params().Uniforms.Resolution)
	assert.Equal(t, "running", e.State().String())
}

func TestRealtimeDispatchesEveryTick(t *testing.T) {
	d := &fakeDispatcher{}
	e, _ := newTestEngine(t, d, &fakePresenter{}, WithUI(ui.NewHost(ui.WithRealtime(true))))

	const n = 10
	for range n {
		require.NoError(t, e.Tick(0.016))
	}

	assert.Equal(t, n, d.traces)
	assert.Equal(t, uint64(n), e.Stats().Dispatches)
}

func TestManualModeIdleTicksDoNotDispatch(t *testing.T) {
	d := &fakeDispatcher{}
	p := &fakePresenter{}
	e, _ := newTestEngine(t, d, p, WithUI(ui.NewHost()))

	for range 25 {
		require.NoError(t, e.Tick(0.016))
	}

	assert.Zero(t, d.traces)
	assert.Equal(t, 25, p.presents)
}

func TestManualRenderDispatchesOnce(t *testing.T) {
	d := &fakeDispatcher{}
	host := ui.NewHost()
	e, _ := newTestEngine(t, d, &fakePresenter{}, WithUI(host))

	host.OnMouseButton(common.MouseButtonLeft, common.ActionPress, 3, 3)
	host.OnMouseButton(common.MouseButtonLeft, common.ActionRelease, 3, 3)
	for range 5 {
		require.NoError(t, e.Tick(0.016))
	}

	assert.Equal(t, 1, d.traces)
}

func TestRealtimeIgnoresRenderRequest(t *testing.T) {
	d := &fakeDispatcher{}
	host := ui.NewHost(ui.WithRealtime(true))
	e, _ := newTestEngine(t, d, &fakePresenter{}, WithUI(host))

	host.OnMouseButton(common.MouseButtonLeft, common.ActionPress, 3, 3)
	host.OnMouseButton(common.MouseButtonLeft, common.ActionRelease, 3, 3)
	require.NoError(t, e.Tick(0.016))

	assert.Equal(t, 1, d.traces)
}

func TestFramesIncreaseAndTimeIsMonotonic(t *testing.T) {
	e, _ := newTestEngine(t, &fakeDispatcher{}, &fakePresenter{})

	prevFrames := e.Params().Uniforms.Frames
	prevTime := e.Params().Uniforms.Time
	for range 20 {
		require.NoError(t, e.Tick(0.016))
		u := e.Params().Uniforms
		assert.Greater(t, u.Frames, prevFrames)
		assert.GreaterOrEqual(t, u.Time, prevTime)
		prevFrames, prevTime = u.Frames, u.Time
	}
	assert.Equal(t, uint32(20), prevFrames)
}

func TestDispatchSeesCameraEdits(t *testing.T) {
	d := &fakeDispatcher{}
	host := ui.NewHost(ui.WithRealtime(true))
	e, _ := newTestEngine(t, d, &fakePresenter{}, WithUI(host))

	require.NoError(t, e.Tick(0.016))
	host.OnScroll(3)
	require.NoError(t, e.Tick(0.016))
	require.NoError(t, e.Tick(0.016))

	require.Len(t, d.snapshots, 3)
	assert.Equal(t, d.snapshots[0].Camera.Zoom, d.snapshots[1].Camera.Zoom)
	assert.Greater(t, d.snapshots[2].Camera.Zoom, d.snapshots[1].Camera.Zoom)
}

func TestDispatchFailureIsNotTerminal(t *testing.T) {
	d := &fakeDispatcher{traceErr: errors.New("device lost")}
	e, _ := newTestEngine(t, d, &fakePresenter{}, WithUI(ui.NewHost(ui.WithRealtime(true))))

	require.NoError(t, e.Tick(0.016))
	assert.Equal(t, StateRunning, e.State())
	assert.Zero(t, e.Stats().Dispatches)
}

func TestInvalidCameraSkipsDispatch(t *testing.T) {
	d := &fakeDispatcher{}
	e, _ := newTestEngine(t, d, &fakePresenter{}, WithUI(ui.NewHost(ui.WithRealtime(true))))
	e.Params().Camera.LookAt = e.Params().Camera.Position

	require.NoError(t, e.Tick(0.016))
	assert.Zero(t, d.traces)
}

func TestSaveWritesToHostPath(t *testing.T) {
	d := &fakeDispatcher{}
	host := ui.NewHost(ui.WithSavePath("/tmp/out.png"))
	e, _ := newTestEngine(t, d, &fakePresenter{}, WithUI(host))

	host.OnMouseButton(common.MouseButtonMiddle, common.ActionPress, 0, 0)
	require.NoError(t, e.Tick(0.016))
	require.NoError(t, e.Tick(0.016))

	assert.Equal(t, []string{"/tmp/out.png"}, d.saves)
}

func TestSaveLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	host := ui.NewHost(ui.WithSavePath("/tmp/out.png"))
	e, _ := newTestEngine(t, &fakeDispatcher{}, &fakePresenter{}, WithUI(host))

	host.OnMouseButton(common.MouseButtonMiddle, common.ActionPress, 0, 0)
	require.NoError(t, e.Tick(0.016))

	assert.Equal(t, 1, strings.Count(buf.String(), "frame saved"))
}

func TestSurfaceAcquireRetriesOnce(t *testing.T) {
	p := &acquireFailingPresenter{fakePresenter{failures: 1}}
	e, _ := newTestEngine(t, &fakeDispatcher{}, p)

	require.NoError(t, e.Tick(0.016))
	assert.Equal(t, 2, p.presents)
	assert.Equal(t, [][2]int{{640, 480}}, p.resizes)
}

func TestSurfaceAcquireFailingTwiceIsTerminal(t *testing.T) {
	p := &acquireFailingPresenter{fakePresenter{failures: -1}}
	e, _ := newTestEngine(t, &fakeDispatcher{}, p)

	err := e.Tick(0.016)
	assert.ErrorIs(t, err, renderer.ErrSurfaceAcquire)
	assert.Equal(t, 2, p.presents)
}

func TestOtherPresentErrorsAreNotRetried(t *testing.T) {
	p := &fakePresenter{failures: -1}
	e, _ := newTestEngine(t, &fakeDispatcher{}, p)

	require.Error(t, e.Tick(0.016))
	assert.Equal(t, 1, p.presents)
	assert.Empty(t, p.resizes)
}

func TestRunTracesInitialFrameAndStopsOnClose(t *testing.T) {
	d := &fakeDispatcher{}
	p := &fakePresenter{}
	e, w := newTestEngine(t, d, p)
	w.iterations = 3

	require.NoError(t, e.Run())

	assert.Equal(t, StateShutdown, e.State())
	assert.Equal(t, 1, d.traces)
	assert.Equal(t, 3, p.presents)
	assert.True(t, w.closed)
}

func TestRunForwardsResize(t *testing.T) {
	p := &fakePresenter{}
	e, w := newTestEngine(t, &fakeDispatcher{}, p)
	w.iterations = 1

	require.NoError(t, e.Run())
	w.onResize(800, 600)

	assert.Equal(t, [][2]int{{800, 600}}, p.resizes)
}

func TestRunReturnsTerminalError(t *testing.T) {
	p := &acquireFailingPresenter{fakePresenter{failures: -1}}
	e, w := newTestEngine(t, &fakeDispatcher{}, p)
	w.iterations = 10

	err := e.Run()
	assert.ErrorIs(t, err, renderer.ErrSurfaceAcquire)
	assert.Equal(t, StateShutdown, e.State())
	assert.Equal(t, 2, p.presents, "the loop stops after the first terminal tick")
}

func TestTickAfterShutdownIsIgnored(t *testing.T) {
	d := &fakeDispatcher{}
	p := &fakePresenter{}
	e, w := newTestEngine(t, d, p, WithUI(ui.NewHost(ui.WithRealtime(true))))

	e.Shutdown()
	e.Shutdown()
	require.NoError(t, e.Tick(0.016))

	assert.True(t, w.closed)
	assert.Zero(t, d.traces)
	assert.Zero(t, p.presents)
}

func TestWatcherReplacesSceneButKeepsLoopState(t *testing.T) {
	fw := newFakeWatcher()
	d := &fakeDispatcher{}
	e, w := newTestEngine(t, d, &fakePresenter{}, WithWatcher(fw), WithUI(ui.NewHost(ui.WithRealtime(true))))

	require.NoError(t, e.Tick(0.016))

	reloaded := scene.NewParams(scene.WithResolution(128, 128))
	reloaded.Uniforms.ObjectColor = mgl32.Vec3{1, 0, 0}
	reloaded.Grid = reloaded.Grid[:2]
	fw.updates <- reloaded
	fw.errs <- errors.New("bad toml")
	require.NoError(t, e.Tick(0.016))

	u := e.Params().Uniforms
	assert.Equal(t, [2]uint32{64, 64}, u.Resolution)
	assert.Equal(t, uint32(2), u.Frames)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, u.ObjectColor)
	assert.Len(t, e.Params().Grid, 2)
	require.Len(t, d.snapshots, 2)
	assert.Equal(t, uint32(2), d.snapshots[1].Uniforms.VoxelAmount)

	w.iterations = 0
	require.NoError(t, e.Run())
	assert.Equal(t, 1, fw.closed)
}

func TestProfilerPublishesTitle(t *testing.T) {
	prof := profiler.NewProfiler(profiler.WithUpdateInterval(time.Millisecond))
	e, w := newTestEngine(t, &fakeDispatcher{}, &fakePresenter{},
		WithProfiler(prof), WithUI(ui.NewHost(ui.WithTitle("T"))))

	for range 3 {
		time.Sleep(2 * time.Millisecond)
		require.NoError(t, e.Tick(0.5))
	}

	assert.Equal(t, uint64(3), e.Stats().Frames)
	assert.Equal(t, 2.0, e.Stats().FPS)
	assert.True(t, strings.HasPrefix(w.title, "T | 2.0 fps"), w.title)
}
