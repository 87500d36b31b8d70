package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
)

// Stats is a snapshot of the loop statistics shown to the user.
type Stats struct {
	// FPS is 1 / delta_time of the most recent tick.
	FPS float64
	// FrameTime is the wall time of the most recent dispatch.
	FrameTime time.Duration
	// Dispatches counts every trace issued since startup.
	Dispatches uint64
	// Frames counts every tick since startup.
	Frames uint64
}

// Profiler tracks frame rate, dispatch timing and memory statistics.
// Logs a summary at a configurable interval when logging is enabled.
type Profiler struct {
	stats Stats

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	logging        bool

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options for the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// RecordDispatch counts a trace and remembers its wall time as the frame time.
//
// Parameters:
//   - d: the wall time of the dispatch
func (p *Profiler) RecordDispatch(d time.Duration) {
	p.stats.Dispatches++
	p.stats.FrameTime = d
}

// Stats returns the current statistics.
//
// Returns:
//   - Stats: the statistics
func (p *Profiler) Stats() Stats {
	return p.stats
}

// SetLogging enables or disables the periodic log line.
//
// Parameters:
//   - enabled: true to log every update interval
func (p *Profiler) SetLogging(enabled bool) {
	p.logging = enabled
}

// Tick should be called once per loop iteration with the iteration delta time.
// Reports whether the update interval has elapsed, logging the summary if enabled.
//
// Parameters:
//   - deltaTime: seconds since the previous tick
//
// Returns:
//   - bool: true once per update interval
func (p *Profiler) Tick(deltaTime float32) bool {
	p.stats.Frames++
	if deltaTime > 0 {
		p.stats.FPS = 1 / float64(deltaTime)
	}

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	if p.logging {
		p.log(elapsed)
	}
	p.frameCount = 0
	p.lastTime = currentTime
	return true
}

func (p *Profiler) log(elapsed time.Duration) {
	avgFPS := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	common.Logger().Info("profiler",
		"fps", avgFPS,
		"frame_ms", float64(p.stats.FrameTime.Microseconds())/1000,
		"dispatches", p.stats.Dispatches,
		"heap_mb", allocMB,
		"alloc_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_max_pause_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
