package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickTracksFramesAndFPS(t *testing.T) {
	p := NewProfiler(WithUpdateInterval(time.Hour))
	assert.False(t, p.Tick(0.02))
	assert.False(t, p.Tick(0.01))

	s := p.Stats()
	assert.Equal(t, uint64(2), s.Frames)
	assert.InDelta(t, 100, s.FPS, 1e-3)
}

func TestTickIgnoresZeroDelta(t *testing.T) {
	p := NewProfiler()
	p.Tick(0.5)
	p.Tick(0)
	assert.InDelta(t, 2, p.Stats().FPS, 1e-9)
}

func TestTickReportsInterval(t *testing.T) {
	p := NewProfiler(WithUpdateInterval(time.Nanosecond), WithLogging(true))
	time.Sleep(time.Millisecond)
	assert.True(t, p.Tick(0.016))
}

func TestRecordDispatch(t *testing.T) {
	p := NewProfiler()
	p.RecordDispatch(5 * time.Millisecond)
	p.RecordDispatch(7 * time.Millisecond)

	s := p.Stats()
	assert.Equal(t, uint64(2), s.Dispatches)
	assert.Equal(t, 7*time.Millisecond, s.FrameTime)
}
