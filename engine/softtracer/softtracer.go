// Package softtracer renders scene snapshots on the CPU with the same ray-march contract as
// shaders/voxel.wgsl. It backs the GPU-free tests and headless reference renders.
package softtracer

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
)

// maxTasks bounds the number of row bands submitted per render to the pool queue size.
const maxTasks = 256

// softTracer is the implementation of the SoftTracer interface.
type softTracer struct {
	workers int
	pool    worker.DynamicWorkerPool
}

// SoftTracer is a CPU reference renderer for scene snapshots.
type SoftTracer interface {
	// Render traces every pixel of a snapshot. Rows are stored top-down.
	//
	// Parameters:
	//   - s: the snapshot to render
	//
	// Returns:
	//   - *image.RGBA: the frame, Uniforms.Resolution in size
	//   - error: scene.ErrInvalidResolution wrapped with the size
	Render(s scene.Snapshot) (*image.RGBA, error)

	// Workers returns the number of row workers.
	Workers() int
}

var _ SoftTracer = &softTracer{}

// NewSoftTracer creates a CPU tracer whose rows are shaded on a worker pool.
//
// Parameters:
//   - options: variadic list of SoftTracerBuilderOption functions
//
// Returns:
//   - SoftTracer: the tracer
func NewSoftTracer(options ...SoftTracerBuilderOption) SoftTracer {
	t := &softTracer{
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(t)
	}
	t.pool = worker.NewDynamicWorkerPool(t.workers, maxTasks, 1*time.Second)
	return t
}

func (t *softTracer) Workers() int {
	return t.workers
}

func (t *softTracer) Render(s scene.Snapshot) (*image.RGBA, error) {
	if err := scene.ValidateResolution(s.Uniforms.Resolution); err != nil {
		return nil, err
	}
	if err := s.Camera.Validate(); err != nil {
		return nil, err
	}

	width, height := int(s.Uniforms.Resolution[0]), int(s.Uniforms.Resolution[1])
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	m := newMarcher(s)

	tasks := min(height, 4*t.workers, maxTasks)
	rowsPerTask := (height + tasks - 1) / tasks

	var wg sync.WaitGroup
	for id := range tasks {
		y0 := id * rowsPerTask
		y1 := min(y0+rowsPerTask, height)
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		t.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for y := y0; y < y1; y++ {
					row := img.Pix[y*img.Stride : (y+1)*img.Stride]
					for x := range width {
						c := m.shade(x, y)
						o := x * 4
						row[o] = common.UnitToByte(c[0])
						row[o+1] = common.UnitToByte(c[1])
						row[o+2] = common.UnitToByte(c[2])
						row[o+3] = common.UnitToByte(c[3])
					}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	common.Logger().Debug("soft render done", "width", width, "height", height, "tasks", tasks)
	return img, nil
}

// Render is a convenience wrapper that snapshots params and renders them with a default tracer.
//
// Parameters:
//   - p: the parameter block to render
//
// Returns:
//   - *image.RGBA: the frame
//   - error: a snapshot or render error
func Render(p *scene.Params) (*image.RGBA, error) {
	s, err := p.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot params: %w", err)
	}
	return NewSoftTracer().Render(s)
}
