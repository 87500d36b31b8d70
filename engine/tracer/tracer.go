// Package tracer runs the voxel ray-marcher on the GPU: it owns the compute pipeline and the
// output storage image, dispatches one trace per call and copies finished frames back to the host.
package tracer

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/shaders"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineKey is the renderer cache key of the ray-march compute pipeline.
const PipelineKey = "voxel"

var (
	// ErrInvalidResolution is returned by NewTracer when a dimension is zero or not a multiple of
	// the shader workgroup size.
	ErrInvalidResolution = scene.ErrInvalidResolution

	// ErrRenderFault is returned when a dispatch could not be recorded or submitted.
	// The previously traced frame stays valid.
	ErrRenderFault = errors.New("render fault")

	// ErrReadbackFault is returned when copying, mapping or encoding a frame fails.
	ErrReadbackFault = errors.New("readback fault")

	// ErrMapTimeout is returned when the readback buffer is not mapped before the deadline.
	ErrMapTimeout = errors.New("readback buffer map timed out")
)

// tracer is the implementation of the Tracer interface.
type tracer struct {
	mu  *sync.Mutex
	gpu renderer.Renderer

	width  uint32
	height uint32

	shaderPath   string
	shaderSource string
	mapTimeout   time.Duration

	shader   shader.Shader
	pipeline pipeline.Pipeline
	provider bind_group_provider.BindGroupProvider

	texture *wgpu.Texture
	view    *wgpu.TextureView

	uniformsBinding int
	cameraBinding   int
	voxelsBinding   int
	outputBinding   int

	traced bool
}

// Tracer is the GPU ray-march pipeline together with its frame dispatcher and image readback.
// The output image is created once and reused for every dispatch.
type Tracer interface {
	// Trace uploads a parameter snapshot, dispatches the ray-marcher over the whole output image and
	// returns the output view. The dispatch is submitted without waiting for the GPU.
	//
	// Parameters:
	//   - s: the immutable parameter snapshot to render
	//
	// Returns:
	//   - *wgpu.TextureView: the output view, owned by the tracer
	//   - error: ErrRenderFault wrapped with the cause
	Trace(s scene.Snapshot) (*wgpu.TextureView, error)

	// FrameToImage copies the most recent frame back from the GPU and writes it to path. The format
	// follows the extension (png, jpg/jpeg or bmp, PNG otherwise) and a leading ~ expands to the home
	// directory. Existing files are overwritten. Blocks until the file is written.
	//
	// Parameters:
	//   - path: the destination file
	//
	// Returns:
	//   - error: ErrReadbackFault or ErrMapTimeout wrapped with the cause
	FrameToImage(path string) error

	// ReadPixels copies the most recent frame back from the GPU with row padding removed.
	//
	// Returns:
	//   - *image.RGBA: the frame, exactly Resolution() in size
	//   - error: ErrReadbackFault or ErrMapTimeout wrapped with the cause
	ReadPixels() (*image.RGBA, error)

	// Resolution returns the fixed output image size.
	//
	// Returns:
	//   - uint32: width in pixels
	//   - uint32: height in pixels
	Resolution() (uint32, uint32)

	// View returns the output texture view, valid for the lifetime of the tracer.
	//
	// Returns:
	//   - *wgpu.TextureView: the output view
	View() *wgpu.TextureView

	// Release releases the output image and the per-binding buffers.
	Release()
}

var _ Tracer = &tracer{}

// NewTracer validates the resolution, compiles the ray-march shader, registers its compute pipeline
// and creates the output storage image.
//
// Parameters:
//   - gpu: the GPU context to create resources on
//   - res: the output resolution as [width, height]
//   - options: variadic list of TracerBuilderOption functions
//
// Returns:
//   - Tracer: the ready tracer
//   - error: ErrInvalidResolution, or an initialization error from the shader or device
func NewTracer(gpu renderer.Renderer, res [2]uint32, options ...TracerBuilderOption) (Tracer, error) {
	if err := scene.ValidateResolution(res); err != nil {
		return nil, err
	}

	t := &tracer{
		mu:         &sync.Mutex{},
		gpu:        gpu,
		width:      res[0],
		height:     res[1],
		shaderPath: shaders.VoxelPath,
		mapTimeout: DefaultMapTimeout,
	}
	for _, opt := range options {
		opt(t)
	}

	if err := t.initShader(); err != nil {
		return nil, err
	}
	if err := t.initPipeline(); err != nil {
		return nil, err
	}
	if err := t.initOutput(); err != nil {
		t.Release()
		return nil, err
	}

	common.Logger().Info("tracer ready", "width", t.width, "height", t.height, "shader", t.shader.Key())
	return t, nil
}

// initShader loads and parses the ray-march shader and resolves its binding indices.
func (t *tracer) initShader() error {
	var err error
	if t.shaderSource != "" {
		t.shader, err = shader.NewShaderFromSource(PipelineKey, shader.ShaderTypeCompute, t.shaderSource)
	} else {
		t.shader, err = shader.NewShader(PipelineKey, shader.ShaderTypeCompute, t.shaderPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load ray-march shader: %w", err)
	}

	wg := t.shader.WorkgroupSize()
	if wg[0] == 0 || wg[1] == 0 || t.width%wg[0] != 0 || t.height%wg[1] != 0 {
		return fmt.Errorf("%w: %dx%d with workgroup %dx%d", ErrInvalidResolution, t.width, t.height, wg[0], wg[1])
	}

	bindings := []struct {
		arg shader.AnnotationArg
		dst *int
	}{
		{shader.AnnotationArgUniforms, &t.uniformsBinding},
		{shader.AnnotationArgCamera, &t.cameraBinding},
		{shader.AnnotationArgVoxel, &t.voxelsBinding},
		{shader.AnnotationArgOutput, &t.outputBinding},
	}
	for _, b := range bindings {
		a, ok := t.shader.Declaration(b.arg, "")
		if !ok || a.Group == nil || a.Binding == nil || *a.Group != 0 {
			return fmt.Errorf("ray-march shader declares no group 0 binding for %q", b.arg)
		}
		name := t.shader.BindGroupVarName(0, *a.Binding)
		if name == "" {
			return fmt.Errorf("ray-march shader annotates %q at binding %d but declares no variable there", b.arg, *a.Binding)
		}
		common.Logger().Debug("ray-march binding", "role", b.arg, "binding", *a.Binding, "var", name)
		*b.dst = *a.Binding
	}
	return nil
}

func (t *tracer) initPipeline() error {
	p := t.gpu.Pipeline(PipelineKey)
	if p == nil {
		p = pipeline.NewPipeline(PipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(t.shader))
		if err := t.gpu.RegisterPipelines(p); err != nil {
			return fmt.Errorf("failed to create ray-march pipeline: %w", err)
		}
	}
	t.pipeline = p
	return nil
}

// initOutput creates the output storage image and the bind group provider that references it.
func (t *tracer) initOutput() error {
	texture, err := t.gpu.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label: "Voxel Output Texture",
		Size: wgpu.Extent3D{
			Width:              t.width,
			Height:             t.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("failed to create output texture: %w", err)
	}
	t.texture = texture

	t.view, err = texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("failed to create output texture view: %w", err)
	}

	t.provider = bind_group_provider.NewBindGroupProvider("Voxel Tracer",
		bind_group_provider.WithBindGroupLayout(t.pipeline.BindGroupLayout(0)),
		bind_group_provider.WithTextureView(t.outputBinding, t.view),
	)
	return nil
}

func (t *tracer) Trace(s scene.Snapshot) (*wgpu.TextureView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.provider == nil {
		return nil, fmt.Errorf("%w: tracer released", ErrRenderFault)
	}

	uniforms := s.Uniforms
	uniforms.Resolution = [2]uint32{t.width, t.height}
	uniforms.VoxelAmount = uint32(len(s.Grid))
	gpuUniforms := uniforms.GPU()
	gpuCamera := s.Camera.GPU()
	voxels := s.Grid.Marshal()

	grown, err := t.gpu.EnsureBuffer(t.provider, t.voxelsBinding, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, uint64(len(voxels)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to size voxel buffer: %w", ErrRenderFault, err)
	}
	if grown {
		common.Logger().Debug("voxel buffer resized", "bytes", len(voxels), "voxels", len(s.Grid))
	}

	if grown || t.provider.BindGroup() == nil {
		if err := t.gpu.InitBindGroup(t.provider, t.shader.BindGroupLayoutDescriptor(0), nil); err != nil {
			return nil, fmt.Errorf("%w: failed to build bind group: %w", ErrRenderFault, err)
		}
	}

	if err := t.gpu.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: t.provider, Binding: t.uniformsBinding, Data: gpuUniforms.Marshal()},
		{Provider: t.provider, Binding: t.cameraBinding, Data: gpuCamera.Marshal()},
		{Provider: t.provider, Binding: t.voxelsBinding, Data: voxels},
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFault, err)
	}

	wg := t.shader.WorkgroupSize()
	if err := t.gpu.BeginComputeFrame(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFault, err)
	}
	if err := t.gpu.DispatchCompute(PipelineKey, t.provider, [3]uint32{t.width / wg[0], t.height / wg[1], 1}); err != nil {
		_ = t.gpu.EndComputeFrame()
		return nil, fmt.Errorf("%w: %w", ErrRenderFault, err)
	}
	if err := t.gpu.EndComputeFrame(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFault, err)
	}

	t.traced = true
	return t.view, nil
}

func (t *tracer) Resolution() (uint32, uint32) {
	return t.width, t.height
}

func (t *tracer) View() *wgpu.TextureView {
	return t.view
}

func (t *tracer) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.provider != nil {
		t.provider.Release()
		t.provider = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
