package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-voxel/shaders"
	"github.com/cogentcore/webgpu/wgpu"
)

// presentPipelineKey is the cache key of the built-in presentation pipeline.
const presentPipelineKey = "present"

// SurfaceProvider yields the drawable target the renderer presents to.
// window.Window satisfies it.
type SurfaceProvider interface {
	// SurfaceDescriptor returns the platform surface descriptor.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	// Width returns the framebuffer width in pixels.
	Width() int
	// Height returns the framebuffer height in pixels.
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// presentProvider binds the frame handed to Present and the present sampler.
	presentProvider bind_group_provider.BindGroupProvider

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	presentSampler       common.SamplerStagingData
	clearColor           [3]float64
}

// Renderer is the GPU context of the tracer. It owns the instance, adapter, surface, device and
// queue, services surface resizes, caches pipelines by key, manages bind group resources and
// presents a traced frame to the surface.
//
// All methods are called from the loop thread.
type Renderer interface {
	// Device returns the logical GPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the device queue all work is submitted to.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// SurfaceFormat returns the surface texture format chosen at configuration.
	//
	// Returns:
	//   - wgpu.TextureFormat: the first format the adapter advertises for the surface
	SurfaceFormat() wgpu.TextureFormat

	// SurfaceSize returns the configured surface size in pixels.
	//
	// Returns:
	//   - uint32: width
	//   - uint32: height
	SurfaceSize() (uint32, uint32)

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU
	// pipeline objects (render or compute) via the backend, then caching them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface for a new size. A zero width or height is ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode and reconfigures the surface.
	//
	// Parameters:
	//   - mode: the PresentMode to use (Uncapped or VSync)
	SetPresentMode(mode PresentMode)

	// InitBindGroup creates any missing buffers and the bind group of a provider from a layout
	// descriptor. Buffers already present on the provider are reused, texture views and samplers
	// must be set beforehand. When the provider has no layout one is created from the descriptor.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferSizeOverrides: custom buffer sizes to use instead of MinBindingSize, keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if buffer or bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitSampler creates a GPU sampler from staging data and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// EnsureBuffer makes sure the buffer at a binding holds at least size bytes. A missing or
	// smaller buffer is replaced, which invalidates the provider's bind group.
	//
	// Parameters:
	//   - provider: the BindGroupProvider owning the buffer
	//   - binding: the binding index
	//   - usage: the buffer usage flags
	//   - size: the required size in bytes
	//
	// Returns:
	//   - bool: true if a new buffer was created
	//   - error: an error if buffer creation fails
	EnsureBuffer(provider bind_group_provider.BindGroupProvider, binding int, usage wgpu.BufferUsage, size uint64) (bool, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	//
	// Returns:
	//   - error: an error if a target buffer is missing or a write fails
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginComputeFrame creates a single command encoder for batching all compute dispatches
	// within a frame into one GPU submission. Must be paired with EndComputeFrame.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginComputeFrame() error

	// DispatchCompute encodes a compute pass for a cached compute pipeline within the current
	// compute frame.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached compute Pipeline to use
	//   - computeProvider: the BindGroupProvider whose BindGroup is set at group 0
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	//
	// Returns:
	//   - error: ErrPipelineNotFound, or an error if no compute frame is open
	DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// EndComputeFrame finishes the compute command encoder and submits it without waiting.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndComputeFrame() error

	// Present draws a frame into the largest centered square of the surface, clears the rest
	// and presents. A nil view presents the clear color only.
	//
	// Parameters:
	//   - view: the texture view to show, borrowed for the duration of the call and cached for the next
	//
	// Returns:
	//   - error: ErrSurfaceAcquire wrapped with the cause, or an encoding error
	Present(view *wgpu.TextureView) error

	// Release releases every pipeline, the presentation resources, the surface and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the GPU context for a surface provider: instance, surface, adapter, device
// and queue, then configures the surface and registers the presentation pipeline.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the surface provider, typically the window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the initialized renderer
//   - error: an initialization error
func NewRenderer(backendType RendererBackendType, surface SurfaceProvider, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:             &sync.Mutex{},
		pipelineCache:  make(map[string]pipeline.Pipeline),
		backendType:    backendType,
		presentMode:    PresentModeUncapped,
		presentSampler: common.NearestClampSampler,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.clearColor)
	}
	if err != nil {
		return nil, err
	}

	r.backend.SetPresentMode(r.presentMode)
	r.backend.ConfigureSurface(surface.Width(), surface.Height())

	if err := r.initPresentation(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

// initPresentation registers the presentation pipeline and creates its sampler. The bind group is
// built on the first Present with a frame.
func (r *renderer) initPresentation() error {
	vs, err := shader.NewShaderFromSource(presentPipelineKey, shader.ShaderTypeVertex, shaders.Present)
	if err != nil {
		return err
	}
	fs, err := shader.NewShaderFromSource(presentPipelineKey, shader.ShaderTypeFragment, shaders.Present)
	if err != nil {
		return err
	}
	p := pipeline.NewPipeline(presentPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	)
	if err := r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("failed to register presentation pipeline: %w", err)
	}

	sampler, ok := fs.Declaration(shader.AnnotationArgPresent, shader.AnnotationArgFrameSampler)
	if !ok {
		return fmt.Errorf("presentation shader declares no %s binding", shader.AnnotationArgFrameSampler)
	}
	r.presentProvider = bind_group_provider.NewBindGroupProvider(presentPipelineKey,
		bind_group_provider.WithBindGroupLayout(p.BindGroupLayout(*sampler.Group)),
	)
	return r.InitSampler(r.presentProvider, *sampler.Binding, r.presentSampler)
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SurfaceSize() (uint32, uint32) {
	return r.backend.SurfaceSize()
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
	w, h := r.backend.SurfaceSize()
	r.Resize(int(w), int(h))
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return err
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return err
			}
		}
		common.Logger().Debug("pipeline registered", "key", key)
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) EnsureBuffer(provider bind_group_provider.BindGroupProvider, binding int, usage wgpu.BufferUsage, size uint64) (bool, error) {
	return r.backend.EnsureBuffer(provider, binding, usage, size)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginComputeFrame() error {
	return r.backend.BeginComputeFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}
	return r.backend.DispatchCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) EndComputeFrame() error {
	return r.backend.EndComputeFrame()
}

func (r *renderer) Present(view *wgpu.TextureView) error {
	r.mu.Lock()
	p := r.pipelineCache[presentPipelineKey]
	r.mu.Unlock()

	if view != nil {
		fs := p.Shader(shader.ShaderTypeFragment)
		frame, ok := fs.Declaration(shader.AnnotationArgPresent, shader.AnnotationArgFrameTexture)
		if !ok {
			return fmt.Errorf("presentation shader declares no %s binding", shader.AnnotationArgFrameTexture)
		}
		r.presentProvider.SetTextureView(*frame.Binding, view)
		if r.presentProvider.BindGroup() == nil {
			if err := r.InitBindGroup(r.presentProvider, fs.BindGroupLayoutDescriptor(*frame.Group), nil); err != nil {
				return fmt.Errorf("failed to bind presented frame: %w", err)
			}
		}
	}

	w, h := r.backend.SurfaceSize()
	return r.backend.Present(p, r.presentProvider, view != nil, common.CenteredSquare(w, h))
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.presentProvider != nil {
		r.presentProvider.Release()
		r.presentProvider = nil
	}
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	if r.backend != nil {
		r.backend.Release()
	}
}
