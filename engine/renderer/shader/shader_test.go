package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/Carmen-Shannon/oxy-voxel/shaders"
)

func voxelShader(t *testing.T) Shader {
	t.Helper()
	s, err := NewShaderFromSource("voxel", ShaderTypeCompute, shaders.Voxel)
	require.NoError(t, err)
	return s
}

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("int x = 1;", 1)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = parseAnnotation("  //@oxy:group 0 2 storage_read voxels array<voxel>", 7)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationTypeBindingGroup, a.Type)
	assert.Equal(t, 0, *a.Group)
	assert.Equal(t, 2, *a.Binding)
	assert.Equal(t, AnnotationArgVoxel, a.TypeArg())
	assert.Equal(t, 7, a.Line)

	a, err = parseAnnotation("//@oxy:provider 0 0 present frame_texture", 3)
	require.NoError(t, err)
	assert.Equal(t, []AnnotationArg{AnnotationArgPresent, AnnotationArgFrameTexture}, a.Args)

	bad := []string{
		"//@oxy:",
		"//@oxy:include",
		"//@oxy:include lights",
		"//@oxy:group 0 0 storage_uniform uniforms",
		"//@oxy:group x 0 storage_uniform uniforms uniforms",
		"//@oxy:group 0 -1 storage_uniform uniforms uniforms",
		"//@oxy:group 0 0 workgroup uniforms uniforms",
		"//@oxy:group 0 0 storage_uniform uniforms lights",
		"//@oxy:provider 0 3",
		"//@oxy:provider 0 3 shadow",
		"//@oxy:provider 0 0 present depth",
		"//@oxy:instance 0",
	}
	for _, line := range bad {
		_, err := parseAnnotation(line, 1)
		assert.Error(t, err, line)
	}
}

func TestPreProcessor(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(strings.Join([]string{
		"//@oxy:include voxel",
		"//@oxy:include voxel",
		"//@oxy:group 1 4 storage_read_write cells array<voxel>",
	}, "\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct Voxel"))
	assert.Contains(t, out, "@group(1) @binding(4) var<storage, read_write> cells: array<Voxel>;")
	require.Len(t, pp.Declarations(), 1)

	_, err = pp.Process("//@oxy:group 0 0 storage_uniform camera camera")
	assert.ErrorContains(t, err, "before its @oxy:include")
}

func TestVoxelShaderBindings(t *testing.T) {
	s := voxelShader(t)

	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, [3]uint32{scene.WorkgroupSize, scene.WorkgroupSize, 1}, s.WorkgroupSize())

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 4)

	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(112), desc.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[1].Buffer.Type)
	assert.Equal(t, uint64(32), desc.Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, desc.Entries[2].Buffer.Type)
	assert.Equal(t, uint64(32), desc.Entries[2].Buffer.MinBindingSize)

	out := desc.Entries[3].StorageTexture
	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, out.Access)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, out.Format)
	assert.Equal(t, wgpu.TextureViewDimension2D, out.ViewDimension)

	for _, e := range desc.Entries {
		assert.Equal(t, wgpu.ShaderStageCompute, e.Visibility)
	}

	assert.Equal(t, "voxels", s.BindGroupVarName(0, 2))
	assert.Equal(t, "output", s.BindGroupVarName(0, 3))
	assert.Empty(t, s.BindGroupVarName(0, 9))

	decl, ok := s.Declaration(AnnotationArgOutput, "")
	require.True(t, ok)
	assert.Equal(t, 3, *decl.Binding)
	decl, ok = s.Declaration(AnnotationArgCamera, "")
	require.True(t, ok)
	assert.Equal(t, 1, *decl.Binding)
}

func TestStructLayoutsMatchMarshal(t *testing.T) {
	s := voxelShader(t)

	uniforms, ok := s.StructLayout("Uniforms")
	require.True(t, ok)
	gu := scene.DefaultUniforms().GPU()
	assert.Equal(t, uint64(gu.Size()), uniforms.Size)
	assert.Equal(t, map[string]uint64{
		"time":              0,
		"frames":            4,
		"max_steps":         8,
		"voxel_amount":      12,
		"resolution":        16,
		"background_color":  32,
		"floor_color":       48,
		"object_color":      64,
		"light_position":    80,
		"sun_intensity":     92,
		"smoothing":         96,
		"ambient_occlusion": 100,
	}, uniforms.Offsets)

	cam, ok := s.StructLayout("Camera")
	require.True(t, ok)
	gc := camera.Default().GPU()
	assert.Equal(t, uint64(gc.Size()), cam.Size)
	assert.Equal(t, uint64(16), cam.Offsets["look_at"])
	assert.Equal(t, uint64(28), cam.Offsets["zoom"])

	voxel, ok := s.StructLayout("Voxel")
	require.True(t, ok)
	var gv scene.GPUVoxel
	assert.Equal(t, uint64(gv.Size()), voxel.Size)
	assert.Equal(t, uint64(16), voxel.Offsets["color"])
}

func TestPresentShader(t *testing.T) {
	vs, err := NewShaderFromSource("present", ShaderTypeVertex, shaders.Present)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, [3]uint32{}, vs.WorkgroupSize())

	fs, err := NewShaderFromSource("present", ShaderTypeFragment, shaders.Present)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", fs.EntryPoint())

	desc := fs.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, desc.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, desc.Entries[1].Sampler.Type)
	assert.Equal(t, wgpu.ShaderStageFragment, desc.Entries[1].Visibility)

	decl, ok := fs.Declaration(AnnotationArgPresent, AnnotationArgFrameSampler)
	require.True(t, ok)
	assert.Equal(t, 1, *decl.Binding)
}

func TestMissingEntryPoint(t *testing.T) {
	_, err := NewShaderFromSource("voxel", ShaderTypeFragment, shaders.Voxel)
	assert.ErrorContains(t, err, "no entry point")

	_, err = NewShader("missing", ShaderTypeCompute, "does/not/exist.wgsl")
	assert.Error(t, err)
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* block /* nested */ still */ c"
	assert.Equal(t, "a \nb  c", stripComments(src))
}

func TestVoxelShaderCompiles(t *testing.T) {
	s := voxelShader(t)

	spirv, err := naga.Compile(s.Source())
	if err != nil {
		t.Skipf("naga cannot compile the ray-marcher yet: %v", err)
	}
	require.GreaterOrEqual(t, len(spirv), 4)
	magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
	assert.Equal(t, uint32(0x07230203), magic)
}
