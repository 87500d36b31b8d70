package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-voxel/shaders"
)

func TestNewComputePipeline(t *testing.T) {
	cs, err := shader.NewShaderFromSource("voxel", shader.ShaderTypeCompute, shaders.Voxel)
	require.NoError(t, err)

	p := NewPipeline("voxel", PipelineTypeCompute, WithComputeShader(cs))
	assert.Equal(t, PipelineTypeCompute, p.Type())
	assert.Equal(t, "voxel", p.PipelineKey())
	assert.Same(t, cs, p.Shader(shader.ShaderTypeCompute))
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
	assert.Nil(t, p.Pipeline().(*wgpu.ComputePipeline))
	assert.Nil(t, p.BindGroupLayout(0))
	assert.Nil(t, p.BindGroupLayout(-1))
}

func TestRenderPipelineDefaults(t *testing.T) {
	p := NewPipeline("present", PipelineTypeRender, WithWriteMask(wgpu.ColorWriteMaskRed))
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())

	p.SetLayouts(nil, []*wgpu.BindGroupLayout{nil})
	assert.Nil(t, p.BindGroupLayout(0))
	p.Release()
	assert.Nil(t, p.BindGroupLayout(0))
}
