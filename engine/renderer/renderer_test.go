package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderOptions(t *testing.T) {
	r := &renderer{presentMode: PresentModeUncapped, presentSampler: common.NearestClampSampler}

	WithPresentMode(PresentModeVSync)(r)
	WithForceSoftwareRenderer(true)(r)
	WithClearColor(0.1, 0.2, 0.3)(r)
	WithPresentSampler(common.SamplerStagingData{MagFilter: wgpu.FilterModeLinear})(r)

	assert.Equal(t, PresentModeVSync, r.presentMode)
	assert.True(t, r.forceFallbackAdapter)
	assert.Equal(t, [3]float64{0.1, 0.2, 0.3}, r.clearColor)
	assert.Equal(t, wgpu.FilterModeLinear, r.presentSampler.MagFilter)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "shared", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageVertex},
		}},
		1: {Label: "vertex only"},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "shared", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
		}},
		2: {Label: "fragment only"},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged, 3)
	assert.Equal(t, "vertex only", merged[1].Label)
	assert.Equal(t, "fragment only", merged[2].Label)

	shared := merged[0].Entries
	require.Len(t, shared, 2)
	assert.Equal(t, uint32(0), shared[0].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, shared[0].Visibility)
	assert.Equal(t, uint32(1), shared[1].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, shared[1].Visibility)
}

func TestBufferUsage(t *testing.T) {
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeUniform))
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeReadOnlyStorage))
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeStorage))
}

func TestRequiredFeatures(t *testing.T) {
	var asked []wgpu.FeatureName
	features := requiredFeatures(func(f wgpu.FeatureName) bool {
		asked = append(asked, f)
		return true
	})
	assert.Equal(t, []wgpu.FeatureName{textureAdapterSpecificFormatFeatures}, features)
	assert.Equal(t, []wgpu.FeatureName{wgpu.FeatureName(wgpu.NativeFeatureTextureAdapterSpecificFormatFeatures)}, asked)

	assert.Nil(t, requiredFeatures(func(wgpu.FeatureName) bool { return false }))
}
