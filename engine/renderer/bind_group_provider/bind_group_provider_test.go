package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("tracer")
	assert.Equal(t, "tracer", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Buffer(0))
	assert.Zero(t, p.BufferSize(0))
}

func TestSetBufferTracksSize(t *testing.T) {
	p := NewBindGroupProvider("tracer")
	p.SetBuffer(2, nil, 96)
	assert.Equal(t, uint64(96), p.BufferSize(2))
	assert.Len(t, p.Buffers(), 1)

	p.SetBuffer(2, nil, 192)
	assert.Equal(t, uint64(192), p.BufferSize(2))

	p.Release()
	assert.Zero(t, p.BufferSize(2))
	assert.Empty(t, p.Buffers())
}

func TestTextureViewBinding(t *testing.T) {
	p := NewBindGroupProvider("present", WithTextureView(0, nil))
	assert.Nil(t, p.TextureView(0))
	p.SetTextureView(0, nil)
	assert.Nil(t, p.BindGroup())
	p.Release()
	assert.Nil(t, p.TextureView(0))
}
