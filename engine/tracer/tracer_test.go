package tracer

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddedBytesPerRow(t *testing.T) {
	const align = 256
	for width := uint32(1); width <= 1100; width++ {
		padded := PaddedBytesPerRow(width, align)
		require.Zero(t, padded%align, "width %d", width)
		require.GreaterOrEqual(t, padded, 4*width, "width %d", width)
		require.Less(t, padded-4*width, uint32(align), "width %d", width)
	}
	assert.Equal(t, uint32(512), PaddedBytesPerRow(100, align))
	assert.Equal(t, uint32(256), PaddedBytesPerRow(64, align))
	assert.Equal(t, uint32(4352), PaddedBytesPerRow(1080, align))
}

// paddedFrame builds a row-padded copy whose padding bytes are 0xEE.
func paddedFrame(width, height, paddedRow uint32) []byte {
	buf := make([]byte, paddedRow*height)
	for i := range buf {
		buf[i] = 0xEE
	}
	for y := range height {
		for x := range width {
			o := y*paddedRow + x*4
			buf[o] = byte(x)
			buf[o+1] = byte(y)
			buf[o+2] = byte(x + y)
			buf[o+3] = 255
		}
	}
	return buf
}

func TestTrimRowsDropsPadding(t *testing.T) {
	const width, height = 100, 64
	paddedRow := PaddedBytesPerRow(width, 256)
	out := TrimRows(paddedFrame(width, height, paddedRow), width, height, paddedRow)

	require.Len(t, out, width*height*4)
	assert.NotContains(t, out, byte(0xEE))
	o := (10*width + 99) * 4
	assert.Equal(t, []byte{99, 10, 109, 255}, out[o:o+4])
}

func TestTrimRowsWithoutPaddingIsIdentity(t *testing.T) {
	const width, height = 64, 16
	in := paddedFrame(width, height, width*4)
	assert.Equal(t, in, TrimRows(in, width, height, width*4))
}

func TestWriteImageRoundTrip(t *testing.T) {
	const width, height = 100, 64
	paddedRow := PaddedBytesPerRow(width, 256)
	img := &image.RGBA{
		Pix:    TrimRows(paddedFrame(width, height, paddedRow), width, height, paddedRow),
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, WriteImage(path, img))

	decoded, err := imgio.Open(path)
	require.NoError(t, err)
	rgba := clone.AsRGBA(decoded)
	assert.Equal(t, width, rgba.Bounds().Dx())
	assert.Equal(t, height, rgba.Bounds().Dy())
	assert.Equal(t, img.RGBAAt(50, 32), rgba.RGBAAt(50, 32))
	assert.Equal(t, img.Pix, rgba.Pix)
}

func TestWriteImageUnwritablePath(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	err := WriteImage(filepath.Join(t.TempDir(), "missing", "out.png"), img)
	assert.ErrorIs(t, err, ErrReadbackFault)
}

func TestEncoderForExtension(t *testing.T) {
	for _, path := range []string{"a.png", "a.PNG", "a.jpg", "a.jpeg", "a.bmp", "a"} {
		assert.NotNil(t, EncoderFor(path), path)
	}
}

func TestNewTracerRejectsResolutionBeforeDeviceUse(t *testing.T) {
	for _, res := range [][2]uint32{{100, 100}, {0, 64}, {64, 0}, {64, 72}} {
		tr, err := NewTracer(nil, res)
		assert.Nil(t, tr)
		assert.ErrorIs(t, err, ErrInvalidResolution, "%v", res)
		assert.ErrorIs(t, err, scene.ErrInvalidResolution)
	}
}

func TestNewTracerMissingShaderFile(t *testing.T) {
	tr, err := NewTracer(nil, [2]uint32{64, 64}, WithShaderPath(filepath.Join(t.TempDir(), "voxel.wgsl")))
	assert.Nil(t, tr)
	assert.Error(t, err)
}

func TestNewTracerRejectsResolutionForShaderWorkgroup(t *testing.T) {
	src := `
//@oxy:include uniforms
//@oxy:include camera
//@oxy:include voxel
//@oxy:group 0 0 storage_uniform uniforms uniforms
//@oxy:group 0 1 storage_uniform camera camera
//@oxy:group 0 2 storage_read voxels array<voxel>
//@oxy:provider 0 3 output
@group(0) @binding(3) var output: texture_storage_2d<rgba8unorm, write>;

@compute @workgroup_size(32, 32, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    textureStore(output, vec2<i32>(id.xy), vec4<f32>(uniforms.time, camera.zoom, f32(voxels[0].position.x), 1.0));
}
`
	tr, err := NewTracer(nil, [2]uint32{48, 48}, WithShaderSource(src))
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestWithMapTimeoutKeepsDefaultForNonPositive(t *testing.T) {
	tr := &tracer{mapTimeout: DefaultMapTimeout}
	WithMapTimeout(0)(tr)
	assert.Equal(t, DefaultMapTimeout, tr.mapTimeout)
	WithMapTimeout(DefaultMapTimeout * 2)(tr)
	assert.Equal(t, DefaultMapTimeout*2, tr.mapTimeout)
}
