package tracer

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mitchellh/go-homedir"
)

const bytesPerPixel = 4

// PaddedBytesPerRow returns the row stride of a texture-to-buffer copy: width RGBA8 pixels
// rounded up to the copy alignment.
//
// Parameters:
//   - width: the image width in pixels
//   - align: the copy row alignment in bytes, wgpu.CopyBytesPerRowAlignment on every device
//
// Returns:
//   - uint32: the padded row size in bytes
func PaddedBytesPerRow(width, align uint32) uint32 {
	return common.AlignUp(width*bytesPerPixel, align)
}

// TrimRows drops the alignment padding from a row-padded copy, leaving width*4 bytes per row.
//
// Parameters:
//   - padded: the mapped buffer contents, at least paddedRow*height bytes
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - paddedRow: the row stride of padded in bytes
//
// Returns:
//   - []byte: tightly packed RGBA rows
func TrimRows(padded []byte, width, height, paddedRow uint32) []byte {
	row := width * bytesPerPixel
	out := make([]byte, row*height)
	for y := range height {
		copy(out[y*row:(y+1)*row], padded[y*paddedRow:y*paddedRow+row])
	}
	return out
}

// EncoderFor picks the image encoder for a file extension. Unknown extensions encode PNG.
//
// Parameters:
//   - path: the destination file path
//
// Returns:
//   - imgio.Encoder: the encoder
func EncoderFor(path string) imgio.Encoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(95)
	case ".bmp":
		return imgio.BMPEncoder()
	default:
		return imgio.PNGEncoder()
	}
}

// WriteImage expands a leading ~ in path and encodes img to it by extension.
//
// Parameters:
//   - path: the destination file, overwritten if present
//   - img: the image to encode
//
// Returns:
//   - error: ErrReadbackFault wrapped with the path or encoder failure
func WriteImage(path string, img image.Image) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadbackFault, err)
	}
	if err := imgio.Save(expanded, img, EncoderFor(expanded)); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrReadbackFault, expanded, err)
	}
	return nil
}

func (t *tracer) FrameToImage(path string) error {
	img, err := t.ReadPixels()
	if err != nil {
		return err
	}
	return WriteImage(path, img)
}

func (t *tracer) ReadPixels() (*image.RGBA, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.texture == nil {
		return nil, fmt.Errorf("%w: tracer released", ErrReadbackFault)
	}
	if !t.traced {
		common.Logger().Warn("reading back a frame that was never traced")
	}

	paddedRow := PaddedBytesPerRow(t.width, uint32(wgpu.CopyBytesPerRowAlignment))
	size := uint64(paddedRow) * uint64(t.height)

	device := t.gpu.Device()
	buffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Voxel Readback Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create readback buffer: %w", ErrReadbackFault, err)
	}
	defer buffer.Release()

	if err := t.copyToBuffer(buffer, paddedRow); err != nil {
		return nil, err
	}

	if err := t.mapRead(device, buffer, size); err != nil {
		return nil, err
	}
	mapped := buffer.GetMappedRange(0, uint(size))
	pixels := TrimRows(mapped, t.width, t.height, paddedRow)
	buffer.Unmap()

	return &image.RGBA{
		Pix:    pixels,
		Stride: int(t.width) * bytesPerPixel,
		Rect:   image.Rect(0, 0, int(t.width), int(t.height)),
	}, nil
}

// copyToBuffer records and submits a copy of the whole output image into buffer with the given
// row stride. The copy is ordered after every earlier dispatch on the queue.
func (t *tracer) copyToBuffer(buffer *wgpu.Buffer, paddedRow uint32) error {
	encoder, err := t.gpu.Device().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadbackFault, err)
	}
	defer encoder.Release()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  paddedRow,
				RowsPerImage: t.height,
			},
			Buffer: buffer,
		},
		&wgpu.Extent3D{
			Width:              t.width,
			Height:             t.height,
			DepthOrArrayLayers: 1,
		},
	)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadbackFault, err)
	}
	defer commandBuffer.Release()

	t.gpu.Queue().Submit(commandBuffer)
	return nil
}

// mapRead requests a read mapping of buffer and polls the device until the callback reports or the
// map deadline passes.
func (t *tracer) mapRead(device *wgpu.Device, buffer *wgpu.Buffer, size uint64) error {
	done := make(chan wgpu.BufferMapAsyncStatus, 1)
	err := buffer.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		done <- status
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadbackFault, err)
	}

	deadline := time.Now().Add(t.mapTimeout)
	for {
		device.Poll(false, nil)
		select {
		case status := <-done:
			if status != wgpu.BufferMapAsyncStatusSuccess {
				return fmt.Errorf("%w: map status %v", ErrReadbackFault, status)
			}
			return nil
		default:
		}
		if time.Now().After(deadline) {
			return errors.Join(ErrReadbackFault, fmt.Errorf("%w after %s", ErrMapTimeout, t.mapTimeout))
		}
		time.Sleep(time.Millisecond)
	}
}
