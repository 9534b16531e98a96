// Package frame is the CPU-side ingestion bridge between an external frame
// producer (an emulation core, a video decoder, a pattern generator) and the
// GL renderer. It normalizes incoming pixels to RGBA8888 in a staging buffer
// and tracks dirtiness so the renderer only re-uploads when the data changed.
// It never touches the GPU.
package frame

import (
	"errors"
	"fmt"
	"math"
)

// PixelFormat identifies the layout of incoming pixel data.
type PixelFormat int

const (
	// FormatXRGB8888 is packed little-endian 32-bit 0x00RRGGBB.
	FormatXRGB8888 PixelFormat = iota
	// FormatRGB565 is packed little-endian 16-bit 5-6-5.
	FormatRGB565
)

var (
	ErrInvalidFrame      = errors.New("invalid frame")
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
)

// Buffer stages one frame of RGBA8888 pixels. A failed Set leaves the
// previously staged frame untouched; a successful Set marks the buffer dirty
// until the renderer consumes it. Buffer does no locking: the caller must not
// overlap Set with the renderer reading the staged pixels.
type Buffer struct {
	pixels []byte
	width  int
	height int
	dirty  bool
}

// Set validates and ingests a frame, converting it to RGBA8888 with opaque
// alpha. pitch is the source row stride in bytes.
func (b *Buffer) Set(data []byte, width, height, pitch int, format PixelFormat) error {
	if data == nil {
		return fmt.Errorf("%w: nil pixel data", ErrInvalidFrame)
	}
	if width <= 0 || height <= 0 || pitch <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d pitch %d", ErrInvalidFrame, width, height, pitch)
	}

	var bpp int
	switch format {
	case FormatXRGB8888:
		bpp = 4
	case FormatRGB565:
		bpp = 2
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}

	if width > math.MaxInt/4 || height > (math.MaxInt/4)/width {
		return fmt.Errorf("%w: %dx%d overflows", ErrInvalidFrame, width, height)
	}
	if pitch < width*bpp {
		return fmt.Errorf("%w: pitch %d shorter than row of %d pixels", ErrInvalidFrame, pitch, width)
	}
	if height > 1 && pitch > (math.MaxInt-width*bpp)/(height-1) {
		return fmt.Errorf("%w: pitch %d with height %d overflows", ErrInvalidFrame, pitch, height)
	}
	if len(data) < pitch*(height-1)+width*bpp {
		return fmt.Errorf("%w: %d bytes for %dx%d pitch %d", ErrInvalidFrame, len(data), width, height, pitch)
	}

	need := width * height * 4
	if cap(b.pixels) < need {
		b.pixels = make([]byte, need)
	}
	b.pixels = b.pixels[:need]

	switch format {
	case FormatXRGB8888:
		convertXRGB8888(b.pixels, data, width, height, pitch)
	case FormatRGB565:
		convertRGB565(b.pixels, data, width, height, pitch)
	}

	b.width = width
	b.height = height
	b.dirty = true
	return nil
}

// Pixels returns the staged RGBA8888 bytes. Valid until the next Set.
func (b *Buffer) Pixels() []byte { return b.pixels }

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Dirty reports whether the staged frame has not yet been uploaded.
func (b *Buffer) Dirty() bool { return b.dirty }

// MarkClean is called by the renderer after a successful GPU upload.
func (b *Buffer) MarkClean() { b.dirty = false }

func convertXRGB8888(dst, src []byte, width, height, pitch int) {
	for y := 0; y < height; y++ {
		row := src[y*pitch:]
		out := dst[y*width*4:]
		for x := 0; x < width; x++ {
			// Little-endian 0x00RRGGBB: bytes are B, G, R, X.
			out[x*4+0] = row[x*4+2]
			out[x*4+1] = row[x*4+1]
			out[x*4+2] = row[x*4+0]
			out[x*4+3] = 0xFF
		}
	}
}

func convertRGB565(dst, src []byte, width, height, pitch int) {
	for y := 0; y < height; y++ {
		row := src[y*pitch:]
		out := dst[y*width*4:]
		for x := 0; x < width; x++ {
			v := uint16(row[x*2]) | uint16(row[x*2+1])<<8
			r := v >> 11
			g := (v >> 5) & 0x3F
			b := v & 0x1F
			// Replicate the high bits into the low bits so full-intensity
			// 5/6-bit channels expand to exactly 255.
			out[x*4+0] = byte(r<<3 | r>>2)
			out[x*4+1] = byte(g<<2 | g>>4)
			out[x*4+2] = byte(b<<3 | b>>2)
			out[x*4+3] = 0xFF
		}
	}
}
