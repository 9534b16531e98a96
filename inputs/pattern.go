// Package inputs produces video frames for the renderer, either synthesized
// or decoded from a media file.
package inputs

import (
	"encoding/binary"

	"github.com/richinsley/goretroshade/frame"
)

// barColors is a classic color bar sequence, RGB.
var barColors = [8][3]uint8{
	{255, 255, 255},
	{255, 255, 0},
	{0, 255, 255},
	{0, 255, 0},
	{255, 0, 255},
	{255, 0, 0},
	{0, 0, 255},
	{0, 0, 0},
}

// TestPattern generates scrolling color bars with a moving scanline, in
// either packed pixel format the renderer ingests. The returned buffer is
// reused between calls.
type TestPattern struct {
	width  int
	height int
	format frame.PixelFormat
	buf    []byte
}

func NewTestPattern(width, height int, format frame.PixelFormat) *TestPattern {
	bpp := 4
	if format == frame.FormatRGB565 {
		bpp = 2
	}
	return &TestPattern{
		width:  width,
		height: height,
		format: format,
		buf:    make([]byte, width*height*bpp),
	}
}

func (p *TestPattern) Width() int                { return p.width }
func (p *TestPattern) Height() int               { return p.height }
func (p *TestPattern) Format() frame.PixelFormat { return p.format }

func (p *TestPattern) Pitch() int {
	if p.format == frame.FormatRGB565 {
		return p.width * 2
	}
	return p.width * 4
}

// Next renders the pattern for the given frame number.
func (p *TestPattern) Next(frameCount uint32) []byte {
	scroll := int(frameCount / 4)
	beam := int(frameCount) % p.height

	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			c := barColors[((x+scroll)*8/p.width)%8]
			r, g, b := c[0], c[1], c[2]
			if y == beam {
				r, g, b = 255, 255, 255
			}
			p.put(x, y, r, g, b)
		}
	}
	return p.buf
}

func (p *TestPattern) put(x, y int, r, g, b uint8) {
	if p.format == frame.FormatRGB565 {
		v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
		binary.LittleEndian.PutUint16(p.buf[(y*p.width+x)*2:], v)
		return
	}
	i := (y*p.width + x) * 4
	p.buf[i] = b
	p.buf[i+1] = g
	p.buf[i+2] = r
	p.buf[i+3] = 0
}
