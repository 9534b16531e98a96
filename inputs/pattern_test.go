package inputs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goretroshade/frame"
)

func TestTestPatternFeedsFrameBuffer(t *testing.T) {
	for _, format := range []frame.PixelFormat{frame.FormatXRGB8888, frame.FormatRGB565} {
		p := NewTestPattern(64, 48, format)
		pixels := p.Next(0)

		var buf frame.Buffer
		require.NoError(t, buf.Set(pixels, p.Width(), p.Height(), p.Pitch(), p.Format()))
		assert.Equal(t, 64, buf.Width())
		assert.Equal(t, 48, buf.Height())
	}
}

func TestTestPatternAnimates(t *testing.T) {
	p := NewTestPattern(64, 48, frame.FormatXRGB8888)

	first := make([]byte, len(p.Next(0)))
	copy(first, p.Next(0))
	second := p.Next(24)
	assert.NotEqual(t, first, second, "pattern should move between frames")
}

func TestTestPatternSizes(t *testing.T) {
	p := NewTestPattern(320, 240, frame.FormatRGB565)
	assert.Equal(t, 320*2, p.Pitch())
	assert.Len(t, p.Next(0), 320*240*2)

	p = NewTestPattern(320, 240, frame.FormatXRGB8888)
	assert.Equal(t, 320*4, p.Pitch())
	assert.Len(t, p.Next(0), 320*240*4)
}
