package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goretroshade/frame"
)

type fakeContext struct {
	width     int
	height    int
	endFrames int
	closed    bool
	shutdown  bool
}

func (c *fakeContext) MakeCurrent()                   {}
func (c *fakeContext) Shutdown()                      { c.shutdown = true }
func (c *fakeContext) ShouldClose() bool              { return c.closed }
func (c *fakeContext) EndFrame()                      { c.endFrames++ }
func (c *fakeContext) GetFramebufferSize() (int, int) { return c.width, c.height }
func (c *fakeContext) Time() float64                  { return 0 }

type recordingSink struct {
	frames int
	width  int
	height int
	size   int
	err    error
}

func (s *recordingSink) WriteFrame(pixels []byte, width, height int) error {
	s.frames++
	s.width = width
	s.height = height
	s.size = len(pixels)
	return s.err
}

func xrgbFrame(w, h int) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i] = 0x20   // B
		buf[i+1] = 0x40 // G
		buf[i+2] = 0x80 // R
	}
	return buf
}

func newTestRenderer(w, h int) (*Renderer, *fakeGL, *fakeContext) {
	ctx := &fakeContext{width: w, height: h}
	f := newFakeGL()
	return New(ctx, f), f, ctx
}

func TestRendererNoFramePresentsEmpty(t *testing.T) {
	r, f, ctx := newTestRenderer(640, 480)
	require.NoError(t, r.Render())
	assert.Empty(t, f.draws)
	assert.Equal(t, 1, ctx.endFrames)
}

func TestRendererPassthrough(t *testing.T) {
	r, f, ctx := newTestRenderer(640, 480)
	require.NoError(t, r.SetFrame(xrgbFrame(320, 240), 320, 240, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())

	require.Len(t, f.draws, 1)
	assert.Zero(t, f.draws[0].framebuffer)
	assert.Equal(t, r.sourceTex, f.draws[0].sourceTex)
	assert.Equal(t, 1, ctx.endFrames)

	tex := f.textures[r.sourceTex]
	require.NotNil(t, tex)
	assert.Equal(t, int32(320), tex.width)
	assert.Equal(t, int32(240), tex.height)
}

func TestRendererUploadReusesStorage(t *testing.T) {
	r, f, _ := newTestRenderer(640, 480)

	require.NoError(t, r.SetFrame(xrgbFrame(320, 240), 320, 240, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())
	tex := f.textures[r.sourceTex]
	assert.Equal(t, 1, tex.allocs)
	assert.Equal(t, 0, tex.subs)

	// Same size: subimage upload, no reallocation.
	require.NoError(t, r.SetFrame(xrgbFrame(320, 240), 320, 240, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())
	assert.Equal(t, 1, tex.allocs)
	assert.Equal(t, 1, tex.subs)

	// New size: reallocate.
	require.NoError(t, r.SetFrame(xrgbFrame(160, 120), 160, 120, 160*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())
	assert.Equal(t, 2, tex.allocs)
	assert.Equal(t, int32(160), tex.width)
}

func TestRendererCleanFrameSkipsUpload(t *testing.T) {
	r, f, _ := newTestRenderer(640, 480)
	require.NoError(t, r.SetFrame(xrgbFrame(320, 240), 320, 240, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())
	require.NoError(t, r.Render())

	tex := f.textures[r.sourceTex]
	assert.Equal(t, 1, tex.allocs)
	assert.Equal(t, 0, tex.subs)
	// The stale texture still gets drawn.
	assert.Len(t, f.draws, 2)
}

func TestRendererChainDraw(t *testing.T) {
	r, f, _ := newTestRenderer(640, 480)
	dir := t.TempDir()
	good := writeShader(t, dir, "good.glsl", basicShader)
	require.NoError(t, r.LoadShaders([]string{good, good}))

	require.NoError(t, r.SetFrame(xrgbFrame(320, 240), 320, 240, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())

	require.Len(t, f.draws, 2)
	assert.NotZero(t, f.draws[0].framebuffer)
	assert.Zero(t, f.draws[1].framebuffer)

	r.ClearShaders()
	require.NoError(t, r.Render())
	// Back to passthrough.
	assert.Zero(t, f.draws[2].framebuffer)
}

func TestRendererFrameSink(t *testing.T) {
	r, _, _ := newTestRenderer(320, 200)
	sink := &recordingSink{}
	r.SetFrameSink(sink)

	require.NoError(t, r.SetFrame(xrgbFrame(320, 200), 320, 200, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())

	assert.Equal(t, 1, sink.frames)
	assert.Equal(t, 320, sink.width)
	assert.Equal(t, 200, sink.height)
	assert.Equal(t, 320*200*4, sink.size)

	// Sink failures are logged, never fatal.
	sink.err = errors.New("pipe closed")
	require.NoError(t, r.Render())
	assert.Equal(t, 2, sink.frames)

	r.SetFrameSink(nil)
	require.NoError(t, r.Render())
	assert.Equal(t, 2, sink.frames)
}

func TestRendererZeroSizedDrawable(t *testing.T) {
	r, f, ctx := newTestRenderer(0, 0)
	require.NoError(t, r.SetFrame(xrgbFrame(320, 240), 320, 240, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())
	assert.Empty(t, f.draws)
	// Minimized windows still pump events.
	assert.Equal(t, 1, ctx.endFrames)
}

func TestRendererShutdown(t *testing.T) {
	r, f, ctx := newTestRenderer(640, 480)
	dir := t.TempDir()
	good := writeShader(t, dir, "good.glsl", basicShader)
	require.NoError(t, r.LoadShaders([]string{good}))
	require.NoError(t, r.SetFrame(xrgbFrame(320, 240), 320, 240, 320*4, frame.FormatXRGB8888))
	require.NoError(t, r.Render())

	r.Shutdown()
	assert.True(t, ctx.shutdown)
	assert.Equal(t, 0, f.livePrograms())
	assert.Empty(t, f.liveTextures())
}
