// Package renderer drives the multi-pass shader pipeline: it owns the source
// texture fed from CPU frames, the shader chain, and the per-frame render
// loop against a window context.
package renderer

import (
	"fmt"
	"log"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goretroshade/frame"
	"github.com/richinsley/goretroshade/gfx"
	"github.com/richinsley/goretroshade/graphics"
)

// FrameSink receives the rendered window contents after each frame, bottom-up
// RGBA rows as read back from the framebuffer.
type FrameSink interface {
	WriteFrame(pixels []byte, width, height int) error
}

// Renderer ties a frame staging buffer, a source texture and a shader chain
// to a window context. Not safe for concurrent use; all methods must run on
// the thread owning the GL context.
type Renderer struct {
	ctx graphics.Context
	g   gfx.GL

	chain *Chain
	frame frame.Buffer

	sourceTex uint32
	texW      int32
	texH      int32

	frameDirection int32
	frameCount     uint32

	sink     FrameSink
	readback []byte
}

func New(ctx graphics.Context, g gfx.GL) *Renderer {
	return &Renderer{
		ctx:            ctx,
		g:              g,
		chain:          NewChain(g),
		frameDirection: 1,
	}
}

// LoadShaders replaces the active chain; see Chain.Load.
func (r *Renderer) LoadShaders(paths []string) error {
	return r.chain.Load(paths)
}

// ClearShaders drops the active chain; frames pass through untouched.
func (r *Renderer) ClearShaders() {
	r.chain.Clear()
}

// Chain exposes the underlying shader chain, mainly for inspection.
func (r *Renderer) Chain() *Chain {
	return r.chain
}

// SetFrame stages one video frame for the next Render. See frame.Buffer.Set
// for validation rules; a rejected frame leaves the previous one staged.
func (r *Renderer) SetFrame(data []byte, width, height, pitch int, format frame.PixelFormat) error {
	return r.frame.Set(data, width, height, pitch, format)
}

// SetFrameDirection sets the playback direction uniform, 1 for forward and
// -1 for rewind.
func (r *Renderer) SetFrameDirection(d int32) {
	if d < 0 {
		r.frameDirection = -1
	} else {
		r.frameDirection = 1
	}
}

// SetFrameSink registers a destination for post-render framebuffer readback,
// or removes it when nil.
func (r *Renderer) SetFrameSink(sink FrameSink) {
	r.sink = sink
}

// Render draws the currently staged frame through the shader chain (or
// straight to the window when no chain is loaded) and presents it. Chain
// degradation is advisory: the error is returned but the frame was shown.
func (r *Renderer) Render() error {
	outW, outH := r.ctx.GetFramebufferSize()
	if outW <= 0 || outH <= 0 {
		r.ctx.EndFrame()
		return nil
	}

	r.uploadFrame()

	g := r.g
	g.BindFramebuffer(gl.FRAMEBUFFER, 0)
	g.Viewport(0, 0, int32(outW), int32(outH))
	g.ClearColor(0, 0, 0, 1)
	g.Clear(gl.COLOR_BUFFER_BIT)

	var renderErr error
	if r.sourceTex != 0 {
		if r.chain.Len() > 0 {
			renderErr = r.chain.Render(RenderParams{
				SourceTexture:  r.sourceTex,
				TextureWidth:   r.texW,
				TextureHeight:  r.texH,
				InputWidth:     int32(r.frame.Width()),
				InputHeight:    int32(r.frame.Height()),
				OutputWidth:    int32(outW),
				OutputHeight:   int32(outH),
				FrameCount:     r.frameCount,
				FrameDirection: r.frameDirection,
			})
		} else {
			renderErr = r.chain.Blit(r.sourceTex, int32(outW), int32(outH), false)
		}
	}
	r.frameCount++

	if r.sink != nil {
		if err := r.readbackFrame(outW, outH); err != nil {
			log.Printf("renderer: frame sink: %v", err)
		}
	}

	r.ctx.EndFrame()
	return renderErr
}

// ShouldClose reports whether the window has been asked to close.
func (r *Renderer) ShouldClose() bool {
	return r.ctx.ShouldClose()
}

// Shutdown releases all GPU resources and the window context.
func (r *Renderer) Shutdown() {
	r.chain.Destroy()
	if r.sourceTex != 0 {
		r.g.DeleteTexture(r.sourceTex)
		r.sourceTex = 0
	}
	r.ctx.Shutdown()
}

// uploadFrame pushes the staged frame into the source texture when dirty,
// reallocating texture storage only on size change.
func (r *Renderer) uploadFrame() {
	if !r.frame.Dirty() {
		return
	}
	w := int32(r.frame.Width())
	h := int32(r.frame.Height())

	g := r.g
	if r.sourceTex == 0 {
		r.sourceTex = g.GenTexture()
		if r.sourceTex == 0 {
			log.Printf("renderer: cannot allocate source texture")
			return
		}
		g.BindTexture(gl.TEXTURE_2D, r.sourceTex)
		g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	} else {
		g.BindTexture(gl.TEXTURE_2D, r.sourceTex)
	}

	if w != r.texW || h != r.texH {
		g.TexImage2D(gl.TEXTURE_2D, w, h, r.frame.Pixels())
		r.texW = w
		r.texH = h
	} else {
		g.TexSubImage2D(gl.TEXTURE_2D, 0, 0, w, h, r.frame.Pixels())
	}
	g.BindTexture(gl.TEXTURE_2D, 0)
	r.frame.MarkClean()
}

func (r *Renderer) readbackFrame(w, h int) error {
	need := w * h * 4
	if need <= 0 {
		return nil
	}
	if cap(r.readback) < need {
		r.readback = make([]byte, need)
	}
	r.readback = r.readback[:need]
	r.g.ReadPixels(0, 0, int32(w), int32(h), r.readback)
	if err := r.sink.WriteFrame(r.readback, w, h); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
