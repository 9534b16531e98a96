package renderer

import (
	"errors"
	"fmt"
	"log"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goretroshade/gfx"
	"github.com/richinsley/goretroshade/shader"
)

var (
	// ErrInvalidArgument reports a null source texture or non-positive
	// output dimensions passed to Render.
	ErrInvalidArgument = errors.New("invalid render argument")
	// ErrTargetSetup reports an intermediate render target that could not be
	// allocated or completed; Render degrades rather than dropping the frame.
	ErrTargetSetup = errors.New("intermediate target setup failed")
)

// Chain is an ordered sequence of shader programs applied pass by pass, with
// two ping-ponged offscreen targets for the passes before the last. It owns
// all program, geometry and target resources; destroying the chain destroys
// everything transitively.
type Chain struct {
	g        gfx.GL
	programs []*Program

	// Shared across all programs and reloads; created lazily on first load,
	// destroyed only with the chain itself.
	quadVBO uint32
	blit    *Program

	intermediate  [2]uint32
	fbo           uint32
	intermediateW int32
	intermediateH int32
}

// RenderParams describes one frame's chain invocation.
type RenderParams struct {
	// SourceTexture is the first pass's input, already uploaded.
	SourceTexture uint32
	// TextureWidth/Height is the allocated source texture size,
	// InputWidth/Height the portion holding valid video.
	TextureWidth  int32
	TextureHeight int32
	InputWidth    int32
	InputHeight   int32
	// OutputWidth/Height is the drawable size; every pass renders at this
	// resolution.
	OutputWidth  int32
	OutputHeight int32
	// SourceFBOOrigin is true when the source texture was produced by a
	// framebuffer pass rather than a CPU upload.
	SourceFBOOrigin bool

	FrameCount     uint32
	FrameDirection int32
}

func NewChain(g gfx.GL) *Chain {
	return &Chain{g: g}
}

// Len returns the number of active shader passes.
func (c *Chain) Len() int {
	return len(c.programs)
}

// Load replaces the active chain with the shaders at the given paths, in
// order. The previous chain is torn down unconditionally before any new
// shader is compiled. Loading is all-or-nothing: any failure leaves the
// chain empty.
func (c *Chain) Load(paths []string) error {
	c.Clear()
	if err := c.ensureGeometry(); err != nil {
		log.Printf("shader chain: %v", err)
		return err
	}

	for _, path := range paths {
		src, err := shader.Load(path)
		if err != nil {
			c.Clear()
			log.Printf("shader chain: %v", err)
			return err
		}
		prog, err := newProgram(c.g, src, c.quadVBO)
		if err != nil {
			c.Clear()
			log.Printf("shader chain: %v", err)
			return err
		}
		c.programs = append(c.programs, prog)
	}
	return nil
}

// Clear tears down all loaded programs and intermediate targets. Idempotent;
// the shared quad geometry and blit program survive for the next load.
func (c *Chain) Clear() {
	for _, p := range c.programs {
		p.destroy()
	}
	c.programs = nil
	c.destroyIntermediates()
}

// Destroy releases every GPU resource the chain owns. The chain must not be
// used afterwards.
func (c *Chain) Destroy() {
	c.Clear()
	if c.blit != nil {
		c.blit.destroy()
		c.blit = nil
	}
	if c.quadVBO != 0 {
		c.g.DeleteBuffer(c.quadVBO)
		c.quadVBO = 0
	}
	if c.fbo != 0 {
		c.g.DeleteFramebuffer(c.fbo)
		c.fbo = 0
	}
}

// Render runs every pass in order: passes 1..N-1 into the ping-ponged
// intermediate targets, the final pass into the window framebuffer. If an
// intermediate target cannot be prepared the current stage renders directly
// to the window, the remaining stages are cancelled and the error is
// returned as advisory; the frame is still presented.
func (c *Chain) Render(p RenderParams) error {
	if len(c.programs) == 0 {
		return nil
	}
	if p.SourceTexture == 0 {
		return fmt.Errorf("%w: null source texture", ErrInvalidArgument)
	}
	if p.OutputWidth <= 0 || p.OutputHeight <= 0 {
		return fmt.Errorf("%w: output %dx%d", ErrInvalidArgument, p.OutputWidth, p.OutputHeight)
	}

	g := c.g
	src := p.SourceTexture
	srcFBOOrigin := p.SourceFBOOrigin
	texW, texH := p.TextureWidth, p.TextureHeight
	inW, inH := p.InputWidth, p.InputHeight
	outW, outH := p.OutputWidth, p.OutputHeight

	var degraded error
	for i, prog := range c.programs {
		last := i == len(c.programs)-1
		if !last {
			if err := c.bindIntermediate(i, outW, outH); err != nil {
				log.Printf("shader chain: pass %d (%s): %v", i, prog.path, err)
				degraded = err
				last = true
			}
		}
		if last {
			g.BindFramebuffer(gl.FRAMEBUFFER, 0)
		}

		g.Viewport(0, 0, outW, outH)
		g.UseProgram(prog.handle)
		prog.setFrameUniforms(outW, outH, texW, texH, inW, inH, p.FrameCount, p.FrameDirection)

		if prog.usesHistory {
			if err := prog.ensureHistory(outW, outH); err != nil {
				log.Printf("shader chain: pass %d (%s): %v", i, prog.path, err)
			} else {
				g.ActiveTexture(gl.TEXTURE0 + textureUnitHistory)
				g.BindTexture(gl.TEXTURE_2D, prog.historyTexture(srcFBOOrigin))
			}
		}

		g.ActiveTexture(gl.TEXTURE0 + textureUnitSource)
		g.BindTexture(gl.TEXTURE_2D, src)
		prog.drawQuad(c.quadVBO, srcFBOOrigin)

		if prog.usesHistory && prog.history != 0 {
			c.captureHistory(prog, outW, outH)
			// captureHistory leaves its own framebuffer bound; rebinding is
			// the next iteration's (or the epilogue's) job.
		}

		if degraded != nil {
			break
		}
		if !last {
			src = c.intermediate[i%2]
			srcFBOOrigin = true
			texW, texH = outW, outH
			inW, inH = outW, outH
		}
	}

	g.BindFramebuffer(gl.FRAMEBUFFER, 0)
	g.BindVertexArray(0)
	g.UseProgram(0)
	return degraded
}

// Blit draws a texture to the currently bound framebuffer through the
// built-in passthrough program. Used by the owner for no-chain presentation.
func (c *Chain) Blit(tex uint32, w, h int32, fboOrigin bool) error {
	if err := c.ensureGeometry(); err != nil {
		return err
	}
	c.blitTexture(tex, w, h, fboOrigin)
	c.g.UseProgram(0)
	return nil
}

// captureHistory snapshots the just-rendered output into the program's
// history texture, then refreshes the flipped variant with a single blit.
func (c *Chain) captureHistory(prog *Program, w, h int32) {
	g := c.g
	if err := c.ensureFBO(); err != nil {
		log.Printf("shader chain: history capture for %s: %v", prog.path, err)
		return
	}

	// The draw target is still bound; copy it out. The framebuffer readout
	// is bottom-up, so the plain history texture holds FBO-origin content.
	g.ActiveTexture(gl.TEXTURE0 + textureUnitSource)
	g.BindTexture(gl.TEXTURE_2D, prog.history)
	g.CopyTexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, 0, w, h)

	// Re-render the snapshot into the flipped variant. Drawing FBO-origin
	// content with the CPU-origin coordinate set inverts it vertically.
	g.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	g.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, prog.historyFlipped)
	if g.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		log.Printf("shader chain: history flip target incomplete for %s", prog.path)
		return
	}
	c.blitTexture(prog.history, w, h, false)
}

// blitTexture draws tex over the currently bound target with the built-in
// passthrough program. fboOrigin selects the texture coordinate convention.
func (c *Chain) blitTexture(tex uint32, w, h int32, fboOrigin bool) {
	g := c.g
	g.Viewport(0, 0, w, h)
	g.UseProgram(c.blit.handle)
	c.blit.setFrameUniforms(w, h, w, h, w, h, 0, 1)
	g.ActiveTexture(gl.TEXTURE0 + textureUnitSource)
	g.BindTexture(gl.TEXTURE_2D, tex)
	c.blit.drawQuad(c.quadVBO, fboOrigin)
}

// ensureGeometry lazily creates the shared quad buffer and the built-in blit
// program. Idempotent.
func (c *Chain) ensureGeometry() error {
	if c.quadVBO == 0 {
		vbo := c.g.GenBuffer()
		if vbo == 0 {
			return fmt.Errorf("failed to allocate quad vertex buffer")
		}
		c.g.BindBuffer(gl.ARRAY_BUFFER, vbo)
		c.g.BufferData(gl.ARRAY_BUFFER, quadVertices, gl.STATIC_DRAW)
		c.g.BindBuffer(gl.ARRAY_BUFFER, 0)
		c.quadVBO = vbo
	}
	if c.blit == nil {
		blit, err := newProgram(c.g, shader.Builtin(), c.quadVBO)
		if err != nil {
			return fmt.Errorf("failed to build blit program: %w", err)
		}
		c.blit = blit
	}
	return nil
}

// bindIntermediate prepares and binds the offscreen target for a non-final
// stage, alternating between the two ping-pong textures by stage parity.
func (c *Chain) bindIntermediate(stage int, w, h int32) error {
	if err := c.ensureIntermediates(w, h); err != nil {
		return err
	}
	g := c.g
	g.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	g.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, c.intermediate[stage%2])
	if g.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		g.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("%w: framebuffer incomplete", ErrTargetSetup)
	}
	return nil
}

// ensureIntermediates sizes the two ping-pong textures to the output
// dimensions, recreating them when the output changes.
func (c *Chain) ensureIntermediates(w, h int32) error {
	if err := c.ensureFBO(); err != nil {
		return err
	}
	if c.intermediate[0] != 0 && c.intermediateW == w && c.intermediateH == h {
		return nil
	}

	for i := range c.intermediate {
		if c.intermediate[i] != 0 {
			c.g.DeleteTexture(c.intermediate[i])
			c.intermediate[i] = 0
		}
		tex := c.g.GenTexture()
		if tex == 0 {
			return fmt.Errorf("%w: cannot allocate intermediate texture", ErrTargetSetup)
		}
		c.g.BindTexture(gl.TEXTURE_2D, tex)
		c.g.TexImage2D(gl.TEXTURE_2D, w, h, nil)
		c.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		c.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		c.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		c.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		c.intermediate[i] = tex
	}
	c.g.BindTexture(gl.TEXTURE_2D, 0)
	c.intermediateW = w
	c.intermediateH = h
	return nil
}

func (c *Chain) ensureFBO() error {
	if c.fbo != 0 {
		return nil
	}
	fbo := c.g.GenFramebuffer()
	if fbo == 0 {
		return fmt.Errorf("%w: cannot allocate framebuffer", ErrTargetSetup)
	}
	c.fbo = fbo
	return nil
}

func (c *Chain) destroyIntermediates() {
	for i := range c.intermediate {
		if c.intermediate[i] != 0 {
			c.g.DeleteTexture(c.intermediate[i])
			c.intermediate[i] = 0
		}
	}
	c.intermediateW = 0
	c.intermediateH = 0
}
