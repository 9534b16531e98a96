package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goretroshade/gfx"
	"github.com/richinsley/goretroshade/shader"
)

// Program is one linked stage of a shader chain, together with its resolved
// attribute/uniform locations, its uniform cache, its two vertex arrays and
// (when the shader samples Prev0) its previous-frame history textures.
//
// Construction is all-or-nothing: a Program that fails any step is fully torn
// down and never enters the chain.
type Program struct {
	g      gfx.GL
	handle uint32
	path   string

	attrVertex   int32
	attrColor    int32
	attrTexCoord int32

	loc   uniformLocations
	cache uniformCache

	// vaos[0] draws CPU-origin sources, vaos[1] framebuffer-origin ones.
	vaos [2]uint32

	usesHistory    bool
	history        uint32
	historyFlipped uint32
	historyW       int32
	historyH       int32
}

func newProgram(g gfx.GL, src *shader.Source, quadVBO uint32) (*Program, error) {
	handle, err := linkProgram(g, src)
	if err != nil {
		return nil, err
	}

	p := &Program{
		g:      g,
		handle: handle,
		path:   src.Path,

		attrVertex:   g.GetAttribLocation(handle, attrVertexCoord),
		attrColor:    g.GetAttribLocation(handle, attrColor),
		attrTexCoord: g.GetAttribLocation(handle, attrTexCoord),

		loc: uniformLocations{
			mvp:            g.GetUniformLocation(handle, uniformMVPMatrix),
			frameDirection: g.GetUniformLocation(handle, uniformFrameDirection),
			frameCount:     g.GetUniformLocation(handle, uniformFrameCount),
			outputSize:     g.GetUniformLocation(handle, uniformOutputSize),
			textureSize:    g.GetUniformLocation(handle, uniformTextureSize),
			inputSize:      g.GetUniformLocation(handle, uniformInputSize),
			texture:        g.GetUniformLocation(handle, uniformTexture),
			prev0:          g.GetUniformLocation(handle, uniformPrev0),
		},
	}
	p.usesHistory = p.loc.prev0 >= 0

	p.applyDefaults(src.Parameters)
	p.setupVertexArrays(quadVBO)
	return p, nil
}

// applyDefaults pushes the fixed CRT table and then the shader's own pragma
// parameter defaults (which therefore win for overlapping names), plus the
// fixed sampler unit bindings. Runs once while the program is bound.
func (p *Program) applyDefaults(params []shader.Parameter) {
	g := p.g
	g.UseProgram(p.handle)

	for _, d := range crtDefaults {
		setUniform1f(g, g.GetUniformLocation(p.handle, d.name), d.value)
	}
	for _, param := range params {
		setUniform1f(g, g.GetUniformLocation(p.handle, param.Name), param.Default)
	}

	setUniform1i(g, p.loc.texture, textureUnitSource)
	setUniform1i(g, p.loc.prev0, textureUnitHistory)
	g.UseProgram(0)
}

// setFrameUniforms uploads the per-frame uniform state, going through the
// cache for the values that rarely change.
func (p *Program) setFrameUniforms(outW, outH, texW, texH, inW, inH int32, frameCount uint32, frameDirection int32) {
	p.setMVP(&identityMVP)
	p.setOutputSize(float32(outW), float32(outH))
	p.setTextureSize(float32(texW), float32(texH))
	p.setInputSize(float32(inW), float32(inH))
	setUniform1i(p.g, p.loc.frameCount, int32(frameCount))
	setUniform1i(p.g, p.loc.frameDirection, frameDirection)
}

// ensureHistory makes the history texture pair match the current output
// size. On any size change the textures are recreated from scratch and
// cleared to transparent black, never resized in place.
func (p *Program) ensureHistory(w, h int32) error {
	if p.history != 0 && p.historyW == w && p.historyH == h {
		return nil
	}
	p.destroyHistory()

	zero := make([]byte, int(w)*int(h)*4)
	for _, tex := range []*uint32{&p.history, &p.historyFlipped} {
		t := p.g.GenTexture()
		if t == 0 {
			p.destroyHistory()
			return fmt.Errorf("failed to allocate history texture for %s", p.path)
		}
		p.g.BindTexture(gl.TEXTURE_2D, t)
		p.g.TexImage2D(gl.TEXTURE_2D, w, h, zero)
		p.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		p.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		p.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		p.g.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		*tex = t
	}
	p.g.BindTexture(gl.TEXTURE_2D, 0)
	p.historyW = w
	p.historyH = h
	return nil
}

// historyTexture returns the variant matching the given source orientation.
// The plain texture holds a framebuffer readout, so it pairs with the
// FBO-origin coordinate set; CPU-origin sources get the flipped copy.
func (p *Program) historyTexture(fboOrigin bool) uint32 {
	if fboOrigin {
		return p.history
	}
	return p.historyFlipped
}

func (p *Program) destroyHistory() {
	if p.history != 0 {
		p.g.DeleteTexture(p.history)
		p.history = 0
	}
	if p.historyFlipped != 0 {
		p.g.DeleteTexture(p.historyFlipped)
		p.historyFlipped = 0
	}
	p.historyW = 0
	p.historyH = 0
}

func (p *Program) destroy() {
	p.destroyVertexArrays()
	p.destroyHistory()
	if p.handle != 0 {
		p.g.DeleteProgram(p.handle)
		p.handle = 0
	}
}

func linkProgram(g gfx.GL, src *shader.Source) (uint32, error) {
	vertexShader, err := compileShader(g, src.Vertex, gl.VERTEX_SHADER, src.Path)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(g, src.Fragment, gl.FRAGMENT_SHADER, src.Path)
	if err != nil {
		g.DeleteShader(vertexShader)
		return 0, err
	}

	program := g.CreateProgram()
	g.AttachShader(program, vertexShader)
	g.AttachShader(program, fragmentShader)
	g.LinkProgram(program)

	g.DeleteShader(vertexShader)
	g.DeleteShader(fragmentShader)

	if g.GetProgrami(program, gl.LINK_STATUS) == gl.FALSE {
		logText := g.GetProgramInfoLog(program)
		g.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link %s: %v", src.Path, logText)
	}
	return program, nil
}

func compileShader(g gfx.GL, source string, shaderType uint32, path string) (uint32, error) {
	sh := g.CreateShader(shaderType)
	g.ShaderSource(sh, source)
	g.CompileShader(sh)

	if g.GetShaderi(sh, gl.COMPILE_STATUS) == gl.FALSE {
		logText := g.GetShaderInfoLog(sh)
		g.DeleteShader(sh)
		stage := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			stage = "fragment"
		}
		return 0, fmt.Errorf("failed to compile %s stage of %s: %v", stage, path, logText)
	}
	return sh, nil
}
