package renderer

import (
	"github.com/richinsley/goretroshade/gfx"
)

// Attribute and uniform names are fixed by the libretro GLSL convention; a
// shader may declare any subset of them.
const (
	attrVertexCoord = "VertexCoord"
	attrColor       = "COLOR"
	attrTexCoord    = "TexCoord"

	uniformMVPMatrix      = "MVPMatrix"
	uniformFrameDirection = "FrameDirection"
	uniformFrameCount     = "FrameCount"
	uniformOutputSize     = "OutputSize"
	uniformTextureSize    = "TextureSize"
	uniformInputSize      = "InputSize"
	uniformTexture        = "Texture"
	uniformPrev0          = "Prev0"
)

// Fixed texture unit assignments.
const (
	textureUnitSource  = 0
	textureUnitHistory = 1
)

// crtDefault is one entry of the well-known CRT/monitor uniform table applied
// to every program at link time, whether or not the shader declared a pragma
// parameter for it.
type crtDefault struct {
	name  string
	value float32
}

// crtDefaults covers the uniforms the common crt-geom/crt-pi family of
// shaders expects. Values declared via #pragma parameter take precedence.
var crtDefaults = []crtDefault{
	{"CRTgamma", 2.4},
	{"monitorgamma", 2.2},
	{"d", 1.5},
	{"CURVATURE", 1.0},
	{"R", 2.0},
	{"cornersize", 0.03},
	{"cornersmooth", 1000.0},
	{"x_tilt", 0.0},
	{"y_tilt", 0.0},
	{"overscan_x", 100.0},
	{"overscan_y", 100.0},
	{"DOTMASK", 0.3},
	{"SHARPER", 1.0},
	{"scanline_weight", 0.3},
	{"lum", 0.0},
	{"interlace_detect", 1.0},
	{"SATURATION", 1.0},
	{"CONTRAST", 1.0},
	{"BRIGHTNESS", 1.0},
	{"MASK_BRIGHTNESS", 0.7},
}

// uniformLocations holds the resolved locations for one program. -1 means the
// shader does not declare that name; every setter treats absence as "skip".
type uniformLocations struct {
	mvp            int32
	frameDirection int32
	frameCount     int32
	outputSize     int32
	textureSize    int32
	inputSize      int32
	texture        int32
	prev0          int32
}

// uniformCache remembers the last value uploaded for the size uniforms and
// the MVP so unchanged frames skip the GL call. It is reset whenever the
// owning program's vertex arrays are rebuilt.
type uniformCache struct {
	mvp    [16]float32
	mvpSet bool

	outputSize     [2]float32
	outputSizeSet  bool
	textureSize    [2]float32
	textureSizeSet bool
	inputSize      [2]float32
	inputSizeSet   bool
}

var identityMVP = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Absence-tolerant setters: every lookup miss is stored as -1 and all later
// uses funnel through here, so the "missing uniform is fine" policy lives in
// one place.

func setUniform1i(g gfx.GL, location, v int32) {
	if location >= 0 {
		g.Uniform1i(location, v)
	}
}

func setUniform1f(g gfx.GL, location int32, v float32) {
	if location >= 0 {
		g.Uniform1f(location, v)
	}
}

// setMVP uploads the matrix only when it differs from the cached copy.
func (p *Program) setMVP(m *[16]float32) {
	if p.loc.mvp < 0 {
		return
	}
	if p.cache.mvpSet && p.cache.mvp == *m {
		return
	}
	p.g.UniformMatrix4fv(p.loc.mvp, m)
	p.cache.mvp = *m
	p.cache.mvpSet = true
}

func (p *Program) setOutputSize(x, y float32) {
	p.setVec2(p.loc.outputSize, &p.cache.outputSize, &p.cache.outputSizeSet, x, y)
}

func (p *Program) setTextureSize(x, y float32) {
	p.setVec2(p.loc.textureSize, &p.cache.textureSize, &p.cache.textureSizeSet, x, y)
}

func (p *Program) setInputSize(x, y float32) {
	p.setVec2(p.loc.inputSize, &p.cache.inputSize, &p.cache.inputSizeSet, x, y)
}

func (p *Program) setVec2(location int32, cached *[2]float32, present *bool, x, y float32) {
	if location < 0 {
		return
	}
	if *present && cached[0] == x && cached[1] == y {
		return
	}
	p.g.Uniform2f(location, x, y)
	cached[0] = x
	cached[1] = y
	*present = true
}
