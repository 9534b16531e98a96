package renderer

import (
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// fakeGL is a recording gfx.GL implementation. Shader "compilation" keeps the
// source text; attribute and uniform lookups succeed when the name occurs in
// the program's combined source, so test shaders declare exactly what they
// use. Every draw call records the bound program, target framebuffer and the
// texture on unit 0 at that moment.
type fakeGL struct {
	nextID uint32

	shaderSource map[uint32]string
	failCompile  string // substring that makes CompileShader fail

	programs     map[uint32]*fakeProgram
	liveProgram  map[uint32]bool
	boundProgram uint32

	buffers map[uint32]bool
	vaos    map[uint32]bool

	textures    map[uint32]*fakeTexture
	activeUnit  uint32
	unitBinding map[uint32]uint32

	framebuffers     map[uint32]bool
	boundFramebuffer uint32
	fboAttachment    uint32
	fbStatus         uint32

	draws  []fakeDraw
	copies []fakeCopy
}

type fakeProgram struct {
	source    string
	locations map[string]int32
	nextLoc   int32

	uniform1f map[int32]float32
	uniform2f map[int32]int // upload count per location
}

type fakeTexture struct {
	deleted bool
	width   int32
	height  int32
	zeroed  bool // last full allocation was explicit zeroes
	allocs  int  // TexImage2D calls
	subs    int  // TexSubImage2D calls
}

type fakeDraw struct {
	program     uint32
	framebuffer uint32
	attachment  uint32 // texture attached when framebuffer != 0
	sourceTex   uint32 // unit 0 binding at draw time
}

type fakeCopy struct {
	tex    uint32
	width  int32
	height int32
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		shaderSource: map[uint32]string{},
		programs:     map[uint32]*fakeProgram{},
		liveProgram:  map[uint32]bool{},
		buffers:      map[uint32]bool{},
		vaos:         map[uint32]bool{},
		textures:     map[uint32]*fakeTexture{},
		unitBinding:  map[uint32]uint32{},
		framebuffers: map[uint32]bool{},
		fbStatus:     gl.FRAMEBUFFER_COMPLETE,
	}
}

func (f *fakeGL) id() uint32 {
	f.nextID++
	return f.nextID
}

// location resolves a name for a program, assigning a stable slot on first
// use and -1 for names absent from the source.
func (f *fakeGL) location(program uint32, name string) int32 {
	p := f.programs[program]
	if p == nil || !strings.Contains(p.source, name) {
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.nextLoc
	p.nextLoc++
	p.locations[name] = loc
	return loc
}

// uniform2fCount reports how many vec2 uploads hit the named uniform of a
// program, 0 when the program never declared it.
func (f *fakeGL) uniform2fCount(program uint32, name string) int {
	p := f.programs[program]
	if p == nil {
		return 0
	}
	loc, ok := p.locations[name]
	if !ok {
		return 0
	}
	return p.uniform2f[loc]
}

// uniform1fValue returns the last float uploaded to the named uniform.
func (f *fakeGL) uniform1fValue(program uint32, name string) (float32, bool) {
	p := f.programs[program]
	if p == nil {
		return 0, false
	}
	loc, ok := p.locations[name]
	if !ok {
		return 0, false
	}
	v, ok := p.uniform1f[loc]
	return v, ok
}

func (f *fakeGL) livePrograms() int {
	n := 0
	for _, live := range f.liveProgram {
		if live {
			n++
		}
	}
	return n
}

func (f *fakeGL) liveTextures() []uint32 {
	var out []uint32
	for id, t := range f.textures {
		if !t.deleted {
			out = append(out, id)
		}
	}
	return out
}

// Shaders and programs.

func (f *fakeGL) CreateShader(xtype uint32) uint32 {
	id := f.id()
	f.shaderSource[id] = ""
	return id
}

func (f *fakeGL) ShaderSource(shader uint32, source string) {
	f.shaderSource[shader] = source
}

func (f *fakeGL) CompileShader(shader uint32) {}

func (f *fakeGL) GetShaderi(shader, pname uint32) int32 {
	if pname == gl.COMPILE_STATUS {
		if f.failCompile != "" && strings.Contains(f.shaderSource[shader], f.failCompile) {
			return gl.FALSE
		}
		return gl.TRUE
	}
	return 0
}

func (f *fakeGL) GetShaderInfoLog(shader uint32) string { return "forced compile failure" }

func (f *fakeGL) DeleteShader(shader uint32) {}

func (f *fakeGL) CreateProgram() uint32 {
	id := f.id()
	f.programs[id] = &fakeProgram{
		locations: map[string]int32{},
		uniform1f: map[int32]float32{},
		uniform2f: map[int32]int{},
	}
	f.liveProgram[id] = true
	return id
}

func (f *fakeGL) AttachShader(program, shader uint32) {
	f.programs[program].source += f.shaderSource[shader]
}

func (f *fakeGL) LinkProgram(program uint32) {}

func (f *fakeGL) GetProgrami(program, pname uint32) int32 {
	if pname == gl.LINK_STATUS {
		return gl.TRUE
	}
	return 0
}

func (f *fakeGL) GetProgramInfoLog(program uint32) string { return "" }

func (f *fakeGL) UseProgram(program uint32) { f.boundProgram = program }

func (f *fakeGL) DeleteProgram(program uint32) { f.liveProgram[program] = false }

func (f *fakeGL) GetAttribLocation(program uint32, name string) int32 {
	return f.location(program, name)
}

func (f *fakeGL) GetUniformLocation(program uint32, name string) int32 {
	return f.location(program, name)
}

// Uniforms.

func (f *fakeGL) Uniform1i(location int32, v int32) {}

func (f *fakeGL) Uniform1f(location int32, v float32) {
	if p := f.programs[f.boundProgram]; p != nil {
		p.uniform1f[location] = v
	}
}

func (f *fakeGL) Uniform2f(location int32, x, y float32) {
	if p := f.programs[f.boundProgram]; p != nil {
		p.uniform2f[location]++
	}
}

func (f *fakeGL) UniformMatrix4fv(location int32, m *[16]float32) {}

// Buffers and vertex arrays.

func (f *fakeGL) GenBuffer() uint32 {
	id := f.id()
	f.buffers[id] = true
	return id
}

func (f *fakeGL) BindBuffer(target, buffer uint32) {}

func (f *fakeGL) BufferData(target uint32, data []float32, usage uint32) {}

func (f *fakeGL) DeleteBuffer(buffer uint32) { delete(f.buffers, buffer) }

func (f *fakeGL) GenVertexArray() uint32 {
	id := f.id()
	f.vaos[id] = true
	return id
}

func (f *fakeGL) BindVertexArray(array uint32) {}

func (f *fakeGL) DeleteVertexArray(array uint32) { delete(f.vaos, array) }

func (f *fakeGL) EnableVertexAttribArray(index uint32)  {}
func (f *fakeGL) DisableVertexAttribArray(index uint32) {}

func (f *fakeGL) VertexAttribPointer(index uint32, size, stride, offset int32) {}

func (f *fakeGL) VertexAttrib4f(index uint32, x, y, z, w float32) {}

// Textures.

func (f *fakeGL) GenTexture() uint32 {
	id := f.id()
	f.textures[id] = &fakeTexture{}
	return id
}

func (f *fakeGL) ActiveTexture(unit uint32) { f.activeUnit = unit - gl.TEXTURE0 }

func (f *fakeGL) BindTexture(target, texture uint32) { f.unitBinding[f.activeUnit] = texture }

func (f *fakeGL) TexParameteri(target, pname uint32, param int32) {}

func (f *fakeGL) TexImage2D(target uint32, width, height int32, pixels []byte) {
	t := f.textures[f.unitBinding[f.activeUnit]]
	if t == nil {
		return
	}
	t.width = width
	t.height = height
	t.allocs++
	t.zeroed = pixels != nil
	for _, b := range pixels {
		if b != 0 {
			t.zeroed = false
			break
		}
	}
}

func (f *fakeGL) TexSubImage2D(target uint32, x, y, width, height int32, pixels []byte) {
	if t := f.textures[f.unitBinding[f.activeUnit]]; t != nil {
		t.subs++
	}
}

func (f *fakeGL) CopyTexSubImage2D(target uint32, xoffset, yoffset, x, y, width, height int32) {
	f.copies = append(f.copies, fakeCopy{
		tex:    f.unitBinding[f.activeUnit],
		width:  width,
		height: height,
	})
}

func (f *fakeGL) DeleteTexture(texture uint32) {
	if t := f.textures[texture]; t != nil {
		t.deleted = true
	}
}

// Framebuffers.

func (f *fakeGL) GenFramebuffer() uint32 {
	id := f.id()
	f.framebuffers[id] = true
	return id
}

func (f *fakeGL) BindFramebuffer(target, framebuffer uint32) {
	f.boundFramebuffer = framebuffer
	if framebuffer == 0 {
		f.fboAttachment = 0
	}
}

func (f *fakeGL) FramebufferTexture2D(target, attachment, textarget, texture uint32) {
	f.fboAttachment = texture
}

func (f *fakeGL) CheckFramebufferStatus(target uint32) uint32 { return f.fbStatus }

func (f *fakeGL) DeleteFramebuffer(framebuffer uint32) { delete(f.framebuffers, framebuffer) }

// Drawing and readback.

func (f *fakeGL) Viewport(x, y, width, height int32) {}

func (f *fakeGL) ClearColor(r, g, b, a float32) {}

func (f *fakeGL) Clear(mask uint32) {}

func (f *fakeGL) DrawArrays(mode uint32, first, count int32) {
	f.draws = append(f.draws, fakeDraw{
		program:     f.boundProgram,
		framebuffer: f.boundFramebuffer,
		attachment:  f.fboAttachment,
		sourceTex:   f.unitBinding[0],
	})
}

func (f *fakeGL) ReadPixels(x, y, width, height int32, pixels []byte) {
	for i := range pixels {
		pixels[i] = 0xAB
	}
}
