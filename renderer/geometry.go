package renderer

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// One full-screen quad drawn as a 4-vertex triangle strip. Each vertex
// carries the clip-space position plus two texture coordinate sets: one for
// textures uploaded from CPU memory (row 0 at the top) and one for textures
// produced by a framebuffer pass (row 0 at the bottom). Which set feeds the
// shader's TexCoord attribute is selected per draw by the vertex array.
var quadVertices = []float32{
	// x, y, cpuU, cpuV, fboU, fboV
	-1, -1, 0, 1, 0, 0,
	1, -1, 1, 1, 1, 0,
	-1, 1, 0, 0, 0, 1,
	1, 1, 1, 0, 1, 1,
}

const (
	quadStride       = 6 * 4
	quadPosOffset    = 0
	quadCPUTexOffset = 2 * 4
	quadFBOTexOffset = 4 * 4
)

// setupVertexArrays builds the program's two vertex arrays against the shared
// quad buffer. If the driver cannot create vertex arrays both handles stay
// zero and drawing falls back to client-side attribute pointers; that is a
// degraded path, not an error.
func (p *Program) setupVertexArrays(quadVBO uint32) {
	for i := range p.vaos {
		vao := p.g.GenVertexArray()
		if vao == 0 {
			p.destroyVertexArrays()
			return
		}
		p.vaos[i] = vao
		p.g.BindVertexArray(vao)
		p.g.BindBuffer(gl.ARRAY_BUFFER, quadVBO)
		p.bindAttributes(i == 1)
	}
	p.g.BindVertexArray(0)
	p.g.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// bindAttributes wires VertexCoord and TexCoord from the currently bound quad
// buffer. COLOR is never sourced from the buffer; shaders that declare it get
// a constant white via the VertexAttrib4f fallback at draw time.
func (p *Program) bindAttributes(fboOrigin bool) {
	if p.attrVertex >= 0 {
		idx := uint32(p.attrVertex)
		p.g.EnableVertexAttribArray(idx)
		p.g.VertexAttribPointer(idx, 2, quadStride, quadPosOffset)
	}
	if p.attrTexCoord >= 0 {
		idx := uint32(p.attrTexCoord)
		offset := int32(quadCPUTexOffset)
		if fboOrigin {
			offset = quadFBOTexOffset
		}
		p.g.EnableVertexAttribArray(idx)
		p.g.VertexAttribPointer(idx, 2, quadStride, offset)
	}
}

// destroyVertexArrays tears down both vertex arrays and invalidates the
// uniform cache, forcing a full re-upload after any rebuild.
func (p *Program) destroyVertexArrays() {
	for i, vao := range p.vaos {
		if vao != 0 {
			p.g.DeleteVertexArray(vao)
			p.vaos[i] = 0
		}
	}
	p.cache = uniformCache{}
}

// drawQuad issues the full-screen strip using the vertex array matching the
// source texture's origin convention, or immediate attribute pointers when
// vertex arrays are unavailable.
func (p *Program) drawQuad(quadVBO uint32, fboOrigin bool) {
	if p.attrColor >= 0 {
		p.g.VertexAttrib4f(uint32(p.attrColor), 1, 1, 1, 1)
	}

	vao := p.vaos[0]
	if fboOrigin {
		vao = p.vaos[1]
	}
	if vao != 0 {
		p.g.BindVertexArray(vao)
		p.g.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		p.g.BindVertexArray(0)
		return
	}

	// Fallback: no vertex array support.
	p.g.BindBuffer(gl.ARRAY_BUFFER, quadVBO)
	p.bindAttributes(fboOrigin)
	p.g.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	if p.attrVertex >= 0 {
		p.g.DisableVertexAttribArray(uint32(p.attrVertex))
	}
	if p.attrTexCoord >= 0 {
		p.g.DisableVertexAttribArray(uint32(p.attrTexCoord))
	}
	p.g.BindBuffer(gl.ARRAY_BUFFER, 0)
}
