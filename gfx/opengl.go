package gfx

import (
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// OpenGL forwards every GL call to the go-gl 4.1-core binding.
type OpenGL struct{}

// NewOpenGL loads the driver's function pointers and returns the production
// binding. A GL context must be current on the calling thread.
func NewOpenGL() (*OpenGL, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}
	return &OpenGL{}, nil
}

func (*OpenGL) CreateShader(xtype uint32) uint32 {
	return gl.CreateShader(xtype)
}

func (*OpenGL) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (*OpenGL) CompileShader(shader uint32) {
	gl.CompileShader(shader)
}

func (*OpenGL) GetShaderi(shader, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (*OpenGL) GetShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (*OpenGL) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (*OpenGL) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (*OpenGL) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (*OpenGL) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

func (*OpenGL) GetProgrami(program, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (*OpenGL) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (*OpenGL) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (*OpenGL) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (*OpenGL) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (*OpenGL) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (*OpenGL) Uniform1i(location, v int32) {
	gl.Uniform1i(location, v)
}

func (*OpenGL) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (*OpenGL) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (*OpenGL) UniformMatrix4fv(location int32, m *[16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (*OpenGL) GenBuffer() uint32 {
	var b uint32
	gl.GenBuffers(1, &b)
	return b
}

func (*OpenGL) BindBuffer(target, buffer uint32) {
	gl.BindBuffer(target, buffer)
}

func (*OpenGL) BufferData(target uint32, data []float32, usage uint32) {
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (*OpenGL) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (*OpenGL) GenVertexArray() uint32 {
	var a uint32
	gl.GenVertexArrays(1, &a)
	return a
}

func (*OpenGL) BindVertexArray(array uint32) {
	gl.BindVertexArray(array)
}

func (*OpenGL) DeleteVertexArray(array uint32) {
	gl.DeleteVertexArrays(1, &array)
}

func (*OpenGL) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (*OpenGL) DisableVertexAttribArray(index uint32) {
	gl.DisableVertexAttribArray(index)
}

func (*OpenGL) VertexAttribPointer(index uint32, size, stride, offset int32) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, stride, uintptr(offset))
}

func (*OpenGL) VertexAttrib4f(index uint32, x, y, z, w float32) {
	gl.VertexAttrib4f(index, x, y, z, w)
}

func (*OpenGL) GenTexture() uint32 {
	var t uint32
	gl.GenTextures(1, &t)
	return t
}

func (*OpenGL) ActiveTexture(unit uint32) {
	gl.ActiveTexture(unit)
}

func (*OpenGL) BindTexture(target, texture uint32) {
	gl.BindTexture(target, texture)
}

func (*OpenGL) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (*OpenGL) TexImage2D(target uint32, width, height int32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
}

func (*OpenGL) TexSubImage2D(target uint32, x, y, width, height int32, pixels []byte) {
	gl.TexSubImage2D(target, 0, x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (*OpenGL) CopyTexSubImage2D(target uint32, xoffset, yoffset, x, y, width, height int32) {
	gl.CopyTexSubImage2D(target, 0, xoffset, yoffset, x, y, width, height)
}

func (*OpenGL) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (*OpenGL) GenFramebuffer() uint32 {
	var f uint32
	gl.GenFramebuffers(1, &f)
	return f
}

func (*OpenGL) BindFramebuffer(target, framebuffer uint32) {
	gl.BindFramebuffer(target, framebuffer)
}

func (*OpenGL) FramebufferTexture2D(target, attachment, textarget, texture uint32) {
	gl.FramebufferTexture2D(target, attachment, textarget, texture, 0)
}

func (*OpenGL) CheckFramebufferStatus(target uint32) uint32 {
	return gl.CheckFramebufferStatus(target)
}

func (*OpenGL) DeleteFramebuffer(framebuffer uint32) {
	gl.DeleteFramebuffers(1, &framebuffer)
}

func (*OpenGL) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (*OpenGL) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (*OpenGL) Clear(mask uint32) {
	gl.Clear(mask)
}

func (*OpenGL) DrawArrays(mode uint32, first, count int32) {
	gl.DrawArrays(mode, first, count)
}

func (*OpenGL) ReadPixels(x, y, width, height int32, pixels []byte) {
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}
