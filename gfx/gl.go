// Package gfx abstracts the slice of OpenGL the shader pipeline issues, so
// the renderer can be exercised against a recording implementation in tests
// while production code forwards to the real driver.
package gfx

// GL is the GPU binding layer. Arguments use raw GL enum values (the
// constants from github.com/go-gl/gl/v4.1-core/gl); object names are the
// usual uint32 handles with 0 meaning "no object". All calls must be issued
// from the thread owning the GL context.
type GL interface {
	// Shaders and programs.
	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderi(shader, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgrami(program, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32

	// Uniforms.
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	UniformMatrix4fv(location int32, m *[16]float32)

	// Buffers and vertex arrays.
	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []float32, usage uint32)
	DeleteBuffer(buffer uint32)
	GenVertexArray() uint32
	BindVertexArray(array uint32)
	DeleteVertexArray(array uint32)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	// VertexAttribPointer wires float attributes from the bound array buffer.
	// stride and offset are in bytes.
	VertexAttribPointer(index uint32, size, stride, offset int32)
	VertexAttrib4f(index uint32, x, y, z, w float32)

	// Textures. All pipeline textures are RGBA8; TexImage2D allocates (or
	// reallocates) storage, with nil pixels for an uninitialized texture.
	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, width, height int32, pixels []byte)
	TexSubImage2D(target uint32, x, y, width, height int32, pixels []byte)
	CopyTexSubImage2D(target uint32, xoffset, yoffset, x, y, width, height int32)
	DeleteTexture(texture uint32)

	// Framebuffers.
	GenFramebuffer() uint32
	BindFramebuffer(target, framebuffer uint32)
	FramebufferTexture2D(target, attachment, textarget, texture uint32)
	CheckFramebufferStatus(target uint32) uint32
	DeleteFramebuffer(framebuffer uint32)

	// Drawing and readback.
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	DrawArrays(mode uint32, first, count int32)
	ReadPixels(x, y, width, height int32, pixels []byte)
}
