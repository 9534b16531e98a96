package shader

// Builtin returns the passthrough blit shader used internally by the renderer
// for empty-chain presentation and history flipping. It is written in the same
// combined-stage dialect as user shaders so it runs through the normal
// preprocessing and link path.
func Builtin() *Source {
	src := Parse(builtinBlitSource)
	src.Path = "<builtin blit>"
	return src
}

const builtinBlitSource = `#version 410

#if defined(VERTEX)
in vec4 VertexCoord;
in vec4 TexCoord;
uniform mat4 MVPMatrix;
out vec2 TEX0;
void main() {
    gl_Position = MVPMatrix * VertexCoord;
    TEX0 = TexCoord.xy;
}
#elif defined(FRAGMENT)
uniform sampler2D Texture;
in vec2 TEX0;
out vec4 FragColor;
void main() {
    FragColor = texture(Texture, TEX0);
}
#endif
`
