package graphics

// Context defines the interface for an OpenGL context.
// The renderer never creates one; the caller owns it and guarantees it is
// current on the rendering thread.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the back buffer and pumps window events.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}
