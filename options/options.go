package options

// Options carries the parsed command line configuration. Fields are pointers
// straight from flag declarations.
type Options struct {
	ShaderPaths *string // comma separated shader files, applied in order
	Input       *string // video file to play; empty selects the test pattern
	Pattern     *string // test pattern pixel format: xrgb8888 or rgb565
	Width       *int
	Height      *int
	FPS         *int
	OutputFile  *string // recording target; empty disables recording
	Codec       *string
	Audio       *bool // play the input file's audio track
	Help        *bool
}
