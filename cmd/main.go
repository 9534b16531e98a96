package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goretroshade/audio"
	"github.com/richinsley/goretroshade/encoder"
	"github.com/richinsley/goretroshade/frame"
	"github.com/richinsley/goretroshade/gfx"
	"github.com/richinsley/goretroshade/glfwcontext"
	"github.com/richinsley/goretroshade/inputs"
	"github.com/richinsley/goretroshade/options"
	"github.com/richinsley/goretroshade/renderer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := &options.Options{
		ShaderPaths: flag.String("shaders", "", "Comma separated shader files, applied in order"),
		Input:       flag.String("input", "", "Video file to play (empty: built-in test pattern)"),
		Pattern:     flag.String("pattern", "xrgb8888", "Test pattern pixel format: xrgb8888 or rgb565"),
		Width:       flag.Int("width", 1280, "Window width"),
		Height:      flag.Int("height", 720, "Window height"),
		FPS:         flag.Int("fps", 60, "Target frames per second"),
		OutputFile:  flag.String("record", "", "Record output to this file"),
		Codec:       flag.String("codec", "libx264", "Recording codec"),
		Audio:       flag.Bool("audio", false, "Play the input file's audio track"),
		Help:        flag.Bool("help", false, "Show help message"),
	}
	flag.Parse()

	if *opts.Help {
		fmt.Println("Multi-pass shader viewer/recorder")
		flag.PrintDefaults()
		return
	}

	if err := run(opts); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(opts *options.Options) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(*opts.Width, *opts.Height, "goretroshade", true)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	ctx.MakeCurrent()

	g, err := gfx.NewOpenGL()
	if err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := renderer.New(ctx, g)
	defer r.Shutdown()

	if *opts.ShaderPaths != "" {
		paths := strings.Split(*opts.ShaderPaths, ",")
		for i := range paths {
			paths[i] = strings.TrimSpace(paths[i])
		}
		if err := r.LoadShaders(paths); err != nil {
			log.Printf("continuing without shaders: %v", err)
		}
	}

	if *opts.OutputFile != "" {
		enc := encoder.New(*opts.OutputFile, *opts.FPS, *opts.Codec)
		r.SetFrameSink(enc)
		defer func() {
			if err := enc.Close(); err != nil {
				log.Printf("%v", err)
			}
		}()
	}

	direction := int32(1)
	ctx.RegisterKeyCallback(glfw.KeyR, func() {
		direction = -direction
		r.SetFrameDirection(direction)
	})
	ctx.RegisterKeyCallback(glfw.KeyC, func() {
		r.ClearShaders()
	})

	if *opts.Input != "" {
		return runVideo(r, opts)
	}
	return runPattern(r, opts)
}

// runVideo decodes the input file and feeds its frames through the chain,
// paced to the target frame rate.
func runVideo(r *renderer.Renderer, opts *options.Options) error {
	video, err := inputs.NewVideoInput(*opts.Input)
	if err != nil {
		return err
	}
	frames, err := video.Start()
	if err != nil {
		return err
	}
	defer video.Stop()

	if *opts.Audio {
		player, err := audio.NewPlayer(*opts.Input)
		if err != nil {
			return err
		}
		if err := player.Start(); err != nil {
			return err
		}
		defer player.Stop()
	}

	tick := time.NewTicker(time.Second / time.Duration(*opts.FPS))
	defer tick.Stop()

	for !r.ShouldClose() {
		pixels, ok := <-frames
		if !ok {
			break
		}
		if err := r.SetFrame(pixels, video.Width(), video.Height(), video.Pitch(), video.Format()); err != nil {
			log.Printf("dropping frame: %v", err)
		}
		if err := r.Render(); err != nil {
			log.Printf("render: %v", err)
		}
		<-tick.C
	}
	return nil
}

// runPattern renders the synthetic test pattern until the window closes.
func runPattern(r *renderer.Renderer, opts *options.Options) error {
	format := frame.FormatXRGB8888
	if *opts.Pattern == "rgb565" {
		format = frame.FormatRGB565
	}
	pattern := inputs.NewTestPattern(320, 240, format)

	tick := time.NewTicker(time.Second / time.Duration(*opts.FPS))
	defer tick.Stop()

	var frameCount uint32
	for !r.ShouldClose() {
		pixels := pattern.Next(frameCount)
		if err := r.SetFrame(pixels, pattern.Width(), pattern.Height(), pattern.Pitch(), pattern.Format()); err != nil {
			log.Printf("dropping frame: %v", err)
		}
		if err := r.Render(); err != nil {
			log.Printf("render: %v", err)
		}
		frameCount++
		<-tick.C
	}
	return nil
}
