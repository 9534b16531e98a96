// Package encoder records rendered frames to a video file by piping raw RGBA
// into an FFmpeg process.
package encoder

import (
	"fmt"
	"io"
	"log"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Encoder consumes post-render framebuffer readouts. Rows arrive bottom-up
// straight from glReadPixels, so the FFmpeg graph carries a vflip filter.
// The process starts lazily on the first frame, which fixes the dimensions
// for the rest of the recording.
type Encoder struct {
	path  string
	fps   int
	codec string

	writer *io.PipeWriter
	done   chan error

	width  int
	height int
}

func New(path string, fps int, codec string) *Encoder {
	if codec == "" {
		codec = "libx264"
	}
	return &Encoder{
		path:  path,
		fps:   fps,
		codec: codec,
	}
}

// WriteFrame implements the renderer's frame sink.
func (e *Encoder) WriteFrame(pixels []byte, width, height int) error {
	if len(pixels) != width*height*4 {
		return fmt.Errorf("frame size %d does not match %dx%d", len(pixels), width, height)
	}
	if e.writer == nil {
		e.start(width, height)
	}
	if width != e.width || height != e.height {
		return fmt.Errorf("frame resized %dx%d -> %dx%d mid-recording", e.width, e.height, width, height)
	}
	if _, err := e.writer.Write(pixels); err != nil {
		return fmt.Errorf("failed to feed encoder: %w", err)
	}
	return nil
}

// Close flushes the pipe and waits for FFmpeg to finalize the file.
func (e *Encoder) Close() error {
	if e.writer == nil {
		return nil
	}
	e.writer.Close()
	err := <-e.done
	e.writer = nil
	if err != nil {
		return fmt.Errorf("encoder exited: %w", err)
	}
	log.Printf("encoder: wrote %s", e.path)
	return nil
}

func (e *Encoder) start(width, height int) {
	e.width = width
	e.height = height
	e.done = make(chan error, 1)

	pipeReader, pipeWriter := io.Pipe()
	e.writer = pipeWriter

	cmd := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", width, height),
		"r":       e.fps,
	}).
		Filter("vflip", ffmpeg.Args{}).
		Output(e.path, ffmpeg.KwArgs{
			"c:v":     e.codec,
			"pix_fmt": "yuv420p",
		}).
		OverWriteOutput().
		WithInput(pipeReader).
		ErrorToStdOut()

	go func() {
		err := cmd.Run()
		pipeReader.Close()
		e.done <- err
	}()
}
