package inputs

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/goretroshade/frame"
)

// VideoInput decodes a media file with FFmpeg into raw BGRA frames delivered
// over a channel. BGRA byte order matches the renderer's XRGB8888 ingestion
// format on little-endian hosts, so frames feed the renderer unconverted.
// Decoding is throttled by channel backpressure rather than by FFmpeg.
type VideoInput struct {
	path   string
	width  int
	height int

	frames chan []byte
	stop   chan struct{}
	reader *io.PipeReader
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
}

// NewVideoInput probes the file's video stream dimensions. The file is not
// opened for decoding until Start.
func NewVideoInput(path string) (*VideoInput, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", path, err)
	}
	var probed probeResult
	if err := json.Unmarshal([]byte(raw), &probed); err != nil {
		return nil, fmt.Errorf("failed to parse probe output for %s: %w", path, err)
	}
	for _, s := range probed.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			return &VideoInput{
				path:   path,
				width:  s.Width,
				height: s.Height,
				stop:   make(chan struct{}),
			}, nil
		}
	}
	return nil, fmt.Errorf("no video stream in %s", path)
}

func (v *VideoInput) Width() int                { return v.width }
func (v *VideoInput) Height() int               { return v.height }
func (v *VideoInput) Pitch() int                { return v.width * 4 }
func (v *VideoInput) Format() frame.PixelFormat { return frame.FormatXRGB8888 }

// Start launches the FFmpeg decode process and returns the frame channel.
// The channel closes at end of stream or on decode failure.
func (v *VideoInput) Start() (<-chan []byte, error) {
	if v.frames != nil {
		return nil, fmt.Errorf("video input already started")
	}
	v.frames = make(chan []byte, 4)

	pipeReader, pipeWriter := io.Pipe()
	v.reader = pipeReader

	cmd := ffmpeg.Input(v.path).
		Output("pipe:", ffmpeg.KwArgs{
			"f":       "rawvideo",
			"pix_fmt": "bgra",
		}).
		WithOutput(pipeWriter).
		ErrorToStdOut()

	go func() {
		if err := cmd.Run(); err != nil {
			log.Printf("video input: ffmpeg: %v", err)
		}
		pipeWriter.Close()
	}()

	go v.readLoop()
	return v.frames, nil
}

// Stop tears the pipe down, which terminates the decode process.
func (v *VideoInput) Stop() {
	select {
	case <-v.stop:
	default:
		close(v.stop)
	}
	if v.reader != nil {
		v.reader.Close()
	}
}

func (v *VideoInput) readLoop() {
	defer close(v.frames)
	frameSize := v.width * v.height * 4
	for {
		buf := make([]byte, frameSize)
		if _, err := io.ReadFull(v.reader, buf); err != nil {
			if err != io.EOF && err != io.ErrClosedPipe {
				log.Printf("video input: read: %v", err)
			}
			return
		}
		select {
		case v.frames <- buf:
		case <-v.stop:
			return
		}
	}
}
