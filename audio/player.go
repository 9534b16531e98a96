// Package audio plays a media file's audio track while its video is being
// rendered. FFmpeg decodes to raw float32 PCM over a pipe; PortAudio owns
// the output device.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/gordonklaus/portaudio"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	playbackSampleRate = 44100
	playbackChannels   = 2
	chunkFrames        = 1024
)

// Player decodes one file's audio and plays it through the default output
// device. The decode goroutine feeds a buffered channel; the PortAudio
// callback drains it and zero-fills on underrun.
type Player struct {
	path string

	stream  *portaudio.Stream
	samples chan []float32
	pending []float32

	stop   chan struct{}
	reader *io.PipeReader
}

func NewPlayer(path string) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &Player{
		path: path,
		stop: make(chan struct{}),
	}, nil
}

// Start launches the decode pipe and opens the output stream.
func (p *Player) Start() error {
	p.samples = make(chan []float32, 16)

	pipeReader, pipeWriter := io.Pipe()
	p.reader = pipeReader

	cmd := ffmpeg.Input(p.path).
		Output("pipe:", ffmpeg.KwArgs{
			"f":      "f32le",
			"acodec": "pcm_f32le",
			"ac":     playbackChannels,
			"ar":     playbackSampleRate,
			"vn":     "",
		}).
		WithOutput(pipeWriter).
		ErrorToStdOut()

	go func() {
		if err := cmd.Run(); err != nil {
			log.Printf("audio: ffmpeg: %v", err)
		}
		pipeWriter.Close()
	}()
	go p.readLoop()

	stream, err := portaudio.OpenDefaultStream(0, playbackChannels, playbackSampleRate, chunkFrames, p.callback)
	if err != nil {
		p.reader.Close()
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		p.reader.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}
	p.stream = stream
	return nil
}

// Stop ends playback and releases the device.
func (p *Player) Stop() error {
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
	if p.reader != nil {
		p.reader.Close()
	}
	var err error
	if p.stream != nil {
		err = p.stream.Close()
		p.stream = nil
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

// readLoop converts the raw little-endian PCM stream to float32 chunks.
func (p *Player) readLoop() {
	defer close(p.samples)
	buf := make([]byte, chunkFrames*playbackChannels*4)
	for {
		n, err := io.ReadFull(p.reader, buf)
		if n == 0 {
			if err != io.EOF && err != io.ErrClosedPipe {
				log.Printf("audio: read: %v", err)
			}
			return
		}
		chunk := make([]float32, n/4)
		for i := range chunk {
			chunk[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		select {
		case p.samples <- chunk:
		case <-p.stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// callback fills the device buffer from the decoded stream. Underruns play
// silence rather than blocking the audio thread.
func (p *Player) callback(out []float32) {
	for i := range out {
		if len(p.pending) == 0 {
			select {
			case chunk, ok := <-p.samples:
				if !ok {
					for ; i < len(out); i++ {
						out[i] = 0
					}
					return
				}
				p.pending = chunk
			default:
				for ; i < len(out); i++ {
					out[i] = 0
				}
				return
			}
		}
		out[i] = p.pending[0]
		p.pending = p.pending[1:]
	}
}
