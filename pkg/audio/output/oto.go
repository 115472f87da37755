// ABOUTME: Oto-based full-buffer playback
// ABOUTME: Plays fully-decoded float32 PCM for the non-streaming path
package output

import (
	"bytes"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
)

// BufferPlayer plays fully-decoded audio through oto. It serves the
// download-then-play path, where the whole stream is in memory before
// playback starts; streamed sessions use the pull Device instead.
type BufferPlayer struct {
	otoCtx *oto.Context
	format audio.Format
	ready  bool
}

// NewBufferPlayer creates an unopened buffer player.
func NewBufferPlayer() *BufferPlayer {
	return &BufferPlayer{}
}

// Open initializes oto with the given format.
//
// oto allows one context per process; reopening with a different format
// keeps the existing context and logs a warning, matching oto's limits.
func (p *BufferPlayer) Open(format audio.Format) error {
	if p.otoCtx != nil {
		if p.format != format {
			log.Warn("format change requested but oto does not support reinitialization",
				"have", p.format, "want", format)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	p.otoCtx = ctx
	p.format = format
	p.ready = true

	log.Debug("buffer player initialized", "rate", format.SampleRate, "channels", format.Channels)
	return nil
}

// Play writes the PCM buffer to the device and blocks until it drains.
func (p *BufferPlayer) Play(pcm []byte) error {
	if !p.ready {
		return fmt.Errorf("player not initialized")
	}

	player := p.otoCtx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()
	player.Play()

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// Close releases playback resources.
func (p *BufferPlayer) Close() error {
	if p.otoCtx != nil {
		p.otoCtx.Suspend()
		p.ready = false
	}
	return nil
}
