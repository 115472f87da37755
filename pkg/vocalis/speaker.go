// ABOUTME: High-level speech API over one voice
// ABOUTME: Streamed playback, download-then-play, previews and saving
package vocalis

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vocalis-audio/vocalis-go/internal/stream"
	"github.com/vocalis-audio/vocalis-go/pkg/audio"
	"github.com/vocalis-audio/vocalis-go/pkg/audio/decode"
	"github.com/vocalis-audio/vocalis-go/pkg/audio/output"
	"github.com/vocalis-audio/vocalis-go/pkg/client"
)

// Config tunes a Speaker. Zero fields fall back to process-wide
// defaults.
type Config struct {
	// BlockFrames and ChunkBytes tune the streaming pipeline.
	BlockFrames int
	ChunkBytes  int

	// Device overrides the playback device for streamed sessions.
	Device output.Device

	OnPlaybackStart func()
	OnPlaybackEnd   func()
}

// Speaker speaks text with one voice. It is the package's main entry
// point; construct one per voice you want to use.
type Speaker struct {
	voice *client.Voice
	cfg   Config
}

// NewSpeaker wraps a voice with playback configuration.
func NewSpeaker(v *client.Voice, cfg Config) *Speaker {
	return &Speaker{voice: v, cfg: cfg}
}

// Voice returns the underlying API voice.
func (s *Speaker) Voice() *client.Voice { return s.voice }

func (s *Speaker) streamConfig() stream.Config {
	return stream.Config{
		BlockFrames:     s.cfg.BlockFrames,
		ChunkBytes:      s.cfg.ChunkBytes,
		Device:          s.cfg.Device,
		OnPlaybackStart: s.cfg.OnPlaybackStart,
		OnPlaybackEnd:   s.cfg.OnPlaybackEnd,
	}
}

// GenerateAndStream synthesizes the text and plays it while it
// downloads. It blocks until playback drains; playback typically
// begins well before the download completes.
func (s *Speaker) GenerateAndStream(ctx context.Context, text string, opts client.GenerateOptions) error {
	cs, err := s.voice.Stream(ctx, text, opts)
	if err != nil {
		return err
	}
	defer cs.Close()

	return stream.NewStreamer(s.streamConfig()).Stream(cs)
}

// GenerateAndStreamBackground is GenerateAndStream on its own
// goroutine. The returned channel delivers the session's outcome.
func (s *Speaker) GenerateAndStreamBackground(ctx context.Context, text string, opts client.GenerateOptions) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.GenerateAndStream(ctx, text, opts)
	}()
	return done
}

// StreamFrom plays an already-open chunk stream, such as a realtime
// session.
func (s *Speaker) StreamFrom(cs stream.ChunkStream) error {
	return stream.NewStreamer(s.streamConfig()).Stream(cs)
}

// GenerateAndPlay downloads the whole synthesis result, then plays it.
// Slower to first sound than GenerateAndStream, but the audio bytes are
// returned for reuse.
func (s *Speaker) GenerateAndPlay(ctx context.Context, text string, opts client.GenerateOptions) ([]byte, error) {
	data, err := s.voice.Generate(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	if err := s.playBytes(data); err != nil {
		return data, err
	}
	return data, nil
}

// PlayPreview downloads and plays the voice's preview sample.
func (s *Speaker) PlayPreview(ctx context.Context) error {
	data, err := s.voice.PreviewAudio(ctx)
	if err != nil {
		return err
	}
	return s.playBytes(data)
}

// playBytes decodes a complete audio file and plays it in one shot.
func (s *Speaker) playBytes(data []byte) error {
	format, pcm, err := decodeAll(data)
	if err != nil {
		return err
	}
	if s.cfg.OnPlaybackStart != nil {
		s.cfg.OnPlaybackStart()
	}
	defer func() {
		if s.cfg.OnPlaybackEnd != nil {
			s.cfg.OnPlaybackEnd()
		}
	}()

	player := output.NewBufferPlayer()
	if err := player.Open(format); err != nil {
		return err
	}
	defer player.Close()
	log.Debug("full-buffer playback",
		"bytes", len(pcm),
		"sampleRate", format.SampleRate,
		"channels", format.Channels)
	return player.Play(pcm)
}

// decodeAll decodes a complete audio file to interleaved float32.
func decodeAll(data []byte) (audio.Format, []byte, error) {
	dec, err := decode.New(bytes.NewReader(data))
	if err != nil {
		return audio.Format{}, nil, fmt.Errorf("decode audio: %w", err)
	}
	format := audio.Format{SampleRate: dec.SampleRate(), Channels: dec.Channels()}

	var pcm []byte
	for {
		frames, err := dec.ReadFrames(4096)
		if err != nil {
			return format, nil, fmt.Errorf("decode audio: %w", err)
		}
		if len(frames) == 0 {
			return format, pcm, nil
		}
		pcm = append(pcm, frames...)
	}
}
