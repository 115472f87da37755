// ABOUTME: Orchestrator wiring downloader, block reader, bridge and device
// ABOUTME: Owns session configuration, lifecycle state and callbacks
package stream

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
	"github.com/vocalis-audio/vocalis-go/pkg/audio/decode"
	"github.com/vocalis-audio/vocalis-go/pkg/audio/output"
)

// State tracks where a session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateDownloading
	StateStreaming
	StateDraining
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDownloading:
		return "downloading"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Config holds per-session parameters. Zero fields fall back to the
// process-wide defaults set with SetStreamDefaults.
type Config struct {
	// BlockFrames is the decoded block length handed to the device on
	// each pull.
	BlockFrames int

	// ChunkBytes is the network read granularity used by transports
	// that honor it.
	ChunkBytes int

	// Device produces audio. Nil selects the system playback device.
	Device output.Device

	// NewDecoder builds the container parser over the shared buffer.
	// Nil selects format sniffing.
	NewDecoder decode.Factory

	OnPlaybackStart func()
	OnPlaybackEnd   func()
	OnStateChange   func(State)
}

var (
	defaultsMu         sync.Mutex
	defaultBlockFrames = 2048
	defaultChunkBytes  = 4096
)

// SetStreamDefaults changes the process-wide defaults for sessions that
// leave BlockFrames or ChunkBytes unset. Non-positive values keep the
// current default.
func SetStreamDefaults(blockFrames, chunkBytes int) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if blockFrames > 0 {
		defaultBlockFrames = blockFrames
	}
	if chunkBytes > 0 {
		defaultChunkBytes = chunkBytes
	}
}

// DefaultChunkBytes returns the current process-wide chunk size, for
// transports that slice responses before a session exists.
func DefaultChunkBytes() int {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	return defaultChunkBytes
}

func (c *Config) fill() {
	defaultsMu.Lock()
	if c.BlockFrames <= 0 {
		c.BlockFrames = defaultBlockFrames
	}
	if c.ChunkBytes <= 0 {
		c.ChunkBytes = defaultChunkBytes
	}
	defaultsMu.Unlock()
	if c.Device == nil {
		c.Device = output.NewMalgo()
	}
	if c.NewDecoder == nil {
		c.NewDecoder = decode.New
	}
}

// Streamer runs one playback session: it downloads chunks into the
// shared buffer, decodes them into blocks, and drives the output
// device until the stream drains.
type Streamer struct {
	id  string
	cfg Config

	buf *ChunkBuffer
	sig *signals

	mu     sync.Mutex
	format audio.Format
}

// NewStreamer prepares a session with the given configuration.
func NewStreamer(cfg Config) *Streamer {
	cfg.fill()
	return &Streamer{
		id:  uuid.NewString(),
		cfg: cfg,
		buf: NewChunkBuffer(),
		sig: newSignals(),
	}
}

// ID returns the session identifier used in logs.
func (s *Streamer) ID() string { return s.id }

// Format returns the decoded audio format, or the zero value before
// the decoder has parsed the stream header.
func (s *Streamer) Format() audio.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

func (s *Streamer) setState(st State) {
	log.Debug("session state", "session", s.id, "state", st)
	if s.cfg.OnStateChange != nil {
		s.cfg.OnStateChange(st)
	}
}

// Stream plays the chunk stream to completion. It blocks until the
// device has drained or a fatal error ends the session. The chunk
// stream is consumed concurrently; errors from it surface here.
func (s *Streamer) Stream(cs ChunkStream) error {
	s.buf.Reset()
	s.sig.reset()
	s.setState(StateDownloading)

	dl := newDownloader(s.buf, s.sig, s.cfg.BlockFrames)
	dlErr := make(chan error, 1)
	go func() {
		dlErr <- dl.run(cs)
	}()

	reader := newBlockReader(s.buf, s.sig, s.cfg.NewDecoder, s.cfg.BlockFrames)
	if err := reader.buildDecoder(); err != nil {
		<-dlErr
		return fmt.Errorf("session %s: %w", s.id, err)
	}
	dl.setThreshold(reader.format.BlockBytes(s.cfg.BlockFrames))
	s.mu.Lock()
	s.format = reader.format
	s.mu.Unlock()

	br := newBridge(reader, s.sig, s.cfg.OnPlaybackStart)

	device := s.cfg.Device
	err := device.Open(reader.format.SampleRate, reader.format.Channels, s.cfg.BlockFrames, br.fillBlock)
	if err != nil {
		<-dlErr
		return fmt.Errorf("session %s: open device: %w", s.id, err)
	}
	defer device.Close()

	s.setState(StateStreaming)
	log.Info("streaming",
		"session", s.id,
		"sampleRate", reader.format.SampleRate,
		"channels", reader.format.Channels)

	if err := br.feedLoop(); err != nil {
		if errors.Is(err, ErrPlaybackAborted) {
			s.finish()
		}
		return fmt.Errorf("session %s: %w", s.id, err)
	}

	s.setState(StateDraining)
	s.drain(device)
	s.finish()

	if err := <-dlErr; err != nil {
		return fmt.Errorf("session %s: %w", s.id, err)
	}
	return nil
}

// drain waits for the device to play out its queued blocks. Device
// completion is translated into the playback-finished latch so the
// clean path and the abort path end the session on the same signal.
func (s *Streamer) drain(device output.Device) {
	go func() {
		<-device.Finished()
		s.sig.playbackFinished.Set()
	}()
	s.sig.playbackFinished.Wait()
}

func (s *Streamer) finish() {
	s.sig.playbackFinished.Set()
	s.setState(StateFinished)
	if s.cfg.OnPlaybackEnd != nil {
		s.cfg.OnPlaybackEnd()
	}
}
