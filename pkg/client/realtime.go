// ABOUTME: Websocket session for incremental text-to-speech input
// ABOUTME: Text fragments in, base64 audio chunks out as a ChunkStream
package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// RealtimeSession synthesizes speech from text delivered in fragments
// over a websocket. Received audio chunks come out of Next, so a
// session plugs straight into the playback pipeline as its chunk
// stream.
type RealtimeSession struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	chunks  chan []byte
	done    chan struct{}

	errMu     sync.Mutex
	readErr   error
	closeOnce sync.Once
}

type realtimeOut struct {
	Text          string    `json:"text"`
	VoiceSettings *Settings `json:"voice_settings,omitempty"`
	TryTriggerGen *bool     `json:"try_trigger_generation,omitempty"`
	XIAPIKey      string    `json:"xi_api_key,omitempty"`
}

type realtimeIn struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// OpenRealtime dials the streaming-input endpoint for a voice and sends
// the opening message carrying the API key and settings.
func (c *Client) OpenRealtime(ctx context.Context, voiceID string, opts GenerateOptions) (*RealtimeSession, error) {
	if opts.ModelID == "" {
		opts.ModelID = DefaultModelID
	}
	if opts.Settings != nil {
		if err := opts.Settings.validate(); err != nil {
			return nil, err
		}
	}

	u := wsBaseURL(c.baseURL) + "/text-to-speech/" + voiceID + "/stream-input?model_id=" + opts.ModelID
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}

	s := &RealtimeSession{
		conn:   conn,
		chunks: make(chan []byte, 16),
		done:   make(chan struct{}),
	}

	// The opening frame must carry a single space of text.
	open := realtimeOut{Text: " ", VoiceSettings: opts.Settings, XIAPIKey: c.apiKey}
	if err := s.writeJSON(open); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open realtime session: %w", err)
	}

	go s.readLoop()
	return s, nil
}

// wsBaseURL rewrites the REST base URL to its websocket scheme.
func wsBaseURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

func (s *RealtimeSession) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// SendText queues a text fragment for synthesis.
func (s *RealtimeSession) SendText(text string) error {
	if text == "" {
		return nil
	}
	return s.writeJSON(realtimeOut{Text: text})
}

// Flush asks the service to synthesize everything buffered so far.
func (s *RealtimeSession) Flush() error {
	trigger := true
	return s.writeJSON(realtimeOut{Text: " ", TryTriggerGen: &trigger})
}

// End signals that no more text is coming. The chunk stream finishes
// once the remaining audio has been received.
func (s *RealtimeSession) End() error {
	return s.writeJSON(realtimeOut{Text: ""})
}

func (s *RealtimeSession) readLoop() {
	defer close(s.chunks)
	for {
		var in realtimeIn
		if err := s.conn.ReadJSON(&in); err != nil {
			s.setErr(fmt.Errorf("realtime read: %w", err))
			return
		}
		if in.Error != "" {
			s.setErr(fmt.Errorf("realtime service: %s: %s", in.Error, in.Message))
			return
		}
		if in.Audio != "" {
			data, err := base64.StdEncoding.DecodeString(in.Audio)
			if err != nil {
				s.setErr(fmt.Errorf("decode realtime audio: %w", err))
				return
			}
			log.Debug("realtime audio chunk", "bytes", len(data))
			select {
			case s.chunks <- data:
			case <-s.done:
				return
			}
		}
		if in.IsFinal {
			return
		}
	}
}

func (s *RealtimeSession) setErr(err error) {
	s.errMu.Lock()
	if s.readErr == nil {
		s.readErr = err
	}
	s.errMu.Unlock()
}

func (s *RealtimeSession) err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.readErr
}

// Next returns the next audio chunk, blocking until one arrives. It
// returns io.EOF after the final chunk of a cleanly ended session.
func (s *RealtimeSession) Next() ([]byte, error) {
	chunk, ok := <-s.chunks
	if !ok {
		if err := s.err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return chunk, nil
}

// Close tears the connection down. A blocked Next unblocks with an
// error.
func (s *RealtimeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}
