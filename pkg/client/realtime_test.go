// ABOUTME: Tests for the websocket streaming-input session
// ABOUTME: Uses an in-process stub service speaking the same framing
package client

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
)

// stubRealtime upgrades the connection and answers every non-empty text
// fragment with one fake audio chunk, then a final frame on empty text.
func stubRealtime(t *testing.T) *Client {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var open realtimeOut
		if err := conn.ReadJSON(&open); err != nil {
			t.Errorf("read open frame: %v", err)
			return
		}
		if open.Text != " " {
			t.Errorf("open frame text = %q, want a single space", open.Text)
		}
		if open.XIAPIKey != "test-key" {
			t.Errorf("open frame key = %q", open.XIAPIKey)
		}

		for {
			var msg realtimeOut
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Text == "" {
				conn.WriteJSON(realtimeIn{IsFinal: true})
				return
			}
			if msg.TryTriggerGen != nil {
				continue
			}
			audio := base64.StdEncoding.EncodeToString([]byte("pcm:" + msg.Text))
			conn.WriteJSON(realtimeIn{Audio: audio})
		}
	}))
	t.Cleanup(srv.Close)
	return New("test-key", WithBaseURL(srv.URL))
}

func TestRealtimeSessionRoundTrip(t *testing.T) {
	c := stubRealtime(t)

	s, err := c.OpenRealtime(context.Background(), "v1", GenerateOptions{})
	if err != nil {
		t.Fatalf("OpenRealtime: %v", err)
	}
	defer s.Close()

	if err := s.SendText("hello "); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if err := s.SendText("world"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	var got []byte
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, chunk...)
	}
	if string(got) != "pcm:hello pcm:world" {
		t.Fatalf("received %q", got)
	}
}

func TestRealtimeFlushIsIgnoredByAudio(t *testing.T) {
	c := stubRealtime(t)

	s, err := c.OpenRealtime(context.Background(), "v1", GenerateOptions{})
	if err != nil {
		t.Fatalf("OpenRealtime: %v", err)
	}
	defer s.Close()

	if err := s.SendText("x"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	var got []byte
	for {
		chunk, err := s.Next()
		if err != nil {
			break
		}
		got = append(got, chunk...)
	}
	if string(got) != "pcm:x" {
		t.Fatalf("received %q", got)
	}
}

func TestWSBaseURL(t *testing.T) {
	if got := wsBaseURL("https://api.example.com/v1"); got != "wss://api.example.com/v1" {
		t.Errorf("https rewrite = %q", got)
	}
	if got := wsBaseURL("http://127.0.0.1:8080"); got != "ws://127.0.0.1:8080" {
		t.Errorf("http rewrite = %q", got)
	}
}
