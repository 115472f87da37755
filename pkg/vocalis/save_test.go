// ABOUTME: Tests for audio persistence helpers
// ABOUTME: WAV re-encode round-trips through the decode package
package vocalis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
)

func TestSaveAudioWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mp3")
	if err := SaveAudio([]byte("mp3 bytes"), path); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "mp3 bytes" {
		t.Errorf("file contents = %q", data)
	}
}

func TestSaveWAVRoundTrip(t *testing.T) {
	samples := testSamples(200)
	format, pcm, err := decodeAll(wavFile(samples, 16000))
	if err != nil {
		t.Fatalf("decodeAll: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := SaveWAV(format, pcm, path); err != nil {
		t.Fatalf("SaveWAV: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	format2, pcm2, err := decodeAll(written)
	if err != nil {
		t.Fatalf("decode written file: %v", err)
	}
	if format2 != format {
		t.Fatalf("format = %+v, want %+v", format2, format)
	}
	if len(pcm2) != len(pcm) {
		t.Fatalf("decoded %d bytes, want %d", len(pcm2), len(pcm))
	}
	for i := range pcm {
		if pcm[i] != pcm2[i] {
			t.Fatalf("byte %d differs after round trip", i)
		}
	}
}
