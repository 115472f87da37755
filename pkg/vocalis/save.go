// ABOUTME: Persists synthesized audio to disk
// ABOUTME: Raw MP3 pass-through or decoded PCM re-encoded as WAV
package vocalis

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
)

// SaveAudio writes synthesized audio bytes to path as-is. The API
// returns complete container files, so no transcoding is needed.
func SaveAudio(data []byte, path string) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save audio: %w", err)
	}
	return nil
}

// SaveWAV re-encodes decoded audio as a 16-bit PCM WAV file. The input
// is interleaved float32, as produced by the decode package.
func SaveWAV(format audio.Format, pcm []byte, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save wav: %w", err)
	}
	defer f.Close()
	if err := writeWAV(f, format, pcm); err != nil {
		return fmt.Errorf("save wav: %w", err)
	}
	return nil
}

func writeWAV(w io.Writer, format audio.Format, pcm []byte) error {
	frames := len(pcm) / format.FrameSize()
	samples := frames * format.Channels
	dataSize := samples * 2

	if err := writeWAVHeader(w, dataSize, format.SampleRate, format.Channels); err != nil {
		return err
	}

	out := make([]byte, dataSize)
	for i := 0; i < samples; i++ {
		bits := binary.LittleEndian.Uint32(pcm[i*4:])
		sample := audio.SampleToInt16(math.Float32frombits(bits))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}
	_, err := w.Write(out)
	return err
}

func writeWAVHeader(w io.Writer, dataSize, sampleRate, channels int) error {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataSize)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVE")); err != nil {
		return err
	}
	if _, err := w.Write([]byte("fmt ")); err != nil {
		return err
	}
	for _, v := range []any{
		uint32(16),
		uint16(1),
		uint16(channels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(bitsPerSample),
	} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint32(dataSize))
}
