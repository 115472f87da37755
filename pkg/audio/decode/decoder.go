// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for incremental audio stream parsers
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrHeaderIncomplete reports that the byte source does not yet contain
// enough data to parse the container/codec header. It is recoverable:
// retry construction once more bytes are available.
var ErrHeaderIncomplete = errors.New("decode: header incomplete")

// Decoder parses a partially-available audio byte stream and produces
// decoded frames as interleaved float32 little-endian PCM.
//
// TotalFrames may be stale for sources whose length metadata was written
// incrementally: a decoder constructed over a still-growing stream can
// under-report the frame count. Callers compensate by constructing a fresh
// decoder over the grown source and comparing TotalFrames.
type Decoder interface {
	// SampleRate returns the stream sample rate in Hz.
	SampleRate() int

	// Channels returns the channel count.
	Channels() int

	// TotalFrames returns the frame count known at construction time.
	TotalFrames() int64

	// Position returns the current frame offset.
	Position() int64

	// ReadFrames decodes up to n frames. A short (or empty) result is not
	// an error; it means the source currently holds fewer decodable frames.
	ReadFrames(n int) ([]byte, error)

	// Seek positions the decoder at the given frame offset.
	Seek(frame int64) error
}

// Factory constructs a Decoder over a seekable byte source. The source is
// left positioned wherever the next ReadFrames expects it; implementations
// seek explicitly and must not assume the initial offset.
type Factory func(r io.ReadSeeker) (Decoder, error)

// New sniffs the container magic and constructs the matching decoder.
// Returns ErrHeaderIncomplete when even the magic bytes are missing.
func New(r io.ReadSeeker) (Decoder, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, ErrHeaderIncomplete
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	if bytes.Equal(magic, []byte("RIFF")) {
		return NewWAV(r)
	}
	return NewMP3(r)
}
