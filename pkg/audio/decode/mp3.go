// ABOUTME: Incremental MP3 stream parser
// ABOUTME: Decodes MP3 audio to float32 frames via go-mp3
package decode

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always emits 16-bit stereo PCM.
const (
	mp3Channels     = 2
	mp3SrcFrameSize = mp3Channels * 2
)

// MP3Decoder decodes an MP3 stream whose bytes may still be arriving.
//
// The total frame count is derived from the source length at construction
// time, so a decoder built over a partially-downloaded stream under-reports
// it. That staleness is expected; see Decoder.
type MP3Decoder struct {
	dec   *mp3.Decoder
	total int64
	frame int64
}

// NewMP3 attempts to parse the MP3 header. Any parse failure is reported
// as ErrHeaderIncomplete: with more bytes the same source may become
// parsable, and the caller decides when to stop retrying.
func NewMP3(r io.ReadSeeker) (Decoder, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderIncomplete, err)
	}

	return &MP3Decoder{
		dec:   dec,
		total: dec.Length() / mp3SrcFrameSize,
	}, nil
}

// SampleRate returns the stream sample rate in Hz.
func (d *MP3Decoder) SampleRate() int { return d.dec.SampleRate() }

// Channels returns the channel count (go-mp3 always decodes to stereo).
func (d *MP3Decoder) Channels() int { return mp3Channels }

// TotalFrames returns the frame count known at construction time.
func (d *MP3Decoder) TotalFrames() int64 { return d.total }

// Position returns the current frame offset.
func (d *MP3Decoder) Position() int64 { return d.frame }

// Seek positions the decoder at the given frame offset.
func (d *MP3Decoder) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	if _, err := d.dec.Seek(frame*mp3SrcFrameSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek to frame %d: %w", frame, err)
	}
	d.frame = frame
	return nil
}

// ReadFrames decodes up to n frames as interleaved float32 bytes.
func (d *MP3Decoder) ReadFrames(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if remaining := d.total - d.frame; int64(n) > remaining {
		if remaining <= 0 {
			return nil, nil
		}
		n = int(remaining)
	}

	src := make([]byte, n*mp3SrcFrameSize)
	read := 0
	for read < len(src) {
		m, err := d.dec.Read(src[read:])
		read += m
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mp3 decode: %w", err)
		}
	}

	frames := read / mp3SrcFrameSize
	d.frame += int64(frames)
	return pcm16ToFloat32(src[:frames*mp3SrcFrameSize]), nil
}
