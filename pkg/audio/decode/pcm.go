// ABOUTME: Raw PCM stream parser
// ABOUTME: Decodes headerless 16-bit PCM to float32 frames
package decode

import (
	"fmt"
	"io"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
)

// PCMDecoder decodes a headerless 16-bit little-endian PCM stream. The
// API's pcm_* output formats carry no container, so sample rate and
// channel count come from the caller.
type PCMDecoder struct {
	r           io.ReadSeeker
	format      audio.Format
	totalFrames int64
	frame       int64
}

// NewPCMFactory returns a Factory for raw PCM at a known rate and layout.
func NewPCMFactory(sampleRate, channels int) Factory {
	return func(r io.ReadSeeker) (Decoder, error) {
		return NewPCM(r, sampleRate, channels)
	}
}

// NewPCM constructs a raw PCM decoder. There is no header to parse, so a
// single byte of data is enough for construction to succeed.
func NewPCM(r io.ReadSeeker, sampleRate, channels int) (Decoder, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid PCM parameters: rate=%d channels=%d", sampleRate, channels)
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek to end: %w", err)
	}
	if end == 0 {
		return nil, ErrHeaderIncomplete
	}

	d := &PCMDecoder{
		r:      r,
		format: audio.Format{SampleRate: sampleRate, Channels: channels},
	}
	d.totalFrames = end / int64(d.srcFrameSize())
	return d, nil
}

func (d *PCMDecoder) srcFrameSize() int { return d.format.Channels * 2 }

// SampleRate returns the configured sample rate in Hz.
func (d *PCMDecoder) SampleRate() int { return d.format.SampleRate }

// Channels returns the configured channel count.
func (d *PCMDecoder) Channels() int { return d.format.Channels }

// TotalFrames returns the frame count known at construction time.
func (d *PCMDecoder) TotalFrames() int64 { return d.totalFrames }

// Position returns the current frame offset.
func (d *PCMDecoder) Position() int64 { return d.frame }

// Seek positions the decoder at the given frame offset.
func (d *PCMDecoder) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	d.frame = frame
	return nil
}

// ReadFrames decodes up to n frames as interleaved float32 bytes.
func (d *PCMDecoder) ReadFrames(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if remaining := d.totalFrames - d.frame; int64(n) > remaining {
		if remaining <= 0 {
			return nil, nil
		}
		n = int(remaining)
	}

	srcFrame := d.srcFrameSize()
	if _, err := d.r.Seek(d.frame*int64(srcFrame), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to frame %d: %w", d.frame, err)
	}

	src := make([]byte, n*srcFrame)
	read, err := io.ReadFull(d.r, src)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	frames := read / srcFrame
	d.frame += int64(frames)
	return pcm16ToFloat32(src[:frames*srcFrame]), nil
}
