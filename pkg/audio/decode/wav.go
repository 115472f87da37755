// ABOUTME: Incremental WAV (RIFF) stream parser
// ABOUTME: Decodes 16-bit PCM and 32-bit float WAV to float32 frames
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// WAVDecoder decodes a RIFF/WAVE stream whose bytes may still be arriving.
type WAVDecoder struct {
	r           io.ReadSeeker
	format      audio.Format
	bits        int
	floatPCM    bool
	dataStart   int64
	totalFrames int64
	frame       int64
}

// NewWAV parses the RIFF header and fmt/data chunks. Returns
// ErrHeaderIncomplete when the source ends before the data chunk begins.
func NewWAV(r io.ReadSeeker) (Decoder, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, ErrHeaderIncomplete
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	d := &WAVDecoder{r: r}

	// Walk chunks until the data chunk. Incremental streams may truncate
	// anywhere in here; that is the recoverable header-incomplete case.
	var dataSize uint32
	offset := int64(12)
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, ErrHeaderIncomplete
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])
		offset += 8

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too small: %d bytes", size)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, ErrHeaderIncomplete
			}
			if err := d.parseFmt(body); err != nil {
				return nil, err
			}
			offset += int64(size)
		case "data":
			if d.format.Channels == 0 {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			d.dataStart = offset
			dataSize = size
			d.computeTotalFrames(dataSize)
			return d, nil
		default:
			// Skip unknown chunks (LIST, fact, ...).
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return nil, ErrHeaderIncomplete
			}
			offset += int64(size)
		}
	}
}

func (d *WAVDecoder) parseFmt(body []byte) error {
	fmtTag := binary.LittleEndian.Uint16(body[0:2])
	channels := int(binary.LittleEndian.Uint16(body[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(body[4:8]))
	bits := int(binary.LittleEndian.Uint16(body[14:16]))

	switch {
	case fmtTag == wavFormatPCM && bits == 16:
		d.floatPCM = false
	case fmtTag == wavFormatFloat && bits == 32:
		d.floatPCM = true
	default:
		return fmt.Errorf("unsupported WAV encoding: format=%d bits=%d", fmtTag, bits)
	}
	if channels == 0 || sampleRate == 0 {
		return fmt.Errorf("invalid WAV fmt chunk: channels=%d rate=%d", channels, sampleRate)
	}

	d.bits = bits
	d.format = audio.Format{SampleRate: sampleRate, Channels: channels}
	return nil
}

// computeTotalFrames derives the frame count from the header's data size,
// clamped to the bytes actually present. Streamed writers leave the size
// field zero (or all-ones) until finalized; fall back to the real length.
func (d *WAVDecoder) computeTotalFrames(dataSize uint32) {
	end, err := d.r.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	avail := end - d.dataStart
	if avail < 0 {
		avail = 0
	}

	declared := int64(dataSize)
	if dataSize == 0 || dataSize == math.MaxUint32 {
		declared = avail
	}
	if declared > avail {
		declared = avail
	}
	d.totalFrames = declared / int64(d.srcFrameSize())
}

// srcFrameSize is the byte size of one frame in the source encoding.
func (d *WAVDecoder) srcFrameSize() int {
	return d.format.Channels * d.bits / 8
}

// SampleRate returns the stream sample rate in Hz.
func (d *WAVDecoder) SampleRate() int { return d.format.SampleRate }

// Channels returns the channel count.
func (d *WAVDecoder) Channels() int { return d.format.Channels }

// TotalFrames returns the frame count known at construction time.
func (d *WAVDecoder) TotalFrames() int64 { return d.totalFrames }

// Position returns the current frame offset.
func (d *WAVDecoder) Position() int64 { return d.frame }

// Seek positions the decoder at the given frame offset.
func (d *WAVDecoder) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	d.frame = frame
	return nil
}

// ReadFrames decodes up to n frames as interleaved float32 bytes. The
// result is short when the known frame count or the source runs out.
func (d *WAVDecoder) ReadFrames(n int) ([]byte, error) {
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
	if _, err := d.r.Seek(d.dataStart+d.frame*int64(srcFrame), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to frame %d: %w", d.frame, err)
	}

	src := make([]byte, n*srcFrame)
	read, err := io.ReadFull(d.r, src)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	frames := read / srcFrame
	d.frame += int64(frames)

	if d.floatPCM {
		return src[:frames*srcFrame], nil
	}
	return pcm16ToFloat32(src[:frames*srcFrame]), nil
}

// pcm16ToFloat32 converts interleaved 16-bit PCM bytes to float32 bytes.
func pcm16ToFloat32(src []byte) []byte {
	samples := len(src) / 2
	out := make([]byte, samples*audio.SampleWidth)
	for i := 0; i < samples; i++ {
		s := int16(binary.LittleEndian.Uint16(src[i*2:]))
		f := audio.SampleFromInt16(s)
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}
