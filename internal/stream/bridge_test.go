// ABOUTME: Tests for the decode-to-device bridge
// ABOUTME: Covers byte-exact delivery, tail padding and failure modes
package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
	"github.com/vocalis-audio/vocalis-go/pkg/audio/decode"
	"github.com/vocalis-audio/vocalis-go/pkg/audio/output"
)

// wavPayload builds a mono 16-bit PCM WAV file around the samples.
func wavPayload(samples []int16, rate int) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(data)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*2))
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

// floatWords is the expected decoded form of the samples.
func floatWords(samples []int16) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(audio.SampleFromInt16(s)))
	}
	return out
}

func chunksOf(p []byte, n int) [][]byte {
	var out [][]byte
	for len(p) > n {
		out = append(out, p[:n])
		p = p[n:]
	}
	if len(p) > 0 {
		out = append(out, p)
	}
	return out
}

func testSamples(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(i%100 + 1) // never zero, so padding is detectable
	}
	return s
}

func TestBridgeDeliversExactBytes(t *testing.T) {
	const blockFrames = 256
	samples := testSamples(1000)
	payload := wavPayload(samples, 22050)

	buf := NewChunkBuffer()
	sig := newSignals()
	sig.decoderReady.Set()
	dl := newDownloader(buf, sig, 64)
	if err := dl.run(&sliceStream{chunks: chunksOf(payload, 100)}); err != nil {
		t.Fatalf("download: %v", err)
	}

	reader := newBlockReader(buf, sig, decode.New, blockFrames)
	if err := reader.buildDecoder(); err != nil {
		t.Fatalf("buildDecoder: %v", err)
	}
	if reader.format.SampleRate != 22050 || reader.format.Channels != 1 {
		t.Fatalf("format = %+v", reader.format)
	}

	starts := 0
	br := newBridge(reader, sig, func() { starts++ })

	// Pre-roll: an empty queue before playback starts is silence, not
	// an underrun.
	blockBytes := reader.format.BlockBytes(blockFrames)
	out := make([]byte, blockBytes)
	if st := br.fillBlock(out); st != output.StatusContinue {
		t.Fatalf("pre-roll status = %v, want continue", st)
	}

	if err := br.feedLoop(); err != nil {
		t.Fatalf("feedLoop: %v", err)
	}

	var got []byte
	for {
		st := br.fillBlock(out)
		if st == output.StatusStop {
			break
		}
		if st != output.StatusContinue {
			t.Fatalf("fill status = %v", st)
		}
		got = append(got, out...)
	}

	want := floatWords(samples)
	if len(got) != 4*blockBytes {
		t.Fatalf("got %d bytes, want %d", len(got), 4*blockBytes)
	}
	if !bytes.Equal(got[:len(want)], want) {
		t.Fatal("decoded bytes do not match the source samples")
	}
	for i := len(want); i < len(got); i++ {
		if got[i] != 0 {
			t.Fatalf("tail byte %d = %d, want zero padding", i, got[i])
		}
	}
	if starts != 1 {
		t.Fatalf("start callback fired %d times, want 1", starts)
	}
}

func TestBridgeUnderrunAborts(t *testing.T) {
	const blockFrames = 8
	samples := testSamples(16)
	payload := wavPayload(samples, 8000)

	buf := NewChunkBuffer()
	sig := newSignals()
	sig.decoderReady.Set()
	buf.Append(payload)
	sig.headerReady.Set()
	sig.blockAvailable.Set()
	// downloadDone deliberately left clear: the stream is still open.

	reader := newBlockReader(buf, sig, decode.New, blockFrames)
	if err := reader.buildDecoder(); err != nil {
		t.Fatalf("buildDecoder: %v", err)
	}
	br := newBridge(reader, sig, nil)

	out := make([]byte, reader.format.BlockBytes(blockFrames))
	// Drain the two decodable blocks by hand.
	br.queue.push(make([]byte, len(out)))
	if st := br.fillBlock(out); st != output.StatusContinue {
		t.Fatalf("fill status = %v", st)
	}
	if st := br.fillBlock(out); st != output.StatusAbort {
		t.Fatalf("empty mid-download status = %v, want abort", st)
	}
	if !br.aborted.Load() {
		t.Error("aborted flag should be set")
	}
	select {
	case <-br.abortCh:
	default:
		t.Error("abort channel should be closed")
	}
}

// scriptDecoder returns pre-planned blocks, for driving the bridge into
// states a well-formed file never produces.
type scriptDecoder struct {
	rate, ch int
	total    int64
	pos      int64
	blocks   [][]byte
	i        int
}

func (d *scriptDecoder) SampleRate() int    { return d.rate }
func (d *scriptDecoder) Channels() int      { return d.ch }
func (d *scriptDecoder) TotalFrames() int64 { return d.total }
func (d *scriptDecoder) Position() int64    { return d.pos }
func (d *scriptDecoder) Seek(frame int64) error {
	d.pos = frame
	return nil
}

func (d *scriptDecoder) ReadFrames(n int) ([]byte, error) {
	if d.i >= len(d.blocks) {
		return nil, nil
	}
	b := d.blocks[d.i]
	d.i++
	d.pos += int64(len(b) / (d.ch * audio.SampleWidth))
	return b, nil
}

func TestBridgeShortBlockMidStreamIsFatal(t *testing.T) {
	const blockFrames = 8
	buf := NewChunkBuffer()
	buf.Append(make([]byte, 256))
	sig := newSignals()
	sig.headerReady.Set()
	sig.blockAvailable.Set()
	sig.downloadDone.Set()

	// Every construction yields the same frame count, so the stale
	// metadata recovery cannot explain the short read away.
	factory := func(r io.ReadSeeker) (decode.Decoder, error) {
		return &scriptDecoder{
			rate: 8000, ch: 1, total: 64,
			blocks: [][]byte{make([]byte, blockFrames*2)}, // half a block
		}, nil
	}

	reader := newBlockReader(buf, sig, factory, blockFrames)
	if err := reader.buildDecoder(); err != nil {
		t.Fatalf("buildDecoder: %v", err)
	}
	starts := 0
	br := newBridge(reader, sig, func() { starts++ })

	err := br.feedLoop()
	if !errors.Is(err, ErrPacingViolation) {
		t.Fatalf("feedLoop = %v, want ErrPacingViolation", err)
	}
	if starts != 0 {
		t.Error("start callback must not fire on a fatal feed error")
	}
}
