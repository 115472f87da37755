// ABOUTME: Incremental block reader over the shared buffer
// ABOUTME: Handles header handshake and stale-length recovery mid-stream
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vocalis-audio/vocalis-go/pkg/audio"
	"github.com/vocalis-audio/vocalis-go/pkg/audio/decode"
)

// blockReader owns the decoder built over the shared buffer and yields
// fixed-size decoded blocks from it.
type blockReader struct {
	buf     *ChunkBuffer
	sig     *signals
	factory decode.Factory

	blockFrames int
	dec         decode.Decoder
	format      audio.Format
}

func newBlockReader(buf *ChunkBuffer, sig *signals, factory decode.Factory, blockFrames int) *blockReader {
	return &blockReader{
		buf:         buf,
		sig:         sig,
		factory:     factory,
		blockFrames: blockFrames,
	}
}

// buildDecoder constructs the decoder once enough header bytes are
// buffered, handshaking with the downloader: each failed attempt clears
// headerReady (asking for more bytes) and sets decoderReady so the
// downloader can proceed. Gives up if the download ends and the header
// still does not parse.
func (b *blockReader) buildDecoder() error {
	for attempt := 1; ; attempt++ {
		select {
		case <-b.sig.headerReady.Chan():
		case <-b.sig.downloadDone.Chan():
			if !b.sig.headerReady.IsSet() {
				b.sig.decoderReady.Set()
				return errors.New("stream ended before any audio data arrived")
			}
		}

		if _, err := b.buf.Seek(0, io.SeekStart); err != nil {
			b.sig.decoderReady.Set()
			return fmt.Errorf("rewind for header parse: %w", err)
		}

		dec, err := b.factory(b.buf)
		if err == nil {
			b.dec = dec
			b.format = audio.Format{SampleRate: dec.SampleRate(), Channels: dec.Channels()}
			log.Debug("decoder ready",
				"attempt", attempt,
				"sampleRate", b.format.SampleRate,
				"channels", b.format.Channels,
				"totalFrames", dec.TotalFrames())
			b.sig.decoderReady.Set()
			return nil
		}

		if errors.Is(err, decode.ErrHeaderIncomplete) {
			if b.sig.downloadDone.IsSet() {
				b.sig.decoderReady.Set()
				return fmt.Errorf("header unparsable after full download: %w", err)
			}
			log.Debug("header incomplete, requesting more data", "attempt", attempt)
			b.sig.headerReady.Clear()
			b.sig.decoderReady.Set()
			continue
		}

		b.sig.decoderReady.Set()
		return fmt.Errorf("decoder construction: %w", err)
	}
}

// readBlock decodes up to blockFrames frames. A short result can mean
// the decoder's frame count went stale while the buffer grew
// underneath it; in that case a fresh decoder is built over the grown
// buffer, seeked back to the old position, and the read retried once.
// While the download is still running a short block is never returned:
// the decoder rewinds and reports nothing so the frames are re-read
// whole once more bytes arrive. A short block can therefore only
// escape after downloadDone.
func (b *blockReader) readBlock() ([]byte, error) {
	before := b.dec.Position()
	data, err := b.dec.ReadFrames(b.blockFrames)
	if err != nil {
		return nil, fmt.Errorf("decode at frame %d: %w", before, err)
	}

	want := b.format.BlockBytes(b.blockFrames)
	if len(data) >= want {
		return data, nil
	}

	if b.buf.Remaining() > 0 && b.refresh(before) {
		data, err = b.dec.ReadFrames(b.blockFrames)
		if err != nil {
			return nil, fmt.Errorf("decode at frame %d after refresh: %w", before, err)
		}
		if len(data) >= want {
			return data, nil
		}
	}

	if !b.sig.downloadDone.IsSet() {
		// Caught up with the download mid-block; rewind so the same
		// frames are re-read whole later.
		if err := b.dec.Seek(before); err != nil {
			return nil, fmt.Errorf("rewind to frame %d: %w", before, err)
		}
		return nil, nil
	}
	return data, nil
}

// refresh rebuilds the decoder over the grown buffer. Returns true when
// the fresh instance sees more frames than the stale one and has been
// positioned where the old one left off.
func (b *blockReader) refresh(frame int64) bool {
	if _, err := b.buf.Seek(0, io.SeekStart); err != nil {
		log.Error("rewind for decoder refresh failed", "error", err)
		return false
	}
	fresh, err := b.factory(b.buf)
	if err != nil {
		log.Debug("decoder refresh construction failed", "error", err)
		return false
	}
	if fresh.TotalFrames() <= b.dec.TotalFrames() {
		return false
	}
	if err := fresh.Seek(frame); err != nil {
		log.Error("decoder refresh seek failed", "frame", frame, "error", err)
		return false
	}
	log.Debug("decoder refreshed",
		"staleFrames", b.dec.TotalFrames(),
		"freshFrames", fresh.TotalFrames(),
		"frame", frame)
	b.dec = fresh
	return true
}
