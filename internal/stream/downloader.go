// ABOUTME: Download goroutine consuming a streamed response
// ABOUTME: Appends chunks to the shared buffer and flips pacing signals
package stream

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// ChunkStream is the boundary with the transport layer: a lazy sequence
// of byte chunks from an already-validated streamed response. Next
// returns io.EOF at exhaustion.
type ChunkStream interface {
	Next() ([]byte, error)
}

// downloader consumes a ChunkStream and feeds the shared buffer.
//
// Protocol per chunk: while headerReady is set, the decoder may be in
// the middle of a construction attempt over the current bytes, so the
// downloader first waits for decoderReady. If the decoder cleared
// headerReady in the meantime the parse failed for lack of bytes; the
// downloader clears decoderReady and supplies more.
type downloader struct {
	buf *ChunkBuffer
	sig *signals

	// threshold is the byte count of newly-available data that makes
	// another block read worthwhile. It starts as a conservative
	// pre-header guess and is raised to the real block byte size once
	// the decoder reports the frame layout.
	threshold atomic.Int64
}

func newDownloader(buf *ChunkBuffer, sig *signals, initialThreshold int) *downloader {
	d := &downloader{buf: buf, sig: sig}
	d.threshold.Store(int64(initialThreshold))
	return d
}

// setThreshold updates the block-available pacing threshold.
func (d *downloader) setThreshold(bytes int) {
	d.threshold.Store(int64(bytes))
}

// run consumes the stream until exhaustion or error. On exit it always
// sets downloadDone and blockAvailable so no consumer waits on data
// that will never come.
func (d *downloader) run(cs ChunkStream) error {
	defer func() {
		d.sig.downloadDone.Set()
		d.sig.blockAvailable.Set()
	}()

	var total int64
	for {
		chunk, err := cs.Next()
		if err == io.EOF {
			log.Debug("download finished", "bytes", total)
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream read: %w", err)
		}
		if len(chunk) == 0 {
			continue
		}

		if d.sig.headerReady.IsSet() {
			log.Debug("header ready, waiting for decoder attempt to finish")
			d.sig.decoderReady.Wait()
			if !d.sig.headerReady.IsSet() {
				// Parse failed on the current bytes; the decoder wants
				// more before the next attempt.
				log.Debug("header parse needs more data, downloading more")
				d.sig.decoderReady.Clear()
			}
		}

		total += int64(len(chunk))

		if !d.sig.headerReady.IsSet() {
			d.buf.Append(chunk)
			log.Debug("first header bytes buffered", "bytes", len(chunk))
			d.sig.headerReady.Set()
			continue
		}

		d.buf.Append(chunk)
		if remaining := d.buf.Remaining(); remaining > d.threshold.Load() {
			log.Debug("block data available", "remaining", remaining)
			d.sig.blockAvailable.Set()
		}
	}
}
