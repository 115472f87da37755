// ABOUTME: Bridge between the decode loop and the real-time pull callback
// ABOUTME: Unbounded block queue plus the fill logic driving the device
package stream

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vocalis-audio/vocalis-go/pkg/audio/output"
)

var (
	// ErrPacingViolation reports a decoded block that came up short in
	// the middle of the stream, which would corrupt playback timing.
	ErrPacingViolation = errors.New("stream: short block before end of stream")

	// ErrPlaybackAborted reports that the device ran dry before the
	// download finished and playback was cut off.
	ErrPlaybackAborted = errors.New("stream: playback aborted on underrun")
)

// blockQueue is an unbounded FIFO of decoded blocks. The feed loop
// pushes without ever blocking; the device callback pops without ever
// blocking.
type blockQueue struct {
	mu     sync.Mutex
	blocks [][]byte
}

func (q *blockQueue) push(b []byte) {
	q.mu.Lock()
	q.blocks = append(q.blocks, b)
	q.mu.Unlock()
}

// tryPop returns the oldest block, or ok=false when the queue is empty.
func (q *blockQueue) tryPop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.blocks) == 0 {
		return nil, false
	}
	b := q.blocks[0]
	q.blocks = q.blocks[1:]
	return b, true
}

// bridge couples the block reader to the output device.
type bridge struct {
	reader *blockReader
	sig    *signals
	queue  blockQueue

	blockBytes int

	aborted   atomic.Bool
	abortOnce sync.Once
	abortCh   chan struct{}
	started   sync.Once
	onStart   func()
}

func newBridge(reader *blockReader, sig *signals, onStart func()) *bridge {
	return &bridge{
		reader:  reader,
		sig:     sig,
		abortCh: make(chan struct{}),
		onStart: onStart,
	}
}

func (b *bridge) abort() {
	b.aborted.Store(true)
	b.abortOnce.Do(func() { close(b.abortCh) })
}

// feedLoop decodes blocks into the queue until the source is exhausted.
// It paces itself on blockAvailable so it does not spin on a buffer the
// downloader has not extended yet.
func (b *bridge) feedLoop() error {
	b.blockBytes = b.reader.format.BlockBytes(b.reader.blockFrames)
	for {
		select {
		case <-b.sig.blockAvailable.Chan():
		case <-b.abortCh:
			return ErrPlaybackAborted
		}

		block, err := b.reader.readBlock()
		if err != nil {
			return err
		}
		switch {
		case len(block) == 0:
			if b.sig.downloadDone.IsSet() {
				// No more bytes are coming, so no retry can do better.
				log.Debug("decode finished", "frames", b.reader.dec.Position())
				b.queue.push(nil)
				return nil
			}
			// Nothing decodable yet; park until the next append.
			b.parkUntilAppend()
		case len(block) < b.blockBytes:
			// The reader only lets a short block out once the download
			// has finished, so this is either the stream's tail or a
			// decoder that gave up with bytes left over.
			if !b.sourceDrained() {
				return ErrPacingViolation
			}
			b.queue.push(block)
			b.queue.push(nil)
			log.Debug("decode finished on short block", "bytes", len(block))
			return nil
		default:
			b.queue.push(block)
		}

		if b.reader.buf.Remaining() < int64(b.blockBytes) {
			b.parkUntilAppend()
		}
	}
}

// parkUntilAppend clears blockAvailable so the next Wait blocks until
// the downloader appends again. The re-check closes the race where the
// download finishes between the IsSet check and the clear; without it
// the loop would wait on a signal nobody will raise again.
func (b *bridge) parkUntilAppend() {
	if b.sig.downloadDone.IsSet() {
		return
	}
	b.sig.blockAvailable.Clear()
	if b.sig.downloadDone.IsSet() {
		b.sig.blockAvailable.Set()
	}
}

// sourceDrained reports that no more frames can come out of the
// decoder: the buffer is fully consumed, or the decoder has stepped
// through every frame it knows about (a container can carry trailing
// non-audio bytes the cursor never crosses).
func (b *bridge) sourceDrained() bool {
	if b.reader.buf.AtEnd() {
		return true
	}
	return b.reader.dec.Position() >= b.reader.dec.TotalFrames()
}

// fillBlock is the device pull callback. It must never block: an empty
// queue means either clean end of stream or an underrun, and an
// underrun mid-download is fatal rather than a glitch.
func (b *bridge) fillBlock(out []byte) output.Status {
	for {
		block, ok := b.queue.tryPop()
		if !ok {
			if !b.sig.playbackStarted.IsSet() || b.sig.downloadDone.IsSet() {
				// Either pre-roll before the first block lands, or the
				// feed loop finishing the tail; emit silence until the
				// queue catches up or the end-of-stream marker lands.
				for i := range out {
					out[i] = 0
				}
				return output.StatusContinue
			}
			log.Error("device underrun before download finished")
			b.abort()
			return output.StatusAbort
		}
		if block == nil {
			// End-of-stream marker from the feed loop.
			return output.StatusStop
		}
		if len(block) == 0 {
			continue
		}

		b.started.Do(func() {
			b.sig.playbackStarted.Set()
			if b.onStart != nil {
				b.onStart()
			}
		})

		n := copy(out, block)
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		return output.StatusContinue
	}
}
