// ABOUTME: Availability signals coordinating the streaming goroutines
// ABOUTME: Resettable binary latches grouped by cooperating pair
package stream

import "sync"

// latch is a resettable binary signal. Set closes the current generation
// channel, releasing every waiter; Clear starts a new generation.
type latch struct {
	mu  sync.Mutex
	ch  chan struct{}
	set bool
}

func newLatch() *latch {
	return &latch{ch: make(chan struct{})}
}

// Set latches the signal. Idempotent.
func (l *latch) Set() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.set {
		l.set = true
		close(l.ch)
	}
}

// Clear unlatches the signal. Waiters that captured the previous
// generation are unaffected; they were already released.
func (l *latch) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set {
		l.set = false
		l.ch = make(chan struct{})
	}
}

// IsSet reports the current state.
func (l *latch) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// Wait blocks until the signal is set.
func (l *latch) Wait() {
	<-l.Chan()
}

// Chan returns a channel closed when the current generation is set.
// Useful for selecting across several signals.
func (l *latch) Chan() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ch
}

// signals is the session's signal set. The latches pair up by the
// goroutines they coordinate:
//
//	downloader ↔ decoder:   headerReady, decoderReady
//	feed loop ↔ callback:   blockAvailable, playbackStarted
//	whole session:          downloadDone, playbackFinished
//
// headerReady means enough bytes exist for a parse attempt to be worth
// making; decoderReady means the decoder finished its current attempt
// (success or failure); blockAvailable means at least one more block's
// worth of bytes is waiting; downloadDone means no more chunks will
// arrive.
type signals struct {
	headerReady      *latch
	decoderReady     *latch
	blockAvailable   *latch
	downloadDone     *latch
	playbackStarted  *latch
	playbackFinished *latch
}

// reset clears every latch so the set can serve a new session.
func (g *signals) reset() {
	g.headerReady.Clear()
	g.decoderReady.Clear()
	g.blockAvailable.Clear()
	g.downloadDone.Clear()
	g.playbackStarted.Clear()
	g.playbackFinished.Clear()
}

func newSignals() *signals {
	return &signals{
		headerReady:      newLatch(),
		decoderReady:     newLatch(),
		blockAvailable:   newLatch(),
		downloadDone:     newLatch(),
		playbackStarted:  newLatch(),
		playbackFinished: newLatch(),
	}
}
