// ABOUTME: Shared byte buffer between downloader and decoder
// ABOUTME: Growable, seekable, mutex-guarded store with append-at-end writes
package stream

import (
	"fmt"
	"io"
	"sync"
)

// ChunkBuffer is the byte store shared by the download goroutine (writer)
// and the decoder (reader). Writes always land at the logical end of data
// and never disturb the read cursor; reads advance the cursor and may
// return fewer bytes than asked when the rest has not arrived yet.
//
// One mutex guards the storage and the cursor. Callers never hold it
// across blocking waits; the availability signals do the pacing.
type ChunkBuffer struct {
	mu   sync.Mutex
	data []byte
	pos  int64
}

// NewChunkBuffer creates an empty buffer.
func NewChunkBuffer() *ChunkBuffer {
	return &ChunkBuffer{}
}

// Append writes p at the logical end of data. The read cursor is
// untouched.
func (b *ChunkBuffer) Append(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
}

// Read reads up to len(p) bytes at the read cursor, advancing it. At the
// logical end of data it returns io.EOF; more data may still arrive, so
// EOF here means "no more bytes right now", not end of stream.
func (b *ChunkBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Seek repositions the read cursor. It satisfies io.Seeker so container
// parsers can treat the buffer as a regular byte source.
func (b *ChunkBuffer) Seek(offset int64, whence int) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position: %d", pos)
	}
	b.pos = pos
	return pos, nil
}

// Remaining returns the byte count between the read cursor and the
// logical end of data.
func (b *ChunkBuffer) Remaining() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := int64(len(b.data)) - b.pos
	if r < 0 {
		return 0
	}
	return r
}

// Len returns the logical end of data.
func (b *ChunkBuffer) Len() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.data))
}

// AtEnd reports whether the read cursor sits exactly at the logical end.
// The check runs under the lock so end-of-stream detection is exact.
func (b *ChunkBuffer) AtEnd() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos >= int64(len(b.data))
}

// Reset truncates the buffer and rewinds the cursor.
func (b *ChunkBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
	b.pos = 0
}
