// ABOUTME: Tests for the shared growable chunk buffer
// ABOUTME: Covers cursor independence, seek semantics and end detection
package stream

import (
	"io"
	"sync"
	"testing"
)

func TestChunkBufferReadAfterAppend(t *testing.T) {
	b := NewChunkBuffer()
	b.Append([]byte{1, 2, 3})
	b.Append([]byte{4, 5})

	got := make([]byte, 5)
	n, err := b.Read(got)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 5 {
		t.Fatalf("Read n = %d, want 5", n)
	}
	for i, want := range []byte{1, 2, 3, 4, 5} {
		if got[i] != want {
			t.Errorf("byte %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestChunkBufferReadAtLogicalEnd(t *testing.T) {
	b := NewChunkBuffer()
	b.Append([]byte{1})

	buf := make([]byte, 4)
	if n, err := b.Read(buf); n != 1 || err != nil {
		t.Fatalf("Read = (%d, %v), want (1, nil)", n, err)
	}
	if _, err := b.Read(buf); err != io.EOF {
		t.Fatalf("Read at end = %v, want io.EOF", err)
	}

	// EOF only means no bytes right now; a later append un-ends it.
	b.Append([]byte{2})
	if n, err := b.Read(buf); n != 1 || err != nil {
		t.Fatalf("Read after grow = (%d, %v), want (1, nil)", n, err)
	}
}

func TestChunkBufferAppendKeepsCursor(t *testing.T) {
	b := NewChunkBuffer()
	b.Append([]byte{1, 2, 3, 4})

	buf := make([]byte, 2)
	if _, err := b.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	b.Append([]byte{5, 6})
	if b.Remaining() != 4 {
		t.Fatalf("Remaining = %d, want 4", b.Remaining())
	}
	if _, err := b.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if buf[0] != 3 || buf[1] != 4 {
		t.Fatalf("read %v after grow, want [3 4]", buf)
	}
}

func TestChunkBufferSeek(t *testing.T) {
	b := NewChunkBuffer()
	b.Append([]byte{10, 20, 30, 40})

	if pos, err := b.Seek(2, io.SeekStart); pos != 2 || err != nil {
		t.Fatalf("SeekStart = (%d, %v)", pos, err)
	}
	if pos, err := b.Seek(1, io.SeekCurrent); pos != 3 || err != nil {
		t.Fatalf("SeekCurrent = (%d, %v)", pos, err)
	}
	if pos, err := b.Seek(-4, io.SeekEnd); pos != 0 || err != nil {
		t.Fatalf("SeekEnd = (%d, %v)", pos, err)
	}
	if _, err := b.Seek(-1, io.SeekStart); err == nil {
		t.Fatal("negative seek should fail")
	}
}

func TestChunkBufferAtEnd(t *testing.T) {
	b := NewChunkBuffer()
	if !b.AtEnd() {
		t.Fatal("empty buffer should be at end")
	}
	b.Append([]byte{1, 2})
	if b.AtEnd() {
		t.Fatal("unread bytes should not be at end")
	}
	if _, err := b.Seek(0, io.SeekEnd); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if !b.AtEnd() {
		t.Fatal("cursor at length should be at end")
	}
}

func TestChunkBufferReset(t *testing.T) {
	b := NewChunkBuffer()
	b.Append([]byte{1, 2, 3})
	if _, err := b.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	b.Reset()
	if b.Len() != 0 || b.Remaining() != 0 {
		t.Fatalf("after Reset: Len=%d Remaining=%d", b.Len(), b.Remaining())
	}
}

func TestChunkBufferConcurrentAppendRead(t *testing.T) {
	b := NewChunkBuffer()
	const chunks = 100

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < chunks; i++ {
			b.Append([]byte{byte(i), byte(i)})
		}
	}()

	read := 0
	buf := make([]byte, 16)
	for read < chunks*2 {
		n, err := b.Read(buf)
		if err != nil && err != io.EOF {
			t.Fatalf("Read: %v", err)
		}
		read += n
	}
	wg.Wait()
	if b.Len() != chunks*2 {
		t.Fatalf("Len = %d, want %d", b.Len(), chunks*2)
	}
}
