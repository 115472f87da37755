// ABOUTME: Adapts a streamed response body to the playback pipeline
// ABOUTME: Reads fixed-size chunks and tears the connection down on close
package client

import (
	"io"
)

// HTTPChunkStream slices a streamed response body into chunks for the
// playback pipeline. It satisfies stream.ChunkStream.
type HTTPChunkStream struct {
	body      io.ReadCloser
	chunkSize int
}

// NewHTTPChunkStream wraps an open response body.
func NewHTTPChunkStream(body io.ReadCloser, chunkSize int) *HTTPChunkStream {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &HTTPChunkStream{body: body, chunkSize: chunkSize}
}

// Next reads up to one chunk. io.EOF marks a cleanly exhausted body.
func (s *HTTPChunkStream) Next() ([]byte, error) {
	buf := make([]byte, s.chunkSize)
	n, err := s.body.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	if err == io.EOF {
		s.body.Close()
	}
	return nil, err
}

// Close tears down the connection; a blocked Next unblocks with an
// error.
func (s *HTTPChunkStream) Close() error {
	return s.body.Close()
}
