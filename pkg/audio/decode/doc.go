// ABOUTME: Audio decoder package for streamed container parsing
// ABOUTME: Provides Decoder interface and WAV, MP3, raw PCM implementations
// Package decode provides incremental audio stream parsers.
//
// Supports: WAV (16-bit PCM and 32-bit float), MP3, headerless 16-bit PCM.
//
// Decoders are built over an io.ReadSeeker that may still be growing: the
// constructors return ErrHeaderIncomplete when the header bytes have not
// all arrived yet, and TotalFrames is allowed to go stale as more bytes
// land (re-construct to refresh it). All decoders emit interleaved
// float32 little-endian PCM.
//
// Example:
//
//	dec, err := decode.New(source)
//	if errors.Is(err, decode.ErrHeaderIncomplete) {
//	    // wait for more bytes, retry
//	}
//	block, err := dec.ReadFrames(2048)
package decode
