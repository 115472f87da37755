// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and float32 sample conversion functions
// Package audio provides fundamental audio types and utilities for the
// streaming playback pipeline.
//
// This package defines core types used throughout the vocalis library:
//   - Format: Describes a decoded audio stream (sample rate, channels)
//
// It also provides utilities for converting between sample formats:
//   - 16-bit integer ↔ 32-bit float conversions
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 44100,
//	    Channels:   2,
//	}
//
//	blockBytes := format.BlockBytes(2048)
package audio
