// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the pull-callback Device contract and malgo/oto backends
// Package output provides audio playback backends.
//
// Two playback models are offered:
//
//   - Device (implemented by Malgo): the device pulls fixed-size float32
//     blocks from a callback on its real-time thread. Used by streamed
//     playback, where audio is still downloading while it plays.
//   - BufferPlayer (oto): plays a fully-decoded buffer. Used by the
//     simpler download-then-play path.
//
// Example:
//
//	dev := output.NewMalgo()
//	err := dev.Open(44100, 2, 2048, fillBlock)
//	<-dev.Finished()
package output
