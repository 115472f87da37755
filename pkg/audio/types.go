// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and float32 sample helpers
package audio

// SampleWidth is the byte width of one playback sample. The playback
// pipeline works in 32-bit float PCM end to end.
const SampleWidth = 4

// Format describes a decoded audio stream.
type Format struct {
	SampleRate int
	Channels   int
}

// FrameSize returns the byte size of one frame (one sample per channel).
func (f Format) FrameSize() int {
	return f.Channels * SampleWidth
}

// BlockBytes returns the byte size of a block of the given frame count.
func (f Format) BlockBytes(frames int) int {
	return frames * f.FrameSize()
}

// SampleFromInt16 converts a 16-bit PCM sample to float32 in [-1, 1).
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleToInt16 converts a float32 sample to 16-bit PCM with clamping.
func SampleToInt16(sample float32) int16 {
	scaled := sample * 32768.0
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}
