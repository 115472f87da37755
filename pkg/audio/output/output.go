// ABOUTME: Audio output interface definition
// ABOUTME: Pull-callback contract between the pipeline and playback devices
package output

// Status is the result a Callback returns to the device. The device runs
// the callback on its own real-time thread, so control flows back through
// return codes, never through panics across that boundary.
type Status int

const (
	// StatusContinue means the output buffer was filled; keep pulling.
	StatusContinue Status = iota

	// StatusStop means the stream ended cleanly; drain and finish.
	StatusStop

	// StatusAbort means the producer lost pace; finish abnormally.
	StatusAbort
)

// Callback fills out with interleaved float32 little-endian PCM. It is
// invoked on the device's schedule and must not block on I/O; it either
// fills the buffer (zero-padding any shortfall) or signals termination.
type Callback func(out []byte) Status

// Device is a playback device that pulls fixed-size blocks from a
// callback at a negotiated format.
type Device interface {
	// Open initializes the device and starts pulling from cb.
	Open(sampleRate, channels, blockFrames int, cb Callback) error

	// Finished is closed once after the device has stopped, whether the
	// stream ended cleanly or was aborted.
	Finished() <-chan struct{}

	// Close releases device resources.
	Close() error
}
