// ABOUTME: Tests for audio types
// ABOUTME: Tests frame arithmetic and sample conversions
package audio

import "testing"

func TestFrameSize(t *testing.T) {
	tests := []struct {
		channels int
		want     int
	}{
		{1, 4},
		{2, 8},
		{4, 16},
	}

	for _, tt := range tests {
		f := Format{SampleRate: 44100, Channels: tt.channels}
		if got := f.FrameSize(); got != tt.want {
			t.Errorf("FrameSize() with %d channels = %d, want %d", tt.channels, got, tt.want)
		}
	}
}

func TestBlockBytes(t *testing.T) {
	f := Format{SampleRate: 44100, Channels: 4}
	// 2048 frames * 4 channels * 4 bytes
	if got := f.BlockBytes(2048); got != 32768 {
		t.Errorf("BlockBytes(2048) = %d, want 32768", got)
	}
}

func TestSampleFromInt16(t *testing.T) {
	if got := SampleFromInt16(0); got != 0 {
		t.Errorf("SampleFromInt16(0) = %f, want 0", got)
	}

	if got := SampleFromInt16(-32768); got != -1.0 {
		t.Errorf("SampleFromInt16(-32768) = %f, want -1.0", got)
	}

	got := SampleFromInt16(16384)
	if got != 0.5 {
		t.Errorf("SampleFromInt16(16384) = %f, want 0.5", got)
	}
}

func TestSampleToInt16_Clamps(t *testing.T) {
	if got := SampleToInt16(2.0); got != 32767 {
		t.Errorf("SampleToInt16(2.0) = %d, want 32767", got)
	}

	if got := SampleToInt16(-2.0); got != -32768 {
		t.Errorf("SampleToInt16(-2.0) = %d, want -32768", got)
	}
}

func TestSampleRoundTrip(t *testing.T) {
	for _, s := range []int16{-32768, -1, 0, 1, 12345, 32767} {
		back := SampleToInt16(SampleFromInt16(s))
		if back != s {
			t.Errorf("round trip of %d gave %d", s, back)
		}
	}
}
