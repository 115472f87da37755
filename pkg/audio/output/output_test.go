// ABOUTME: Tests for output package construction
// ABOUTME: Verifies devices satisfy the Device interface
package output

import "testing"

func TestNewMalgoImplementsDevice(t *testing.T) {
	var _ Device = NewMalgo()
}

func TestStatusValues(t *testing.T) {
	// The zero value must be the safe default.
	if StatusContinue != 0 {
		t.Errorf("StatusContinue should be the zero value, got %d", StatusContinue)
	}
	if StatusStop == StatusAbort {
		t.Error("StatusStop and StatusAbort must be distinct")
	}
}
