package sim

import (
	"testing"
	"time"
)

func TestFixedStepDefaultsTo60(t *testing.T) {
	fs := NewFixedStep(0)
	if got := fs.Step(); got != (time.Second / 60).Seconds() {
		t.Errorf("Step() = %v, want 1/60s", got)
	}
}

func TestFixedStepDtMatchesRate(t *testing.T) {
	fs := NewFixedStep(100)
	if got := fs.Step(); got != 0.01 {
		t.Errorf("Step() = %v, want 0.01", got)
	}
	fs.SetTPS(20)
	if got := fs.Step(); got != 0.05 {
		t.Errorf("after SetTPS(20), Step() = %v, want 0.05", got)
	}
}

func TestFixedStepFirstCallFires(t *testing.T) {
	// The accumulator is pre-loaded with one step so a fresh clock ticks
	// immediately instead of waiting out the first interval.
	fs := NewFixedStep(1)
	if !fs.ShouldStep() {
		t.Error("fresh FixedStep should allow the first tick immediately")
	}
	if fs.ShouldStep() {
		t.Error("second call should wait for the interval to elapse")
	}
}
