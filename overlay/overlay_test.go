/*
DESCRIPTION
  overlay_test.go exercises the overlay compositor's priority-over-output
  rule and its countdown expiry.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package overlay

import (
	"testing"

	"github.com/pitschu/ambilight/ledstrip"
)

func TestComposePassesThroughWithoutOverlay(t *testing.T) {
	var o Overlay
	output := []ledstrip.RGB{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}
	got := o.Compose(output)
	for i := range output {
		if got[i] != output[i] {
			t.Fatalf("got[%d] = %+v, want %+v", i, got[i], output[i])
		}
	}
}

func TestShowPercentOverridesOutputWhileTicking(t *testing.T) {
	var o Overlay
	o.ShowPercent(10, 6, 100, 5)

	output := make([]ledstrip.RGB, 2*(10+6))
	for i := range output {
		output[i] = ledstrip.RGB{R: 9, G: 9, B: 9}
	}

	visible := o.Compose(output)

	overridden := false
	for i, c := range visible {
		if c != output[i] {
			overridden = true
		}
	}
	if !overridden {
		t.Fatal("expected at least one LED overridden by the overlay bar")
	}
}

func TestOverlayExpiresAfterTicks(t *testing.T) {
	var o Overlay
	o.ShowPercent(10, 6, 50, 2)

	o.Tick()
	o.Tick()
	if o.Ticks() != 0 {
		t.Fatalf("Ticks() = %d, want 0 after countdown expired", o.Ticks())
	}

	output := make([]ledstrip.RGB, 2*(10+6))
	visible := o.Compose(output)
	for i, c := range visible {
		if c != output[i] {
			t.Fatalf("led %d overridden after countdown expired", i)
		}
	}
}

func TestClearDropsOverlayImmediately(t *testing.T) {
	var o Overlay
	o.ShowPercent(10, 6, 50, 100)
	o.Clear()
	if o.Ticks() != 0 {
		t.Fatalf("Ticks() = %d, want 0 after Clear", o.Ticks())
	}
}
