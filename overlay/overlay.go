/*
DESCRIPTION
  overlay.go implements stage F of the ambilight pipeline: a transient
  per-LED overlay layer that takes priority over the pipeline's own output
  while a countdown is running.

  Grounded on ws2812ledOVR/ws2812ledHasOVR/ws2812ovrlayCounter in ws2812.h
  and displayOverlayPercents in main.c, and the 100Hz decrement of
  ws2812ovrlayCounter in delay.c's system tick handler.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package overlay implements the transient on-screen indicator layer
// composited over the LED pipeline's own output.
package overlay

import (
	"sync/atomic"

	"github.com/pitschu/ambilight/ledstrip"
)

// Overlay holds a per-LED overlay color, a validity mask, and a tick
// countdown. While Ticks() > 0, any LED with its mask bit set is shown in
// the overlay color instead of the pipeline's output (spec section 4.6).
type Overlay struct {
	color []ledstrip.RGB
	valid []bool
	ticks atomic.Int64
}

// resize grows the overlay buffers to n LEDs, clearing any prior content.
func (o *Overlay) resize(n int) {
	if len(o.color) == n {
		return
	}
	o.color = make([]ledstrip.RGB, n)
	o.valid = make([]bool, n)
}

// Tick decrements the overlay countdown once, called by the system's 100 Hz
// tick; it is a no-op once the countdown reaches zero.
func (o *Overlay) Tick() {
	for {
		v := o.ticks.Load()
		if v <= 0 {
			return
		}
		if o.ticks.CompareAndSwap(v, v-1) {
			return
		}
	}
}

// Ticks returns the remaining countdown in system-tick units.
func (o *Overlay) Ticks() int64 { return o.ticks.Load() }

// Clear drops the overlay immediately, regardless of the remaining
// countdown.
func (o *Overlay) Clear() {
	for i := range o.valid {
		o.valid[i] = false
	}
	o.ticks.Store(0)
}

// Compose returns the visible LED buffer: output overridden by the overlay
// color wherever the overlay is valid and the countdown has not expired.
// The returned slice is a new buffer; output is not modified.
func (o *Overlay) Compose(output []ledstrip.RGB) []ledstrip.RGB {
	visible := make([]ledstrip.RGB, len(output))
	copy(visible, output)
	if o.ticks.Load() <= 0 {
		return visible
	}
	for i := range visible {
		if i < len(o.valid) && o.valid[i] {
			visible[i] = o.color[i]
		}
	}
	return visible
}

// ShowPercent renders a 0-100% bar on the top edge as a 3-LED neighborhood
// centered on the LED proportional to percent, per displayOverlayPercents:
// the two flanking LEDs are unlit, the center LED and the LED to its left
// are lit green. duration restarts the countdown and clears any previous
// overlay content; a duration of 0 leaves the countdown and any other
// already-set overlay LEDs untouched, only adding this bar.
func (o *Overlay) ShowPercent(ledsX, ledsY uint, percent, duration int) {
	n := int(2*ledsX + 2*ledsY)
	o.resize(n)

	if duration > 0 {
		for i := range o.valid {
			o.valid[i] = false
			o.color[i] = ledstrip.RGB{}
		}
		o.ticks.Store(int64(duration))
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	span := int(ledsX) - 3
	i := int(ledsY) + int(ledsX) - 1 - (span*percent)/100

	set := func(idx int, c ledstrip.RGB) {
		if idx < 0 || idx >= n {
			return
		}
		o.valid[idx] = true
		o.color[idx] = c
	}

	set(i-2, ledstrip.RGB{})
	set(i-1, ledstrip.RGB{G: 0xFF})
	set(i, ledstrip.RGB{G: 0xFF})
	set(i+1, ledstrip.RGB{})
}
