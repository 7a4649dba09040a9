/*
DESCRIPTION
  apa102.go implements ledstrip.Writer over an APA102/SK9822 LED strip
  driven via SPI, for the hardware build of the ambilight daemon.

  Grounded on the google-periph apa102 driver in the retrieved examples:
  the APA102 start-frame/end-frame/per-LED-frame wire format, where each
  LED frame's header byte carries the 0xE0 marker in its top three bits
  and the 5-bit global brightness in its low five bits.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package ledstrip

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/spi"
)

// globalBrightness is the APA102's 5-bit per-LED brightness field, held
// fixed at maximum; per-channel intensity is carried entirely in R/G/B
// since the ambilight pipeline already applies its own brightness scale.
const globalBrightness = 0x1F

// SPIWriter drives an APA102/SK9822 strip over an SPI port.
type SPIWriter struct {
	conn spi.Conn
}

// NewSPIWriter returns a Writer that clocks leds out over conn in the
// strip's start-frame/LED-frames/end-frame wire format.
func NewSPIWriter(conn spi.Conn) *SPIWriter {
	return &SPIWriter{conn: conn}
}

// Write serializes leds into the APA102 wire format and clocks them out
// over SPI. The end frame is sized to at least len(leds)/2 bits of
// trailing clock, the rule of thumb from the APA102 datasheet for
// propagating the start frame through a chain this long.
func (w *SPIWriter) Write(ctx context.Context, leds []RGB) error {
	buf := make([]byte, 4+4*len(leds)+(len(leds)/16+1)*4)

	for i, led := range leds {
		off := 4 + 4*i
		buf[off] = 0xE0 | globalBrightness
		buf[off+1] = led.B
		buf[off+2] = led.G
		buf[off+3] = led.R
	}

	if err := w.conn.Tx(buf, nil); err != nil {
		return fmt.Errorf("apa102: spi transfer: %w", err)
	}
	return nil
}
