/*
DESCRIPTION
  ledstrip.go implements stage E of the ambilight pipeline: scaling the
  virtual image down (or up) to the physical LED count by plain unweighted
  Bresenham averaging, the frame-delay ring that compensates for the
  downstream TV's own processing latency, and the LED strip writer
  interface.

  Grounded on ambiLightImage2LedRGB in ambiLight.c: the four-run layout
  (right, top, left, bottom, starting bottom-right, counter-clockwise)
  mirrors vimage's, but without edge weighting or an integrator - each LED
  is a plain average of the virtual-image cells Bresenham-mapped to it.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package ledstrip scales the virtual image to the physical LED count,
// applies the frame-delay ring, and drives the LED hardware.
package ledstrip

import (
	"context"

	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/vimage"
)

// RGB is one LED's color, as written to the strip.
type RGB struct {
	R, G, B uint8
}

// Writer drives physical addressable LED hardware. Implementations are
// expected to wrap a serially-clocked RGB LED driver (spec section 1); see
// SPIWriter in apa102.go for the reference SPI implementation.
type Writer interface {
	// Write sends leds to the strip in strip order (spec section 4.6: the
	// same bottom-right-start, counter-clockwise order as the virtual
	// image). Write must not retain leds past the call.
	Write(ctx context.Context, leds []RGB) error
}

// Strip holds the delay ring and the most recently delayed LED buffer. Its
// physical length is 2*(LEDsX+LEDsY), recomputed whenever the tunables
// change.
type Strip struct {
	ledsX, ledsY uint
	ring         [config.DelayLen][]RGB
	writeIdx     int
	output       []RGB
}

// Len returns the number of physical LEDs in the current layout.
func (s *Strip) Len() int { return len(s.output) }

// Output returns the LED buffer produced by the most recent Update, after
// the configured delay has been applied.
func (s *Strip) Output() []RGB { return s.output }

func (s *Strip) resize(ledsX, ledsY uint) {
	if ledsX == s.ledsX && ledsY == s.ledsY {
		return
	}
	s.ledsX, s.ledsY = ledsX, ledsY
	n := int(2*ledsX + 2*ledsY)
	s.output = make([]RGB, n)
	for i := range s.ring {
		s.ring[i] = make([]RGB, n)
	}
	s.writeIdx = 0
}

func (s *Strip) rightStart() int  { return 0 }
func (s *Strip) topStart() int    { return int(s.ledsY) }
func (s *Strip) leftStart() int   { return int(s.ledsY) + int(s.ledsX) }
func (s *Strip) bottomStart() int { return 2*int(s.ledsY) + int(s.ledsX) }

// scaleRun Bresenham-averages one virtual-image run into the strip run
// dst[dstStart : dstStart+dstLen), plainly (no weighting, no integrator).
func scaleRun(cells []vimage.Cell, dst []RGB, dstStart, dstLen, srcLen int) {
	if dstLen == 0 || srcLen == 0 {
		return
	}
	idx := dstStart
	var rVal, gVal, bVal int64
	var cnt, dv int
	for _, c := range cells {
		rVal += int64(c.R)
		gVal += int64(c.G)
		bVal += int64(c.B)
		cnt++

		dv += dstLen
		if dv >= srcLen {
			for dv >= srcLen {
				dv -= srcLen
				if idx < dstStart+dstLen {
					dst[idx] = RGB{
						R: uint8(rVal / int64(cnt)),
						G: uint8(gVal / int64(cnt)),
						B: uint8(bVal / int64(cnt)),
					}
				}
				idx++
			}
			rVal, gVal, bVal = 0, 0, 0
			cnt = 0
		}
	}
}

func runSlice(cells []vimage.Cell, start, length int) []vimage.Cell {
	if start >= len(cells) {
		return nil
	}
	end := start + length
	if end > len(cells) {
		end = len(cells)
	}
	return cells[start:end]
}

// Update scales img's four edge runs down to the physical LED counts in
// cfg, writes the result into the delay ring at the current write index,
// then exposes the entry cfg.Delay frames behind it as Output, per spec
// section 4.5.
func (s *Strip) Update(img *vimage.Image, cfg *config.Config) {
	ledsX, ledsY := cfg.LEDsX, cfg.LEDsY
	if ledsX == 0 {
		ledsX = 1
	}
	if ledsY == 0 {
		ledsY = 1
	}
	s.resize(ledsX, ledsY)

	cells := img.Cells()
	imgWid, imgHigh := int(cfg.ImgWid), int(cfg.ImgHigh)

	dst := s.ring[s.writeIdx]
	scaleRun(runSlice(cells, 0, imgHigh), dst, s.rightStart(), int(ledsY), imgHigh)
	scaleRun(runSlice(cells, imgHigh, imgWid), dst, s.topStart(), int(ledsX), imgWid)
	scaleRun(runSlice(cells, imgHigh+imgWid, imgHigh), dst, s.leftStart(), int(ledsY), imgHigh)
	scaleRun(runSlice(cells, 2*imgHigh+imgWid, imgWid), dst, s.bottomStart(), int(ledsX), imgWid)

	delay := int(cfg.Delay)
	if delay >= config.DelayLen {
		delay = config.DelayLen - 1
	}
	readIdx := s.writeIdx - delay
	for readIdx < 0 {
		readIdx += config.DelayLen
	}
	copy(s.output, s.ring[readIdx])

	s.writeIdx++
	if s.writeIdx >= config.DelayLen {
		s.writeIdx = 0
	}
}
