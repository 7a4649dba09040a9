/*
DESCRIPTION
  vimage.go implements the edge sampler and integral smoother of spec
  section 4.4 (stage D): weighted inward sampling from each of the four
  letterbox edges, Bresenham scaling to the virtual image's target edge
  length, and a per-channel pure-integral controller.

  Grounded on ambiLightDyn2Image and computeI in ambiLight.c. The weighted
  sampling and the integer-division order of operations (multiply by 100
  before dividing by d, divide by 100 again at emission) are kept bit-exact
  per spec section 9's design notes: the emitted cell is deliberately scaled
  by (d-1)/d relative to the true average, and that scaling is observable
  and must remain stable across implementations.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package vimage implements the virtual image: the smoothing target between
// the coarse slot grid and the physical LED strip.
package vimage

import (
	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/grid"
	"github.com/pitschu/ambilight/letterbox"
)

// Cell is one virtual-image cell: its currently displayed color plus the
// three per-channel integral-controller accumulators (spec data model
// entity 6).
type Cell struct {
	R, G, B    uint8
	Ri, Gi, Bi int64
}

// Image is the virtual image of spec data model entity 6: a four-edge
// border of RGB cells sized (ImgWid, ImgHigh), laid out as four contiguous
// runs (right, top, left, bottom) in the fixed order dictated by physical
// wiring, starting at the bottom-right corner and proceeding
// counter-clockwise.
type Image struct {
	wid, high uint
	cells     []Cell
}

// Len returns the total number of cells in the image (2*ImgWid + 2*ImgHigh).
func (img *Image) Len() int { return len(img.cells) }

// Cells returns the underlying cell slice, laid out right/top/left/bottom.
func (img *Image) Cells() []Cell { return img.cells }

// resize grows or shrinks the cell slice to match cfg, preserving existing
// cell state (including integrator accumulators) for indices that still
// exist after a resize. This matters because spec section 9 forbids
// resetting Ci on rectangle changes; the same courtesy is extended to a
// live resize of ImgWid/ImgHigh.
func (img *Image) resize(wid, high uint) {
	if wid == img.wid && high == img.high {
		return
	}
	n := int(2*wid + 2*high)
	cells := make([]Cell, n)
	copy(cells, img.cells)
	img.cells = cells
	img.wid, img.high = wid, high
}

// Layout offsets into the four runs.
func (img *Image) rightStart() int  { return 0 }
func (img *Image) topStart() int    { return int(img.high) }
func (img *Image) leftStart() int   { return int(img.high) + int(img.wid) }
func (img *Image) bottomStart() int { return 2*int(img.high) + int(img.wid) }

// computeI drives one cell's integral controller toward target (r,g,b),
// per spec section 4.4: err = (t - out) * factorI; Ci += err; out =
// clamp(Ci/MaxIControl, 0, 255). This is a pure integrator; it settles
// exactly on the target when the target is stable.
func computeI(cell *Cell, r, g, b uint8, factorI int64) {
	cell.Ri += (int64(r) - int64(cell.R)) * factorI
	cell.R = clampByte(cell.Ri / config.MaxIControl)

	cell.Gi += (int64(g) - int64(cell.G)) * factorI
	cell.G = clampByte(cell.Gi / config.MaxIControl)

	cell.Bi += (int64(b) - int64(cell.B)) * factorI
	cell.B = clampByte(cell.Bi / config.MaxIControl)
}

func clampByte(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// accum gathers weighted samples for one destination cell between Bresenham
// emissions, mirroring the rVal/gVal/bVal/cntVal/dv locals of
// ambiLightDyn2Image.
type accum struct {
	r, g, b int64
	cnt     int
	dv      int
	sawAny  bool
}

// add folds one source slot at sampling depth j (0 = outermost, largest
// weight) into the accumulator. d is 2^(frameWidth+1)-1.
func (a *accum) add(px grid.RGB, j, frameWidth int, d int64) {
	weight := int64(1) << uint(frameWidth-j)
	a.r += (weight * 100 * int64(px.R)) / d
	a.g += (weight * 100 * int64(px.G)) / d
	a.b += (weight * 100 * int64(px.B)) / d
	a.sawAny = true
}

// value returns the emitted byte for one accumulated channel sum.
func (a *accum) value(sum int64) uint8 {
	if a.cnt == 0 {
		return 0
	}
	return clampByte(sum / 100 / int64(a.cnt))
}

// Update recomputes the virtual image from the current RGB slot grid and
// letterbox rectangle, using the tunables in cfg. Tunables are read once at
// the start of Update, tolerating the one-frame skew described in spec
// section 5.
func (img *Image) Update(g *grid.Grid, rect letterbox.Rect, cfg *config.Config) {
	wid, high := cfg.ImgWid, cfg.ImgHigh
	if wid == 0 {
		wid = 1
	}
	if high == 0 {
		high = 1
	}
	img.resize(wid, high)

	frameWidth := int(cfg.FrameWidth)
	if frameWidth < 1 {
		frameWidth = 1
	}
	if frameWidth > 11 {
		frameWidth = 11
	}
	factorI := int64(cfg.FactorI)
	if factorI < 1 {
		factorI = 1
	}
	d := (int64(1) << uint(frameWidth+1)) - 1

	img.sampleRight(g, rect, frameWidth, d, factorI)
	img.sampleTop(g, rect, frameWidth, d, factorI)
	img.sampleLeft(g, rect, frameWidth, d, factorI)
	img.sampleBottom(g, rect, frameWidth, d, factorI)
}

// sampleRight fills the right-edge run, scanning grid rows from bottom to
// top and sampling frameWidth columns inward from rect.Right.
func (img *Image) sampleRight(g *grid.Grid, rect letterbox.Rect, frameWidth int, d, factorI int64) {
	idx := img.rightStart()
	var a accum
	for i := grid.Height - 1; i >= 0; i-- {
		if i <= rect.Bottom && i >= rect.Top {
			for j := 0; j < frameWidth; j++ {
				col := rect.Right - j
				if col >= 0 && col < grid.Width {
					a.add(g[i][col], j, frameWidth, d)
				}
			}
		}
		a.cnt++
		a.dv += int(img.high)
		if a.dv >= grid.Height {
			for a.dv >= grid.Height {
				a.dv -= grid.Height
				if a.sawAny && idx < img.topStart() {
					computeI(&img.cells[idx], a.value(a.r), a.value(a.g), a.value(a.b), factorI)
				}
				idx++
			}
			a = accum{dv: a.dv}
		}
	}
}

// sampleLeft fills the left-edge run, scanning grid rows top to bottom and
// sampling frameWidth columns inward from rect.Left.
func (img *Image) sampleLeft(g *grid.Grid, rect letterbox.Rect, frameWidth int, d, factorI int64) {
	idx := img.leftStart()
	var a accum
	for i := 0; i < grid.Height; i++ {
		if i <= rect.Bottom && i >= rect.Top {
			for j := 0; j < frameWidth; j++ {
				col := rect.Left + j
				if col >= 0 && col < grid.Width {
					a.add(g[i][col], j, frameWidth, d)
				}
			}
		}
		a.cnt++
		a.dv += int(img.high)
		if a.dv >= grid.Height {
			for a.dv >= grid.Height {
				a.dv -= grid.Height
				if a.sawAny && idx < img.bottomStart() {
					computeI(&img.cells[idx], a.value(a.r), a.value(a.g), a.value(a.b), factorI)
				}
				idx++
			}
			a = accum{dv: a.dv}
		}
	}
}

// sampleTop fills the top-edge run, scanning grid columns right to left and
// sampling frameWidth rows inward from rect.Top.
func (img *Image) sampleTop(g *grid.Grid, rect letterbox.Rect, frameWidth int, d, factorI int64) {
	idx := img.topStart()
	var a accum
	for i := grid.Width - 1; i >= 0; i-- {
		if i <= rect.Right && i >= rect.Left {
			for j := 0; j < frameWidth; j++ {
				row := rect.Top + j
				if row >= 0 && row < grid.Height {
					a.add(g[row][i], j, frameWidth, d)
				}
			}
		}
		a.cnt++
		a.dv += int(img.wid)
		if a.dv >= grid.Width {
			for a.dv >= grid.Width {
				a.dv -= grid.Width
				if a.sawAny && idx < img.leftStart() {
					computeI(&img.cells[idx], a.value(a.r), a.value(a.g), a.value(a.b), factorI)
				}
				idx++
			}
			a = accum{dv: a.dv}
		}
	}
}

// sampleBottom fills the bottom-edge run, scanning grid columns left to
// right and sampling frameWidth rows inward from rect.Bottom.
func (img *Image) sampleBottom(g *grid.Grid, rect letterbox.Rect, frameWidth int, d, factorI int64) {
	idx := img.bottomStart()
	var a accum
	for i := 0; i < grid.Width; i++ {
		if i <= rect.Right && i >= rect.Left {
			for j := 0; j < frameWidth; j++ {
				row := rect.Bottom - j
				if row >= 0 && row < grid.Height {
					a.add(g[row][i], j, frameWidth, d)
				}
			}
		}
		a.cnt++
		a.dv += int(img.wid)
		if a.dv >= grid.Width {
			for a.dv >= grid.Width {
				a.dv -= grid.Width
				if a.sawAny && idx < len(img.cells) {
					computeI(&img.cells[idx], a.value(a.r), a.value(a.g), a.value(a.b), factorI)
				}
				idx++
			}
			a = accum{dv: a.dv}
		}
	}
}
