/*
DESCRIPTION
  grid.go defines the coarse slot grid that the capture stage reduces each
  field pair into: a YCbCr accumulator (written by the line-ingest ISR) and
  the RGB slot grid derived from it at each field boundary.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package grid holds the SlotsY x SlotsX coarse color grid shared between
// the capture, letterbox and edge-sampling stages of an ambilight pipeline.
package grid

import "github.com/pitschu/ambilight/config"

// Dimensions of the coarse grid, re-exported from config for convenience.
const (
	Width  = config.SlotsX
	Height = config.SlotsY
)

// Sum holds the running YCbCr sums for one slot while a half-frame is being
// captured. Cb and Cr have already had the 128 excess-offset removed by the
// caller. count is the number of pixel pairs gathered into this slot.
type Sum struct {
	Y, Cb, Cr int64
	Count     int64
}

// Accumulator is the slot accumulator described in spec data model entity 2:
// SlotsY x SlotsX cells, each holding {SumY, SumCb, SumCr, pixelCount} as
// signed sums. While one half's cells are accumulating, the other half's
// cells may only be read during the vertical-blank window; ownership
// hand-off happens at the vsync instant.
type Accumulator [Height][Width]Sum

// Add folds one YCbCr pixel pair into the slot at (row, col). Cb and Cr must
// already be in excess-128-corrected (signed) form; Y is the sum of both
// luma samples in the BT.656 tuple.
func (a *Accumulator) Add(row, col int, y, cb, cr int64) {
	s := &a[row][col]
	s.Y += y
	s.Cb += cb
	s.Cr += cr
	s.Count++
}

// Clear zeroes every cell of the accumulator.
func (a *Accumulator) Clear() {
	for r := range a {
		for c := range a[r] {
			a[r][c] = Sum{}
		}
	}
}

// ClearCols zeroes only the half of the accumulator spanned by
// [colStart,colEnd), used to discard a single capturing half without
// disturbing the other half's completed data.
func (a *Accumulator) ClearCols(colStart, colEnd int) {
	for r := range a {
		for c := colStart; c < colEnd; c++ {
			a[r][c] = Sum{}
		}
	}
}

// RGB is one slot's color, clamped to [0,254] per spec section 4.2.
type RGB struct {
	R, G, B uint8
}

// Grid is the RGB slot grid described in spec data model entity 3: produced
// at each half-frame boundary from the completed half of the accumulator,
// and read by the letterbox detector and the edge sampler.
type Grid [Height][Width]RGB

// clamp restricts v to [lo,hi].
func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConvertHalf performs the BT.601 video-range YCbCr->RGB colorspace
// conversion of spec section 4.2 for every slot in [colStart,colEnd) across
// all rows, writing the result into g and clearing the corresponding cells
// of acc. The 1000-denominator integer form is bit-exact with the original
// firmware and must not be replaced by floating point.
func (g *Grid) ConvertHalf(acc *Accumulator, colStart, colEnd int) {
	for row := 0; row < Height; row++ {
		for col := colStart; col < colEnd; col++ {
			s := &acc[row][col]
			if s.Count == 0 {
				*s = Sum{}
				continue
			}

			y := (s.Y / s.Count) / 2
			cb := s.Cb / s.Count
			cr := s.Cr / s.Count

			r := clamp(y+(1403*cr)/1000, 0, 254)
			gg := clamp(y-(714*cr+344*cb)/1000, 0, 254)
			b := clamp(y+(1773*cb)/1000, 0, 254)

			g[row][col] = RGB{R: uint8(r), G: uint8(gg), B: uint8(b)}

			*s = Sum{}
		}
	}
}
