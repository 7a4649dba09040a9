/*
DESCRIPTION
  vimage_test.go exercises the edge sampler and integral smoother against
  the spec section 8 end-to-end scenarios.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package vimage

import (
	"testing"

	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/grid"
	"github.com/pitschu/ambilight/letterbox"
)

func solidGrid(c grid.RGB) *grid.Grid {
	var g grid.Grid
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			g[y][x] = c
		}
	}
	return &g
}

func fullRect() letterbox.Rect {
	return letterbox.Rect{Left: 0, Right: grid.Width - 1, Top: 0, Bottom: grid.Height - 1}
}

// TestSolidFieldSettlesToUniformColor is the spec section 8 integral
// smoothing scenario: a uniform field fed repeatedly must drive every cell
// to one uniform color once the integrator has had time to settle, since a
// pure integral controller converges exactly on a stable target. That
// target is the field color scaled by the weighted sampling's (d-1)/d
// factor (see the package header): with FrameWidth 4, d = 31, so
// (200,100,50) settles at (193,96,48).
func TestSolidFieldSettlesToUniformColor(t *testing.T) {
	cfg := config.Default(nil)
	cfg.ImgWid, cfg.ImgHigh = 16, 10
	cfg.FactorI = 128 // fastest possible settling, one step per frame.

	g := solidGrid(grid.RGB{R: 200, G: 100, B: 50})
	rect := fullRect()

	var img Image
	for i := 0; i < 64; i++ {
		img.Update(g, rect, &cfg)
	}

	for i, c := range img.Cells() {
		if c.R != 193 || c.G != 96 || c.B != 48 {
			t.Fatalf("cell %d = %+v, want (193,96,48)", i, c)
		}
	}
}

// TestLenMatchesLayout checks the image is sized 2*ImgWid + 2*ImgHigh.
func TestLenMatchesLayout(t *testing.T) {
	cfg := config.Default(nil)
	cfg.ImgWid, cfg.ImgHigh = 20, 12

	var img Image
	img.Update(solidGrid(grid.RGB{R: 1, G: 1, B: 1}), fullRect(), &cfg)

	want := int(2*cfg.ImgWid + 2*cfg.ImgHigh)
	if img.Len() != want {
		t.Fatalf("Len() = %d, want %d", img.Len(), want)
	}
}

// TestOutsideLetterboxPreservesState checks the spec section 4.4 rule that
// slots entirely outside the letterbox rectangle must not drag a cell's
// integrator toward black; the cell's prior state is preserved instead.
func TestOutsideLetterboxPreservesState(t *testing.T) {
	cfg := config.Default(nil)
	cfg.ImgWid, cfg.ImgHigh = 8, 8
	cfg.FactorI = 128

	g := solidGrid(grid.RGB{R: 220, G: 180, B: 90})
	rect := fullRect()

	var img Image
	for i := 0; i < 32; i++ {
		img.Update(g, rect, &cfg)
	}
	before := append([]Cell(nil), img.Cells()...)

	// Shrink the rectangle to nothing: every edge sample is now outside the
	// letterbox, so no cell should see its state driven toward black.
	empty := letterbox.Rect{Left: 1, Right: 0, Top: 1, Bottom: 0}
	img.Update(g, empty, &cfg)

	for i, c := range img.Cells() {
		if c.R != before[i].R || c.G != before[i].G || c.B != before[i].B {
			t.Fatalf("cell %d changed after rectangle collapsed: before=%+v after=%+v", i, before[i], c)
		}
	}
}

// TestResizePreservesOverlappingState checks that growing ImgWid/ImgHigh
// does not reset the integrator accumulators of cells that still exist
// after the resize, consistent with the no-reset-on-rectangle-change rule
// extended to live tunable resizing.
func TestResizePreservesOverlappingState(t *testing.T) {
	cfg := config.Default(nil)
	cfg.ImgWid, cfg.ImgHigh = 8, 8
	cfg.FactorI = 128

	g := solidGrid(grid.RGB{R: 128, G: 64, B: 32})
	rect := fullRect()

	var img Image
	for i := 0; i < 16; i++ {
		img.Update(g, rect, &cfg)
	}

	before := append([]Cell(nil), img.Cells()...)

	// Grow the image with an empty rectangle, so no cell is recomputed and
	// any change to a surviving cell could only come from the resize.
	cfg.ImgWid, cfg.ImgHigh = 12, 12
	img.Update(g, letterbox.Rect{Left: 1, Right: 0, Top: 1, Bottom: 0}, &cfg)

	want := int(2*cfg.ImgWid + 2*cfg.ImgHigh)
	if img.Len() != want {
		t.Fatalf("Len() after resize = %d, want %d", img.Len(), want)
	}
	cells := img.Cells()
	for i := range before {
		if cells[i] != before[i] {
			t.Fatalf("cell %d = %+v after resize, want %+v", i, cells[i], before[i])
		}
	}
}
