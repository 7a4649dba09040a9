/*
DESCRIPTION
  letterbox_test.go exercises the dynamic letterbox detector against the
  spec section 8 end-to-end scenarios.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package letterbox

import (
	"testing"

	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/grid"
)

// letterboxedGrid returns a grid with the given number of black rows at the
// top and bottom, white everywhere else.
func letterboxedGrid(topBlack, bottomBlack int) *grid.Grid {
	var g grid.Grid
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if y < topBlack || y >= grid.Height-bottomBlack {
				g[y][x] = grid.RGB{R: 0, G: 0, B: 0}
			} else {
				g[y][x] = grid.RGB{R: 254, G: 254, B: 254}
			}
		}
	}
	return &g
}

// TestFullLetterbox is spec section 8 scenario 2: 8 rows black top and
// bottom, framesLimit=100. After 100 frames dynTop=8, dynBottom=31 (the
// last lit row, found by the upward bottom scan), dynLeft=0, dynRight=63.
func TestFullLetterbox(t *testing.T) {
	cfg := &config.Config{FramesLimit: 100}
	d := New(cfg)
	g := letterboxedGrid(8, 8)

	for i := 0; i < 100; i++ {
		d.Update(g)
	}

	r := d.Rect()
	if r.Top != 8 {
		t.Errorf("Top = %d, want 8", r.Top)
	}
	if r.Bottom != grid.Height-1-8 {
		t.Errorf("Bottom = %d, want %d", r.Bottom, grid.Height-1-8)
	}
	if r.Left != 0 {
		t.Errorf("Left = %d, want 0", r.Left)
	}
	if r.Right != grid.Width-1 {
		t.Errorf("Right = %d, want %d", r.Right, grid.Width-1)
	}
}

// TestFramesLimitZeroDisablesDetector checks spec section 4.3: FramesLimit
// 0 fixes the rectangle at the full grid regardless of content.
func TestFramesLimitZeroDisablesDetector(t *testing.T) {
	cfg := &config.Config{FramesLimit: 0}
	d := New(cfg)
	g := letterboxedGrid(15, 15)
	d.Update(g)

	r := d.Rect()
	want := Rect{Left: 0, Right: grid.Width - 1, Top: 0, Bottom: grid.Height - 1}
	if r != want {
		t.Errorf("Rect = %+v, want %+v", r, want)
	}
}

// TestRectInvariant checks the spec section 8 invariant holds after many
// frames of varying content.
func TestRectInvariant(t *testing.T) {
	cfg := &config.Config{FramesLimit: 20}
	d := New(cfg)
	for i := 0; i < 50; i++ {
		g := letterboxedGrid(i%12, (i*2)%12)
		d.Update(g)
		r := d.Rect()
		if !(0 <= r.Left && r.Left <= r.Right && r.Right < grid.Width) {
			t.Fatalf("X invariant violated: %+v", r)
		}
		if !(0 <= r.Top && r.Top <= r.Bottom && r.Bottom < grid.Height) {
			t.Fatalf("Y invariant violated: %+v", r)
		}
	}
}

// TestSpreadReflectsUniformPicture checks that a fully uniform frame (no
// letterboxing) settles to zero variance across both axes.
func TestSpreadReflectsUniformPicture(t *testing.T) {
	cfg := &config.Config{FramesLimit: 50}
	d := New(cfg)
	g := letterboxedGrid(0, 0)
	for i := 0; i < 50; i++ {
		d.Update(g)
	}

	rs := d.RowSpread()
	cs := d.ColSpread()
	if rs.Variance != 0 {
		t.Errorf("RowSpread().Variance = %v, want 0 for a uniform frame", rs.Variance)
	}
	if cs.Variance != 0 {
		t.Errorf("ColSpread().Variance = %v, want 0 for a uniform frame", cs.Variance)
	}
}

// TestSpreadDetectsLetterboxEdges checks that a letterboxed frame produces
// nonzero row variance (the black bars stand out from the bright picture
// area) while the column averages, unaffected by top/bottom bars, stay
// uniform.
func TestSpreadDetectsLetterboxEdges(t *testing.T) {
	cfg := &config.Config{FramesLimit: 50}
	d := New(cfg)
	g := letterboxedGrid(8, 8)
	for i := 0; i < 50; i++ {
		d.Update(g)
	}

	rs := d.RowSpread()
	if rs.Variance <= 0 {
		t.Errorf("RowSpread().Variance = %v, want > 0 for a letterboxed frame", rs.Variance)
	}

	cs := d.ColSpread()
	if cs.Variance != 0 {
		t.Errorf("ColSpread().Variance = %v, want 0: columns are unaffected by top/bottom bars", cs.Variance)
	}
}
