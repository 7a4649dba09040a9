/*
DESCRIPTION
  letterbox.go implements the dynamic letterbox detector (spec section 4.3):
  draining moving averages of per-row and per-column luminance sum and
  contrast, a dynamic black floor, and the edge search that locates the
  non-black picture area's bounding rectangle.

  Grounded on ambiLightSlots2Dyn in ambiLight.c; the draining-accumulator
  divide-and-subtract idiom and the edge-search stopping rules are kept
  bit-exact, including the original's asymmetric bottom/right scan ranges
  (DynWin iterations from the top/left, DynWin-1 from the bottom/right).

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package letterbox locates the non-black active-picture rectangle within
// the coarse RGB slot grid by integrating row/column luminance statistics
// over a rolling window of frames.
package letterbox

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/grid"
)

// Stat holds one row's or column's moving-average luminance statistics:
// spec data model entity 4.
type Stat struct {
	intAvg, intContrast int64 // draining accumulators

	Avg, Contrast        int64
	AvgChange, ConChange int64
}

// Rect is the letterbox rectangle of spec data model entity 5: the active
// picture bounding box in slot coordinates. Invariants:
// 0 <= Left <= Right < grid.Width and 0 <= Top <= Bottom < grid.Height.
type Rect struct {
	Left, Right, Top, Bottom int
}

// Detector tracks row/column luminance statistics across frames and derives
// the current letterbox Rect.
type Detector struct {
	cfg *config.Config

	rows [grid.Height]Stat
	cols [grid.Width]Stat

	framesIntegrated uint
	blackLevel       int64
	blackLevelInt    int64

	rect Rect
}

// New returns a Detector bound to cfg, with the rectangle initialised to
// the full grid (no letterbox assumed until the first Update).
func New(cfg *config.Config) *Detector {
	return &Detector{
		cfg:  cfg,
		rect: Rect{Left: 0, Right: grid.Width - 1, Top: 0, Bottom: grid.Height - 1},
	}
}

// Rect returns the current letterbox rectangle.
func (d *Detector) Rect() Rect { return d.rect }

// BlackLevel returns the current dynamic black floor.
func (d *Detector) BlackLevel() int64 { return d.blackLevel }

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Update folds one frame's RGB slot grid into the moving averages and
// recomputes the letterbox rectangle. If FramesLimit is 0 the detector is
// disabled and the rectangle fixes at the full grid.
func (d *Detector) Update(g *grid.Grid) {
	limit := int64(d.cfg.FramesLimit)
	if limit == 0 {
		d.rect = Rect{Left: 0, Right: grid.Width - 1, Top: 0, Bottom: grid.Height - 1}
		return
	}

	if int64(d.framesIntegrated) < limit {
		d.framesIntegrated++
	}
	integrated := int64(d.framesIntegrated) >= limit

	var blackFloor int64 = 1<<62 - 1

	// Row statistics, for the top/bottom borders.
	for y := 0; y < grid.Height; y++ {
		var minRGB, maxRGB, sumRGB int64
		minRGB = 0xffff
		for x := 0; x < grid.Width; x++ {
			px := g[y][x]
			s := int64(px.R) + int64(px.G) + int64(px.B)
			if s < minRGB {
				minRGB = s
			}
			if s > maxRGB {
				maxRGB = s
			}
			sumRGB += s
		}

		st := &d.rows[y]
		st.intContrast += maxRGB - minRGB
		st.intAvg += sumRGB / grid.Width

		if integrated {
			st.Avg = st.intAvg / limit
			st.intAvg -= st.Avg
			st.Contrast = st.intContrast / limit
			st.intContrast -= st.Contrast
		}

		if st.Avg < blackFloor {
			blackFloor = st.Avg
		}

		if y > 0 {
			st.AvgChange = st.Avg - d.rows[y-1].Avg
			st.ConChange = st.Contrast - d.rows[y-1].Contrast
		}
	}

	d.blackLevelInt += blackFloor
	if integrated {
		d.blackLevel = d.blackLevelInt / limit
		d.blackLevelInt -= d.blackLevel
	}

	threshold := d.blackLevel + config.BlackShift

	top := d.rect.Top
	k := int64(0)
	for y := 0; y < config.DynWin; y++ {
		if d.rows[y].Avg >= threshold {
			top = y
			break
		}
		i := abs64(d.rows[y].AvgChange)
		if i > k {
			k = i
			top = y
		}
	}
	d.rect.Top = top

	bottom := d.rect.Bottom
	k = 0
	for y := grid.Height - 1; y > grid.Height-config.DynWin; y-- {
		if d.rows[y].Avg >= threshold {
			bottom = y
			break
		}
		i := abs64(d.rows[y].AvgChange)
		if i > k {
			k = i
			bottom = y - 1
		}
	}
	d.rect.Bottom = bottom

	// Column statistics, for the left/right borders.
	for x := 0; x < grid.Width; x++ {
		var minRGB, maxRGB, sumRGB int64
		minRGB = 0xffff
		for y := 0; y < grid.Height; y++ {
			px := g[y][x]
			s := int64(px.R) + int64(px.G) + int64(px.B)
			if s < minRGB {
				minRGB = s
			}
			if s > maxRGB {
				maxRGB = s
			}
			sumRGB += s
		}

		st := &d.cols[x]
		st.intContrast += maxRGB - minRGB
		st.intAvg += sumRGB / grid.Width

		if integrated {
			st.Avg = st.intAvg / limit
			st.intAvg -= st.Avg
			st.Contrast = st.intContrast / limit
			st.intContrast -= st.Contrast
		}

		if x > 0 {
			st.AvgChange = st.Avg - d.cols[x-1].Avg
			st.ConChange = st.Contrast - d.cols[x-1].Contrast
		}
	}

	left := d.rect.Left
	k = 0
	for x := 0; x < config.DynWin; x++ {
		if d.cols[x].Avg >= threshold {
			left = x
			break
		}
		i := abs64(d.cols[x].AvgChange)
		if i > k {
			k = i
			left = x
		}
	}
	d.rect.Left = left

	right := d.rect.Right
	k = 0
	for x := grid.Width - 1; x > grid.Width-config.DynWin; x-- {
		if d.cols[x].Avg >= threshold {
			right = x
			break
		}
		i := abs64(d.cols[x].AvgChange)
		if i > k {
			k = i
			right = x - 1
		}
	}
	d.rect.Right = right
}

// RowAverages returns a copy of the current per-row luminance averages, for
// use by diagnostics rendering; it is not consulted by the core algorithm.
func (d *Detector) RowAverages() []float64 {
	out := make([]float64, grid.Height)
	for i, s := range d.rows {
		out[i] = float64(s.Avg)
	}
	return out
}

// ColAverages returns a copy of the current per-column luminance averages,
// for use by diagnostics rendering.
func (d *Detector) ColAverages() []float64 {
	out := make([]float64, grid.Width)
	for i, s := range d.cols {
		out[i] = float64(s.Avg)
	}
	return out
}

// Spread is a diagnostic summary of how unevenly luminance is distributed
// across rows or columns, used to judge whether the dynamic black floor is
// tracking a stable picture or a noisy one.
type Spread struct {
	Mean, Variance float64
}

// RowSpread summarizes the current row averages; it has no bearing on the
// rectangle computed by Update and exists only for diagnostics rendering.
func (d *Detector) RowSpread() Spread {
	avgs := d.RowAverages()
	mean, variance := stat.MeanVariance(avgs, nil)
	return Spread{Mean: mean, Variance: variance}
}

// ColSpread summarizes the current column averages; see RowSpread.
func (d *Detector) ColSpread() Spread {
	avgs := d.ColAverages()
	mean, variance := stat.MeanVariance(avgs, nil)
	return Spread{Mean: mean, Variance: variance}
}
