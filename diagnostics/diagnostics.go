/*
DESCRIPTION
  diagnostics.go renders the letterbox detector's row and column luminance
  curves, plus the detected rectangle, to two PNGs for offline debugging -
  the Go-native equivalent of the firmware's ambiLightPrintDynInfos UART
  dump, but as a picture instead of a register printout.

  Grounded on the exp/ tools' standalone-program style in the teacher
  repo; gonum/plot is the teacher's own charting dependency (already
  required for other diagnostic tooling in the retrieved examples).

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package diagnostics renders the letterbox detector's internal state to
// PNG images, for debugging the dynamic rectangle search offline.
package diagnostics

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pitschu/ambilight/letterbox"
)

// RenderLetterbox plots rowAvgs and colAvgs as two separate line charts,
// each annotated with a vertical-line pair marking rect's bounds on that
// axis, and writes them as PNGs alongside path (suffixed "-rows"/"-cols"
// before the extension).
func RenderLetterbox(rowAvgs, colAvgs []float64, rect letterbox.Rect, path string) error {
	rowPath, colPath := suffixed(path, "-rows"), suffixed(path, "-cols")

	rowPlot, err := curvePlot("Row luminance", rowAvgs, rect.Top, rect.Bottom)
	if err != nil {
		return fmt.Errorf("diagnostics: row plot: %w", err)
	}
	if err := rowPlot.Save(8*vg.Inch, 4*vg.Inch, rowPath); err != nil {
		return fmt.Errorf("diagnostics: save %s: %w", rowPath, err)
	}

	colPlot, err := curvePlot("Column luminance", colAvgs, rect.Left, rect.Right)
	if err != nil {
		return fmt.Errorf("diagnostics: col plot: %w", err)
	}
	if err := colPlot.Save(8*vg.Inch, 4*vg.Inch, colPath); err != nil {
		return fmt.Errorf("diagnostics: save %s: %w", colPath, err)
	}
	return nil
}

// suffixed inserts suffix before path's file extension.
func suffixed(path, suffix string) string {
	ext := ""
	if i := strings.LastIndex(path, "."); i >= 0 {
		ext = path[i:]
		path = path[:i]
	}
	return path + suffix + ext
}

// curvePlot builds one line chart of avgs against slot index, with
// vertical markers at lo and hi indicating the detected letterbox edges
// on that axis.
func curvePlot(title string, avgs []float64, lo, hi int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "slot"
	p.Y.Label.Text = "luminance sum"

	pts := make(plotter.XYs, len(avgs))
	for i, v := range avgs {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	p.Add(line)

	for _, edge := range []int{lo, hi} {
		marker, err := plotter.NewLine(plotter.XYs{
			{X: float64(edge), Y: 0},
			{X: float64(edge), Y: maxOf(avgs)},
		})
		if err != nil {
			return nil, err
		}
		p.Add(marker)
	}

	return p, nil
}

func maxOf(vs []float64) float64 {
	var m float64
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}
