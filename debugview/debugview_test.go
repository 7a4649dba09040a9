//go:build withcv
// +build withcv

/*
DESCRIPTION
  debugview_test.go checks that the gocv Mat conversions used by View.Show
  produce images of the expected dimensions; it does not exercise the
  window event loop, which needs a display.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package debugview

import (
	"testing"

	"github.com/pitschu/ambilight/grid"
	"github.com/pitschu/ambilight/vimage"
)

func TestGridToMatDimensions(t *testing.T) {
	var g grid.Grid
	mat := gridToMat(&g)
	defer mat.Close()

	if mat.Cols() != grid.Width || mat.Rows() != grid.Height {
		t.Fatalf("gridToMat dims = %dx%d, want %dx%d", mat.Cols(), mat.Rows(), grid.Width, grid.Height)
	}
}

func TestCellsToMatDimensions(t *testing.T) {
	cells := make([]vimage.Cell, 12)
	mat := cellsToMat(cells)
	defer mat.Close()

	if mat.Cols() != len(cells) || mat.Rows() != 1 {
		t.Fatalf("cellsToMat dims = %dx%d, want %dx1", mat.Cols(), mat.Rows(), len(cells))
	}
}
