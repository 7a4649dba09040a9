/*
DESCRIPTION
  diagnostics_test.go checks that RenderLetterbox produces its row and
  column PNG files without error for a representative set of curves.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package diagnostics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pitschu/ambilight/letterbox"
)

func TestRenderLetterboxWritesPNG(t *testing.T) {
	rowAvgs := make([]float64, 40)
	colAvgs := make([]float64, 64)
	for i := range rowAvgs {
		rowAvgs[i] = 100
	}
	for i := 8; i < 32; i++ {
		rowAvgs[i] = 900
	}
	for i := range colAvgs {
		colAvgs[i] = 900
	}

	rect := letterbox.Rect{Left: 0, Right: 63, Top: 8, Bottom: 31}

	path := filepath.Join(t.TempDir(), "letterbox.png")
	if err := RenderLetterbox(rowAvgs, colAvgs, rect, path); err != nil {
		t.Fatalf("RenderLetterbox: %v", err)
	}

	for _, p := range []string{suffixed(path, "-rows"), suffixed(path, "-cols")} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat output file: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("output PNG %s is empty", p)
		}
	}
}
