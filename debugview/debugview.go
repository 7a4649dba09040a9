//go:build withcv
// +build withcv

/*
DESCRIPTION
  debugview.go displays the live RGB slot grid, the detected letterbox
  rectangle, and the scaled virtual image in gocv windows, for watching
  the pipeline work interactively during development.

  Grounded on filter/debug.go's debugWindows (window set owned by a
  small struct, one IMShow per frame, text/rectangle overlays drawn with
  gocv.PutText/gocv.Rectangle) and exp/gocv-exp/main.go's window-per-view
  convention and gocv.WaitKey-driven loop.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package debugview displays the ambilight pipeline's intermediate state
// in gocv windows. It is built only with the withcv tag, since it
// depends on a working OpenCV/GUI toolchain that the headless daemon
// build does not require.
package debugview

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/pitschu/ambilight/grid"
	"github.com/pitschu/ambilight/letterbox"
	"github.com/pitschu/ambilight/vimage"
)

// boxColor is the letterbox rectangle overlay's color, matching
// filter/debug.go's light-red contour color.
var boxColor = color.RGBA{R: 191, G: 31, B: 31, A: 0}

// View owns the gocv windows used to preview the capture grid and
// virtual image, mirroring filter/debug.go's debugWindows.
type View struct {
	windows []*gocv.Window
}

// New opens the preview windows.
func New() *View {
	return &View{
		windows: []*gocv.Window{
			gocv.NewWindow("ambilight: slot grid"),
			gocv.NewWindow("ambilight: virtual image"),
		},
	}
}

// Close frees the windows' resources.
func (v *View) Close() error {
	for _, w := range v.windows {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Show renders g with rect overlaid as a rectangle, and img as a second
// window, then pumps the GUI event loop for one frame. It returns false
// when the user has requested the windows be closed (Escape pressed).
func (v *View) Show(g *grid.Grid, rect letterbox.Rect, img *vimage.Image) bool {
	gridMat := gridToMat(g)
	defer gridMat.Close()

	slotW := gridMat.Cols() / grid.Width
	slotH := gridMat.Rows() / grid.Height
	gocv.Rectangle(&gridMat, image.Rect(rect.Left*slotW, rect.Top*slotH, (rect.Right+1)*slotW, (rect.Bottom+1)*slotH), boxColor, 2)
	gocv.PutText(&gridMat, fmt.Sprintf("rect=%+v", rect), image.Pt(8, 20), gocv.FontHersheyPlain, 1.2, boxColor, 1)

	cellsMat := cellsToMat(img.Cells())
	defer cellsMat.Close()

	v.windows[0].IMShow(gridMat)
	v.windows[1].IMShow(cellsMat)
	return v.windows[0].WaitKey(1) != 27
}

// gridToMat rasterizes g's coarse slot grid into an image, one pixel per
// slot, for display.
func gridToMat(g *grid.Grid) gocv.Mat {
	im := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			px := g[y][x]
			im.SetRGBA(x, y, color.RGBA{R: px.R, G: px.G, B: px.B, A: 255})
		}
	}
	mat, _ := gocv.ImageToMatRGB(im)
	return mat
}

// cellsToMat rasterizes the virtual image's perimeter cell run into a
// single-row strip image, for display.
func cellsToMat(cells []vimage.Cell) gocv.Mat {
	im := image.NewRGBA(image.Rect(0, 0, len(cells), 1))
	for i, c := range cells {
		im.SetRGBA(i, 0, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	mat, _ := gocv.ImageToMatRGB(im)
	return mat
}
