/*
DESCRIPTION
  capture.go implements the capture stage of the ambilight pipeline: DMA-style
  line ingest (stage A) demultiplexing BT.656 YCbCr tuples into the coarse
  slot accumulator, and the vertical-sync handler (stage B) that alternates
  the left/right capture half and converts completed halves to RGB.

  This package models the interrupt-context work of the original firmware
  (DMA2_Stream1_IRQHandler and DCMI_IRQHandler in tvp5150_dcmi.c) as plain
  methods invoked by whatever drives the hardware or a test harness; the
  register-level DMA/DCMI configuration itself is out of scope (spec
  section 1) and is not reproduced here.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package capture implements line ingest and field-boundary handling for an
// ambilight pipeline: it demultiplexes a BT.656 4:2:2 YCbCr pixel stream
// into the coarse slot grid described by the grid package.
package capture

import (
	"errors"
	"sync/atomic"

	"github.com/ausocean/utils/logging"

	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/grid"
)

// pkg is prefixed to log messages to indicate package of origin.
const pkg = "capture: "

// Tuple is one BT.656 4:2:2 sample: two luma samples and the shared chroma
// pair, in wire order Cb, Y0, Cr, Y1. Cb and Cr are excess-128; Tuple keeps
// them in that raw form, as read straight off the bus.
type Tuple struct {
	Cb, Y0, Cr, Y1 byte
}

// Half identifies which side of the picture is currently being captured.
type Half int32

const (
	// HalfLeft and HalfRight are the two alternating capture halves. Their
	// exact physical mapping is a property of the crop-window driver; the
	// capture stage only needs to know that one half is even and the other
	// odd in sequence.
	HalfLeft Half = iota
	HalfRight
)

// errEmptyLine is returned by IngestLine when given a zero-length buffer;
// this indicates a capture fault upstream (FIFO overflow or decoder error)
// rather than a programming error in the caller.
var errEmptyLine = errors.New("capture: empty line buffer")

// Capturer accumulates BT.656 line data into a grid.Accumulator and, on each
// vertical sync, converts the half that just finished capturing into a
// grid.Grid. It owns the accumulator exclusively; only the vsync handler may
// read a half's accumulator cells, and only after that half has stopped
// being written.
type Capturer struct {
	cfg *config.Config
	log logging.Logger

	acc grid.Accumulator
	out grid.Grid

	half Half // atomic: half currently being written by IngestLine

	rowCursor int // slot row currently addressed by the line cursor
	rowCarry  int // Bresenham carry for the row (line) cursor

	frameReady atomic.Bool
}

// New returns a Capturer bound to cfg. cfg.CropHeight must be non-zero
// before IngestLine is called; Capture stops advancing rows otherwise.
func New(cfg *config.Config, log logging.Logger) *Capturer {
	return &Capturer{cfg: cfg, log: log}
}

// Half returns the half currently being captured into.
func (c *Capturer) Half() Half { return Half(atomic.LoadInt32((*int32)(&c.half))) }

// IngestLine distributes one half-line's worth of BT.656 tuples into the
// slot accumulator row currently addressed by the row cursor, following the
// Bresenham column-accumulator rule of spec section 4.1: a local counter
// adds SlotsX/2 per tuple, and on overflow past len(line) the column cursor
// advances.
//
// On a capture fault (FIFO overflow or decoder error reported by the
// caller), CaptureFault should be called instead of IngestLine; the
// in-progress half's accumulator is reset and capture continues at the next
// vertical sync, per spec section 4.1's failure contract.
func (c *Capturer) IngestLine(line []Tuple) error {
	dmaWidth := len(line)
	if dmaWidth == 0 {
		return errEmptyLine
	}

	row := c.rowCursor
	if row >= grid.Height {
		// Bresenham invariant proves this unreachable for a stable
		// CropHeight; clamp defensively since CropHeight may change
		// between the crop reconfiguration and the next vsync reset.
		row = grid.Height - 1
	}

	half := c.Half()
	colBase := 0
	if half == HalfRight {
		colBase = grid.Width / 2
	}

	col := colBase
	colMax := colBase + grid.Width/2 - 1
	carry := 0
	for _, t := range line {
		y := int64(t.Y0) + int64(t.Y1)
		cb := int64(t.Cb) - 128
		cr := int64(t.Cr) - 128
		c.acc.Add(row, col, y, cb, cr)

		carry += grid.Width / 2
		if carry >= dmaWidth {
			carry -= dmaWidth
			if col < colMax {
				col++
			}
		}
	}

	cropHeight := int(c.cfg.CropHeight)
	if cropHeight > 0 {
		c.rowCarry += grid.Height
		if c.rowCarry >= cropHeight {
			c.rowCarry -= cropHeight
			c.rowCursor++
		}
	}

	return nil
}

// CaptureFault discards the currently capturing half's accumulator after a
// transient capture fault (FIFO overflow or decoder error). Capture resumes
// normally at the next vertical sync.
func (c *Capturer) CaptureFault(err error) {
	if c.log != nil {
		c.log.Warning(pkg+"capture fault, discarding half", "error", err.Error())
	}

	colStart, colEnd := 0, grid.Width/2
	if c.Half() == HalfRight {
		colStart, colEnd = grid.Width/2, grid.Width
	}
	c.acc.ClearCols(colStart, colEnd)
	c.rowCursor = 0
	c.rowCarry = 0
}

// VSync handles a vertical-sync rising edge (spec section 4.2): it swaps
// which half will be captured next, then converts the half that just
// finished capturing from YCbCr sums into RGB slots, clearing its
// accumulator cells. The frame-ready flag is raised only when the left half
// has just completed, giving the foreground a single atomic handoff per
// pair of field captures.
func (c *Capturer) VSync() {
	justCompleted := c.Half()
	next := HalfRight
	if justCompleted == HalfRight {
		next = HalfLeft
	}
	atomic.StoreInt32((*int32)(&c.half), int32(next))

	colStart, colEnd := 0, grid.Width/2
	if justCompleted == HalfRight {
		colStart, colEnd = grid.Width/2, grid.Width
	}
	c.out.ConvertHalf(&c.acc, colStart, colEnd)

	c.rowCursor = 0
	c.rowCarry = 0

	if justCompleted == HalfLeft {
		c.frameReady.Store(true)
	}
}

// TakeFrameReady atomically reads and clears the frame-ready flag. The
// foreground must call this before reading the RGB grid, per the ownership
// discipline of spec section 5.
func (c *Capturer) TakeFrameReady() bool {
	return c.frameReady.Swap(false)
}

// Grid returns the RGB slot grid most recently produced by VSync. It must
// only be read by the foreground after TakeFrameReady has returned true.
func (c *Capturer) Grid() *grid.Grid { return &c.out }
