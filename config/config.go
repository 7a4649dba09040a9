/*
DESCRIPTION
  config.go contains the fixed design constants and the Config struct holding
  the mutable, process-wide tunables for an ambilight pipeline instance.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package config contains the configuration settings for an ambilight
// pipeline: the fixed grid/strip size constants and the mutable tunables
// that the console, IR remote and nonvolatile store may change at runtime.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Fixed design constants (compile-time bounds on the data model).
const (
	// SlotsX and SlotsY define the coarse spatial grid resolution that the
	// capture stage reduces each field pair into.
	SlotsX = 64
	SlotsY = 40

	// LEDsXMax and LEDsYMax bound the physical LED strip length along each
	// axis; LEDsMax is the total number of LEDs around the perimeter.
	LEDsXMax = 96
	LEDsYMax = 60
	LEDsMax  = 2 * (LEDsXMax + LEDsYMax)

	// DelayLen is the maximum frame delay held in the delay ring.
	DelayLen = 20

	// DynWin is the maximum letterbox inset searched from each edge.
	DynWin = 10

	// BlackShift is the hysteresis above the dynamic black floor used when
	// deciding whether a row/column belongs to the non-black picture area.
	BlackShift = 10

	// MaxIControl is the integral-smoother's fixed-point divisor (see
	// vimage.Controller).
	MaxIControl = 128
)

// Video source selectors, mirroring TVP5150selectVideoSource in the
// original firmware.
const (
	VideoSourceAuto = iota
	VideoSource1
	VideoSource2
)

// Config holds the mutable, process-wide tunables that are read by the
// pipeline at the start of each stage. Changes made by the console, IR
// remote or nonvolatile store become visible to the foreground loop at the
// next frame boundary; the design tolerates a one-frame skew.
type Config struct {
	// Picture-quality registers forwarded to the external video decoder.
	Brightness uint
	Hue        int
	Saturation uint
	Contrast   int
	AGC        bool

	// Crop rectangle in decoder pixel coordinates.
	CropLeft   uint
	CropTop    uint
	CropWidth  uint
	CropHeight uint

	// ImgWid and ImgHigh size the virtual image (vimage.Image); each must
	// not exceed SlotsX/SlotsY respectively.
	ImgWid  uint
	ImgHigh uint

	// LEDsX and LEDsY give the physical LED counts along each axis; each
	// must not exceed LEDsXMax/LEDsYMax.
	LEDsX uint
	LEDsY uint

	// FrameWidth is the edge-sampling depth in slots, valid in [1,11].
	FrameWidth uint

	// FactorI is the integral smoother's gain, valid in [1,128].
	FactorI uint

	// Delay is the frame delay applied by the delay ring, valid in
	// [0,DelayLen-1].
	Delay uint

	// FramesLimit is the letterbox detector's moving-average window in
	// frames, valid in [0,200]. A value of 0 disables the detector.
	FramesLimit uint

	// VideoSource selects which of the two decoder inputs is active, or
	// VideoSourceAuto to let signal loss drive automatic switching.
	VideoSource uint8

	// Logger holds the logging implementation used throughout the
	// pipeline. It may be nil, in which case nothing is logged.
	Logger logging.Logger

	// LogLevel is the pipeline logging verbosity level. Valid values are
	// defined by the logging package: logging.Debug, logging.Info,
	// logging.Warning, logging.Error, logging.Fatal.
	LogLevel int8

	// Suppress holds the logger suppression state.
	Suppress bool
}

// LogInvalidField logs that a tunable was bad or unset and is being
// defaulted, mirroring revid/config.Config.LogInvalidField.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// Validate checks for errors in the config fields and defaults settings
// where particular parameters have not been sensibly defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their
// corresponding string values, and applies them to the Config. Range
// checking is done by Validate, which replaces an out-of-range value with a
// fixed fallback value rather than clamping it to the nearest bound. This is
// the entry point used by the console and by nonvolatile restore.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// Default returns a Config populated with the firmware's documented
// defaults (ambiLight.c / tvp5150_dcmi.c).
func Default(l logging.Logger) Config {
	return Config{
		Brightness:  60,
		Hue:         0,
		Saturation:  100,
		Contrast:    80,
		AGC:         true,
		CropLeft:    160,
		CropTop:     16,
		CropWidth:   696,
		CropHeight:  274,
		ImgWid:      SlotsX,
		ImgHigh:     SlotsY,
		LEDsX:       30,
		LEDsY:       20,
		FrameWidth:  4,
		FactorI:     32,
		Delay:       0,
		FramesLimit: 100,
		VideoSource: VideoSourceAuto,
		Logger:      l,
		LogLevel:    logging.Info,
	}
}
