/*
DESCRIPTION
  variables.go contains the list of tunables that may be changed at runtime
  by the console or the IR remote, along with the code to parse and
  range-check each one. An out-of-range value is replaced by a fixed
  fallback (the field's default, or its maximum for Brightness, ImgWid and
  ImgHigh); it is
  not clamped to the nearest bound. Mnemonics match the single-character console command set of
  spec section 6 (F hue, S saturation, B brightness, C contrast, L/W crop
  left/width, T/H crop top/height, I integral factor, X/Y virtual image
  size, P/R physical LED counts, E frame width, M delay, A AGC, G dynamic
  frames limit).

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package config

import (
	"strconv"
)

// Config map keys. These double as the console's parameter mnemonics are
// mapped onto these names by the console package.
const (
	KeyBrightness  = "Brightness"
	KeyHue         = "Hue"
	KeySaturation  = "Saturation"
	KeyContrast    = "Contrast"
	KeyAGC         = "AGC"
	KeyCropLeft    = "CropLeft"
	KeyCropTop     = "CropTop"
	KeyCropWidth   = "CropWidth"
	KeyCropHeight  = "CropHeight"
	KeyImgWid      = "ImgWid"
	KeyImgHigh     = "ImgHigh"
	KeyLEDsX       = "LEDsX"
	KeyLEDsY       = "LEDsY"
	KeyFrameWidth  = "FrameWidth"
	KeyFactorI     = "FactorI"
	KeyDelay       = "Delay"
	KeyFramesLimit = "FramesLimit"
	KeyVideoSource = "VideoSource"
)

// Variables describes the tunables that can be used for pipeline control.
// Each entry provides the name, a function for updating this variable in a
// Config from its string representation, and a function for validating
// the resulting field value, which replaces an out-of-range value with a
// fixed fallback value instead of clamping it.
var Variables = []struct {
	Name     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyBrightness,
		Update: func(c *Config, v string) { c.Brightness = parseUint(KeyBrightness, v, c) },
		Validate: func(c *Config) {
			if c.Brightness == 0 || c.Brightness > 100 {
				c.LogInvalidField(KeyBrightness, 100)
				c.Brightness = 100
			}
		},
	},
	{
		Name:   KeyHue,
		Update: func(c *Config, v string) { c.Hue = parseInt(KeyHue, v, c) },
		Validate: func(c *Config) {
			if c.Hue < -128 || c.Hue > 127 {
				c.LogInvalidField(KeyHue, 0)
				c.Hue = 0
			}
		},
	},
	{
		Name:   KeySaturation,
		Update: func(c *Config, v string) { c.Saturation = parseUint(KeySaturation, v, c) },
		Validate: func(c *Config) {
			if c.Saturation > 200 {
				c.LogInvalidField(KeySaturation, 100)
				c.Saturation = 100
			}
		},
	},
	{
		Name:   KeyContrast,
		Update: func(c *Config, v string) { c.Contrast = parseInt(KeyContrast, v, c) },
		Validate: func(c *Config) {
			if c.Contrast < 0 || c.Contrast > 127 {
				c.LogInvalidField(KeyContrast, 80)
				c.Contrast = 80
			}
		},
	},
	{
		Name:   KeyAGC,
		Update: func(c *Config, v string) { c.AGC = parseBool(KeyAGC, v, c) },
	},
	{
		Name:   KeyCropLeft,
		Update: func(c *Config, v string) { c.CropLeft = parseUint(KeyCropLeft, v, c) },
	},
	{
		Name:   KeyCropTop,
		Update: func(c *Config, v string) { c.CropTop = parseUint(KeyCropTop, v, c) },
	},
	{
		Name:   KeyCropWidth,
		Update: func(c *Config, v string) { c.CropWidth = parseUint(KeyCropWidth, v, c) },
		Validate: func(c *Config) {
			if c.CropWidth == 0 {
				c.LogInvalidField(KeyCropWidth, 696)
				c.CropWidth = 696
			}
		},
	},
	{
		Name:   KeyCropHeight,
		Update: func(c *Config, v string) { c.CropHeight = parseUint(KeyCropHeight, v, c) },
		Validate: func(c *Config) {
			if c.CropHeight == 0 {
				c.LogInvalidField(KeyCropHeight, 274)
				c.CropHeight = 274
			}
		},
	},
	{
		Name:   KeyImgWid,
		Update: func(c *Config, v string) { c.ImgWid = parseUint(KeyImgWid, v, c) },
		Validate: func(c *Config) {
			if c.ImgWid == 0 || c.ImgWid > SlotsX {
				c.LogInvalidField(KeyImgWid, SlotsX)
				c.ImgWid = SlotsX
			}
		},
	},
	{
		Name:   KeyImgHigh,
		Update: func(c *Config, v string) { c.ImgHigh = parseUint(KeyImgHigh, v, c) },
		Validate: func(c *Config) {
			if c.ImgHigh == 0 || c.ImgHigh > SlotsY {
				c.LogInvalidField(KeyImgHigh, SlotsY)
				c.ImgHigh = SlotsY
			}
		},
	},
	{
		Name:   KeyLEDsX,
		Update: func(c *Config, v string) { c.LEDsX = parseUint(KeyLEDsX, v, c) },
		Validate: func(c *Config) {
			if c.LEDsX == 0 || c.LEDsX > LEDsXMax {
				c.LogInvalidField(KeyLEDsX, 30)
				c.LEDsX = 30
			}
		},
	},
	{
		Name:   KeyLEDsY,
		Update: func(c *Config, v string) { c.LEDsY = parseUint(KeyLEDsY, v, c) },
		Validate: func(c *Config) {
			if c.LEDsY == 0 || c.LEDsY > LEDsYMax {
				c.LogInvalidField(KeyLEDsY, 20)
				c.LEDsY = 20
			}
		},
	},
	{
		Name:   KeyFrameWidth,
		Update: func(c *Config, v string) { c.FrameWidth = parseUint(KeyFrameWidth, v, c) },
		Validate: func(c *Config) {
			if c.FrameWidth < 1 || c.FrameWidth > 11 {
				c.LogInvalidField(KeyFrameWidth, 4)
				c.FrameWidth = 4
			}
		},
	},
	{
		Name:   KeyFactorI,
		Update: func(c *Config, v string) { c.FactorI = parseUint(KeyFactorI, v, c) },
		Validate: func(c *Config) {
			if c.FactorI < 1 || c.FactorI > MaxIControl {
				c.LogInvalidField(KeyFactorI, 32)
				c.FactorI = 32
			}
		},
	},
	{
		Name:   KeyDelay,
		Update: func(c *Config, v string) { c.Delay = parseUint(KeyDelay, v, c) },
		Validate: func(c *Config) {
			if c.Delay > DelayLen-1 {
				c.LogInvalidField(KeyDelay, 0)
				c.Delay = 0
			}
		},
	},
	{
		Name:   KeyFramesLimit,
		Update: func(c *Config, v string) { c.FramesLimit = parseUint(KeyFramesLimit, v, c) },
		Validate: func(c *Config) {
			if c.FramesLimit > 200 {
				c.LogInvalidField(KeyFramesLimit, 100)
				c.FramesLimit = 100
			}
		},
	},
	{
		Name: KeyVideoSource,
		Update: func(c *Config, v string) {
			c.VideoSource = uint8(parseUint(KeyVideoSource, v, c))
		},
		Validate: func(c *Config) {
			if c.VideoSource > VideoSource2 {
				c.LogInvalidField(KeyVideoSource, VideoSourceAuto)
				c.VideoSource = VideoSourceAuto
			}
		},
	},
}

// parseUint parses v as an unsigned integer, logging and defaulting to 0 on
// failure so that Validate can apply the field's proper default afterwards.
func parseUint(name, v string, c *Config) uint {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.LogInvalidField(name, 0)
		return 0
	}
	return uint(n)
}

// parseInt parses v as a signed integer, logging and defaulting to 0 on
// failure.
func parseInt(name, v string, c *Config) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		c.LogInvalidField(name, 0)
		return 0
	}
	return n
}

// parseBool parses v as a boolean, logging and defaulting to false on
// failure.
func parseBool(name, v string, c *Config) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.LogInvalidField(name, false)
		return false
	}
	return b
}
