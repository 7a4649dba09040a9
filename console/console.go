/*
DESCRIPTION
  console.go implements the single-character command console of spec
  section 6: a letter selects a tunable, '+'/'-' step it, 'd' restores its
  documented default, and digits select the video source while "V" is
  selected. Every accepted command is checked by Config.Validate so the
  console can never leave a field out of range; Validate replaces an
  out-of-range value with the field's fallback value rather than clamping
  it to the nearest bound.

  Grounded on UserInterface in userinterface.c: the mainStates_e selection
  register, the per-state +/-/d switch, and the percent-bar feedback driven
  through displayOverlayPercents after each change.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package console implements the line-oriented single-character command
// set used to tune a running pipeline interactively.
package console

import (
	"fmt"

	"github.com/pitschu/ambilight/config"
)

// overlayDuration is the tick count a percent bar stays on screen after a
// tunable change, mirroring the "300" argument throughout UserInterface.
const overlayDuration = 300

// defaults holds the firmware's documented defaults, consulted by the 'd'
// command; it is computed once from config.Default so the console never
// duplicates the numbers already recorded there.
var defaults = config.Default(nil)

// mnemonics maps each selectable letter (either case) onto the Config key
// it selects, mirroring the first switch in UserInterface.
var mnemonics = map[byte]string{
	'f': config.KeyHue, 'F': config.KeyHue,
	's': config.KeySaturation, 'S': config.KeySaturation,
	'b': config.KeyBrightness, 'B': config.KeyBrightness,
	'c': config.KeyContrast, 'C': config.KeyContrast,
	'l': config.KeyCropLeft, 'L': config.KeyCropLeft,
	'w': config.KeyCropWidth, 'W': config.KeyCropWidth,
	't': config.KeyCropTop, 'T': config.KeyCropTop,
	'h': config.KeyCropHeight, 'H': config.KeyCropHeight,
	'i': config.KeyFactorI, 'I': config.KeyFactorI,
	'x': config.KeyImgWid, 'X': config.KeyImgWid,
	'y': config.KeyImgHigh, 'Y': config.KeyImgHigh,
	'p': config.KeyLEDsX, 'P': config.KeyLEDsX,
	'r': config.KeyLEDsY, 'R': config.KeyLEDsY,
	'e': config.KeyFrameWidth, 'E': config.KeyFrameWidth,
	'm': config.KeyDelay, 'M': config.KeyDelay,
	'a': config.KeyAGC, 'A': config.KeyAGC,
	'g': config.KeyFramesLimit, 'G': config.KeyFramesLimit,
	'v': config.KeyVideoSource, 'V': config.KeyVideoSource,
}

// stepOf gives the +/- step size for keys whose natural unit is not 1,
// mirroring the cropLeft/captureWidth ±8/±4 steps in UserInterface; keys
// absent from this map step by 1.
var stepOf = map[string]uint{
	config.KeyCropLeft:  8,
	config.KeyCropWidth: 4,
}

// Console tracks the currently selected tunable across successive Handle
// calls, mirroring the UserInterface's static mainState.
type Console struct {
	cfg      *config.Config
	selected string
}

// New returns a Console that edits cfg.
func New(cfg *config.Config) *Console {
	return &Console{cfg: cfg}
}

// Result is the observable effect of one Handle call: text to print plus
// an optional percent-bar overlay request.
type Result struct {
	Output          string
	ShowOverlay     bool
	OverlayPercent  int
	OverlayDuration int
	// ShowInfo asks the caller to print the pipeline's diagnostic summary,
	// mirroring the 'Q' command's call to ambiLightPrintDynInfos.
	ShowInfo bool
}

// Handle processes one input character and returns the console's response.
// It mirrors the two switches in UserInterface: the first selects a
// tunable (or runs a one-shot command), the second applies +/-/d or a
// digit to the selection.
func (c *Console) Handle(ch byte) Result {
	switch ch {
	case 'q', 'Q':
		return Result{ShowInfo: true}
	case '+', '-', 'd':
		return c.applyStep(ch)
	case '0', '1', '2':
		return c.selectVideoSource(ch)
	}

	if key, ok := mnemonics[ch]; ok {
		c.selected = key
		return Result{Output: fmt.Sprintf("Current %s is %v\n", key, c.currentValue())}
	}

	return Result{Output: usage}
}

const usage = "Usage: use +/- keys to set val; d=default\n" +
	"     F=Hue, S=Saturation, B=Brightness, C=Contrast\n" +
	"     L=Left, W=Width, T=Top, H=Height\n" +
	"     I=I-factor of integrator (128 = MAX)\n" +
	"     E=# of slots aggregated for LED strip (1..11)\n" +
	"     X=virtual image width in blocks, Y=height in blocks\n" +
	"     P=physical LEDs along X, R=physical LEDs along Y\n" +
	"     M=frame delay, A=AGC on/off, G=dynamic frames limit\n" +
	"     V=select video source, then 0 (auto), 1 or 2\n" +
	"     Q=show info about dynamic matrix\n"

// applyStep applies '+'/'-'/'d' to the currently selected tunable, then
// validates and returns a percent-bar overlay request, mirroring the
// second switch in UserInterface plus its displayOverlayPercents calls.
func (c *Console) applyStep(ch byte) Result {
	if c.selected == "" {
		return Result{Output: usage}
	}

	step := int(stepOf[c.selected])
	if step == 0 {
		step = 1
	}

	switch ch {
	case '+':
		c.adjust(step)
	case '-':
		c.adjust(-step)
	case 'd':
		c.restoreDefault()
	}
	c.cfg.Validate()

	percent := c.percent()
	return Result{
		Output:          fmt.Sprintf("%s is %v\n", c.selected, c.currentValue()),
		ShowOverlay:     true,
		OverlayPercent:  percent,
		OverlayDuration: overlayDuration,
	}
}

// selectVideoSource handles a digit while "V" is selected, mirroring the
// '0'/'1'/'2' case in UserInterface: 0 means auto-select, 1 and 2 pin the
// input to a specific physical source.
func (c *Console) selectVideoSource(ch byte) Result {
	if c.selected != config.KeyVideoSource {
		return Result{Output: usage}
	}
	src := uint(ch - '0')
	c.cfg.Update(map[string]string{config.KeyVideoSource: fmt.Sprint(src)})
	c.cfg.Validate()
	return Result{Output: fmt.Sprintf("Video source mode is %d\n", c.cfg.VideoSource)}
}

// adjust nudges the selected field by delta; range checking is left to the
// subsequent Validate call, which resets an out-of-range result to the
// field's fallback value.
func (c *Console) adjust(delta int) {
	cfg := c.cfg
	switch c.selected {
	case config.KeyHue, config.KeyContrast:
		v := fieldInt(cfg, c.selected) + delta
		setFieldInt(cfg, c.selected, v)
	default:
		v := int(fieldUint(cfg, c.selected)) + delta
		if v < 0 {
			v = 0
		}
		setFieldUint(cfg, c.selected, uint(v))
	}
}

// restoreDefault resets the selected field to its documented default.
func (c *Console) restoreDefault() {
	switch c.selected {
	case config.KeyHue:
		c.cfg.Hue = defaults.Hue
	case config.KeyContrast:
		c.cfg.Contrast = defaults.Contrast
	case config.KeyAGC:
		c.cfg.AGC = defaults.AGC
	default:
		setFieldUint(c.cfg, c.selected, fieldUint(&defaults, c.selected))
	}
}

func (c *Console) currentValue() interface{} {
	switch c.selected {
	case config.KeyHue:
		return c.cfg.Hue
	case config.KeyContrast:
		return c.cfg.Contrast
	case config.KeyAGC:
		return c.cfg.AGC
	default:
		return fieldUint(c.cfg, c.selected)
	}
}

// percent scales the selected field's current value into 0..100 for the
// overlay bar, mirroring each state's displayOverlayPercents call.
func (c *Console) percent() int {
	switch c.selected {
	case config.KeyHue:
		return ((c.cfg.Hue + 128) * 100) / 255
	case config.KeyContrast:
		return (c.cfg.Contrast * 100) / 127
	case config.KeySaturation:
		return int(c.cfg.Saturation) / 2
	case config.KeyBrightness:
		return int(c.cfg.Brightness)
	case config.KeyFactorI:
		return int(c.cfg.FactorI) * 100 / config.MaxIControl
	case config.KeyImgWid:
		return int(c.cfg.ImgWid) * 100 / config.SlotsX
	case config.KeyImgHigh:
		return int(c.cfg.ImgHigh) * 100 / config.SlotsY
	case config.KeyLEDsX:
		return int(c.cfg.LEDsX) * 100 / config.LEDsXMax
	case config.KeyLEDsY:
		return int(c.cfg.LEDsY) * 100 / config.LEDsYMax
	case config.KeyFrameWidth:
		return int(c.cfg.FrameWidth) * 100 / 11
	case config.KeyDelay:
		return int(c.cfg.Delay) * 100 / (config.DelayLen - 1)
	case config.KeyFramesLimit:
		return int(c.cfg.FramesLimit) * 100 / 200
	case config.KeyCropLeft:
		return int(c.cfg.CropLeft) * 100 / 800
	case config.KeyCropWidth:
		return int(c.cfg.CropWidth) * 100 / 800
	case config.KeyCropTop:
		return int(c.cfg.CropTop) * 100 / 150
	case config.KeyCropHeight:
		return int(c.cfg.CropHeight) * 100 / 300
	default:
		return 0
	}
}

// fieldUint, setFieldUint, fieldInt and setFieldInt give the console
// generic access to Config's uint- and int-typed tunables by key name,
// avoiding a duplicate per-field switch in every method above.
func fieldUint(cfg *config.Config, key string) uint {
	switch key {
	case config.KeyBrightness:
		return cfg.Brightness
	case config.KeySaturation:
		return cfg.Saturation
	case config.KeyCropLeft:
		return cfg.CropLeft
	case config.KeyCropTop:
		return cfg.CropTop
	case config.KeyCropWidth:
		return cfg.CropWidth
	case config.KeyCropHeight:
		return cfg.CropHeight
	case config.KeyImgWid:
		return cfg.ImgWid
	case config.KeyImgHigh:
		return cfg.ImgHigh
	case config.KeyLEDsX:
		return cfg.LEDsX
	case config.KeyLEDsY:
		return cfg.LEDsY
	case config.KeyFrameWidth:
		return cfg.FrameWidth
	case config.KeyFactorI:
		return cfg.FactorI
	case config.KeyDelay:
		return cfg.Delay
	case config.KeyFramesLimit:
		return cfg.FramesLimit
	case config.KeyVideoSource:
		return uint(cfg.VideoSource)
	}
	return 0
}

func setFieldUint(cfg *config.Config, key string, v uint) {
	switch key {
	case config.KeyBrightness:
		cfg.Brightness = v
	case config.KeySaturation:
		cfg.Saturation = v
	case config.KeyCropLeft:
		cfg.CropLeft = v
	case config.KeyCropTop:
		cfg.CropTop = v
	case config.KeyCropWidth:
		cfg.CropWidth = v
	case config.KeyCropHeight:
		cfg.CropHeight = v
	case config.KeyImgWid:
		cfg.ImgWid = v
	case config.KeyImgHigh:
		cfg.ImgHigh = v
	case config.KeyLEDsX:
		cfg.LEDsX = v
	case config.KeyLEDsY:
		cfg.LEDsY = v
	case config.KeyFrameWidth:
		cfg.FrameWidth = v
	case config.KeyFactorI:
		cfg.FactorI = v
	case config.KeyDelay:
		cfg.Delay = v
	case config.KeyFramesLimit:
		cfg.FramesLimit = v
	case config.KeyVideoSource:
		cfg.VideoSource = uint8(v)
	}
}

func fieldInt(cfg *config.Config, key string) int {
	switch key {
	case config.KeyHue:
		return cfg.Hue
	case config.KeyContrast:
		return cfg.Contrast
	}
	return 0
}

func setFieldInt(cfg *config.Config, key string, v int) {
	switch key {
	case config.KeyHue:
		cfg.Hue = v
	case config.KeyContrast:
		cfg.Contrast = v
	}
}
