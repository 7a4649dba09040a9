/*
DESCRIPTION
  console_test.go exercises the console's select/step/default cycle and
  its video-source digit handling.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package console

import (
	"testing"

	"github.com/pitschu/ambilight/config"
)

func TestUnknownCharacterPrintsUsage(t *testing.T) {
	cfg := config.Default(nil)
	c := New(&cfg)
	r := c.Handle('z')
	if r.Output != usage {
		t.Fatalf("Handle('z') did not return the usage text")
	}
}

func TestSelectThenStepAdjustsBrightness(t *testing.T) {
	cfg := config.Default(nil)
	c := New(&cfg)

	c.Handle('b')
	before := cfg.Brightness
	r := c.Handle('+')

	if cfg.Brightness != before+1 {
		t.Fatalf("Brightness = %d, want %d", cfg.Brightness, before+1)
	}
	if !r.ShowOverlay || r.OverlayDuration != overlayDuration {
		t.Fatalf("Handle('+') result = %+v, want a percent-bar overlay request", r)
	}
}

func TestStepWithoutSelectionIsNoop(t *testing.T) {
	cfg := config.Default(nil)
	c := New(&cfg)
	before := cfg
	c.Handle('+')
	if cfg != before {
		t.Fatal("Handle('+') with no selection changed the config")
	}
}

func TestDefaultRestoresDocumentedValue(t *testing.T) {
	cfg := config.Default(nil)
	cfg.FactorI = 128
	c := New(&cfg)

	c.Handle('i')
	c.Handle('d')

	if cfg.FactorI != defaults.FactorI {
		t.Fatalf("FactorI = %d, want default %d", cfg.FactorI, defaults.FactorI)
	}
}

func TestHueStepsNegativeAndClampsThroughValidate(t *testing.T) {
	cfg := config.Default(nil)
	cfg.Hue = -128
	c := New(&cfg)

	c.Handle('f')
	c.Handle('-')

	if cfg.Hue < -128 || cfg.Hue > 127 {
		t.Fatalf("Hue = %d, want it clamped into [-128,127] by Validate", cfg.Hue)
	}
}

func TestCropLeftStepsByEight(t *testing.T) {
	cfg := config.Default(nil)
	c := New(&cfg)
	before := cfg.CropLeft

	c.Handle('l')
	c.Handle('+')

	if cfg.CropLeft != before+8 {
		t.Fatalf("CropLeft = %d, want %d", cfg.CropLeft, before+8)
	}
}

func TestVideoSourceDigitSelectsMode(t *testing.T) {
	cfg := config.Default(nil)
	c := New(&cfg)

	c.Handle('v')
	r := c.Handle('2')

	if cfg.VideoSource != config.VideoSource2 {
		t.Fatalf("VideoSource = %d, want %d", cfg.VideoSource, config.VideoSource2)
	}
	if r.Output == "" {
		t.Fatal("Handle('2') after selecting V returned no output")
	}
}

func TestDigitWithoutVideoSourceSelectedPrintsUsage(t *testing.T) {
	cfg := config.Default(nil)
	c := New(&cfg)
	r := c.Handle('1')
	if r.Output != usage {
		t.Fatal("Handle('1') without V selected should print usage")
	}
}

func TestQPrintsInfo(t *testing.T) {
	cfg := config.Default(nil)
	c := New(&cfg)
	r := c.Handle('q')
	if !r.ShowInfo {
		t.Fatal("Handle('q') did not request info output")
	}
}
