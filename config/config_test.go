/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and
  Update).

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidateDefaults(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:      dl,
		Brightness:  100,
		CropWidth:   696,
		CropHeight:  274,
		ImgWid:      SlotsX,
		ImgHigh:     SlotsY,
		LEDsX:       30,
		LEDsY:       20,
		FrameWidth:  4,
		FactorI:     32,
		FramesLimit: 0, // 0 means the letterbox detector is disabled, not "unset".
		VideoSource: VideoSourceAuto,
	}

	got := Config{Logger: dl}
	if err := got.Validate(); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %+v\ngot: %+v", want, got)
	}
}

func TestValidateClampsOutOfRange(t *testing.T) {
	dl := &dumbLogger{}
	got := Config{
		Logger:      dl,
		Brightness:  200,
		FrameWidth:  99,
		FactorI:     500,
		Delay:       99,
		ImgWid:      999,
		LEDsX:       999,
		FramesLimit: 999,
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if got.Brightness != 100 {
		t.Errorf("Brightness: got %d, want clamped to 100", got.Brightness)
	}
	if got.FrameWidth != 4 {
		t.Errorf("FrameWidth: got %d, want clamped default 4", got.FrameWidth)
	}
	if got.FactorI != 32 {
		t.Errorf("FactorI: got %d, want clamped default 32", got.FactorI)
	}
	if got.Delay != 0 {
		t.Errorf("Delay: got %d, want clamped default 0", got.Delay)
	}
	if got.ImgWid != SlotsX {
		t.Errorf("ImgWid: got %d, want clamped to %d", got.ImgWid, SlotsX)
	}
	if got.LEDsX != 30 {
		t.Errorf("LEDsX: got %d, want clamped default 30", got.LEDsX)
	}
	if got.FramesLimit != 100 {
		t.Errorf("FramesLimit: got %d, want clamped default 100", got.FramesLimit)
	}
}

func TestUpdate(t *testing.T) {
	dl := &dumbLogger{}
	c := Default(dl)

	vars := map[string]string{
		KeyBrightness: "75",
		KeyFactorI:    "64",
		KeyDelay:      "5",
		KeyAGC:        "false",
	}
	c.Update(vars)

	if c.Brightness != 75 {
		t.Errorf("Brightness: got %d, want 75", c.Brightness)
	}
	if c.FactorI != 64 {
		t.Errorf("FactorI: got %d, want 64", c.FactorI)
	}
	if c.Delay != 5 {
		t.Errorf("Delay: got %d, want 5", c.Delay)
	}
	if c.AGC {
		t.Errorf("AGC: got true, want false")
	}
}

func TestUpdateUnknownKeyIgnored(t *testing.T) {
	dl := &dumbLogger{}
	c := Default(dl)
	before := c.Brightness
	c.Update(map[string]string{"NotARealKey": "123"})
	if c.Brightness != before {
		t.Errorf("Brightness changed unexpectedly: got %d, want %d", c.Brightness, before)
	}
}
