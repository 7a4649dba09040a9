/*
DESCRIPTION
  ir.go implements the NEC infrared remote decoder of spec section 6: a
  pulse-width state machine driven by edge-to-edge timing, the
  {NOTHING, PRESSED, AUTORPT, RELEASED, CHECKED} state register, and the
  mnemonic-letter key mapping from ambiLightHandleIRcode.

  Grounded on TIM1_UP_TIM10_IRQHandler in IRdecoder.c (the bit-timing state
  machine and the autorepeat counter thresholds AUTO_RPT_INITIAL/AUTO_RPT)
  and on the "simulate UART characters" switch in ambiLightHandleIRcode in
  ambiLight.c (the code-to-mnemonic table).

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package ir decodes the NEC infrared remote protocol and maps known
// remote keys onto the console's single-character command mnemonics.
package ir

import (
	"time"

	"github.com/ausocean/utils/sliceutils"
)

// NEC pulse-width thresholds, expressed as real time rather than the
// original's 250kHz timer ticks; the ratios are preserved exactly.
const (
	pulseMin    = 875 * time.Microsecond
	pulseZero   = 1750 * time.Microsecond
	pulseOne    = 3000 * time.Microsecond
	pulseRepeat = 12 * time.Millisecond
	pulseMax    = 15 * time.Millisecond
)

// autoRepeatInitial and autoRepeat are the repeat-pulse counts before
// auto-repeat starts and the value the counter resets to afterward,
// mirroring AUTO_RPT_INITIAL and AUTO_RPT.
const (
	autoRepeatInitial = 8
	autoRepeat        = autoRepeatInitial - 1
)

// noCode is the sentinel "no key" value, mirroring NO_CODE.
const noCode = 0xFFFF

// State is the latest-code register's state, per spec section 6.
type State int

const (
	StateNothing State = iota
	StatePressed
	StateAutoRepeat
	StateReleased
	StateChecked
)

// Code identifies one decoded NEC key press: the 8-bit address and 8-bit
// command byte.
type Code struct {
	Addr, Data uint8
}

// Decoder is the NEC protocol state machine. It is driven by Pulse, called
// once per rising-edge-to-rising-edge interval, and Overflow, called when
// no edge arrives before the receiver's silence timeout (~200ms).
type Decoder struct {
	code          uint16
	bitCount      int8
	tmpData       uint32
	ticksAutorpt  int
	repcntPressed int
	state         State
}

// New returns a Decoder with no key currently latched.
func New() *Decoder {
	return &Decoder{code: noCode, bitCount: -1}
}

// Pulse folds one measured pulse interval into the bit-timing state
// machine, mirroring the CC1-flag branch of TIM1_UP_TIM10_IRQHandler.
func (d *Decoder) Pulse(width time.Duration) {
	if width > pulseMax {
		width = 0
	}

	if width < pulseMin || width > pulseRepeat {
		d.bitCount = 0
		return
	}

	if d.bitCount < 0 {
		return
	}

	if width > pulseOne {
		// Repeat pulse: an already-pressed key is still held.
		d.repcntPressed++
		d.ticksAutorpt++
		if d.ticksAutorpt > autoRepeatInitial {
			d.state = StateAutoRepeat
			d.ticksAutorpt = autoRepeat
		} else if d.state == StateChecked {
			d.state = StateNothing
		}
		return
	}

	// Bit received, LSB-first.
	d.bitCount++
	d.tmpData >>= 1
	if width > pulseZero {
		d.tmpData |= 0x80000000
	}

	if d.bitCount != 32 {
		return
	}

	addr := uint8(d.tmpData)
	data := uint8(d.tmpData >> 16)
	addrInv := uint8(d.tmpData >> 8)
	dataInv := uint8(d.tmpData >> 24)

	d.bitCount = -1
	d.tmpData = 0

	if addr^addrInv != 0xFF || data^dataInv != 0xFF {
		return
	}

	d.code = uint16(addr)<<8 | uint16(data)
	d.ticksAutorpt = 1
	d.repcntPressed = 0
	d.state = StatePressed
}

// Overflow signals that no edge arrived before the receiver's silence
// timeout, mirroring the timer-overflow branch of
// TIM1_UP_TIM10_IRQHandler: a held key is reported released, otherwise the
// decoder returns to idle.
func (d *Decoder) Overflow() {
	if d.code != noCode && d.ticksAutorpt > 0 {
		d.ticksAutorpt = 0
		d.state = StateReleased
		return
	}
	d.code = noCode
	d.ticksAutorpt = 0
	d.repcntPressed = 0
	d.state = StateNothing
}

// State returns the latest-code register's state.
func (d *Decoder) State() State { return d.state }

// Code returns the currently latched key and whether one is latched.
func (d *Decoder) Code() (Code, bool) {
	if d.code == noCode {
		return Code{}, false
	}
	return Code{Addr: uint8(d.code >> 8), Data: uint8(d.code)}, true
}

// Checked marks the current code as consumed, mirroring the main loop
// setting irCode.isNew = IR_CHECKED after dispatching a key.
func (d *Decoder) Checked() { d.state = StateChecked }

// Known NEC command bytes for the remote this firmware ships with,
// consulted by Mnemonic before mapping a code.
var knownData = []uint8{
	brightnessHi, brightnessLo, autoKey,
	redKey, greenKey, blueKey, whiteKey,
	slowKey, quickKey,
	redHi, redLo, greenHi, greenLo, blueHi, blueLo,
	flashKey, fade7Key, jump3Key,
}

// Remote command bytes, from IRdecoder.h.
const (
	brightnessHi uint8 = 0x5C
	brightnessLo uint8 = 0x5D
	autoKey      uint8 = 0x0F
	redKey       uint8 = 0x58
	greenKey     uint8 = 0x59
	blueKey      uint8 = 0x45
	whiteKey     uint8 = 0x44
	slowKey      uint8 = 0x13
	quickKey     uint8 = 0x17
	redHi        uint8 = 0x14
	redLo        uint8 = 0x10
	greenHi      uint8 = 0x15
	greenLo      uint8 = 0x11
	blueHi       uint8 = 0x16
	blueLo       uint8 = 0x12
	flashKey     uint8 = 0x0B
	fade7Key     uint8 = 0x07
	jump3Key     uint8 = 0x04
)

// Command is a console command produced by a recognised key: a parameter
// mnemonic to select (if any) followed by the command characters to feed
// to the console parser, mirroring AvrXPutFifo(fifoFromHost, ...) in
// ambiLightHandleIRcode.
type Command struct {
	Chars []byte
}

// Mnemonic maps a recognised NEC command byte onto the console characters
// it simulates, mirroring the "simulate UART characters" switch in
// ambiLightHandleIRcode. ok is false for keys this firmware does not map
// onto a console command.
func Mnemonic(data uint8) (cmd Command, ok bool) {
	if !sliceutils.ContainsUint8(knownData, data) {
		return Command{}, false
	}
	switch data {
	case brightnessHi:
		return Command{Chars: []byte{'+'}}, true
	case brightnessLo:
		return Command{Chars: []byte{'-'}}, true
	case autoKey:
		return Command{Chars: []byte{'d'}}, true
	case redKey:
		return Command{Chars: []byte{'F'}}, true
	case greenKey:
		return Command{Chars: []byte{'S'}}, true
	case blueKey:
		return Command{Chars: []byte{'C'}}, true
	case whiteKey:
		return Command{Chars: []byte{'B'}}, true
	case slowKey:
		return Command{Chars: []byte{'I', '-'}}, true
	case quickKey:
		return Command{Chars: []byte{'I', '+'}}, true
	case redHi:
		return Command{Chars: []byte{'L'}}, true
	case redLo:
		return Command{Chars: []byte{'W'}}, true
	case greenHi:
		return Command{Chars: []byte{'T'}}, true
	case greenLo:
		return Command{Chars: []byte{'H'}}, true
	case blueHi:
		return Command{Chars: []byte{'X'}}, true
	case blueLo:
		return Command{Chars: []byte{'Y'}}, true
	case flashKey:
		return Command{Chars: []byte{'E'}}, true
	case fade7Key:
		return Command{Chars: []byte{'M'}}, true
	case jump3Key:
		return Command{Chars: []byte{'A'}}, true
	}
	return Command{}, false
}
