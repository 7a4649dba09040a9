/*
DESCRIPTION
  nvram.go implements the nonvolatile tunable store of spec section 6: the
  fixed-order field layout, the leading validity byte, the CRC32 integrity
  check, and the append-until-full/erase-and-restart block cycle.

  Grounded on flashparams.c: the flashParams[] field table (field order
  preserved exactly, moodlight-only fields dropped as out of scope),
  findActualParameterFlashBlock's linear valid-block scan,
  updateAllParamsToFlash's invalidate-old/append-new cycle and forced
  erase when the region is full, and checkForParamChanges' CRC-based dirty
  check feeding the host's 3-second write quiesce.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package nvram persists the pipeline's runtime tunables across restarts,
// using the same validity-byte/CRC32 block scheme as the original
// firmware's flash parameter store, adapted to a plain backing file.
package nvram

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/pitschu/ambilight/config"
)

// regionSize mirrors the two 64K sectors (0x080C0000..0x080FFFF0) the
// original firmware reserved for parameter storage.
const regionSize = 128 * 1024

const (
	validByte   = 0xFF
	invalidByte = '#'
)

// Quiesce is how long a tunable must remain unchanged before Tick commits
// it to the backing store, mirroring the host loop's 3-second debounce
// around checkForParamChanges/updateAllParamsToFlash.
const Quiesce = 3 * time.Second

// ErrNoValidBlock is returned by Load when the backing region holds no
// block with a matching CRC, mirroring findActualParameterFlashBlock
// returning NULL.
var ErrNoValidBlock = errors.New("nvram: no valid parameter block found")

// Backing is the byte-addressable region the store reads and writes
// blocks against; *os.File and an in-memory byte slice both satisfy it.
type Backing interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
}

// field describes one persisted Config tunable: its fixed-order slot, and
// how to move it to and from a uint32.
type field struct {
	name string
	get  func(*config.Config) uint32
	set  func(*config.Config, uint32)
}

// fields lists the persisted tunables in the exact order flashParams did;
// moodlight-only entries in the original table have no home in this
// module and are dropped.
var fields = []field{
	{config.KeyImgWid, func(c *config.Config) uint32 { return uint32(c.ImgWid) }, func(c *config.Config, v uint32) { c.ImgWid = uint(v) }},
	{config.KeyImgHigh, func(c *config.Config) uint32 { return uint32(c.ImgHigh) }, func(c *config.Config, v uint32) { c.ImgHigh = uint(v) }},
	{config.KeyFactorI, func(c *config.Config) uint32 { return uint32(c.FactorI) }, func(c *config.Config, v uint32) { c.FactorI = uint(v) }},
	{config.KeyFrameWidth, func(c *config.Config) uint32 { return uint32(c.FrameWidth) }, func(c *config.Config, v uint32) { c.FrameWidth = uint(v) }},
	{config.KeyDelay, func(c *config.Config) uint32 { return uint32(c.Delay) }, func(c *config.Config, v uint32) { c.Delay = uint(v) }},
	{config.KeyHue, func(c *config.Config) uint32 { return uint32(int32(c.Hue)) }, func(c *config.Config, v uint32) { c.Hue = int(int32(v)) }},
	{config.KeyBrightness, func(c *config.Config) uint32 { return uint32(c.Brightness) }, func(c *config.Config, v uint32) { c.Brightness = uint(v) }},
	{config.KeySaturation, func(c *config.Config) uint32 { return uint32(c.Saturation) }, func(c *config.Config, v uint32) { c.Saturation = uint(v) }},
	{config.KeyContrast, func(c *config.Config) uint32 { return uint32(int32(c.Contrast)) }, func(c *config.Config, v uint32) { c.Contrast = int(int32(v)) }},
	{config.KeyCropLeft, func(c *config.Config) uint32 { return uint32(c.CropLeft) }, func(c *config.Config, v uint32) { c.CropLeft = uint(v) }},
	{config.KeyCropWidth, func(c *config.Config) uint32 { return uint32(c.CropWidth) }, func(c *config.Config, v uint32) { c.CropWidth = uint(v) }},
	{config.KeyCropTop, func(c *config.Config) uint32 { return uint32(c.CropTop) }, func(c *config.Config, v uint32) { c.CropTop = uint(v) }},
	{config.KeyCropHeight, func(c *config.Config) uint32 { return uint32(c.CropHeight) }, func(c *config.Config, v uint32) { c.CropHeight = uint(v) }},
	{config.KeyLEDsX, func(c *config.Config) uint32 { return uint32(c.LEDsX) }, func(c *config.Config, v uint32) { c.LEDsX = uint(v) }},
	{config.KeyLEDsY, func(c *config.Config) uint32 { return uint32(c.LEDsY) }, func(c *config.Config, v uint32) { c.LEDsY = uint(v) }},
}

// payloadSize is the serialized field area's length, four bytes per field.
var payloadSize = len(fields) * 4

// blockSize is one stored block's total length: validity byte, payload,
// four-byte CRC32.
var blockSize = 1 + payloadSize + 4

// Store manages the append-until-full parameter block cycle against a
// Backing region.
type Store struct {
	backing Backing

	lastObservedCRC uint32
	changedAt       time.Time
	haveObservation bool
	lastSavedCRC    uint32
}

// New returns a Store writing blocks to backing.
func New(backing Backing) *Store {
	return &Store{backing: backing}
}

// payload serializes cfg's tracked fields in fixed order.
func payload(cfg *config.Config) []byte {
	buf := make([]byte, payloadSize)
	for i, f := range fields {
		binary.BigEndian.PutUint32(buf[i*4:], f.get(cfg))
	}
	return buf
}

func checksum(p []byte) uint32 { return crc32.ChecksumIEEE(p) }

// scan walks the region from the start, skipping blocks whose validity
// byte was overwritten, and returns the offset of the first block whose
// stored CRC matches its payload, mirroring
// findActualParameterFlashBlock. ok is false if none is found.
func (s *Store) scan() (offset int64, ok bool) {
	block := make([]byte, blockSize)
	for off := int64(0); off+int64(blockSize) <= regionSize; off += int64(blockSize) {
		if _, err := s.backing.ReadAt(block, off); err != nil {
			return 0, false
		}
		if block[0] != validByte {
			continue
		}
		p := block[1 : 1+payloadSize]
		wantCRC := binary.BigEndian.Uint32(block[1+payloadSize:])
		if checksum(p) == wantCRC {
			return off, true
		}
	}
	return 0, false
}

// Load finds the current valid block and applies it to cfg, mirroring
// readAllParamsFromFlash.
func (s *Store) Load(cfg *config.Config) error {
	off, ok := s.scan()
	if !ok {
		return ErrNoValidBlock
	}
	block := make([]byte, blockSize)
	if _, err := s.backing.ReadAt(block, off); err != nil {
		return fmt.Errorf("nvram: read block: %w", err)
	}
	p := block[1 : 1+payloadSize]
	for i, f := range fields {
		f.set(cfg, binary.BigEndian.Uint32(p[i*4:]))
	}
	return nil
}

// Save writes cfg as a new block, invalidating any previously valid block
// and re-erasing the whole region first if there is no room left for
// another block, mirroring updateAllParamsToFlash.
func (s *Store) Save(cfg *config.Config) error {
	p := payload(cfg)
	crc := checksum(p)

	oldOff, hadValid := s.scan()

	writeOff := int64(0)
	if hadValid {
		writeOff = oldOff + int64(blockSize)
	}

	if writeOff+int64(blockSize) > regionSize {
		if err := s.erase(); err != nil {
			return fmt.Errorf("nvram: erase region: %w", err)
		}
		writeOff = 0
		hadValid = false
	}

	block := make([]byte, blockSize)
	block[0] = validByte
	copy(block[1:], p)
	binary.BigEndian.PutUint32(block[1+payloadSize:], crc)

	if _, err := s.backing.WriteAt(block, writeOff); err != nil {
		return fmt.Errorf("nvram: write block: %w", err)
	}

	if hadValid {
		if _, err := s.backing.WriteAt([]byte{invalidByte}, oldOff); err != nil {
			return fmt.Errorf("nvram: invalidate old block: %w", err)
		}
	}

	s.lastSavedCRC = crc
	return nil
}

// erase fills the whole region with the erased-flash value.
func (s *Store) erase() error {
	blank := make([]byte, regionSize)
	for i := range blank {
		blank[i] = validByte
	}
	_, err := s.backing.WriteAt(blank, 0)
	return err
}

// Tick folds one observation of cfg into the quiesce timer and commits it
// to the backing store once it has been unchanged for Quiesce, mirroring
// the host loop's periodic checkForParamChanges/updateAllParamsToFlash
// pairing. now is passed in rather than read from the clock so callers
// can drive the debounce deterministically.
func (s *Store) Tick(cfg *config.Config, now time.Time) (wrote bool, err error) {
	p := payload(cfg)
	crc := checksum(p)

	if !s.haveObservation || crc != s.lastObservedCRC {
		s.lastObservedCRC = crc
		s.changedAt = now
		s.haveObservation = true
		return false, nil
	}

	if crc == s.lastSavedCRC {
		return false, nil
	}

	if now.Sub(s.changedAt) < Quiesce {
		return false, nil
	}

	if err := s.Save(cfg); err != nil {
		return false, err
	}
	return true, nil
}
