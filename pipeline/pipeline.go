/*
DESCRIPTION
  pipeline.go wires the ambilight stages (capture, letterbox, vimage,
  ledstrip, overlay) into a running instance with Start/Stop/Update
  lifecycle methods, modeled on revid.Revid: an err channel drained by a
  background handleErrors goroutine, config swapped in under Update, and a
  bitrate.Calculator repurposed here as the field-rate meter.

  Grounded on revid/revid.go (the Start/Stop/Update/Running shape and the
  err-chan/handleErrors pattern) and revid/pipeline.go (reset swapping in a
  validated config before rebuilding dependent state).

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Package pipeline assembles the ambilight stages into a running instance:
// capture feeds the letterbox detector and virtual image, the virtual
// image feeds the LED strip through the delay ring, and the overlay and
// console/IR control surfaces sit alongside the frame path.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ausocean/utils/bitrate"

	"github.com/pitschu/ambilight/capture"
	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/console"
	"github.com/pitschu/ambilight/decoder"
	"github.com/pitschu/ambilight/ir"
	"github.com/pitschu/ambilight/ledstrip"
	"github.com/pitschu/ambilight/letterbox"
	"github.com/pitschu/ambilight/nvram"
	"github.com/pitschu/ambilight/overlay"
	"github.com/pitschu/ambilight/vimage"
)

// overlayTickPeriod is the system tick rate the original firmware
// decremented ws2812ovrlayCounter at.
const overlayTickPeriod = 10 * time.Millisecond

// pollPeriod is how often the background loop checks for a capture-ready
// frame when no blocking notification is available.
const pollPeriod = time.Millisecond

// Pipeline owns one running ambilight instance: the frame-processing
// chain, the LED writer, and the console/IR/nvram control surfaces.
type Pipeline struct {
	mu  sync.RWMutex
	cfg config.Config

	cap   *capture.Capturer
	lbox  *letterbox.Detector
	img   vimage.Image
	strip ledstrip.Strip
	ovl   overlay.Overlay
	con   *console.Console
	irDec *ir.Decoder

	writer  ledstrip.Writer
	decoder *decoder.Decoder // optional; nil if running without I2C hardware
	store   *nvram.Store     // optional; nil disables persistence

	err  chan error
	stop chan struct{}
	wg   sync.WaitGroup

	running bool

	fieldRate bitrate.Calculator
}

// New returns a Pipeline bound to cfg and writer. decoder and store may be
// nil to run without the corresponding hardware or persistence.
func New(cfg config.Config, writer ledstrip.Writer, dec *decoder.Decoder, store *nvram.Store) (*Pipeline, error) {
	p := &Pipeline{
		writer:  writer,
		decoder: dec,
		store:   store,
		err:     make(chan error),
	}
	if err := p.setConfig(cfg); err != nil {
		return nil, fmt.Errorf("pipeline: could not set config: %w", err)
	}
	go p.handleErrors()
	return p, nil
}

// Config returns a copy of the pipeline's current configuration.
func (p *Pipeline) Config() config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// FieldRate returns the rate measured by the pipeline's bitrate.Calculator,
// which is fed the bytes of LED data written to the strip (3 per LED per
// written frame).
func (p *Pipeline) FieldRate() int { return p.fieldRate.Bitrate() }

// Running reports whether the pipeline's background loop is active.
func (p *Pipeline) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// handleErrors logs asynchronous errors raised by the background loop.
func (p *Pipeline) handleErrors() {
	for {
		err := <-p.err
		if err == nil {
			continue
		}
		if l := p.Config().Logger; l != nil {
			l.Error("pipeline async error", "error", err.Error())
		}
	}
}

// setConfig validates c and installs it, then rebuilds the stage state
// that depends directly on it, mirroring revid.reset.
func (p *Pipeline) setConfig(c config.Config) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	p.mu.Lock()
	p.cfg = c
	p.mu.Unlock()

	p.cap = capture.New(&p.cfg, c.Logger)
	p.lbox = letterbox.New(&p.cfg)
	p.con = console.New(&p.cfg)
	p.irDec = ir.New()
	return nil
}

// Capture returns the capture stage, for whatever drives the BT.656/I2C
// hardware to feed line and vsync events into it.
func (p *Pipeline) Capture() *capture.Capturer { return p.cap }

// Start begins the background loop that drains ready frames into the
// virtual image, LED strip and overlay compositor, and (if configured)
// the overlay tick and nvram quiesce checks.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	p.stop = make(chan struct{})
	p.wg.Add(1)
	go p.run(ctx)
	return nil
}

// Stop halts the background loop and waits for it to exit.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()
}

// run is the pipeline's background loop: it polls for a capture-ready
// frame, and on a parallel ticker drains the overlay countdown, checks
// whether the nonvolatile store's quiesce period has elapsed, and on every
// tenth tick (100ms) runs the decoder's signal check.
func (p *Pipeline) run(ctx context.Context) {
	defer p.wg.Done()

	frames := time.NewTicker(pollPeriod)
	defer frames.Stop()
	ticks := time.NewTicker(overlayTickPeriod)
	defer ticks.Stop()

	const decoderCheckTicks = 10
	decoderTick := 0

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticks.C:
			p.ovl.Tick()
			if p.store != nil {
				cfg := p.Config()
				if _, err := p.store.Tick(&cfg, time.Now()); err != nil {
					p.err <- fmt.Errorf("nvram tick: %w", err)
				}
			}
			decoderTick++
			if p.decoder != nil && decoderTick >= decoderCheckTicks {
				decoderTick = 0
				cfg := p.Config()
				if _, err := p.decoder.Autoswitch(cfg.VideoSource); err != nil {
					p.err <- fmt.Errorf("decoder autoswitch: %w", err)
				}
			}
		case <-frames.C:
			if p.cap.TakeFrameReady() {
				p.processFrame(ctx)
			}
		}
	}
}

// processFrame runs one field's worth of work through letterbox, virtual
// image, LED strip and overlay, then writes the result to the strip.
func (p *Pipeline) processFrame(ctx context.Context) {
	cfg := p.Config()

	g := p.cap.Grid()
	p.lbox.Update(g)
	p.img.Update(g, p.lbox.Rect(), &cfg)
	p.strip.Update(&p.img, &cfg)

	visible := p.ovl.Compose(p.strip.Output())
	if p.writer == nil {
		return
	}
	if err := p.writer.Write(ctx, visible); err != nil {
		p.err <- fmt.Errorf("led write: %w", err)
		return
	}
	p.fieldRate.Report(len(visible) * 3)
}

// Update applies a batch of tunable changes, mirroring revid.Update:
// changes take effect at the next processed frame.
func (p *Pipeline) Update(vars map[string]string) error {
	cfg := p.Config()
	cfg.Update(vars)
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	if p.decoder != nil {
		return p.decoder.ApplyPictureParams(&cfg)
	}
	return nil
}

// HandleCommand feeds one console character through the command parser,
// applying a resulting overlay request or logging a requested info dump.
func (p *Pipeline) HandleCommand(ch byte) {
	r := p.con.Handle(ch)
	cfg := p.Config()
	if r.Output != "" && cfg.Logger != nil {
		cfg.Logger.Debug(r.Output)
	}
	if r.ShowInfo {
		p.logDiagnostics()
	}
	if r.ShowOverlay {
		p.ovl.ShowPercent(cfg.LEDsX, cfg.LEDsY, r.OverlayPercent, r.OverlayDuration)
	}
	if p.decoder != nil {
		if err := p.decoder.ApplyPictureParams(&cfg); err != nil {
			p.err <- fmt.Errorf("apply picture params: %w", err)
		}
	}
}

// HandleIRPulse folds one measured IR pulse width into the remote decoder
// and dispatches any newly recognised key to the console.
func (p *Pipeline) HandleIRPulse(width time.Duration) {
	p.irDec.Pulse(width)
	p.dispatchIR()
}

// HandleIROverflow signals IR receiver silence, per ir.Decoder.Overflow.
func (p *Pipeline) HandleIROverflow() {
	p.irDec.Overflow()
}

func (p *Pipeline) dispatchIR() {
	if p.irDec.State() != ir.StatePressed {
		return
	}
	code, ok := p.irDec.Code()
	if !ok {
		return
	}
	cmd, ok := ir.Mnemonic(code.Data)
	if !ok {
		p.irDec.Checked()
		return
	}
	for _, ch := range cmd.Chars {
		p.HandleCommand(ch)
	}
	p.irDec.Checked()
}

// logDiagnostics reports the letterbox detector's current rectangle and
// luminance spread, mirroring ambiLightPrintDynInfos's dump of the dynamic
// matrix state.
func (p *Pipeline) logDiagnostics() {
	cfg := p.Config()
	if cfg.Logger == nil {
		return
	}
	rect := p.lbox.Rect()
	rs := p.lbox.RowSpread()
	cs := p.lbox.ColSpread()
	cfg.Logger.Info("dynamic matrix",
		"rect", rect,
		"blackLevel", p.lbox.BlackLevel(),
		"rowMean", rs.Mean, "rowVariance", rs.Variance,
		"colMean", cs.Mean, "colVariance", cs.Variance,
	)
}
