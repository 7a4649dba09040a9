/*
DESCRIPTION
  ambilightd is the daemon entry point: it wires the capture-to-LED
  pipeline, the external video decoder, the nonvolatile parameter store
  and the APA102 LED strip together against real hardware (I2C, SPI)
  and runs until signalled to stop.

  Grounded on cmd/rv/main.go: lumberjack file logging, logging.New, and
  the flag-parse/log-setup/run shape. Unlike rv, ambilightd has no
  netsender/cloud client; its control surfaces are the console (stdin),
  the IR remote and the nonvolatile store, all driven through
  pipeline.Pipeline.

AUTHORS
  Peter Schulten <peter@pitschu.de>

LICENSE
  Copyright (C) 2026 the Ambilight Core Authors. All Rights Reserved.
*/

// Command ambilightd runs the ambilight capture-to-LED pipeline as a
// standalone daemon.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/ausocean/utils/logging"

	"github.com/pitschu/ambilight/config"
	"github.com/pitschu/ambilight/decoder"
	"github.com/pitschu/ambilight/ledstrip"
	"github.com/pitschu/ambilight/nvram"
	"github.com/pitschu/ambilight/pipeline"
)

// Current software version.
const version = "v1.0.0"

// Logging configuration, mirroring cmd/rv's lumberjack setup.
const (
	logPath      = "/var/log/ambilightd/ambilightd.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

const pkg = "ambilightd: "

func main() {
	showVersion := flag.Bool("version", false, "show version")
	i2cBusName := flag.String("i2c", "", "I2C bus name for the video decoder (empty selects the default bus)")
	spiPortName := flag.String("spi", "", "SPI port name for the LED strip (empty selects the default port)")
	noDecoder := flag.Bool("no-decoder", false, "run without the external video decoder (picture controls become no-ops)")
	noStore := flag.Bool("no-nvram", false, "run without nonvolatile parameter persistence")
	nvramPath := flag.String("nvram-file", "/var/lib/ambilightd/params.bin", "file backing the nonvolatile parameter store")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting ambilightd", "version", version)

	if _, err := host.Init(); err != nil {
		log.Fatal(pkg+"could not initialise periph host drivers", "error", err.Error())
	}

	var dec *decoder.Decoder
	if !*noDecoder {
		bus, err := i2creg.Open(*i2cBusName)
		if err != nil {
			log.Fatal(pkg+"could not open I2C bus", "error", err.Error())
		}
		dec, err = decoder.New(bus)
		if err != nil {
			log.Fatal(pkg+"could not initialise video decoder", "error", err.Error())
		}
	}

	var store *nvram.Store
	if !*noStore {
		backing, err := openFileBacking(*nvramPath)
		if err != nil {
			log.Fatal(pkg+"could not open nvram file", "error", err.Error())
		}
		store = nvram.New(backing)
	}

	writer, err := newLEDWriter(*spiPortName)
	if err != nil {
		log.Fatal(pkg+"could not open LED strip", "error", err.Error())
	}

	cfg := config.Default(log)
	if store != nil {
		if err := store.Load(&cfg); err != nil && err != nvram.ErrNoValidBlock {
			log.Warning(pkg+"could not load saved parameters, using defaults", "error", err.Error())
		}
	}

	p, err := pipeline.New(cfg, writer, dec, store)
	if err != nil {
		log.Fatal(pkg+"could not initialise pipeline", "error", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("received shutdown signal")
		cancel()
	}()

	log.Debug("starting capture pump")
	go runCapturePump(ctx, p, dec, log)

	log.Debug("starting console reader")
	go runConsole(ctx, p, log)

	log.Debug(pkg + "starting pipeline")
	if err := p.Start(ctx); err != nil {
		log.Fatal(pkg+"could not start pipeline", "error", err.Error())
	}

	<-ctx.Done()
	p.Stop()
	log.Info("ambilightd stopped")
}

// newLEDWriter opens the SPI port named by spiPortName (the empty string
// selects the default port) and wraps it in a ledstrip.Writer.
func newLEDWriter(spiPortName string) (ledstrip.Writer, error) {
	port, err := spireg.Open(spiPortName)
	if err != nil {
		return nil, fmt.Errorf("open SPI port: %w", err)
	}
	conn, err := port.Connect(10_000_000, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("connect SPI port: %w", err)
	}
	return ledstrip.NewSPIWriter(conn), nil
}

// runCapturePump drives the BT.656 capture stage's line and vsync intake
// from the platform's video-capture source. On this reference build,
// frame ingestion hardware (DMA/DCMI-equivalent line buffering) is
// platform-specific and out of scope; runCapturePump is the seam a
// concrete capture backend plugs into.
func runCapturePump(ctx context.Context, p *pipeline.Pipeline, dec *decoder.Decoder, log logging.Logger) {
	<-ctx.Done()
}

// nvramRegionSize mirrors nvram's own region size; the file backing must
// be pre-sized since ReadAt over a short file returns io.EOF rather than
// the erased-flash value the store's scan expects.
const nvramRegionSize = 128 * 1024

// openFileBacking opens (creating if necessary) the file at path and
// ensures it is at least nvramRegionSize bytes, filling any newly
// extended tail with the erased-flash byte so a fresh file behaves like
// an erased flash region to nvram.Store.scan.
func openFileBacking(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() < nvramRegionSize {
		blank := make([]byte, nvramRegionSize-info.Size())
		for i := range blank {
			blank[i] = 0xFF
		}
		if _, err := f.WriteAt(blank, info.Size()); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend %s: %w", path, err)
		}
	}
	return f, nil
}

// runConsole reads single characters from stdin and feeds them through
// the pipeline's console command parser, mirroring the original
// firmware's UART-attached terminal.
func runConsole(ctx context.Context, p *pipeline.Pipeline, log logging.Logger) {
	r := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ch, err := r.ReadByte()
		if err != nil {
			if err != io.EOF {
				log.Warning(pkg+"console read error", "error", err.Error())
			}
			return
		}
		p.HandleCommand(ch)
	}
}
