// nodesim is a bench stand-in for the pedal board: it schedules the APPS
// packet at its bus rate, sweeps simulated sensor values into the payload
// between ticks, and serves the maintenance console (with the dfu entry
// sequence wired to a logged stand-in for the BOOT0 strap).
package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/LoveWonYoung/cancore/bootloader"
	"github.com/LoveWonYoung/cancore/can"
	"github.com/LoveWonYoung/cancore/config"
	"github.com/LoveWonYoung/cancore/console"
	"github.com/LoveWonYoung/cancore/driver"
	"github.com/LoveWonYoung/cancore/ids"
)

type logPin struct{ name string }

func (p logPin) Set(high bool) error {
	slog.Info("gpio", "pin", p.name, "high", high)
	return nil
}

type logReset struct{ cancel context.CancelFunc }

func (r logReset) Reset() {
	slog.Info("system reset")
	r.cancel()
}

type stdio struct {
	io.Reader
	io.Writer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	fam := driver.Classic
	if cfg.Family == "fd" {
		fam = driver.FD
	}
	tr, err := driver.Open(cfg.Interface, fam)
	if err != nil {
		slog.Error("open transport", "err", err)
		os.Exit(1)
	}

	reg := can.NewRegistry(1)
	inst, err := can.New(reg, tr, can.Config{})
	if err != nil {
		slog.Error("bind instance", "err", err)
		os.Exit(1)
	}

	apps := can.NewPacket(ids.APPSPacketID, ids.APPSIntervalMS, 8)
	if err := inst.AddTx(apps); err != nil {
		slog.Error("schedule apps packet", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctl := bootloader.NewController(logPin{name: "BOOT0"}, logReset{cancel: cancel})
	cons := console.New(stdio{Reader: os.Stdin, Writer: os.Stdout}, func() {
		if err := ctl.Enter(); err != nil {
			slog.Error("bootloader entry", "err", err)
		}
	})
	cons.Handle("stats", func(c *console.Console) {
		c.Printf("schedule=%d dropped=%d", inst.ScheduleLen(), inst.Dropped())
	})
	go cons.Run(ctx)

	slog.Info("node running", "iface", cfg.Interface, "interval_ms", ids.APPSIntervalMS)
	tick := time.NewTicker(time.Duration(cfg.TickMS) * time.Millisecond)
	defer tick.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("node stopped")
			return
		case <-tick.C:
			// Sweep the pedal through its range so the bus carries moving
			// values.
			phase := time.Since(start).Seconds()
			travel := 50 + 50*math.Sin(phase)
			can.WriteScaled[uint16](apps, ids.APPS1VoltageOffset, 0.5+4.0*travel/100, ids.APPSVoltagePrecision)
			can.WriteScaled[uint16](apps, ids.APPS2VoltageOffset, 0.5+2.0*travel/100, ids.APPSVoltagePrecision)
			can.WriteScaled[uint16](apps, ids.APPS1TravelOffset, travel, ids.APPSTravelPrecision)
			can.WriteScaled[uint16](apps, ids.APPS2TravelOffset, travel, ids.APPSTravelPrecision)
			inst.Periodic()
		}
	}
}
