// candump captures raw traffic in arrival order through the ring-buffer
// receive strategy and writes it to rotating trace files.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/LoveWonYoung/cancore/can"
	"github.com/LoveWonYoung/cancore/config"
	"github.com/LoveWonYoung/cancore/driver"
	"github.com/LoveWonYoung/cancore/tracelog"
)

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
	inst, err := can.New(reg, tr, can.Config{RingSize: 256})
	if err != nil {
		slog.Error("bind instance", "err", err)
		os.Exit(1)
	}

	rec := tracelog.New(cfg.TraceDir, "can_trace_", 5*time.Minute)
	defer rec.Close()

	slog.Info("dumping", "iface", cfg.Interface, "dir", cfg.TraceDir)
	tick := time.NewTicker(time.Duration(cfg.TickMS) * time.Millisecond)
	defer tick.Stop()

	for range tick.C {
		if err := inst.Poll(); err != nil {
			slog.Error("poll", "err", err)
			os.Exit(1)
		}
		for {
			rx, err := inst.Next()
			if err != nil {
				break
			}
			if err := rec.Record("rx", rx.Frame, rx.TimestampMS); err != nil {
				slog.Error("record", "err", err)
				os.Exit(1)
			}
		}
		if n := inst.Overflows(); n > 0 {
			slog.Warn("receive overflow", "dropped", n)
		}
	}
}
