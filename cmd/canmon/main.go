// canmon watches the vehicle bus through the driver layer's mailbox
// strategy: it registers the board packet IDs, runs the periodic service
// loop and prints decoded values once a second, flagging feeds that have
// gone stale.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/LoveWonYoung/cancore/can"
	"github.com/LoveWonYoung/cancore/config"
	"github.com/LoveWonYoung/cancore/driver"
	"github.com/LoveWonYoung/cancore/ids"
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
	inst, err := can.New(reg, tr, can.Config{})
	if err != nil {
		slog.Error("bind instance", "err", err)
		os.Exit(1)
	}

	apps := can.NewMailbox(ids.APPSPacketID, ids.APPSTimeoutMS, 8)
	fault := can.NewMailbox(ids.APPSFaultPacketID, 0, 3)
	for _, m := range []*can.Mailbox{apps, fault} {
		if err := inst.AddMailbox(m); err != nil {
			slog.Error("register mailbox", "id", m.ID(), "err", err)
			os.Exit(1)
		}
	}

	slog.Info("monitoring", "iface", cfg.Interface, "family", cfg.Family)
	tick := time.NewTicker(time.Duration(cfg.TickMS) * time.Millisecond)
	defer tick.Stop()
	report := time.NewTicker(time.Second)
	defer report.Stop()

	for {
		select {
		case <-tick.C:
			inst.Periodic()
		case <-report.C:
			v1 := can.ReadScaled[uint16](apps, ids.APPS1VoltageOffset, ids.APPSVoltagePrecision, 0)
			v2 := can.ReadScaled[uint16](apps, ids.APPS2VoltageOffset, ids.APPSVoltagePrecision, 0)
			t1 := can.ReadScaled[uint16](apps, ids.APPS1TravelOffset, ids.APPSTravelPrecision, 0)
			vec := can.ReadInt[uint8](fault, ids.APPSFaultVectorOffset, 0)
			slog.Info("apps",
				"v1", v1, "v2", v2, "travel", t1,
				"fault_vector", vec,
				"stale", apps.TimedOut(),
				"dropped", inst.Dropped())
			apps.Consume()
			fault.Consume()
		}
	}
}
