//go:build !linux

package driver

import (
	"log/slog"

	"github.com/LoveWonYoung/cancore/can"
)

// Open falls back to the simulated peripheral on hosts without SocketCAN.
func Open(ifname string, family Family) (can.Transport, error) {
	slog.Warn("no socketcan on this platform, using simulated peripheral", "iface", ifname)
	s := NewSim(family)
	s.SetInterrupts(false)
	return s, nil
}
