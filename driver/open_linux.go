//go:build linux

package driver

import "github.com/LoveWonYoung/cancore/can"

// Open binds the named CAN interface with the given peripheral family.
func Open(ifname string, family Family) (can.Transport, error) {
	if family == FD {
		return NewSocketCANFD(ifname)
	}
	return NewSocketCAN(ifname)
}
