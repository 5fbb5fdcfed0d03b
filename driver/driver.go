// Package driver contains the hardware-facing transport adapters behind
// the can.Transport contract: an in-memory simulated peripheral for tests
// and bench setups, and Linux SocketCAN adapters for classic CAN and
// CAN-FD interfaces.
package driver

// Family selects the peripheral personality.
type Family byte

const (
	// Classic is a CAN 2.0 peripheral with a small set of transmit
	// mailboxes. It rejects FD-framed traffic.
	Classic Family = iota
	// FD is a CAN-FD peripheral with a deeper transmit FIFO. It accepts
	// both framings.
	FD
)

func (f Family) String() string {
	if f == FD {
		return "canfd"
	}
	return "can"
}

// Transmit queue depths per family.
const (
	classicTxSlots = 3
	fdTxSlots      = 32
)
