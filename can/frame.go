// Package can implements a multi-instance vehicle-network driver layer: a
// transmit scheduler for one-shot and periodic packets, an ID-keyed receive
// mailbox table with freshness and timeout tracking (or, alternatively, a
// FIFO ring buffer of raw traffic), and a bounded registry that routes
// hardware receive callbacks to the owning instance.
//
// The package owns no hardware. Classic CAN and CAN-FD peripherals are
// reached through the Transport interface; implementations live in the
// driver package.
package can

import "fmt"

// FIFO identifies one of the two hardware receive queues.
type FIFO uint8

const (
	FIFO0 FIFO = iota
	FIFO1

	numFIFOs = 2
)

// Frame is one bus message: identifier, framing flags and up to 8 data bytes.
type Frame struct {
	ID       uint32 // 11-bit (standard) or 29-bit (extended)
	Extended bool
	RTR      bool // remote transmission request
	FD       bool // CAN-FD framing; payload is still limited to 8 bytes here
	Len      uint8
	Data     [8]byte
}

const (
	maxStdID = 0x7FF
	maxExtID = 0x1FFFFFFF
)

// Validate checks identifier range and data length.
func (f Frame) Validate() error {
	if f.Len > 8 {
		return fmt.Errorf("frame length %d: %w", f.Len, ErrInvalidParam)
	}
	limit := uint32(maxStdID)
	if f.Extended {
		limit = maxExtID
	}
	if f.ID > limit {
		return fmt.Errorf("frame id 0x%X: %w", f.ID, ErrInvalidParam)
	}
	return nil
}

func (f Frame) String() string {
	return fmt.Sprintf("%03X [%d] % X", f.ID, f.Len, f.Data[:f.Len])
}

// Received is one frame popped from the ring-buffer receive strategy,
// stamped with the arrival time.
type Received struct {
	Frame
	TimestampMS uint32
}
