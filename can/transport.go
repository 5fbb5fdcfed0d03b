package can

// Transport is the hardware-facing peripheral contract. Classic CAN and
// CAN-FD peripherals implement the same logical operations; the core never
// branches on the family, only the implementation differs.
//
// Send must not block waiting for a slot: when no transmit mailbox is free
// it returns an error wrapping ErrBusy synchronously.
type Transport interface {
	// Start enables the peripheral. Called once during instance setup.
	Start() error

	// Send submits one frame for transmission.
	Send(Frame) error

	// FreeTxSlots reports how many transmit mailboxes are currently free.
	// Implementations without an explicit mailbox count report a positive
	// number and surface exhaustion from Send instead.
	FreeTxSlots() int

	// Pending reports how many frames wait in the given receive queue.
	Pending(FIFO) int

	// Receive pops one frame from the given receive queue.
	Receive(FIFO) (Frame, error)

	// ConfigureFilter programs an acceptance filter bank. A zero mask
	// accepts all traffic.
	ConfigureFilter(bank int, id, mask uint32) error

	// NotifyPending installs the receive-pending callback. Interrupt-driven
	// implementations invoke it once per pending queue; polled
	// implementations may ignore it.
	NotifyPending(func(FIFO))
}

// Clock is a monotonic millisecond counter. It wraps at 2^32; all time
// arithmetic in this package uses wraparound-tolerant unsigned subtraction.
type Clock interface {
	NowMS() uint32
}
