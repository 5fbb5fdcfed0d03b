package can

import "errors"

// Closed result set of the driver. Operations wrap these with context via
// fmt.Errorf("...: %w", ...); classify with errors.Is.
var (
	// ErrTransport is a generic hardware/peripheral failure.
	ErrTransport = errors.New("can: transport error")

	// ErrBusy means no transmit slot is available right now. The caller may
	// retry later; the driver never retries on its own.
	ErrBusy = errors.New("can: no transmit slot available")

	// ErrBufferFull reports capacity exhaustion of a driver-side table.
	ErrBufferFull = errors.New("can: buffer full")

	// ErrBufferEmpty reports a pop from an empty receive buffer.
	ErrBufferEmpty = errors.New("can: buffer empty")

	// ErrInvalidParam reports a caller contract violation, caught before any
	// hardware is touched.
	ErrInvalidParam = errors.New("can: invalid parameter")

	// ErrNotFound reports a lookup miss on remove or get.
	ErrNotFound = errors.New("can: not found")

	// ErrInstanceNull reports an operation on an absent or uninitialized
	// instance.
	ErrInstanceNull = errors.New("can: instance not initialized")

	// ErrMaxInstances reports that the instance registry is at capacity.
	ErrMaxInstances = errors.New("can: max instances reached")

	// ErrAlreadyRegistered reports a duplicate registration: a transport
	// handle bound twice, or a mailbox ID added twice.
	ErrAlreadyRegistered = errors.New("can: already registered")
)
