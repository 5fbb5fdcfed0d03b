package console

import (
	"io"

	"go.bug.st/serial"
)

// OpenSerial opens the named serial port for console traffic, 8N1 at the
// given baud rate.
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{BaudRate: baud}
	return serial.Open(name, mode)
}
