// Package console implements the board's maintenance console: a line
// protocol over a USB virtual COM port (or any io.ReadWriter). Lines are
// lower-cased and matched against a command table; the built-in dfu
// command hands control to the configured reboot hook so the board can
// drop into its bootloader.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// maxLine caps the input accumulator; longer lines reset it, mirroring the
// firmware's fixed receive buffer.
const maxLine = 64

// DFUCommand is the line that triggers a reboot into the bootloader.
const DFUCommand = "dfu"

// Console reads commands and writes replies over one stream.
type Console struct {
	rw     io.ReadWriter
	reboot func()
	cmds   map[string]func(*Console)
}

// New builds a console over rw. reboot runs when the dfu command is
// received; nil disables it.
func New(rw io.ReadWriter, reboot func()) *Console {
	return &Console{
		rw:     rw,
		reboot: reboot,
		cmds:   make(map[string]func(*Console)),
	}
}

// Handle registers a command by its lower-case name.
func (c *Console) Handle(name string, fn func(*Console)) {
	c.cmds[strings.ToLower(name)] = fn
}

// Println writes one reply line with the CRLF the terminal side expects.
func (c *Console) Println(s string) {
	fmt.Fprintf(c.rw, "%s\r\n", s)
}

// Printf formats one reply line.
func (c *Console) Printf(format string, args ...any) {
	c.Println(fmt.Sprintf(format, args...))
}

// Run consumes input until EOF, stream error or context cancellation,
// dispatching one command per line.
func (c *Console) Run(ctx context.Context) error {
	r := bufio.NewReader(c.rw)
	var line []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if b == '\n' || b == 0 {
			c.dispatch(string(line))
			line = line[:0]
			continue
		}
		if b == '\r' {
			continue
		}
		line = append(line, b)
		if len(line) >= maxLine {
			// Overflow: discard the partial line and start over.
			line = line[:0]
		}
	}
}

func (c *Console) dispatch(raw string) {
	cmd := strings.ToLower(strings.TrimSpace(raw))
	if cmd == "" {
		return
	}
	if cmd == DFUCommand {
		c.Println("Restarting in DFU mode...")
		if c.reboot != nil {
			c.reboot()
		}
		return
	}
	if fn, ok := c.cmds[cmd]; ok {
		fn(c)
		return
	}
	c.Println("Received and ingested message.")
}
