package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

// duplex pairs a canned input with an output buffer.
type duplex struct {
	in  io.Reader
	out bytes.Buffer
}

func (d *duplex) Read(p []byte) (int, error)  { return d.in.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.out.Write(p) }

func run(t *testing.T, input string, reboot func()) (*Console, *duplex) {
	t.Helper()
	d := &duplex{in: strings.NewReader(input)}
	c := New(d, reboot)
	return c, d
}

func TestDFUCommandTriggersReboot(t *testing.T) {
	rebooted := false
	c, d := run(t, "dfu\n", func() { rebooted = true })
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !rebooted {
		t.Error("Expected the dfu line to invoke the reboot hook")
	}
	if got := d.out.String(); got != "Restarting in DFU mode...\r\n" {
		t.Errorf("Expected the DFU notice, got %q", got)
	}
}

func TestDFUCommandIsCaseInsensitive(t *testing.T) {
	rebooted := false
	c, _ := run(t, "  DFU \r\n", func() { rebooted = true })
	c.Run(context.Background())
	if !rebooted {
		t.Error("Expected case-insensitive dfu matching")
	}
}

func TestUnknownLineIsAcknowledged(t *testing.T) {
	c, d := run(t, "hello\n", nil)
	c.Run(context.Background())
	if got := d.out.String(); got != "Received and ingested message.\r\n" {
		t.Errorf("Expected the echo acknowledgment, got %q", got)
	}
}

func TestRegisteredCommand(t *testing.T) {
	c, d := run(t, "stats\n", nil)
	c.Handle("STATS", func(c *Console) { c.Printf("count=%d", 7) })
	c.Run(context.Background())
	if got := d.out.String(); got != "count=7\r\n" {
		t.Errorf("Expected the command output, got %q", got)
	}
}

func TestNulTerminatedLineDispatches(t *testing.T) {
	rebooted := false
	c, _ := run(t, "dfu\x00", func() { rebooted = true })
	c.Run(context.Background())
	if !rebooted {
		t.Error("Expected a NUL terminator to dispatch like a newline")
	}
}

func TestOverlongLineIsDiscarded(t *testing.T) {
	rebooted := false
	input := strings.Repeat("x", 100) + "\ndfu\n"
	c, d := run(t, input, func() { rebooted = true })
	c.Run(context.Background())

	// The overflowing line resets the accumulator, so its tail must not be
	// dispatched, and the next complete line still works.
	if strings.Count(d.out.String(), "Received and ingested message.") > 1 {
		t.Errorf("Expected the overlong line to produce at most one ack, got %q", d.out.String())
	}
	if !rebooted {
		t.Error("Expected the console to recover after an overlong line")
	}
}

func TestEmptyLinesIgnored(t *testing.T) {
	c, d := run(t, "\n\r\n  \n", nil)
	c.Run(context.Background())
	if got := d.out.String(); got != "" {
		t.Errorf("Expected no reply to blank lines, got %q", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := run(t, "dfu\n", func() { t.Error("Expected no dispatch after cancellation") })
	if err := c.Run(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
