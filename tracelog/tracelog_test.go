package tracelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LoveWonYoung/cancore/can"
)

func TestRecordWritesFrameLine(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, "trace_", 0)
	defer r.Close()

	f := can.Frame{ID: 0xD0, Len: 3, Data: [8]byte{0x01, 0x02, 0x03}}
	if err := r.Record("rx", f, 1234); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := r.Record("tx", f, 1235); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*", "trace_*.log"))
	if err != nil || len(files) != 1 {
		t.Fatalf("Expected 1 trace file, got %v (%v)", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "rx 0D0 [3] 01 02 03") {
		t.Errorf("Expected the frame text in line %q", lines[0])
	}
	if !strings.Contains(lines[0], "1234") {
		t.Errorf("Expected the tick stamp in line %q", lines[0])
	}
}

func TestRecordRotates(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, "trace_", time.Minute)
	defer r.Close()

	f := can.Frame{ID: 0x10, Len: 1, Data: [8]byte{1}}
	if err := r.Record("rx", f, 1); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	// Force the rotation deadline into the past.
	r.mu.Lock()
	r.opened = r.opened.Add(-2 * time.Minute)
	r.mu.Unlock()
	if err := r.Record("rx", f, 2); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*", "trace_*.log"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	// Both records land in files; a second file only appears when the
	// minute boundary moved the name, so accept 1 or 2 but demand all
	// lines survive.
	var total int
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		total += strings.Count(string(data), "\n")
	}
	if total != 2 {
		t.Errorf("Expected 2 recorded lines across rotations, got %d", total)
	}
}

func TestDayDirectoryName(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, "trace_", 0)
	defer r.Close()

	if err := r.Record("rx", can.Frame{ID: 1, Len: 0}, 0); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	now := time.Now()
	want := filepath.Join(dir, now.Format("2006_01_02"))
	if _, err := os.Stat(want); err != nil {
		t.Errorf("Expected day directory %s, got %v", want, err)
	}
}
