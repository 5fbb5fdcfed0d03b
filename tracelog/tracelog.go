// Package tracelog records bus traffic to rotating trace files: one
// date-named directory per day, one time-stamped file per rotation
// interval, one line per frame.
package tracelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LoveWonYoung/cancore/can"
)

// timestamp layout for trace file names.
const nameLayout = "20060102_1504"

// Recorder appends frames to the current trace file, rotating it on an
// interval so a long bench session never produces one unmanageable file.
type Recorder struct {
	root     string
	prefix   string
	interval time.Duration

	mu     sync.Mutex
	file   *os.File
	opened time.Time
}

// New builds a recorder rooted at dir. A non-positive interval disables
// rotation.
func New(dir, prefix string, interval time.Duration) *Recorder {
	return &Recorder{root: dir, prefix: prefix, interval: interval}
}

// dayDir ensures the date-named directory exists, e.g. 2026_08_29.
func (r *Recorder) dayDir(now time.Time) (string, error) {
	dir := filepath.Join(r.root, fmt.Sprintf("%d_%02d_%02d", now.Year(), now.Month(), now.Day()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("tracelog: create dir: %w", err)
	}
	return dir, nil
}

func (r *Recorder) rotate(now time.Time) error {
	dir, err := r.dayDir(now)
	if err != nil {
		return err
	}
	name := filepath.Join(dir, fmt.Sprintf("%s%s.log", r.prefix, now.Format(nameLayout)))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("tracelog: open %s: %w", name, err)
	}
	if r.file != nil {
		r.file.Close()
	}
	r.file = f
	r.opened = now
	return nil
}

// Record appends one frame line: tick, direction ("rx"/"tx"), id, length,
// payload.
func (r *Recorder) Record(direction string, f can.Frame, tickMS uint32) error {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil || (r.interval > 0 && now.Sub(r.opened) >= r.interval) {
		if err := r.rotate(now); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.file, "%9d %s %s\n", tickMS, direction, f.String())
	return err
}

// Close flushes and closes the current trace file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
