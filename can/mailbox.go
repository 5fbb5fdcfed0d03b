package can

import "sync"

// Mailbox is a receive slot reserved for one CAN ID, holding the most
// recently received payload for that ID plus freshness metadata. The
// application registers one mailbox per ID of interest before traffic
// starts; the driver overwrites it in place on every matching frame.
//
// Ingestion may run on a transport goroutine while the application reads
// from the main loop, so all mutable state sits behind a mutex.
type Mailbox struct {
	id        uint32
	timeoutMS uint32

	mu       sync.Mutex
	dlc      uint8
	data     [8]byte
	stampMS  uint32
	recent   bool
	timedOut bool
}

// NewMailbox builds a receive slot for the given ID. timeoutMS zero disables
// staleness checking for this entry.
func NewMailbox(id, timeoutMS uint32, dlc uint8) *Mailbox {
	return &Mailbox{id: id, timeoutMS: timeoutMS, dlc: dlc}
}

// ID returns the CAN identifier this slot is reserved for.
func (m *Mailbox) ID() uint32 { return m.id }

// Recent reports whether new data has landed since the last Consume.
func (m *Mailbox) Recent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recent
}

// TimedOut reports whether the entry went stale past its timeout. The flag
// is sticky: only the arrival of fresh data clears it, never the passage of
// time.
func (m *Mailbox) TimedOut() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timedOut
}

// Timestamp returns the arrival time of the last frame, in clock
// milliseconds.
func (m *Mailbox) Timestamp() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stampMS
}

// Bytes returns a copy of the current payload.
func (m *Mailbox) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, m.dlc)
	copy(out, m.data[:m.dlc])
	return out
}

// Consume marks the current data as read. Reading accessors never clear the
// recent flag themselves, so multiple readers can observe freshness without
// racing each other's consumption.
func (m *Mailbox) Consume() {
	m.mu.Lock()
	m.recent = false
	m.mu.Unlock()
}

// store overwrites the slot with a fresh frame.
func (m *Mailbox) store(f Frame, nowMS uint32) {
	m.mu.Lock()
	n := f.Len
	if n > 8 {
		n = 8
	}
	m.dlc = n
	copy(m.data[:], f.Data[:])
	m.stampMS = nowMS
	m.recent = true
	m.timedOut = false
	m.mu.Unlock()
}

// checkTimeout marks the entry stale once now-stamp exceeds the timeout.
func (m *Mailbox) checkTimeout(nowMS uint32) {
	if m.timeoutMS == 0 {
		return
	}
	m.mu.Lock()
	if nowMS-m.stampMS > m.timeoutMS {
		m.timedOut = true
	}
	m.mu.Unlock()
}

// snapshot returns the payload and freshness atomically, for the codec
// accessors.
func (m *Mailbox) snapshot() ([8]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.recent
}
