package can

// ring is the FIFO receive strategy: a fixed-capacity circular buffer of
// received frames in arrival order. head is the next write slot, tail the
// next read slot; one slot is always sacrificed so that full
// ((head+1)%cap == tail) stays distinguishable from empty (head == tail).
//
// Overflow policy: the newest frame is dropped and counted. Consumers that
// need completeness should size the buffer for their worst-case burst.
type ring struct {
	buf       []Received
	head      int
	tail      int
	overflows uint32
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Received, capacity)}
}

func (r *ring) full() bool {
	return (r.head+1)%len(r.buf) == r.tail
}

func (r *ring) empty() bool {
	return r.head == r.tail
}

func (r *ring) count() int {
	return (r.head - r.tail + len(r.buf)) % len(r.buf)
}

// push stores one frame, or drops it and bumps the overflow counter when
// the buffer is full.
func (r *ring) push(v Received) bool {
	if r.full() {
		r.overflows++
		return false
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	return true
}

// pop removes and returns the oldest frame.
func (r *ring) pop() (Received, bool) {
	if r.empty() {
		return Received{}, false
	}
	v := r.buf[r.tail]
	r.tail = (r.tail + 1) % len(r.buf)
	return v, true
}
