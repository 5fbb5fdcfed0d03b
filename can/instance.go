package can

import (
	"fmt"
	"sync"

	"github.com/LoveWonYoung/cancore/clock"
)

// Config tunes one driver instance. The zero value selects the defaults:
// wall clock, schedule of 16, mailbox table of 32, accept-all filter,
// ID-keyed mailbox receive strategy.
type Config struct {
	// Clock supplies the millisecond tick. Defaults to clock.System().
	Clock Clock

	// ScheduleSize caps the number of periodic transmit packets.
	ScheduleSize int

	// MailboxSize caps the number of registered receive IDs.
	MailboxSize int

	// RingSize, when positive, selects the FIFO ring-buffer receive
	// strategy instead of the ID-keyed mailbox table. Arbitrary traffic is
	// then captured in arrival order and read with Next.
	RingSize int

	// FilterID and FilterMask program the default acceptance filter at
	// setup. A zero mask accepts all traffic.
	FilterID   uint32
	FilterMask uint32
}

const (
	defaultScheduleSize = 16
	defaultMailboxSize  = 32
)

func (c *Config) applyDefaults() {
	if c.Clock == nil {
		c.Clock = clock.System()
	}
	if c.ScheduleSize <= 0 {
		c.ScheduleSize = defaultScheduleSize
	}
	if c.MailboxSize <= 0 {
		c.MailboxSize = defaultMailboxSize
	}
}

type rxStrategy uint8

const (
	rxMailbox rxStrategy = iota
	rxRing
)

// Instance is the per-peripheral driver state: the transmit schedule, the
// receive table and their bookkeeping. It references its Transport but does
// not own it; the caller keeps the hardware handle alive for at least the
// life of the instance.
//
// All schedule and table mutation is meant for one periodic loop or task.
// The only concurrent path is frame ingestion, which may run from a
// transport callback and is guarded internally.
type Instance struct {
	transport   Transport
	clk         Clock
	reg         *Registry
	initialized bool

	schedule []*Packet
	schedCap int

	rxMu      sync.Mutex
	strategy  rxStrategy
	mailboxes []*Mailbox
	mboxCap   int
	dropped   uint32
	rx        *ring
}

// New binds a transport to a fresh driver instance: registers it in the
// registry, applies the default acceptance filter, enables receive-pending
// notifications and starts the peripheral. On any setup failure the
// registration is rolled back and the instance is unusable.
//
// Binding the same transport handle twice fails with ErrAlreadyRegistered;
// re-initialization in place is deliberately not supported.
func New(reg *Registry, t Transport, cfg Config) (*Instance, error) {
	if reg == nil {
		return nil, fmt.Errorf("nil registry: %w", ErrInvalidParam)
	}
	if t == nil {
		return nil, fmt.Errorf("nil transport: %w", ErrInvalidParam)
	}
	cfg.applyDefaults()

	inst := &Instance{
		transport: t,
		clk:       cfg.Clock,
		reg:       reg,
		schedule:  make([]*Packet, 0, cfg.ScheduleSize),
		schedCap:  cfg.ScheduleSize,
		mboxCap:   cfg.MailboxSize,
	}
	if cfg.RingSize > 0 {
		inst.strategy = rxRing
		inst.rx = newRing(cfg.RingSize)
	} else {
		inst.mailboxes = make([]*Mailbox, 0, cfg.MailboxSize)
	}

	if err := reg.add(t, inst); err != nil {
		return nil, err
	}
	if err := t.ConfigureFilter(0, cfg.FilterID, cfg.FilterMask); err != nil {
		reg.remove(t)
		return nil, fmt.Errorf("configure filter: %w", err)
	}
	t.NotifyPending(inst.drain)
	if err := t.Start(); err != nil {
		reg.remove(t)
		return nil, fmt.Errorf("start transport: %w", err)
	}

	inst.initialized = true
	return inst, nil
}

// Initialized reports whether setup completed.
func (in *Instance) Initialized() bool {
	return in != nil && in.initialized
}

// AddMailbox registers a receive slot for one CAN ID. Each ID may be
// registered at most once per instance; duplicates and a full table are
// explicit errors, never silent drops.
func (in *Instance) AddMailbox(m *Mailbox) error {
	if !in.Initialized() {
		return ErrInstanceNull
	}
	if m == nil || m.dlc > 8 {
		return ErrInvalidParam
	}
	if in.strategy != rxMailbox {
		return fmt.Errorf("ring-buffer strategy active: %w", ErrInvalidParam)
	}
	in.rxMu.Lock()
	defer in.rxMu.Unlock()
	for _, have := range in.mailboxes {
		if have.id == m.id {
			return fmt.Errorf("mailbox id 0x%X: %w", m.id, ErrAlreadyRegistered)
		}
	}
	if len(in.mailboxes) >= in.mboxCap {
		return ErrBufferFull
	}
	in.mailboxes = append(in.mailboxes, m)
	return nil
}

// Lookup returns the live mailbox registered for id. Reading through it
// does not clear freshness; call Consume on the mailbox for that.
func (in *Instance) Lookup(id uint32) (*Mailbox, error) {
	if !in.Initialized() {
		return nil, ErrInstanceNull
	}
	in.rxMu.Lock()
	defer in.rxMu.Unlock()
	for _, m := range in.mailboxes {
		if m.id == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("mailbox id 0x%X: %w", id, ErrNotFound)
}

// Next pops the oldest frame from the ring-buffer strategy.
func (in *Instance) Next() (Received, error) {
	if !in.Initialized() {
		return Received{}, ErrInstanceNull
	}
	if in.strategy != rxRing {
		return Received{}, fmt.Errorf("mailbox strategy active: %w", ErrInvalidParam)
	}
	in.rxMu.Lock()
	defer in.rxMu.Unlock()
	v, ok := in.rx.pop()
	if !ok {
		return Received{}, ErrBufferEmpty
	}
	return v, nil
}

// Overflows reports how many frames the ring-buffer strategy dropped on
// arrival because the buffer was full.
func (in *Instance) Overflows() uint32 {
	in.rxMu.Lock()
	defer in.rxMu.Unlock()
	if in.rx == nil {
		return 0
	}
	return in.rx.overflows
}

// Dropped reports how many frames arrived for IDs with no registered
// mailbox.
func (in *Instance) Dropped() uint32 {
	in.rxMu.Lock()
	defer in.rxMu.Unlock()
	return in.dropped
}

// Poll actively drains both hardware receive queues into the active receive
// strategy. Transports that deliver through pending notifications do not
// need it, but calling it is harmless.
func (in *Instance) Poll() error {
	if !in.Initialized() {
		return ErrInstanceNull
	}
	for q := FIFO(0); q < numFIFOs; q++ {
		in.drain(q)
	}
	return nil
}

// drain empties one receive queue. It gives up on the queue at the first
// transfer error rather than retrying within the same pass: a peripheral
// that keeps reporting pending frames it cannot deliver must not wedge the
// service loop.
func (in *Instance) drain(fifo FIFO) {
	for in.transport.Pending(fifo) > 0 {
		f, err := in.transport.Receive(fifo)
		if err != nil {
			break
		}
		in.ingest(f)
	}
}

// ingest routes one inbound frame into the active strategy. It may run in
// a transport callback concurrently with main-loop reads.
func (in *Instance) ingest(f Frame) {
	now := in.clk.NowMS()
	in.rxMu.Lock()
	defer in.rxMu.Unlock()
	if in.strategy == rxRing {
		in.rx.push(Received{Frame: f, TimestampMS: now})
		return
	}
	for _, m := range in.mailboxes {
		if m.id == f.ID {
			m.store(f, now)
			return
		}
	}
	// No slot registered for this ID: dropped, no implicit registration.
	in.dropped++
}

// CheckTimeouts marks every mailbox whose deadline has lapsed. It never
// removes or resets entries; the sticky flag is an observability signal for
// the application to fault on stale data.
func (in *Instance) CheckTimeouts() {
	if !in.Initialized() {
		return
	}
	now := in.clk.NowMS()
	in.rxMu.Lock()
	boxes := in.mailboxes
	in.rxMu.Unlock()
	for _, m := range boxes {
		m.checkTimeout(now)
	}
}

// Periodic runs one service tick: due transmissions, then queue draining,
// then the staleness pass. The fixed order guarantees a frame arriving in
// this tick is marked fresh before timeouts are evaluated, so a timeout
// never falsely fires on data received earlier in the same tick.
func (in *Instance) Periodic() {
	if !in.Initialized() {
		return
	}
	in.Service()
	in.Poll()
	in.CheckTimeouts()
}
