package driver

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/LoveWonYoung/cancore/can"
)

// Sim is an in-memory peripheral implementing can.Transport. It models the
// pieces of real hardware the core cares about: a bounded set of transmit
// mailboxes, two receive FIFOs, acceptance filter banks and an optional
// pending-notification callback that emulates interrupt-driven delivery.
//
// Tests inject traffic with Inject and collect transmissions with
// TakeSent. With auto-drain off, sent frames keep occupying mailboxes
// until taken, which is how transmit back-pressure is exercised.
type Sim struct {
	family Family

	mu         sync.Mutex
	started    bool
	autoDrain  bool
	txSlots    int
	txQueue    []can.Frame
	fifos      [2][]can.Frame
	filters    map[int]simFilter
	notify     func(can.FIFO)
	interrupts bool

	startErr   error
	sendErr    error
	receiveErr error

	log *slog.Logger
}

type simFilter struct {
	id, mask uint32
}

// NewSim builds a simulated peripheral of the given family. Frames sent to
// it are drained automatically unless SetAutoDrain(false) is called.
func NewSim(family Family) *Sim {
	slots := classicTxSlots
	if family == FD {
		slots = fdTxSlots
	}
	return &Sim{
		family:    family,
		autoDrain: true,
		txSlots:   slots,
		filters:   make(map[int]simFilter),
		log:       slog.Default(),
	}
}

// Start enables the peripheral.
func (s *Sim) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

// Send queues one frame for transmission.
func (s *Sim) Send(f can.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return fmt.Errorf("peripheral not started: %w", can.ErrTransport)
	}
	if s.sendErr != nil {
		return s.sendErr
	}
	if s.family == Classic && f.FD {
		return fmt.Errorf("fd frame on classic peripheral: %w", can.ErrInvalidParam)
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if !s.autoDrain && len(s.txQueue) >= s.txSlots {
		return can.ErrBusy
	}
	// With auto-drain the wire is infinitely fast: the mailbox frees
	// immediately and the frame only lands in the sent log.
	s.txQueue = append(s.txQueue, f)
	s.log.Debug("sim tx", "family", s.family.String(), "frame", f.String())
	return nil
}

// FreeTxSlots reports the free transmit mailboxes.
func (s *Sim) FreeTxSlots() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autoDrain {
		return s.txSlots
	}
	return s.txSlots - len(s.txQueue)
}

// Pending reports queued frames in one receive FIFO.
func (s *Sim) Pending(q can.FIFO) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(q) >= len(s.fifos) {
		return 0
	}
	return len(s.fifos[q])
}

// Receive pops the oldest frame from one receive FIFO.
func (s *Sim) Receive(q can.FIFO) (can.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.receiveErr != nil {
		return can.Frame{}, s.receiveErr
	}
	if int(q) >= len(s.fifos) || len(s.fifos[q]) == 0 {
		return can.Frame{}, can.ErrBufferEmpty
	}
	f := s.fifos[q][0]
	s.fifos[q] = s.fifos[q][1:]
	return f, nil
}

// ConfigureFilter programs one acceptance filter bank. A zero mask accepts
// everything.
func (s *Sim) ConfigureFilter(bank int, id, mask uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[bank] = simFilter{id: id, mask: mask}
	return nil
}

// NotifyPending installs the receive-pending callback. It only fires when
// interrupt emulation is enabled; polled setups leave it dormant.
func (s *Sim) NotifyPending(fn func(can.FIFO)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// SetInterrupts switches between polled delivery (default) and firing the
// pending notification from Inject.
func (s *Sim) SetInterrupts(on bool) {
	s.mu.Lock()
	s.interrupts = on
	s.mu.Unlock()
}

// Inject places one frame into a receive FIFO, as if it arrived from the
// bus, honoring the acceptance filters.
func (s *Sim) Inject(q can.FIFO, f can.Frame) {
	s.mu.Lock()
	if int(q) >= len(s.fifos) || !s.accepts(f) {
		s.mu.Unlock()
		return
	}
	s.fifos[q] = append(s.fifos[q], f)
	notify := s.notify
	fire := s.interrupts && notify != nil
	s.mu.Unlock()
	if fire {
		notify(q)
	}
}

// accepts applies the filter banks; with no non-zero mask configured all
// traffic passes.
func (s *Sim) accepts(f can.Frame) bool {
	filtered := false
	for _, flt := range s.filters {
		if flt.mask == 0 {
			continue
		}
		filtered = true
		if f.ID&flt.mask == flt.id&flt.mask {
			return true
		}
	}
	return !filtered
}

// TakeSent removes and returns every frame transmitted so far, freeing the
// mailboxes they occupied when auto-drain is off.
func (s *Sim) TakeSent() []can.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.txQueue
	s.txQueue = nil
	return out
}

// SetAutoDrain controls whether transmit mailboxes free immediately.
// Frames already queued stay in the sent log until taken either way.
func (s *Sim) SetAutoDrain(on bool) {
	s.mu.Lock()
	s.autoDrain = on
	s.mu.Unlock()
}

// FailStart makes the next Start return err. For setup-rollback tests.
func (s *Sim) FailStart(err error) {
	s.mu.Lock()
	s.startErr = err
	s.mu.Unlock()
}

// FailSend makes every Send return err until cleared with nil.
func (s *Sim) FailSend(err error) {
	s.mu.Lock()
	s.sendErr = err
	s.mu.Unlock()
}

// FailReceive makes every Receive return err until cleared with nil, while
// Pending keeps reporting queued frames. Exercises drain-loop bail-out.
func (s *Sim) FailReceive(err error) {
	s.mu.Lock()
	s.receiveErr = err
	s.mu.Unlock()
}
