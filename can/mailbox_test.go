package can_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/LoveWonYoung/cancore/can"
)

func TestMailboxReceive(t *testing.T) {
	inst, sim, _ := newTestInstance(t, can.Config{})

	m := can.NewMailbox(0x10, 0, 8)
	if err := inst.AddMailbox(m); err != nil {
		t.Fatalf("AddMailbox failed: %v", err)
	}
	if m.Recent() {
		t.Error("Expected new mailbox to report no fresh data")
	}

	sim.Inject(can.FIFO0, can.Frame{ID: 0x10, Len: 4, Data: [8]byte{0xAA, 0xBB, 0xCC, 0xDD}})
	if err := inst.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}

	if !m.Recent() {
		t.Fatal("Expected fresh data after Poll")
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if got := m.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Expected payload % X, got % X", want, got)
	}

	m.Consume()
	if m.Recent() {
		t.Error("Expected Consume to clear the recent flag")
	}
	// Consume marks the data read but does not erase it.
	if got := m.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Expected payload to survive Consume, got % X", got)
	}
}

func TestMailboxLatestValueWins(t *testing.T) {
	inst, sim, clk := newTestInstance(t, can.Config{})

	m := can.NewMailbox(0x10, 0, 8)
	if err := inst.AddMailbox(m); err != nil {
		t.Fatalf("AddMailbox failed: %v", err)
	}

	sim.Inject(can.FIFO0, can.Frame{ID: 0x10, Len: 1, Data: [8]byte{1}})
	clk.Advance(2)
	sim.Inject(can.FIFO0, can.Frame{ID: 0x10, Len: 1, Data: [8]byte{2}})
	inst.Poll()

	if got := m.Bytes(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected the newest payload [2], got % X", got)
	}
	if m.Timestamp() != 2 {
		t.Errorf("Expected timestamp 2, got %d", m.Timestamp())
	}
}

func TestAddMailboxDuplicateID(t *testing.T) {
	inst, sim, _ := newTestInstance(t, can.Config{})

	first := can.NewMailbox(0x10, 0, 8)
	if err := inst.AddMailbox(first); err != nil {
		t.Fatalf("first AddMailbox failed: %v", err)
	}
	second := can.NewMailbox(0x10, 50, 4)
	if err := inst.AddMailbox(second); !errors.Is(err, can.ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered for duplicate ID, got %v", err)
	}

	// The table is unchanged: traffic still lands in the original entry.
	sim.Inject(can.FIFO0, can.Frame{ID: 0x10, Len: 1, Data: [8]byte{1}})
	inst.Poll()
	if !first.Recent() {
		t.Error("Expected the original mailbox to keep receiving")
	}
	if second.Recent() {
		t.Error("Expected the rejected mailbox to stay empty")
	}
}

func TestAddMailboxTableFull(t *testing.T) {
	inst, _, _ := newTestInstance(t, can.Config{MailboxSize: 2})

	for i := 0; i < 2; i++ {
		if err := inst.AddMailbox(can.NewMailbox(uint32(0x10+i), 0, 8)); err != nil {
			t.Fatalf("AddMailbox %d failed: %v", i, err)
		}
	}
	err := inst.AddMailbox(can.NewMailbox(0x20, 0, 8))
	if !errors.Is(err, can.ErrBufferFull) {
		t.Errorf("Expected ErrBufferFull, got %v", err)
	}
}

func TestUnmatchedFramesAreCounted(t *testing.T) {
	inst, sim, _ := newTestInstance(t, can.Config{})

	if err := inst.AddMailbox(can.NewMailbox(0x10, 0, 8)); err != nil {
		t.Fatalf("AddMailbox failed: %v", err)
	}
	sim.Inject(can.FIFO0, can.Frame{ID: 0x99, Len: 1})
	sim.Inject(can.FIFO1, can.Frame{ID: 0x98, Len: 1})
	inst.Poll()

	if n := inst.Dropped(); n != 2 {
		t.Errorf("Expected 2 dropped frames, got %d", n)
	}
}

func TestLookup(t *testing.T) {
	inst, _, _ := newTestInstance(t, can.Config{})

	m := can.NewMailbox(0x10, 0, 8)
	if err := inst.AddMailbox(m); err != nil {
		t.Fatalf("AddMailbox failed: %v", err)
	}
	got, err := inst.Lookup(0x10)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != m {
		t.Error("Expected Lookup to return the registered mailbox")
	}
	if _, err := inst.Lookup(0x11); !errors.Is(err, can.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown ID, got %v", err)
	}
}

func TestPollBailsOutOnReceiveError(t *testing.T) {
	inst, sim, _ := newTestInstance(t, can.Config{})

	m := can.NewMailbox(0x10, 0, 8)
	if err := inst.AddMailbox(m); err != nil {
		t.Fatalf("AddMailbox failed: %v", err)
	}
	sim.Inject(can.FIFO0, can.Frame{ID: 0x10, Len: 1, Data: [8]byte{7}})
	sim.FailReceive(errors.New("bus off"))

	// A peripheral that reports pending frames it cannot deliver must not
	// wedge the service loop.
	if err := inst.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if m.Recent() {
		t.Error("Expected no data while receive is failing")
	}

	sim.FailReceive(nil)
	inst.Poll()
	if !m.Recent() {
		t.Error("Expected the queued frame once receive recovered")
	}
}
