package can

import "testing"

func TestRingOrderAndCount(t *testing.T) {
	r := newRing(8)
	if !r.empty() {
		t.Error("Expected a fresh ring to be empty")
	}
	for i := 0; i < 5; i++ {
		if !r.push(Received{Frame: Frame{ID: uint32(i)}}) {
			t.Fatalf("push %d rejected", i)
		}
	}
	if got := r.count(); got != 5 {
		t.Errorf("Expected count 5, got %d", got)
	}
	for i := 0; i < 5; i++ {
		v, ok := r.pop()
		if !ok {
			t.Fatalf("pop %d failed", i)
		}
		if v.ID != uint32(i) {
			t.Errorf("Expected FIFO order, got ID %d at position %d", v.ID, i)
		}
	}
	if _, ok := r.pop(); ok {
		t.Error("Expected pop to fail on an empty ring")
	}
}

func TestRingWrapsAround(t *testing.T) {
	r := newRing(4)
	// Cycle enough times that head and tail wrap several times.
	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			if !r.push(Received{Frame: Frame{ID: uint32(round*3 + i)}}) {
				t.Fatalf("push rejected in round %d", round)
			}
		}
		for i := 0; i < 3; i++ {
			v, ok := r.pop()
			if !ok {
				t.Fatalf("pop failed in round %d", round)
			}
			if v.ID != uint32(round*3+i) {
				t.Errorf("Expected ID %d, got %d", round*3+i, v.ID)
			}
		}
	}
	if r.overflows != 0 {
		t.Errorf("Expected no overflows, got %d", r.overflows)
	}
}

func TestRingOverflowPolicy(t *testing.T) {
	r := newRing(4)
	for i := 0; i < 3; i++ {
		if !r.push(Received{Frame: Frame{ID: uint32(i)}}) {
			t.Fatalf("push %d rejected before capacity", i)
		}
	}
	if !r.full() {
		t.Error("Expected ring of capacity 4 to be full after 3 pushes")
	}
	if r.push(Received{Frame: Frame{ID: 99}}) {
		t.Error("Expected push on a full ring to be rejected")
	}
	if r.overflows != 1 {
		t.Errorf("Expected overflow counter 1, got %d", r.overflows)
	}
	// The stored frames are untouched; the newest arrival was the casualty.
	v, _ := r.pop()
	if v.ID != 0 {
		t.Errorf("Expected the oldest frame to survive, got ID %d", v.ID)
	}
}
