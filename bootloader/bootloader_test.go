package bootloader

import (
	"errors"
	"testing"
	"time"
)

type fakePin struct {
	events *[]string
	err    error
}

func (p fakePin) Set(high bool) error {
	if p.err != nil {
		return p.err
	}
	if high {
		*p.events = append(*p.events, "boot0 high")
	} else {
		*p.events = append(*p.events, "boot0 low")
	}
	return nil
}

type fakeReset struct{ events *[]string }

func (r fakeReset) Reset() { *r.events = append(*r.events, "reset") }

func TestEnterSequence(t *testing.T) {
	var events []string
	var slept time.Duration
	c := NewController(fakePin{events: &events}, fakeReset{events: &events})
	c.sleep = func(d time.Duration) {
		slept = d
		events = append(events, "settle")
	}

	if err := c.Enter(); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	want := []string{"boot0 high", "settle", "reset"}
	if len(events) != len(want) {
		t.Fatalf("Expected %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("Expected %q at step %d, got %q", want[i], i, events[i])
		}
	}
	if slept != 100*time.Millisecond {
		t.Errorf("Expected the default 100ms settle, got %v", slept)
	}
}

func TestEnterPinFailure(t *testing.T) {
	var events []string
	pinErr := errors.New("gpio fault")
	c := NewController(fakePin{events: &events, err: pinErr}, fakeReset{events: &events})
	c.sleep = func(time.Duration) {}

	if err := c.Enter(); !errors.Is(err, pinErr) {
		t.Errorf("Expected the pin error to surface, got %v", err)
	}
	// A strap that never rose must not be followed by a reset.
	if len(events) != 0 {
		t.Errorf("Expected no reset after pin failure, got %v", events)
	}
}

func TestEnterUnwired(t *testing.T) {
	c := &Controller{}
	if err := c.Enter(); err == nil {
		t.Error("Expected an error from an unwired controller")
	}
}
