package clock

import "testing"

func TestManualAdvance(t *testing.T) {
	c := NewManual()
	if c.NowMS() != 0 {
		t.Errorf("Expected a fresh manual clock at 0, got %d", c.NowMS())
	}
	c.Advance(3)
	c.Advance(7)
	if c.NowMS() != 10 {
		t.Errorf("Expected 10, got %d", c.NowMS())
	}
	c.Set(100)
	if c.NowMS() != 100 {
		t.Errorf("Expected 100 after Set, got %d", c.NowMS())
	}
}

func TestManualWraparound(t *testing.T) {
	c := NewManual()
	c.Set(0xFFFFFFFE)
	last := c.NowMS()
	c.Advance(5)

	// Unsigned subtraction stays correct across the 2^32 wrap.
	if elapsed := c.NowMS() - last; elapsed != 5 {
		t.Errorf("Expected elapsed 5 across the wrap, got %d", elapsed)
	}
	if c.NowMS() != 3 {
		t.Errorf("Expected wrapped value 3, got %d", c.NowMS())
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	w := System()
	a := w.NowMS()
	b := w.NowMS()
	if b-a > 1000 {
		t.Errorf("Expected consecutive reads within a second, got %d and %d", a, b)
	}
}
