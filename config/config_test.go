package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Interface != "can0" {
		t.Errorf("Expected default interface can0, got %q", c.Interface)
	}
	if c.Family != "classic" {
		t.Errorf("Expected default family classic, got %q", c.Family)
	}
	if c.TickMS != 1 {
		t.Errorf("Expected default tick 1ms, got %d", c.TickMS)
	}
	if c.SerialBaud != 115200 {
		t.Errorf("Expected default baud 115200, got %d", c.SerialBaud)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CAN_INTERFACE", "vcan1")
	t.Setenv("CAN_FAMILY", "fd")
	t.Setenv("CAN_TICK_MS", "5")
	t.Setenv("CONSOLE_PORT", "/dev/ttyACM0")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Interface != "vcan1" || c.Family != "fd" || c.TickMS != 5 {
		t.Errorf("Expected environment overrides, got %+v", c)
	}
	if c.SerialPort != "/dev/ttyACM0" {
		t.Errorf("Expected console port, got %q", c.SerialPort)
	}
}

func TestLoadRejectsUnknownFamily(t *testing.T) {
	t.Setenv("CAN_FAMILY", "quantum")
	if _, err := Load(); err == nil {
		t.Error("Expected an error for an unknown family")
	}
}
