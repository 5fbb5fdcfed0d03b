// Package bootloader covers the reboot-into-bootloader path: driving the
// BOOT0 strap and system reset, gating entry behind an AES-CMAC
// challenge/response, and preparing firmware images for transfer in
// CAN-frame-sized chunks.
package bootloader

import (
	"fmt"
	"time"
)

// Pin drives one GPIO output.
type Pin interface {
	Set(high bool) error
}

// Resetter performs the system reset. It is not expected to return on real
// hardware.
type Resetter interface {
	Reset()
}

// Controller sequences the bootloader entry: raise BOOT0, let the strap
// settle, reset.
type Controller struct {
	boot0 Pin
	rst   Resetter

	// Settle is the delay between raising the strap and resetting.
	Settle time.Duration

	sleep func(time.Duration)
}

// NewController builds the entry sequencer with the default 100ms settle
// delay.
func NewController(boot0 Pin, rst Resetter) *Controller {
	return &Controller{
		boot0:  boot0,
		rst:    rst,
		Settle: 100 * time.Millisecond,
		sleep:  time.Sleep,
	}
}

// Enter raises BOOT0 and resets into the bootloader.
func (c *Controller) Enter() error {
	if c.boot0 == nil || c.rst == nil {
		return fmt.Errorf("bootloader: controller not wired")
	}
	if err := c.boot0.Set(true); err != nil {
		return fmt.Errorf("bootloader: raise boot0: %w", err)
	}
	c.sleep(c.Settle)
	c.rst.Reset()
	return nil
}
