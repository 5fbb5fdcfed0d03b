// Package config loads tool configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Tool is the shared configuration of the cmd utilities.
type Tool struct {
	// Interface is the CAN network interface the tool binds to.
	Interface string `env:"CAN_INTERFACE" envDefault:"can0"`

	// Family selects the peripheral family: "classic" or "fd".
	Family string `env:"CAN_FAMILY" envDefault:"classic"`

	// TickMS is the service loop period in milliseconds.
	TickMS int `env:"CAN_TICK_MS" envDefault:"1"`

	// TraceDir is where frame trace logs are written.
	TraceDir string `env:"CAN_TRACE_DIR" envDefault:"."`

	// SerialPort is the board's maintenance console port; empty disables
	// the console.
	SerialPort string `env:"CONSOLE_PORT"`

	// SerialBaud is the console baud rate.
	SerialBaud int `env:"CONSOLE_BAUD" envDefault:"115200"`

	// FlashKey is the hex-encoded AES key for the bootloader entry
	// handshake; empty skips authentication.
	FlashKey string `env:"FLASH_KEY"`
}

// Load parses the environment.
func Load() (Tool, error) {
	var c Tool
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	if c.Family != "classic" && c.Family != "fd" {
		return c, fmt.Errorf("config: unknown CAN_FAMILY %q", c.Family)
	}
	return c, nil
}
