// Package i2c exposes a Linux i2c-dev adapter as a tinygo.org/x/drivers bus,
// so the stock sensor and display drivers run unchanged on a Raspberry Pi.
package i2c

import "tinygo.org/x/drivers"

// Compile-time check.
var _ drivers.I2C = (*Bus)(nil)

// DefaultPath is the first I2C adapter on a Raspberry Pi.
const DefaultPath = "/dev/i2c-1"
