//go:build !linux

package i2c

import "errors"

// Bus is not available on non-Linux platforms.
type Bus struct{}

// Open returns an error on non-Linux platforms.
func Open(string) (*Bus, error) {
	return nil, errors.New("i2c: not supported on this platform (requires Linux)")
}

// Tx is not implemented on non-Linux platforms.
func (b *Bus) Tx(uint16, []byte, []byte) error {
	return errors.New("i2c: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *Bus) Close() error {
	return nil
}
