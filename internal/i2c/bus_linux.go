//go:build linux

package i2c

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl that selects the target address.
const i2cSlave = 0x0703

// Bus is an open i2c-dev adapter. It is safe for concurrent use.
type Bus struct {
	mu   sync.Mutex
	path string
	f    *os.File
	addr uint16
	set  bool
}

// Open opens the adapter at path (e.g. /dev/i2c-1).
func Open(path string) (*Bus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", path, err)
	}
	return &Bus{path: path, f: f}, nil
}

// Tx writes w then reads len(r) bytes from the device at addr.
// Either may be empty.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.set || b.addr != addr {
		if err := unix.IoctlSetInt(int(b.f.Fd()), i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("select i2c address 0x%02x on %s: %w", addr, b.path, err)
		}
		b.addr = addr
		b.set = true
	}
	if len(w) > 0 {
		if _, err := b.f.Write(w); err != nil {
			return fmt.Errorf("i2c write 0x%02x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		if _, err := b.f.Read(r); err != nil {
			return fmt.Errorf("i2c read 0x%02x: %w", addr, err)
		}
	}
	return nil
}

// Close releases the adapter.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.f.Close()
}
