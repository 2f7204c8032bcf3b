package display

import (
	"fmt"
	"io"
	"strings"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the controller's console.
const DefaultBaudRate = 115200

const clearScreen = "\x1b[2J\x1b[H"

// Serial renders frames as text on a serial terminal.
type Serial struct {
	port  io.WriteCloser
	last  Frame
	drawn bool
}

// OpenSerial opens the terminal on port at baud.
func OpenSerial(port string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial display %s: %w", port, err)
	}
	return newSerial(p), nil
}

func newSerial(w io.WriteCloser) *Serial {
	return &Serial{port: w}
}

// Render clears the terminal and writes every row of f.
func (s *Serial) Render(f Frame) error {
	if s.drawn && f.Equal(s.last) {
		return nil
	}
	var b strings.Builder
	b.WriteString(clearScreen)
	for _, row := range f.Rows() {
		b.WriteString(row)
		b.WriteString("\r\n")
	}
	if _, err := io.WriteString(s.port, b.String()); err != nil {
		return fmt.Errorf("write serial display: %w", err)
	}
	s.last = f
	s.drawn = true
	return nil
}

// Close releases the port.
func (s *Serial) Close() error {
	return s.port.Close()
}
