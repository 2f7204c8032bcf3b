package display

import (
	"fmt"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// DefaultLCDAddress is the usual PCF8574 backpack address.
const DefaultLCDAddress = 0x27

// charLCD is the subset of the HD44780 driver the renderer uses.
type charLCD interface {
	ClearDisplay()
	SetCursor(x, y uint8)
	Print(data []byte)
}

// LCD renders frames on an HD44780 character display behind an I2C backpack.
type LCD struct {
	dev    charLCD
	width  int
	height int
	last   []string
	drawn  bool
}

// NewLCD configures the display at addr on bus.
func NewLCD(bus drivers.I2C, addr uint8, width, height int) (*LCD, error) {
	dev := hd44780i2c.New(bus, addr)
	if err := dev.Configure(hd44780i2c.Config{Width: uint8(width), Height: uint8(height)}); err != nil {
		return nil, fmt.Errorf("configure lcd at 0x%02x: %w", addr, err)
	}
	return newLCD(&dev, width, height), nil
}

func newLCD(dev charLCD, width, height int) *LCD {
	return &LCD{dev: dev, width: width, height: height}
}

// Render draws the visible window of f. Unchanged frames are not redrawn.
func (l *LCD) Render(f Frame) error {
	rows := f.Window(l.height)
	for i := range rows {
		if len(rows[i]) > l.width {
			rows[i] = rows[i][:l.width]
		}
	}
	if l.drawn && equalRows(rows, l.last) {
		return nil
	}

	l.dev.ClearDisplay()
	for y, row := range rows {
		l.dev.SetCursor(0, uint8(y))
		l.dev.Print([]byte(row))
	}
	l.last = rows
	l.drawn = true
	return nil
}

// Close blanks the display.
func (l *LCD) Close() error {
	l.dev.ClearDisplay()
	return nil
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
