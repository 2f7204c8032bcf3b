// Package gpio provides access to the front-panel input lines and the buzzer
// output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Levels is one sample of the input lines.
// EncA and EncB are raw pin levels (true = high). Confirm and Back are
// logical button states (true = pressed); the hardware lines are pull-up,
// active-low.
type Levels struct {
	EncA    bool
	EncB    bool
	Confirm bool
	Back    bool
}

// Reader samples the input lines.
type Reader interface {
	// Read returns the current levels of all input lines.
	Read() (Levels, error)

	// Close releases GPIO resources.
	Close() error
}

// Buzzer drives the single buzzer output.
type Buzzer interface {
	// Set turns the buzzer on or off. The line is active-low.
	Set(on bool) error

	// Close releases the line, leaving the buzzer off.
	Close() error
}

// Pins holds the chip name and line offsets (BCM numbering).
type Pins struct {
	Chip    string `yaml:"chip"`
	EncA    int    `yaml:"encoder_a"`
	EncB    int    `yaml:"encoder_b"`
	Confirm int    `yaml:"confirm"`
	Back    int    `yaml:"back"`
	Buzzer  int    `yaml:"buzzer"`
}

// DefaultPins is the stock wiring on a Raspberry Pi header.
var DefaultPins = Pins{
	Chip:    "gpiochip0",
	EncA:    17,
	EncB:    27,
	Confirm: 22,
	Back:    23,
	Buzzer:  24,
}
