// Package heater drives the per-zone heater PWM outputs.
package heater

import "fmt"

// Driver accepts a duty value 0..255 per zone.
type Driver interface {
	SetDuty(zone int, duty uint8) error
	Close() error
}

// Fake records the last duty per zone and every write.
type Fake struct {
	Duty     map[int]uint8
	Writes   []Write
	SetError error
	Closed   bool
}

// Write is one recorded SetDuty call.
type Write struct {
	Zone int
	Duty uint8
}

// NewFake creates a fake with all zones at zero.
func NewFake() *Fake {
	return &Fake{Duty: map[int]uint8{}}
}

// SetDuty records the write.
func (f *Fake) SetDuty(zone int, duty uint8) error {
	if f.SetError != nil {
		return fmt.Errorf("set duty zone %d: %w", zone, f.SetError)
	}
	if f.Duty == nil {
		f.Duty = map[int]uint8{}
	}
	f.Duty[zone] = duty
	f.Writes = append(f.Writes, Write{Zone: zone, Duty: duty})
	return nil
}

// Close zeroes every zone and marks the fake closed.
func (f *Fake) Close() error {
	for z := range f.Duty {
		f.Duty[z] = 0
	}
	f.Closed = true
	return nil
}
