// Package sensor acquires temperature and humidity per logical channel.
package sensor

import (
	"errors"
	"fmt"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// ErrChannel is returned for a channel with no sensor attached.
var ErrChannel = errors.New("sensor: no sensor on channel")

// Reader reads one logical channel.
type Reader interface {
	Read(ch logic.Channel) (logic.Reading, error)
	Close() error
}

// CelsiusToF converts °C to °F.
func CelsiusToF(c float64) float64 {
	return c*9/5 + 32
}

// Fake returns scripted readings.
type Fake struct {
	Readings [logic.NumChannels]logic.Reading
	Errors   [logic.NumChannels]error
	Reads    int
	Closed   bool
}

// Set sets the reading of ch.
func (f *Fake) Set(ch logic.Channel, tempF, humidity float64) {
	f.Readings[ch] = logic.Reading{TemperatureF: tempF, Humidity: humidity}
}

// Read returns the scripted reading or error for ch.
func (f *Fake) Read(ch logic.Channel) (logic.Reading, error) {
	if ch < 0 || int(ch) >= logic.NumChannels {
		return logic.Reading{}, fmt.Errorf("read %d: %w", ch, ErrChannel)
	}
	f.Reads++
	if err := f.Errors[ch]; err != nil {
		return logic.Reading{}, fmt.Errorf("read %s: %w", ch, err)
	}
	return f.Readings[ch], nil
}

// Close marks the fake closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
