package sensor

import (
	"fmt"
	"io"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/shtc3"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// Bus is an I2C bus that can be released.
type Bus interface {
	drivers.I2C
	io.Closer
}

// SHTC3 reads one SHTC3 per logical channel. Each channel sits on its own
// bus, usually a downstream port of an I2C multiplexer exposed by the kernel.
type SHTC3 struct {
	devs  [logic.NumChannels]*shtc3.Device
	buses []Bus
}

// NewSHTC3 attaches a sensor to every non-nil bus. Channels with a nil bus
// report ErrChannel.
func NewSHTC3(buses [logic.NumChannels]Bus) *SHTC3 {
	s := &SHTC3{}
	for i, bus := range buses {
		if bus == nil {
			continue
		}
		dev := shtc3.New(bus)
		s.devs[i] = &dev
		s.buses = append(s.buses, bus)
	}
	return s
}

// Read wakes the sensor on ch, takes one measurement and puts it back to sleep.
func (s *SHTC3) Read(ch logic.Channel) (logic.Reading, error) {
	if ch < 0 || int(ch) >= logic.NumChannels || s.devs[ch] == nil {
		return logic.Reading{}, fmt.Errorf("read %s: %w", ch, ErrChannel)
	}
	dev := s.devs[ch]
	if err := dev.WakeUp(); err != nil {
		return logic.Reading{}, fmt.Errorf("wake %s: %w", ch, err)
	}
	defer dev.Sleep()

	milliC, rhx100, err := dev.ReadTemperatureHumidity()
	if err != nil {
		return logic.Reading{}, fmt.Errorf("read %s: %w", ch, err)
	}
	return logic.Reading{
		TemperatureF: CelsiusToF(float64(milliC) / 1000),
		Humidity:     float64(rhx100) / 100,
	}, nil
}

// Close releases every bus.
func (s *SHTC3) Close() error {
	var errs []error
	for _, b := range s.buses {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
