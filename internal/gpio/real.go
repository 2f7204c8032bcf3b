//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the input lines from actual hardware using the Linux GPIO
// character device.
type RealReader struct {
	chip    *gpiocdev.Chip
	encA    *gpiocdev.Line
	encB    *gpiocdev.Line
	confirm *gpiocdev.Line
	back    *gpiocdev.Line
}

// NewRealReader requests the encoder and button lines as pull-up inputs.
// Button lines are requested active-low so a press reads as 1.
func NewRealReader(p Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(p.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", p.Chip, err)
	}

	r := &RealReader{chip: chip}
	requests := []struct {
		name   string
		offset int
		dst    **gpiocdev.Line
		opts   []gpiocdev.LineReqOption
	}{
		{"encoder A", p.EncA, &r.encA, []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp}},
		{"encoder B", p.EncB, &r.encB, []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp}},
		{"confirm", p.Confirm, &r.confirm, []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow}},
		{"back", p.Back, &r.back, []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow}},
	}
	for _, req := range requests {
		line, err := chip.RequestLine(req.offset, req.opts...)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", req.name, req.offset, err)
		}
		*req.dst = line
	}
	return r, nil
}

// Read returns the current levels of all input lines.
func (r *RealReader) Read() (Levels, error) {
	var lv Levels
	reads := []struct {
		name string
		line *gpiocdev.Line
		dst  *bool
	}{
		{"encoder A", r.encA, &lv.EncA},
		{"encoder B", r.encB, &lv.EncB},
		{"confirm", r.confirm, &lv.Confirm},
		{"back", r.back, &lv.Back},
	}
	for _, rd := range reads {
		v, err := rd.line.Value()
		if err != nil {
			return Levels{}, fmt.Errorf("read %s pin: %w", rd.name, err)
		}
		*rd.dst = v == 1
	}
	return lv, nil
}

// Close releases GPIO resources.
// Lines are left as pull-up inputs, which is the idle state of the panel.
func (r *RealReader) Close() error {
	var errs []error
	for _, line := range []*gpiocdev.Line{r.encA, r.encB, r.confirm, r.back} {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealBuzzer drives the buzzer line through the GPIO character device.
type RealBuzzer struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealBuzzer requests the buzzer line as an active-low output, initially off.
func NewRealBuzzer(p Pins) (*RealBuzzer, error) {
	chip, err := gpiocdev.NewChip(p.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", p.Chip, err)
	}
	line, err := chip.RequestLine(p.Buzzer, gpiocdev.AsOutput(0), gpiocdev.AsActiveLow)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", p.Buzzer, err)
	}
	return &RealBuzzer{chip: chip, line: line}, nil
}

// Set turns the buzzer on or off.
func (b *RealBuzzer) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := b.line.SetValue(v); err != nil {
		return fmt.Errorf("set buzzer: %w", err)
	}
	return nil
}

// Close silences the buzzer and releases the line.
func (b *RealBuzzer) Close() error {
	var errs []error
	if err := b.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("silence buzzer: %w", err))
	}
	if err := b.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close buzzer pin: %w", err))
	}
	if err := b.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
