package heater

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultFrequency is the heater PWM carrier.
const DefaultFrequency = 5000

// maxDuty is the full-scale duty value.
const maxDuty = 255

// SysfsPWM drives heaters through the Linux PWM class (/sys/class/pwm).
// Zone i uses channels[i] on the chip.
type SysfsPWM struct {
	chip     string
	channels []int
	period   time.Duration
}

// OpenSysfsPWM exports and enables the channels of chip (e.g.
// /sys/class/pwm/pwmchip0) at freq Hz, starting with zero duty.
func OpenSysfsPWM(chip string, channels []int, freq int) (*SysfsPWM, error) {
	if freq <= 0 {
		freq = DefaultFrequency
	}
	p := &SysfsPWM{
		chip:     chip,
		channels: channels,
		period:   time.Second / time.Duration(freq),
	}
	for _, ch := range channels {
		if err := p.setup(ch); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *SysfsPWM) setup(ch int) error {
	dir := p.channelDir(ch)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := writeAttr(filepath.Join(p.chip, "export"), strconv.Itoa(ch)); err != nil {
			return fmt.Errorf("export pwm channel %d: %w", ch, err)
		}
	}
	if err := writeAttr(filepath.Join(dir, "period"), strconv.FormatInt(p.period.Nanoseconds(), 10)); err != nil {
		return fmt.Errorf("set period pwm channel %d: %w", ch, err)
	}
	if err := writeAttr(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
		return fmt.Errorf("zero duty pwm channel %d: %w", ch, err)
	}
	if err := writeAttr(filepath.Join(dir, "enable"), "1"); err != nil {
		return fmt.Errorf("enable pwm channel %d: %w", ch, err)
	}
	return nil
}

// SetDuty sets zone's duty as a fraction duty/255 of the period.
func (p *SysfsPWM) SetDuty(zone int, duty uint8) error {
	if zone < 0 || zone >= len(p.channels) {
		return fmt.Errorf("set duty: no heater for zone %d", zone)
	}
	ns := p.period.Nanoseconds() * int64(duty) / maxDuty
	path := filepath.Join(p.channelDir(p.channels[zone]), "duty_cycle")
	if err := writeAttr(path, strconv.FormatInt(ns, 10)); err != nil {
		return fmt.Errorf("set duty zone %d: %w", zone, err)
	}
	return nil
}

// Close zeroes and disables every channel.
func (p *SysfsPWM) Close() error {
	var errs []error
	for _, ch := range p.channels {
		dir := p.channelDir(ch)
		if err := writeAttr(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
			errs = append(errs, err)
		}
		if err := writeAttr(filepath.Join(dir, "enable"), "0"); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (p *SysfsPWM) channelDir(ch int) string {
	return filepath.Join(p.chip, "pwm"+strconv.Itoa(ch))
}

func writeAttr(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
