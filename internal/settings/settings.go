// Package settings holds the user-editable global settings and persists
// them to an offset-addressed store.
package settings

import (
	"errors"
	"fmt"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// Persisted offsets. Thresholds are int32, flags one byte.
const (
	offHumidityLimit = 0  // + 4*channel
	offHumidityAlarm = 16 // + channel
	offAutoShutoff   = 20
	offBeepOnPush    = 21
)

// Humidity threshold limits and default, in percent.
const (
	MinHumidity     = 30
	MaxHumidity     = 100
	DefaultHumidity = 65
)

// Settings are the global, persisted user settings.
type Settings struct {
	Humidity    [logic.NumChannels]logic.HumidityAlarm
	AutoShutoff bool
	BeepOnPush  bool
}

// Default returns the factory settings.
func Default() Settings {
	s := Settings{AutoShutoff: true, BeepOnPush: true}
	for i := range s.Humidity {
		s.Humidity[i] = logic.HumidityAlarm{Threshold: DefaultHumidity}
	}
	return s
}

// Load reads every setting from st. Erased or out-of-range values fall back
// to their defaults; the returned error lists them.
func Load(st Store) (Settings, error) {
	s := Default()
	var errs []error

	for i := range s.Humidity {
		ch := logic.Channel(i)
		v, err := st.GetInt(thresholdOffset(ch))
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s threshold: %w", ch, err))
		case v < MinHumidity || v > MaxHumidity:
			errs = append(errs, fmt.Errorf("%s threshold: %d out of range", ch, v))
		default:
			s.Humidity[i].Threshold = int(v)
		}

		on, err := st.GetBool(alarmOffset(ch))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s alarm: %w", ch, err))
		} else {
			s.Humidity[i].Enabled = on
		}
	}

	if on, err := st.GetBool(offAutoShutoff); err != nil {
		errs = append(errs, fmt.Errorf("auto shutoff: %w", err))
	} else {
		s.AutoShutoff = on
	}
	if on, err := st.GetBool(offBeepOnPush); err != nil {
		errs = append(errs, fmt.Errorf("beep on push: %w", err))
	} else {
		s.BeepOnPush = on
	}

	return s, errors.Join(errs...)
}

// Save writes every setting and commits.
func (s Settings) Save(st Store) error {
	for i, h := range s.Humidity {
		ch := logic.Channel(i)
		if err := st.PutInt(thresholdOffset(ch), int32(h.Threshold)); err != nil {
			return fmt.Errorf("save %s threshold: %w", ch, err)
		}
		if err := st.PutBool(alarmOffset(ch), h.Enabled); err != nil {
			return fmt.Errorf("save %s alarm: %w", ch, err)
		}
	}
	if err := st.PutBool(offAutoShutoff, s.AutoShutoff); err != nil {
		return fmt.Errorf("save auto shutoff: %w", err)
	}
	if err := st.PutBool(offBeepOnPush, s.BeepOnPush); err != nil {
		return fmt.Errorf("save beep on push: %w", err)
	}
	return commit(st)
}

// SaveThreshold writes through the humidity threshold of ch.
func SaveThreshold(st Store, ch logic.Channel, pct int) error {
	if err := st.PutInt(thresholdOffset(ch), int32(pct)); err != nil {
		return fmt.Errorf("save %s threshold: %w", ch, err)
	}
	return commit(st)
}

// SaveAlarm writes through the humidity alarm flag of ch.
func SaveAlarm(st Store, ch logic.Channel, on bool) error {
	if err := st.PutBool(alarmOffset(ch), on); err != nil {
		return fmt.Errorf("save %s alarm: %w", ch, err)
	}
	return commit(st)
}

// SaveAutoShutoff writes through the auto shut-off flag.
func SaveAutoShutoff(st Store, on bool) error {
	if err := st.PutBool(offAutoShutoff, on); err != nil {
		return fmt.Errorf("save auto shutoff: %w", err)
	}
	return commit(st)
}

// SaveBeepOnPush writes through the push-beep flag.
func SaveBeepOnPush(st Store, on bool) error {
	if err := st.PutBool(offBeepOnPush, on); err != nil {
		return fmt.Errorf("save beep on push: %w", err)
	}
	return commit(st)
}

func commit(st Store) error {
	if err := st.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Slots follow channel order: zone1, zone2, filament1, filament2.
func thresholdOffset(ch logic.Channel) int {
	return offHumidityLimit + 4*int(ch)
}

func alarmOffset(ch logic.Channel) int {
	return offHumidityAlarm + int(ch)
}
