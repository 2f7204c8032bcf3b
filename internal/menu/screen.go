// Package menu implements the front-panel navigation state machine.
//
// The machine owns no hardware. It reads the encoder's detent count, acts on
// debounced button edges and mutates zone and global settings through the
// explicit Context it is given. All calls come from the single control loop.
package menu

import "fmt"

// Screen names the active screen. The set is closed.
type Screen int

const (
	MainMenu Screen = iota + 1
	SettingsMenu
	ZoneMenu
	ZoneSetpoint
	ZoneTimer
	ZoneCountdown
	ZoneView
	ZoneHumidity
	FilamentMenu
	FilamentHumidity
	AllSensors
	// FilamentView is only shown by the idle rotation.
	FilamentView
)

var screenNames = map[Screen]string{
	MainMenu:         "main",
	SettingsMenu:     "settings",
	ZoneMenu:         "zone",
	ZoneSetpoint:     "zone-setpoint",
	ZoneTimer:        "zone-timer",
	ZoneCountdown:    "zone-countdown",
	ZoneView:         "zone-view",
	ZoneHumidity:     "zone-humidity",
	FilamentMenu:     "filament",
	FilamentHumidity: "filament-humidity",
	AllSensors:       "all-sensors",
	FilamentView:     "filament-view",
}

func (s Screen) String() string {
	if n, ok := screenNames[s]; ok {
		return n
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// State is the active screen and, for zone and filament screens, the zone or
// monitor index it applies to.
type State struct {
	Screen Screen
	Index  int
}

func (s State) String() string {
	switch s.Screen {
	case ZoneMenu, ZoneSetpoint, ZoneTimer, ZoneCountdown, ZoneView, ZoneHumidity,
		FilamentMenu, FilamentHumidity:
		return fmt.Sprintf("%s/%d", s.Screen, s.Index+1)
	}
	return s.Screen.String()
}
