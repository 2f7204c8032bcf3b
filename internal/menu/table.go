package menu

import (
	"time"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// action is the side effect of confirming a list item.
type action func(m *Machine, idx int, now time.Time) []logic.Event

// item is one row of a list screen. Confirming it runs do (if any), then
// moves to next unless next is zero. Actions never navigate themselves.
type item struct {
	label string
	value func(m *Machine, idx int) string
	next  Screen
	// index overrides the state index carried into next.
	index int
	fixed bool
	do    action
}

// lists is the transition table of every list screen.
var lists = map[Screen][]item{
	MainMenu: {
		{label: "3D Enclosure 1", next: ZoneMenu, index: 0, fixed: true},
		{label: "3D Enclosure 2", next: ZoneMenu, index: 1, fixed: true},
		{label: "Filament Box 1", next: FilamentMenu, index: 0, fixed: true},
		{label: "Filament Box 2", next: FilamentMenu, index: 1, fixed: true},
		{label: "All Sensors", next: AllSensors},
		{label: "SHUT ALL OFF", do: (*Machine).shutAllOff},
		{label: "Settings", next: SettingsMenu},
	},
	SettingsMenu: {
		{label: "Auto-Tune ENC 1", index: 0, fixed: true, do: (*Machine).autoTune},
		{label: "Auto-Tune ENC 2", index: 1, fixed: true, do: (*Machine).autoTune},
		{label: "Toggle Auto-OFF", value: autoShutoffValue, do: (*Machine).toggleAutoShutoff},
		{label: "Beep on Push", value: beepValue, do: (*Machine).toggleBeep},
	},
	ZoneMenu: {
		{label: "Set Temp", next: ZoneSetpoint},
		{label: "Toggle Mode", value: modeValue, do: (*Machine).toggleMode},
		{label: "Set Timer", next: ZoneTimer, do: (*Machine).enterTimer},
		{label: "View Temp", next: ZoneView, do: (*Machine).startView},
		{label: "Set Humidity Alert", next: ZoneHumidity},
		{label: "Toggle Humidity Alarm", value: zoneAlarmValue, do: (*Machine).toggleZoneAlarm},
	},
	FilamentMenu: {
		{label: "Set Humidity Alert", next: FilamentHumidity},
		{label: "Toggle Humidity Alarm", value: filamentAlarmValue, do: (*Machine).toggleFilamentAlarm},
	},
}

// Positions of items that editors return to.
const (
	zoneItemSetpoint = 0
	zoneItemTimer    = 2
	zoneItemView     = 3
	zoneItemHumidity = 4
	filItemHumidity  = 0
)

// editor is a value screen. The encoder is seeded from the current value on
// entry and every change is written through. Confirm runs confirm (if any)
// and moves to done, with the cursor on item when done is a list.
type editor struct {
	seed    func(m *Machine, idx int) int64
	apply   func(m *Machine, idx int, detents int64, now time.Time)
	confirm func(m *Machine, idx int, now time.Time) []logic.Event
	done    Screen
	item    int
}

var editors = map[Screen]editor{
	ZoneSetpoint: {
		seed:  func(m *Machine, idx int) int64 { return setpointDetents(m.ctx.Controller.Zone(idx).Setpoint) },
		apply: (*Machine).applySetpoint,
		done:  ZoneMenu,
		item:  zoneItemSetpoint,
	},
	ZoneTimer: {
		seed:    func(m *Machine, idx int) int64 { return timerDetents(m.ctx.Controller.Zone(idx).TimerDuration) },
		apply:   (*Machine).applyTimer,
		confirm: (*Machine).armTimer,
		done:    ZoneCountdown,
	},
	ZoneHumidity: {
		seed:  func(m *Machine, idx int) int64 { return humidityDetents(m.threshold(logic.ZoneChannel(idx))) },
		apply: func(m *Machine, idx int, d int64, _ time.Time) { m.applyThreshold(logic.ZoneChannel(idx), d) },
		done:  ZoneMenu,
		item:  zoneItemHumidity,
	},
	FilamentHumidity: {
		seed:  func(m *Machine, idx int) int64 { return humidityDetents(m.threshold(logic.MonitorChannel(idx))) },
		apply: func(m *Machine, idx int, d int64, _ time.Time) { m.applyThreshold(logic.MonitorChannel(idx), d) },
		done:  FilamentMenu,
		item:  filItemHumidity,
	},
}

// Editor ranges.
const (
	MinSetpointF   = 70
	MaxSetpointF   = 120
	TimerStep      = 10 * time.Minute
	minTimerSteps  = 2
	timerStepCount = 289
)

// SetpointFor maps a detent count to 70..120 °F.
func SetpointFor(detents int64) int {
	return MinSetpointF + logic.Mod(detents, MaxSetpointF-MinSetpointF+1)
}

// HumidityFor maps a detent count to 30..100 %.
func HumidityFor(detents int64) int {
	return 30 + logic.Mod(detents, 100-30+1)
}

// TimerFor maps a detent count to 20 min..48 h in 10-minute steps.
func TimerFor(detents int64) time.Duration {
	return time.Duration(max(logic.Mod(detents, timerStepCount), minTimerSteps)) * TimerStep
}

func setpointDetents(f float64) int64 {
	return int64(min(max(int(f), MinSetpointF), MaxSetpointF) - MinSetpointF)
}

func humidityDetents(pct int) int64 {
	return int64(min(max(pct, 30), 100) - 30)
}

func timerDetents(d time.Duration) int64 {
	return int64(d / TimerStep)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func autoShutoffValue(m *Machine, _ int) string { return onOff(m.ctx.Settings.AutoShutoff) }
func beepValue(m *Machine, _ int) string        { return onOff(m.ctx.Settings.BeepOnPush) }

func modeValue(m *Machine, idx int) string {
	if m.ctx.Controller.Zone(idx).UseTimer {
		return "TIMER"
	}
	return "MANUAL"
}

func zoneAlarmValue(m *Machine, idx int) string {
	return onOff(m.ctx.Settings.Humidity[logic.ZoneChannel(idx)].Enabled)
}

func filamentAlarmValue(m *Machine, idx int) string {
	return onOff(m.ctx.Settings.Humidity[logic.MonitorChannel(idx)].Enabled)
}
