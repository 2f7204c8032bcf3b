package menu

import (
	"fmt"
	"time"

	"github.com/sweeney/enclosure-controller/internal/display"
	"github.com/sweeney/enclosure-controller/internal/logic"
)

const (
	humidityBanner = "HIGH HUMIDITY!"
	overheatBanner = "!! OVERHEAT !!"
)

// Frame composes the active screen.
func (m *Machine) Frame(now time.Time) display.Frame {
	st := m.state
	idx := st.Index

	switch st.Screen {
	case MainMenu:
		f := m.listFrame("MAIN MENU:")
		if m.ctx.Controller.Overheated() {
			f.Banner = overheatBanner
		}
		return f
	case SettingsMenu:
		return m.listFrame("SETTINGS MENU:")
	case ZoneMenu:
		f := m.listFrame(fmt.Sprintf("Enclosure %d Menu:", idx+1))
		f.Banner = m.banner(logic.ZoneChannel(idx))
		return f
	case FilamentMenu:
		f := m.listFrame(fmt.Sprintf("Filament Box %d:", idx+1))
		f.Banner = m.banner(logic.MonitorChannel(idx))
		return f

	case ZoneSetpoint:
		return display.Frame{
			Title: fmt.Sprintf("Set ENC%d Temp:", idx+1),
			Lines: []string{fmt.Sprintf("%d F", SetpointFor(m.ctx.Encoder.Detents()))},
		}
	case ZoneTimer:
		return display.Frame{
			Title: fmt.Sprintf("Set ENC%d Timer:", idx+1),
			Lines: []string{hoursMinutes(TimerFor(m.ctx.Encoder.Detents()))},
		}
	case ZoneHumidity:
		return display.Frame{
			Title: fmt.Sprintf("ENC%d Humidity Alert:", idx+1),
			Lines: []string{fmt.Sprintf("%d %%", HumidityFor(m.ctx.Encoder.Detents()))},
		}
	case FilamentHumidity:
		return display.Frame{
			Title: fmt.Sprintf("FBox%d Humidity Alert:", idx+1),
			Lines: []string{fmt.Sprintf("%d %%", HumidityFor(m.ctx.Encoder.Detents()))},
		}

	case ZoneCountdown:
		return m.countdownFrame(idx, now)
	case ZoneView:
		return m.zoneFrame(idx)
	case AllSensors:
		r := m.ctx.Readings
		return display.Frame{
			Title: "ALL TEMPS:",
			Lines: []string{
				fmt.Sprintf("Fil 1: %.2f F", r[logic.ChannelFilament1].TemperatureF),
				fmt.Sprintf("Fil 2: %.2f F", r[logic.ChannelFilament2].TemperatureF),
				fmt.Sprintf("ENC 1: %.2f F", r[logic.ChannelZone1].TemperatureF),
				fmt.Sprintf("ENC 2: %.2f F", r[logic.ChannelZone2].TemperatureF),
			},
		}
	case FilamentView:
		r := m.ctx.Readings
		return display.Frame{
			Title: "Filament Temps:",
			Lines: []string{
				fmt.Sprintf("Box 1: %.2f F", r[logic.ChannelFilament1].TemperatureF),
				fmt.Sprintf("Box 2: %.2f F", r[logic.ChannelFilament2].TemperatureF),
			},
		}
	}
	return display.Frame{Title: st.String()}
}

func (m *Machine) listFrame(title string) display.Frame {
	items := lists[m.state.Screen]
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.label
		if it.value != nil {
			lines[i] += ": " + it.value(m, m.state.Index)
		}
	}
	return display.Frame{
		Title:  title,
		Lines:  lines,
		Menu:   true,
		Cursor: m.cursor(),
	}
}

func (m *Machine) zoneFrame(idx int) display.Frame {
	z := m.ctx.Controller.Zone(idx)
	hum := m.ctx.Readings[z.Channel].Humidity
	heater := "OFF"
	if z.HeaterOn {
		heater = "ON"
	}
	return display.Frame{
		Title:  z.Name,
		Banner: m.banner(z.Channel),
		Lines: []string{
			fmt.Sprintf("Temp: %.2f F", z.CurrentTemp),
			fmt.Sprintf("Humidity: %.2f %%", hum),
			"Heater: " + heater,
		},
	}
}

func (m *Machine) countdownFrame(idx int, now time.Time) display.Frame {
	z := m.ctx.Controller.Zone(idx)
	var lines []string
	switch {
	case !z.UseTimer:
		lines = []string{"MANUAL MODE"}
	case z.TimerExpired():
		lines = []string{"TIMER DONE", "Heater: OFF"}
	default:
		lines = []string{"RUNNING (Timer):", "Time Left: " + hoursMinutes(z.Remaining(now))}
	}
	return display.Frame{Title: z.Name, Lines: lines}
}

func (m *Machine) banner(ch logic.Channel) string {
	if m.ctx.Controller.Overheated() {
		return overheatBanner
	}
	if m.ctx.Humidity != nil && m.ctx.Humidity.High(ch) {
		return humidityBanner
	}
	return ""
}

func hoursMinutes(d time.Duration) string {
	sec := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm", sec/3600, (sec%3600)/60)
}
