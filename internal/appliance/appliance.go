// Package appliance runs one control tick of the enclosure controller. It
// owns the application context the menu operates on and wires every
// hardware collaborator to the pure kernel in internal/logic.
package appliance

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/enclosure-controller/internal/display"
	"github.com/sweeney/enclosure-controller/internal/gpio"
	"github.com/sweeney/enclosure-controller/internal/heater"
	"github.com/sweeney/enclosure-controller/internal/logic"
	"github.com/sweeney/enclosure-controller/internal/menu"
	"github.com/sweeney/enclosure-controller/internal/sensor"
	"github.com/sweeney/enclosure-controller/internal/settings"
	"github.com/sweeney/enclosure-controller/internal/status"
)

// Deps are the collaborators and parameters of an Appliance.
type Deps struct {
	Pins     gpio.Reader
	Sensors  sensor.Reader
	Heaters  heater.Driver
	Alerts   menu.Alerter
	Display  display.Renderer
	Store    settings.Store
	Settings settings.Settings

	Controller logic.ControllerConfig
	Menu       menu.Options
	Debounce   time.Duration
	Log        *slog.Logger
}

// Appliance is the single-threaded control loop state. All methods must be
// called from one goroutine.
type Appliance struct {
	pins    gpio.Reader
	sensors sensor.Reader
	heaters heater.Driver
	alerts  menu.Alerter
	display display.Renderer
	log     *slog.Logger

	decoder   *logic.Decoder
	buttons   *logic.Buttons
	ctrl      *logic.Controller
	humidity  logic.HumidityMonitor
	heartbeat *logic.Heartbeat
	settings  settings.Settings
	readings  [logic.NumChannels]logic.Reading
	menu      *menu.Machine

	sensorDown [logic.NumChannels]bool
}

// New builds the kernel and menu around d. now is the boot time: zone
// timers start and uptime is measured from it.
func New(d Deps, now time.Time) *Appliance {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	a := &Appliance{
		pins:      d.Pins,
		sensors:   d.Sensors,
		heaters:   d.Heaters,
		alerts:    d.Alerts,
		display:   d.Display,
		log:       d.Log,
		decoder:   &logic.Decoder{},
		buttons:   logic.NewButtons(d.Debounce),
		ctrl:      logic.NewController(d.Controller, now),
		heartbeat: logic.NewHeartbeat(now),
		settings:  d.Settings,
	}
	a.ctrl.SetAutoShutoff(a.settings.AutoShutoff)
	a.menu = menu.New(menu.Context{
		Controller: a.ctrl,
		Settings:   &a.settings,
		Store:      d.Store,
		Heater:     d.Heaters,
		Alerts:     d.Alerts,
		Encoder:    a.decoder,
		Readings:   &a.readings,
		Humidity:   &a.humidity,
		Log:        d.Log.With("component", "menu"),
	}, d.Menu, now)
	return a
}

// Poll samples the input lines once. It runs much faster than Tick so no
// quadrature edge is missed.
func (a *Appliance) Poll(now time.Time) error {
	lv, err := a.pins.Read()
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}
	a.decoder.Decode(lv.EncA, lv.EncB)
	a.buttons.Sample(lv.Confirm, lv.Back, now)
	return nil
}

// Tick runs one control cycle: sensors, failsafe and PID, menu, display,
// timers, then humidity alarms. It returns the events to publish.
func (a *Appliance) Tick(now time.Time) []logic.Event {
	a.readSensors()

	var temps [logic.NumZones]float64
	for i := range temps {
		temps[i] = a.readings[logic.ZoneChannel(i)].TemperatureF
	}
	events := a.apply(a.ctrl.Regulate(temps, now))

	confirm, back := a.buttons.Take()
	events = append(events, a.menu.Update(menu.Input{Confirm: confirm, Back: back, Now: now})...)

	if err := a.display.Render(a.menu.Frame(now)); err != nil {
		a.log.Warn("display render failed", "error", err)
	}

	events = append(events, a.apply(a.ctrl.CheckTimers(now))...)

	for ch := logic.Channel(0); ch < logic.NumChannels; ch++ {
		r := a.readings[ch]
		if ev := a.humidity.Evaluate(ch, r.Humidity, a.settings.Humidity[ch], now); ev != nil {
			ev.Temperature = r.TemperatureF
			a.log.Info("humidity alarm", "channel", ch, "event", ev.Type, "humidity", r.Humidity)
			events = append(events, *ev)
		}
	}

	a.heartbeat.Record(events)
	return events
}

func (a *Appliance) readSensors() {
	for ch := logic.Channel(0); ch < logic.NumChannels; ch++ {
		r, err := a.sensors.Read(ch)
		if err != nil {
			if !a.sensorDown[ch] {
				a.log.Warn("sensor read failed, keeping last reading", "channel", ch, "error", err)
				a.sensorDown[ch] = true
			}
			continue
		}
		if a.sensorDown[ch] {
			a.log.Info("sensor recovered", "channel", ch)
			a.sensorDown[ch] = false
		}
		a.readings[ch] = r
	}
}

// apply sends heater commands, then fires alerts in order.
func (a *Appliance) apply(res logic.Result) []logic.Event {
	for _, c := range res.Commands {
		if err := a.heaters.SetDuty(c.Zone, c.Duty); err != nil {
			a.log.Error("set heater duty", "zone", c.Zone+1, "duty", c.Duty, "error", err)
		}
	}
	for _, e := range res.Events {
		switch e.Type {
		case logic.EventOverheat:
			a.log.Error("overheat, all heaters off", "channel", e.Channel, "temperature_f", e.Temperature)
		case logic.EventOverheatCleared:
			a.log.Warn("overheat cleared", "channel", e.Channel, "temperature_f", e.Temperature)
		default:
			a.log.Info("zone event", "channel", e.Channel, "event", e.Type)
		}
	}
	for _, al := range res.Alerts {
		if err := a.alerts.FireAlert(al); err != nil {
			a.log.Warn("alert not played", "alert", string(al), "error", err)
		}
	}
	return res.Events
}

// CheckHeartbeat returns heartbeat data when interval has elapsed.
func (a *Appliance) CheckHeartbeat(now time.Time, interval time.Duration) *logic.HeartbeatData {
	return a.heartbeat.Check(now, interval)
}

// Counts returns the number of each event since boot.
func (a *Appliance) Counts() logic.EventCounts {
	return a.heartbeat.Counts()
}

// Readings returns the latest sensor readings.
func (a *Appliance) Readings() [logic.NumChannels]logic.Reading {
	return a.readings
}

// Zone returns a copy of zone i.
func (a *Appliance) Zone(i int) logic.Zone {
	return a.ctrl.Zone(i)
}

// Settings returns the in-memory settings.
func (a *Appliance) Settings() settings.Settings {
	return a.settings
}

// Screen returns the active menu state.
func (a *Appliance) Screen() menu.State {
	return a.menu.State()
}

// Status summarises the control state for the status tracker.
func (a *Appliance) Status(now time.Time) status.State {
	s := status.State{
		Screen:      a.menu.State().String(),
		Idle:        a.menu.Idle(),
		Overheated:  a.ctrl.Overheated(),
		Alarms:      a.settings.Humidity,
		AutoShutoff: a.settings.AutoShutoff,
		BeepOnPush:  a.settings.BeepOnPush,
		Counts:      a.heartbeat.Counts(),
	}
	for i := 0; i < logic.NumZones; i++ {
		z := a.ctrl.Zone(i)
		r := a.readings[z.Channel]
		s.Zones[i] = status.ZoneStatus{
			Name:           z.Name,
			Channel:        z.Channel,
			TemperatureF:   r.TemperatureF,
			Humidity:       r.Humidity,
			SetpointF:      z.Setpoint,
			Duty:           z.Duty,
			HeaterOn:       z.HeaterOn,
			Overheated:     z.Overheated,
			UseTimer:       z.UseTimer,
			TimerRemaining: z.Remaining(now),
			TimerExpired:   z.TimerExpired(),
			AutoOff:        z.AutoOff(),
			HumidityHigh:   a.humidity.High(z.Channel),
		}
	}
	for i := 0; i < logic.NumMonitors; i++ {
		ch := logic.MonitorChannel(i)
		r := a.readings[ch]
		s.Monitors[i] = status.MonitorStatus{
			Name:         fmt.Sprintf("Filament Box %d", i+1),
			Channel:      ch,
			TemperatureF: r.TemperatureF,
			Humidity:     r.Humidity,
			HumidityHigh: a.humidity.High(ch),
		}
	}
	return s
}

// Shutdown turns both heaters off.
func (a *Appliance) Shutdown() {
	for i := 0; i < logic.NumZones; i++ {
		if err := a.heaters.SetDuty(i, 0); err != nil {
			a.log.Error("heater off at shutdown", "zone", i+1, "error", err)
		}
	}
}
