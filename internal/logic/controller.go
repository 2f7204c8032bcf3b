package logic

import "time"

// Thermal limits and timer milestones.
const (
	DefaultOverheatF     = 130.0
	DefaultSetpointF     = 90.0
	DefaultAutoShutoff   = 56 * time.Hour
	OutputMax            = 255.0
	fiveMinuteMark       = 300 // seconds remaining
	finalCountdownWindow = 30  // seconds remaining
)

// ControllerConfig holds the static thermal parameters.
type ControllerConfig struct {
	OverheatF       float64
	Gains           Gains
	DefaultSetpoint float64
	DefaultTimer    time.Duration
	AutoShutoff     time.Duration
}

// DefaultControllerConfig returns the stock thermal parameters.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		OverheatF:       DefaultOverheatF,
		Gains:           DefaultGains,
		DefaultSetpoint: DefaultSetpointF,
		AutoShutoff:     DefaultAutoShutoff,
	}
}

// Controller runs the thermal loop for both zones. The overheat failsafe is
// coupled across zones: either zone reaching the threshold shuts both down.
type Controller struct {
	cfg         ControllerConfig
	zones       [NumZones]Zone
	overheated  bool
	autoShutoff bool
}

// NewController creates both zones with their defaults. Zones start in timer
// mode with the timer started at now, or already expired when
// cfg.DefaultTimer is not positive.
func NewController(cfg ControllerConfig, now time.Time) *Controller {
	c := &Controller{cfg: cfg, autoShutoff: true}
	for i := range c.zones {
		c.zones[i] = Zone{
			Name:          zoneName(i),
			Channel:       ZoneChannel(i),
			Setpoint:      cfg.DefaultSetpoint,
			UseTimer:      true,
			TimerDuration: cfg.DefaultTimer,
			TimerStart:    now,
			ManualStart:   now,
			timerExpired:  cfg.DefaultTimer <= 0,
			pid:           NewPID(cfg.Gains, OutputMax),
		}
	}
	return c
}

func zoneName(i int) string {
	if i == 0 {
		return "3D Enclosure 1"
	}
	return "3D Enclosure 2"
}

// Zone returns a copy of zone i.
func (c *Controller) Zone(i int) Zone {
	return c.zones[i]
}

// Overheated reports whether the failsafe is currently engaged.
func (c *Controller) Overheated() bool {
	return c.overheated
}

// Regulate runs the failsafe check and the PID loop for both zones with the
// latest temperatures (°F).
func (c *Controller) Regulate(temps [NumZones]float64, now time.Time) Result {
	var res Result

	tripped := -1
	for i := range c.zones {
		c.zones[i].CurrentTemp = temps[i]
		if tripped < 0 && temps[i] >= c.cfg.OverheatF {
			tripped = i
		}
	}

	if tripped >= 0 {
		for i := range c.zones {
			z := &c.zones[i]
			z.off()
			z.Overheated = true
			res.command(i, 0)
		}
		if !c.overheated {
			c.overheated = true
			z := &c.zones[tripped]
			res.Alerts = append(res.Alerts, AlertOverheat)
			res.Events = append(res.Events, Event{
				Timestamp:   now,
				Type:        EventOverheat,
				Channel:     z.Channel,
				Temperature: z.CurrentTemp,
				Setpoint:    z.Setpoint,
			})
		}
		return res
	}

	if c.overheated {
		c.overheated = false
		for i := range c.zones {
			c.zones[i].Overheated = false
			c.zones[i].pid.Reset()
		}
		res.Events = append(res.Events, Event{Timestamp: now, Type: EventOverheatCleared})
	}

	for i := range c.zones {
		z := &c.zones[i]
		if z.halted() {
			z.off()
			res.command(i, 0)
			continue
		}
		out := z.pid.Step(z.CurrentTemp, z.Setpoint, now)
		z.Duty = uint8(out)
		z.HeaterOn = true
		res.command(i, z.Duty)
	}
	return res
}

// CheckTimers evaluates timer milestones for zones in timer mode and the
// runtime limit for zones in manual mode.
func (c *Controller) CheckTimers(now time.Time) Result {
	var res Result
	for i := range c.zones {
		z := &c.zones[i]
		if !z.HeaterOn {
			continue
		}
		if z.UseTimer {
			c.checkTimer(i, z, now, &res)
		} else {
			c.checkRuntime(i, z, now, &res)
		}
	}
	return res
}

func (c *Controller) checkTimer(i int, z *Zone, now time.Time, res *Result) {
	elapsed := int64(now.Sub(z.TimerStart) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	total := int64(z.TimerDuration / time.Second)

	if elapsed >= total {
		z.off()
		z.buzzerLocked = false
		z.timerExpired = true
		res.command(i, 0)
		res.Events = append(res.Events, c.zoneEvent(z, EventTimerDone, now))
		return
	}

	remaining := total - elapsed
	if remaining <= fiveMinuteMark && remaining > finalCountdownWindow && total > fiveMinuteMark && !z.fiveMinuteFired {
		z.fiveMinuteFired = true
		res.Alerts = append(res.Alerts, AlertFiveMinutes)
		res.Events = append(res.Events, c.zoneEvent(z, EventFiveMinutes, now))
	}
	if remaining <= finalCountdownWindow && remaining > 0 && !z.buzzerLocked {
		z.buzzerLocked = true
		res.Alerts = append(res.Alerts, AlertFinalCountdown)
		res.Events = append(res.Events, c.zoneEvent(z, EventFinalCountdown, now))
	}
}

func (c *Controller) checkRuntime(i int, z *Zone, now time.Time, res *Result) {
	if !c.autoShutoff || c.cfg.AutoShutoff <= 0 {
		return
	}
	if now.Sub(z.ManualStart) < c.cfg.AutoShutoff {
		return
	}
	z.off()
	z.autoOff = true
	res.command(i, 0)
	res.Events = append(res.Events, c.zoneEvent(z, EventAutoShutoff, now))
}

func (c *Controller) zoneEvent(z *Zone, t EventType, now time.Time) Event {
	return Event{
		Timestamp:   now,
		Type:        t,
		Channel:     z.Channel,
		Temperature: z.CurrentTemp,
		Setpoint:    z.Setpoint,
	}
}

// SetSetpoint changes the target temperature of zone i.
func (c *Controller) SetSetpoint(i int, f float64) {
	c.zones[i].Setpoint = f
}

// ToggleMode flips zone i between manual and timer mode. Entering manual
// mode restarts the runtime limit.
func (c *Controller) ToggleMode(i int, now time.Time) {
	z := &c.zones[i]
	z.UseTimer = !z.UseTimer
	if !z.UseTimer {
		z.ManualStart = now
		z.autoOff = false
	}
}

// SetTimerDuration changes the duration of zone i's timer without re-arming it.
func (c *Controller) SetTimerDuration(i int, d time.Duration) {
	c.zones[i].TimerDuration = d
}

// StartTimer arms a new timer run for zone i and puts it in timer mode.
func (c *Controller) StartTimer(i int, now time.Time) Event {
	z := &c.zones[i]
	z.UseTimer = true
	z.TimerStart = now
	z.timerExpired = false
	z.buzzerLocked = false
	z.fiveMinuteFired = false
	return c.zoneEvent(z, EventTimerStarted, now)
}

// SetAutoShutoff enables or disables the manual-mode runtime limit.
func (c *Controller) SetAutoShutoff(on bool) {
	c.autoShutoff = on
	if !on {
		for i := range c.zones {
			c.zones[i].autoOff = false
		}
	}
}
