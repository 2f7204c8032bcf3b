package menu

import (
	"log/slog"
	"time"

	"github.com/sweeney/enclosure-controller/internal/heater"
	"github.com/sweeney/enclosure-controller/internal/logic"
	"github.com/sweeney/enclosure-controller/internal/settings"
)

// Encoder is the relative position source. *logic.Decoder implements it.
type Encoder interface {
	Detents() int64
	Write(p int64)
}

// Alerter fires buzzer alerts.
type Alerter interface {
	FireAlert(a logic.Alert) error
}

// Context is everything the machine reads and mutates. It is owned by the
// control loop and shared by pointer, never copied into globals.
type Context struct {
	Controller *logic.Controller
	Settings   *settings.Settings
	Store      settings.Store
	Heater     heater.Driver
	Alerts     Alerter
	Encoder    Encoder
	Readings   *[logic.NumChannels]logic.Reading
	Humidity   *logic.HumidityMonitor
	Log        *slog.Logger
}

// Options are the timing parameters of the machine.
type Options struct {
	// IdleTimeout starts the read-only rotation after no input. Zero disables it.
	IdleTimeout time.Duration
	// IdleRotate is the dwell time of each idle screen.
	IdleRotate time.Duration
	// ViewDuration is how long the View Temp screen stays up.
	ViewDuration time.Duration
}

// DefaultOptions returns the stock panel timings.
func DefaultOptions() Options {
	return Options{
		IdleTimeout:  5 * time.Minute,
		IdleRotate:   5 * time.Second,
		ViewDuration: time.Second,
	}
}

// Input is one poll of the front panel. Confirm and Back are press edges.
type Input struct {
	Confirm bool
	Back    bool
	Now     time.Time
}

// Machine is the menu state machine.
type Machine struct {
	ctx  Context
	opts Options

	state       State
	mainIndex   int
	lastDetents int64

	lastInput time.Time
	idle      bool
	rotateAt  time.Time
	viewUntil time.Time
}

// New creates a machine showing the main menu.
func New(ctx Context, opts Options, now time.Time) *Machine {
	if ctx.Log == nil {
		ctx.Log = slog.Default()
	}
	m := &Machine{ctx: ctx, opts: opts, lastInput: now}
	m.enter(State{Screen: MainMenu}, 0)
	return m
}

// State returns the active screen.
func (m *Machine) State() State {
	return m.state
}

// Idle reports whether the idle rotation is running.
func (m *Machine) Idle() bool {
	return m.idle
}

// Cursor returns the highlighted item of a list screen, or 0.
func (m *Machine) Cursor() int {
	return m.cursor()
}

// Update applies one panel poll and returns the events it caused.
func (m *Machine) Update(in Input) []logic.Event {
	now := in.Now
	d := m.ctx.Encoder.Detents()
	moved := d != m.lastDetents
	m.lastDetents = d
	active := moved || in.Confirm || in.Back

	if m.idle {
		if active {
			// The waking input is consumed.
			m.idle = false
			m.lastInput = now
			m.ctx.Log.Debug("idle rotation cancelled")
			m.enter(State{Screen: MainMenu}, m.mainIndex)
			return nil
		}
		if now.Sub(m.rotateAt) >= m.opts.IdleRotate {
			m.rotateAt = now
			if m.state.Screen == FilamentView {
				m.state = State{Screen: AllSensors}
			} else {
				m.state = State{Screen: FilamentView}
			}
		}
		return nil
	}

	if active {
		m.lastInput = now
	} else if m.opts.IdleTimeout > 0 && now.Sub(m.lastInput) >= m.opts.IdleTimeout {
		m.idle = true
		m.rotateAt = now
		m.state = State{Screen: FilamentView}
		m.ctx.Log.Debug("idle rotation started")
		return nil
	}

	if m.state.Screen == ZoneView && !now.Before(m.viewUntil) {
		m.enter(State{Screen: ZoneMenu, Index: m.state.Index}, zoneItemView)
		moved = false
	}

	if moved {
		if e, ok := editors[m.state.Screen]; ok {
			e.apply(m, m.state.Index, d, now)
		}
		if m.state.Screen == MainMenu {
			m.mainIndex = m.cursor()
		}
	}

	var events []logic.Event
	if in.Confirm {
		m.pushBeep()
		events = m.confirm(now)
	}
	if in.Back {
		m.back()
	}
	return events
}

// enter switches to st and seeds the encoder: editors from their current
// value, lists to cursor.
func (m *Machine) enter(st State, cursor int) {
	m.state = st
	d := int64(cursor)
	if e, ok := editors[st.Screen]; ok {
		d = e.seed(m, st.Index)
	}
	m.ctx.Encoder.Write(d * logic.DetentSteps)
	m.lastDetents = d
}

func (m *Machine) cursor() int {
	items, ok := lists[m.state.Screen]
	if !ok {
		return 0
	}
	return logic.Mod(m.ctx.Encoder.Detents(), len(items))
}

func (m *Machine) confirm(now time.Time) []logic.Event {
	st := m.state

	if items, ok := lists[st.Screen]; ok {
		cur := m.cursor()
		it := items[cur]
		idx := st.Index
		if it.fixed {
			idx = it.index
		}
		var events []logic.Event
		if it.do != nil {
			events = it.do(m, idx, now)
		}
		if it.next != 0 {
			if st.Screen == MainMenu {
				m.mainIndex = cur
			}
			m.enter(State{Screen: it.next, Index: idx}, 0)
		}
		return events
	}

	if e, ok := editors[st.Screen]; ok {
		var events []logic.Event
		if e.confirm != nil {
			events = e.confirm(m, st.Index, now)
		}
		m.enter(State{Screen: e.done, Index: st.Index}, e.item)
		return events
	}

	switch st.Screen {
	case ZoneCountdown:
		m.enter(State{Screen: ZoneMenu, Index: st.Index}, zoneItemTimer)
	case ZoneView:
		m.enter(State{Screen: ZoneMenu, Index: st.Index}, zoneItemView)
	}
	return nil
}

// back returns to the main menu. In the main menu it does nothing.
func (m *Machine) back() {
	if m.state.Screen == MainMenu {
		return
	}
	m.enter(State{Screen: MainMenu}, m.mainIndex)
}

func (m *Machine) pushBeep() {
	if !m.ctx.Settings.BeepOnPush || m.ctx.Alerts == nil {
		return
	}
	if err := m.ctx.Alerts.FireAlert(logic.AlertPush); err != nil {
		m.ctx.Log.Warn("push beep failed", "error", err)
	}
}

func (m *Machine) persist(err error, setting string) {
	if err != nil {
		m.ctx.Log.Error("settings write failed", "setting", setting, "error", err)
	}
}

func (m *Machine) threshold(ch logic.Channel) int {
	return m.ctx.Settings.Humidity[ch].Threshold
}

// Actions. None of them navigates.

func (m *Machine) shutAllOff(_ int, now time.Time) []logic.Event {
	for i := 0; i < logic.NumZones; i++ {
		if err := m.ctx.Heater.SetDuty(i, 0); err != nil {
			m.ctx.Log.Error("shut off heater", "zone", i+1, "error", err)
		}
	}
	m.ctx.Log.Warn("all heaters shut off from panel")
	return []logic.Event{{Timestamp: now, Type: logic.EventShutAllOff}}
}

func (m *Machine) autoTune(idx int, _ time.Time) []logic.Event {
	m.ctx.Log.Info("auto-tune requested, PID gains are static", "zone", idx+1)
	return nil
}

func (m *Machine) toggleAutoShutoff(_ int, _ time.Time) []logic.Event {
	on := !m.ctx.Settings.AutoShutoff
	m.ctx.Settings.AutoShutoff = on
	m.ctx.Controller.SetAutoShutoff(on)
	m.persist(settings.SaveAutoShutoff(m.ctx.Store, on), "auto_shutoff")
	m.ctx.Log.Info("auto shut-off changed", "enabled", on)
	return nil
}

func (m *Machine) toggleBeep(_ int, _ time.Time) []logic.Event {
	on := !m.ctx.Settings.BeepOnPush
	m.ctx.Settings.BeepOnPush = on
	m.persist(settings.SaveBeepOnPush(m.ctx.Store, on), "beep_on_push")
	return nil
}

func (m *Machine) toggleMode(idx int, now time.Time) []logic.Event {
	m.ctx.Controller.ToggleMode(idx, now)
	m.ctx.Log.Info("zone mode changed", "zone", idx+1, "mode", modeValue(m, idx))
	return nil
}

// enterTimer puts the zone in timer mode before its duration is edited.
func (m *Machine) enterTimer(idx int, now time.Time) []logic.Event {
	if !m.ctx.Controller.Zone(idx).UseTimer {
		m.ctx.Controller.ToggleMode(idx, now)
	}
	return nil
}

func (m *Machine) startView(_ int, now time.Time) []logic.Event {
	m.viewUntil = now.Add(m.opts.ViewDuration)
	return nil
}

func (m *Machine) toggleZoneAlarm(idx int, _ time.Time) []logic.Event {
	m.toggleAlarm(logic.ZoneChannel(idx))
	return nil
}

func (m *Machine) toggleFilamentAlarm(idx int, _ time.Time) []logic.Event {
	m.toggleAlarm(logic.MonitorChannel(idx))
	return nil
}

func (m *Machine) toggleAlarm(ch logic.Channel) {
	on := !m.ctx.Settings.Humidity[ch].Enabled
	m.ctx.Settings.Humidity[ch].Enabled = on
	m.persist(settings.SaveAlarm(m.ctx.Store, ch, on), ch.String()+"_alarm")
}

func (m *Machine) applySetpoint(idx int, d int64, _ time.Time) {
	m.ctx.Controller.SetSetpoint(idx, float64(SetpointFor(d)))
}

func (m *Machine) applyTimer(idx int, d int64, _ time.Time) {
	m.ctx.Controller.SetTimerDuration(idx, TimerFor(d))
}

func (m *Machine) applyThreshold(ch logic.Channel, d int64) {
	v := HumidityFor(d)
	m.ctx.Settings.Humidity[ch].Threshold = v
	m.persist(settings.SaveThreshold(m.ctx.Store, ch, v), ch.String()+"_threshold")
}

// armTimer commits the shown duration and starts a new run.
func (m *Machine) armTimer(idx int, now time.Time) []logic.Event {
	m.ctx.Controller.SetTimerDuration(idx, TimerFor(m.ctx.Encoder.Detents()))
	ev := m.ctx.Controller.StartTimer(idx, now)
	m.ctx.Log.Info("timer started", "zone", idx+1, "duration", m.ctx.Controller.Zone(idx).TimerDuration)
	return []logic.Event{ev}
}
