// Package logic contains the pure control kernel of the enclosure controller:
// encoder decoding, button debouncing, the per-zone thermal loop with its
// overheat failsafe and timers, and humidity alarm evaluation.
// This package has NO hardware dependencies (no GPIO, I2C, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Channel identifies one logical sensor channel.
type Channel int

const (
	ChannelZone1 Channel = iota
	ChannelZone2
	ChannelFilament1
	ChannelFilament2
)

// NumChannels is the number of logical sensor channels.
const NumChannels = 4

// NumZones is the number of heated zones.
const NumZones = 2

// NumMonitors is the number of passive filament monitors.
const NumMonitors = 2

// String returns the short channel name used in logs and payloads.
func (c Channel) String() string {
	switch c {
	case ChannelZone1:
		return "zone1"
	case ChannelZone2:
		return "zone2"
	case ChannelFilament1:
		return "filament1"
	case ChannelFilament2:
		return "filament2"
	}
	return "unknown"
}

// ZoneChannel returns the sensor channel of zone i.
func ZoneChannel(i int) Channel {
	return ChannelZone1 + Channel(i)
}

// MonitorChannel returns the sensor channel of filament monitor i.
func MonitorChannel(i int) Channel {
	return ChannelFilament1 + Channel(i)
}

// Reading is one sensor sample.
type Reading struct {
	TemperatureF float64
	Humidity     float64
}

// EventType names a control event to be published.
type EventType string

const (
	EventOverheat        EventType = "OVERHEAT"
	EventOverheatCleared EventType = "OVERHEAT_CLEARED"
	EventFiveMinutes     EventType = "TIMER_FIVE_MINUTES"
	EventFinalCountdown  EventType = "TIMER_FINAL_COUNTDOWN"
	EventTimerDone       EventType = "TIMER_DONE"
	EventTimerStarted    EventType = "TIMER_STARTED"
	EventAutoShutoff     EventType = "AUTO_SHUTOFF"
	EventHumidityHigh    EventType = "HUMIDITY_HIGH"
	EventHumidityNormal  EventType = "HUMIDITY_NORMAL"
	EventShutAllOff      EventType = "SHUT_ALL_OFF"
)

// Event represents a control event to be published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Channel     Channel
	Temperature float64
	Setpoint    float64
	Humidity    float64
}

// Alert names a buzzer pattern requested by the kernel.
type Alert string

const (
	AlertPush           Alert = "push"
	AlertOverheat       Alert = "overheat"
	AlertFiveMinutes    Alert = "five-minutes-left"
	AlertFinalCountdown Alert = "final-countdown"
)

// HeaterCommand is a duty value to send to one heater channel.
type HeaterCommand struct {
	Zone int
	Duty uint8
}

// Result collects the side effects requested by one kernel step.
// The caller applies Commands first, then fires Alerts in order.
type Result struct {
	Commands []HeaterCommand
	Alerts   []Alert
	Events   []Event
}

func (r *Result) command(zone int, duty uint8) {
	r.Commands = append(r.Commands, HeaterCommand{Zone: zone, Duty: duty})
}

// Merge appends the contents of o to r.
func (r *Result) Merge(o Result) {
	r.Commands = append(r.Commands, o.Commands...)
	r.Alerts = append(r.Alerts, o.Alerts...)
	r.Events = append(r.Events, o.Events...)
}

// HumidityAlarm is the per-channel humidity alarm configuration.
type HumidityAlarm struct {
	Enabled   bool
	Threshold int // percent relative humidity
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Overheat     int
	TimerDone    int
	AutoShutoff  int
	HumidityHigh int
	ShutAllOff   int
}

// Add counts the given events.
func (c *EventCounts) Add(events []Event) {
	for _, e := range events {
		switch e.Type {
		case EventOverheat:
			c.Overheat++
		case EventTimerDone:
			c.TimerDone++
		case EventAutoShutoff:
			c.AutoShutoff++
		case EventHumidityHigh:
			c.HumidityHigh++
		case EventShutAllOff:
			c.ShutAllOff++
		}
	}
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
