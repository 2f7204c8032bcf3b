// Package status provides a thread-safe status tracker for the enclosure controller.
// It is read by the HTTP handlers and by the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs        int64
	InputPollMs   int64
	DebounceMs    int64
	HeartbeatMs   int64
	IdleTimeoutMs int64
	OverheatF     float64
	Broker        string
	HTTPPort      string
	Display       string
}

// ZoneStatus is the observable state of one heated zone.
type ZoneStatus struct {
	Name           string
	Channel        logic.Channel
	TemperatureF   float64
	Humidity       float64
	SetpointF      float64
	Duty           uint8
	HeaterOn       bool
	Overheated     bool
	UseTimer       bool
	TimerRemaining time.Duration
	TimerExpired   bool
	AutoOff        bool
	HumidityHigh   bool
}

// MonitorStatus is the observable state of one filament monitor.
type MonitorStatus struct {
	Name         string
	Channel      logic.Channel
	TemperatureF float64
	Humidity     float64
	HumidityHigh bool
}

// State is the control-loop part of a snapshot, refreshed every tick.
type State struct {
	Zones       [logic.NumZones]ZoneStatus
	Monitors    [logic.NumMonitors]MonitorStatus
	Screen      string
	Idle        bool
	Overheated  bool
	Alarms      [logic.NumChannels]logic.HumidityAlarm
	AutoShutoff bool
	BeepOnPush  bool
	Counts      logic.EventCounts
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State
	Ready         bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update replaces the control state. The tracker is ready after the first call.
// Called from the control loop on every tick.
func (t *Tracker) Update(s State) {
	t.mu.Lock()
	t.snap.State = s
	t.snap.Ready = true
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
