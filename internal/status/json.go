package status

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Ready         bool          `json:"ready"`
	Screen        string        `json:"screen"`
	Idle          bool          `json:"idle"`
	Overheated    bool          `json:"overheated"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	Zones         []ZoneJSON    `json:"zones"`
	Monitors      []MonitorJSON `json:"monitors"`
	Settings      SettingsJSON  `json:"settings"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// ZoneJSON is the JSON representation of a heated zone.
type ZoneJSON struct {
	Name                  string  `json:"name"`
	Channel               string  `json:"channel"`
	TemperatureF          float64 `json:"temperature_f"`
	Humidity              float64 `json:"humidity"`
	SetpointF             float64 `json:"setpoint_f"`
	Duty                  uint8   `json:"duty"`
	Heater                string  `json:"heater"`
	Overheated            bool    `json:"overheated"`
	Mode                  string  `json:"mode"`
	TimerRemainingSeconds int64   `json:"timer_remaining_seconds"`
	TimerExpired          bool    `json:"timer_expired"`
	AutoOff               bool    `json:"auto_off"`
	HumidityHigh          bool    `json:"humidity_high"`
}

// MonitorJSON is the JSON representation of a filament monitor.
type MonitorJSON struct {
	Name         string  `json:"name"`
	Channel      string  `json:"channel"`
	TemperatureF float64 `json:"temperature_f"`
	Humidity     float64 `json:"humidity"`
	HumidityHigh bool    `json:"humidity_high"`
}

// AlarmJSON is one channel's humidity alarm setting.
type AlarmJSON struct {
	Channel   string `json:"channel"`
	Enabled   bool   `json:"enabled"`
	Threshold int    `json:"threshold"`
}

// SettingsJSON is the JSON representation of the persisted settings.
type SettingsJSON struct {
	AutoShutoff    bool        `json:"auto_shutoff"`
	BeepOnPush     bool        `json:"beep_on_push"`
	HumidityAlarms []AlarmJSON `json:"humidity_alarms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Overheat     int `json:"overheat"`
	TimerDone    int `json:"timer_done"`
	AutoShutoff  int `json:"auto_shutoff"`
	HumidityHigh int `json:"humidity_high"`
	ShutAllOff   int `json:"shut_all_off"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs        int64   `json:"tick_ms"`
	InputPollMs   int64   `json:"input_poll_ms"`
	DebounceMs    int64   `json:"debounce_ms"`
	HeartbeatMs   int64   `json:"heartbeat_ms"`
	IdleTimeoutMs int64   `json:"idle_timeout_ms"`
	OverheatF     float64 `json:"overheat_f"`
	Broker        string  `json:"broker"`
	HTTPPort      string  `json:"http_port"`
	Display       string  `json:"display"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// Mode returns "timer" or "manual".
func (z ZoneStatus) Mode() string {
	if z.UseTimer {
		return "timer"
	}
	return "manual"
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.Ready,
		Screen:        snap.Screen,
		Idle:          snap.Idle,
		Overheated:    snap.Overheated,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Zones:         make([]ZoneJSON, 0, len(snap.Zones)),
		Monitors:      make([]MonitorJSON, 0, len(snap.Monitors)),
		Settings: SettingsJSON{
			AutoShutoff:    snap.AutoShutoff,
			BeepOnPush:     snap.BeepOnPush,
			HumidityAlarms: make([]AlarmJSON, 0, len(snap.Alarms)),
		},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Overheat:     snap.Counts.Overheat,
			TimerDone:    snap.Counts.TimerDone,
			AutoShutoff:  snap.Counts.AutoShutoff,
			HumidityHigh: snap.Counts.HumidityHigh,
			ShutAllOff:   snap.Counts.ShutAllOff,
		},
		Config: ConfigJSON{
			TickMs:        snap.Config.TickMs,
			InputPollMs:   snap.Config.InputPollMs,
			DebounceMs:    snap.Config.DebounceMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			IdleTimeoutMs: snap.Config.IdleTimeoutMs,
			OverheatF:     snap.Config.OverheatF,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
			Display:       snap.Config.Display,
		},
	}

	for _, z := range snap.Zones {
		inner.Zones = append(inner.Zones, ZoneJSON{
			Name:                  z.Name,
			Channel:               z.Channel.String(),
			TemperatureF:          round1(z.TemperatureF),
			Humidity:              round1(z.Humidity),
			SetpointF:             z.SetpointF,
			Duty:                  z.Duty,
			Heater:                onOff(z.HeaterOn),
			Overheated:            z.Overheated,
			Mode:                  z.Mode(),
			TimerRemainingSeconds: int64(z.TimerRemaining / time.Second),
			TimerExpired:          z.TimerExpired,
			AutoOff:               z.AutoOff,
			HumidityHigh:          z.HumidityHigh,
		})
	}
	for _, m := range snap.Monitors {
		inner.Monitors = append(inner.Monitors, MonitorJSON{
			Name:         m.Name,
			Channel:      m.Channel.String(),
			TemperatureF: round1(m.TemperatureF),
			Humidity:     round1(m.Humidity),
			HumidityHigh: m.HumidityHigh,
		})
	}
	for ch, a := range snap.Alarms {
		inner.Settings.HumidityAlarms = append(inner.Settings.HumidityAlarms, AlarmJSON{
			Channel:   logic.Channel(ch).String(),
			Enabled:   a.Enabled,
			Threshold: a.Threshold,
		})
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatChannelJSON returns the JSON for one zone or filament monitor, looked
// up by channel name such as "zone1" or "filament2". ok is false for an
// unknown name.
func FormatChannelJSON(snap Snapshot, name string) (data []byte, ok bool) {
	inner := buildInner(snap)
	var v any
	for _, z := range inner.Zones {
		if z.Channel == name {
			v = z
		}
	}
	for _, m := range inner.Monitors {
		if m.Channel == name {
			v = m
		}
	}
	if v == nil {
		return nil, false
	}
	data, _ = json.MarshalIndent(v, "", "  ")
	return data, true
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
