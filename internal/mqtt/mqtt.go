// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// Topic is the MQTT topic for control events.
const Topic = "enclosure/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "enclosure/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a control event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Controller ControllerPayload `json:"controller"`
}

// ControllerPayload contains the control event details.
type ControllerPayload struct {
	Timestamp    string   `json:"timestamp"`
	Event        string   `json:"event"`
	Channel      string   `json:"channel"`
	TemperatureF float64  `json:"temperature_f"`
	SetpointF    *float64 `json:"setpoint_f,omitempty"`
	Humidity     float64  `json:"humidity"`
}

// FormatPayload creates the JSON payload for a control event.
// The setpoint is only reported for heated zones.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Controller: ControllerPayload{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Type),
			Channel:      event.Channel.String(),
			TemperatureF: round1(event.Temperature),
			Humidity:     round1(event.Humidity),
		},
	}
	if event.Channel == logic.ChannelZone1 || event.Channel == logic.ChannelZone2 {
		sp := round1(event.Setpoint)
		payload.Controller.SetpointF = &sp
	}
	return json.Marshal(payload)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
