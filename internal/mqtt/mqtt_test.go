package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

var ts = time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

func TestFormatPayloadExactJSON(t *testing.T) {
	event := logic.Event{
		Timestamp:   ts,
		Type:        logic.EventOverheat,
		Channel:     logic.ChannelZone1,
		Temperature: 130.24,
		Setpoint:    90,
		Humidity:    40.46,
	}

	payload, err := FormatPayload(event)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"controller":{"timestamp":"2026-02-02T22:18:12Z","event":"OVERHEAT","channel":"zone1","temperature_f":130.2,"setpoint_f":90,"humidity":40.5}}`,
		string(payload))
}

func TestFormatPayloadFilamentOmitsSetpoint(t *testing.T) {
	event := logic.Event{
		Timestamp: ts,
		Type:      logic.EventHumidityHigh,
		Channel:   logic.ChannelFilament2,
		Humidity:  71,
	}

	payload, err := FormatPayload(event)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.NotContains(t, raw["controller"], "setpoint_f")
	assert.Equal(t, "filament2", raw["controller"]["channel"])
	assert.Equal(t, "HUMIDITY_HIGH", raw["controller"]["event"])
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	types := []logic.EventType{
		logic.EventOverheat,
		logic.EventOverheatCleared,
		logic.EventFiveMinutes,
		logic.EventFinalCountdown,
		logic.EventTimerDone,
		logic.EventTimerStarted,
		logic.EventAutoShutoff,
		logic.EventHumidityHigh,
		logic.EventHumidityNormal,
		logic.EventShutAllOff,
	}
	for _, et := range types {
		t.Run(string(et), func(t *testing.T) {
			payload, err := FormatPayload(logic.Event{Timestamp: ts, Type: et, Channel: logic.ChannelZone2})
			require.NoError(t, err)

			var parsed Payload
			require.NoError(t, json.Unmarshal(payload, &parsed))
			assert.Equal(t, string(et), parsed.Controller.Event)
			assert.Equal(t, "zone2", parsed.Controller.Channel)
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 17, 18, 12, 0, loc),
		Type:      logic.EventTimerDone,
	}
	payload, err := FormatPayload(event)
	require.NoError(t, err)

	var parsed Payload
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "2026-02-02T22:18:12Z", parsed.Controller.Timestamp)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "enclosure/controller/events", Topic)
	assert.Equal(t, "enclosure/controller/system", TopicSystem)
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: "SHUTDOWN", Reason: "SIGTERM"})
	require.NoError(t, err)
	assert.Equal(t, `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`, string(payload))
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: "RECONNECTED"})
	require.NoError(t, err)
	assert.Equal(t, `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"RECONNECTED"}}`, string(payload))
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: "HEARTBEAT", RawPayload: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, payload)
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	require.NoError(t, f.Publish(logic.Event{Timestamp: ts, Type: logic.EventOverheat}))
	require.NoError(t, f.Publish(logic.Event{Timestamp: ts, Type: logic.EventOverheatCleared}))
	require.NoError(t, f.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP", Retained: true}))

	assert.Equal(t, []logic.EventType{logic.EventOverheat, logic.EventOverheatCleared}, f.EventTypes())
	assert.Len(t, f.Payloads, 2)
	require.Len(t, f.SystemEvents, 1)
	assert.True(t, f.SystemEvents[0].Retained)
	assert.Len(t, f.SystemPayloads, 1)
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker gone")
	f.PublishSystemError = errors.New("broker gone")

	assert.Error(t, f.Publish(logic.Event{Type: logic.EventTimerDone}))
	assert.Error(t, f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}))
	assert.Empty(t, f.Events)
	assert.Empty(t, f.SystemEvents)
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	f.Publish(logic.Event{Type: logic.EventTimerDone})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	require.True(t, f.Closed)

	f.Reset()
	assert.Empty(t, f.Events)
	assert.Empty(t, f.Payloads)
	assert.Empty(t, f.SystemEvents)
	assert.Empty(t, f.SystemPayloads)
	assert.False(t, f.Closed)
	assert.False(t, f.IsConnected())

	require.NoError(t, f.Publish(logic.Event{Type: logic.EventShutAllOff}))
	assert.Len(t, f.Events, 1, "usable after reset")
}

func TestClientIDIsUniquePerProcess(t *testing.T) {
	a := ClientID("")
	b := ClientID("")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^enclosure-controller-[0-9a-f]{8}$`, a)
	assert.Regexp(t, `^bench-[0-9a-f]{8}$`, ClientID("bench"))
}

func TestFakePublisherQueries(t *testing.T) {
	f := NewFakePublisher()
	require.NoError(t, f.Publish(logic.Event{Type: logic.EventTimerDone, Channel: logic.ChannelZone2}))
	require.NoError(t, f.Publish(logic.Event{Type: logic.EventShutAllOff}))
	require.NoError(t, f.Publish(logic.Event{Type: logic.EventHumidityHigh, Channel: logic.ChannelFilament1, Humidity: 70}))
	require.NoError(t, f.Publish(logic.Event{Type: logic.EventTimerDone, Channel: logic.ChannelZone1}))
	require.NoError(t, f.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}))
	require.NoError(t, f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}))

	assert.Equal(t, 2, f.Count(logic.EventTimerDone))
	assert.Zero(t, f.Count(logic.EventOverheat))
	require.Len(t, f.EventsFor(logic.ChannelZone1), 1, "channel-less SHUT_ALL_OFF is not a zone1 event")
	assert.Equal(t, logic.EventTimerDone, f.EventsFor(logic.ChannelZone1)[0].Type)
	assert.Len(t, f.EventsFor(logic.ChannelFilament1), 1)
	assert.Equal(t, []string{"STARTUP", "HEARTBEAT"}, f.SystemEventNames())

	f.Reset()
	assert.Empty(t, f.SystemEventNames())
	assert.Nil(t, f.EventsFor(logic.ChannelZone2))
}
