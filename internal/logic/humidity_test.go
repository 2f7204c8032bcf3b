package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumidityEdges(t *testing.T) {
	var m HumidityMonitor
	alarm := HumidityAlarm{Enabled: true, Threshold: 45}

	assert.Nil(t, m.Evaluate(ChannelFilament1, 40, alarm, t0))
	assert.Nil(t, m.Evaluate(ChannelFilament1, 45, alarm, t0), "threshold itself is not high")

	ev := m.Evaluate(ChannelFilament1, 46, alarm, t0)
	require.NotNil(t, ev)
	assert.Equal(t, EventHumidityHigh, ev.Type)
	assert.Equal(t, ChannelFilament1, ev.Channel)
	assert.Equal(t, 46.0, ev.Humidity)
	assert.True(t, m.High(ChannelFilament1))

	assert.Nil(t, m.Evaluate(ChannelFilament1, 60, alarm, t0), "still high, no repeat")

	ev = m.Evaluate(ChannelFilament1, 44, alarm, t0)
	require.NotNil(t, ev)
	assert.Equal(t, EventHumidityNormal, ev.Type)
	assert.False(t, m.High(ChannelFilament1))
}

func TestHumidityDisabledAlarmClears(t *testing.T) {
	var m HumidityMonitor
	on := HumidityAlarm{Enabled: true, Threshold: 50}
	off := HumidityAlarm{Enabled: false, Threshold: 50}

	assert.Nil(t, m.Evaluate(ChannelZone2, 80, off, t0))
	require.NotNil(t, m.Evaluate(ChannelZone2, 80, on, t0))

	ev := m.Evaluate(ChannelZone2, 80, off, t0)
	require.NotNil(t, ev)
	assert.Equal(t, EventHumidityNormal, ev.Type)
}

func TestHumidityChannelsIndependent(t *testing.T) {
	var m HumidityMonitor
	alarm := HumidityAlarm{Enabled: true, Threshold: 30}

	require.NotNil(t, m.Evaluate(ChannelZone1, 50, alarm, t0))
	assert.True(t, m.High(ChannelZone1))
	assert.False(t, m.High(ChannelZone2))
	assert.False(t, m.High(ChannelFilament2))
}
