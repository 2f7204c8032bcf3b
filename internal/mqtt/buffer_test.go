package mqtt

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

func pushN(ob *outbox, from, to int) {
	for i := from; i < to; i++ {
		ob.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}
}

func payloads(msgs []bufferedMsg) []byte {
	out := make([]byte, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.payload[0])
	}
	return out
}

func TestOutboxEmptyDrain(t *testing.T) {
	ob := newOutbox(10, nil)
	assert.Nil(t, ob.drainAll())
}

func TestOutboxPushAndDrain(t *testing.T) {
	ob := newOutbox(10, nil)
	pushN(ob, 0, 5)

	assert.Equal(t, []byte{0, 1, 2, 3, 4}, payloads(ob.drainAll()))
	assert.Nil(t, ob.drainAll(), "second drain is empty")
}

func TestOutboxOverflowKeepsNewest(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	ob := newOutbox(5, log)

	pushN(ob, 0, 8)

	assert.Equal(t, []byte{3, 4, 5, 6, 7}, payloads(ob.drainAll()), "oldest 3 are dropped")
	assert.Equal(t, 1, strings.Count(out.String(), "mqtt buffer full"), "overflow is logged once per outage")
	assert.Contains(t, out.String(), "dropped=3")

	pushN(ob, 0, 6)
	assert.Equal(t, 2, strings.Count(out.String(), "mqtt buffer full"), "drain re-arms the overflow warning")
}

func TestOutboxOverflowSparesCriticalEvents(t *testing.T) {
	ob := newOutbox(3, nil)
	ob.push(eventMsg([]byte{0}, logic.EventOverheat))
	ob.push(eventMsg([]byte{1}, logic.EventFiveMinutes))
	ob.push(eventMsg([]byte{2}, logic.EventTimerDone))
	ob.push(eventMsg([]byte{3}, logic.EventFinalCountdown))
	ob.push(eventMsg([]byte{4}, logic.EventTimerStarted))

	assert.Equal(t, []byte{0, 2, 4}, payloads(ob.drainAll()))
}

func TestOutboxAllCriticalDropsOldest(t *testing.T) {
	ob := newOutbox(2, nil)
	ob.push(eventMsg([]byte{0}, logic.EventOverheat))
	ob.push(eventMsg([]byte{1}, logic.EventOverheatCleared))
	ob.push(eventMsg([]byte{2}, logic.EventHumidityHigh))

	assert.Equal(t, []byte{1, 2}, payloads(ob.drainAll()))
}

func TestOutboxKeepsLatestHeartbeat(t *testing.T) {
	ob := newOutbox(10, nil)
	ob.push(systemMsg([]byte{0}, SystemEvent{Event: "HEARTBEAT"}))
	ob.push(eventMsg([]byte{1}, logic.EventTimerStarted))
	ob.push(systemMsg([]byte{2}, SystemEvent{Event: "HEARTBEAT"}))

	got := ob.drainAll()
	assert.Equal(t, []byte{1, 2}, payloads(got), "newer heartbeat replaces the older one")
	assert.False(t, got[1].retained)
	assert.Equal(t, byte(1), got[1].qos)
}

func TestOutboxKeepsLatestRetainedLifecycle(t *testing.T) {
	ob := newOutbox(10, nil)
	ob.push(systemMsg([]byte{0}, SystemEvent{Event: "STARTUP", Retained: true}))
	ob.push(systemMsg([]byte{1}, SystemEvent{Event: "HEARTBEAT"}))
	ob.push(systemMsg([]byte{2}, SystemEvent{Event: "RECONNECTED", Retained: true}))

	got := ob.drainAll()
	require.Len(t, got, 2)
	assert.Equal(t, []byte{1, 2}, payloads(got))
	assert.True(t, got[1].retained)
	assert.True(t, got[1].critical)
}

func TestOutboxOverflowDropsHeartbeatBeforeLifecycle(t *testing.T) {
	ob := newOutbox(2, nil)
	ob.push(systemMsg([]byte{0}, SystemEvent{Event: "STARTUP", Retained: true}))
	ob.push(systemMsg([]byte{1}, SystemEvent{Event: "HEARTBEAT"}))
	ob.push(eventMsg([]byte{2}, logic.EventShutAllOff))

	assert.Equal(t, []byte{0, 2}, payloads(ob.drainAll()))
}

func TestCriticalEvents(t *testing.T) {
	for _, et := range []logic.EventType{
		logic.EventOverheat, logic.EventOverheatCleared, logic.EventTimerDone,
		logic.EventAutoShutoff, logic.EventShutAllOff, logic.EventHumidityHigh,
	} {
		assert.True(t, eventMsg(nil, et).critical, string(et))
	}
	for _, et := range []logic.EventType{
		logic.EventFiveMinutes, logic.EventFinalCountdown, logic.EventTimerStarted, logic.EventHumidityNormal,
	} {
		assert.False(t, eventMsg(nil, et).critical, string(et))
	}
}

func TestOutboxMultipleCycles(t *testing.T) {
	ob := newOutbox(5, nil)

	pushN(ob, 0, 3)
	require.Len(t, ob.drainAll(), 3)

	pushN(ob, 10, 14)
	assert.Equal(t, []byte{10, 11, 12, 13}, payloads(ob.drainAll()))
}

func TestOutboxLen(t *testing.T) {
	ob := newOutbox(10, nil)
	assert.Equal(t, 0, ob.len())

	pushN(ob, 0, 2)
	assert.Equal(t, 2, ob.len())

	ob.drainAll()
	assert.Equal(t, 0, ob.len())
}

func TestOutboxMinimumCapacity(t *testing.T) {
	ob := newOutbox(0, nil)
	pushN(ob, 0, 3)
	assert.Equal(t, []byte{2}, payloads(ob.drainAll()))
}

func TestOutboxPreservesFields(t *testing.T) {
	ob := newOutbox(10, nil)
	ob.push(systemMsg([]byte(`{"test":true}`), SystemEvent{Event: "SHUTDOWN", Retained: true}))

	got := ob.drainAll()
	require.Len(t, got, 1)
	assert.Equal(t, TopicSystem, got[0].topic)
	assert.Equal(t, `{"test":true}`, string(got[0].payload))
	assert.Equal(t, byte(1), got[0].qos)
	assert.True(t, got[0].retained)
}
