package mqtt

import (
	"log/slog"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool

	// key, when set, replaces any earlier buffered message with the same key.
	key string
	// critical messages are dropped only when the outbox holds nothing else.
	critical bool
}

// criticalEvents change heater state or raise an alarm. A subscriber that
// misses one of these has the wrong picture of the enclosure.
var criticalEvents = map[logic.EventType]bool{
	logic.EventOverheat:        true,
	logic.EventOverheatCleared: true,
	logic.EventTimerDone:       true,
	logic.EventAutoShutoff:     true,
	logic.EventShutAllOff:      true,
	logic.EventHumidityHigh:    true,
}

func eventMsg(payload []byte, et logic.EventType) bufferedMsg {
	// QoS 0 (at-most-once), not retained
	return bufferedMsg{topic: Topic, payload: payload, critical: criticalEvents[et]}
}

func systemMsg(payload []byte, ev SystemEvent) bufferedMsg {
	// QoS 1 (at-least-once) for lifecycle events
	m := bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: ev.Retained}
	if ev.Retained {
		// The broker keeps one retained message per topic.
		m.key = "retained:" + TopicSystem
		m.critical = true
	} else {
		m.key = ev.Event
	}
	return m
}

// outbox holds messages while the broker is unreachable. When full it drops
// the oldest non-critical message, or the oldest message if all are critical.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int
	log      *slog.Logger
}

func newOutbox(capacity int, log *slog.Logger) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &outbox{capacity: capacity, log: log}
}

func (o *outbox) push(msg bufferedMsg) {
	if msg.key != "" {
		for i, m := range o.msgs {
			if m.key == msg.key {
				o.remove(i)
				break
			}
		}
	}
	if len(o.msgs) == o.capacity {
		victim := 0
		for i, m := range o.msgs {
			if !m.critical {
				victim = i
				break
			}
		}
		if o.dropped == 0 {
			o.log.Warn("mqtt buffer full, dropping", "capacity", o.capacity, "critical", o.msgs[victim].critical)
		}
		o.dropped++
		o.remove(victim)
	}
	o.msgs = append(o.msgs, msg)
}

func (o *outbox) remove(i int) {
	o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
}

// drainAll empties the outbox, oldest first, and re-arms the overflow warning.
func (o *outbox) drainAll() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	if o.dropped > 0 {
		o.log.Warn("mqtt buffer dropped messages while offline", "dropped", o.dropped)
	}
	out := o.msgs
	o.msgs = nil
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
