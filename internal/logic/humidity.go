package logic

import "time"

// HumidityMonitor latches per-channel high-humidity conditions and reports
// edges as events.
type HumidityMonitor struct {
	high [NumChannels]bool
}

// Evaluate compares a humidity reading against the channel's alarm and
// returns an event when the latched condition changes.
func (m *HumidityMonitor) Evaluate(ch Channel, humidity float64, alarm HumidityAlarm, now time.Time) *Event {
	high := alarm.Enabled && humidity > float64(alarm.Threshold)
	if high == m.high[ch] {
		return nil
	}
	m.high[ch] = high

	t := EventHumidityNormal
	if high {
		t = EventHumidityHigh
	}
	return &Event{
		Timestamp: now,
		Type:      t,
		Channel:   ch,
		Humidity:  humidity,
	}
}

// High reports whether ch is currently above its enabled threshold.
func (m *HumidityMonitor) High(ch Channel) bool {
	return m.high[ch]
}
