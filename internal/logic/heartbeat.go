package logic

import "time"

// Heartbeat schedules periodic status reports and tallies events between them.
type Heartbeat struct {
	startTime     time.Time
	lastHeartbeat time.Time
	counts        EventCounts
}

// NewHeartbeat creates a heartbeat whose uptime is measured from startTime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Record counts events published since startup.
func (h *Heartbeat) Record(events []Event) {
	h.counts.Add(events)
}

// Counts returns a copy of the event counts.
func (h *Heartbeat) Counts() EventCounts {
	return h.counts
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed, or if
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(h.lastHeartbeat) < interval {
		return nil
	}

	h.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
		Counts:    h.counts,
	}
}
