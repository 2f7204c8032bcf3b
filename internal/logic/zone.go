package logic

import "time"

// Zone is one heated enclosure. It exclusively owns its PID state.
type Zone struct {
	Name    string
	Channel Channel

	CurrentTemp float64
	Setpoint    float64

	UseTimer      bool
	TimerDuration time.Duration
	TimerStart    time.Time
	// ManualStart is when the zone last entered manual mode.
	ManualStart time.Time

	HeaterOn   bool
	Overheated bool
	Duty       uint8

	// buzzerLocked suppresses the final countdown after it fired for this run.
	buzzerLocked    bool
	fiveMinuteFired bool
	timerExpired    bool
	autoOff         bool

	pid PID
}

// Remaining returns the time left on the zone's timer, or zero when expired
// or not in timer mode.
func (z Zone) Remaining(now time.Time) time.Duration {
	if !z.UseTimer || z.timerExpired {
		return 0
	}
	elapsed := now.Sub(z.TimerStart)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= z.TimerDuration {
		return 0
	}
	return z.TimerDuration - elapsed
}

// TimerExpired reports whether the current timer run has finished.
func (z Zone) TimerExpired() bool {
	return z.timerExpired
}

// AutoOff reports whether the manual-mode runtime limit has latched the heater off.
func (z Zone) AutoOff() bool {
	return z.autoOff
}

// halted reports whether the zone is held off by its timer or the runtime limit.
func (z *Zone) halted() bool {
	if z.UseTimer {
		return z.timerExpired
	}
	return z.autoOff
}

func (z *Zone) off() {
	z.HeaterOn = false
	z.Duty = 0
}
