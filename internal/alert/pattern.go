// Package alert sequences the buzzer through fixed, named patterns.
package alert

import (
	"time"

	"github.com/sweeney/enclosure-controller/internal/display"
	"github.com/sweeney/enclosure-controller/internal/logic"
)

// Step is one buzzer pulse followed by silence. A zero On is a pause.
type Step struct {
	On  time.Duration
	Off time.Duration
}

// Flash blinks a frame on the display before the buzzer steps run.
type Flash struct {
	Frame display.Frame
	Count int
	On    time.Duration
	Off   time.Duration
}

// Pattern is an ordered, non-cancellable alert.
type Pattern struct {
	Name  string
	Flash *Flash
	Steps []Step
}

// Duration returns how long the pattern blocks its caller.
func (p Pattern) Duration() time.Duration {
	var d time.Duration
	if p.Flash != nil {
		d += time.Duration(p.Flash.Count) * (p.Flash.On + p.Flash.Off)
	}
	for _, s := range p.Steps {
		d += s.On + s.Off
	}
	return d
}

func repeat(s Step, n int) []Step {
	out := make([]Step, n)
	for i := range out {
		out[i] = s
	}
	return out
}

var (
	// Push is the click confirming a button press.
	Push = Pattern{
		Name:  string(logic.AlertPush),
		Steps: []Step{{On: 20 * time.Millisecond}},
	}

	// Overheat flashes a shutdown banner three times, then sounds ten pulses.
	Overheat = Pattern{
		Name: string(logic.AlertOverheat),
		Flash: &Flash{
			Frame: display.Frame{Title: "!!! OVERHEAT !!!", Lines: []string{"SYSTEM SHUTDOWN"}},
			Count: 3,
			On:    500 * time.Millisecond,
			Off:   300 * time.Millisecond,
		},
		Steps: repeat(Step{On: 300 * time.Millisecond, Off: 200 * time.Millisecond}, 10),
	}

	// FiveMinutes is a single half-second pulse.
	FiveMinutes = Pattern{
		Name:  string(logic.AlertFiveMinutes),
		Steps: []Step{{On: 500 * time.Millisecond}},
	}

	// FinalCountdown is four short beeps, a pause, then one long beep.
	FinalCountdown = Pattern{
		Name: string(logic.AlertFinalCountdown),
		Steps: append(repeat(Step{On: 150 * time.Millisecond, Off: 150 * time.Millisecond}, 4),
			Step{Off: 500 * time.Millisecond},
			Step{On: time.Second},
		),
	}
)

// PatternFor maps a kernel alert to its pattern.
func PatternFor(a logic.Alert) (Pattern, bool) {
	switch a {
	case logic.AlertPush:
		return Push, true
	case logic.AlertOverheat:
		return Overheat, true
	case logic.AlertFiveMinutes:
		return FiveMinutes, true
	case logic.AlertFinalCountdown:
		return FinalCountdown, true
	}
	return Pattern{}, false
}
