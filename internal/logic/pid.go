package logic

import (
	"math"
	"time"
)

// Gains are the PID coefficients.
type Gains struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// DefaultGains are the static gains shared by both zones.
var DefaultGains = Gains{Kp: 2.0, Ki: 5.0, Kd: 1.0}

// PID is a positional PID loop with output clamped to [0, max].
// The derivative acts on the measurement so setpoint edits do not kick the output.
type PID struct {
	gains Gains
	max   float64

	integral  float64
	integMax  float64
	prevInput float64
	prevTime  time.Time
	primed    bool
}

// NewPID creates a controller with the given gains and output ceiling.
func NewPID(g Gains, max float64) PID {
	var integMax float64
	if g.Ki != 0 {
		integMax = max / g.Ki
	}
	return PID{gains: g, max: max, integMax: integMax}
}

// Step advances the loop with a new measurement and returns the output.
func (p *PID) Step(input, setpoint float64, now time.Time) float64 {
	err := setpoint - input

	var dt float64
	if p.primed {
		dt = now.Sub(p.prevTime).Seconds()
		if dt < 0 {
			dt = 0
		}
	}

	p.integral += err * dt
	if p.integMax > 0 {
		p.integral = math.Max(0, math.Min(p.integMax, p.integral))
	}

	var deriv float64
	if p.primed && dt > 0 {
		deriv = (input - p.prevInput) / dt
	}

	p.prevInput = input
	p.prevTime = now
	p.primed = true

	out := p.gains.Kp*err + p.gains.Ki*p.integral - p.gains.Kd*deriv
	return math.Max(0, math.Min(p.max, out))
}

// Reset clears the accumulated state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevInput = 0
	p.prevTime = time.Time{}
	p.primed = false
}

// Integral exposes the accumulator for status and tests.
func (p *PID) Integral() float64 {
	return p.integral
}
