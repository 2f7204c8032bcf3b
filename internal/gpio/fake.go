package gpio

import (
	"errors"
	"time"
)

// FakeReader is a test double that returns scripted input levels.
type FakeReader struct {
	// Samples contains scripted levels to return.
	// Each call to Read() consumes the next sample.
	Samples []Levels

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Levels) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Levels, error) {
	if f.ReadError != nil {
		return Levels{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Levels{}, errors.New("no samples configured")
	}

	i := min(f.index, len(f.Samples)-1)
	if f.index < len(f.Samples) {
		f.index++
	}
	sample := f.Samples[i]

	return sample, nil
}

// Push appends samples to the script.
func (f *FakeReader) Push(samples ...Levels) {
	f.Samples = append(f.Samples, samples...)
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// Edge is one recorded buzzer transition.
type Edge struct {
	On bool
	At time.Duration
}

// FakeBuzzer records buzzer transitions.
type FakeBuzzer struct {
	// Clock, if set, stamps each edge. Tests usually share it with a fake sleep.
	Clock func() time.Duration

	Edges    []Edge
	On       bool
	Closed   bool
	SetError error
}

// Set records the transition.
func (b *FakeBuzzer) Set(on bool) error {
	if b.SetError != nil {
		return b.SetError
	}
	var at time.Duration
	if b.Clock != nil {
		at = b.Clock()
	}
	b.On = on
	b.Edges = append(b.Edges, Edge{On: on, At: at})
	return nil
}

// Close turns the buzzer off and marks it closed.
func (b *FakeBuzzer) Close() error {
	b.On = false
	b.Closed = true
	return nil
}

// Pulses returns the on-durations of completed pulses.
func (b *FakeBuzzer) Pulses() []time.Duration {
	var out []time.Duration
	var start time.Duration
	on := false
	for _, e := range b.Edges {
		switch {
		case e.On && !on:
			start = e.At
			on = true
		case !e.On && on:
			out = append(out, e.At-start)
			on = false
		}
	}
	return out
}
