package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/enclosure-controller/internal/display"
	"github.com/sweeney/enclosure-controller/internal/gpio"
	"github.com/sweeney/enclosure-controller/internal/logic"
)

type clock struct{ now time.Duration }

func (c *clock) sleep(d time.Duration) { c.now += d }
func (c *clock) read() time.Duration   { return c.now }

func newTestSequencer() (*Sequencer, *gpio.FakeBuzzer, *display.Fake, *clock) {
	c := &clock{}
	b := &gpio.FakeBuzzer{Clock: c.read}
	d := &display.Fake{}
	return NewSequencer(b, d, c.sleep, nil), b, d, c
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestPushPattern(t *testing.T) {
	s, b, _, c := newTestSequencer()
	require.NoError(t, s.Fire(Push))
	assert.Equal(t, []time.Duration{ms(20)}, b.Pulses())
	assert.Equal(t, ms(20), c.now)
	assert.False(t, b.On)
}

func TestOverheatPattern(t *testing.T) {
	s, b, d, c := newTestSequencer()
	require.NoError(t, s.Fire(Overheat))

	require.Len(t, d.Frames, 6)
	for i, f := range d.Frames {
		if i%2 == 0 {
			assert.Equal(t, "!!! OVERHEAT !!!", f.Title)
		} else {
			assert.True(t, f.Blank)
		}
	}

	pulses := b.Pulses()
	require.Len(t, pulses, 10)
	for _, p := range pulses {
		assert.Equal(t, ms(300), p)
	}
	// Buzzer starts only after the flash sequence.
	assert.Equal(t, 3*ms(800), b.Edges[0].At)
	assert.Equal(t, 3*ms(800)+10*ms(500), c.now)
	assert.Equal(t, c.now, Overheat.Duration())
}

func TestFinalCountdownPattern(t *testing.T) {
	s, b, _, c := newTestSequencer()
	require.NoError(t, s.Fire(FinalCountdown))

	assert.Equal(t, []time.Duration{ms(150), ms(150), ms(150), ms(150), time.Second}, b.Pulses())
	last := b.Edges[len(b.Edges)-2]
	require.True(t, last.On)
	assert.Equal(t, 4*ms(300)+ms(500), last.At, "long beep follows a 500 ms pause")
	assert.Equal(t, 4*ms(300)+ms(500)+time.Second, c.now)
}

func TestFiveMinutesPattern(t *testing.T) {
	s, b, _, _ := newTestSequencer()
	require.NoError(t, s.Fire(FiveMinutes))
	assert.Equal(t, []time.Duration{ms(500)}, b.Pulses())
}

func TestFireWhileBusy(t *testing.T) {
	c := &clock{}
	b := &gpio.FakeBuzzer{Clock: c.read}
	var s *Sequencer
	var nested error
	s = NewSequencer(b, nil, func(d time.Duration) {
		c.sleep(d)
		if nested == nil {
			nested = s.Fire(Push)
		}
	}, nil)

	require.NoError(t, s.Fire(FiveMinutes))
	assert.ErrorIs(t, nested, ErrBusy)
	assert.False(t, s.Busy())
	assert.Len(t, b.Pulses(), 1)
}

func TestFireBuzzerError(t *testing.T) {
	b := &gpio.FakeBuzzer{SetError: errors.New("line gone")}
	s := NewSequencer(b, nil, func(time.Duration) {}, nil)
	err := s.Fire(Push)
	assert.ErrorContains(t, err, "line gone")
	assert.False(t, s.Busy(), "busy flag released after failure")
}

func TestPatternFor(t *testing.T) {
	for _, a := range []logic.Alert{logic.AlertPush, logic.AlertOverheat, logic.AlertFiveMinutes, logic.AlertFinalCountdown} {
		p, ok := PatternFor(a)
		require.True(t, ok, string(a))
		assert.Equal(t, string(a), p.Name)
	}
	_, ok := PatternFor("siren")
	assert.False(t, ok)
}

func TestFireAlertUnknownIgnored(t *testing.T) {
	s, b, _, _ := newTestSequencer()
	assert.NoError(t, s.FireAlert("siren"))
	assert.Empty(t, b.Edges)
}
