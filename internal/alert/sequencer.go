package alert

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sweeney/enclosure-controller/internal/display"
	"github.com/sweeney/enclosure-controller/internal/gpio"
	"github.com/sweeney/enclosure-controller/internal/logic"
)

// ErrBusy is returned when a pattern is fired while another one holds the buzzer.
var ErrBusy = errors.New("alert: buzzer busy")

// Sequencer drives the buzzer through patterns. Fire blocks for the whole
// pattern; there is no queue.
type Sequencer struct {
	buzzer  gpio.Buzzer
	display display.Renderer
	sleep   func(time.Duration)
	log     *slog.Logger
	busy    atomic.Bool
}

// NewSequencer creates a sequencer. A nil sleep uses time.Sleep and a nil
// logger uses slog.Default(). The display may be nil when no pattern flashes.
func NewSequencer(buzzer gpio.Buzzer, disp display.Renderer, sleep func(time.Duration), log *slog.Logger) *Sequencer {
	if sleep == nil {
		sleep = time.Sleep
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sequencer{buzzer: buzzer, display: disp, sleep: sleep, log: log}
}

// Busy reports whether a pattern is in flight.
func (s *Sequencer) Busy() bool {
	return s.busy.Load()
}

// Fire runs p to completion.
func (s *Sequencer) Fire(p Pattern) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.log.Info("alert", "pattern", p.Name, "duration", p.Duration())

	if p.Flash != nil && s.display != nil {
		for i := 0; i < p.Flash.Count; i++ {
			if err := s.display.Render(p.Flash.Frame); err != nil {
				s.log.Warn("alert flash failed", "pattern", p.Name, "error", err)
			}
			s.sleep(p.Flash.On)
			if err := s.display.Render(display.Frame{Blank: true}); err != nil {
				s.log.Warn("alert flash failed", "pattern", p.Name, "error", err)
			}
			s.sleep(p.Flash.Off)
		}
	}

	for _, st := range p.Steps {
		if st.On > 0 {
			if err := s.buzzer.Set(true); err != nil {
				s.buzzer.Set(false)
				return fmt.Errorf("fire %s: %w", p.Name, err)
			}
			s.sleep(st.On)
			if err := s.buzzer.Set(false); err != nil {
				return fmt.Errorf("fire %s: %w", p.Name, err)
			}
		}
		if st.Off > 0 {
			s.sleep(st.Off)
		}
	}
	return nil
}

// FireAlert runs the pattern for a kernel alert. Unknown alerts are logged
// and ignored.
func (s *Sequencer) FireAlert(a logic.Alert) error {
	p, ok := PatternFor(a)
	if !ok {
		s.log.Warn("unknown alert", "alert", string(a))
		return nil
	}
	return s.Fire(p)
}
