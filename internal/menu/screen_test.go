package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "main", State{Screen: MainMenu}.String())
	assert.Equal(t, "zone-timer/2", State{Screen: ZoneTimer, Index: 1}.String())
	assert.Equal(t, "filament/1", State{Screen: FilamentMenu}.String())
	assert.Equal(t, "screen(99)", Screen(99).String())
}

func TestEveryScreenHasAFrame(t *testing.T) {
	for s := range screenNames {
		r := newRig(t)
		r.m.state = State{Screen: s}
		f := r.m.Frame(r.now)
		assert.NotEqual(t, s.String(), f.Title, "screen %s falls through to the default frame", s)
	}
}
