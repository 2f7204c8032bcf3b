package logic

import "time"

// Button debounces one momentary push button and latches press edges until
// they are taken by the control tick.
type Button struct {
	debounce time.Duration

	// Current stable (debounced) level, true = pressed
	stable bool
	// Pending level during debounce
	pending    bool
	hasPending bool
	// Time when pending level was first observed
	pendingSince time.Time
	// Set on a stable released->pressed transition, cleared by Take
	latched bool
}

// NewButton creates a button that starts released.
func NewButton(debounce time.Duration) *Button {
	return &Button{debounce: debounce}
}

// Sample feeds one logical level (true = pressed) observed at now.
func (b *Button) Sample(pressed bool, now time.Time) {
	if pressed == b.stable {
		b.hasPending = false
		return
	}

	if !b.hasPending || b.pending != pressed {
		b.pending = pressed
		b.hasPending = true
		b.pendingSince = now
		if b.debounce > 0 {
			return
		}
	}

	if now.Sub(b.pendingSince) >= b.debounce {
		b.stable = pressed
		b.hasPending = false
		if pressed {
			b.latched = true
		}
	}
}

// Pressed reports the debounced level.
func (b *Button) Pressed() bool {
	return b.stable
}

// Take returns whether a press edge was latched and clears the latch.
func (b *Button) Take() bool {
	p := b.latched
	b.latched = false
	return p
}

// Buttons is the debounced input source for the confirm and back buttons.
type Buttons struct {
	Confirm *Button
	Back    *Button
}

// NewButtons creates both buttons with the same debounce duration.
func NewButtons(debounce time.Duration) *Buttons {
	return &Buttons{
		Confirm: NewButton(debounce),
		Back:    NewButton(debounce),
	}
}

// Sample feeds one reading of both buttons.
func (b *Buttons) Sample(confirm, back bool, now time.Time) {
	b.Confirm.Sample(confirm, now)
	b.Back.Sample(back, now)
}

// Take returns and clears both press latches.
func (b *Buttons) Take() (confirm, back bool) {
	return b.Confirm.Take(), b.Back.Take()
}
