package logic

// DetentSteps is the number of raw quadrature transitions per physical click.
const DetentSteps = 4

// EncoderState is the decoder state after one poll.
type EncoderState struct {
	RawPinBits         uint8 // pin1 | pin2<<1 as sampled by this poll
	PreviousRawPinBits uint8 // pin bits the transition was measured from
	Position           int64
}

// Decoder converts raw quadrature pin levels into a relative position.
// The zero value is ready to use.
type Decoder struct {
	prev     uint8
	position int64
}

// forward[old] is the pin state that advances the position by one;
// backward[old] is the one that moves it back. Anything else is a miss.
var (
	forward  = [4]uint8{1, 3, 0, 2}
	backward = [4]uint8{2, 0, 3, 1}
)

// Decode samples the two encoder pins and updates the position.
// Invalid or repeated transitions leave the position unchanged, but the
// previous state always tracks the pins.
func (d *Decoder) Decode(pin1, pin2 bool) EncoderState {
	var next uint8
	if pin1 {
		next |= 1
	}
	if pin2 {
		next |= 2
	}

	old := d.prev
	switch next {
	case forward[old]:
		d.position++
	case backward[old]:
		d.position--
	}
	d.prev = next

	return EncoderState{
		RawPinBits:         next,
		PreviousRawPinBits: old,
		Position:           d.position,
	}
}

// Position returns the free-running raw transition counter.
func (d *Decoder) Position() int64 {
	return d.position
}

// Detents returns the position in physical clicks, rounded toward negative
// infinity so the cursor moves uniformly across zero.
func (d *Decoder) Detents() int64 {
	return floorDiv(d.position, DetentSteps)
}

// Write overwrites the raw position counter.
func (d *Decoder) Write(p int64) {
	d.position = p
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod returns a modulo n in the range [0, n).
func Mod(a int64, n int) int {
	m := a % int64(n)
	if m < 0 {
		m += int64(n)
	}
	return int(m)
}
