package display

// Fake records rendered frames.
type Fake struct {
	Frames      []Frame
	RenderError error
	Closed      bool
}

// Render records f.
func (f *Fake) Render(fr Frame) error {
	if f.RenderError != nil {
		return f.RenderError
	}
	f.Frames = append(f.Frames, fr)
	return nil
}

// Close marks the fake closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent frame, or a zero frame if none was rendered.
func (f *Fake) Last() Frame {
	if len(f.Frames) == 0 {
		return Frame{}
	}
	return f.Frames[len(f.Frames)-1]
}
