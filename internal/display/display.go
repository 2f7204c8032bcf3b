// Package display composes menu screens into frames and flushes them to a
// character device.
package display

import "strings"

// Frame is a fully composed screen. Renderers draw it as a whole.
type Frame struct {
	Title  string
	Banner string
	Lines  []string
	// Menu frames mark Lines[Cursor] as the highlighted item.
	Menu   bool
	Cursor int
	// Blank clears the screen, used for flashing sequences.
	Blank  bool
}

// Renderer accepts a composed frame and flushes it.
type Renderer interface {
	Render(f Frame) error
	Close() error
}

// Rows returns the frame as text rows: title, banner, then the lines with
// "> " marking the cursor.
func (f Frame) Rows() []string {
	if f.Blank {
		return nil
	}
	rows := make([]string, 0, len(f.Lines)+2)
	rows = append(rows, f.header()...)
	return append(rows, f.body(0, len(f.Lines))...)
}

// Window returns at most height rows, keeping the header and scrolling the
// body so the cursor stays visible.
func (f Frame) Window(height int) []string {
	if f.Blank {
		return nil
	}
	header := f.header()
	if height <= len(header) {
		return header[:max(height, 0)]
	}
	room := height - len(header)
	start := 0
	if f.Menu && f.Cursor >= room {
		start = f.Cursor - room + 1
	}
	end := min(start+room, len(f.Lines))
	return append(header, f.body(start, end)...)
}

// Equal reports whether two frames draw the same rows.
func (f Frame) Equal(o Frame) bool {
	if f.Blank != o.Blank {
		return false
	}
	return strings.Join(f.Rows(), "\n") == strings.Join(o.Rows(), "\n")
}

func (f Frame) header() []string {
	h := []string{f.Title}
	if f.Banner != "" {
		h = append(h, f.Banner)
	}
	return h
}

func (f Frame) body(start, end int) []string {
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := f.Lines[i]
		if f.Menu {
			if i == f.Cursor {
				line = "> " + line
			} else {
				line = "  " + line
			}
		}
		out = append(out, line)
	}
	return out
}
