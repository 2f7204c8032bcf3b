package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func menuFrame(cursor int) Frame {
	return Frame{
		Title:  "MAIN MENU:",
		Lines:  []string{"a", "b", "c", "d", "e"},
		Menu:   true,
		Cursor: cursor,
	}
}

func TestRowsMarksCursor(t *testing.T) {
	rows := menuFrame(1).Rows()
	assert.Equal(t, []string{"MAIN MENU:", "  a", "> b", "  c", "  d", "  e"}, rows)
}

func TestRowsPlainFrame(t *testing.T) {
	f := Frame{Title: "ALL TEMPS:", Banner: "HIGH HUMIDITY!", Lines: []string{"Fil 1: 70.0 F"}}
	assert.Equal(t, []string{"ALL TEMPS:", "HIGH HUMIDITY!", "Fil 1: 70.0 F"}, f.Rows())
}

func TestRowsBlank(t *testing.T) {
	assert.Empty(t, Frame{Title: "x", Blank: true}.Rows())
}

func TestWindowScrollsToCursor(t *testing.T) {
	tests := []struct {
		cursor int
		want   []string
	}{
		{0, []string{"MAIN MENU:", "> a", "  b", "  c"}},
		{2, []string{"MAIN MENU:", "  a", "  b", "> c"}},
		{3, []string{"MAIN MENU:", "  b", "  c", "> d"}},
		{4, []string{"MAIN MENU:", "  c", "  d", "> e"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, menuFrame(tt.cursor).Window(4), "cursor %d", tt.cursor)
	}
}

func TestWindowTinyDisplay(t *testing.T) {
	f := Frame{Title: "t", Banner: "b", Lines: []string{"x"}}
	assert.Equal(t, []string{"t"}, f.Window(1))
	assert.Equal(t, []string{"t", "b", "x"}, f.Window(8))
}

func TestFrameEqual(t *testing.T) {
	assert.True(t, menuFrame(1).Equal(menuFrame(1)))
	assert.False(t, menuFrame(1).Equal(menuFrame(2)))
	assert.False(t, Frame{Blank: true}.Equal(Frame{}))
}
