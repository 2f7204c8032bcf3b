package display

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLCD struct {
	clears int
	x, y   uint8
	screen map[uint8]string
}

func (f *fakeLCD) ClearDisplay() {
	f.clears++
	f.screen = map[uint8]string{}
}

func (f *fakeLCD) SetCursor(x, y uint8) { f.x, f.y = x, y }

func (f *fakeLCD) Print(data []byte) { f.screen[f.y] += string(data) }

func TestLCDRenderTruncatesAndScrolls(t *testing.T) {
	dev := &fakeLCD{}
	l := newLCD(dev, 8, 2)

	require.NoError(t, l.Render(Frame{
		Title:  "Enclosure 1 Menu:",
		Lines:  []string{"Set Temp", "Toggle Mode"},
		Menu:   true,
		Cursor: 1,
	}))
	assert.Equal(t, "Enclosur", dev.screen[0])
	assert.Equal(t, "> Toggle", dev.screen[1])
	assert.Equal(t, 1, dev.clears)
}

func TestLCDSkipsUnchangedFrames(t *testing.T) {
	dev := &fakeLCD{}
	l := newLCD(dev, 16, 2)
	f := Frame{Title: "Set ENC1 Temp:", Lines: []string{"90 F"}}

	require.NoError(t, l.Render(f))
	require.NoError(t, l.Render(f))
	assert.Equal(t, 1, dev.clears)

	require.NoError(t, l.Render(Frame{Title: "Set ENC1 Temp:", Lines: []string{"91 F"}}))
	assert.Equal(t, 2, dev.clears)
	assert.Equal(t, "91 F", dev.screen[1])
}

type bufCloser struct {
	bytes.Buffer
	closed bool
	err    error
}

func (b *bufCloser) Write(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	return b.Buffer.Write(p)
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

func TestSerialRender(t *testing.T) {
	port := &bufCloser{}
	s := newSerial(port)

	f := Frame{Title: "ALL TEMPS:", Lines: []string{"Fil 1: 70.0 F"}}
	require.NoError(t, s.Render(f))
	assert.Equal(t, clearScreen+"ALL TEMPS:\r\nFil 1: 70.0 F\r\n", port.String())

	require.NoError(t, s.Render(f))
	assert.Equal(t, 1, strings.Count(port.String(), clearScreen), "unchanged frame is not resent")

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestSerialWriteError(t *testing.T) {
	s := newSerial(&bufCloser{err: errors.New("unplugged")})
	err := s.Render(Frame{Title: "x"})
	assert.ErrorContains(t, err, "unplugged")
}

func TestLogRenderer(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewLog(log)

	require.NoError(t, l.Render(Frame{Title: "MAIN MENU:"}))
	require.NoError(t, l.Render(Frame{Title: "MAIN MENU:"}))
	assert.Equal(t, 1, strings.Count(buf.String(), "msg=frame"))
}

func TestFakeRecordsFrames(t *testing.T) {
	f := &Fake{}
	assert.Equal(t, Frame{}, f.Last())

	require.NoError(t, f.Render(Frame{Title: "a"}))
	require.NoError(t, f.Render(Frame{Title: "b"}))
	assert.Len(t, f.Frames, 2)
	assert.Equal(t, "b", f.Last().Title)

	f.RenderError = errors.New("boom")
	assert.Error(t, f.Render(Frame{}))
}
