package display

import "log/slog"

// Log renders frames to a structured logger at debug level. It is the
// display of a headless install.
type Log struct {
	log   *slog.Logger
	last  Frame
	drawn bool
}

// NewLog creates a log renderer. A nil logger uses slog.Default().
func NewLog(log *slog.Logger) *Log {
	if log == nil {
		log = slog.Default()
	}
	return &Log{log: log}
}

// Render logs f if it differs from the previous frame.
func (l *Log) Render(f Frame) error {
	if l.drawn && f.Equal(l.last) {
		return nil
	}
	l.log.Debug("frame", "title", f.Title, "rows", f.Rows())
	l.last = f
	l.drawn = true
	return nil
}

// Close is a no-op.
func (l *Log) Close() error {
	return nil
}
