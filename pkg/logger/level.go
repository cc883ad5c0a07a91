package logger

import (
	"fmt"
	"log/slog"
)

const (
	LevelPanic = slog.Level(14)
	LevelFatal = slog.Level(16)
)

// levelAttrReplacer renders the levels above slog's built-ins, which
// would otherwise print as offsets from ERROR.
func levelAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 || attr.Key != slog.LevelKey {
		return attr
	}
	l, ok := attr.Value.Any().(slog.Level)
	if !ok || l < LevelPanic {
		return attr
	}

	name, base := "PANIC", LevelPanic
	if l >= LevelFatal {
		name, base = "FATAL", LevelFatal
	}
	if delta := l - base; delta != 0 {
		name = fmt.Sprintf("%s%+d", name, delta)
	}
	return slog.Attr{Key: attr.Key, Value: slog.StringValue(name)}
}
