package logger

import (
	"os"
	"strings"
)

// Logger - общий интерфейс логирования приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New создаёт логгер в указанном формате: json (slog) или console (zerolog).
func New(format, level string) Logger {
	if strings.EqualFold(strings.TrimSpace(format), FormatConsole) {
		return NewZerologLogger(os.Stdout, level)
	}

	return newSlogLogger(os.Stdout, level)
}
