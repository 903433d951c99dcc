package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger пишет человекочитаемые логи, используется для локальной разработки.
type ZerologLogger struct {
	log zerolog.Logger
}

func NewZerologLogger(w io.Writer, level string) *ZerologLogger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}

	return &ZerologLogger{
		log: zerolog.New(out).Level(toZerologLevel(parseLevel(level))).With().Timestamp().Logger(),
	}
}

func toZerologLevel(lvl slog.Level) zerolog.Level {
	switch lvl {
	case slog.LevelDebug:
		return zerolog.DebugLevel
	case slog.LevelWarn:
		return zerolog.WarnLevel
	case slog.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(err error, format string, args ...any) {
	l.log.Error().Err(err).Msgf(format, args...)
}
