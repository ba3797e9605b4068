package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	var attrs []slog.Attr
	if len(fields) > 0 {
		attrs = make([]slog.Attr, len(fields))
		for i, f := range fields {
			attrs[i] = slog.Any(f.Key, f.Value)
		}
	}
	l.slog.LogAttrs(context.Background(), toSlogLevel(level), msg, attrs...)
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	os.Exit(1)
}

func (l *BaseLogger) logf(level Level, format string, args []interface{}) {
	if level < l.level {
		return
	}
	l.log(level, fmt.Sprintf(format, args...), nil)
}

func (l *BaseLogger) Debugf(format string, args ...interface{}) { l.logf(DebugLevel, format, args) }
func (l *BaseLogger) Infof(format string, args ...interface{})  { l.logf(InfoLevel, format, args) }
func (l *BaseLogger) Warnf(format string, args ...interface{})  { l.logf(WarnLevel, format, args) }
func (l *BaseLogger) Errorf(format string, args ...interface{}) { l.logf(ErrorLevel, format, args) }

func (l *BaseLogger) Fatalf(format string, args ...interface{}) {
	l.logf(FatalLevel, format, args)
	os.Exit(1)
}

func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	attrs := make([]any, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	nl := *l
	nl.slog = l.slog.With(attrs...)
	return &nl
}

func (l *BaseLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.With(Err(err))
}

func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel only affects this logger, not children already derived from it.
func (l *BaseLogger) SetLevel(level Level) { l.level = level }

func (l *BaseLogger) GetLevel() Level { return l.level }

// ParseLevel maps a level name (any case, "warning" allowed) to a Level.
// The empty string is InfoLevel.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel, nil
	case "info", "INFO", "":
		return InfoLevel, nil
	case "warn", "WARN", "warning", "WARNING":
		return WarnLevel, nil
	case "error", "ERROR":
		return ErrorLevel, nil
	case "fatal", "FATAL":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// NewNopLogger discards everything.
func NewNopLogger() Logger {
	return NewLogger(WithLevel(FatalLevel+1), WithOutput(&NullOutput{}))
}
