package surveygo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with surveygo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSurvey adds a survey name field to the logger.
func (l *Logger) WithSurvey(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("survey", name),
	}
}

// LogColumnsIndex logs the construction of a table's columns index.
func (l *Logger) LogColumnsIndex(table string, columns int) {
	l.Info("building columns index",
		"table", table,
		"columns", columns,
	)
}

// LogIdentRename logs the substitution of a year-suffixed ident column.
func (l *Logger) LogIdentRename(column string) {
	l.Info("column replaced by ident",
		"column", column,
	)
}

// LogUnknownTable logs a table key absent from the survey's table mapping.
// Non-fatal: the table may still resolve directly in the store.
func (l *Logger) LogUnknownTable(table string) {
	l.Error("table not found in survey tables",
		"table", table,
	)
}

// LogStorePath logs the derivation of a survey's store path.
func (l *Logger) LogStorePath(path string) {
	l.Info("derived store path",
		"path", path,
	)
}

// LogConvert logs a source file conversion hand-off.
func (l *Logger) LogConvert(table, dataFile string, err error) {
	if err != nil {
		l.Error("conversion failed",
			"table", table,
			"file", dataFile,
			"error", err,
		)
	} else {
		l.Debug("conversion completed",
			"table", table,
			"file", dataFile,
		)
	}
}
