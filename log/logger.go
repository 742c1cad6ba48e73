// Package log provides structured logging with run context.
//
// Entries go to stderr as JSON by default, or in zap's console layout for
// local debugging. Human progress output does not go through this package;
// the runtime console printer writes it to stdout.
package log

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// Level is a logging threshold.
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// Format selects the entry layout.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

// ParseFormat parses json or console. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatConsole:
		return f, nil
	}
	return FormatJSON, fmt.Errorf("unknown log format %q (want json or console)", s)
}

// Logger writes leveled entries carrying run_id. Fields passed to the
// level methods are nested under "fields"; fields given to With are
// promoted to top-level keys.
type Logger struct {
	zap    *zap.Logger
	level  zap.AtomicLevel
	format Format
}

// NewLogger creates a logger for a run writing to os.Stderr.
func NewLogger(runMeta *types.RunMeta, level Level, format Format) *Logger {
	return newLoggerWithWriter(runMeta, level, format, os.Stderr)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop(), level: zap.NewAtomicLevelAt(ErrorLevel), format: FormatJSON}
}

func newEncoder(format Format) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	if format == FormatConsole {
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func newLoggerWithWriter(runMeta *types.RunMeta, level Level, format Format, w io.Writer) *Logger {
	atom := zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(newEncoder(format), zapcore.AddSync(w), atom)
	z := zap.New(core)
	if runMeta != nil {
		z = z.With(zap.String("run_id", runMeta.RunID))
	}
	return &Logger{zap: z, level: atom, format: format}
}

// WithOutput returns a logger with the same fields, level and format
// writing to w.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	core := zapcore.NewCore(newEncoder(l.format), zapcore.AddSync(w), l.level)
	return &Logger{
		zap:    l.zap.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core })),
		level:  l.level,
		format: l.format,
	}
}

// SetLevel changes the threshold of l and every logger derived from it.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level)
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{zap: l.zap.With(zapFields(fields)...), level: l.level, format: l.format}
}

func (l *Logger) Debug(message string, fields map[string]any) { l.log(DebugLevel, message, fields) }
func (l *Logger) Info(message string, fields map[string]any)  { l.log(InfoLevel, message, fields) }
func (l *Logger) Warn(message string, fields map[string]any)  { l.log(WarnLevel, message, fields) }
func (l *Logger) Error(message string, fields map[string]any) { l.log(ErrorLevel, message, fields) }

func (l *Logger) log(level Level, message string, fields map[string]any) {
	ce := l.zap.Check(level, message)
	if ce == nil {
		return
	}
	if len(fields) == 0 {
		ce.Write()
		return
	}
	ce.Write(zap.Object("fields", fieldMap(fields)))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// fieldMap encodes in key order so entries diff cleanly.
type fieldMap map[string]any

func (m fieldMap) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, f := range zapFields(m) {
		f.AddTo(enc)
	}
	return nil
}

func zapFields(m map[string]any) []zap.Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]zap.Field, len(keys))
	for i, k := range keys {
		out[i] = zap.Any(k, m[k])
	}
	return out
}
