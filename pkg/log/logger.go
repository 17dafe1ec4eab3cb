// Package log provides structured logging for surrogo on top of zerolog.
//
// Two styles are supported. Application code that wants the full zerolog API
// calls GetLogger and builds events directly:
//
//	log.GetLogger().Warn().Err(err).Str("phase", "fit").Msg("retrying")
//
// Models use the key/value Logger interface, which keeps call sites short and
// lets estimators attach their own context once:
//
//	logger := log.GetLoggerWithName("surrogates").With(log.ModelNameKey, "GaussianProcessSurrogate")
//	logger.Info("Training started", log.SamplesKey, n)
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a key/value structured logger.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	// With returns a child logger that always carries the given fields.
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out named loggers sharing one configuration.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

var (
	mu       sync.RWMutex
	base     = newBase(os.Stderr, zerolog.InfoLevel)
	provider LoggerProvider
)

func newBase(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ToLogLevel parses a level name. Unknown names map to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogger configures the package-level logger to write to stderr.
func SetupLogger(level string) {
	SetupLoggerWithWriter(os.Stderr, level)
}

// SetupLoggerWithWriter configures the package-level logger to write to w.
func SetupLoggerWithWriter(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	zerolog.TimeFieldFormat = time.RFC3339Nano
	base = newBase(w, ToLogLevel(level))
	provider = &zerologProvider{root: base}
}

// GetLogger returns the package-level zerolog logger.
func GetLogger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// GetLoggerWithName returns a key/value logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return currentProvider().GetLoggerWithName(name)
}

// LogError logs err at error level with its type attached.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	GetLogger().Error().
		Err(err).
		Str(ErrorTypeKey, fmt.Sprintf("%T", err)).
		Msg(msg)
}

func currentProvider() LoggerProvider {
	mu.RLock()
	p := provider
	b := base
	mu.RUnlock()
	if p != nil {
		return p
	}
	return &zerologProvider{root: b}
}

// NewZerologProvider creates a provider writing to stderr at the given level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	return &zerologProvider{root: newBase(os.Stderr, level)}
}

// NewZerologProviderWithWriter creates a provider writing to w.
func NewZerologProviderWithWriter(w io.Writer, level zerolog.Level) LoggerProvider {
	return &zerologProvider{root: newBase(w, level)}
}

type zerologProvider struct {
	root zerolog.Logger
}

func (p *zerologProvider) GetLogger() Logger {
	return &zerologLogger{zl: p.root}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.root.With().Str(ComponentKey, name).Logger()}
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(keyString(fields[i]), fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

// emit attaches key/value pairs to the event. An error in the first position
// without a key is attached with Err.
func emit(ev *zerolog.Event, msg string, fields []interface{}) {
	if ev == nil {
		return
	}
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := keyString(fields[i])
		switch v := fields[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

func keyString(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
