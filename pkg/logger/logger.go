// Package logger is the thin zerolog front end shared by every layer of
// the service. Call sites log through the package functions with an
// optional field map; request handlers log through a per-request Logger
// that carries the request fields.
package logger

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the level and output format at startup.
type Config struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // "console" for local runs, anything else means JSON
	EnableColor bool
}

// Logger is a zerolog.Logger with fields bound, typically per request.
type Logger struct {
	zl zerolog.Logger
}

var global *Logger

// Initialize configures the process-wide logger. Call it once from main
// before anything logs; it is not safe against concurrent logging.
func Initialize(cfg Config) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Format == "console" {
		zl = zl.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.EnableColor,
		})
	}

	global = &Logger{zl: zl}
	log.Logger = zl
}

// Get returns the process-wide logger. Before main configures one, mostly
// in tests, it falls back to a console logger at info level.
func Get() *Logger {
	if global == nil {
		Initialize(Config{Level: "info", Format: "console", EnableColor: true})
	}
	return global
}

// WithContext binds extra fields onto a copy of the logger.
func (l *Logger) WithContext(fields map[string]interface{}) *Logger {
	ctx := l.zl.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zl: ctx.Logger()}
}

// WithContext binds extra fields onto a copy of the global logger.
func WithContext(fields map[string]interface{}) *Logger {
	return Get().WithContext(fields)
}

// emit stamps the call site and the optional field map onto the event.
// It must be called directly by an exported function so the caller sits
// exactly two frames up.
func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if pc, file, line, ok := runtime.Caller(2); ok {
		e = e.Str("caller", zerolog.CallerMarshalFunc(pc, file, line))
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			e = e.Interface(k, v)
		}
	}
	e.Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, err error, fields ...map[string]interface{}) {
	emit(l.zl.Error().Err(err), msg, fields)
}

// Fatal logs the message and exits the process.
func (l *Logger) Fatal(msg string, err error, fields ...map[string]interface{}) {
	emit(l.zl.Fatal().Err(err), msg, fields)
}

// Debug logs at debug level through the global logger.
func Debug(msg string, fields ...map[string]interface{}) {
	emit(Get().zl.Debug(), msg, fields)
}

// Info logs at info level through the global logger.
func Info(msg string, fields ...map[string]interface{}) {
	emit(Get().zl.Info(), msg, fields)
}

// Warn logs at warn level through the global logger.
func Warn(msg string, fields ...map[string]interface{}) {
	emit(Get().zl.Warn(), msg, fields)
}

// Error logs the error and message through the global logger.
func Error(msg string, err error, fields ...map[string]interface{}) {
	emit(Get().zl.Error().Err(err), msg, fields)
}

// Fatal logs through the global logger and exits the process.
func Fatal(msg string, err error, fields ...map[string]interface{}) {
	emit(Get().zl.Fatal().Err(err), msg, fields)
}
