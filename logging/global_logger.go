// Package logging wraps a process-wide zap logger behind printf-style helpers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger provides leveled logging on top of zap
type Logger struct {
	level LogLevel
	base  *zap.Logger
	sugar *zap.SugaredLogger
	file  *os.File
}

var (
	globalLogger *Logger
	loggerMu     sync.RWMutex
	nopLogger    = &Logger{level: LevelError, base: zap.NewNop(), sugar: zap.NewNop().Sugar()}
)

// NewLogger creates a logger. With an empty logFile, human-readable output
// goes to stderr; otherwise JSON lines are appended to the file.
func NewLogger(levelStr string, logFile string) (*Logger, error) {
	if logFile == "" {
		return NewLoggerWithWriter(levelStr, os.Stderr, false), nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
	}

	l := NewLoggerWithWriter(levelStr, file, true)
	l.file = file
	return l, nil
}

// NewLoggerWithWriter creates a logger writing to w
func NewLoggerWithWriter(levelStr string, w io.Writer, jsonFormat bool) *Logger {
	level := ParseLogLevel(levelStr)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if jsonFormat {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level.zapLevel())
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))

	return &Logger{
		level: level,
		base:  base,
		sugar: base.Sugar(),
	}
}

// ParseLogLevel parses a log level string, defaulting to info
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Level returns the configured level
func (l *Logger) Level() LogLevel {
	return l.level
}

// Zap exposes the underlying zap logger
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	switch level {
	case LevelDebug:
		l.sugar.Debugf(format, args...)
	case LevelInfo:
		l.sugar.Infof(format, args...)
	case LevelWarn:
		l.sugar.Warnf(format, args...)
	default:
		l.sugar.Errorf(format, args...)
	}
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// Sync flushes buffered entries and closes the log file, if any
func (l *Logger) Sync() error {
	_ = l.base.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// InitGlobalLogger installs the process-wide logger, replacing any previous one
func InitGlobalLogger(logLevel, logFile string) error {
	l, err := NewLogger(logLevel, logFile)
	if err != nil {
		return err
	}
	SetGlobalLogger(l)
	return nil
}

// SetGlobalLogger installs l as the process-wide logger
func SetGlobalLogger(l *Logger) {
	loggerMu.Lock()
	prev := globalLogger
	globalLogger = l
	loggerMu.Unlock()

	if prev != nil && prev != l {
		_ = prev.Sync()
	}
}

// GetGlobalLogger returns the global logger, or a no-op logger before init
func GetGlobalLogger() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if globalLogger == nil {
		return nopLogger
	}
	return globalLogger
}

// SyncGlobalLogger flushes the global logger
func SyncGlobalLogger() {
	loggerMu.RLock()
	l := globalLogger
	loggerMu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}

func LogInfof(format string, args ...interface{}) {
	GetGlobalLogger().Infof(format, args...)
}

func LogDebugf(format string, args ...interface{}) {
	GetGlobalLogger().Debugf(format, args...)
}

func LogWarnf(format string, args ...interface{}) {
	GetGlobalLogger().Warnf(format, args...)
}

func LogErrorf(format string, args ...interface{}) {
	GetGlobalLogger().Errorf(format, args...)
}
