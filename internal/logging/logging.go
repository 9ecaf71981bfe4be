package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a sugared zap logger. Call sites use the Infow/Debugw key-value
// style.
type Logger struct {
	*zap.SugaredLogger
}

// creates console logger, debug level when verbose
func NewLogger(verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return NewLoggerAt(level)
}

// NewLoggerAt builds a console logger at the given level.
func NewLoggerAt(level zapcore.Level) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = level > zapcore.DebugLevel
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if level > zapcore.DebugLevel {
		cfg.DisableCaller = true
		cfg.EncoderConfig.TimeKey = ""
	}

	l, err := cfg.Build()
	if err != nil {
		return Nop()
	}
	return &Logger{l.Sugar()}
}

// ParseLevel maps a level name such as "debug" or "warn" to a zap level,
// falling back to info.
func ParseLevel(name string) zapcore.Level {
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// discards everything
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
