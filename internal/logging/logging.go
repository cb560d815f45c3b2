// Package logging builds the process-wide structured logger. It mirrors
// the console+rotating-file tee used elsewhere in the ecosystem for CLI
// tools that run unattended (CI jar deposits) as well as interactively.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Options configures New.
type Options struct {
	Level string // debug|info|warn|error, default info
	File  string // optional rotating log file path; console logging always happens
}

// New builds a *zap.Logger writing human-readable console output to
// stderr and, if Options.File is set, JSON lines to a rotated file.
func New(opts Options) *zap.Logger {
	level, ok := levels[strings.ToLower(opts.Level)]
	if !ok {
		level = zapcore.InfoLevel
	}

	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderCfg),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}
	if opts.File != "" {
		fileEncoderCfg := zap.NewProductionEncoderConfig()
		fileEncoderCfg.TimeKey = "time"
		fileEncoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderCfg), fileWriter, level))
	}

	return zap.New(zapcore.NewTee(cores...))
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
