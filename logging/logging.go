// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006/01/02 15:04:05.000"

// Rotation defaults for the log file
const (
	defaultMaxSizeMB  = 10
	defaultMaxAgeDays = 7
	defaultMaxBackups = 3
)

// Config selects level, format and an optional rotated log file
type Config struct {
	Level string
	File  string
	JSON  bool
}

// New returns a logger writing to stderr and, when cfg.File is set, to a
// rotated file. Stdout is left alone so the stdio MCP transport stays clean.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(cfg.JSON, true), zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		writer := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    defaultMaxSizeMB,
			MaxAge:     defaultMaxAgeDays,
			MaxBackups: defaultMaxBackups,
			LocalTime:  true,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(newEncoder(cfg.JSON, false), zapcore.AddSync(writer), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.PanicLevel)), nil
}

func newEncoder(json, color bool) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	if json {
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.ConsoleSeparator = " "
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encCfg)
}

// Since is a zap field with the elapsed time in milliseconds
func Since(start time.Time) zap.Field {
	return zap.Int64("elapsed_ms", time.Since(start).Milliseconds())
}
