// Package logging builds the zap loggers used across the service.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output targets.
const (
	OutputStdout  = "stdout"
	OutputStderr  = "stderr"
	OutputFile    = "file"
	OutputDiscard = "discard"
)

// Config describes where and how to log.
type Config struct {
	Output    string `yaml:"output"` // stdout | stderr | file | discard
	Dir       string `yaml:"dir"`
	Name      string `yaml:"name"`
	Level     string `yaml:"level"`
	Console   bool   `yaml:"console"` // human-readable encoder instead of JSON
	AddCaller bool   `yaml:"add_caller"`
	MaxSize   int    `yaml:"max_size"`   // MB per file
	MaxAge    int    `yaml:"max_age"`    // days
	MaxBackup int    `yaml:"max_backup"` // rotated files kept
}

// DefaultConfig logs JSON at info level to stdout.
func DefaultConfig() Config {
	return Config{
		Output:    OutputStdout,
		Dir:       "./logs",
		Name:      "recon.log",
		Level:     "info",
		AddCaller: true,
		MaxSize:   500,
		MaxAge:    7,
		MaxBackup: 10,
	}
}

// New builds a logger from c.
func New(c Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", c.Level, err)
		}
	}

	var ws zapcore.WriteSyncer
	switch c.Output {
	case "", OutputStdout:
		ws = zapcore.Lock(os.Stdout)
	case OutputStderr:
		ws = zapcore.Lock(os.Stderr)
	case OutputFile:
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(c.Dir, c.Name),
			MaxSize:    c.MaxSize,
			MaxAge:     c.MaxAge,
			MaxBackups: c.MaxBackup,
			LocalTime:  true,
		})
	case OutputDiscard:
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown log output %q", c.Output)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if c.Console {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.DPanicLevel)}
	if c.AddCaller {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(zapcore.NewCore(enc, ws, level), opts...), nil
}

// Must is New that panics on error. Intended for main packages.
func Must(c Config) *zap.Logger {
	l, err := New(c)
	if err != nil {
		panic(err)
	}
	return l
}
