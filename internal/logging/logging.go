// Package logging builds the zap logger used for progress reporting.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for --log-file
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Options configures the logger.
type Options struct {
	Level  string    // debug, info, warn, error (default info)
	Format string    // console or json (default console)
	File   string    // optional rotating log file, in addition to Output
	Output io.Writer // defaults to os.Stderr
}

// New creates a zap logger writing to Output and, when File is set, to a
// rotating file.
func New(opts Options) (*zap.Logger, error) {
	level := opts.Level
	if level == "" {
		level = "info"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var encCfg zapcore.EncoderConfig
	var newEncoder func(zapcore.EncoderConfig) zapcore.Encoder
	switch opts.Format {
	case "console", "":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		newEncoder = zapcore.NewConsoleEncoder
	case "json":
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		newEncoder = zapcore.NewJSONEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(encCfg), zapcore.Lock(zapcore.AddSync(out)), zapLevel),
	}

	if opts.File != "" {
		// Files always get JSON so they stay machine-readable.
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileCfg),
			zapcore.AddSync(FileWriter(opts.File)),
			zapLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// FileWriter returns a size-rotated writer for path.
func FileWriter(path string) io.WriteCloser {
	return &lj.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
	}
}

// LevelFor maps the verbose/quiet switches onto a level name. An explicit
// level wins.
func LevelFor(explicit string, verbose, quiet bool) string {
	switch {
	case explicit != "":
		return explicit
	case verbose:
		return "debug"
	case quiet:
		return "error"
	default:
		return "info"
	}
}
