// Package logging builds the zap loggers used across taskheap.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Debug bool

	// Dir, when set, receives errors.log and standard.log as JSON lines.
	Dir string

	// Console receives human readable output. Defaults to stderr because
	// stdout carries MCP traffic. Set Quiet to disable console output.
	Console io.Writer
	Quiet   bool
}

// New returns a logger that tees error-and-above and everything below into
// separate sinks. The cleanup func syncs the logger and closes any log files.
func New(opts Options) (*zap.Logger, func(), error) {
	minLevel := zapcore.InfoLevel
	if opts.Debug {
		minLevel = zapcore.DebugLevel
	}

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= minLevel && lvl < zapcore.ErrorLevel
	})

	var cores []zapcore.Core
	var files []*os.File

	if !opts.Quiet {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		sink := zapcore.Lock(zapcore.AddSync(console))
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores,
			zapcore.NewCore(enc, sink, highPriority),
			zapcore.NewCore(enc.Clone(), sink, lowPriority),
		)
	}

	if dir := strings.TrimSpace(opts.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to create log directory %s", dir)
		}

		errFile, err := openLog(filepath.Join(dir, "errors.log"))
		if err != nil {
			return nil, nil, err
		}
		stdFile, err := openLog(filepath.Join(dir, "standard.log"))
		if err != nil {
			errFile.Close()
			return nil, nil, err
		}
		files = append(files, errFile, stdFile)

		cores = append(cores,
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(errFile), highPriority),
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(stdFile), lowPriority),
		)
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	l := zap.New(zapcore.NewTee(cores...))
	cleanup := func() {
		_ = l.Sync()
		for _, f := range files {
			f.Close()
		}
	}
	return l, cleanup, nil
}

func openLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", path)
	}
	return f, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
