package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Options controls how the process logger is built
type Options struct {
	Level  string
	Format string
	Output string
}

// New creates the process logger. The returned closer releases the log file
// when Output names one; it is a no-op for stdout and stderr.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out, closer, err := openOutput(opts.Output)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var w io.Writer = out
	switch strings.ToLower(opts.Format) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: out}
	default:
		closer.Close()
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("unknown log format: %s", opts.Format)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nopCloser{}, nil
	case "stderr":
		return os.Stderr, nopCloser{}, nil
	}

	// Ensure logs directory exists
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
