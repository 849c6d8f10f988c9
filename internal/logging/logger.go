package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"fanlog/pkg/fanlog"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Output receives formatted lines. Defaults to stderr.
	Output io.Writer
	// Development adds source locations regardless of level.
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opts.Level)
	handler, err := NewHandler(out, opts.Format, level, opts.addSource(level))
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

// OpenMirror opens path for appending and returns a JSON handler writing to
// it at the level opts describes. The caller closes the file once the
// logger is no longer used.
func OpenMirror(path string, opts Options) (slog.Handler, io.Closer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil, errors.New("log mirror: path is required")
	}
	if err := ensureLogDir(trimmed); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log file %s", trimmed)
	}
	level := ParseLevel(opts.Level)
	return newJSONHandler(file, level, opts.addSource(level)), file, nil
}

func (opts Options) addSource(level slog.Level) bool {
	return opts.Development || level <= slog.LevelDebug
}

// NewHandler builds a console or JSON handler writing to w. An empty format
// means console.
func NewHandler(w io.Writer, format string, level slog.Leveler, addSource bool) (slog.Handler, error) {
	if level == nil {
		level = slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		return newPrettyHandler(w, level, addSource), nil
	case "json":
		return newJSONHandler(w, level, addSource), nil
	default:
		return nil, errors.Errorf("log format: unsupported value %q", format)
	}
}

// ParseLevel maps a severity name to its slog level. Unknown or empty names
// fall back to info.
func ParseLevel(level string) slog.Level {
	if strings.TrimSpace(level) == "" {
		return slog.LevelInfo
	}
	sev, err := fanlog.ParseSeverity(level)
	if err != nil {
		return slog.LevelInfo
	}
	return sev.SlogLevel()
}

// OpenOutput resolves "stdout", "stderr" or a file path to a writer. Files
// are opened for appending and their directory is created if needed.
func OpenOutput(name string) (io.Writer, error) {
	trimmed := strings.TrimSpace(name)
	switch trimmed {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	if err := ensureLogDir(trimmed); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", trimmed)
	}
	return file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return errors.Wrapf(os.MkdirAll(dir, 0o755), "ensure log dir %s", dir)
}

func levelLabel(level slog.Level) string {
	return fanlog.SeverityFromSlog(level).String()
}
