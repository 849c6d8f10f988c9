package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fanlog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a loaded config rooted in a per-test temp directory. The
// options are applied to the defaults, written out as TOML and read back with
// config.Load, so the result is normalized and validated exactly as a real
// config file would be.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	path := WriteConfig(t, opts...)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}
	return cfg
}

// WriteConfig renders the options to a config file and returns its path.
func WriteConfig(t testing.TB, opts ...ConfigOption) string {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	data, err := builder.cfg.Marshal()
	if err != nil {
		t.Fatalf("encode test config: %v", err)
	}
	path := filepath.Join(base, "fanlog.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

// WithApp sets the application label.
func WithApp(app string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.App = app
	}
}

// WithTransport appends a transport entry as written.
func WithTransport(tr config.Transport) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transports = append(b.cfg.Transports, tr)
	}
}

// WithJSONFile appends a jsonfile transport writing to name inside the test
// directory. The full path is stored in *path when path is non-nil.
func WithJSONFile(name string, path *string) ConfigOption {
	return func(b *configBuilder) {
		full := filepath.Join(b.baseDir, name)
		if path != nil {
			*path = full
		}
		b.cfg.Transports = append(b.cfg.Transports, config.Transport{Type: config.TypeJSONFile, Path: full})
	}
}

// WithLogging overrides the command's own logging settings.
func WithLogging(format, level string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Format = format
		b.cfg.Logging.Level = level
	}
}

// WithLogFile mirrors the command's own logging into name inside the test
// directory. The full path is stored in *path when path is non-nil.
func WithLogFile(name string, path *string) ConfigOption {
	return func(b *configBuilder) {
		full := filepath.Join(b.baseDir, name)
		if path != nil {
			*path = full
		}
		b.cfg.Logging.File = full
	}
}
