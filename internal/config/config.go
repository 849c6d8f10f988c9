package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"fanlog/pkg/fanlog"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrInvalid marks configuration that fails validation.
var ErrInvalid = errors.New("invalid config")

// Logging configures the command's own operational output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File mirrors operational output as JSON lines when set.
	File string `toml:"file,omitempty"`
	// Development adds source locations to every operational line.
	Development bool `toml:"development,omitempty"`
}

// Transport describes one destination. Which fields apply depends on Type.
type Transport struct {
	Type   string   `toml:"type"`
	ID     string   `toml:"id,omitempty"`
	Levels []string `toml:"levels,omitempty"`
	Path   string   `toml:"path,omitempty"`

	URL            string `toml:"url,omitempty"`
	Token          string `toml:"token,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
	Gzip           bool   `toml:"gzip,omitempty"`

	Format string `toml:"format,omitempty"`
	Output string `toml:"output,omitempty"`
}

// Config holds every knob the fanlog command needs.
type Config struct {
	App        string      `toml:"app"`
	Logging    Logging     `toml:"logging"`
	Transports []Transport `toml:"transports"`
}

// DefaultConfigPath returns the expanded per-user config location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads configuration from path, or from the default search locations
// when path is empty. It returns the config, the resolved path, and whether a
// file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// Marshal renders the effective configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// Severities parses the terminal level filter. An empty list means every
// severity.
func (t Transport) Severities() ([]fanlog.Severity, error) {
	out := make([]fanlog.Severity, 0, len(t.Levels))
	for _, name := range t.Levels {
		sev, err := fanlog.ParseSeverity(name)
		if err != nil {
			return nil, err
		}
		out = append(out, sev)
	}
	return out, nil
}

// Timeout returns the HTTP request timeout.
func (t Transport) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// WritesTo reports whether the slog output names a file rather than a stream.
func (t Transport) WritesTo() (string, bool) {
	switch t.Output {
	case "", outputStdout, outputStderr:
		return "", false
	}
	return t.Output, true
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
