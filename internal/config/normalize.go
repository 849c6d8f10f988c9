package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.App = strings.TrimSpace(c.App)
	if c.App == "" {
		c.App = strings.TrimSpace(os.Getenv(envApp))
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if len(c.Transports) == 0 {
		c.Transports = []Transport{{Type: TypeTerminal}}
	}
	for i := range c.Transports {
		if err := c.Transports[i].normalize(); err != nil {
			return fmt.Errorf("transports[%d]: %w", i, err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (t *Transport) normalize() error {
	t.Type = strings.ToLower(strings.TrimSpace(t.Type))
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		t.ID = t.Type
	}
	for i, level := range t.Levels {
		t.Levels[i] = strings.ToLower(strings.TrimSpace(level))
	}

	var err error
	switch t.Type {
	case TypeJSONFile, TypeSQLite:
		if t.Path, err = expandPath(strings.TrimSpace(t.Path)); err != nil {
			return fmt.Errorf("path: %w", err)
		}
	case TypeHTTP:
		t.URL = strings.TrimSpace(t.URL)
		t.Token = strings.TrimSpace(t.Token)
		if t.Token == "" {
			t.Token = strings.TrimSpace(os.Getenv(envHTTPToken))
		}
		if t.TimeoutSeconds == 0 {
			t.TimeoutSeconds = defaultHTTPTimeout
		}
	case TypeSlog:
		t.Format = strings.ToLower(strings.TrimSpace(t.Format))
		if t.Format == "" {
			t.Format = defaultSlogFormat
		}
		t.Output = strings.TrimSpace(t.Output)
		if t.Output == "" {
			t.Output = defaultSlogOutput
		}
		if file, ok := t.WritesTo(); ok {
			if t.Output, err = expandPath(file); err != nil {
				return fmt.Errorf("output: %w", err)
			}
		}
	}
	return nil
}
