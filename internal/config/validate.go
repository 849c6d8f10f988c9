package config

import (
	"fmt"
	"strings"

	"fanlog/pkg/fanlog"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if len(c.Transports) == 0 {
		return fmt.Errorf("%w: at least one [[transports]] entry is required", ErrInvalid)
	}
	seen := make(map[string]int, len(c.Transports))
	for i, t := range c.Transports {
		if prev, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: transports[%d].id %q duplicates transports[%d]", ErrInvalid, i, t.ID, prev)
		}
		seen[t.ID] = i
		if err := t.validate(); err != nil {
			return fmt.Errorf("%w: transports[%d] (%s): %v", ErrInvalid, i, t.ID, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", ErrInvalid, c.Logging.Format)
	}
	if _, err := fanlog.ParseSeverity(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	return nil
}

func (t Transport) validate() error {
	if t.ID == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(t.Levels) > 0 && t.Type != TypeTerminal {
		return fmt.Errorf("levels only applies to terminal transports")
	}
	switch t.Type {
	case TypeTerminal:
		if _, err := t.Severities(); err != nil {
			return fmt.Errorf("levels: %v", err)
		}
	case TypeJSONFile, TypeSQLite:
		if t.Path == "" {
			return fmt.Errorf("path is required for %s transports", t.Type)
		}
	case TypeHTTP:
		if t.URL == "" {
			return fmt.Errorf("url is required for http transports")
		}
		if !strings.HasPrefix(t.URL, "http://") && !strings.HasPrefix(t.URL, "https://") {
			return fmt.Errorf("url %q must use http or https", t.URL)
		}
		if t.TimeoutSeconds < 0 {
			return fmt.Errorf("timeout_seconds must be positive")
		}
	case TypeSlog:
		if t.Format != "console" && t.Format != "json" {
			return fmt.Errorf("format must be console or json, got %q", t.Format)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown type %q", t.Type)
	}
	return nil
}
