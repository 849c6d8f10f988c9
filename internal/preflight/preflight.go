package preflight

import (
	"context"
	"fmt"

	"fanlog/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to each configured transport, in
// configuration order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Logging.File != "" {
		results = append(results, CheckFileTarget("logging.file", cfg.Logging.File))
	}
	for _, tr := range cfg.Transports {
		name := fmt.Sprintf("%s (%s)", tr.ID, tr.Type)
		switch tr.Type {
		case config.TypeJSONFile, config.TypeSQLite:
			results = append(results, CheckFileTarget(name, tr.Path))
		case config.TypeHTTP:
			results = append(results, CheckCollector(ctx, name, tr.URL, tr.Token))
		case config.TypeSlog:
			if file, ok := tr.WritesTo(); ok {
				results = append(results, CheckFileTarget(name, file))
			}
		}
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
