// Package setup turns a loaded configuration into a fanlog.Logger and the
// transports behind it.
package setup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"fanlog/internal/config"
	"fanlog/internal/logging"
	"fanlog/pkg/fanlog"
	"fanlog/pkg/transport/httpsink"
	"fanlog/pkg/transport/jsonfile"
	"fanlog/pkg/transport/slogsink"
	"fanlog/pkg/transport/sqlitesink"
	"fanlog/pkg/transport/terminal"
)

// Options overrides process-level wiring. Zero values use the real streams.
type Options struct {
	// App replaces the configured application label when non-empty.
	App         string
	Stdout      io.Writer
	Stderr      io.Writer
	Diagnostics io.Writer
	// Logger receives operational messages about the wiring itself.
	Logger *slog.Logger
}

// Description summarizes one configured transport for display.
type Description struct {
	ID     string
	Type   string
	Target string
	Async  bool
}

// Pipeline owns a Logger and every transport opened for it.
type Pipeline struct {
	logger  *fanlog.Logger
	closers []io.Closer
}

// Describe summarizes the configured transports without opening them.
func Describe(cfg *config.Config) []Description {
	if cfg == nil {
		return nil
	}
	out := make([]Description, 0, len(cfg.Transports))
	for _, spec := range cfg.Transports {
		desc := Description{ID: spec.ID, Type: spec.Type, Async: spec.Type == config.TypeHTTP}
		switch spec.Type {
		case config.TypeTerminal:
			desc.Target = "stdout/stderr"
			if len(spec.Levels) > 0 {
				desc.Target += " [" + strings.Join(spec.Levels, ",") + "]"
			}
		case config.TypeJSONFile, config.TypeSQLite:
			desc.Target = spec.Path
		case config.TypeHTTP:
			desc.Target = spec.URL
		case config.TypeSlog:
			desc.Target = spec.Format + " -> " + spec.Output
		}
		out = append(out, desc)
	}
	return out
}

// Build opens every configured transport in order. If any transport cannot
// be opened, the ones already opened are closed and the error is returned.
func Build(cfg *config.Config, opts Options) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("setup: config is required")
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = opts.Stderr
	}
	log := logging.NewComponentLogger(opts.Logger, "setup")

	p := &Pipeline{}
	descriptions := Describe(cfg)
	transports := make([]fanlog.Transport, 0, len(cfg.Transports))
	for i, spec := range cfg.Transports {
		tr, err := p.open(spec, opts)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("open transport %s: %w", spec.ID, err)
		}
		transports = append(transports, tr)
		log.Debug("transport ready",
			logging.String("id", descriptions[i].ID),
			logging.String("type", descriptions[i].Type),
			logging.String("target", descriptions[i].Target),
		)
	}

	app := cfg.App
	if strings.TrimSpace(opts.App) != "" {
		app = strings.TrimSpace(opts.App)
	}
	p.logger = fanlog.New(fanlog.Options{
		App:         app,
		Transports:  transports,
		Diagnostics: opts.Diagnostics,
	})
	return p, nil
}

func (p *Pipeline) open(spec config.Transport, opts Options) (fanlog.Transport, error) {
	switch spec.Type {
	case config.TypeTerminal:
		levels, err := spec.Severities()
		if err != nil {
			return nil, err
		}
		return terminal.New(terminal.Options{ID: spec.ID, Levels: levels, Stdout: opts.Stdout, Stderr: opts.Stderr}), nil

	case config.TypeJSONFile:
		tr, err := jsonfile.Open(jsonfile.Options{ID: spec.ID, Path: spec.Path})
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, tr)
		return tr, nil

	case config.TypeSQLite:
		tr, err := sqlitesink.Open(sqlitesink.Options{ID: spec.ID, Path: spec.Path})
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, tr)
		return tr, nil

	case config.TypeHTTP:
		tr, err := httpsink.New(httpsink.Options{
			ID:      spec.ID,
			URL:     spec.URL,
			Token:   spec.Token,
			Timeout: spec.Timeout(),
			Gzip:    spec.Gzip,
		})
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, tr)
		return tr, nil

	case config.TypeSlog:
		w, err := p.slogOutput(spec, opts)
		if err != nil {
			return nil, err
		}
		handler, err := logging.NewHandler(w, spec.Format, fanlog.LevelTrace, false)
		if err != nil {
			return nil, err
		}
		tr, err := slogsink.New(slogsink.Options{ID: spec.ID, Handler: handler})
		if err != nil {
			return nil, err
		}
		return tr, nil
	}
	return nil, fmt.Errorf("unknown transport type %q", spec.Type)
}

func (p *Pipeline) slogOutput(spec config.Transport, opts Options) (io.Writer, error) {
	if _, isFile := spec.WritesTo(); !isFile {
		if spec.Output == "stdout" {
			return opts.Stdout, nil
		}
		return opts.Stderr, nil
	}
	w, err := logging.OpenOutput(spec.Output)
	if err != nil {
		return nil, err
	}
	if c, ok := w.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}
	return w, nil
}

// Logger returns the assembled dispatcher.
func (p *Pipeline) Logger() *fanlog.Logger { return p.logger }

// Close releases every opened transport in reverse order.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
