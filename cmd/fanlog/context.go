package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"fanlog/internal/config"
	"fanlog/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string
	devFlag       *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string, devFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		devFlag:       devFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configPath, c.configExists, c.configErr = config.Load(flagValue(c.configFlag))
	})
	return c.config, c.configErr
}

// operationalLogger builds the slog logger for fanlog's own messages. Flags
// win over the [logging] table; without a config the defaults apply. The
// returned closer releases the logging.file mirror, if any.
func (c *commandContext) operationalLogger(w io.Writer, sessionID string) (*slog.Logger, io.Closer, error) {
	opts := logging.Options{Output: w, Development: c.logDevelopment()}
	var mirrorPath string
	if c.config != nil {
		opts.Level = c.config.Logging.Level
		opts.Format = c.config.Logging.Format
		mirrorPath = c.config.Logging.File
	}
	if level := flagValue(c.logLevelFlag); level != "" {
		opts.Level = level
	}
	if format := flagValue(c.logFormatFlag); format != "" {
		opts.Format = format
	}

	logger, err := logging.New(opts)
	if err != nil {
		return nil, nil, err
	}
	closer := io.Closer(nopCloser{})
	if mirrorPath != "" {
		mirror, file, err := logging.OpenMirror(mirrorPath, opts)
		if err != nil {
			return nil, nil, err
		}
		logger = logging.TeeLogger(logger, mirror)
		closer = file
	}
	if sessionID != "" {
		logger = logging.WithSessionID(logger, sessionID)
	}
	return logger, closer, nil
}

func (c *commandContext) logDevelopment() bool {
	if c.devFlag != nil && *c.devFlag {
		return true
	}
	return c.config != nil && c.config.Logging.Development
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
