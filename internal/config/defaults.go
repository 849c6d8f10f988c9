package config

const (
	defaultConfigPath  = "~/.config/fanlog/config.toml"
	projectConfigName  = "fanlog.toml"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultHTTPTimeout = 5
	defaultSlogOutput  = "stderr"
	defaultSlogFormat  = "json"
	envApp             = "FANLOG_APP"
	envHTTPToken       = "FANLOG_HTTP_TOKEN"
	outputStdout       = "stdout"
	outputStderr       = "stderr"
)

// Transport type names accepted in [[transports]].type.
const (
	TypeTerminal = "terminal"
	TypeJSONFile = "jsonfile"
	TypeHTTP     = "http"
	TypeSQLite   = "sqlite"
	TypeSlog     = "slog"
)

// Default returns a Config populated with repository defaults. Transports are
// left empty; normalization adds a terminal transport when none are configured.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
