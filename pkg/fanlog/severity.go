package fanlog

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Severity classifies a record. Values are ordered and index-comparable.
type Severity int

const (
	Trace Severity = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

// LevelTrace and LevelFatal extend slog's built-in levels so the six
// severities survive a round trip through slog handlers.
const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var severityNames = [...]string{
	Trace: "TRACE",
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Fatal: "FATAL",
}

var severityLevels = [...]slog.Level{
	Trace: LevelTrace,
	Debug: slog.LevelDebug,
	Info:  slog.LevelInfo,
	Warn:  slog.LevelWarn,
	Error: slog.LevelError,
	Fatal: LevelFatal,
}

// Severities returns every severity from Trace to Fatal.
func Severities() []Severity {
	return []Severity{Trace, Debug, Info, Warn, Error, Fatal}
}

// Valid reports whether s is one of the six defined severities.
func (s Severity) Valid() bool {
	return s >= Trace && s <= Fatal
}

func (s Severity) String() string {
	if !s.Valid() {
		return "SEVERITY(" + strconv.Itoa(int(s)) + ")"
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal severity: invalid value %d", int(s))
	}
	return []byte(strings.ToLower(severityNames[s])), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity resolves a severity name case-insensitively. "warning" is
// accepted as an alias of warn.
func ParseSeverity(name string) (Severity, error) {
	folded := cases.Fold().String(strings.TrimSpace(name))
	if folded == "warning" {
		return Warn, nil
	}
	for i, candidate := range severityNames {
		if cases.Fold().String(candidate) == folded {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("parse severity: unknown level %q", name)
}

// SlogLevel maps the severity onto the slog level scale.
func (s Severity) SlogLevel() slog.Level {
	if !s.Valid() {
		return slog.LevelInfo
	}
	return severityLevels[s]
}

// SeverityFromSlog picks the highest severity whose slog level does not
// exceed level. Anything below slog.LevelDebug becomes Trace.
func SeverityFromSlog(level slog.Level) Severity {
	result := Trace
	for i, candidate := range severityLevels {
		if candidate <= level {
			result = Severity(i)
		}
	}
	return result
}
