package setup

import (
	"encoding/json"
	"fmt"
	"strings"

	"fanlog/pkg/fanlog"
)

// ParseFields turns key=value pairs into Fields. Values that parse as JSON
// (numbers, booleans, null, objects, arrays, quoted strings) keep their
// decoded type; anything else is kept as a plain string. Later pairs
// overwrite earlier ones with the same key.
func ParseFields(pairs []string) (fanlog.Fields, error) {
	fields := make(fanlog.Fields, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q: expected key=value", pair)
		}
		fields[key] = parseValue(raw)
	}
	return fields, nil
}

func parseValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return raw
	}
	return v
}
