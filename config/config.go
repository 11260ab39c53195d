package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// New snapshots the process environment into a map. Callers read typed values
// out of it with the Get helpers, each of which takes a default.
func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetStringList splits a comma-separated value, trimming blanks and dropping
// empty entries.
func GetStringList(config map[string]string, key string, defaultValue []string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// GetUintList parses a comma-separated list of unsigned integers.
// defaultValue is used only when key is unset or blank; a value that is set
// but does not parse is an error.
func GetUintList(config map[string]string, key string, defaultValue []uint) ([]uint, error) {
	parts := GetStringList(config, key, nil)
	if parts == nil {
		return defaultValue, nil
	}

	values := make([]uint, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(part, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid entry %q: %w", key, part, err)
		}
		values = append(values, uint(n))
	}
	return values, nil
}
