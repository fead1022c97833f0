package cliutil

import (
	"strconv"
	"strings"
)

// ToNestedMap converts flat "a.b.c" keys into nested maps. Values that
// parse as numbers or booleans are converted.
func ToNestedMap(flat map[string]string) map[string]any {
	nested := make(map[string]any)
	for path, value := range flat {
		segments := strings.Split(path, ".")
		current := nested
		for _, segment := range segments[:len(segments)-1] {
			next, ok := current[segment].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[segment] = next
			}
			current = next
		}
		current[segments[len(segments)-1]] = parseValue(value)
	}
	return nested
}

func parseValue(value string) any {
	if num, err := strconv.ParseFloat(value, 64); err == nil {
		return num
	}
	if b, err := strconv.ParseBool(value); err == nil && (value == "true" || value == "false") {
		return b
	}
	return value
}
