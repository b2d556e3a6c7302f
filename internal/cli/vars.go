package cli

import (
	"fmt"
	"strings"
)

// parseVars turns repeated key=value flags into a variable map. Later
// values win, and values are free to contain '='.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
