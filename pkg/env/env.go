package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Save writes the provided key/value pairs to a file in .env format.
//
//   - path  - absolute or relative file path to create/overwrite.
//   - vars  - map of environment variables (keys MUST be non-empty).
//
// Variable names are sorted alphabetically so repeated renders of the same
// map produce byte-identical files, which keeps the file out of the
// cache-invalidation picture when nothing changed. Values containing
// whitespace or `#` characters are quoted; internal quotes and backslashes
// are escaped.
func Save(path string, vars map[string]string) error {
	if len(vars) == 0 {
		return nil // Nothing to write.
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create env directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create env file %s: %w", path, err)
	}
	defer f.Close()

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", k, quote(vars[k])); err != nil {
			return fmt.Errorf("failed to write env variable %s: %w", k, err)
		}
	}

	return nil
}

// quote wraps values that would otherwise break the KEY=VALUE line format.
func quote(v string) string {
	if !strings.ContainsAny(v, " \t\n\r#\"") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	v = strings.ReplaceAll(v, "\r", `\r`)
	return `"` + v + `"`
}
