// Package recipe loads and validates environment recipes.
package recipe

import (
	"fmt"
	"os"
	"path/filepath"

	"envforge/internal/domain/model"
	"envforge/pkg/digest"
	"envforge/pkg/log"
	"envforge/pkg/template"
	"envforge/pkg/yaml"
)

// DefaultFile is the recipe filename looked up when none is given.
const DefaultFile = "forge.yaml"

// Load reads a recipe file, applies Compose-style variable substitution,
// parses it and validates the result. It returns the recipe and the resolved
// absolute source directory.
func Load(path string, vars map[string]string) (*model.Recipe, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read recipe %s: %w", path, err)
	}

	substituted, err := template.Substitute(string(data), vars)
	if err != nil {
		return nil, "", fmt.Errorf("failed to substitute variables in %s: %w", path, err)
	}

	var r model.Recipe
	if err := yaml.UnmarshalYAML([]byte(substituted), &r); err != nil {
		return nil, "", fmt.Errorf("failed to parse recipe %s: %w", path, err)
	}

	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid recipe %s: %w", path, err)
	}

	sourceDir, err := filepath.Abs(filepath.Join(filepath.Dir(path), filepath.FromSlash(r.Source)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve source directory: %w", err)
	}
	if info, err := os.Stat(sourceDir); err != nil || !info.IsDir() {
		return nil, "", fmt.Errorf("source directory %s does not exist", sourceDir)
	}

	if fp, err := Fingerprint([]byte(substituted)); err == nil {
		log.Debug("[Recipe] loaded", "name", r.Name, "fingerprint", fp, "source", sourceDir)
	}

	return &r, sourceDir, nil
}

// Fingerprint returns a short digest of the recipe document in canonical
// form. Reordering keys or reformatting the file does not change it.
func Fingerprint(data []byte) (string, error) {
	canonical, err := yaml.YAMLToJSON(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize recipe: %w", err)
	}
	return digest.Short(digest.New().Field(canonical).Sum()), nil
}
