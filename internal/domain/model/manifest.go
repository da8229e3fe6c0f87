package model

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manifest is the dependency manifest referenced by a recipe. The content is
// read once at build time; the dependency layer's cache key is derived from
// it, so an unchanged manifest reuses the installed layer while any edit
// forces re-installation.
type Manifest struct {
	// Path is the manifest location relative to the source root.
	Path string
	// Content is the raw manifest bytes.
	Content []byte
}

// LoadManifest reads the manifest declared by the recipe from the source
// tree. A missing manifest is an error: the dependency step cannot run
// without it.
func LoadManifest(sourceDir, manifestPath string) (*Manifest, error) {
	full := filepath.Join(sourceDir, filepath.FromSlash(manifestPath))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency manifest %s: %w", manifestPath, err)
	}
	return &Manifest{Path: manifestPath, Content: data}, nil
}
