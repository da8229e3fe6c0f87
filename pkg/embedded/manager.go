package embedded

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Manager extracts embedded files into a target directory. Existing files are
// overwritten so the extracted copy always matches the binary. The manager
// purposefully avoids version tracking; callers control when extraction
// happens.
type Manager struct {
	embeddedFS fs.FS
	targetDir  string
}

// NewManager creates a new embedded files manager.
func NewManager(embeddedFS fs.FS, targetDir string) *Manager {
	return &Manager{
		embeddedFS: embeddedFS,
		targetDir:  targetDir,
	}
}

// SyncFiles extracts the embedded files into the target directory, creating
// it if needed.
func (m *Manager) SyncFiles() error {
	if err := m.extractFiles(); err != nil {
		return fmt.Errorf("failed to extract embedded files: %w", err)
	}
	return nil
}

// extractFiles walks the embedded FS and writes every entry under targetDir.
func (m *Manager) extractFiles() error {
	if err := os.MkdirAll(m.targetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	return fs.WalkDir(m.embeddedFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == "." {
			return nil
		}

		targetPath := filepath.Join(m.targetDir, path)

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0o755)
		}

		data, err := fs.ReadFile(m.embeddedFS, path)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", targetPath, err)
		}

		if err := os.WriteFile(targetPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", targetPath, err)
		}

		return nil
	})
}
