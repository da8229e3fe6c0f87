package update_forge

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"envforge/internal/application/config"
	"envforge/internal/version"
	log "envforge/pkg/log"
)

// UpdateForgeHandler handles the UpdateForgeCommand
type UpdateForgeHandler struct {
	config *config.Config
}

// Handle executes the UpdateForgeCommand
func (h *UpdateForgeHandler) Handle(cmd UpdateForgeCommand) error {
	if !h.config.IsFeatureEnabled(config.FeatureSelfUpdate) {
		return log.Errorf("self update feature is disabled")
	}

	targetVersion := cmd.Version
	if targetVersion == "" {
		return log.Errorf("target version is required for update command")
	}

	log.Debug("Processing update request", "current_version", version.GetVersion(), "target_version", targetVersion)

	if !version.IsSmallerThan(targetVersion) {
		log.Info("Already running the requested or a newer version", "current_version", version.GetVersion(), "target_version", targetVersion)
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return log.Errorf("failed to get current executable path: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "envforge-update")
	if err != nil {
		return log.Errorf("failed to create temporary directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Format: {ReleasesURL}/{targetVersion}/envforge-{os}-{arch}
	osName := runtime.GOOS
	archName := runtime.GOARCH
	if osName == "windows" {
		return log.Errorf("windows is not supported")
	}
	binaryName := fmt.Sprintf("envforge-%s-%s", osName, archName)

	downloadURL := fmt.Sprintf("%s/%s/%s", h.config.GetReleasesURL(), targetVersion, binaryName)
	log.Debug("Downloading release binary", "target_version", targetVersion, "url", downloadURL)

	resp, err := http.Get(downloadURL)
	if err != nil {
		return log.Errorf("failed to download release binary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return log.Errorf("failed to download release binary, status code: %d", resp.StatusCode)
	}

	tempFile := filepath.Join(tempDir, "envforge-new")

	out, err := os.Create(tempFile)
	if err != nil {
		return log.Errorf("failed to create temporary file: %w", err)
	}
	defer out.Close()

	info, err := os.Stat(execPath)
	if err != nil {
		return log.Errorf("failed to get current executable info: %w", err)
	}
	if err := os.Chmod(tempFile, info.Mode()); err != nil {
		return log.Errorf("failed to set file permissions: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return log.Errorf("failed to write downloaded binary: %w", err)
	}
	out.Close()

	log.Debug("Replacing current executable with new version", "executable_path", execPath)
	if err := os.Rename(tempFile, execPath); err != nil {
		return log.Errorf("failed to replace current executable: %w", err)
	}

	log.Info("Updated to new version", "previous_version", version.GetVersion(), "target_version", targetVersion)
	return nil
}

// NewUpdateForgeHandler creates a new UpdateForgeHandler
func NewUpdateForgeHandler(config *config.Config) *UpdateForgeHandler {
	return &UpdateForgeHandler{config: config}
}
