// Package build executes image layer builds through the docker CLI.
package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"envforge/internal/domain/repository"
	"envforge/pkg/log"
)

// cliBuilder builds layers by shelling out to `docker build`. Mutating
// lifecycle operations go through the CLI while queries use the API client;
// the CLI path gives us BuildKit behaviour identical to what the operator
// sees when building by hand.
type cliBuilder struct{}

// Compile-time assertion that *cliBuilder implements the interface.
var _ repository.ImageBuilder = (*cliBuilder)(nil)

// NewCLIBuilder creates an ImageBuilder backed by the docker CLI.
func NewCLIBuilder() repository.ImageBuilder {
	return &cliBuilder{}
}

// BuildLayer writes the Dockerfile into the context directory and runs
// `docker build`. Any non-zero exit is returned with the combined output so
// the operator sees which instruction failed; the caller aborts the pipeline.
func (b *cliBuilder) BuildLayer(ctx context.Context, req repository.BuildLayerRequest) (string, error) {
	if req.Tag == "" {
		return "", fmt.Errorf("layer tag is required")
	}

	contextDir := req.ContextDir
	if contextDir == "" {
		dir, err := os.MkdirTemp("", "envforge-context-")
		if err != nil {
			return "", fmt.Errorf("failed to create build context: %w", err)
		}
		defer os.RemoveAll(dir)
		contextDir = dir
	}

	// The Dockerfile lives outside the context so `COPY .` never captures it.
	dfDir, err := os.MkdirTemp("", "envforge-dockerfile-")
	if err != nil {
		return "", fmt.Errorf("failed to create Dockerfile directory: %w", err)
	}
	defer os.RemoveAll(dfDir)

	dockerfilePath := filepath.Join(dfDir, "Dockerfile")
	if err := os.WriteFile(dockerfilePath, []byte(req.Dockerfile), 0o644); err != nil {
		return "", fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	args := []string{"build", "-t", req.Tag, "-f", dockerfilePath, contextDir}
	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("[Builder] docker build failed", "tag", req.Tag, "output", string(output), "error", err)
		return string(output), fmt.Errorf("docker build %s failed: %w", req.Tag, err)
	}

	log.Debug("[Builder] layer built", "tag", req.Tag)
	return string(output), nil
}
