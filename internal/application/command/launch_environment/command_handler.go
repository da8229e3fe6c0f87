package launch_environment

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"envforge/internal/application/config"
	"envforge/internal/domain/repository"
	"envforge/internal/domain/service/build"
	"envforge/internal/domain/service/recipe"
	"envforge/pkg/env"
	log "envforge/pkg/log"
)

// LaunchEnvironmentHandler handles the LaunchEnvironmentCommand
type LaunchEnvironmentHandler struct {
	config       *config.Config
	builder      repository.ImageBuilder
	images       repository.ImageRepository
	ledger       repository.BuildLedger
	environments repository.EnvironmentRepository
}

// Handle executes the LaunchEnvironmentCommand: it builds the image through
// the pipeline and replaces the running container with one started from the
// new tag.
func (h *LaunchEnvironmentHandler) Handle(cmd LaunchEnvironmentCommand) error {
	r, sourceDir, err := recipe.Load(cmd.RecipePath, cmd.Vars)
	if err != nil {
		return err
	}

	ctx := context.Background()

	useCache := h.config.IsFeatureEnabled(config.FeatureLayerCache) && !cmd.NoCache
	ledger := h.ledger
	if !h.config.IsFeatureEnabled(config.FeatureBuildLedger) {
		ledger = nil
	}

	pipeline := build.NewPipeline(h.builder, h.images, ledger, h.config.GetStagingPath(), useCache)
	b, err := pipeline.Run(ctx, r, sourceDir)
	if err != nil {
		return err
	}

	readyTimeout := cmd.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = time.Duration(h.config.ReadyTimeoutSeconds) * time.Second
	}

	// Snapshot of the variables the container was started with, for
	// inspection after the fact.
	envFile := filepath.Join(h.config.GetEnvironmentsPath(), r.Name+".env")
	if err := env.Save(envFile, r.Env); err != nil {
		log.Warn("[Command] failed to write env snapshot", "environment", r.Name, "error", err)
	}

	container, err := h.environments.Launch(ctx, repository.LaunchRequest{
		EnvironmentName: r.Name,
		BuildID:         b.ID,
		ImageTag:        b.ImageTag,
		Host:            r.Launch.Host,
		Port:            r.Launch.Port,
		Env:             r.Env,
		ReadyTimeout:    readyTimeout,
	})
	if err != nil {
		return err
	}

	log.Info("[Command] environment launched",
		"environment", r.Name,
		"image", b.ImageTag,
		"container", container.Name,
		"addr", listenAddr(r.Launch.Host, r.Launch.Port))
	return nil
}

func listenAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// NewLaunchEnvironmentHandler creates a new LaunchEnvironmentHandler
func NewLaunchEnvironmentHandler(config *config.Config, builder repository.ImageBuilder, images repository.ImageRepository, ledger repository.BuildLedger, environments repository.EnvironmentRepository) *LaunchEnvironmentHandler {
	return &LaunchEnvironmentHandler{
		config:       config,
		builder:      builder,
		images:       images,
		ledger:       ledger,
		environments: environments,
	}
}
