package build_environment

import (
	"context"
	"time"

	"envforge/internal/application/config"
	"envforge/internal/domain/repository"
	"envforge/internal/domain/service/build"
	"envforge/internal/domain/service/recipe"
	"envforge/pkg/digest"
	log "envforge/pkg/log"
)

// BuildEnvironmentHandler handles the BuildEnvironmentCommand
type BuildEnvironmentHandler struct {
	config  *config.Config
	builder repository.ImageBuilder
	images  repository.ImageRepository
	ledger  repository.BuildLedger
}

// Handle executes the BuildEnvironmentCommand
func (h *BuildEnvironmentHandler) Handle(cmd BuildEnvironmentCommand) error {
	r, sourceDir, err := recipe.Load(cmd.RecipePath, cmd.Vars)
	if err != nil {
		return err
	}

	log.Info("[Command] building environment", "recipe", r.Name, "source", sourceDir)

	useCache := h.config.IsFeatureEnabled(config.FeatureLayerCache) && !cmd.NoCache
	ledger := h.ledger
	if !h.config.IsFeatureEnabled(config.FeatureBuildLedger) {
		ledger = nil
	}

	pipeline := build.NewPipeline(h.builder, h.images, ledger, h.config.GetStagingPath(), useCache)
	b, err := pipeline.Run(context.Background(), r, sourceDir)
	if err != nil {
		return err
	}

	log.Info("[Command] environment built",
		"recipe", r.Name,
		"image", b.ImageTag,
		"digest", digest.Short(b.Digest),
		"cache_hits", b.CacheHits(),
		"duration", b.FinishedAt.Sub(b.StartedAt).Round(10*time.Millisecond))
	return nil
}

// NewBuildEnvironmentHandler creates a new BuildEnvironmentHandler
func NewBuildEnvironmentHandler(config *config.Config, builder repository.ImageBuilder, images repository.ImageRepository, ledger repository.BuildLedger) *BuildEnvironmentHandler {
	return &BuildEnvironmentHandler{
		config:  config,
		builder: builder,
		images:  images,
		ledger:  ledger,
	}
}
