package prune_layers

import (
	"context"

	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
	"envforge/internal/domain/service/build"
	log "envforge/pkg/log"
)

// historyWindow bounds how many recorded builds are scanned for layers that
// must survive a prune.
const historyWindow = 100

// PruneLayersHandler handles the PruneLayersCommand
type PruneLayersHandler struct {
	images repository.ImageRepository
	ledger repository.BuildLedger
}

// Handle executes the PruneLayersCommand. Layers referenced by the most
// recent successful build of each recipe are kept so those recipes still
// rebuild from cache; everything else is removed.
func (h *PruneLayersHandler) Handle(cmd PruneLayersCommand) error {
	ctx := context.Background()

	keep, err := h.referencedLayers()
	if err != nil {
		return err
	}

	layers, err := h.images.ListImages(ctx, build.LayerRepository)
	if err != nil {
		return err
	}

	removed := 0
	for _, layer := range layers {
		for _, tag := range layer.Tags {
			if _, ok := keep[tag]; ok {
				continue
			}
			if err := h.images.RemoveImage(ctx, tag); err != nil {
				log.Warn("[Command] failed to remove layer", "tag", tag, "error", err)
				continue
			}
			removed++
		}
	}

	log.Info("[Command] layer cache pruned", "removed", removed, "kept", len(keep))
	return nil
}

// referencedLayers collects the layer tags of the latest successful build of
// each recipe. Without a ledger nothing is considered referenced.
func (h *PruneLayersHandler) referencedLayers() (map[string]struct{}, error) {
	keep := make(map[string]struct{})
	if h.ledger == nil {
		return keep, nil
	}

	builds, err := h.ledger.ListBuilds("", historyWindow)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, b := range builds {
		if b.Status != model.BuildStatusCompleted {
			continue
		}
		if _, ok := seen[b.RecipeName]; ok {
			continue
		}
		seen[b.RecipeName] = struct{}{}
		for _, step := range b.Steps {
			if step.LayerTag != "" {
				keep[step.LayerTag] = struct{}{}
			}
		}
	}
	return keep, nil
}

// NewPruneLayersHandler creates a new PruneLayersHandler. The ledger may be
// nil when build history recording is disabled.
func NewPruneLayersHandler(images repository.ImageRepository, ledger repository.BuildLedger) *PruneLayersHandler {
	return &PruneLayersHandler{
		images: images,
		ledger: ledger,
	}
}
