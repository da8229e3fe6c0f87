package remove_environment

import (
	"context"
	"fmt"

	"envforge/internal/domain/repository"
	log "envforge/pkg/log"
)

// RemoveEnvironmentHandler handles the RemoveEnvironmentCommand
type RemoveEnvironmentHandler struct {
	environments repository.EnvironmentRepository
	images       repository.ImageRepository
}

// Handle executes the RemoveEnvironmentCommand
func (h *RemoveEnvironmentHandler) Handle(cmd RemoveEnvironmentCommand) error {
	if cmd.EnvironmentName == "" {
		return fmt.Errorf("environment name is required")
	}

	ctx := context.Background()
	if err := h.environments.Remove(ctx, cmd.EnvironmentName); err != nil {
		return err
	}

	if !cmd.RemoveImages {
		return nil
	}

	images, err := h.images.ListImages(ctx, cmd.EnvironmentName)
	if err != nil {
		return err
	}
	for _, img := range images {
		for _, tag := range img.Tags {
			if err := h.images.RemoveImage(ctx, tag); err != nil {
				return err
			}
			log.Info("[Command] image removed", "tag", tag)
		}
	}

	return nil
}

// NewRemoveEnvironmentHandler creates a new RemoveEnvironmentHandler
func NewRemoveEnvironmentHandler(environments repository.EnvironmentRepository, images repository.ImageRepository) *RemoveEnvironmentHandler {
	return &RemoveEnvironmentHandler{
		environments: environments,
		images:       images,
	}
}
