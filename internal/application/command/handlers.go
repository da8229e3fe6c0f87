package command

import (
	"envforge/internal/application/command/build_environment"
	"envforge/internal/application/command/launch_environment"
	"envforge/internal/application/command/prune_layers"
	"envforge/internal/application/command/remove_environment"
	"envforge/internal/application/command/stop_environment"
	"envforge/internal/application/command/update_forge"
	"envforge/internal/application/config"
	"envforge/internal/domain/repository"
	"envforge/pkg/cqrs"
	"envforge/pkg/log"
)

func RegisterCommandHandlers(b cqrs.CommandBus, config *config.Config, builder repository.ImageBuilder, images repository.ImageRepository, ledger repository.BuildLedger, environments repository.EnvironmentRepository) error {
	if err := b.Register(build_environment.NewBuildEnvironmentHandler(config, builder, images, ledger)); err != nil {
		return log.Errorf("failed to register build environment handler: %v", err)
	}

	if err := b.Register(launch_environment.NewLaunchEnvironmentHandler(config, builder, images, ledger, environments)); err != nil {
		return log.Errorf("failed to register launch environment handler: %v", err)
	}

	if err := b.Register(stop_environment.NewStopEnvironmentHandler(environments)); err != nil {
		return log.Errorf("failed to register stop environment handler: %v", err)
	}

	if err := b.Register(remove_environment.NewRemoveEnvironmentHandler(environments, images)); err != nil {
		return log.Errorf("failed to register remove environment handler: %v", err)
	}

	if err := b.Register(prune_layers.NewPruneLayersHandler(images, ledger)); err != nil {
		return log.Errorf("failed to register prune layers handler: %v", err)
	}

	if err := b.Register(update_forge.NewUpdateForgeHandler(config)); err != nil {
		return log.Errorf("failed to register update handler: %v", err)
	}

	return nil
}
