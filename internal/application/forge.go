// Package application wires the container engine, the build ledger and the
// command and query buses into one entry point for the CLI.
package application

import (
	"context"

	"envforge/internal/application/command"
	"envforge/internal/application/config"
	"envforge/internal/application/query"
	"envforge/internal/domain/repository"
	dockerbuild "envforge/internal/infra/docker/build"
	dockerenv "envforge/internal/infra/docker/environment"
	dockerimage "envforge/internal/infra/docker/image"
	"envforge/internal/infra/docker"
	"envforge/internal/infra/ledger"
	"envforge/pkg/cqrs"
	"envforge/pkg/log"
)

// Forge bundles the wired application services.
type Forge struct {
	config     *config.Config
	ledger     repository.BuildLedger
	commandBus cqrs.CommandBus
	queryBus   cqrs.QueryBus
}

// NewForge creates a new application instance from the configuration. The
// ledger is only opened when the build ledger feature is enabled.
func NewForge(ctx context.Context, cfg *config.Config) (*Forge, error) {
	// Config loading falls back to the default engine; a panic here means the
	// config was constructed without it.
	cfg.Engine.Validate()

	dockerClient, err := docker.NewClient()
	if err != nil {
		return nil, log.Errorf("failed to create docker client: %v", err)
	}

	builder := dockerbuild.NewCLIBuilder()
	images := dockerimage.NewDockerImageRepository(dockerClient)
	environments := dockerenv.NewDockerEnvironmentRepository(dockerClient)

	var buildLedger repository.BuildLedger
	if cfg.IsFeatureEnabled(config.FeatureBuildLedger) {
		buildLedger, err = ledger.NewSQLiteLedger(cfg.GetLedgerPath())
		if err != nil {
			return nil, log.Errorf("failed to open build ledger: %v", err)
		}
	}

	commandBus := cqrs.NewCommandBus(ctx)
	if err := command.RegisterCommandHandlers(commandBus, cfg, builder, images, buildLedger, environments); err != nil {
		log.Fatalf("Failed to register command handlers: %v", err)
	}

	queryBus := cqrs.NewQueryBus(ctx)
	if err := query.RegisterQueryHandlers(queryBus, cfg, buildLedger, environments); err != nil {
		log.Fatalf("Failed to register query handlers: %v", err)
	}

	return &Forge{
		config:     cfg,
		ledger:     buildLedger,
		commandBus: commandBus,
		queryBus:   queryBus,
	}, nil
}

// Config returns the application configuration.
func (f *Forge) Config() *config.Config {
	return f.config
}

// CommandBus returns the command bus.
func (f *Forge) CommandBus() cqrs.CommandBus {
	return f.commandBus
}

// QueryBus returns the query bus.
func (f *Forge) QueryBus() cqrs.QueryBus {
	return f.queryBus
}

// Close releases the application's resources after letting in-flight
// messages complete.
func (f *Forge) Close() {
	f.commandBus.Shutdown()
	f.queryBus.Shutdown()
	f.commandBus.WaitForCompletion()
	f.queryBus.WaitForCompletion()

	if f.ledger != nil {
		if err := f.ledger.Close(); err != nil {
			log.Warn("[Forge] failed to close build ledger", "error", err)
		}
	}
}
