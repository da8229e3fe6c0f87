package query

import (
	"envforge/internal/application/config"
	"envforge/internal/application/query/get_build_history"
	"envforge/internal/application/query/get_environment_logs"
	"envforge/internal/application/query/get_environment_status"
	"envforge/internal/domain/repository"
	"envforge/pkg/cqrs"
	"envforge/pkg/log"
)

func RegisterQueryHandlers(b cqrs.QueryBus, config *config.Config, ledger repository.BuildLedger, environments repository.EnvironmentRepository) error {
	if err := b.Register(get_environment_status.NewGetEnvironmentStatusHandler(environments)); err != nil {
		return log.Errorf("failed to register environment status handler: %v", err)
	}

	if err := b.Register(get_environment_logs.NewGetEnvironmentLogsHandler(environments)); err != nil {
		return log.Errorf("failed to register environment logs handler: %v", err)
	}

	if err := b.Register(get_build_history.NewGetBuildHistoryHandler(config, ledger)); err != nil {
		return log.Errorf("failed to register build history handler: %v", err)
	}

	return nil
}
