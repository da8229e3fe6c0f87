package get_environment_logs

import (
	"context"
	"fmt"

	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
)

// GetEnvironmentLogsHandler handles the GetEnvironmentLogsQuery
type GetEnvironmentLogsHandler struct {
	environments repository.EnvironmentRepository
}

// Handle executes the GetEnvironmentLogsQuery
func (h *GetEnvironmentLogsHandler) Handle(query GetEnvironmentLogsQuery) (model.Logs, error) {
	if query.EnvironmentName == "" {
		return model.Logs{}, fmt.Errorf("environment name is required")
	}
	if query.Since > 0 && query.Until > 0 && query.Until < query.Since {
		return model.Logs{}, fmt.Errorf("until must not precede since")
	}

	return h.environments.GetLogs(context.Background(), query.EnvironmentName, query.Since, query.Until, query.Tail)
}

// NewGetEnvironmentLogsHandler creates a new GetEnvironmentLogsHandler
func NewGetEnvironmentLogsHandler(environments repository.EnvironmentRepository) *GetEnvironmentLogsHandler {
	return &GetEnvironmentLogsHandler{environments: environments}
}
