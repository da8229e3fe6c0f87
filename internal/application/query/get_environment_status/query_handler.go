package get_environment_status

import (
	"context"
	"fmt"

	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
)

// GetEnvironmentStatusHandler handles the GetEnvironmentStatusQuery
type GetEnvironmentStatusHandler struct {
	environments repository.EnvironmentRepository
}

// Handle executes the GetEnvironmentStatusQuery
func (h *GetEnvironmentStatusHandler) Handle(query GetEnvironmentStatusQuery) (model.Environment, error) {
	if query.EnvironmentName == "" {
		return model.Environment{}, fmt.Errorf("environment name is required")
	}

	return h.environments.GetStatus(context.Background(), query.EnvironmentName)
}

// NewGetEnvironmentStatusHandler creates a new GetEnvironmentStatusHandler
func NewGetEnvironmentStatusHandler(environments repository.EnvironmentRepository) *GetEnvironmentStatusHandler {
	return &GetEnvironmentStatusHandler{environments: environments}
}
