package stop_environment

import (
	"context"
	"fmt"

	"envforge/internal/domain/repository"
	log "envforge/pkg/log"
)

// StopEnvironmentHandler handles the StopEnvironmentCommand
type StopEnvironmentHandler struct {
	environments repository.EnvironmentRepository
}

// Handle executes the StopEnvironmentCommand
func (h *StopEnvironmentHandler) Handle(cmd StopEnvironmentCommand) error {
	if cmd.EnvironmentName == "" {
		return fmt.Errorf("environment name is required")
	}

	log.Debug("[Command] stopping environment", "environment", cmd.EnvironmentName)
	return h.environments.Stop(context.Background(), cmd.EnvironmentName)
}

// NewStopEnvironmentHandler creates a new StopEnvironmentHandler
func NewStopEnvironmentHandler(environments repository.EnvironmentRepository) *StopEnvironmentHandler {
	return &StopEnvironmentHandler{environments: environments}
}
