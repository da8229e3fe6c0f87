package repository

import (
	"context"
	"time"

	"envforge/internal/domain/model"
)

// LaunchRequest describes the single foreground container to start from a
// built environment image.
type LaunchRequest struct {
	// EnvironmentName labels the container so it can be found later.
	EnvironmentName string
	// BuildID links the container to the build that produced the image.
	BuildID string
	// ImageTag is the image to run.
	ImageTag string
	// Host is the host interface the port is published on.
	Host string
	// Port is published host-side and exposed container-side.
	Port int
	// Env are the process-wide environment variables.
	Env map[string]string
	// ReadyTimeout bounds how long Launch waits for the port to accept
	// connections. Zero disables the readiness wait.
	ReadyTimeout time.Duration
}

// EnvironmentRepository manages the runtime lifecycle of environments.
// The provisioner starts exactly one foreground container per environment;
// restart policy beyond that belongs to the container runtime.
type EnvironmentRepository interface {
	// Launch creates and starts the environment container, replacing any
	// previous container of the same environment, and waits for readiness.
	Launch(ctx context.Context, req LaunchRequest) (model.Container, error)

	// Stop stops the environment's containers.
	Stop(ctx context.Context, environmentName string) error

	// Remove stops and removes the environment's containers.
	Remove(ctx context.Context, environmentName string) error

	// GetStatus returns the environment's containers and their states.
	GetStatus(ctx context.Context, environmentName string) (model.Environment, error)

	// GetLogs returns log entries for the environment within the time range.
	// Zero boundaries are ignored; tail <= 0 returns all available lines.
	GetLogs(ctx context.Context, environmentName string, since, until int64, tail int) (model.Logs, error)
}
