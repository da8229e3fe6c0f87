// Package docker provides the Docker engine integration: the API client,
// layer building via the CLI, and image and container repositories.
package docker

import (
	"github.com/docker/docker/client"
)

// NewClient creates a Docker API client from the environment (DOCKER_HOST
// and friends) with automatic API version negotiation.
func NewClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}
