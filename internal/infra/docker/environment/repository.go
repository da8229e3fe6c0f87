// Package environment implements the runtime lifecycle of environment
// containers over the Docker API client.
package environment

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/go-connections/nat"
	"github.com/docker/docker/client"
	"github.com/google/uuid"

	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
	"envforge/internal/infra/docker"
	"envforge/pkg/backoff"
	"envforge/pkg/log"
)

// Labels attached to every launched container so environments can be found
// and correlated with their builds.
const (
	LabelEnvironment = "envforge.environment"
	LabelBuild       = "envforge.build"
)

// dockerEnvironmentRepository provides thread-safe lifecycle operations for
// environment containers using a Docker client.
type dockerEnvironmentRepository struct {
	client *client.Client
	mu     sync.RWMutex
}

// Compile-time assertion that *dockerEnvironmentRepository implements the interface.
var _ repository.EnvironmentRepository = (*dockerEnvironmentRepository)(nil)

// NewDockerEnvironmentRepository creates a new EnvironmentRepository using
// the provided Docker client. Logs a fatal error and exits if the client is nil.
func NewDockerEnvironmentRepository(dockerClient *client.Client) repository.EnvironmentRepository {
	if dockerClient == nil {
		log.Fatal("[Environment] docker client is nil – repository cannot be created")
	}
	return &dockerEnvironmentRepository{client: dockerClient}
}

// Launch replaces any previous container of the environment, starts a new one
// from the built image with the port published on the requested interface,
// and waits until the port accepts TCP connections.
func (r *dockerEnvironmentRepository) Launch(ctx context.Context, req repository.LaunchRequest) (model.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Exactly one foreground container per environment.
	if err := r.removeContainers(ctx, req.EnvironmentName); err != nil {
		return model.Container{}, err
	}

	portKey, err := nat.NewPort("tcp", strconv.Itoa(req.Port))
	if err != nil {
		return model.Container{}, fmt.Errorf("invalid port %d: %w", req.Port, err)
	}

	env := make([]string, 0, len(req.Env))
	for _, k := range sortedKeys(req.Env) {
		env = append(env, k+"="+req.Env[k])
	}

	name := fmt.Sprintf("%s-%s", req.EnvironmentName, uuid.NewString()[:8])
	created, err := r.client.ContainerCreate(ctx,
		&container.Config{
			Image: req.ImageTag,
			Env:   env,
			Labels: map[string]string{
				LabelEnvironment: req.EnvironmentName,
				LabelBuild:       req.BuildID,
			},
			ExposedPorts: nat.PortSet{portKey: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				portKey: []nat.PortBinding{{HostIP: req.Host, HostPort: strconv.Itoa(req.Port)}},
			},
		},
		nil, nil, name)
	if err != nil {
		log.Error("[Environment] failed to create container", "environment", req.EnvironmentName, "error", err)
		return model.Container{}, fmt.Errorf("create container: %w", err)
	}

	if err := r.client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		log.Error("[Environment] failed to start container", "container_id", created.ID, "error", err)
		return model.Container{}, fmt.Errorf("start container: %w", err)
	}

	log.Info("[Environment] container started", "environment", req.EnvironmentName, "container", name, "port", req.Port)

	if req.ReadyTimeout > 0 {
		if err := r.waitReady(ctx, req); err != nil {
			return model.Container{}, err
		}
	}

	return model.Container{
		ID:         created.ID,
		Name:       name,
		StatusCode: model.ContainerStatusActive,
		Ports:      []model.ContainerPort{{Port: req.Port, Protocol: "tcp"}},
	}, nil
}

// waitReady polls the published port until it accepts a TCP connection or
// the timeout elapses.
func (r *dockerEnvironmentRepository) waitReady(ctx context.Context, req repository.LaunchRequest) error {
	deadline := time.Now().Add(req.ReadyTimeout)
	addr := net.JoinHostPort(dialHost(req.Host), strconv.Itoa(req.Port))
	b := backoff.New(100*time.Millisecond, 2*time.Second)

	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			log.Info("[Environment] port ready", "environment", req.EnvironmentName, "addr", addr)
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("environment %s did not become ready on %s within %s", req.EnvironmentName, addr, req.ReadyTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Next()):
		}
	}
}

// dialHost maps the all-interfaces bind address to a dialable loopback
// address.
func dialHost(host string) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		return "127.0.0.1"
	}
	return host
}

func (r *dockerEnvironmentRepository) Stop(ctx context.Context, environmentName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	containers, err := r.listContainers(ctx, environmentName)
	if err != nil {
		return err
	}

	for _, c := range containers {
		if err := r.client.ContainerStop(ctx, c.ID, container.StopOptions{}); err != nil {
			log.Error("[Environment] failed to stop container", "container_id", c.ID, "error", err)
			return fmt.Errorf("stop container: %w", err)
		}
	}

	log.Info("[Environment] environment stopped", "environment", environmentName, "containers", len(containers))
	return nil
}

func (r *dockerEnvironmentRepository) Remove(ctx context.Context, environmentName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeContainers(ctx, environmentName)
}

// removeContainers force-removes every container labelled with the
// environment name. Callers must hold the write lock.
func (r *dockerEnvironmentRepository) removeContainers(ctx context.Context, environmentName string) error {
	containers, err := r.listContainers(ctx, environmentName)
	if err != nil {
		return err
	}

	for _, c := range containers {
		if err := r.client.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true}); err != nil {
			log.Error("[Environment] failed to remove container", "container_id", c.ID, "error", err)
			return fmt.Errorf("remove container: %w", err)
		}
	}

	if len(containers) > 0 {
		log.Info("[Environment] containers removed", "environment", environmentName, "count", len(containers))
	}
	return nil
}

func (r *dockerEnvironmentRepository) GetStatus(ctx context.Context, environmentName string) (model.Environment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	containers, err := r.listContainers(ctx, environmentName)
	if err != nil {
		return model.Environment{}, err
	}

	env := model.Environment{
		Name:       environmentName,
		Containers: make([]model.Container, 0, len(containers)),
	}

	for _, dc := range containers {
		c := model.Container{
			ID:         dc.ID,
			Name:       strings.TrimPrefix(dc.Names[0], "/"),
			StatusCode: docker.MapDockerStateToContainerStatus(dc.State),
			Ports:      docker.MapDockerPortsToContainerPorts(dc.Ports),
		}
		if c.StatusCode == model.ContainerStatusProblematic {
			c.Error = fmt.Sprintf("Container in problematic state: %s", dc.Status)
		}
		// The list endpoint carries no exit code; inspect stopped containers
		// so status can report how the process ended.
		if c.StatusCode == model.ContainerStatusStopped || c.StatusCode == model.ContainerStatusProblematic {
			if insp, err := r.client.ContainerInspect(ctx, dc.ID); err == nil && insp.State != nil {
				c.ExitCode = insp.State.ExitCode
			}
		}
		if env.ImageTag == "" {
			env.ImageTag = dc.Image
		}
		if env.BuildID == "" {
			env.BuildID = dc.Labels[LabelBuild]
		}
		env.Containers = append(env.Containers, c)
	}

	return env, nil
}

// listContainers returns all containers labelled with the environment name,
// including stopped ones.
func (r *dockerEnvironmentRepository) listContainers(ctx context.Context, environmentName string) ([]container.Summary, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("label", fmt.Sprintf("%s=%s", LabelEnvironment, environmentName))

	containers, err := r.client.ContainerList(ctx, container.ListOptions{All: true, Filters: filterArgs})
	if err != nil {
		log.Error("[Environment] failed to list containers", "environment", environmentName, "error", err)
		return nil, fmt.Errorf("list containers: %w", err)
	}
	return containers, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
