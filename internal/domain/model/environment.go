package model

// ContainerStatusCode classifies the runtime state of an environment
// container.
type ContainerStatusCode int8

const (
	ContainerStatusUnknown     ContainerStatusCode = 0
	ContainerStatusActive      ContainerStatusCode = 1
	ContainerStatusIdle        ContainerStatusCode = 2
	ContainerStatusRestarting  ContainerStatusCode = 3
	ContainerStatusProblematic ContainerStatusCode = 4
	ContainerStatusStopped     ContainerStatusCode = 5
)

// Environment describes a provisioned environment and the containers
// currently running from its image.
type Environment struct {
	Name       string      `json:"name"`
	ImageTag   string      `json:"image_tag"`
	BuildID    string      `json:"build_id,omitempty"`
	Containers []Container `json:"containers"`
}

// Container is the runtime view of a single launched container.
type Container struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	StatusCode ContainerStatusCode `json:"status_code"`
	ExitCode   int                 `json:"exit_code"`
	Error      string              `json:"error,omitempty"`
	Ports      []ContainerPort     `json:"ports,omitempty"`
}

// ContainerPort is a published port mapping.
type ContainerPort struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
}

// IsRunning reports whether the environment has at least one active
// container.
func (e *Environment) IsRunning() bool {
	for _, c := range e.Containers {
		if c.StatusCode == ContainerStatusActive {
			return true
		}
	}
	return false
}
