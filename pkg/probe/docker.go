package probe

import (
	"os/exec"
	"strings"
)

// DockerProbe detects the docker CLI and its version.
type DockerProbe struct {
	version string
}

// NewDockerProbe creates a new DockerProbe.
func NewDockerProbe() *DockerProbe {
	return &DockerProbe{}
}

// Name implements Probe.
func (p *DockerProbe) Name() string {
	return ProbeDocker
}

// Value implements Probe.
func (p *DockerProbe) Value() string {
	return p.version
}

// IsAvailable checks if docker is installed and parses its version.
func (p *DockerProbe) IsAvailable() bool {
	output, err := exec.Command("docker", "--version").Output()
	if err != nil {
		return false
	}

	// Output looks like "Docker version 27.1.1, build 6312585".
	versionStr := string(output)
	if !strings.Contains(versionStr, "Docker version") {
		return false
	}
	parts := strings.Split(versionStr, " ")
	if len(parts) > 2 {
		p.version = strings.TrimSuffix(parts[2], ",")
	}
	return true
}

// DockerBuildKitProbe detects whether `docker buildx` is usable, which is
// what provides the layer-caching behaviour the build pipeline relies on.
type DockerBuildKitProbe struct {
	version string
}

// NewDockerBuildKitProbe creates a new DockerBuildKitProbe.
func NewDockerBuildKitProbe() *DockerBuildKitProbe {
	return &DockerBuildKitProbe{}
}

// Name implements Probe.
func (p *DockerBuildKitProbe) Name() string {
	return ProbeDockerBuildKit
}

// Value implements Probe.
func (p *DockerBuildKitProbe) Value() string {
	return p.version
}

// IsAvailable checks if docker buildx is available.
func (p *DockerBuildKitProbe) IsAvailable() bool {
	output, err := exec.Command("docker", "buildx", "version").Output()
	if err != nil {
		return false
	}

	fields := strings.Fields(string(output))
	if len(fields) >= 2 {
		p.version = fields[1]
	}
	return true
}
