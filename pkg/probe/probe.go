// Package probe detects host prerequisites for building and launching
// environments. Each probe reports a name, a value and whether the probed
// facility is available; the doctor command prints the collected results.
package probe

// Probe names
const (
	ProbeDocker         = "docker"
	ProbeDockerBuildKit = "docker-buildkit"
	ProbeOS             = "os"
	ProbeOSArch         = "os-arch"
	ProbeDiskFree       = "disk-free"
	ProbeMemoryTotal    = "memory-total"
)

// Probe represents a host facility that can be detected.
type Probe interface {
	// Name returns the name of the probe.
	Name() string
	// Value returns the probed value (version, size, identifier).
	Value() string
	// IsAvailable returns whether the probed facility is available.
	IsAvailable() bool
}

// Factory creates and returns all probes.
type Factory struct {
	probes []Probe
}

// NewFactory creates a new probe factory. dataPath is the directory whose
// disk capacity the disk probe reports.
func NewFactory(dataPath string) *Factory {
	probes := []Probe{
		NewDockerProbe(),
		NewDockerBuildKitProbe(),
		NewOSProbe(),
		NewOSArchProbe(),
		NewDiskFreeProbe(dataPath),
	}
	if p := NewMemoryTotalProbe(); p != nil {
		probes = append(probes, p)
	}
	return &Factory{probes: probes}
}

// All returns every registered probe.
func (f *Factory) All() []Probe {
	return f.probes
}
