package launch_environment

import "time"

// LaunchEnvironmentCommand represents a command to build an environment and
// start its container.
type LaunchEnvironmentCommand struct {
	// RecipePath is the path of the recipe file.
	RecipePath string
	// Vars override process environment variables during recipe substitution.
	Vars map[string]string
	// NoCache disables layer cache lookups for the build.
	NoCache bool
	// ReadyTimeout overrides the configured readiness wait. Zero keeps the
	// configured value.
	ReadyTimeout time.Duration
}

// Name returns the name of the command
func (c LaunchEnvironmentCommand) Name() string {
	return "LaunchEnvironment"
}
