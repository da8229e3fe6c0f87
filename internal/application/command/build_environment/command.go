package build_environment

// BuildEnvironmentCommand represents a command to build an environment image
// from a recipe file.
type BuildEnvironmentCommand struct {
	// RecipePath is the path of the recipe file.
	RecipePath string
	// Vars override process environment variables during recipe substitution.
	Vars map[string]string
	// NoCache disables layer cache lookups for this build.
	NoCache bool
}

// Name returns the name of the command
func (c BuildEnvironmentCommand) Name() string {
	return "BuildEnvironment"
}
