package remove_environment

// RemoveEnvironmentCommand represents a command to remove an environment's
// containers and optionally its images.
type RemoveEnvironmentCommand struct {
	EnvironmentName string
	// RemoveImages also removes the environment's tagged images.
	RemoveImages bool
}

// Name returns the name of the command
func (c RemoveEnvironmentCommand) Name() string {
	return "RemoveEnvironment"
}
