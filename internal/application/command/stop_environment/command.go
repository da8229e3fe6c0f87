package stop_environment

// StopEnvironmentCommand represents a command to stop an environment's
// containers.
type StopEnvironmentCommand struct {
	EnvironmentName string
}

// Name returns the name of the command
func (c StopEnvironmentCommand) Name() string {
	return "StopEnvironment"
}
