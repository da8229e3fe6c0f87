package update_forge

// UpdateForgeCommand represents a command to update the binary to a specific
// version.
type UpdateForgeCommand struct {
	Version string
}

// Name returns the name of the command
func (c UpdateForgeCommand) Name() string {
	return "UpdateForge"
}
