package prune_layers

// PruneLayersCommand represents a command to remove cached layer images.
type PruneLayersCommand struct{}

// Name returns the name of the command
func (c PruneLayersCommand) Name() string {
	return "PruneLayers"
}
