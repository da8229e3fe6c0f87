package cli

import (
	"github.com/spf13/cobra"

	"envforge/internal/application/command/prune_layers"
)

func newPruneCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove cached layer images",
		Long:  "Removes the content-addressed layer images from the local engine. Tagged environment images are kept; the next build rebuilds every layer.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forge, err := newForge(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer forge.Close()

			return forge.CommandBus().Dispatch(prune_layers.PruneLayersCommand{})
		},
	}
}
