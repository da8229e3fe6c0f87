package cli

import (
	"github.com/spf13/cobra"

	"envforge/internal/application/command/update_forge"
)

func newUpdateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update <version>",
		Short: "Update the binary to a released version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forge, err := newForge(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer forge.Close()

			return forge.CommandBus().Dispatch(update_forge.UpdateForgeCommand{
				Version: args[0],
			})
		},
	}
}
