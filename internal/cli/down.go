package cli

import (
	"github.com/spf13/cobra"

	"envforge/internal/application/command/remove_environment"
	"envforge/internal/application/command/stop_environment"
)

func newDownCmd(flags *rootFlags) *cobra.Command {
	var (
		remove       bool
		removeImages bool
	)

	cmd := &cobra.Command{
		Use:   "down [environment]",
		Short: "Stop the environment",
		Long:  "Stops the environment's container. With --remove the container is removed; --remove-images also deletes the environment's tagged images.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := environmentName(flags, args)
			if err != nil {
				return err
			}

			forge, err := newForge(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer forge.Close()

			if remove || removeImages {
				return forge.CommandBus().Dispatch(remove_environment.RemoveEnvironmentCommand{
					EnvironmentName: name,
					RemoveImages:    removeImages,
				})
			}
			return forge.CommandBus().Dispatch(stop_environment.StopEnvironmentCommand{
				EnvironmentName: name,
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "remove the container instead of just stopping it")
	cmd.Flags().BoolVar(&removeImages, "remove-images", false, "also remove the environment's tagged images")
	return cmd
}
