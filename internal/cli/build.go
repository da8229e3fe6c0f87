package cli

import (
	"github.com/spf13/cobra"

	"envforge/internal/application/command/build_environment"
)

func newBuildCmd(flags *rootFlags) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the environment image from the recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forge, err := newForge(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer forge.Close()

			return forge.CommandBus().Dispatch(build_environment.BuildEnvironmentCommand{
				RecipePath: recipePath(flags),
				Vars:       recipeVars(),
				NoCache:    noCache,
			})
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "rebuild every layer regardless of the cache")
	return cmd
}
