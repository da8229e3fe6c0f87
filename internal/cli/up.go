package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"envforge/internal/application"
	"envforge/internal/application/command/launch_environment"
	"envforge/internal/application/config"
	"envforge/internal/domain/service/build"
	"envforge/internal/domain/service/recipe"
	"envforge/internal/infra/watch"
	"envforge/pkg/log"
)

func newUpCmd(flags *rootFlags) *cobra.Command {
	var (
		noCache      bool
		watchChanges bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Build the environment and launch it",
		Long:  "Builds the environment image and starts its container with the recipe's port published. With --watch, the source tree is monitored and the environment is rebuilt and relaunched on change.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forge, err := newForge(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer forge.Close()

			launch := func() error {
				return forge.CommandBus().Dispatch(launch_environment.LaunchEnvironmentCommand{
					RecipePath:   recipePath(flags),
					Vars:         recipeVars(),
					NoCache:      noCache,
					ReadyTimeout: timeout,
				})
			}

			if err := launch(); err != nil {
				return err
			}

			if !watchChanges {
				return nil
			}
			return watchAndRelaunch(cmd.Context(), forge, flags, launch)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "rebuild every layer regardless of the cache")
	cmd.Flags().BoolVarP(&watchChanges, "watch", "w", false, "rebuild and relaunch when source files change")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "readiness wait for the published port (default from config)")
	return cmd
}

// watchAndRelaunch blocks watching the recipe's source directory and runs the
// launch closure again after each debounced change.
func watchAndRelaunch(ctx context.Context, forge *application.Forge, flags *rootFlags, launch func() error) error {
	if !forge.Config().IsFeatureEnabled(config.FeatureAutoReload) {
		return log.Errorf("auto reload feature is disabled")
	}

	r, sourceDir, err := recipe.Load(recipePath(flags), recipeVars())
	if err != nil {
		return err
	}

	// The build writes into the data directory; watching it would turn every
	// build into another change event.
	ignore := append(r.IgnoreGlobs(), build.DataDirGlobs(sourceDir, forge.Config().GetDataPath())...)

	w, err := watch.New(watch.Config{
		Dir:    sourceDir,
		Ignore: ignore,
		OnChange: func(ctx context.Context, changed []string) error {
			return launch()
		},
	})
	if err != nil {
		return err
	}

	return w.Run(ctx)
}
