// Package cli defines the command line interface of the envforge binary.
package cli

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"envforge/internal/application"
	"envforge/internal/application/config"
	"envforge/internal/domain/service/recipe"
	"envforge/pkg/log"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	recipePath string
}

// Execute runs the CLI. templatesFS holds the embedded scaffolding files used
// by the init command.
func Execute(templatesFS fs.FS) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return newRootCmd(templatesFS).ExecuteContext(ctx)
}

func newRootCmd(templatesFS fs.FS) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "envforge",
		Short:         "Reproducible environment provisioning and launching",
		Long:          "envforge builds container images from declarative recipes in content-addressed layers and launches the result with the published port ready.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultFile, "path of the configuration file")
	root.PersistentFlags().StringVarP(&flags.recipePath, "recipe", "r", "", "path of the recipe file (defaults to forge.yaml)")

	root.AddCommand(
		newBuildCmd(flags),
		newUpCmd(flags),
		newDownCmd(flags),
		newStatusCmd(flags),
		newLogsCmd(flags),
		newHistoryCmd(flags),
		newInitCmd(templatesFS),
		newDoctorCmd(flags),
		newPruneCmd(flags),
		newUpdateCmd(flags),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the configuration and initializes logging from it.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	log.InitLog(cfg.LogLevel)
	return cfg, nil
}

// newForge wires the application for commands that talk to the container
// engine. The caller must Close the returned instance.
func newForge(ctx context.Context, flags *rootFlags) (*application.Forge, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return application.NewForge(ctx, cfg)
}

// recipePath resolves the recipe file path from the flag or the default.
func recipePath(flags *rootFlags) string {
	if flags.recipePath != "" {
		return flags.recipePath
	}
	return recipe.DefaultFile
}

// environmentName resolves the environment to operate on: an explicit
// argument wins, otherwise the recipe's name is used.
func environmentName(flags *rootFlags, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	r, _, err := recipe.Load(recipePath(flags), recipeVars())
	if err != nil {
		return "", err
	}
	return r.Name, nil
}

// recipeVars exposes the process environment to recipe substitution.
func recipeVars() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			vars[kv[:i]] = kv[i+1:]
		}
	}
	return vars
}
