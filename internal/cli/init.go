package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"envforge/internal/domain/service/recipe"
	"envforge/pkg/embedded"
)

func newInitCmd(templatesFS fs.FS) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a recipe file in the given directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			target := filepath.Join(dir, recipe.DefaultFile)
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", target)
			}

			manager := embedded.NewManager(templatesFS, dir)
			if err := manager.SyncFiles(); err != nil {
				return err
			}

			cmd.Printf("Created %s. Adjust the recipe and run 'envforge up'.\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing recipe file")
	return cmd
}
