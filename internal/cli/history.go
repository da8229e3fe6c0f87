package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"envforge/internal/application/query/get_build_history"
	"envforge/internal/domain/model"
	"envforge/pkg/digest"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded builds, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipeName := ""
			if !all {
				name, err := environmentName(flags, nil)
				if err != nil {
					return err
				}
				recipeName = name
			}

			forge, err := newForge(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer forge.Close()

			result, err := forge.QueryBus().Dispatch(get_build_history.GetBuildHistoryQuery{
				RecipeName: recipeName,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			builds, ok := result.([]*model.Build)
			if !ok {
				return fmt.Errorf("unexpected query result type %T", result)
			}

			if len(builds) == 0 {
				cmd.Println("No builds recorded.")
				return nil
			}

			for _, b := range builds {
				printBuild(cmd, b)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of builds to show")
	cmd.Flags().BoolVar(&all, "all", false, "show builds of every recipe, not just the current one")
	return cmd
}

func printBuild(cmd *cobra.Command, b *model.Build) {
	duration := ""
	if !b.FinishedAt.IsZero() {
		duration = "in " + b.FinishedAt.Sub(b.StartedAt).Round(10*time.Millisecond).String()
	}

	cmd.Printf("%s ago  %s  %s  %s  cache %d/%d  %s\n",
		units.HumanDuration(time.Since(b.StartedAt)),
		b.RecipeName,
		digest.Short(b.Digest),
		b.Status,
		b.CacheHits(), len(b.Steps),
		duration)

	if b.Status != model.BuildStatusFailed {
		return
	}
	if b.Error != "" {
		cmd.Printf("    %s\n", b.Error)
	}
	for _, s := range b.Steps {
		if s.Status != model.StepStatusFailed || s.Output == "" {
			continue
		}
		for _, line := range strings.Split(s.Output, "\n") {
			cmd.Printf("      %s\n", line)
		}
	}
}
