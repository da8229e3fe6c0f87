package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"envforge/internal/application/query/get_environment_logs"
	"envforge/internal/domain/model"
)

func newLogsCmd(flags *rootFlags) *cobra.Command {
	var (
		tail  int
		since time.Duration
		until time.Duration
	)

	cmd := &cobra.Command{
		Use:   "logs [environment]",
		Short: "Show the environment's container logs",
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

			query := get_environment_logs.GetEnvironmentLogsQuery{
				EnvironmentName: name,
				Tail:            tail,
			}
			now := time.Now()
			if since > 0 {
				query.Since = now.Add(-since).Unix()
			}
			if until > 0 {
				query.Until = now.Add(-until).Unix()
			}

			result, err := forge.QueryBus().Dispatch(query)
			if err != nil {
				return err
			}

			logs, ok := result.(model.Logs)
			if !ok {
				return fmt.Errorf("unexpected query result type %T", result)
			}

			for _, entry := range logs.Logs {
				prefix := ""
				if entry.Channel == model.LogChannelStderr {
					prefix = "! "
				}
				ts := time.UnixMilli(entry.Timestamp).Format(time.RFC3339)
				cmd.Printf("%s %s%s\n", ts, prefix, entry.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 0, "limit output to the last N lines per container")
	cmd.Flags().DurationVar(&since, "since", 0, "only show logs newer than this relative duration (e.g. 10m)")
	cmd.Flags().DurationVar(&until, "until", 0, "only show logs older than this relative duration")
	return cmd
}
