package cli

import (
	"github.com/spf13/cobra"

	"envforge/pkg/probe"
)

func newDoctorCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check host prerequisites for building and launching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			factory := probe.NewFactory(cfg.GetDataPath())
			failed := 0
			for _, p := range factory.All() {
				if p.IsAvailable() {
					cmd.Printf("ok    %-16s %s\n", p.Name(), p.Value())
				} else {
					cmd.Printf("FAIL  %-16s not available\n", p.Name())
					failed++
				}
			}

			if failed > 0 {
				cmd.Printf("\n%d check(s) failed.\n", failed)
			}
			return nil
		},
	}
}
