package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"envforge/internal/application/query/get_environment_status"
	"envforge/internal/domain/model"
	"envforge/pkg/yaml"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status [environment]",
		Short: "Show the environment's containers and their states",
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

			result, err := forge.QueryBus().Dispatch(get_environment_status.GetEnvironmentStatusQuery{
				EnvironmentName: name,
			})
			if err != nil {
				return err
			}

			env, ok := result.(model.Environment)
			if !ok {
				return fmt.Errorf("unexpected query result type %T", result)
			}

			switch output {
			case "yaml", "json":
				return printEnvironmentMarshaled(cmd, &env, output)
			default:
				printEnvironment(cmd, &env)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: yaml or json")
	return cmd
}

func printEnvironmentMarshaled(cmd *cobra.Command, env *model.Environment, format string) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal environment: %w", err)
	}
	if format == "yaml" {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return err
		}
	}
	cmd.Println(string(data))
	return nil
}

func printEnvironment(cmd *cobra.Command, env *model.Environment) {
	cmd.Printf("Environment: %s\n", env.Name)
	if env.ImageTag != "" {
		cmd.Printf("Image:       %s\n", env.ImageTag)
	}
	if len(env.Containers) == 0 {
		cmd.Println("No containers found. Run 'envforge up' to launch the environment.")
		return
	}

	for _, c := range env.Containers {
		line := fmt.Sprintf("  %s  %s", c.Name, containerStatusLabel(c.StatusCode))
		if c.StatusCode == model.ContainerStatusStopped || c.StatusCode == model.ContainerStatusProblematic {
			line += fmt.Sprintf(" (exit %d)", c.ExitCode)
		}
		for _, p := range c.Ports {
			line += fmt.Sprintf("  %d/%s", p.Port, p.Protocol)
		}
		if c.Error != "" {
			line += "  " + c.Error
		}
		cmd.Println(line)
	}

	if !env.IsRunning() {
		cmd.Println("Environment is not running. Run 'envforge up' to launch it.")
	}
}

func containerStatusLabel(code model.ContainerStatusCode) string {
	switch code {
	case model.ContainerStatusActive:
		return "running"
	case model.ContainerStatusIdle:
		return "created"
	case model.ContainerStatusRestarting:
		return "restarting"
	case model.ContainerStatusProblematic:
		return "problematic"
	case model.ContainerStatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
