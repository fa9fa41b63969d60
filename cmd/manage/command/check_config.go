package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCheckConfigCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the environment configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintln(out, "✓ Configuration is valid.")
			fmt.Fprintf(out, "Environment: %s\n", e.cfg.GoEnv)
			fmt.Fprintf(out, "Listen:      %s\n", e.cfg.ListenAddr())
			fmt.Fprintf(out, "Database:    %s\n", e.cfg.DBDriver)
			fmt.Fprintf(out, "Storage:     %s\n", e.cfg.StorageBackend)
			fmt.Fprintf(out, "Cache:       %s\n", enabled(e.cfg.RedisURL != ""))
			return nil
		},
	}
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
