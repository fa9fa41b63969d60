package command

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"foodgram/internal/database"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table, index and constraint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db, e.log); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Migrations applied.")
			return nil
		},
	}
}
