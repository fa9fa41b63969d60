package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"foodgram/internal/api/repository"
	"foodgram/internal/database"
)

func newPurgeTokensCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete revoked token entries that have expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			n, err := repository.NewRevokedTokenRepository(db).DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired entries.\n", n)
			return nil
		},
	}
}
