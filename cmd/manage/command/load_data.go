package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"foodgram/internal/cache"
	"foodgram/internal/database"
	"foodgram/internal/seed"
)

func newLoadDataCmd(e *env) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "load-data",
		Short: "Load ingredients.csv and tags.csv into the database",
		Long: `Load reference data from CSV files. ingredients.csv holds name,measurement_unit
rows and is required; tags.csv holds name,color,slug rows and is optional.
Rows that already exist are skipped, so the command can be run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = e.cfg.DataDir
			}

			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db, e.log); err != nil {
				return err
			}

			rdb, err := database.OpenRedis(e.cfg, e.log)
			if err != nil {
				// a stale cache only delays new rows until CACHE_TTL
				e.log.Warn("redis unavailable, cached catalogue is not invalidated")
			}
			if rdb != nil {
				defer rdb.Close()
			}

			loader := seed.NewLoader(db, cache.New(rdb, e.cfg.CacheTTL), e.log)
			results, err := loader.LoadDir(cmd.Context(), dir)
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "=== %s: %d rows read, %d inserted ===\n", r.File, r.Read, r.Inserted)
			}
			if err != nil {
				return fmt.Errorf("load data: %w", err)
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "=== Loading finished ===")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the CSV files (default DATA_DIR)")
	return cmd
}
