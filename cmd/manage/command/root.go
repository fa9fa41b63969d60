package command

// root.go defines the manage root command and the state shared by its
// subcommands: configuration, logger and an optional database handle.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/logger"
)

type env struct {
	cfg *config.Config
	log *zap.Logger
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "manage",
		Short: "manage - Foodgram administration commands",
		Long: `manage runs one-off administration tasks against the Foodgram database:
- apply schema migrations
- bootstrap ingredients and tags from CSV files
- validate the environment configuration
- purge expired revoked tokens`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			e.cfg, e.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}

	root.AddCommand(
		newMigrateCmd(e),
		newLoadDataCmd(e),
		newCheckConfigCmd(e),
		newPurgeTokensCmd(e),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB validates the configuration and connects to the database.
func (e *env) openDB() (*gorm.DB, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	return database.Open(e.cfg, e.log)
}
