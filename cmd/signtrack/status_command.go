package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"signtrack/internal/config"
	"signtrack/internal/domain"
	"signtrack/internal/infra/sqlite"
	"signtrack/internal/infra/sqlite/migrations"
	"signtrack/internal/repository"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the journaled state of the current batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqlite.NewSQLite(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("journal initialization failed: %w", err)
	}
	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("journal migrations failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	snap, err := repository.NewGormJournalRepo(db).LoadCurrent(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Println("No tracked batch in the journal.")
			return nil
		}
		return err
	}

	fmt.Println(renderSnapshot(*snap))
	return nil
}
