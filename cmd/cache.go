package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/afterthoughts/internal/repositories"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/desertthunder/afterthoughts/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheSync mirrors the account's diaries and entries into the local database.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	config := r.config
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	engine := tasks.NewEngine(r.supabase,
		repositories.NewDiaryRepository(db),
		repositories.NewEntryRepository(db),
	)

	logger := shared.WithLogger(r.logger, "component", "cache")
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			logger.Info(update.Message)
		}
		close(done)
	}()

	result, err := engine.SyncCache(ctx, progress, session.UserID)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	return r.writePlain("✓ Cache synced: %d diaries, %d entries\n", result.Diaries, result.Entries)
}

// CacheClear drops all cached rows. Remote data is untouched.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := repositories.NewEntryRepository(db).Clear(); err != nil {
		return err
	}
	if err := repositories.NewDiaryRepository(db).Clear(); err != nil {
		return err
	}

	r.logger.Info("cache cleared", "path", config.Database.Path)
	return r.writePlain("✓ Cache cleared\n")
}
