package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/afterthoughts/internal/repositories"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/desertthunder/afterthoughts/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive journal.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.supabase == nil {
		return fmt.Errorf("%w: backend not configured, check config.toml", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/afterthoughts-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if stored := loadSession(); stored != nil {
		r.supabase.RestoreSession(stored)
	}

	opts := ui.Opts{
		Auth:             r.supabase,
		Store:            r.supabase,
		Engine:           r.engine,
		Speech:           r.speech,
		AutosaveInterval: time.Duration(r.config.Editor.AutosaveSeconds) * time.Second,
		IdleTimeout:      time.Duration(r.config.Session.IdleMinutes) * time.Minute,
	}

	// Theme preference persists in the local cache database when available.
	if db, err := shared.NewDatabase(r.config.Database.Path); err == nil {
		defer db.Close()
		if err := shared.RunMigrations(db); err == nil {
			opts.Prefs = repositories.NewKVRepository(db)
		}
	}

	model := ui.NewModel(ctx, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
