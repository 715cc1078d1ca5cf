package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/services"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/desertthunder/afterthoughts/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	supabase *services.SupabaseService
	speech   services.SpeechProvider
	logger   *log.Logger
	output   io.Writer
	engine   *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Supabase *services.SupabaseService
	Speech   services.SpeechProvider
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	engine := tasks.NewEngine(opts.Supabase, nil, nil)

	return &Runner{
		config:   opts.Config,
		supabase: opts.Supabase,
		speech:   opts.Speech,
		logger:   opts.Logger,
		output:   opts.Output,
		engine:   engine,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, diaryCommand, entryCommand, exportCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSession restores any persisted session and returns a valid one,
// refreshing the token when needed. The refreshed tokens are re-persisted.
func (r *Runner) requireSession(ctx context.Context) (*models.Session, error) {
	if stored := loadSession(); stored != nil {
		r.supabase.RestoreSession(stored)
	}

	session, err := r.supabase.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: run 'afterthoughts auth login' first", shared.ErrNotAuthenticated)
	}

	if err := saveSession(session); err != nil {
		r.logger.Warnf("failed to persist session: %v", err)
	}
	return session, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// sessionFilePath is where sign-in tokens persist between CLI invocations.
func sessionFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".afterthoughts", "session.json"), nil
}

// saveSession persists the session tokens for later runs.
func saveSession(session *models.Session) error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// loadSession restores persisted session tokens, returning nil when absent.
func loadSession() *models.Session {
	path, err := sessionFilePath()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil
	}
	return &session
}

// clearSession removes the persisted session file.
func clearSession() {
	if path, err := sessionFilePath(); err == nil {
		os.Remove(path)
	}
}
