package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/afterthoughts/internal/services"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var supabase *services.SupabaseService
	if config.Credentials.Supabase.URL != "" && config.Credentials.Supabase.AnonKey != "" {
		if svc, err := services.NewSupabaseService(map[string]string{
			"url":      config.Credentials.Supabase.URL,
			"anon_key": config.Credentials.Supabase.AnonKey,
		}); err == nil {
			supabase = svc
		}
	}

	var speech services.SpeechProvider
	if config.Credentials.Soniox.APIKey != "" {
		if svc, err := services.NewSonioxService(map[string]string{
			"api_key": config.Credentials.Soniox.APIKey,
			"model":   config.Credentials.Soniox.Model,
		}, config.Credentials.Soniox.LanguageHints); err == nil {
			speech = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Supabase: supabase,
		Speech:   speech,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:    "afterthoughts",
		Usage:   "Keep dated journal entries with autosaved drafts and voice dictation",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
