package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/afterthoughts/internal/formatter"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/desertthunder/afterthoughts/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ExportDiary writes one diary with all of its entries to a local file.
func (r *Runner) ExportDiary(ctx context.Context, cmd *cli.Command) error {
	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	diaryID := cmd.String("id")
	format := cmd.String("format")
	output := cmd.String("output")

	entries, err := r.supabase.ListEntries(ctx, diaryID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	diaries, err := r.supabase.ListDiaries(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	dump := tasks.DiaryDump{Entries: entries}
	for _, d := range diaries {
		if d.ID == diaryID {
			dump.Diary = d
			break
		}
	}
	if dump.Diary.ID == "" {
		return fmt.Errorf("%w: %s", shared.ErrDiaryNotFound, diaryID)
	}

	switch format {
	case "markdown", "md":
		path, err := formatter.WriteMarkdownExport(dump, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)
	case "csv":
		result, err := formatter.WriteCSVExport(dump, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", result.EntriesFile)
	case "text", "txt":
		path, err := formatter.WriteTextExport(dump, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportAll dumps every diary and entry as JSON.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "component", "export")
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			logger.Info(update.Message)
		}
		close(done)
	}()

	result, err := r.engine.Dump(ctx, progress, session.UserID)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		r.logger.Warnf("partial dump: %s", msg)
	}

	if output := cmd.String("output"); output != "" {
		data, err := shared.MarshalJSON(result, cmd.Bool("pretty"))
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write dump: %w", err)
		}
		return r.writePlain("✓ Journal dumped to %s (%d diaries)\n", output, len(result.Diaries))
	}

	return r.writeJSON(result, cmd.Bool("pretty"))
}
