package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/afterthoughts/internal/formatter"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/desertthunder/afterthoughts/internal/tasks"
	"github.com/urfave/cli/v3"
)

// DiaryList prints the account's diaries, newest first.
func (r *Runner) DiaryList(ctx context.Context, cmd *cli.Command) error {
	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	diaries, err := r.supabase.ListDiaries(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(diaries, cmd.Bool("pretty"))
	}

	if len(diaries) == 0 {
		return r.writePlain("No diaries yet. Create one with 'afterthoughts diary create <title>'.\n")
	}

	for _, d := range diaries {
		r.writePlain("%s  %s (created %s)\n", d.ID, d.Title, formatter.FormatDate(d.CreatedAt))
	}
	return nil
}

// DiaryCreate creates a new diary owned by the signed-in account.
func (r *Runner) DiaryCreate(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	if title == "" {
		return fmt.Errorf("%w: diary title is required", shared.ErrMissingArgument)
	}

	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	diary, err := r.supabase.CreateDiary(ctx, session.UserID, title)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("diary created", "id", diary.ID)
	return r.writePlain("✓ Diary created: %s (ID: %s)\n", diary.Title, diary.ID)
}

// DiaryRename updates a diary's title.
func (r *Runner) DiaryRename(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	diaryID := cmd.String("id")
	title := strings.TrimSpace(cmd.String("title"))
	if title == "" {
		return fmt.Errorf("%w: diary title is required", shared.ErrInvalidArgument)
	}

	if err := r.supabase.RenameDiary(ctx, diaryID, title); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Diary renamed to %s\n", title)
}

// DiaryDelete removes a diary and all of its entries, children first.
// A failed child delete aborts the run and leaves the diary intact.
func (r *Runner) DiaryDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	diaryID := cmd.String("id")

	if !cmd.Bool("yes") {
		r.writePlain("Delete diary %s and ALL of its entries? [y/N] ", diaryID)
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			return r.writePlain("Aborted.\n")
		}
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
		close(done)
	}()

	result, err := r.engine.DeleteDiary(ctx, progress, diaryID)
	close(progress)
	<-done

	if err != nil {
		if result != nil && result.DeletedEntries < result.TotalEntries {
			r.writePlain("✗ Aborted after %d/%d entries; the diary was left in place.\n",
				result.DeletedEntries, result.TotalEntries)
		}
		return err
	}

	return r.writePlain("✓ Deleted diary %s (%d entries)\n", diaryID, result.DeletedEntries)
}
