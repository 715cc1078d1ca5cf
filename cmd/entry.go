package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/afterthoughts/internal/formatter"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/urfave/cli/v3"
)

// EntryList prints a diary's entries with previews, newest first.
func (r *Runner) EntryList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	entries, err := r.supabase.ListEntries(ctx, cmd.String("diary"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(entries) == 0 {
		return r.writePlain("No entries yet.\n")
	}

	for _, e := range entries {
		marker := " "
		if e.IsDraft {
			marker = "*"
		}
		title := e.Title
		if title == "" {
			title = formatter.FormatDate(e.CreatedAt)
		}
		r.writePlain("%s %s  %s (%s)\n", marker, e.ID, title, formatter.FormatDate(e.CreatedAt))
		if preview := formatter.Preview(e.Content); preview != "" {
			r.writePlain("    %s\n", strings.ReplaceAll(preview, "\n", "\n    "))
		}
	}
	return nil
}

// EntryCreate writes an entry, published by default or as a draft with --draft.
func (r *Runner) EntryCreate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	title := strings.TrimSpace(cmd.String("title"))
	content := strings.TrimSpace(cmd.String("content"))
	if title == "" {
		return shared.ErrEmptyTitle
	}
	if content == "" {
		return shared.ErrEmptyContent
	}

	entry, err := r.supabase.CreateEntry(ctx, cmd.String("diary"), title, content, cmd.Bool("draft"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("entry created", "id", entry.ID, "draft", entry.IsDraft)
	if entry.IsDraft {
		return r.writePlain("✓ Draft saved (ID: %s)\n", entry.ID)
	}
	return r.writePlain("✓ Entry published (ID: %s)\n", entry.ID)
}

// EntryEdit rewrites an entry's title and content. The draft flag is untouched.
func (r *Runner) EntryEdit(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	title := strings.TrimSpace(cmd.String("title"))
	content := strings.TrimSpace(cmd.String("content"))
	if title == "" {
		return shared.ErrEmptyTitle
	}
	if content == "" {
		return shared.ErrEmptyContent
	}

	if err := r.supabase.UpdateEntry(ctx, cmd.String("id"), title, content); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Entry updated\n")
}

// EntryPublish promotes a draft to a published entry. Publishing is one-way.
func (r *Runner) EntryPublish(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	title := strings.TrimSpace(cmd.String("title"))
	content := strings.TrimSpace(cmd.String("content"))
	if title == "" {
		return shared.ErrEmptyTitle
	}
	if content == "" {
		return shared.ErrEmptyContent
	}

	if err := r.supabase.PublishEntry(ctx, cmd.String("id"), title, content); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Entry published\n")
}

// EntryDelete removes a single entry.
func (r *Runner) EntryDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	if err := r.supabase.DeleteEntry(ctx, cmd.String("id")); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Entry deleted\n")
}
