package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/afterthoughts/internal/formatter"
	"github.com/desertthunder/afterthoughts/internal/models"
)

var (
	_ list.Item = diaryItem{}
	_ list.Item = entryItem{}
)

// diaryItem wraps [models.Diary] to implement [list.Item].
type diaryItem struct {
	diary models.Diary
}

func (i diaryItem) FilterValue() string { return i.diary.Title }
func (i diaryItem) Title() string       { return i.diary.Title }
func (i diaryItem) Description() string {
	return fmt.Sprintf("created %s", formatter.FormatDate(i.diary.CreatedAt))
}

// entryItem wraps [models.Entry] to implement [list.Item].
type entryItem struct {
	entry models.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string {
	title := i.entry.Title
	if title == "" {
		title = formatter.FormatDate(i.entry.CreatedAt)
	}
	if i.entry.IsDraft {
		return fmt.Sprintf("%s (draft)", title)
	}
	return title
}
func (i entryItem) Description() string {
	return formatter.Preview(i.entry.Content)
}
