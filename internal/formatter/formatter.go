// package formatter provides entry previews and journal exports (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/tasks"
)

const (
	// PreviewLines caps how many leading lines of an entry appear in list views.
	PreviewLines = 2

	// PreviewChars caps a preview's total length before truncation.
	PreviewChars = 150
)

// Preview condenses entry content for list display: the first two lines
// joined, hard-truncated at 150 characters with a trailing ellipsis. Content
// at or under the limit is returned without the suffix.
func Preview(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > PreviewLines {
		lines = lines[:PreviewLines]
	}
	preview := strings.Join(lines, "\n")

	runes := []rune(preview)
	if len(runes) <= PreviewChars {
		return preview
	}
	return string(runes[:PreviewChars]) + "..."
}

// FormatDate renders an entry timestamp the way list rows display it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// ExportToCSV converts a diary dump to CSV format with columns: ID, Title, Content, Draft, Created, Updated
func ExportToCSV(dump tasks.DiaryDump) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Content", "Draft", "Created", "Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range dump.Entries {
		record := []string{
			entry.ID,
			entry.Title,
			entry.Content,
			fmt.Sprintf("%t", entry.IsDraft),
			entry.CreatedAt.Format(time.RFC3339),
			entry.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a diary dump to Markdown, one section per entry, newest first.
func ExportToMarkdown(dump tasks.DiaryDump) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", dump.Diary.Title))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(dump.Entries)))

	for _, entry := range dump.Entries {
		buf.WriteString(fmt.Sprintf("## %s\n\n", entryHeading(entry)))
		if entry.IsDraft {
			buf.WriteString("*Draft*\n\n")
		}
		buf.WriteString(entry.Content)
		buf.WriteString("\n\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a diary dump to plain text format
func ExportToText(dump tasks.DiaryDump) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Diary: %s\n", dump.Diary.Title))
	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(dump.Entries)))

	for i, entry := range dump.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, entryHeading(entry), FormatDate(entry.CreatedAt)))
		buf.WriteString(entry.Content)
		buf.WriteString("\n\n")
	}

	return buf.Bytes(), nil
}

func entryHeading(entry models.Entry) string {
	if strings.TrimSpace(entry.Title) != "" {
		return entry.Title
	}
	return FormatDate(entry.CreatedAt)
}

// CSVExportResult contains the path of the file created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile string
}

// WriteCSVExport exports a diary to CSV.
//
// Defaults to the diary ID as the base filename & creates {base}_entries.csv
func WriteCSVExport(dump tasks.DiaryDump, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = dump.Diary.ID
	}

	csvData, err := ExportToCSV(dump)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_entries.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	return &CSVExportResult{EntriesFile: entriesFile}, nil
}

// WriteMarkdownExport exports a diary to Markdown.
//
// Defaults to {diary.ID}.md as the filename.
func WriteMarkdownExport(dump tasks.DiaryDump, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.md", dump.Diary.ID)
	}

	mdData, err := ExportToMarkdown(dump)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a diary to plain text format.
//
// Defaults to {diary.ID}.txt as the filename.
func WriteTextExport(dump tasks.DiaryDump, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.txt", dump.Diary.ID)
	}

	textData, err := ExportToText(dump)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
