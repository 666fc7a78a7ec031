// package formatter renders catalog listings as plain text, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
)

// Format selects an output format.
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat maps a flag value to a [Format]. The empty string means [Text].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Content renders a content listing with the given heading.
func Content(f Format, heading string, items []models.Content) ([]byte, error) {
	switch f {
	case CSV:
		return ContentToCSV(items)
	case Markdown:
		return ContentToMarkdown(heading, items)
	default:
		return ContentToText(heading, items)
	}
}

// History renders watch history entries.
func History(f Format, heading string, entries []models.HistoryEntry) ([]byte, error) {
	switch f {
	case CSV:
		return HistoryToCSV(entries)
	case Markdown:
		return HistoryToMarkdown(heading, entries)
	default:
		return HistoryToText(heading, entries)
	}
}

// Plans renders subscription plans.
func Plans(f Format, plans []models.Plan) ([]byte, error) {
	switch f {
	case CSV:
		return PlansToCSV(plans)
	case Markdown:
		return PlansToMarkdown(plans)
	default:
		return PlansToText(plans)
	}
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range records {
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

// ContentToCSV writes columns ID, Title, Type, Year, Genres.
func ContentToCSV(items []models.Content) ([]byte, error) {
	records := make([][]string, 0, len(items))
	for _, c := range items {
		records = append(records, []string{
			strconv.Itoa(c.ID),
			c.Title,
			string(c.ContentType),
			strconv.Itoa(c.ReleaseYear),
			c.GenreNames(),
		})
	}
	return writeCSV([]string{"ID", "Title", "Type", "Year", "Genres"}, records)
}

// ContentToMarkdown renders a heading and a numbered list.
func ContentToMarkdown(heading string, items []models.Content) ([]byte, error) {
	var buf bytes.Buffer

	if heading != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	}
	buf.WriteString(fmt.Sprintf("**Titles**: %d\n\n", len(items)))

	for i, c := range items {
		buf.WriteString(fmt.Sprintf("%d. **%s** (%d) _%s_", i+1, c.Title, c.ReleaseYear, c.ContentType.Label()))
		if genres := c.GenreNames(); genres != "" {
			buf.WriteString(fmt.Sprintf(" [%s]", genres))
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// ContentToText renders one line per title.
func ContentToText(heading string, items []models.Content) ([]byte, error) {
	var buf bytes.Buffer

	if heading != "" {
		buf.WriteString(fmt.Sprintf("%s (%d)\n\n", heading, len(items)))
	}
	if len(items) == 0 {
		buf.WriteString("Nothing to show.\n")
		return buf.Bytes(), nil
	}

	for _, c := range items {
		buf.WriteString(fmt.Sprintf("%5d  %s (%d) - %s\n", c.ID, c.Title, c.ReleaseYear, c.ContentType.Label()))
	}
	return buf.Bytes(), nil
}

// ContentDetail renders a single title with its episodes.
func ContentDetail(c *models.Content) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (%d)\n", c.Title, c.ReleaseYear))
	buf.WriteString(fmt.Sprintf("Type: %s\n", c.ContentType.Label()))
	if genres := c.GenreNames(); genres != "" {
		buf.WriteString(fmt.Sprintf("Genres: %s\n", genres))
	}
	if c.Description != "" {
		buf.WriteString(fmt.Sprintf("\n%s\n", c.Description))
	}

	if len(c.Episodes) > 0 {
		buf.WriteString(fmt.Sprintf("\nEpisodes (%d)\n", len(c.Episodes)))
		for _, e := range c.Episodes {
			buf.WriteString(fmt.Sprintf("%5d  %s %s [%s]\n", e.ID, e.Code(), e.Title, shared.FormatTime(e.DurationSeconds())))
		}
	}
	return buf.Bytes()
}

// HistoryToCSV writes columns ID, Title, Watched, Percentage, Date.
func HistoryToCSV(entries []models.HistoryEntry) ([]byte, error) {
	records := make([][]string, 0, len(entries))
	for _, h := range entries {
		records = append(records, []string{
			strconv.Itoa(h.ID),
			h.Title(),
			strconv.Itoa(h.WatchedTime),
			strconv.FormatFloat(h.WatchedPercentage, 'f', 1, 64),
			h.WatchedDate,
		})
	}
	return writeCSV([]string{"ID", "Title", "Watched", "Percentage", "Date"}, records)
}

// HistoryToMarkdown renders a heading and a numbered list with progress.
func HistoryToMarkdown(heading string, entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer

	if heading != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	}
	for i, h := range entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%.0f%%)\n", i+1, h.Title(), shared.FormatTime(float64(h.WatchedTime)), h.WatchedPercentage))
	}
	return buf.Bytes(), nil
}

// HistoryToText renders one line per entry.
func HistoryToText(heading string, entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer

	if heading != "" {
		buf.WriteString(fmt.Sprintf("%s (%d)\n\n", heading, len(entries)))
	}
	if len(entries) == 0 {
		buf.WriteString("Nothing to show.\n")
		return buf.Bytes(), nil
	}

	for _, h := range entries {
		buf.WriteString(fmt.Sprintf("%s  %5.1f%%  %s\n", shared.FormatTime(float64(h.WatchedTime)), h.WatchedPercentage, h.Title()))
	}
	return buf.Bytes(), nil
}

// PlansToCSV writes columns ID, Name, Price, Screens, Quality.
func PlansToCSV(plans []models.Plan) ([]byte, error) {
	records := make([][]string, 0, len(plans))
	for _, p := range plans {
		records = append(records, []string{
			strconv.Itoa(p.ID),
			p.Name,
			p.Price,
			strconv.Itoa(p.MaxScreens),
			p.VideoQuality,
		})
	}
	return writeCSV([]string{"ID", "Name", "Price", "Screens", "Quality"}, records)
}

// PlansToMarkdown renders plans as a table.
func PlansToMarkdown(plans []models.Plan) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Plans\n\n")
	buf.WriteString("| ID | Name | Price | Screens | Quality |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, p := range plans {
		buf.WriteString(fmt.Sprintf("| %d | %s | $%s | %d | %s |\n", p.ID, p.Name, p.Price, p.MaxScreens, p.VideoQuality))
	}
	return buf.Bytes(), nil
}

// PlansToText renders one line per plan.
func PlansToText(plans []models.Plan) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range plans {
		buf.WriteString(fmt.Sprintf("%3d  %-10s $%-7s %-10s %s\n", p.ID, p.Name, p.Price, p.Screens(), p.VideoQuality))
	}
	return buf.Bytes(), nil
}

// WriteFile writes rendered output to path, or to stdout when path is empty.
func WriteFile(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
