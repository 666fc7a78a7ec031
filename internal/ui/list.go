package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/desertthunder/streamz/internal/tasks"
)

var (
	_ list.Item = homeItem{}
	_ list.Item = episodeItem{}
)

// homeItem is one entry of a home page row: a title, or a history entry for continue watching.
type homeItem struct {
	section tasks.Section
	content *models.Content
	history *models.HistoryEntry
}

func (i homeItem) FilterValue() string { return i.Title() }

func (i homeItem) Title() string {
	if i.history != nil {
		return i.history.Title()
	}
	return i.content.Title
}

func (i homeItem) Description() string {
	parts := []string{i.section.Title()}
	switch {
	case i.history != nil:
		parts = append(parts, fmt.Sprintf("%.0f%% watched", i.history.WatchedPercentage))
		parts = append(parts, shared.FormatTime(float64(i.history.WatchedTime)))
	case i.content != nil:
		parts = append(parts, i.content.ContentType.Label(), fmt.Sprint(i.content.ReleaseYear))
		if genres := i.content.GenreNames(); genres != "" {
			parts = append(parts, genres)
		}
	}
	return strings.Join(parts, " • ")
}

// contentID returns the catalog id to open, or 0 when the entry only names an episode.
func (i homeItem) contentID() int {
	switch {
	case i.content != nil:
		return i.content.ID
	case i.history.Content != nil:
		return *i.history.Content
	case i.history.ContentDetails != nil:
		return i.history.ContentDetails.ID
	default:
		return 0
	}
}

// episodeItem wraps [models.Episode] to implement [list.Item].
type episodeItem struct {
	episode models.Episode
}

func (i episodeItem) FilterValue() string { return i.episode.Title }
func (i episodeItem) Title() string {
	return fmt.Sprintf("%s %s", i.episode.Code(), i.episode.Title)
}
func (i episodeItem) Description() string {
	return fmt.Sprintf("%d min", i.episode.Duration)
}

// homeItems flattens the loaded rows in display order, skipping empty ones.
func homeItems(page *tasks.HomePage) []list.Item {
	var items []list.Item
	if page == nil {
		return items
	}
	for _, row := range page.Rows {
		for i := range row.History {
			items = append(items, homeItem{section: row.Section, history: &row.History[i]})
		}
		for i := range row.Items {
			items = append(items, homeItem{section: row.Section, content: &row.Items[i]})
		}
	}
	return items
}

func episodeItems(c *models.Content) []list.Item {
	items := make([]list.Item, len(c.Episodes))
	for i, e := range c.Episodes {
		items[i] = episodeItem{episode: e}
	}
	return items
}
