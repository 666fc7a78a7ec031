package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ContentType discriminates catalog entries.
type ContentType string

const (
	Movie       ContentType = "movie"
	Series      ContentType = "series"
	Documentary ContentType = "documentary"
)

// Label returns a human readable name for the content type.
func (c ContentType) Label() string {
	switch c {
	case Movie:
		return "Movie"
	case Series:
		return "Series"
	case Documentary:
		return "Documentary"
	default:
		return string(c)
	}
}

// User is the account record returned by the backend.
//
// Plan is kept as a [PlanRef] because the profile endpoint answers with the plan's primary key while some clients expand it.
type User struct {
	ID                  int     `json:"id"`
	Username            string  `json:"username"`
	Email               string  `json:"email"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	Plan                PlanRef `json:"plan"`
	SubscriptionActive  bool    `json:"subscription_active"`
	SubscriptionEndDate *string `json:"subscription_end_date"`
}

// DisplayName returns "First Last", falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// PlanRef references a subscription plan either by id or as an expanded record.
type PlanRef struct {
	ID   int
	Plan *Plan
}

// UnmarshalJSON accepts null, a bare id, or a full plan object.
func (p *PlanRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*p = PlanRef{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var plan Plan
		if err := json.Unmarshal(data, &plan); err != nil {
			return fmt.Errorf("failed to decode plan: %w", err)
		}
		*p = PlanRef{ID: plan.ID, Plan: &plan}
		return nil
	}

	id, err := strconv.Atoi(strings.Trim(trimmed, `"`))
	if err != nil {
		return fmt.Errorf("invalid plan reference %s: %w", trimmed, err)
	}
	*p = PlanRef{ID: id}
	return nil
}

// MarshalJSON always writes the plan id (or null), which is what the backend accepts.
func (p PlanRef) MarshalJSON() ([]byte, error) {
	if p.ID == 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(p.ID)), nil
}

// Plan is a subscription plan. Price is a decimal string as serialized by the backend.
type Plan struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	MaxScreens   int    `json:"max_screens"`
	VideoQuality string `json:"video_quality"`
}

// Screens renders the screen allowance, e.g. "1 screen" or "4 screens".
func (p Plan) Screens() string {
	if p.MaxScreens == 1 {
		return "1 screen"
	}
	return fmt.Sprintf("%d screens", p.MaxScreens)
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Content is a catalog entry. Episodes is only populated by the detail endpoint for series.
type Content struct {
	ID                  int         `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	ReleaseYear         int         `json:"release_year"`
	ContentType         ContentType `json:"content_type"`
	Genres              []Genre     `json:"genres"`
	Thumbnail           string      `json:"thumbnail"`
	VideoFile           string      `json:"video_file"`
	MinSubscriptionPlan *int        `json:"min_subscription_plan"`
	Episodes            []Episode   `json:"episodes,omitempty"`
}

// GenreNames joins the content genres with ", ".
func (c Content) GenreNames() string {
	names := make([]string, len(c.Genres))
	for i, g := range c.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// Episode looks up an episode by id.
func (c Content) Episode(id int) (*Episode, bool) {
	for i := range c.Episodes {
		if c.Episodes[i].ID == id {
			return &c.Episodes[i], true
		}
	}
	return nil, false
}

// Episode is a single episode of a series. Duration is in minutes.
type Episode struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	VideoFile     string `json:"video_file"`
	Duration      int    `json:"duration"`
}

// Code renders the episode as S01E02.
func (e Episode) Code() string {
	return fmt.Sprintf("S%02dE%02d", e.SeasonNumber, e.EpisodeNumber)
}

// DurationSeconds converts the minute based duration to seconds.
func (e Episode) DurationSeconds() float64 {
	return float64(e.Duration * 60)
}

// HistoryEntry is one row of the user's watch history.
type HistoryEntry struct {
	ID                int      `json:"id"`
	Content           *int     `json:"content"`
	Episode           *int     `json:"episode"`
	WatchedTime       int      `json:"watched_time"`
	WatchedPercentage float64  `json:"watched_percentage"`
	WatchedDate       string   `json:"watched_date"`
	ContentDetails    *Content `json:"content_details"`
	EpisodeDetails    *Episode `json:"episode_details"`
}

// Title returns the best available title for the entry.
func (h HistoryEntry) Title() string {
	switch {
	case h.EpisodeDetails != nil && h.ContentDetails != nil:
		return fmt.Sprintf("%s - %s %s", h.ContentDetails.Title, h.EpisodeDetails.Code(), h.EpisodeDetails.Title)
	case h.EpisodeDetails != nil:
		return fmt.Sprintf("%s %s", h.EpisodeDetails.Code(), h.EpisodeDetails.Title)
	case h.ContentDetails != nil:
		return h.ContentDetails.Title
	default:
		return fmt.Sprintf("history #%d", h.ID)
	}
}

// ProgressUpdate is the body of POST /streaming/history/update_progress/.
//
// Content and Episode are mutually exclusive; the unused one is sent as null.
type ProgressUpdate struct {
	Content       *int    `json:"content"`
	Episode       *int    `json:"episode"`
	WatchedTime   int     `json:"watched_time"`
	TotalDuration float64 `json:"total_duration"`
}

// Target identifies what is being played: a standalone title or an episode of it.
type Target struct {
	ContentID int
	EpisodeID int
}

// Progress builds the update payload for the target, preferring the episode when present.
func (t Target) Progress(watched int, total float64) ProgressUpdate {
	update := ProgressUpdate{WatchedTime: watched, TotalDuration: total}
	if t.EpisodeID != 0 {
		id := t.EpisodeID
		update.Episode = &id
	} else {
		id := t.ContentID
		update.Content = &id
	}
	return update
}
