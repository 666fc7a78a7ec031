package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
)

// Trending lists the most watched entries of the last week.
func (a *APIService) Trending(ctx context.Context) ([]models.Content, error) {
	page, err := getList[models.Content](ctx, a, "/streaming/trending/")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Recommendations lists entries picked for the current user. Requires a token.
func (a *APIService) Recommendations(ctx context.Context) ([]models.Content, error) {
	page, err := getList[models.Content](ctx, a, "/streaming/recommendations/")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// History lists the current user's watch history, most recent first.
func (a *APIService) History(ctx context.Context) ([]models.HistoryEntry, error) {
	page, err := getList[models.HistoryEntry](ctx, a, "/streaming/history/")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// ContinueWatching lists started but unfinished entries.
func (a *APIService) ContinueWatching(ctx context.Context) ([]models.HistoryEntry, error) {
	page, err := getList[models.HistoryEntry](ctx, a, "/streaming/history/continue_watching/")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// UpdateProgress upserts the watch history entry for a content or episode.
func (a *APIService) UpdateProgress(ctx context.Context, update models.ProgressUpdate) (*models.HistoryEntry, error) {
	if update.Content == nil && update.Episode == nil {
		return nil, fmt.Errorf("%w: progress update needs a content or episode", shared.ErrInvalidInput)
	}

	var entry models.HistoryEntry
	if err := a.doRequest(ctx, http.MethodPost, "/streaming/history/update_progress/", update, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

type genreRequest struct {
	GenreID int `json:"genre_id"`
}

// LikeGenre raises the user's preference score for a genre.
func (a *APIService) LikeGenre(ctx context.Context, genreID int) (*models.PreferenceResponse, error) {
	return a.genrePreference(ctx, "/streaming/preferences/like_genre/", genreID)
}

// DislikeGenre lowers the user's preference score for a genre.
func (a *APIService) DislikeGenre(ctx context.Context, genreID int) (*models.PreferenceResponse, error) {
	return a.genrePreference(ctx, "/streaming/preferences/dislike_genre/", genreID)
}

func (a *APIService) genrePreference(ctx context.Context, path string, genreID int) (*models.PreferenceResponse, error) {
	if genreID <= 0 {
		return nil, fmt.Errorf("%w: genre id must be positive", shared.ErrInvalidArgument)
	}

	var resp models.PreferenceResponse
	if err := a.doRequest(ctx, http.MethodPost, path, genreRequest{GenreID: genreID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
