package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
)

// ListOptions filters the content list endpoint. Zero values are not sent.
type ListOptions struct {
	ContentType models.ContentType
	Search      string
	ReleaseYear int
	Genre       int
	Page        int
}

// Query encodes the options as a query string, including the leading "?" when non-empty.
func (o ListOptions) Query() string {
	v := url.Values{}
	if o.ContentType != "" {
		v.Set("content_type", string(o.ContentType))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if o.ReleaseYear > 0 {
		v.Set("release_year", strconv.Itoa(o.ReleaseYear))
	}
	if o.Genre > 0 {
		v.Set("genres", strconv.Itoa(o.Genre))
	}
	if o.Page > 1 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func getList[T any](ctx context.Context, a *APIService, path string) (*models.Page[T], error) {
	var data []byte
	if err := a.doRequest(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return models.DecodeList[T](data)
}

// ContentList lists catalog entries.
func (a *APIService) ContentList(ctx context.Context, opts ListOptions) (*models.Page[models.Content], error) {
	return getList[models.Content](ctx, a, "/content/content/"+opts.Query())
}

// Content fetches a single entry, including its episodes.
func (a *APIService) Content(ctx context.Context, id int) (*models.Content, error) {
	var content models.Content
	if err := a.doRequest(ctx, http.MethodGet, fmt.Sprintf("/content/content/%d/", id), nil, &content); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d", shared.ErrContentNotFound, id)
		}
		return nil, err
	}
	return &content, nil
}

// Movies lists entries of type movie.
func (a *APIService) Movies(ctx context.Context, page int) (*models.Page[models.Content], error) {
	return getList[models.Content](ctx, a, "/content/content/movies/"+ListOptions{Page: page}.Query())
}

// Series lists entries of type series.
func (a *APIService) Series(ctx context.Context, page int) (*models.Page[models.Content], error) {
	return getList[models.Content](ctx, a, "/content/content/series/"+ListOptions{Page: page}.Query())
}

// Documentaries lists entries of type documentary.
func (a *APIService) Documentaries(ctx context.Context, page int) (*models.Page[models.Content], error) {
	return getList[models.Content](ctx, a, "/content/content/documentaries/"+ListOptions{Page: page}.Query())
}

// ByType dispatches to the per type list endpoint.
func (a *APIService) ByType(ctx context.Context, kind models.ContentType, page int) (*models.Page[models.Content], error) {
	switch kind {
	case models.Movie:
		return a.Movies(ctx, page)
	case models.Series:
		return a.Series(ctx, page)
	case models.Documentary:
		return a.Documentaries(ctx, page)
	default:
		return nil, fmt.Errorf("%w: unknown content type %q", shared.ErrInvalidArgument, kind)
	}
}

// Genres lists the catalog genres.
func (a *APIService) Genres(ctx context.Context) ([]models.Genre, error) {
	page, err := getList[models.Genre](ctx, a, "/content/genres/")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}
