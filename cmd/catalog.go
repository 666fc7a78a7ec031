package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/streamz/internal/formatter"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/urfave/cli/v3"
)

const pageSize = 20

// browseTypes maps the browse subcommand names to catalog content types.
var browseTypes = map[string]models.ContentType{
	"movies":        models.Movie,
	"series":        models.Series,
	"documentaries": models.Documentary,
}

// parseID reads a positive integer argument.
func parseID(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

func pageHeading(title string, page int, data *models.Page[models.Content]) string {
	pages := max(1, (data.Count+pageSize-1)/pageSize)
	return fmt.Sprintf("%s (page %d of %d, %d titles)", title, max(page, 1), pages, data.Count)
}

// Plans lists the subscription plans. No session is needed.
func (r *Runner) Plans(ctx context.Context, cmd *cli.Command) error {
	plans, err := r.api.Plans(ctx)
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}
	return r.emit(cmd, plans, func(f formatter.Format) ([]byte, error) {
		return formatter.Plans(f, plans)
	})
}

// BrowseType lists one content type; the subcommand name selects it.
func (r *Runner) BrowseType(ctx context.Context, cmd *cli.Command) error {
	kind, ok := browseTypes[cmd.Name]
	if !ok {
		return fmt.Errorf("%w: unknown listing %q", shared.ErrInvalidArgument, cmd.Name)
	}
	page := int(cmd.Int("page"))

	r.logger.Debug("listing content", "type", kind, "page", page)
	data, err := r.api.ByType(ctx, kind, page)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", cmd.Name, err)
	}

	heading := pageHeading(strings.ToUpper(cmd.Name[:1])+cmd.Name[1:], page, data)
	return r.emit(cmd, data, func(f formatter.Format) ([]byte, error) {
		return formatter.Content(f, heading, data.Results)
	})
}

// BrowseTrending lists the most watched titles. It works signed out.
func (r *Runner) BrowseTrending(ctx context.Context, cmd *cli.Command) error {
	items, err := r.api.Trending(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch trending: %w", err)
	}
	return r.emit(cmd, items, func(f formatter.Format) ([]byte, error) {
		return formatter.Content(f, "Trending", items)
	})
}

// BrowseRecommendations lists titles picked for the signed-in user.
func (r *Runner) BrowseRecommendations(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	items, err := r.api.Recommendations(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return r.emit(cmd, items, func(f formatter.Format) ([]byte, error) {
		return formatter.Content(f, "Recommended For You", items)
	})
}

// BrowseContinue lists started, unfinished titles.
func (r *Runner) BrowseContinue(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	entries, err := r.api.ContinueWatching(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch continue watching: %w", err)
	}
	return r.emit(cmd, entries, func(f formatter.Format) ([]byte, error) {
		return formatter.History(f, "Continue Watching", entries)
	})
}

// BrowseHistory lists the watch history, newest first.
func (r *Runner) BrowseHistory(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	entries, err := r.api.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	return r.emit(cmd, entries, func(f formatter.Format) ([]byte, error) {
		return formatter.History(f, "History", entries)
	})
}

// BrowseGenres lists genre ids for the genre and search commands.
func (r *Runner) BrowseGenres(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	genres, err := r.api.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to list genres: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}
	for _, g := range genres {
		r.writePlain("%3d  %s\n", g.ID, g.Name)
	}
	return nil
}

// BrowseSearch queries the content list with the given filters.
func (r *Runner) BrowseSearch(ctx context.Context, cmd *cli.Command) error {
	opts := services.ListOptions{
		Search:      strings.TrimSpace(cmd.StringArg("query")),
		ContentType: models.ContentType(cmd.String("type")),
		ReleaseYear: int(cmd.Int("year")),
		Genre:       int(cmd.Int("genre")),
		Page:        int(cmd.Int("page")),
	}
	if _, ok := browseTypeValues[opts.ContentType]; !ok && opts.ContentType != "" {
		return fmt.Errorf("%w: --type must be movie, series or documentary", shared.ErrInvalidArgument)
	}

	data, err := r.api.ContentList(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	title := "Catalog"
	if opts.Search != "" {
		title = fmt.Sprintf("Results for %q", opts.Search)
	}
	heading := pageHeading(title, opts.Page, data)
	return r.emit(cmd, data, func(f formatter.Format) ([]byte, error) {
		return formatter.Content(f, heading, data.Results)
	})
}

var browseTypeValues = map[models.ContentType]struct{}{
	models.Movie:       {},
	models.Series:      {},
	models.Documentary: {},
}

// ContentShow prints one title with its episodes.
func (r *Runner) ContentShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}

	content, err := r.api.Content(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch content %d: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(content, cmd.Bool("pretty"))
	}
	_, err = r.output.Write(formatter.ContentDetail(content))
	return err
}

// GenreLike raises the preference score of a genre.
func (r *Runner) GenreLike(ctx context.Context, cmd *cli.Command) error {
	return r.genreFeedback(ctx, cmd, r.api.LikeGenre)
}

// GenreDislike lowers the preference score of a genre.
func (r *Runner) GenreDislike(ctx context.Context, cmd *cli.Command) error {
	return r.genreFeedback(ctx, cmd, r.api.DislikeGenre)
}

func (r *Runner) genreFeedback(ctx context.Context, cmd *cli.Command, send func(context.Context, int) (*models.PreferenceResponse, error)) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	resp, err := send(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to update genre %d: %w", id, err)
	}

	name := strconv.Itoa(resp.Preference.Genre)
	if resp.Preference.GenreDetails != nil {
		name = resp.Preference.GenreDetails.Name
	}
	return r.writePlain("✓ %s: score %g (%s)\n", name, resp.Preference.Score, resp.Status)
}
