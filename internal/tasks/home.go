package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/shared"
	"golang.org/x/time/rate"
)

// Section is one row of the home page.
type Section string

const (
	SectionContinue      Section = "continue"
	SectionRecommended   Section = "recommendations"
	SectionTrending      Section = "trending"
	SectionMovies        Section = "movies"
	SectionSeries        Section = "series"
	SectionDocumentaries Section = "documentaries"
)

const (
	defaultHomeWorkers   = 3
	maxHomeWorkers       = 6
	defaultHomeRateLimit = 5.0
)

// Title is the heading shown above the row.
func (s Section) Title() string {
	switch s {
	case SectionContinue:
		return "Continue Watching"
	case SectionRecommended:
		return "Recommended For You"
	case SectionTrending:
		return "Trending"
	case SectionMovies:
		return "Movies"
	case SectionSeries:
		return "Series"
	case SectionDocumentaries:
		return "Documentaries"
	default:
		return string(s)
	}
}

// Sections returns the home rows in display order. Personal rows need a session.
func Sections(authenticated bool) []Section {
	public := []Section{SectionTrending, SectionMovies, SectionSeries, SectionDocumentaries}
	if !authenticated {
		return public
	}
	return append([]Section{SectionContinue, SectionRecommended}, public...)
}

// Row is a loaded home page row. History is only set for [SectionContinue].
type Row struct {
	Section Section
	Items   []models.Content
	History []models.HistoryEntry
	Err     error
}

// Empty reports whether the row has nothing to show.
func (r Row) Empty() bool {
	return len(r.Items) == 0 && len(r.History) == 0
}

// HomePage holds every row in display order.
type HomePage struct {
	Rows   []Row
	Failed int
}

// Row returns the row for s.
func (h *HomePage) Row(s Section) (Row, bool) {
	for _, r := range h.Rows {
		if r.Section == s {
			return r, true
		}
	}
	return Row{}, false
}

// HomeOpts configures [HomeLoader.Load].
type HomeOpts struct {
	Authenticated bool    // Include continue watching and recommendations
	NumWorkers    int     // Concurrent fetchers (default: 3)
	RateLimit     float64 // Requests per second (default: 5)
}

// HomeLoader fetches the home page rows concurrently.
type HomeLoader struct {
	catalog services.Catalog
	logger  *log.Logger
}

// NewHomeLoader creates a loader reading from catalog.
func NewHomeLoader(catalog services.Catalog, logger *log.Logger) *HomeLoader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &HomeLoader{catalog: catalog, logger: shared.WithLogger(logger, "component", "home")}
}

type sectionJob struct {
	index   int
	section Section
}

type sectionResult struct {
	index int
	row   Row
}

// Load fetches every row with a rate limited worker pool.
//
// A failing row is logged and left empty rather than failing the page. Load
// only returns an error when ctx ends before the rows are in.
func (h *HomeLoader) Load(ctx context.Context, prog chan<- ProgressUpdate, opts HomeOpts) (*HomePage, error) {
	if h.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultHomeWorkers
	}
	if opts.NumWorkers > maxHomeWorkers {
		opts.NumWorkers = maxHomeWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultHomeRateLimit
	}

	sections := Sections(opts.Authenticated)
	page := &HomePage{Rows: make([]Row, len(sections))}
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan sectionJob, len(sections))
	results := make(chan sectionResult, len(sections))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results <- sectionResult{job.index, Row{Section: job.section, Err: err}}
					continue
				}
				results <- sectionResult{job.index, h.fetch(ctx, job.section)}
			}
		}()
	}

	for i, s := range sections {
		sendProgress(prog, fetchingSectionUpdate(i+1, len(sections), s))
		jobs <- sectionJob{index: i, section: s}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		page.Rows[res.index] = res.row

		if res.row.Err != nil {
			page.Failed++
			h.logger.Warn("failed to load section", "section", res.row.Section, "error", res.row.Err)
			sendProgress(prog, sectionFailedUpdate(completed, len(sections), res.row.Section, res.row.Err))
			continue
		}
		sendProgress(prog, sectionLoadedUpdate(completed, len(sections), res.row.Section, len(res.row.Items)+len(res.row.History)))
	}

	if err := ctx.Err(); err != nil {
		return page, err
	}

	sendProgress(prog, homeReadyUpdate(len(sections), page.Failed))
	return page, nil
}

func (h *HomeLoader) fetch(ctx context.Context, s Section) Row {
	row := Row{Section: s}

	switch s {
	case SectionContinue:
		row.History, row.Err = h.catalog.ContinueWatching(ctx)
	case SectionRecommended:
		row.Items, row.Err = h.catalog.Recommendations(ctx)
	case SectionTrending:
		row.Items, row.Err = h.catalog.Trending(ctx)
	case SectionMovies, SectionSeries, SectionDocumentaries:
		var p *models.Page[models.Content]
		p, row.Err = h.catalog.ByType(ctx, sectionType(s), 1)
		if p != nil {
			row.Items = p.Results
		}
	default:
		row.Err = fmt.Errorf("%w: unknown section %q", shared.ErrInvalidArgument, s)
	}
	return row
}

func sectionType(s Section) models.ContentType {
	switch s {
	case SectionMovies:
		return models.Movie
	case SectionSeries:
		return models.Series
	default:
		return models.Documentary
	}
}
