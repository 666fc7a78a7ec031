package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

// PageSize is the number of results per list page.
const PageSize = 20

type account struct {
	user         models.User
	passwordHash []byte
}

// hashPassword uses the minimum bcrypt cost; the fake backend favors fast tests.
func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
}

func (a *account) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

type historyRecord struct {
	entry models.HistoryEntry
	user  int
	at    time.Time
}

type preferenceKey struct {
	user  int
	genre int
}

// Server holds the fake backend state. The zero value is not usable; call [New].
type Server struct {
	logger   *log.Logger
	now      func() time.Time
	registry *prometheus.Registry
	metrics  *Metrics

	mu          sync.Mutex
	plans       []models.Plan
	genres      []models.Genre
	content     []models.Content
	accounts    map[int]*account
	tokens      map[string]int
	history     []*historyRecord
	preferences map[preferenceKey]*models.GenrePreference
	nextUser    int
	nextHistory int
	nextPref    int
}

// New creates a server seeded with plans, genres and a small catalog.
func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		logger:      shared.WithLogger(logger, "component", "mockapi"),
		now:         time.Now,
		registry:    reg,
		metrics:     NewMetrics(reg),
		accounts:    map[int]*account{},
		tokens:      map[string]int{},
		preferences: map[preferenceKey]*models.GenrePreference{},
	}
	s.seed()
	return s
}

// Handler returns the router with every route mounted under /api and the
// Prometheus scrape endpoint at /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Handle("/metrics", MetricsHandler(s.registry))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/", s.login)
			r.Post("/register/", s.register)
			r.Get("/plans/", s.listPlans)
			r.With(requireUser).Get("/profile/", s.profile)
			r.With(requireUser).Patch("/profile/", s.updateProfile)
		})

		r.Route("/content", func(r chi.Router) {
			r.With(requireUser).Get("/genres/", s.listGenres)
			r.Get("/content/", s.listContent)
			r.Get("/content/movies/", s.listByType(models.Movie))
			r.Get("/content/series/", s.listByType(models.Series))
			r.Get("/content/documentaries/", s.listByType(models.Documentary))
			r.Get("/content/{id}/", s.contentDetail)
		})

		r.Route("/streaming", func(r chi.Router) {
			r.Get("/trending/", s.trending)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/recommendations/", s.recommendations)
				r.Get("/history/", s.listHistory)
				r.Get("/history/continue_watching/", s.continueWatching)
				r.Post("/history/update_progress/", s.updateProgress)
				r.Post("/preferences/like_genre/", s.likeGenre)
				r.Post("/preferences/dislike_genre/", s.dislikeGenre)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`)
	})

	return r
}

// SetClock replaces the time source used for history timestamps.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// IssueToken creates a token for an existing user, as an admin would.
func (s *Server) IssueToken(userID int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return "", false
	}
	return s.issueTokenLocked(userID), true
}

// RevokeTokens deletes every token of a user, so later requests get 401.
func (s *Server) RevokeTokens(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, id := range s.tokens {
		if id == userID {
			delete(s.tokens, token)
		}
	}
}

// History returns a copy of the stored history for a user.
func (s *Server) History(userID int) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked(userID)
}

func (s *Server) issueTokenLocked(userID int) string {
	for token, id := range s.tokens {
		if id == userID {
			return token
		}
	}
	token := shared.GenerateID()
	s.tokens[token] = userID
	return token
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		var route string
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		s.metrics.RecordRequest(route, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
