package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	genres := append([]models.Genre(nil), s.genres...)
	s.mu.Unlock()
	paginate(w, r, genres)
}

// listContent supports the content_type, release_year, genres and search filters.
func (s *Server) listContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var year, genre int
	if v := q.Get("release_year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, fieldErrors{"release_year": {"Enter a number."}})
			return
		}
		year = n
	}
	if v := q.Get("genres"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || s.genreName(n) == "" {
			writeJSON(w, http.StatusBadRequest, fieldErrors{"genres": {invalidChoice(v)}})
			return
		}
		genre = n
	}
	kind := models.ContentType(q.Get("content_type"))
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))

	items := s.filterContent(func(c models.Content) bool {
		if kind != "" && c.ContentType != kind {
			return false
		}
		if year != 0 && c.ReleaseYear != year {
			return false
		}
		if genre != 0 && !hasGenre(c, genre) {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title), search) &&
			!strings.Contains(strings.ToLower(c.Description), search) {
			return false
		}
		return true
	})
	paginate(w, r, items)
}

func (s *Server) listByType(kind models.ContentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paginate(w, r, s.filterContent(func(c models.Content) bool { return c.ContentType == kind }))
	}
}

func (s *Server) contentDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "No Content matches the given query.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.contentLocked(id)
	if c == nil {
		writeDetail(w, http.StatusNotFound, "No Content matches the given query.")
		return
	}

	detail := *c
	detail.Episodes = append([]models.Episode{}, c.Episodes...)
	writeJSON(w, http.StatusOK, detail)
}

// filterContent returns list representations, which never embed episodes.
func (s *Server) filterContent(keep func(models.Content) bool) []models.Content {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []models.Content{}
	for _, c := range s.content {
		if keep(c) {
			items = append(items, summary(c))
		}
	}
	return items
}

func (s *Server) contentLocked(id int) *models.Content {
	for i := range s.content {
		if s.content[i].ID == id {
			return &s.content[i]
		}
	}
	return nil
}

// episodeLocked finds an episode and the series it belongs to.
func (s *Server) episodeLocked(id int) (*models.Content, *models.Episode) {
	for i := range s.content {
		if e, ok := s.content[i].Episode(id); ok {
			return &s.content[i], e
		}
	}
	return nil, nil
}

func (s *Server) genreName(id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.genres {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

func summary(c models.Content) models.Content {
	c.Episodes = nil
	c.Genres = append([]models.Genre{}, c.Genres...)
	return c
}

func hasGenre(c models.Content, id int) bool {
	for _, g := range c.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}

func invalidChoice(v string) string {
	return "Select a valid choice. " + v + " is not one of the available choices."
}
