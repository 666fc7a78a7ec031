package mockapi

import (
	"cmp"
	"net/http"
	"slices"
	"time"

	"github.com/desertthunder/streamz/internal/models"
)

const (
	trendingWindow     = 7 * 24 * time.Hour
	trendingLimit      = 20
	recommendLimit     = 20
	topGenres          = 5
	continueLimit      = 10
	completedThreshold = 90.0
	partialThreshold   = 20.0
)

// trending ranks content by views in the last week.
func (s *Server) trending(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	since := s.now().Add(-trendingWindow)
	views := map[int]int{}
	firstSeen := map[int]int{}
	for i, rec := range s.history {
		if rec.entry.Content == nil || rec.at.Before(since) {
			continue
		}
		id := *rec.entry.Content
		if _, ok := views[id]; !ok {
			firstSeen[id] = i
		}
		views[id]++
	}

	ids := make([]int, 0, len(views))
	for id := range views {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int) int {
		if c := cmp.Compare(views[b], views[a]); c != 0 {
			return c
		}
		return cmp.Compare(firstSeen[a], firstSeen[b])
	})
	if len(ids) > trendingLimit {
		ids = ids[:trendingLimit]
	}

	items := []models.Content{}
	for _, id := range ids {
		if c := s.contentLocked(id); c != nil {
			items = append(items, summary(*c))
		}
	}
	paginate(w, r, items)
}

// recommendations scores genres from the user's history and saved
// preferences, then suggests unwatched titles in the top genres.
func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	watched := map[int]bool{}
	scores := map[int]float64{}
	for _, rec := range s.history {
		if rec.user != user || rec.entry.Content == nil {
			continue
		}
		id := *rec.entry.Content
		watched[id] = true

		c := s.contentLocked(id)
		if c == nil {
			continue
		}
		pct := rec.entry.WatchedPercentage
		for _, g := range c.Genres {
			switch {
			case pct >= completedThreshold:
				scores[g.ID] += 3
			case pct > partialThreshold:
				scores[g.ID]++
			}
		}
	}
	for key, pref := range s.preferences {
		if key.user == user {
			scores[key.genre] += pref.Score
		}
	}

	genres := make([]int, 0, len(scores))
	for id := range scores {
		genres = append(genres, id)
	}
	slices.SortFunc(genres, func(a, b int) int {
		if c := cmp.Compare(scores[b], scores[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(genres) > topGenres {
		genres = genres[:topGenres]
	}

	type candidate struct {
		content models.Content
		matches int
	}
	var candidates []candidate
	for _, c := range s.content {
		if watched[c.ID] {
			continue
		}
		matches := 0
		for _, g := range c.Genres {
			if slices.Contains(genres, g.ID) {
				matches++
			}
		}
		if len(genres) > 0 && matches == 0 {
			continue
		}
		candidates = append(candidates, candidate{summary(c), matches})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(b.matches, a.matches); c != 0 {
			return c
		}
		return cmp.Compare(b.content.ReleaseYear, a.content.ReleaseYear)
	})

	items := []models.Content{}
	for i := 0; i < len(candidates) && i < recommendLimit; i++ {
		items = append(items, candidates[i].content)
	}
	paginate(w, r, items)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	s.mu.Lock()
	entries := s.historyLocked(user)
	s.mu.Unlock()
	paginate(w, r, entries)
}

// continueWatching answers with a bare array of started but unfinished entries.
func (s *Server) continueWatching(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	s.mu.Lock()
	all := s.historyLocked(user)
	s.mu.Unlock()

	entries := []models.HistoryEntry{}
	for _, e := range all {
		if e.WatchedPercentage > 0 && e.WatchedPercentage < completedThreshold {
			entries = append(entries, e)
		}
		if len(entries) == continueLimit {
			break
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

// updateProgress upserts the history row for a title or episode.
func (s *Server) updateProgress(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	contentID, hasContent := intField(body["content"])
	episodeID, hasEpisode := intField(body["episode"])
	if !hasContent && !hasEpisode {
		writeError(w, http.StatusBadRequest, "content or episode is required")
		return
	}

	watched, ok := intField(body["watched_time"])
	if !ok {
		writeError(w, http.StatusBadRequest, "watched_time is required")
		return
	}

	pct := 0.0
	if total, ok := floatField(body["total_duration"]); ok && total > 0 {
		pct = float64(watched) / total * 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var content *models.Content
	var episode *models.Episode
	if hasContent {
		if content = s.contentLocked(contentID); content == nil {
			writeJSON(w, http.StatusBadRequest, fieldErrors{"content": {invalidPK(contentID)}})
			return
		}
	}
	if hasEpisode {
		if _, episode = s.episodeLocked(episodeID); episode == nil {
			writeJSON(w, http.StatusBadRequest, fieldErrors{"episode": {invalidPK(episodeID)}})
			return
		}
	}

	rec := s.findHistoryLocked(user, content, episode)
	if rec == nil {
		s.nextHistory++
		rec = &historyRecord{user: user, entry: models.HistoryEntry{ID: s.nextHistory}}
		if content != nil {
			id := content.ID
			rec.entry.Content = &id
		}
		if episode != nil {
			id := episode.ID
			rec.entry.Episode = &id
		}
		s.history = append(s.history, rec)
	}

	rec.at = s.now()
	rec.entry.WatchedTime = watched
	rec.entry.WatchedPercentage = pct
	rec.entry.WatchedDate = rec.at.UTC().Format(time.RFC3339Nano)

	s.metrics.RecordProgress(episode != nil)
	writeJSON(w, http.StatusOK, s.expandLocked(rec.entry))
}

func (s *Server) likeGenre(w http.ResponseWriter, r *http.Request) {
	s.adjustPreference(w, r, 5, 1)
}

func (s *Server) dislikeGenre(w http.ResponseWriter, r *http.Request) {
	s.adjustPreference(w, r, -1, -1)
}

// adjustPreference creates the preference with initial, or moves an existing one by step.
func (s *Server) adjustPreference(w http.ResponseWriter, r *http.Request, initial, step float64) {
	user, _ := userFromContext(r.Context())

	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	genreID, ok := intField(body["genre_id"])
	if !ok {
		writeError(w, http.StatusBadRequest, "genre_id is required")
		return
	}

	name := s.genreName(genreID)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"genre": {invalidPK(genreID)}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := preferenceKey{user: user, genre: genreID}
	pref, exists := s.preferences[key]
	if !exists {
		s.nextPref++
		pref = &models.GenrePreference{
			ID:           s.nextPref,
			Genre:        genreID,
			Score:        initial,
			GenreDetails: &models.Genre{ID: genreID, Name: name},
		}
		s.preferences[key] = pref
	} else {
		pref.Score += step
	}

	writeJSON(w, http.StatusOK, models.PreferenceResponse{Status: "success", Preference: *pref})
}

func (s *Server) findHistoryLocked(user int, content *models.Content, episode *models.Episode) *historyRecord {
	var contentID, episodeID int
	if content != nil {
		contentID = content.ID
	}
	if episode != nil {
		episodeID = episode.ID
	}

	for _, rec := range s.history {
		if rec.user == user && refID(rec.entry.Content) == contentID && refID(rec.entry.Episode) == episodeID {
			return rec
		}
	}
	return nil
}

func refID(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// historyLocked returns the user's entries, newest first.
func (s *Server) historyLocked(user int) []models.HistoryEntry {
	var recs []*historyRecord
	for _, rec := range s.history {
		if rec.user == user {
			recs = append(recs, rec)
		}
	}
	slices.SortStableFunc(recs, func(a, b *historyRecord) int { return b.at.Compare(a.at) })

	entries := make([]models.HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, s.expandLocked(rec.entry))
	}
	return entries
}

func (s *Server) expandLocked(e models.HistoryEntry) models.HistoryEntry {
	if e.Content != nil {
		if c := s.contentLocked(*e.Content); c != nil {
			sc := summary(*c)
			e.ContentDetails = &sc
		}
	}
	if e.Episode != nil {
		if _, ep := s.episodeLocked(*e.Episode); ep != nil {
			epCopy := *ep
			e.EpisodeDetails = &epCopy
		}
	}
	return e
}
