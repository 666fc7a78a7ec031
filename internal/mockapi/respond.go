package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type ctxKey struct{}

func userFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(ctxKey{}).(int)
	return id, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fieldErrors collects validation messages keyed by field, serialized as lists.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// authenticate resolves the token header. A header naming an unknown key is
// rejected even on public routes.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, key, _ := strings.Cut(header, " ")
		if !strings.EqualFold(scheme, "Token") {
			next.ServeHTTP(w, r)
			return
		}

		key = strings.TrimSpace(key)
		if key == "" || strings.Contains(key, " ") {
			writeDetail(w, http.StatusUnauthorized, "Invalid token header. No credentials provided.")
			return
		}

		s.mu.Lock()
		id, ok := s.tokens[key]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", "Token")
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// paginate slices items into the requested page and writes the envelope.
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T) {
	n := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeDetail(w, http.StatusNotFound, "Invalid page.")
			return
		}
		n = v
	}

	start := (n - 1) * PageSize
	if start > 0 && start >= len(items) {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}
	end := min(start+PageSize, len(items))

	results := items[start:end]
	if results == nil {
		results = []T{}
	}

	p := page{Count: len(items), Results: results}
	if end < len(items) {
		p.Next = pageURL(r, n+1)
	}
	if n > 1 {
		p.Previous = pageURL(r, n-1)
	}
	writeJSON(w, http.StatusOK, p)
}

func pageURL(r *http.Request, n int) *string {
	q := r.URL.Query()
	if n == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("JSON parse error - %v", err)
	}
	return nil
}

// intField reads a JSON number or numeric string, as the backend's form parsing allows.
func intField(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), t != 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil && n != 0
	default:
		return 0, false
	}
}

func floatField(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
