package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
	tu "github.com/desertthunder/streamz/internal/testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *APIService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAPIService(server.URL, server.Client())
}

func TestAPIService_Headers(t *testing.T) {
	t.Run("Authorization Uses Token Scheme", func(t *testing.T) {
		var got string
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		})
		srv.SetToken("abc123")

		if _, err := srv.Profile(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "Token abc123" {
			t.Errorf("expected 'Token abc123', got %q", got)
		}
	})

	t.Run("Custom Scheme", func(t *testing.T) {
		var got string
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		})
		srv.SetAuthScheme("Bearer")
		srv.SetToken("abc123")

		srv.Profile(context.Background())
		if got != "Bearer abc123" {
			t.Errorf("expected 'Bearer abc123', got %q", got)
		}
	})

	t.Run("No Token No Header", func(t *testing.T) {
		var present bool
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_, present = r.Header["Authorization"]
			w.Write([]byte(`[]`))
		})
		srv.SetToken("abc123")
		srv.SetToken("")

		srv.Trending(context.Background())
		if present {
			t.Error("expected Authorization header to be absent")
		}
	})

	t.Run("Login Omits Stale Token", func(t *testing.T) {
		var present bool
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_, present = r.Header["Authorization"]
			w.Write([]byte(`{"token": "new", "user": {"id": 1}}`))
		})
		srv.SetToken("stale")

		if _, err := srv.Login(context.Background(), "ana", "pw"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if present {
			t.Error("login must not carry the previous token")
		}
	})

	t.Run("Request ID Is Set", func(t *testing.T) {
		ids := map[string]bool{}
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			ids[r.Header.Get("X-Request-ID")] = true
			w.Write([]byte(`[]`))
		})

		srv.Trending(context.Background())
		srv.Trending(context.Background())
		if len(ids) != 2 || ids[""] {
			t.Errorf("expected two distinct request ids, got %v", ids)
		}
	})
}

func TestAPIService_Errors(t *testing.T) {
	t.Run("Unauthorized Unwraps To ErrNotAuthenticated", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Invalid token."}`))
		})

		_, err := srv.Profile(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.Payload["detail"] != "Invalid token." {
			t.Errorf("expected payload to be decoded, got %v", apiErr.Payload)
		}
		if !strings.Contains(err.Error(), "Invalid token.") {
			t.Errorf("expected message in error string, got %q", err.Error())
		}
	})

	t.Run("Bad Request Unwraps To ErrAPIRequest", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"username": ["A user with that username already exists."]}`))
		})

		_, err := srv.Register(context.Background(), models.RegisterRequest{Username: "ana"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if errors.Is(err, shared.ErrNotAuthenticated) {
			t.Error("400 must not be treated as an authorization failure")
		}
	})

	t.Run("Non JSON Error Body", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("<html>oops</html>"))
		})

		_, err := srv.Trending(context.Background())
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Payload != nil {
			t.Errorf("expected nil payload, got %v", apiErr.Payload)
		}
		if err.Error() != "backend error: status 500" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		srv := NewAPIService("http://example.com", client)

		_, err := srv.Login(context.Background(), "ana", "pw")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Content Not Found", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Not found."}`))
		})

		_, err := srv.Content(context.Background(), 99)
		if !errors.Is(err, shared.ErrContentNotFound) {
			t.Errorf("expected ErrContentNotFound, got %v", err)
		}
	})

	t.Run("Undecodable Success Body", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "not-a-number"}`))
		})

		_, err := srv.Profile(context.Background())
		if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
			t.Errorf("expected decode error, got %v", err)
		}
	})
}

func TestPayloadMessage(t *testing.T) {
	tc := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{name: "nil", payload: nil, want: ""},
		{name: "error key", payload: map[string]any{"error": "Se requiere watched_time"}, want: "Se requiere watched_time"},
		{name: "detail key", payload: map[string]any{"detail": "Invalid token."}, want: "Invalid token."},
		{
			name:    "non field errors array",
			payload: map[string]any{"non_field_errors": []any{"Unable to log in.", "second"}},
			want:    "Unable to log in.",
		},
		{
			name:    "username before email",
			payload: map[string]any{"email": []any{"bad email"}, "username": []any{"taken"}},
			want:    "taken",
		},
		{
			name:    "unknown keys sorted",
			payload: map[string]any{"zeta": "z", "alpha": []any{"a"}},
			want:    "a",
		},
		{name: "non string values", payload: map[string]any{"count": 3.0}, want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := PayloadMessage(tt.payload); got != tt.want {
				t.Errorf("PayloadMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIService_Endpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/auth/login/" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var creds models.Credentials
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Username != "ana" || creds.Password != "secret" {
				t.Errorf("unexpected credentials %+v", creds)
			}
			w.Write([]byte(`{"token": "t1", "user": {"id": 1, "username": "ana", "plan": 2}}`))
		})

		resp, err := srv.Login(ctx, "ana", "secret")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Token != "t1" || resp.User.Username != "ana" || resp.User.Plan.ID != 2 {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("UpdateProfile Sends Only Set Fields", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch {
				t.Errorf("expected PATCH, got %s", r.Method)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"first_name":"Ana"}` {
				t.Errorf("unexpected body %s", body)
			}
			w.Write([]byte(`{"id": 1, "first_name": "Ana"}`))
		})

		name := "Ana"
		user, err := srv.UpdateProfile(ctx, models.ProfilePatch{FirstName: &name})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.FirstName != "Ana" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Plans Decodes Page", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"count": 1, "next": null, "previous": null, "results": [{"id": 1, "name": "Basic", "price": "7.99"}]}`))
		})

		plans, err := srv.Plans(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(plans) != 1 || plans[0].Price != "7.99" {
			t.Errorf("unexpected plans %+v", plans)
		}
	})

	t.Run("ContentList Query", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/content/content/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("content_type") != "series" || q.Get("search") != "night" || q.Get("page") != "2" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"count": 0, "results": []}`))
		})

		page, err := srv.ContentList(ctx, ListOptions{ContentType: models.Series, Search: "night", Page: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Results == nil {
			t.Error("expected empty results slice")
		}
	})

	t.Run("ByType", func(t *testing.T) {
		paths := []string{}
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			w.Write([]byte(`{"count": 0, "results": []}`))
		})

		for _, kind := range []models.ContentType{models.Movie, models.Series, models.Documentary} {
			if _, err := srv.ByType(ctx, kind, 1); err != nil {
				t.Fatalf("ByType(%s) error = %v", kind, err)
			}
		}
		want := []string{"/content/content/movies/", "/content/content/series/", "/content/content/documentaries/"}
		for i := range want {
			if paths[i] != want[i] {
				t.Errorf("expected %s, got %s", want[i], paths[i])
			}
		}

		if _, err := srv.ByType(ctx, "podcast", 1); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("UpdateProgress", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/streaming/history/update_progress/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var update models.ProgressUpdate
			json.NewDecoder(r.Body).Decode(&update)
			if update.Episode == nil || *update.Episode != 4 || update.Content != nil {
				t.Errorf("unexpected update %+v", update)
			}
			w.Write([]byte(`{"id": 1, "episode": 4, "watched_time": 20, "watched_percentage": 50}`))
		})

		entry, err := srv.UpdateProgress(ctx, models.Target{ContentID: 1, EpisodeID: 4}.Progress(20, 40))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if entry.WatchedPercentage != 50 {
			t.Errorf("unexpected entry %+v", entry)
		}
	})

	t.Run("UpdateProgress Requires Target", func(t *testing.T) {
		srv := NewAPIService("http://example.com", nil)
		if _, err := srv.UpdateProgress(ctx, models.ProgressUpdate{WatchedTime: 10}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Genre Preferences", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]int
			json.NewDecoder(r.Body).Decode(&body)
			if body["genre_id"] != 3 {
				t.Errorf("unexpected body %v", body)
			}
			score := 5.0
			if strings.HasSuffix(r.URL.Path, "/dislike_genre/") {
				score = -1
			}
			json.NewEncoder(w).Encode(map[string]any{"status": "success", "preference": map[string]any{"genre": 3, "score": score}})
		})

		liked, err := srv.LikeGenre(ctx, 3)
		if err != nil || liked.Preference.Score != 5 {
			t.Errorf("LikeGenre() = %+v, %v", liked, err)
		}
		disliked, err := srv.DislikeGenre(ctx, 3)
		if err != nil || disliked.Preference.Score != -1 {
			t.Errorf("DislikeGenre() = %+v, %v", disliked, err)
		}
		if _, err := srv.LikeGenre(ctx, 0); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("ContinueWatching Bare Array", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id": 1, "content": 2, "watched_percentage": 40, "content_details": {"id": 2, "title": "Dune"}}]`))
		})

		entries, err := srv.ContinueWatching(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 1 || entries[0].Title() != "Dune" {
			t.Errorf("unexpected entries %+v", entries)
		}
	})
}
