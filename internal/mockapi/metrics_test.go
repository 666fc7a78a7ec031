package mockapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
)

func scrape(t *testing.T, srv *Server) string {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Counts Requests By Route", func(t *testing.T) {
		srv, client := demoClient(t)
		if _, err := client.Content(ctx, 23); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body := scrape(t, srv)
		for _, want := range []string{
			`streamz_mockapi_requests_total{route="/api/auth/login/",status="200"} 1`,
			`streamz_mockapi_requests_total{route="/api/content/content/{id}/",status="200"} 1`,
			`streamz_mockapi_logins_total{outcome="success"} 1`,
			"streamz_mockapi_request_duration_seconds_bucket",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected %q in scrape output:\n%s", want, body)
			}
		}
	})

	t.Run("Counts Failed Logins", func(t *testing.T) {
		srv, client := setupServer(t)
		client.Login(ctx, DemoUsername, "wrong-password")

		if body := scrape(t, srv); !strings.Contains(body, `streamz_mockapi_logins_total{outcome="failure"} 1`) {
			t.Errorf("expected a failed login, got:\n%s", body)
		}
	})

	t.Run("Counts Progress By Target", func(t *testing.T) {
		srv, client := demoClient(t)
		client.UpdateProgress(ctx, models.Target{ContentID: 23, EpisodeID: 2}.Progress(30, 2700))
		client.UpdateProgress(ctx, models.Target{ContentID: 1}.Progress(30, 120))
		client.UpdateProgress(ctx, models.Target{ContentID: 1}.Progress(40, 120))

		body := scrape(t, srv)
		if !strings.Contains(body, `streamz_mockapi_progress_updates_total{target="episode"} 1`) {
			t.Errorf("expected one episode update, got:\n%s", body)
		}
		if !strings.Contains(body, `streamz_mockapi_progress_updates_total{target="content"} 2`) {
			t.Errorf("expected two content updates, got:\n%s", body)
		}
	})

	t.Run("Unmatched Route", func(t *testing.T) {
		srv := New(shared.NewLogger(io.Discard))
		srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		if body := scrape(t, srv); !strings.Contains(body, `route="unmatched",status="404"`) {
			t.Errorf("expected an unmatched 404, got:\n%s", body)
		}
	})

	t.Run("Servers Keep Separate Registries", func(t *testing.T) {
		first := New(shared.NewLogger(io.Discard))
		second := New(shared.NewLogger(io.Discard))
		first.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/plans/", nil))

		if strings.Contains(scrape(t, second), `route="/api/auth/plans/"`) {
			t.Error("expected the second server to see no traffic from the first")
		}
	})
}
