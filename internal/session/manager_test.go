package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/shared"
	tu "github.com/desertthunder/streamz/internal/testing"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func okProfile(user models.User) func(context.Context) (*models.User, error) {
	return func(context.Context) (*models.User, error) {
		u := user
		return &u, nil
	}
}

func okLogin(token string, user models.User) func(context.Context, string, string) (*models.AuthResponse, error) {
	return func(context.Context, string, string) (*models.AuthResponse, error) {
		return &models.AuthResponse{Token: token, User: user}, nil
	}
}

// recorder collects every published snapshot.
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()
	ana := models.User{ID: 1, Username: "ana", Plan: models.PlanRef{ID: 2}}

	t.Run("Failure Leaves Session Untouched", func(t *testing.T) {
		store := NewMemoryStore("")
		client := &tu.MockAuthClient{
			LoginFunc: func(context.Context, string, string) (*models.AuthResponse, error) {
				return nil, &services.APIError{
					StatusCode: http.StatusBadRequest,
					Payload:    map[string]any{"non_field_errors": []any{"Unable to log in with provided credentials."}},
				}
			},
		}
		m := NewManager(client, store, quietLogger())
		m.Start(ctx)

		res := m.Login(ctx, "ana", "wrong")
		m.Wait()

		if res.OK || res.User != nil {
			t.Fatalf("expected failure, got %+v", res)
		}
		if res.Err == nil || res.Err.Message != "Unable to log in with provided credentials." {
			t.Errorf("expected backend message, got %+v", res.Err)
		}
		if res.Err.Payload == nil {
			t.Error("expected payload to be carried")
		}

		snap := m.Snapshot()
		if snap.Token != "" || snap.User != nil || snap.State != Anonymous {
			t.Errorf("expected anonymous session, got %+v", snap)
		}
		if token, _ := store.Load(); token != "" {
			t.Errorf("expected nothing persisted, got %q", token)
		}
		if len(client.Tokens()) != 0 {
			t.Errorf("expected no token installed on the client, got %v", client.Tokens())
		}
	})

	t.Run("Failure Keeps Previous Session", func(t *testing.T) {
		store := NewMemoryStore("")
		client := &tu.MockAuthClient{LoginFunc: okLogin("t1", ana), ProfileFunc: okProfile(ana)}
		m := NewManager(client, store, quietLogger())
		m.Start(ctx)

		if res := m.Login(ctx, "ana", "secret"); !res.OK {
			t.Fatalf("expected first login to succeed, got %+v", res.Err)
		}
		m.Wait()

		client.LoginFunc = func(context.Context, string, string) (*models.AuthResponse, error) {
			return nil, errors.New("dial tcp: connection refused")
		}
		res := m.Login(ctx, "bob", "secret")
		if res.OK {
			t.Fatal("expected second login to fail")
		}

		snap := m.Snapshot()
		if snap.Token != "t1" || snap.User == nil || snap.User.Username != "ana" {
			t.Errorf("expected previous session to survive, got %+v", snap)
		}
		if token, _ := store.Load(); token != "t1" {
			t.Errorf("expected persisted token to survive, got %q", token)
		}
	})

	t.Run("Success Sets Token And User Together", func(t *testing.T) {
		store := NewMemoryStore("")
		client := &tu.MockAuthClient{LoginFunc: okLogin("t1", ana), ProfileFunc: okProfile(ana)}
		m := NewManager(client, store, quietLogger())

		rec := &recorder{}
		cancel := m.Subscribe(rec.record)
		defer cancel()

		m.Start(ctx)
		res := m.Login(ctx, "ana", "secret")
		m.Wait()

		if !res.OK || res.User == nil || res.User.Username != "ana" {
			t.Fatalf("expected success with user, got %+v", res)
		}
		for i, snap := range rec.all() {
			if (snap.Token == "") != (snap.User == nil) {
				t.Errorf("snapshot %d has token=%q user=%v", i, snap.Token, snap.User)
			}
		}

		snap := m.Snapshot()
		if snap.State != Authenticated || snap.Loading {
			t.Errorf("expected settled authenticated session, got %+v", snap)
		}
		if token, _ := store.Load(); token != "t1" {
			t.Errorf("expected token to be persisted, got %q", token)
		}
		if tokens := client.Tokens(); len(tokens) == 0 || tokens[len(tokens)-1] != "t1" {
			t.Errorf("expected client to carry the token, got %v", tokens)
		}
	})

	t.Run("Fallback Message On Transport Error", func(t *testing.T) {
		client := &tu.MockAuthClient{
			LoginFunc: func(context.Context, string, string) (*models.AuthResponse, error) {
				return nil, shared.ErrServiceUnavailable
			},
		}
		m := NewManager(client, nil, quietLogger())

		res := m.Login(ctx, "ana", "secret")
		if res.OK {
			t.Fatal("expected failure")
		}
		if res.Err.Message != LoginFallback {
			t.Errorf("expected %q, got %q", LoginFallback, res.Err.Message)
		}
		if !errors.Is(res.Err, shared.ErrServiceUnavailable) {
			t.Errorf("expected cause to be preserved, got %v", res.Err.Err)
		}
	})

	t.Run("Fallback Message On Empty Payload", func(t *testing.T) {
		client := &tu.MockAuthClient{
			LoginFunc: func(context.Context, string, string) (*models.AuthResponse, error) {
				return nil, &services.APIError{StatusCode: http.StatusInternalServerError}
			},
		}
		m := NewManager(client, nil, quietLogger())

		if res := m.Login(ctx, "ana", "secret"); res.Err == nil || res.Err.Message != LoginFallback {
			t.Errorf("expected fallback message, got %+v", res.Err)
		}
	})

	t.Run("Missing Token In Response", func(t *testing.T) {
		client := &tu.MockAuthClient{LoginFunc: okLogin("", ana)}
		m := NewManager(client, nil, quietLogger())

		res := m.Login(ctx, "ana", "secret")
		if res.OK || !errors.Is(res.Err, shared.ErrAuthFailed) {
			t.Errorf("expected auth failure, got %+v", res)
		}
		if m.Snapshot().Token != "" {
			t.Error("expected no token")
		}
	})
}

func TestManager_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Signs In", func(t *testing.T) {
		user := models.User{ID: 7, Username: "new", Plan: models.PlanRef{ID: 3}}
		client := &tu.MockAuthClient{
			RegisterFunc: func(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
				if req.Plan != 3 {
					t.Errorf("expected plan 3, got %d", req.Plan)
				}
				return &models.AuthResponse{Token: "t7", User: user}, nil
			},
			ProfileFunc: okProfile(user),
		}
		m := NewManager(client, nil, quietLogger())

		res := m.Register(ctx, models.RegisterRequest{Username: "new", Password: "pw", Password2: "pw", Plan: 3})
		m.Wait()

		if !res.OK || res.User.Plan.ID != 3 {
			t.Fatalf("expected success on plan 3, got %+v", res)
		}
		if m.State() != Authenticated {
			t.Errorf("expected authenticated, got %s", m.State())
		}
	})

	t.Run("Field Error Message", func(t *testing.T) {
		client := &tu.MockAuthClient{
			RegisterFunc: func(context.Context, models.RegisterRequest) (*models.AuthResponse, error) {
				return nil, &services.APIError{
					StatusCode: http.StatusBadRequest,
					Payload:    map[string]any{"email": []any{"Enter a valid email address."}},
				}
			},
		}
		m := NewManager(client, nil, quietLogger())

		res := m.Register(ctx, models.RegisterRequest{Username: "new"})
		if res.OK || res.Err.Message != "Enter a valid email address." {
			t.Errorf("expected field message, got %+v", res.Err)
		}
	})

	t.Run("Fallback Message", func(t *testing.T) {
		client := &tu.MockAuthClient{
			RegisterFunc: func(context.Context, models.RegisterRequest) (*models.AuthResponse, error) {
				return nil, errors.New("timeout")
			},
		}
		m := NewManager(client, nil, quietLogger())

		if res := m.Register(ctx, models.RegisterRequest{}); res.Err == nil || res.Err.Message != RegisterFallback {
			t.Errorf("expected %q, got %+v", RegisterFallback, res.Err)
		}
	})
}

func TestManager_Validation(t *testing.T) {
	ctx := context.Background()
	ana := models.User{ID: 1, Username: "ana"}

	t.Run("Logout Wins Over In Flight Login Validation", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		client := &tu.MockAuthClient{
			LoginFunc: okLogin("t1", ana),
			ProfileFunc: func(context.Context) (*models.User, error) {
				close(started)
				<-release
				u := ana
				return &u, nil
			},
		}
		m := NewManager(client, nil, quietLogger())
		m.Start(ctx)

		if res := m.Login(ctx, "ana", "secret"); !res.OK {
			t.Fatalf("expected login to succeed, got %+v", res.Err)
		}
		<-started
		m.Logout()
		close(release)
		m.Wait()

		snap := m.Snapshot()
		if snap.User != nil || snap.Token != "" || snap.State != Anonymous {
			t.Errorf("expected session to stay anonymous, got %+v", snap)
		}
	})

	t.Run("Logout Wins Over In Flight Startup Validation", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		client := &tu.MockAuthClient{
			ProfileFunc: func(context.Context) (*models.User, error) {
				close(started)
				<-release
				u := ana
				return &u, nil
			},
		}
		store := NewMemoryStore("persisted")
		m := NewManager(client, store, quietLogger())
		m.Start(ctx)

		<-started
		if m.State() != Validating || !m.Snapshot().Loading {
			t.Errorf("expected validating and loading, got %+v", m.Snapshot())
		}
		m.Logout()
		close(release)
		m.Wait()

		if snap := m.Snapshot(); snap.User != nil || snap.State != Anonymous {
			t.Errorf("expected session to stay anonymous, got %+v", snap)
		}
		if token, _ := store.Load(); token != "" {
			t.Errorf("expected stored token to be cleared, got %q", token)
		}
	})

	t.Run("Login With Seeded Token Clears Loading", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		client := &tu.MockAuthClient{
			LoginFunc: okLogin("t1", ana),
			ProfileFunc: func(context.Context) (*models.User, error) {
				close(started)
				<-release
				u := ana
				return &u, nil
			},
		}
		m := NewManager(client, NewMemoryStore("t1"), quietLogger())
		m.Start(ctx)
		<-started

		if res := m.Login(ctx, "ana", "secret"); !res.OK {
			t.Fatalf("expected login to succeed, got %+v", res.Err)
		}
		close(release)
		m.Wait()

		snap := m.Snapshot()
		if snap.Loading || snap.State != Authenticated {
			t.Errorf("expected authenticated and not loading, got %+v", snap)
		}
		if n := client.Calls("Profile"); n != 1 {
			t.Errorf("expected the seeded token to be validated once, got %d", n)
		}
	})

	t.Run("Repeat Login Clears Loading", func(t *testing.T) {
		client := &tu.MockAuthClient{LoginFunc: okLogin("t1", ana), ProfileFunc: okProfile(ana)}
		m := NewManager(client, nil, quietLogger())
		m.Start(ctx)

		m.Login(ctx, "ana", "secret")
		m.Login(ctx, "ana", "secret")
		m.Wait()

		if snap := m.Snapshot(); snap.Loading {
			t.Errorf("expected loading to settle, got %+v", snap)
		}
	})

	t.Run("Startup Token Is Validated", func(t *testing.T) {
		client := &tu.MockAuthClient{ProfileFunc: okProfile(ana)}
		m := NewManager(client, NewMemoryStore("persisted"), quietLogger())

		if !m.Snapshot().Loading {
			t.Error("expected loading before start")
		}
		m.Start(ctx)
		m.Wait()

		snap := m.Snapshot()
		if snap.State != Authenticated || snap.User.Username != "ana" || snap.Loading {
			t.Errorf("expected settled authenticated session, got %+v", snap)
		}
		if tokens := client.Tokens(); len(tokens) != 1 || tokens[0] != "persisted" {
			t.Errorf("expected persisted token on the client, got %v", tokens)
		}
	})

	t.Run("Empty Store Settles Anonymous", func(t *testing.T) {
		client := &tu.MockAuthClient{}
		m := NewManager(client, NewMemoryStore(""), quietLogger())
		m.Start(ctx)
		m.Wait()

		snap := m.Snapshot()
		if snap.State != Anonymous || snap.Loading {
			t.Errorf("expected settled anonymous session, got %+v", snap)
		}
		if client.Calls("Profile") != 0 {
			t.Error("expected no profile fetch without a token")
		}
	})

	t.Run("Rejected Token Signs Out", func(t *testing.T) {
		client := &tu.MockAuthClient{
			ProfileFunc: func(context.Context) (*models.User, error) {
				return nil, &services.APIError{StatusCode: http.StatusUnauthorized, Payload: map[string]any{"detail": "Invalid token."}}
			},
		}
		store := NewMemoryStore("expired")
		m := NewManager(client, store, quietLogger())

		rec := &recorder{}
		defer m.Subscribe(rec.record)()

		m.Start(ctx)
		m.Wait()

		if m.State() != Anonymous {
			t.Errorf("expected anonymous, got %s", m.State())
		}
		if token, _ := store.Load(); token != "" {
			t.Errorf("expected token to be cleared, got %q", token)
		}

		snaps := rec.all()
		if len(snaps) < 2 {
			t.Fatalf("expected at least two transitions, got %d", len(snaps))
		}
		last, prev := snaps[len(snaps)-1], snaps[len(snaps)-2]
		if prev.State != Invalid || last.State != Anonymous {
			t.Errorf("expected invalid then anonymous, got %s then %s", prev.State, last.State)
		}
		if prev.Token != "expired" {
			t.Errorf("expected invalid snapshot to name the rejected token, got %q", prev.Token)
		}
	})

	t.Run("Validates Once Per Token", func(t *testing.T) {
		client := &tu.MockAuthClient{LoginFunc: okLogin("same", ana), ProfileFunc: okProfile(ana)}
		m := NewManager(client, nil, quietLogger())

		m.Login(ctx, "ana", "secret")
		m.Wait()
		m.Login(ctx, "ana", "secret")
		m.Wait()

		if got := client.Calls("Profile"); got != 1 {
			t.Errorf("expected one validation, got %d", got)
		}

		m.Logout()
		m.Login(ctx, "ana", "secret")
		m.Wait()

		if got := client.Calls("Profile"); got != 2 {
			t.Errorf("expected a fresh validation after logout, got %d", got)
		}
	})
}

func TestManager_Profile(t *testing.T) {
	ctx := context.Background()
	ana := models.User{ID: 1, Username: "ana"}

	signedIn := func(t *testing.T, client *tu.MockAuthClient) *Manager {
		t.Helper()
		client.LoginFunc = okLogin("t1", ana)
		if client.ProfileFunc == nil {
			client.ProfileFunc = okProfile(ana)
		}
		m := NewManager(client, nil, quietLogger())
		if res := m.Login(ctx, "ana", "secret"); !res.OK {
			t.Fatalf("login failed: %+v", res.Err)
		}
		m.Wait()
		return m
	}

	t.Run("Refresh Requires Session", func(t *testing.T) {
		m := NewManager(&tu.MockAuthClient{}, nil, quietLogger())
		if _, err := m.RefreshProfile(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Refresh Installs User", func(t *testing.T) {
		client := &tu.MockAuthClient{}
		m := signedIn(t, client)
		client.ProfileFunc = okProfile(models.User{ID: 1, Username: "ana", FirstName: "Ana"})

		user, err := m.RefreshProfile(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.FirstName != "Ana" || m.Snapshot().User.FirstName != "Ana" {
			t.Errorf("expected refreshed user, got %+v", m.Snapshot().User)
		}
	})

	t.Run("Refresh Unauthorized Signs Out", func(t *testing.T) {
		client := &tu.MockAuthClient{}
		m := signedIn(t, client)
		client.ProfileFunc = func(context.Context) (*models.User, error) {
			return nil, &services.APIError{StatusCode: http.StatusForbidden}
		}

		if _, err := m.RefreshProfile(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if m.State() != Anonymous {
			t.Errorf("expected anonymous, got %s", m.State())
		}
	})

	t.Run("Update Keeps Session On Validation Error", func(t *testing.T) {
		client := &tu.MockAuthClient{
			UpdateProfileFunc: func(context.Context, models.ProfilePatch) (*models.User, error) {
				return nil, &services.APIError{StatusCode: http.StatusBadRequest, Payload: map[string]any{"email": []any{"invalid"}}}
			},
		}
		m := signedIn(t, client)

		email := "nope"
		if _, err := m.UpdateProfile(ctx, models.ProfilePatch{Email: &email}); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if m.State() != Authenticated {
			t.Errorf("expected session to survive, got %s", m.State())
		}
	})

	t.Run("Update Installs User", func(t *testing.T) {
		client := &tu.MockAuthClient{
			UpdateProfileFunc: func(_ context.Context, patch models.ProfilePatch) (*models.User, error) {
				return &models.User{ID: 1, Username: "ana", LastName: *patch.LastName}, nil
			},
		}
		m := signedIn(t, client)

		last := "Gómez"
		if _, err := m.UpdateProfile(ctx, models.ProfilePatch{LastName: &last}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m.Snapshot().User.LastName != "Gómez" {
			t.Errorf("expected updated user, got %+v", m.Snapshot().User)
		}
	})

	t.Run("Update Rejects Empty Patch", func(t *testing.T) {
		m := signedIn(t, &tu.MockAuthClient{})
		if _, err := m.UpdateProfile(ctx, models.ProfilePatch{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestManager_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("Cancel Stops Delivery", func(t *testing.T) {
		client := &tu.MockAuthClient{}
		m := NewManager(client, nil, quietLogger())

		rec := &recorder{}
		cancel := m.Subscribe(rec.record)

		m.Start(ctx)
		cancel()
		cancel()
		m.Logout()

		if got := len(rec.all()); got != 1 {
			t.Errorf("expected exactly one delivery before cancel, got %d", got)
		}
	})

	t.Run("Subscriber May Read Session", func(t *testing.T) {
		ana := models.User{ID: 1, Username: "ana"}
		client := &tu.MockAuthClient{LoginFunc: okLogin("t1", ana), ProfileFunc: okProfile(ana)}
		m := NewManager(client, nil, quietLogger())
		m.Start(ctx)

		cancel := m.Subscribe(func(Snapshot) {
			m.State()
			m.Snapshot()
		})
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			var wg sync.WaitGroup
			for range 4 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 50 {
						m.Login(ctx, "ana", "secret")
						m.Logout()
					}
				}()
			}
			wg.Wait()
			m.Wait()
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("session deadlocked with a subscriber reading state during concurrent transitions")
		}
	})

	t.Run("Deliveries Follow Transition Order", func(t *testing.T) {
		ana := models.User{ID: 1, Username: "ana"}
		client := &tu.MockAuthClient{LoginFunc: okLogin("t1", ana), ProfileFunc: okProfile(ana)}
		m := NewManager(client, nil, quietLogger())

		rec := &recorder{}
		defer m.Subscribe(rec.record)()

		m.Start(ctx)
		m.Login(ctx, "ana", "secret")
		m.Wait()
		m.Logout()

		snaps := rec.all()
		if len(snaps) < 3 {
			t.Fatalf("expected at least 3 deliveries, got %d", len(snaps))
		}
		if snaps[0].State != Anonymous || snaps[1].State != Authenticated || snaps[len(snaps)-1].State != Anonymous {
			t.Errorf("unexpected delivery order %+v", snaps)
		}
	})
}

func TestValidateRegistration(t *testing.T) {
	valid := models.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "pw12345!", Password2: "pw12345!", Plan: 1}

	tc := []struct {
		name   string
		mutate func(*models.RegisterRequest)
		want   error
	}{
		{name: "valid", mutate: func(*models.RegisterRequest) {}},
		{name: "missing username", mutate: func(r *models.RegisterRequest) { r.Username = "" }, want: shared.ErrMissingArgument},
		{name: "missing email", mutate: func(r *models.RegisterRequest) { r.Email = "" }, want: shared.ErrMissingArgument},
		{name: "missing confirmation", mutate: func(r *models.RegisterRequest) { r.Password2 = "" }, want: shared.ErrMissingArgument},
		{name: "mismatch", mutate: func(r *models.RegisterRequest) { r.Password2 = "other" }, want: shared.ErrPasswordMismatch},
		{name: "missing plan", mutate: func(r *models.RegisterRequest) { r.Plan = 0 }, want: shared.ErrMissingArgument},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := ValidateRegistration(req)
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	for state, want := range map[State]string{
		Anonymous:     "anonymous",
		Validating:    "validating",
		Authenticated: "authenticated",
		Invalid:       "invalid",
		State(42):     "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
