package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/shared"
)

// Messages used when a failed login or registration carries no usable payload.
const (
	LoginFallback    = "login failed"
	RegisterFallback = "registration failed"
)

// State is the authentication state of the running client.
type State int

const (
	// Anonymous means no token is held.
	Anonymous State = iota
	// Validating means a token is held and its profile fetch is in flight.
	Validating
	// Authenticated means both a token and a user are held.
	Authenticated
	// Invalid is published once when the backend rejects the held token, right before the session returns to Anonymous.
	Invalid
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Validating:
		return "validating"
	case Authenticated:
		return "authenticated"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the session.
type Snapshot struct {
	State   State
	Token   string
	User    *models.User
	Loading bool
}

// IsAuthenticated reports whether a token is held, validated or not.
func (s Snapshot) IsAuthenticated() bool { return s.Token != "" }

// AuthError describes a failed login or registration.
//
// Payload is the backend's error object when one was returned. Message is always set.
type AuthError struct {
	Payload map[string]any
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// Result is the outcome of [Manager.Login] and [Manager.Register]. Exactly one of User or Err is set.
type Result struct {
	OK   bool
	User *models.User
	Err  *AuthError
}

// Manager owns the session for the lifetime of the process.
//
// All state lives behind mu. gen increments on every token change so a profile
// fetch started for an older token can tell its result is stale and drop it.
//
// Mutations take pubMu before mu and deliver to subscribers with only pubMu
// held. Readers take mu alone, so a subscriber may call them.
type Manager struct {
	client services.AuthClient
	store  TokenStore
	logger *log.Logger

	mu        sync.Mutex
	token     string
	user      *models.User
	loading   bool
	gen       uint64
	validated string

	// pubMu serializes mutations with their deliveries.
	pubMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	inflight sync.WaitGroup
}

// NewManager creates a session backed by client and store.
//
// The session starts loading until [Manager.Start] has consulted the store.
func NewManager(client services.AuthClient, store TokenStore, logger *log.Logger) *Manager {
	if store == nil {
		store = NewMemoryStore("")
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		client:  client,
		store:   store,
		logger:  shared.WithLogger(logger, "component", "session"),
		loading: true,
		subs:    map[int]func(Snapshot){},
	}
}

// Start seeds the token from the store and, if one is found, begins validating it.
func (m *Manager) Start(ctx context.Context) {
	token, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to load stored token", "error", err)
		token = ""
	}

	m.lock()
	if token == "" {
		m.loading = false
		m.commit(Anonymous)
		return
	}

	m.gen++
	m.setTokenLocked(token)
	m.user = nil
	m.validated = ""
	m.observeTokenLocked(ctx)
	m.commit(m.stateLocked())
}

// Login exchanges credentials for a token.
//
// A failure leaves the session untouched. On success token and user are installed together.
func (m *Manager) Login(ctx context.Context, username, password string) Result {
	resp, err := m.client.Login(ctx, username, password)
	if err != nil {
		m.logger.Debug("login rejected", "username", username, "error", err)
		return failure(err, LoginFallback)
	}
	if resp.Token == "" {
		return failure(nil, LoginFallback)
	}
	return m.establish(ctx, resp)
}

// Register creates an account and signs into it.
//
// Matching passwords and required fields are the caller's concern, see [ValidateRegistration].
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) Result {
	resp, err := m.client.Register(ctx, req)
	if err != nil {
		m.logger.Debug("registration rejected", "username", req.Username, "error", err)
		return failure(err, RegisterFallback)
	}
	if resp.Token == "" {
		return failure(nil, RegisterFallback)
	}
	return m.establish(ctx, resp)
}

func (m *Manager) establish(ctx context.Context, resp *models.AuthResponse) Result {
	user := resp.User

	m.lock()
	m.gen++
	m.setTokenLocked(resp.Token)
	m.user = &user
	if err := m.store.Save(resp.Token); err != nil {
		m.logger.Warn("failed to persist token", "error", err)
	}
	// The bump above orphans any validation in flight; only a new one may set loading again.
	m.loading = false
	m.observeTokenLocked(ctx)
	m.commit(Authenticated)

	m.logger.Info("signed in", "username", user.Username)
	out := user
	return Result{OK: true, User: &out}
}

// Logout clears the session and the stored token. It makes no network call.
//
// Any profile fetch still in flight is discarded when it completes.
func (m *Manager) Logout() {
	m.lock()
	m.resetLocked()
	m.commit(Anonymous)
	m.logger.Info("signed out")
}

// RefreshProfile refetches the current user.
//
// A rejected token logs the session out. A result for a token that is no longer held is discarded.
func (m *Manager) RefreshProfile(ctx context.Context) (*models.User, error) {
	gen, ok := m.currentGen()
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}

	user, err := m.client.Profile(ctx)
	return m.applyProfile(gen, user, err)
}

// UpdateProfile patches the current user and installs the returned record.
func (m *Manager) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	gen, ok := m.currentGen()
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	if patch.Empty() {
		return nil, shared.ErrMissingArgument
	}

	user, err := m.client.UpdateProfile(ctx, patch)
	return m.applyProfile(gen, user, err)
}

func (m *Manager) applyProfile(gen uint64, user *models.User, err error) (*models.User, error) {
	m.lock()
	if gen != m.gen {
		m.unlock()
		return nil, shared.ErrNotAuthenticated
	}

	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			m.invalidateLocked()
			return nil, err
		}
		m.unlock()
		return nil, err
	}

	m.user = user
	m.commit(Authenticated)
	return user, nil
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(m.stateLocked())
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Subscribe registers fn to receive every transition in order.
//
// fn runs synchronously after the transition. It may call [Manager.Snapshot]
// and [Manager.State], but must not call the mutators or the returned cancel.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.pubMu.Lock()
			defer m.pubMu.Unlock()
			delete(m.subs, id)
		})
	}
}

// Wait blocks until every profile validation started so far has settled.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

func (m *Manager) currentGen() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, m.token != ""
}

// observeTokenLocked starts profile validation if the held token has not been validated yet.
func (m *Manager) observeTokenLocked(ctx context.Context) {
	if m.token == "" || m.token == m.validated {
		return
	}
	m.validated = m.token
	m.loading = true

	gen := m.gen
	m.inflight.Add(1)
	go m.validate(context.WithoutCancel(ctx), gen)
}

func (m *Manager) validate(ctx context.Context, gen uint64) {
	defer m.inflight.Done()

	user, err := m.client.Profile(ctx)

	m.lock()
	if gen != m.gen {
		m.unlock()
		m.logger.Debug("discarding stale profile", "generation", gen)
		return
	}

	if err != nil {
		m.logger.Warn("stored token rejected, signing out", "error", err)
		m.invalidateLocked()
		return
	}

	m.user = user
	m.loading = false
	m.commit(Authenticated)
}

// invalidateLocked publishes Invalid, then resets to Anonymous. It releases both locks.
func (m *Manager) invalidateLocked() {
	invalid := m.snapshotLocked(Invalid)
	m.resetLocked()
	anonymous := m.snapshotLocked(Anonymous)
	m.mu.Unlock()

	m.deliverLocked(invalid)
	m.deliverLocked(anonymous)
	m.pubMu.Unlock()
}

func (m *Manager) resetLocked() {
	m.gen++
	m.setTokenLocked("")
	m.user = nil
	m.loading = false
	m.validated = ""
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear stored token", "error", err)
	}
}

func (m *Manager) setTokenLocked(token string) {
	m.token = token
	if m.client != nil {
		m.client.SetToken(token)
	}
}

func (m *Manager) stateLocked() State {
	switch {
	case m.token == "":
		return Anonymous
	case m.user == nil:
		return Validating
	default:
		return Authenticated
	}
}

func (m *Manager) snapshotLocked(state State) Snapshot {
	snap := Snapshot{State: state, Token: m.token, Loading: m.loading}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

func (m *Manager) lock() {
	m.pubMu.Lock()
	m.mu.Lock()
}

func (m *Manager) unlock() {
	m.mu.Unlock()
	m.pubMu.Unlock()
}

// commit snapshots the session, releases mu, notifies subscribers, then releases pubMu.
func (m *Manager) commit(state State) {
	snap := m.snapshotLocked(state)
	m.mu.Unlock()
	defer m.pubMu.Unlock()
	m.deliverLocked(snap)
}

func (m *Manager) deliverLocked(snap Snapshot) {
	for _, fn := range m.subs {
		fn(snap)
	}
}

func failure(err error, fallback string) Result {
	authErr := &AuthError{Message: fallback, Err: err}
	if err == nil {
		authErr.Err = shared.ErrAuthFailed
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		authErr.Payload = apiErr.Payload
		if msg := services.PayloadMessage(apiErr.Payload); msg != "" {
			authErr.Message = msg
		}
	}
	return Result{Err: authErr}
}

// ValidateRegistration checks a registration form before it is sent.
func ValidateRegistration(req models.RegisterRequest) error {
	switch {
	case req.Username == "":
		return fmt.Errorf("%w: username is required", shared.ErrMissingArgument)
	case req.Email == "":
		return fmt.Errorf("%w: email is required", shared.ErrMissingArgument)
	case req.Password == "" || req.Password2 == "":
		return fmt.Errorf("%w: password and confirmation are required", shared.ErrMissingArgument)
	case req.Password != req.Password2:
		return shared.ErrPasswordMismatch
	case req.Plan <= 0:
		return fmt.Errorf("%w: a subscription plan is required", shared.ErrMissingArgument)
	}
	return nil
}
