package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/session"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and persists the issued token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	password := cmd.String("password")
	if username == "" || password == "" {
		return fmt.Errorf("%w: --username and --password are required", shared.ErrMissingArgument)
	}

	m, err := r.sessionManager(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "username", username, "api", r.api.BaseURL())
	res := m.Login(ctx, username, password)
	if !res.OK {
		return r.authFailure(res.Err)
	}

	return r.writePlain("✓ Signed in as %s\n", res.User.DisplayName())
}

// AuthRegister validates the form locally, then creates the account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	req := models.RegisterRequest{
		Username:  cmd.String("username"),
		Email:     cmd.String("email"),
		Password:  cmd.String("password"),
		Password2: cmd.String("confirm"),
		FirstName: cmd.String("first-name"),
		LastName:  cmd.String("last-name"),
		Plan:      int(cmd.Int("plan")),
	}
	if !cmd.IsSet("confirm") {
		req.Password2 = req.Password
	}

	if err := session.ValidateRegistration(req); err != nil {
		return err
	}

	m, err := r.sessionManager(ctx)
	if err != nil {
		return err
	}

	res := m.Register(ctx, req)
	if !res.OK {
		return r.authFailure(res.Err)
	}

	r.writePlain("✓ Account created\n")
	return r.writePlain("✓ Signed in as %s\n", res.User.DisplayName())
}

// authFailure prints every field error the backend sent and returns the display message.
func (r *Runner) authFailure(authErr *session.AuthError) error {
	if len(authErr.Payload) > 1 {
		keys := make([]string, 0, len(authErr.Payload))
		for k := range authErr.Payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.writePlain("  %s: %s\n", k, fieldMessage(authErr.Payload[k]))
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrAuthFailed, authErr.Message)
}

func fieldMessage(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}

// AuthLogout clears the session and the stored token. No network call is made.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	m, err := r.sessionManager(ctx)
	if err != nil {
		return err
	}
	m.Logout()
	return r.writePlain("✓ Signed out\n")
}

type statusOutput struct {
	State string       `json:"state"`
	API   string       `json:"api"`
	User  *models.User `json:"user,omitempty"`
}

// AuthStatus validates the stored token against the backend and prints the session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking session", "api", r.api.BaseURL())

	m, err := r.startSession(ctx)
	if err != nil {
		return err
	}
	snap := m.Snapshot()

	if cmd.Bool("json") {
		return r.writeJSON(statusOutput{State: snap.State.String(), API: r.api.BaseURL(), User: snap.User}, true)
	}

	r.writePlain("API: %s\n", r.api.BaseURL())
	switch {
	case snap.User != nil:
		r.writePlain("Session: ✓ Signed in as %s (%s)\n", snap.User.DisplayName(), snap.User.Username)
		r.writePlain("Plan: %d\n", snap.User.Plan.ID)
		if !snap.User.SubscriptionActive {
			r.writePlain("Subscription: inactive\n")
		}
	case snap.IsAuthenticated():
		r.writePlain("Session: token held, profile unavailable\n")
	default:
		r.writePlain("Session: ✗ Not signed in\n")
	}
	return nil
}
