// package services defines the clients used to talk to the streaming backend
package services

import (
	"context"

	"github.com/desertthunder/streamz/internal/models"
)

// AuthClient is the slice of the backend the session layer depends on.
type AuthClient interface {
	// Login exchanges credentials for a token and user.
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)

	// Register creates an account, returning its token and user.
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)

	// Profile fetches the user owning the installed token.
	Profile(ctx context.Context) (*models.User, error)

	// UpdateProfile patches the current user.
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error)

	// SetToken installs (or, when empty, removes) the token sent on every request.
	SetToken(token string)
}

// ProgressReporter receives progress updates from the player.
type ProgressReporter interface {
	UpdateProgress(ctx context.Context, update models.ProgressUpdate) (*models.HistoryEntry, error)
}

// Catalog is the read side of the backend used by the browse views.
type Catalog interface {
	ContentList(ctx context.Context, opts ListOptions) (*models.Page[models.Content], error)
	Content(ctx context.Context, id int) (*models.Content, error)
	ByType(ctx context.Context, kind models.ContentType, page int) (*models.Page[models.Content], error)
	Trending(ctx context.Context) ([]models.Content, error)
	Recommendations(ctx context.Context) ([]models.Content, error)
	ContinueWatching(ctx context.Context) ([]models.HistoryEntry, error)
}

var (
	_ AuthClient       = (*APIService)(nil)
	_ ProgressReporter = (*APIService)(nil)
	_ Catalog          = (*APIService)(nil)
)
