package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/streamz/internal/models"
)

// Login exchanges credentials for a token and the user record.
func (a *APIService) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := models.Credentials{Username: username, Password: password}
	if err := a.doPublic(ctx, http.MethodPost, "/auth/login/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its token and user record.
func (a *APIService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := a.doPublic(ctx, http.MethodPost, "/auth/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile fetches the user owning the installed token.
func (a *APIService) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.doRequest(ctx, http.MethodGet, "/auth/profile/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial update to the current user.
func (a *APIService) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	var user models.User
	if err := a.doRequest(ctx, http.MethodPatch, "/auth/profile/", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Plans lists the subscription plans. The endpoint is public.
func (a *APIService) Plans(ctx context.Context) ([]models.Plan, error) {
	page, err := getList[models.Plan](ctx, a, "/auth/plans/")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}
