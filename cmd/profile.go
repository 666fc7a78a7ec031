package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/urfave/cli/v3"
)

// ProfileShow refetches and prints the current user.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	m, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	user, err := m.RefreshProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}
	r.printUser(user)
	return nil
}

// ProfileUpdate sends only the fields given on the command line.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	var patch models.ProfilePatch
	if cmd.IsSet("email") {
		v := cmd.String("email")
		patch.Email = &v
	}
	if cmd.IsSet("first-name") {
		v := cmd.String("first-name")
		patch.FirstName = &v
	}
	if cmd.IsSet("last-name") {
		v := cmd.String("last-name")
		patch.LastName = &v
	}
	if cmd.IsSet("plan") {
		v := int(cmd.Int("plan"))
		patch.Plan = &v
	}

	m, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	user, err := m.UpdateProfile(ctx, patch)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	r.writePlain("✓ Profile updated\n")
	r.printUser(user)
	return nil
}

func (r *Runner) printUser(u *models.User) {
	r.writePlainHeader(u.DisplayName())
	r.writePlain("Username: %s\n", u.Username)
	r.writePlain("Email:    %s\n", u.Email)
	r.writePlain("Plan:     %d\n", u.Plan.ID)
	if u.SubscriptionEndDate != nil {
		r.writePlain("Renews:   %s\n", *u.SubscriptionEndDate)
	}
}
