package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"activitypass/internal/application/session"
	"activitypass/internal/domain/identity"
	"activitypass/internal/domain/route"
)

// SessionStoreForProfile defines the session surface needed by
// CompleteProfile.
type SessionStoreForProfile interface {
	AccessToken() (string, bool)
	RefreshIdentity(ctx context.Context) (identity.Identity, error)
}

// IdentityUpdater pushes profile changes to the backend.
type IdentityUpdater interface {
	UpdateIdentity(ctx context.Context, accessToken, firstName string, profile identity.StudentProfile) (identity.Identity, error)
}

// CompleteProfileInput carries input for the profile completion form.
type CompleteProfileInput struct {
	FirstName    string
	Phone        string
	Major        string
	College      string
	ChineseLevel string
	Year         string
}

// CompleteProfileResult carries the result of profile completion.
type CompleteProfileResult struct {
	Identity   identity.Identity
	RedirectTo string
}

// CompleteProfileDeps holds dependencies for CompleteProfile.
type CompleteProfileDeps struct {
	Sessions SessionStoreForProfile
	Updater  IdentityUpdater
}

var ErrFirstNameRequired = errors.New("first name is required")

// ExecuteCompleteProfile submits the onboarding form and re-resolves the
// session identity so the access guard stops redirecting to onboarding.
// PRE: An authenticated session exists
// POST: On success the session identity reflects the completed profile and
// RedirectTo is the role home
func ExecuteCompleteProfile(ctx context.Context, input CompleteProfileInput, deps CompleteProfileDeps) (CompleteProfileResult, error) {
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return CompleteProfileResult{}, ErrFirstNameRequired
	}

	access, ok := deps.Sessions.AccessToken()
	if !ok {
		return CompleteProfileResult{}, session.ErrNotAuthenticated
	}

	profile := identity.StudentProfile{
		Phone:        strings.TrimSpace(input.Phone),
		Major:        strings.TrimSpace(input.Major),
		College:      strings.TrimSpace(input.College),
		ChineseLevel: strings.TrimSpace(input.ChineseLevel),
		Year:         strings.TrimSpace(input.Year),
	}
	if _, err := deps.Updater.UpdateIdentity(ctx, access, firstName, profile); err != nil {
		slog.Warn("auth_event", "event", "profile_update_failed", "error", err)
		return CompleteProfileResult{}, err
	}

	// The session store is the single identity authority: commit the new
	// identity through it rather than trusting the update response.
	ident, err := deps.Sessions.RefreshIdentity(ctx)
	if err != nil {
		return CompleteProfileResult{}, err
	}

	slog.Info("auth_event", "event", "profile_completed", "username", ident.Username)
	return CompleteProfileResult{Identity: ident, RedirectTo: route.HomePath(ident.Role)}, nil
}
