package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"activitypass/internal/application/session"
	"activitypass/internal/domain/identity"
	"activitypass/internal/domain/route"
)

// SessionStoreForLogin defines the session surface needed by Login.
type SessionStoreForLogin interface {
	Login(ctx context.Context, username, password string) (identity.Identity, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Identity   identity.Identity
	RedirectTo string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Sessions SessionStoreForLogin
}

// ExecuteLogin authenticates and resolves the post-login destination: the
// role home, or the onboarding view for a student without a completed
// profile.
// PRE: none — blank input short-circuits before the network
// POST: Returns the committed identity and a redirect target on success
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return LoginResult{}, session.ErrInvalidCredentials
	}

	ident, err := deps.Sessions.Login(ctx, username, input.Password)
	if err != nil {
		slog.Info("auth_event", "event", "login_rejected", "username", username)
		return LoginResult{}, err
	}

	redirect := route.HomePath(ident.Role)
	if ident.IsStudent() && !ident.ProfileComplete() {
		redirect = route.CompleteProfilePath
	}

	slog.Info("auth_event", "event", "login_success", "username", ident.Username, "role", ident.Role, "redirect", redirect)
	return LoginResult{Identity: ident, RedirectTo: redirect}, nil
}
