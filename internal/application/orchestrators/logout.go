package orchestrators

import (
	"context"
	"log/slog"

	"activitypass/internal/domain/route"
)

// SessionStoreForLogout defines the session surface needed by Logout.
type SessionStoreForLogout interface {
	Logout(ctx context.Context)
}

// LogoutResult carries the result of a logout.
type LogoutResult struct {
	RedirectTo string
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions SessionStoreForLogout
}

// ExecuteLogout ends the session unconditionally and routes to the login
// view. Logout never fails from the caller's point of view.
// POST: The session is anonymous; RedirectTo is the login path
func ExecuteLogout(ctx context.Context, deps LogoutDeps) LogoutResult {
	deps.Sessions.Logout(ctx)
	slog.Info("auth_event", "event", "logout")
	return LogoutResult{RedirectTo: route.LoginPath}
}
