package orchestrators

import (
	"context"
	"log/slog"

	"activitypass/internal/application/session"
)

// SessionStoreForStartup defines the session surface needed by Startup.
type SessionStoreForStartup interface {
	Restore(ctx context.Context) error
	Subscribe(fn func(session.Snapshot)) func()
}

// PreferenceStoreForStartup defines the preference surface needed by Startup.
type PreferenceStoreForStartup interface {
	Rebind(ctx context.Context, identityID int64)
}

// DeviceStore provides the stable per-install identifier.
type DeviceStore interface {
	GetOrCreateInstallID(ctx context.Context) (string, error)
}

// StartupDeps holds dependencies for Startup.
type StartupDeps struct {
	Sessions SessionStoreForStartup
	Prefs    PreferenceStoreForStartup
	Device   DeviceStore
}

// StartupResult carries the result of application startup.
type StartupResult struct {
	InstallID string
}

// ExecuteStartup boots the client: resolves the install id, binds
// preferences to the anonymous scope, restores the persisted session, and
// keeps preferences re-bound to whichever identity the session settles on.
// POST: Preferences follow every identity change for the process lifetime
func ExecuteStartup(ctx context.Context, deps StartupDeps) (StartupResult, error) {
	installID, err := deps.Device.GetOrCreateInstallID(ctx)
	if err != nil {
		// The install id is diagnostic only; startup proceeds without it.
		slog.Warn("startup_event", "event", "install_id_failed", "error", err)
		installID = ""
	}

	deps.Prefs.Rebind(ctx, 0)

	// Rebind only when the owning identity actually changes, not on every
	// session commit: loading and token refreshes keep the same owner.
	lastID := int64(0)
	deps.Sessions.Subscribe(func(snap session.Snapshot) {
		id := int64(0)
		if snap.Identity != nil {
			id = snap.Identity.ID
		}
		if id == lastID {
			return
		}
		lastID = id
		deps.Prefs.Rebind(ctx, id)
	})

	if err := deps.Sessions.Restore(ctx); err != nil {
		return StartupResult{}, err
	}

	slog.Info("startup_event", "event", "started", "install_id", installID)
	return StartupResult{InstallID: installID}, nil
}
