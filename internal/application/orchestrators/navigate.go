package orchestrators

import (
	"context"
	"time"

	"activitypass/internal/application/session"
	"activitypass/internal/domain/nav"
	"activitypass/internal/domain/prefs"
	"activitypass/internal/domain/route"
)

// SessionStoreForNavigate defines the session surface needed by Navigate.
type SessionStoreForNavigate interface {
	Snapshot() session.Snapshot
}

// PreferenceStoreForNavigate defines the preference surface needed by
// Navigate.
type PreferenceStoreForNavigate interface {
	Current() prefs.Preferences
}

// NavigateInput carries input for one navigation.
type NavigateInput struct {
	Path string
	Now  time.Time
}

// NavigateResult is the complete view model for one navigation: the guard
// decision plus everything the chrome renders around the routed view.
type NavigateResult struct {
	Decision      route.Decision
	Links         []nav.Link
	ActiveLink    string
	ShowBottomNav bool
	ShowLoginCTA  bool
	Greeting      string
	DisplayName   string
	Preferences   prefs.Preferences
}

// NavigateDeps holds dependencies for Navigate.
type NavigateDeps struct {
	Sessions SessionStoreForNavigate
	Prefs    PreferenceStoreForNavigate
	Guard    *route.Guard
}

// ExecuteNavigate evaluates one navigation against the current session and
// assembles the navigation chrome. The guard decision is authoritative;
// links are presentation only and never widen access.
// POST: Result is a pure function of the session snapshot, preferences,
// path, and clock
func ExecuteNavigate(ctx context.Context, input NavigateInput, deps NavigateDeps) NavigateResult {
	snap := deps.Sessions.Snapshot()
	routeSnap := snap.RouteSnapshot()

	result := NavigateResult{
		Decision:     deps.Guard.Evaluate(routeSnap, input.Path),
		ShowLoginCTA: nav.ShowLoginCTA(routeSnap.HasTokens, input.Path),
		Greeting:     nav.GreetingPeriod(input.Now.Hour()),
		Preferences:  deps.Prefs.Current(),
	}

	result.Links = nav.LinksFor(routeSnap.Role, routeSnap.HasTokens)
	if active, ok := nav.ActiveLink(result.Links, input.Path); ok {
		result.ActiveLink = active
	}
	result.ShowBottomNav = nav.ShowBottomNav(routeSnap.Role, result.Links)
	if snap.Identity != nil {
		result.DisplayName = snap.Identity.DisplayName()
	}
	return result
}
