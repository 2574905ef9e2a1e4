// Package session owns the client's authentication state: the persisted
// token pair, the resolved identity, and the tri-state loading flag in
// between. All transitions commit under one mutex and are guarded by an
// epoch counter so a stale in-flight identity fetch can never overwrite
// a newer state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"activitypass/internal/domain/identity"
	"activitypass/internal/domain/route"
	"activitypass/internal/domain/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("session expired — sign in again")
	ErrNotAuthenticated   = errors.New("no active session")
)

// Provider is the authentication backend. Every method takes the tokens it
// needs explicitly; the provider holds no session state of its own.
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
	FetchIdentity(ctx context.Context, accessToken string) (identity.Identity, error)
}

// TokenStore persists the token pair across launches.
type TokenStore interface {
	Load(ctx context.Context) (*token.Pair, error)
	Save(ctx context.Context, pair token.Pair) error
	Clear(ctx context.Context) error
}

// Snapshot is an immutable view of the session handed to subscribers. The
// identity is a deep copy; holding or mutating it cannot affect the store.
type Snapshot struct {
	HasTokens bool
	Loading   bool
	Identity  *identity.Identity
}

// Authenticated reports whether a verified identity is present.
func (s Snapshot) Authenticated() bool { return s.HasTokens && s.Identity != nil }

// RouteSnapshot projects the session into the access guard's input.
func (s Snapshot) RouteSnapshot() route.Snapshot {
	out := route.Snapshot{HasTokens: s.HasTokens, IdentityLoaded: s.Identity != nil}
	if s.Identity != nil {
		out.Role = s.Identity.Role
		out.ProfileComplete = s.Identity.ProfileComplete()
	}
	return out
}

// Store is the session state machine. Safe for concurrent use.
type Store struct {
	provider Provider
	tokens   TokenStore

	mu       sync.Mutex
	epoch    uint64
	pair     *token.Pair
	identity *identity.Identity
	loading  bool

	subs    map[int]func(Snapshot)
	nextSub int

	// now and staleSkew feed the proactive refresh window.
	now       func() time.Time
	staleSkew time.Duration

	// runAsync launches the background identity fetch; replaced in tests
	// to make commit ordering deterministic.
	runAsync func(func())
}

// NewStore creates a session store in the anonymous state.
func NewStore(provider Provider, tokens TokenStore) *Store {
	return &Store{
		provider:  provider,
		tokens:    tokens,
		subs:      make(map[int]func(Snapshot)),
		now:       time.Now,
		staleSkew: 30 * time.Second,
		runAsync:  func(f func()) { go f() },
	}
}

// Snapshot returns the current session view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{HasTokens: s.pair != nil, Loading: s.loading}
	if s.identity != nil {
		ident := s.identity.Clone()
		snap.Identity = &ident
	}
	return snap
}

// Subscribe registers a listener notified after every committed transition.
// The listener is invoked immediately with the current state, then once per
// commit, never concurrently with a later mutation of the same store.
// POST: Returns an idempotent unsubscribe func
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notifyLocked fans the current state out to subscribers.
// PRE: s.mu held
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for _, fn := range s.subs {
		fn(snap)
	}
}

// AccessToken returns the current access token, if any.
func (s *Store) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pair == nil {
		return "", false
	}
	return s.pair.Access, true
}

// Restore rebuilds the session from persisted tokens at startup.
//
// With no stored pair the store settles anonymous immediately. With a pair
// it commits the loading state first — tokens present, identity pending —
// and resolves the identity in the background. Until that fetch commits,
// the guard sees IdentityLoaded=false and renders nothing protected.
// POST: State is anonymous or loading on return; a background commit
// settles loading into authenticated or anonymous
func (s *Store) Restore(ctx context.Context) error {
	pair, err := s.tokens.Load(ctx)
	if err != nil {
		slog.Warn("session_event", "event", "restore_load_failed", "error", err)
		pair = nil
	}
	if pair == nil || !pair.Present() {
		s.mu.Lock()
		s.clearLocked()
		s.notifyLocked()
		s.mu.Unlock()
		slog.Info("session_event", "event", "restore_anonymous")
		return nil
	}

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.pair = &token.Pair{Access: pair.Access, Refresh: pair.Refresh}
	s.identity = nil
	s.loading = true
	s.notifyLocked()
	s.mu.Unlock()

	slog.Info("session_event", "event", "restore_loading")
	s.runAsync(func() { s.resolveIdentity(ctx, epoch) })
	return nil
}

// resolveIdentity fetches the identity for the pair committed at epoch and
// commits the outcome only if no newer transition happened in between.
func (s *Store) resolveIdentity(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch || s.pair == nil {
		s.mu.Unlock()
		return
	}
	pair := *s.pair
	s.mu.Unlock()

	var ident identity.Identity
	var err error
	if pair.AccessStale(s.now(), s.staleSkew) {
		// The persisted access token is already (or nearly) expired; exchange
		// it up front instead of burning a request that will come back 401.
		ident, err = s.refreshAndRefetch(ctx, epoch)
	} else {
		ident, err = s.provider.FetchIdentity(ctx, pair.Access)
		if errors.Is(err, ErrSessionExpired) {
			ident, err = s.refreshAndRefetch(ctx, epoch)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// A login or logout won the race; this result is stale.
		slog.Info("session_event", "event", "identity_fetch_discarded")
		return
	}
	if err != nil {
		// Fail closed: an unverifiable session renders as no session.
		slog.Warn("session_event", "event", "identity_fetch_failed", "error", err)
		if errors.Is(err, ErrSessionExpired) {
			_ = s.tokens.Clear(ctx)
		}
		s.clearLocked()
		s.notifyLocked()
		return
	}
	clone := ident.Clone()
	s.identity = &clone
	s.loading = false
	s.notifyLocked()
	slog.Info("session_event", "event", "identity_loaded", "username", ident.Username, "role", ident.Role)
}

// refreshAndRefetch exchanges the refresh token for a new pair, persists it,
// and retries the identity fetch once.
func (s *Store) refreshAndRefetch(ctx context.Context, epoch uint64) (identity.Identity, error) {
	s.mu.Lock()
	if s.epoch != epoch || s.pair == nil {
		s.mu.Unlock()
		return identity.Identity{}, ErrSessionExpired
	}
	refresh := s.pair.Refresh
	s.mu.Unlock()

	pair, err := s.provider.Refresh(ctx, refresh)
	if err != nil {
		return identity.Identity{}, err
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return identity.Identity{}, ErrSessionExpired
	}
	s.pair = &token.Pair{Access: pair.Access, Refresh: pair.Refresh}
	s.mu.Unlock()

	if err := s.tokens.Save(ctx, pair); err != nil {
		slog.Warn("session_event", "event", "token_persist_failed", "error", err)
	}
	slog.Info("session_event", "event", "token_refreshed")
	return s.provider.FetchIdentity(ctx, pair.Access)
}

// Login authenticates and resolves the identity before committing anything.
// A failure at any step leaves the previous state fully intact.
// POST: On success the pair is persisted and the state is authenticated;
// on error no observable state changed
func (s *Store) Login(ctx context.Context, username, password string) (identity.Identity, error) {
	pair, err := s.provider.Authenticate(ctx, username, password)
	if err != nil {
		slog.Info("session_event", "event", "login_failed", "username", username)
		return identity.Identity{}, err
	}
	ident, err := s.provider.FetchIdentity(ctx, pair.Access)
	if err != nil {
		slog.Warn("session_event", "event", "login_identity_failed", "username", username, "error", err)
		return identity.Identity{}, err
	}

	s.mu.Lock()
	s.epoch++
	s.pair = &token.Pair{Access: pair.Access, Refresh: pair.Refresh}
	clone := ident.Clone()
	s.identity = &clone
	s.loading = false
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.tokens.Save(ctx, pair); err != nil {
		// The live session stands; only the next launch loses restore.
		slog.Warn("session_event", "event", "token_persist_failed", "error", err)
	}
	slog.Info("session_event", "event", "login_success", "username", ident.Username, "role", ident.Role)
	return ident, nil
}

// RefreshIdentity re-fetches the identity for the current pair, e.g. after
// the profile was completed. The commit is epoch-guarded: a logout during
// the fetch wins and the fetched identity is discarded.
func (s *Store) RefreshIdentity(ctx context.Context) (identity.Identity, error) {
	s.mu.Lock()
	if s.pair == nil {
		s.mu.Unlock()
		return identity.Identity{}, ErrNotAuthenticated
	}
	epoch := s.epoch
	access := s.pair.Access
	s.mu.Unlock()

	ident, err := s.provider.FetchIdentity(ctx, access)
	if err != nil {
		return identity.Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.pair == nil {
		slog.Info("session_event", "event", "identity_fetch_discarded")
		return identity.Identity{}, ErrNotAuthenticated
	}
	clone := ident.Clone()
	s.identity = &clone
	s.loading = false
	s.notifyLocked()
	return ident, nil
}

// EnsureFresh refreshes the access token when it is inside the staleness
// window, so callers never send a request with a token about to expire.
// Opaque (non-JWT) access tokens are never considered stale.
func (s *Store) EnsureFresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.pair == nil {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	epoch := s.epoch
	pair := *s.pair
	s.mu.Unlock()

	if !pair.AccessStale(s.now(), s.staleSkew) {
		return pair.Access, nil
	}

	fresh, err := s.provider.Refresh(ctx, pair.Refresh)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	s.pair = &token.Pair{Access: fresh.Access, Refresh: fresh.Refresh}
	s.mu.Unlock()

	if err := s.tokens.Save(ctx, fresh); err != nil {
		slog.Warn("session_event", "event", "token_persist_failed", "error", err)
	}
	slog.Info("session_event", "event", "token_refreshed")
	return fresh.Access, nil
}

// Logout drops to anonymous: bumps the epoch so in-flight fetches discard,
// clears the persisted pair, and notifies subscribers exactly once.
// POST: State is anonymous; persisted tokens are cleared
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.clearLocked()
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.tokens.Clear(ctx); err != nil {
		slog.Warn("session_event", "event", "token_clear_failed", "error", err)
	}
	slog.Info("session_event", "event", "logout")
}

// Invalidate is the 401/403 path: the backend no longer honors the pair, so
// the session ends regardless of what the client believes.
func (s *Store) Invalidate(ctx context.Context) {
	s.mu.Lock()
	hadSession := s.pair != nil
	s.clearLocked()
	if hadSession {
		s.notifyLocked()
	}
	s.mu.Unlock()

	if hadSession {
		_ = s.tokens.Clear(ctx)
		slog.Info("session_event", "event", "session_invalidated")
	}
}

// clearLocked resets to the anonymous state and advances the epoch.
// PRE: s.mu held
func (s *Store) clearLocked() {
	s.epoch++
	s.pair = nil
	s.identity = nil
	s.loading = false
}
