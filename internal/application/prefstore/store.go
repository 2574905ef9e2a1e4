// Package prefstore owns the resolved UI preferences and keeps them in sync
// with storage across identity changes. Writes are scope-aware: a bound
// identity writes its own record and the device-global record, so the next
// anonymous session on the same device keeps the last-used settings.
package prefstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"activitypass/internal/domain/prefs"
)

// GlobalScope is the device-wide record key used before login.
const GlobalScope = "global"

// IdentityScope derives the record key for one identity.
func IdentityScope(identityID int64) string {
	return fmt.Sprintf("user:%d", identityID)
}

// RecordStore persists partial preference records per scope. A nil record
// with a nil error means "nothing stored for this scope".
type RecordStore interface {
	LoadRecord(ctx context.Context, scope string) (*prefs.Record, error)
	SaveRecord(ctx context.Context, scope string, rec prefs.Record) error
	LegacyLanguage(ctx context.Context) (string, error)
	SaveLegacyLanguage(ctx context.Context, code string) error
}

// Localizer swaps the active message catalog.
type Localizer interface {
	SetLanguage(code string)
}

// Presenter applies the visual theme to the document.
type Presenter interface {
	ApplyTheme(theme string)
}

// Store resolves and mutates preferences. Safe for concurrent use.
//
// Storage failures never surface to callers: the in-memory value is the
// source of truth for the running session and persistence is best effort.
type Store struct {
	records   RecordStore
	localizer Localizer
	presenter Presenter
	defaults  prefs.Preferences

	mu      sync.Mutex
	current prefs.Preferences
	scope   string // identity scope, or "" when anonymous

	subs    map[int]func(prefs.Preferences)
	nextSub int
}

// NewStore creates a store resolved to the given defaults. Call Rebind to
// load persisted records before first use.
// PRE: defaults has both fields set
func NewStore(records RecordStore, localizer Localizer, presenter Presenter, defaults prefs.Preferences) *Store {
	return &Store{
		records:   records,
		localizer: localizer,
		presenter: presenter,
		defaults:  defaults,
		current:   defaults,
		subs:      make(map[int]func(prefs.Preferences)),
	}
}

// Current returns the resolved preferences.
func (s *Store) Current() prefs.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a listener invoked immediately and after every
// committed change.
// POST: Returns an idempotent unsubscribe func
func (s *Store) Subscribe(fn func(prefs.Preferences)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Rebind re-resolves preferences for a new owning identity. Pass zero to
// bind the anonymous scope. The result is applied to the localizer and
// presenter only when it differs from the current value.
// POST: Current() reflects the layered resolution for the new scope
func (s *Store) Rebind(ctx context.Context, identityID int64) {
	scope := ""
	var identityRec *prefs.Record
	if identityID != 0 {
		scope = IdentityScope(identityID)
		identityRec = s.loadRecord(ctx, scope)
	}
	globalRec := s.loadRecord(ctx, GlobalScope)

	legacy := ""
	if identityRec == nil && globalRec == nil {
		var err error
		legacy, err = s.records.LegacyLanguage(ctx)
		if err != nil {
			slog.Warn("prefs_event", "event", "legacy_read_failed", "error", err)
			legacy = ""
		}
	}

	resolved := prefs.Resolve(s.defaults, identityRec, globalRec, legacy)

	s.mu.Lock()
	s.scope = scope
	changed := resolved != s.current
	languageChanged := resolved.Language != s.current.Language
	themeChanged := resolved.Theme != s.current.Theme
	s.current = resolved
	if changed {
		s.notifyLocked()
	}
	s.mu.Unlock()

	if languageChanged {
		s.localizer.SetLanguage(resolved.Language)
	}
	if themeChanged {
		s.presenter.ApplyTheme(resolved.Theme)
	}
	slog.Info("prefs_event", "event", "rebound", "scope", scopeLabel(scope), "language", resolved.Language, "theme", resolved.Theme)
}

// SetLanguage switches the UI language. Values outside the closed set are
// ignored without error, and setting the current value is a no-op that
// performs no writes.
func (s *Store) SetLanguage(ctx context.Context, code string) {
	if !prefs.ValidLanguage(code) {
		slog.Warn("prefs_event", "event", "invalid_language_rejected", "value", code)
		return
	}

	s.mu.Lock()
	if s.current.Language == code {
		s.mu.Unlock()
		return
	}
	s.current.Language = code
	record := prefs.RecordOf(s.current)
	scope := s.scope
	s.notifyLocked()
	s.mu.Unlock()

	s.localizer.SetLanguage(code)
	s.persist(ctx, scope, record)
	if err := s.records.SaveLegacyLanguage(ctx, code); err != nil {
		slog.Warn("prefs_event", "event", "legacy_write_failed", "error", err)
	}
	slog.Info("prefs_event", "event", "language_changed", "language", code)
}

// SetTheme switches the visual theme with the same validation and
// idempotence rules as SetLanguage.
func (s *Store) SetTheme(ctx context.Context, mode string) {
	if !prefs.ValidTheme(mode) {
		slog.Warn("prefs_event", "event", "invalid_theme_rejected", "value", mode)
		return
	}

	s.mu.Lock()
	if s.current.Theme == mode {
		s.mu.Unlock()
		return
	}
	s.current.Theme = mode
	record := prefs.RecordOf(s.current)
	scope := s.scope
	s.notifyLocked()
	s.mu.Unlock()

	s.presenter.ApplyTheme(mode)
	s.persist(ctx, scope, record)
	slog.Info("prefs_event", "event", "theme_changed", "theme", mode)
}

// persist writes the full record to the bound identity scope (when bound)
// and always to the global scope. Failures are logged and swallowed.
func (s *Store) persist(ctx context.Context, scope string, record prefs.Record) {
	if scope != "" {
		if err := s.records.SaveRecord(ctx, scope, record); err != nil {
			slog.Warn("prefs_event", "event", "record_write_failed", "scope", scopeLabel(scope), "error", err)
		}
	}
	if err := s.records.SaveRecord(ctx, GlobalScope, record); err != nil {
		slog.Warn("prefs_event", "event", "record_write_failed", "scope", GlobalScope, "error", err)
	}
}

func (s *Store) loadRecord(ctx context.Context, scope string) *prefs.Record {
	rec, err := s.records.LoadRecord(ctx, scope)
	if err != nil {
		slog.Warn("prefs_event", "event", "record_read_failed", "scope", scopeLabel(scope), "error", err)
		return nil
	}
	return rec
}

// notifyLocked fans the current value out to subscribers.
// PRE: s.mu held
func (s *Store) notifyLocked() {
	for _, fn := range s.subs {
		fn(s.current)
	}
}

func scopeLabel(scope string) string {
	if scope == "" {
		return "anonymous"
	}
	return scope
}
