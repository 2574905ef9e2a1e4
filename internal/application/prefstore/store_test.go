package prefstore_test

import (
	"context"
	"errors"
	"testing"

	"activitypass/internal/application/prefstore"
	"activitypass/internal/domain/prefs"
)

var defaults = prefs.Preferences{Language: prefs.LanguageEnglish, Theme: prefs.ThemeLight}

type fakeRecordStore struct {
	records map[string]prefs.Record
	legacy  string

	loadErr error
	saveErr error
	saves   int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string]prefs.Record)}
}

func (f *fakeRecordStore) LoadRecord(ctx context.Context, scope string) (*prefs.Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	rec, ok := f.records[scope]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeRecordStore) SaveRecord(ctx context.Context, scope string, rec prefs.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.records[scope] = rec
	return nil
}

func (f *fakeRecordStore) LegacyLanguage(ctx context.Context) (string, error) {
	return f.legacy, nil
}

func (f *fakeRecordStore) SaveLegacyLanguage(ctx context.Context, code string) error {
	f.legacy = code
	return nil
}

type fakePresentation struct {
	languages []string
	themes    []string
}

func (f *fakePresentation) SetLanguage(code string) { f.languages = append(f.languages, code) }
func (f *fakePresentation) ApplyTheme(theme string) { f.themes = append(f.themes, theme) }

func newStore(records prefstore.RecordStore) (*prefstore.Store, *fakePresentation) {
	present := &fakePresentation{}
	return prefstore.NewStore(records, present, present, defaults), present
}

// TestStore_Rebind tests layered resolution across scopes.
func TestStore_Rebind(t *testing.T) {
	t.Run("nothing stored resolves defaults", func(t *testing.T) {
		store, _ := newStore(newFakeRecordStore())
		store.Rebind(context.Background(), 0)
		if got := store.Current(); got != defaults {
			t.Errorf("Current() = %+v, want defaults", got)
		}
	})

	t.Run("identity field wins over global field", func(t *testing.T) {
		records := newFakeRecordStore()
		records.records[prefstore.GlobalScope] = prefs.Record{Language: prefs.LanguageChinese, Theme: prefs.ThemeLight}
		records.records[prefstore.IdentityScope(7)] = prefs.Record{Theme: prefs.ThemeDark}

		store, present := newStore(records)
		store.Rebind(context.Background(), 7)

		want := prefs.Preferences{Language: prefs.LanguageChinese, Theme: prefs.ThemeDark}
		if got := store.Current(); got != want {
			t.Errorf("Current() = %+v, want %+v", got, want)
		}
		if len(present.languages) != 1 || present.languages[0] != prefs.LanguageChinese {
			t.Errorf("localizer calls = %v, want [zh]", present.languages)
		}
		if len(present.themes) != 1 || present.themes[0] != prefs.ThemeDark {
			t.Errorf("presenter calls = %v, want [dark]", present.themes)
		}
	})

	t.Run("legacy language honored only without records", func(t *testing.T) {
		records := newFakeRecordStore()
		records.legacy = prefs.LanguageChinese

		store, _ := newStore(records)
		store.Rebind(context.Background(), 0)
		if got := store.Current().Language; got != prefs.LanguageChinese {
			t.Errorf("Current().Language = %q, want %q", got, prefs.LanguageChinese)
		}

		records.records[prefstore.GlobalScope] = prefs.Record{Theme: prefs.ThemeDark}
		store.Rebind(context.Background(), 0)
		if got := store.Current().Language; got != prefs.LanguageEnglish {
			t.Errorf("Current().Language = %q after record appeared, want %q", got, prefs.LanguageEnglish)
		}
	})

	t.Run("unreadable records fall back to defaults", func(t *testing.T) {
		records := newFakeRecordStore()
		records.loadErr = errors.New("database is locked")

		store, _ := newStore(records)
		store.Rebind(context.Background(), 7)
		if got := store.Current(); got != defaults {
			t.Errorf("Current() = %+v, want defaults", got)
		}
	})

	t.Run("unchanged resolution applies nothing", func(t *testing.T) {
		store, present := newStore(newFakeRecordStore())
		store.Rebind(context.Background(), 0)
		store.Rebind(context.Background(), 0)
		if len(present.languages) != 0 || len(present.themes) != 0 {
			t.Errorf("presentation calls = %v/%v, want none", present.languages, present.themes)
		}
	})
}

// TestStore_SetLanguage tests validation, idempotence, and dual-write.
func TestStore_SetLanguage(t *testing.T) {
	t.Run("writes identity and global scopes", func(t *testing.T) {
		records := newFakeRecordStore()
		store, present := newStore(records)
		store.Rebind(context.Background(), 7)

		store.SetLanguage(context.Background(), prefs.LanguageChinese)

		for _, scope := range []string{prefstore.IdentityScope(7), prefstore.GlobalScope} {
			rec, ok := records.records[scope]
			if !ok || rec.Language != prefs.LanguageChinese {
				t.Errorf("record[%s] = %+v, want language zh", scope, rec)
			}
		}
		if records.legacy != prefs.LanguageChinese {
			t.Errorf("legacy marker = %q, want %q", records.legacy, prefs.LanguageChinese)
		}
		if len(present.languages) != 1 || present.languages[0] != prefs.LanguageChinese {
			t.Errorf("localizer calls = %v, want [zh]", present.languages)
		}
	})

	t.Run("anonymous writes only the global scope", func(t *testing.T) {
		records := newFakeRecordStore()
		store, _ := newStore(records)
		store.Rebind(context.Background(), 0)

		store.SetLanguage(context.Background(), prefs.LanguageChinese)
		if records.saves != 1 {
			t.Errorf("saves = %d, want 1", records.saves)
		}
		if _, ok := records.records[prefstore.GlobalScope]; !ok {
			t.Error("global record missing")
		}
	})

	t.Run("invalid value silently ignored", func(t *testing.T) {
		records := newFakeRecordStore()
		store, present := newStore(records)

		store.SetLanguage(context.Background(), "fr")
		if got := store.Current(); got != defaults {
			t.Errorf("Current() = %+v, want defaults", got)
		}
		if records.saves != 0 || len(present.languages) != 0 {
			t.Errorf("saves = %d, localizer calls = %v, want none", records.saves, present.languages)
		}
	})

	t.Run("setting the current value performs no writes", func(t *testing.T) {
		records := newFakeRecordStore()
		store, present := newStore(records)

		store.SetLanguage(context.Background(), prefs.LanguageEnglish)
		if records.saves != 0 || len(present.languages) != 0 {
			t.Errorf("saves = %d, localizer calls = %v, want none", records.saves, present.languages)
		}
	})

	t.Run("storage failure keeps the in-memory value", func(t *testing.T) {
		records := newFakeRecordStore()
		records.saveErr = errors.New("disk full")
		store, _ := newStore(records)

		store.SetLanguage(context.Background(), prefs.LanguageChinese)
		if got := store.Current().Language; got != prefs.LanguageChinese {
			t.Errorf("Current().Language = %q, want %q", got, prefs.LanguageChinese)
		}
	})
}

// TestStore_SetTheme tests the theme path mirrors the language rules.
func TestStore_SetTheme(t *testing.T) {
	t.Run("applies and persists", func(t *testing.T) {
		records := newFakeRecordStore()
		store, present := newStore(records)
		store.Rebind(context.Background(), 7)

		store.SetTheme(context.Background(), prefs.ThemeDark)
		if got := store.Current().Theme; got != prefs.ThemeDark {
			t.Errorf("Current().Theme = %q, want dark", got)
		}
		if len(present.themes) != 1 || present.themes[0] != prefs.ThemeDark {
			t.Errorf("presenter calls = %v, want [dark]", present.themes)
		}
		if rec := records.records[prefstore.IdentityScope(7)]; rec.Theme != prefs.ThemeDark {
			t.Errorf("identity record = %+v, want dark theme", rec)
		}
	})

	t.Run("invalid value silently ignored", func(t *testing.T) {
		store, present := newStore(newFakeRecordStore())
		store.SetTheme(context.Background(), "sepia")
		if got := store.Current().Theme; got != prefs.ThemeLight {
			t.Errorf("Current().Theme = %q, want light", got)
		}
		if len(present.themes) != 0 {
			t.Errorf("presenter calls = %v, want none", present.themes)
		}
	})

	t.Run("idempotent set performs no writes", func(t *testing.T) {
		records := newFakeRecordStore()
		store, _ := newStore(records)

		store.SetTheme(context.Background(), prefs.ThemeDark)
		savesAfterFirst := records.saves
		store.SetTheme(context.Background(), prefs.ThemeDark)
		if records.saves != savesAfterFirst {
			t.Errorf("saves = %d after repeat, want %d", records.saves, savesAfterFirst)
		}
	})
}

// TestStore_Subscribe tests immediate delivery and change notification.
func TestStore_Subscribe(t *testing.T) {
	store, _ := newStore(newFakeRecordStore())

	var seen []prefs.Preferences
	unsubscribe := store.Subscribe(func(p prefs.Preferences) { seen = append(seen, p) })
	if len(seen) != 1 || seen[0] != defaults {
		t.Fatalf("seen = %v, want immediate defaults", seen)
	}

	store.SetTheme(context.Background(), prefs.ThemeDark)
	if len(seen) != 2 || seen[1].Theme != prefs.ThemeDark {
		t.Fatalf("seen = %v, want dark theme notification", seen)
	}

	unsubscribe()
	store.SetLanguage(context.Background(), prefs.LanguageChinese)
	if len(seen) != 2 {
		t.Errorf("seen = %v after unsubscribe, want no more notifications", seen)
	}
}
