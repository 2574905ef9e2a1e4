package orchestrators

import (
	"context"
	"errors"
	"testing"

	"activitypass/internal/application/session"
	"activitypass/internal/domain/identity"
)

type fakeProfileSessions struct {
	access     string
	refreshed  identity.Identity
	refreshErr error

	refreshCalls int
}

func (f *fakeProfileSessions) AccessToken() (string, bool) {
	return f.access, f.access != ""
}

func (f *fakeProfileSessions) RefreshIdentity(ctx context.Context) (identity.Identity, error) {
	f.refreshCalls++
	return f.refreshed, f.refreshErr
}

type fakeUpdater struct {
	err error

	gotAccess    string
	gotFirstName string
	gotProfile   identity.StudentProfile
	calls        int
}

func (f *fakeUpdater) UpdateIdentity(ctx context.Context, accessToken, firstName string, profile identity.StudentProfile) (identity.Identity, error) {
	f.calls++
	f.gotAccess = accessToken
	f.gotFirstName = firstName
	f.gotProfile = profile
	return identity.Identity{}, f.err
}

// TestExecuteCompleteProfile tests onboarding submission and re-resolution.
func TestExecuteCompleteProfile(t *testing.T) {
	completed := identity.Identity{ID: 7, Username: "alice", Role: identity.RoleStudent, FirstName: "Alice"}

	t.Run("success updates then re-resolves through the session", func(t *testing.T) {
		sessions := &fakeProfileSessions{access: "acc", refreshed: completed}
		updater := &fakeUpdater{}
		input := CompleteProfileInput{
			FirstName: "  Alice  ",
			Phone:     "123",
			Major:     "CS",
			College:   "Engineering",
		}

		got, err := ExecuteCompleteProfile(context.Background(), input, CompleteProfileDeps{Sessions: sessions, Updater: updater})
		if err != nil {
			t.Fatalf("ExecuteCompleteProfile() error = %v", err)
		}
		if updater.gotAccess != "acc" || updater.gotFirstName != "Alice" {
			t.Errorf("update used access %q, first name %q", updater.gotAccess, updater.gotFirstName)
		}
		if updater.gotProfile.Major != "CS" {
			t.Errorf("update profile = %+v, want major CS", updater.gotProfile)
		}
		if sessions.refreshCalls != 1 {
			t.Errorf("refresh calls = %d, want 1", sessions.refreshCalls)
		}
		if got.RedirectTo != "/student" {
			t.Errorf("redirect = %q, want /student", got.RedirectTo)
		}
	})

	t.Run("blank first name rejected before the network", func(t *testing.T) {
		updater := &fakeUpdater{}
		_, err := ExecuteCompleteProfile(context.Background(), CompleteProfileInput{FirstName: "  "}, CompleteProfileDeps{
			Sessions: &fakeProfileSessions{access: "acc"},
			Updater:  updater,
		})
		if !errors.Is(err, ErrFirstNameRequired) {
			t.Fatalf("error = %v, want ErrFirstNameRequired", err)
		}
		if updater.calls != 0 {
			t.Errorf("updater calls = %d, want 0", updater.calls)
		}
	})

	t.Run("no session", func(t *testing.T) {
		_, err := ExecuteCompleteProfile(context.Background(), CompleteProfileInput{FirstName: "Alice"}, CompleteProfileDeps{
			Sessions: &fakeProfileSessions{},
			Updater:  &fakeUpdater{},
		})
		if !errors.Is(err, session.ErrNotAuthenticated) {
			t.Fatalf("error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("update failure skips re-resolution", func(t *testing.T) {
		sessions := &fakeProfileSessions{access: "acc"}
		updater := &fakeUpdater{err: errors.New("bad gateway")}
		_, err := ExecuteCompleteProfile(context.Background(), CompleteProfileInput{FirstName: "Alice"}, CompleteProfileDeps{
			Sessions: sessions,
			Updater:  updater,
		})
		if err == nil {
			t.Fatal("error = nil, want update failure")
		}
		if sessions.refreshCalls != 0 {
			t.Errorf("refresh calls = %d, want 0", sessions.refreshCalls)
		}
	})
}
