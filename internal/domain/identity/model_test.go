package identity_test

import (
	"testing"

	"activitypass/internal/domain/identity"
)

// TestIdentity_Validate tests validation of Identity.
func TestIdentity_Validate(t *testing.T) {
	tests := []struct {
		name     string
		identity identity.Identity
		wantErr  bool
	}{
		{
			name:     "valid admin",
			identity: identity.Identity{ID: 1, Username: "root", Role: identity.RoleAdmin},
			wantErr:  false,
		},
		{
			name:     "valid staff",
			identity: identity.Identity{ID: 2, Username: "reception", Role: identity.RoleStaff},
			wantErr:  false,
		},
		{
			name:     "valid student",
			identity: identity.Identity{ID: 3, Username: "s2023001", Role: identity.RoleStudent},
			wantErr:  false,
		},
		{
			name:     "valid plain user",
			identity: identity.Identity{ID: 4, Username: "visitor", Role: identity.RoleUser},
			wantErr:  false,
		},
		{
			name:     "zero id",
			identity: identity.Identity{Username: "root", Role: identity.RoleAdmin},
			wantErr:  true,
		},
		{
			name:     "empty username",
			identity: identity.Identity{ID: 5, Username: "   ", Role: identity.RoleAdmin},
			wantErr:  true,
		},
		{
			name:     "unknown role",
			identity: identity.Identity{ID: 6, Username: "root", Role: "superadmin"},
			wantErr:  true,
		},
		{
			name:     "empty role",
			identity: identity.Identity{ID: 7, Username: "root", Role: ""},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.identity.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Identity.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestIdentity_ProfileComplete tests the onboarding completeness flag.
func TestIdentity_ProfileComplete(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		want      bool
	}{
		{"first name present", "Wei", true},
		{"first name empty", "", false},
		{"first name whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := identity.Identity{ID: 1, Username: "s2023001", Role: identity.RoleStudent, FirstName: tt.firstName}
			if got := i.ProfileComplete(); got != tt.want {
				t.Errorf("ProfileComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestIdentity_DisplayName tests greeting name resolution.
func TestIdentity_DisplayName(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		username  string
		want      string
	}{
		{"first name wins", "Wei", "s2023001", "Wei"},
		{"username fallback", "", "s2023001", "s2023001"},
		{"whitespace first name falls back", "  ", "s2023001", "s2023001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := identity.Identity{FirstName: tt.firstName, Username: tt.username}
			if got := i.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestIdentity_RoleChecks tests IsAdmin, IsStaff and IsStudent.
func TestIdentity_RoleChecks(t *testing.T) {
	tests := []struct {
		role      string
		isAdmin   bool
		isStaff   bool
		isStudent bool
	}{
		{identity.RoleAdmin, true, false, false},
		{identity.RoleStaff, false, true, false},
		{identity.RoleStudent, false, false, true},
		{identity.RoleUser, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			i := identity.Identity{Role: tt.role}
			if i.IsAdmin() != tt.isAdmin {
				t.Errorf("IsAdmin() = %v, want %v", i.IsAdmin(), tt.isAdmin)
			}
			if i.IsStaff() != tt.isStaff {
				t.Errorf("IsStaff() = %v, want %v", i.IsStaff(), tt.isStaff)
			}
			if i.IsStudent() != tt.isStudent {
				t.Errorf("IsStudent() = %v, want %v", i.IsStudent(), tt.isStudent)
			}
		})
	}
}

// TestIdentity_Clone tests that Clone does not alias the profile sub-record.
func TestIdentity_Clone(t *testing.T) {
	original := identity.Identity{
		ID:       1,
		Username: "s2023001",
		Role:     identity.RoleStudent,
		Profile:  &identity.StudentProfile{ID: 10, Major: "Software Engineering"},
	}

	clone := original.Clone()
	clone.Profile.Major = "Fine Arts"

	if original.Profile.Major != "Software Engineering" {
		t.Errorf("Clone() aliased the profile: original major = %q", original.Profile.Major)
	}
}

// TestIdentity_Clone_NilProfile tests Clone with no profile sub-record.
func TestIdentity_Clone_NilProfile(t *testing.T) {
	original := identity.Identity{ID: 1, Username: "root", Role: identity.RoleAdmin}
	clone := original.Clone()
	if clone.Profile != nil {
		t.Error("Clone() should keep nil profile nil")
	}
}
