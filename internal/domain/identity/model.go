package identity

import (
	"errors"
	"strings"
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
	RoleUser    = "user"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleStaff, RoleStudent, RoleUser}

// Domain errors
var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrInvalidRole   = errors.New("role must be one of: admin, staff, student, user")
	ErrInvalidID     = errors.New("identity id must be positive")
)

// StudentProfile is the role-specific sub-record attached to student identities.
type StudentProfile struct {
	ID           int64
	Phone        string
	Major        string
	College      string
	ChineseLevel string
	Year         string
}

// Identity describes the authenticated principal. It is replaced wholesale on
// every identity refresh and never mutated field by field.
type Identity struct {
	ID        int64
	Username  string
	Role      string
	FirstName string
	Profile   *StudentProfile
}

// Validate checks if the Identity has valid data.
// PRE: Identity struct is populated
// POST: Returns nil if valid, error otherwise
func (i Identity) Validate() error {
	if i.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(i.Username) == "" {
		return ErrEmptyUsername
	}
	if !isValidRole(i.Role) {
		return ErrInvalidRole
	}
	return nil
}

// ProfileComplete reports whether onboarding has been finished.
// A student without a first name must complete their profile before
// accessing any other protected view.
// INVARIANT: Identity fields are not mutated
func (i Identity) ProfileComplete() bool {
	return strings.TrimSpace(i.FirstName) != ""
}

// DisplayName returns the name shown in the navigation greeting:
// first name when present, username otherwise.
// INVARIANT: Identity fields are not mutated
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.FirstName); name != "" {
		return name
	}
	return strings.TrimSpace(i.Username)
}

// IsAdmin returns true if the identity has admin role.
// INVARIANT: Identity fields are not mutated
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsStaff returns true if the identity has staff role.
// INVARIANT: Identity fields are not mutated
func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff
}

// IsStudent returns true if the identity has student role.
// INVARIANT: Identity fields are not mutated
func (i Identity) IsStudent() bool {
	return i.Role == RoleStudent
}

// Clone returns a deep copy so callers cannot alias the profile sub-record.
func (i Identity) Clone() Identity {
	out := i
	if i.Profile != nil {
		profile := *i.Profile
		out.Profile = &profile
	}
	return out
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
