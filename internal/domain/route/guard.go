package route

import (
	"strings"

	"activitypass/internal/domain/identity"
)

// Guard decision states, ordered by evaluation priority: unauthenticated is
// checked before loading, and loading before role/profile checks, so no
// protected content is ever rendered before its final authorization is known.
const (
	StateDeniedUnauthenticated   = "denied_unauthenticated"
	StateLoading                 = "loading"
	StateDeniedIncompleteProfile = "denied_incomplete_profile"
	StateDeniedWrongRole         = "denied_wrong_role"
	StateAllowed                 = "allowed"
)

// Well-known navigation targets.
const (
	LoginPath           = "/auth"
	LegacyLoginPath     = "/login"
	RootPath            = "/"
	CompleteProfilePath = "/complete-profile"
)

// Snapshot is the guard's complete input. Decisions are a pure function of
// this value plus the destination path — identical inputs always yield an
// identical decision.
type Snapshot struct {
	HasTokens       bool
	IdentityLoaded  bool
	Role            string
	ProfileComplete bool
}

// Decision is the guard's outcome for one navigation. A non-empty Redirect
// always replaces the current history entry rather than pushing, so the back
// button can never loop into a denied view.
type Decision struct {
	State    string
	Redirect string
}

// Allowed reports whether the requested view may render its content.
func (d Decision) Allowed() bool { return d.State == StateAllowed }

// Loading reports whether a neutral placeholder must render instead of the
// requested view while identity resolution is still pending.
func (d Decision) Loading() bool { return d.State == StateLoading }

// boundary maps one path prefix to the roles allowed past it. A nil role set
// admits every authenticated role.
type boundary struct {
	prefix string
	roles  map[string]bool
}

// Rules is the route authorization configuration: which path prefixes each
// role may access. Configuration data, not runtime state.
type Rules struct {
	boundaries []boundary
}

// DefaultRules returns the application's route table.
// POST: every role in identity.ValidRoles has a defined outcome for every
// path (the root boundary is the total fallback)
func DefaultRules() Rules {
	only := func(roles ...string) map[string]bool {
		set := make(map[string]bool, len(roles))
		for _, r := range roles {
			set[r] = true
		}
		return set
	}
	return Rules{boundaries: []boundary{
		{prefix: "/admin", roles: only(identity.RoleAdmin)},
		{prefix: "/staff", roles: only(identity.RoleStaff)},
		{prefix: "/student", roles: only(identity.RoleStudent)},
		{prefix: CompleteProfilePath, roles: nil},
		{prefix: RootPath, roles: nil},
	}}
}

// match returns the most specific boundary covering path.
func (r Rules) match(path string) (boundary, bool) {
	var best boundary
	found := false
	for _, b := range r.boundaries {
		if !prefixMatches(path, b.prefix) {
			continue
		}
		if !found || len(b.prefix) > len(best.prefix) {
			best = b
			found = true
		}
	}
	return best, found
}

// Guard evaluates route authorization decisions against a rule table.
type Guard struct {
	rules Rules
}

// NewGuard creates a guard over the given rules.
func NewGuard(rules Rules) *Guard {
	return &Guard{rules: rules}
}

// Evaluate runs the authorization state machine for one navigation.
// PRE: none
// POST: Returns exactly one of the five decision states; every Denied state
// except Loading carries a redirect target
func (g *Guard) Evaluate(snap Snapshot, path string) Decision {
	dest := NormalizePath(path)
	if dest == LegacyLoginPath {
		dest = LoginPath
	}

	if !snap.HasTokens {
		return Decision{State: StateDeniedUnauthenticated, Redirect: LoginPath}
	}
	if !snap.IdentityLoaded {
		return Decision{State: StateLoading}
	}
	if snap.Role == identity.RoleStudent && !snap.ProfileComplete && dest != CompleteProfilePath {
		return Decision{State: StateDeniedIncompleteProfile, Redirect: CompleteProfilePath}
	}

	b, ok := g.rules.match(dest)
	if !ok {
		return Decision{State: StateDeniedWrongRole, Redirect: RootPath}
	}
	if b.roles != nil && !b.roles[snap.Role] {
		return Decision{State: StateDeniedWrongRole, Redirect: RootPath}
	}
	return Decision{State: StateAllowed}
}

// EvaluateRole is the single-role wrapper guard: it composes the generic
// authenticated checks with a one-role allow set for the destination, instead
// of duplicating the unauthenticated/loading handling.
// PRE: role is a member of identity.ValidRoles
func (g *Guard) EvaluateRole(snap Snapshot, path string, role string) Decision {
	decision := g.Evaluate(snap, path)
	if !decision.Allowed() {
		return decision
	}
	if snap.Role != role {
		return Decision{State: StateDeniedWrongRole, Redirect: RootPath}
	}
	return decision
}

// HomePath resolves the role-aware dashboard for the application root.
// Unknown roles stay on the neutral root view.
func HomePath(role string) string {
	switch role {
	case identity.RoleAdmin:
		return "/admin"
	case identity.RoleStaff:
		return "/staff"
	case identity.RoleStudent:
		return "/student"
	default:
		return RootPath
	}
}

// NormalizePath strips trailing slashes and enforces a leading slash so
// prefix comparisons are deterministic.
func NormalizePath(path string) string {
	if path == "" {
		return RootPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return RootPath
	}
	return path
}

// prefixMatches reports whether a normalized path falls under a prefix:
// either the path equals the prefix or it continues past a path separator.
func prefixMatches(path, prefix string) bool {
	if prefix == RootPath {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
