package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Pair holds the short-lived access token and the longer-lived refresh token.
// Both are opaque to the core; the access token is additionally inspected as
// an unverified JWT when it happens to be one, so the client can refresh
// proactively instead of burning a round trip on a known-stale token.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Present reports whether the pair can authenticate requests.
// An identity without live tokens must never be treated as authenticated.
// INVARIANT: Pair fields are not mutated
func (p Pair) Present() bool {
	return p.Access != "" && p.Refresh != ""
}

// AccessExpiresAt returns the access token's expiry claim.
// PRE: none
// POST: Returns (expiry, true) when the token is a JWT with an exp claim;
// (zero, false) for opaque tokens or tokens without expiry
func (p Pair) AccessExpiresAt() (time.Time, bool) {
	if p.Access == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(p.Access, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// AccessStale reports whether the access token is known to be expired (or
// within skew of expiring) at the given time. Opaque tokens are never
// reported stale locally; the provider is the authority for those.
// INVARIANT: Pair fields are not mutated
func (p Pair) AccessStale(now time.Time, skew time.Duration) bool {
	exp, ok := p.AccessExpiresAt()
	if !ok {
		return false
	}
	return !now.Add(skew).Before(exp)
}
