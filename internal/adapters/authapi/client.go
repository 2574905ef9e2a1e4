// Package authapi is the HTTP client for the campus authentication backend.
// It implements the session.Provider and orchestrators.IdentityUpdater
// ports and maps backend status codes onto the session error taxonomy.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"activitypass/internal/application/session"
	"activitypass/internal/domain/identity"
	"activitypass/internal/domain/token"
)

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given API base URL.
// PRE: baseURL is non-empty
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type tokenPayload struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type profilePayload struct {
	ID           int64  `json:"id"`
	Phone        string `json:"phone"`
	Major        string `json:"major"`
	College      string `json:"college"`
	ChineseLevel string `json:"chinese_level"`
	Year         string `json:"year"`
}

type identityPayload struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Role      string          `json:"role"`
	FirstName string          `json:"first_name"`
	Profile   *profilePayload `json:"profile"`
}

func (p identityPayload) toDomain() identity.Identity {
	ident := identity.Identity{
		ID:        p.ID,
		Username:  p.Username,
		Role:      p.Role,
		FirstName: p.FirstName,
	}
	if p.Profile != nil {
		ident.Profile = &identity.StudentProfile{
			ID:           p.Profile.ID,
			Phone:        p.Profile.Phone,
			Major:        p.Profile.Major,
			College:      p.Profile.College,
			ChineseLevel: p.Profile.ChineseLevel,
			Year:         p.Profile.Year,
		}
	}
	return ident
}

// Authenticate exchanges credentials for a token pair.
// POST: 400/401 map to ErrInvalidCredentials; other failures surface as-is
func (c *Client) Authenticate(ctx context.Context, username, password string) (token.Pair, error) {
	body := map[string]string{"username": username, "password": password}
	var payload tokenPayload
	status, err := c.do(ctx, http.MethodPost, "/auth/token/", "", body, &payload)
	if err != nil {
		return token.Pair{}, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return token.Pair{}, session.ErrInvalidCredentials
	default:
		return token.Pair{}, fmt.Errorf("token endpoint returned status %d", status)
	}

	pair := token.Pair{Access: payload.Access, Refresh: payload.Refresh}
	if !pair.Present() {
		return token.Pair{}, fmt.Errorf("token endpoint returned an incomplete pair")
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a fresh pair. Backends that rotate
// only the access token keep the previous refresh token in the result.
// POST: 400/401 map to ErrSessionExpired
func (c *Client) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	body := map[string]string{"refresh": refreshToken}
	var payload tokenPayload
	status, err := c.do(ctx, http.MethodPost, "/auth/token/refresh/", "", body, &payload)
	if err != nil {
		return token.Pair{}, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return token.Pair{}, session.ErrSessionExpired
	default:
		return token.Pair{}, fmt.Errorf("refresh endpoint returned status %d", status)
	}

	pair := token.Pair{Access: payload.Access, Refresh: payload.Refresh}
	if pair.Refresh == "" {
		pair.Refresh = refreshToken
	}
	if !pair.Present() {
		return token.Pair{}, fmt.Errorf("refresh endpoint returned an incomplete pair")
	}
	return pair, nil
}

// FetchIdentity resolves the identity behind an access token.
// POST: 401/403 map to ErrSessionExpired
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (identity.Identity, error) {
	var payload identityPayload
	status, err := c.do(ctx, http.MethodGet, "/me/", accessToken, nil, &payload)
	if err != nil {
		return identity.Identity{}, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return identity.Identity{}, session.ErrSessionExpired
	default:
		return identity.Identity{}, fmt.Errorf("identity endpoint returned status %d", status)
	}

	ident := payload.toDomain()
	if err := ident.Validate(); err != nil {
		return identity.Identity{}, fmt.Errorf("identity endpoint returned an invalid identity: %w", err)
	}
	return ident, nil
}

// UpdateIdentity submits the profile completion form.
// POST: 401/403 map to ErrSessionExpired
func (c *Client) UpdateIdentity(ctx context.Context, accessToken, firstName string, profile identity.StudentProfile) (identity.Identity, error) {
	body := map[string]any{
		"first_name": firstName,
		"profile": map[string]string{
			"phone":         profile.Phone,
			"major":         profile.Major,
			"college":       profile.College,
			"chinese_level": profile.ChineseLevel,
			"year":          profile.Year,
		},
	}
	var payload identityPayload
	status, err := c.do(ctx, http.MethodPatch, "/me/", accessToken, body, &payload)
	if err != nil {
		return identity.Identity{}, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return identity.Identity{}, session.ErrSessionExpired
	default:
		return identity.Identity{}, fmt.Errorf("profile update returned status %d", status)
	}
	return payload.toDomain(), nil
}

// do runs one request and decodes a 2xx body into out. Non-2xx statuses are
// returned for the caller to map; their bodies are drained and ignored.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
