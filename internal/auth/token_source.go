// Package auth supplies bearer tokens for upstream requests. The ledger core
// never sees credentials; it depends on this package only through the
// TokenSource contract, and a 401 escalates back here via Invalidate.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// TokenSource yields the bearer token to attach to an upstream request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource serves one fixed token. Deployments that provision a
// long-lived API token upstream use this mode.
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	return s.token, nil
}

// expiryLeeway is how far ahead of the exp claim a cached access token is
// considered stale. Refreshing early keeps a request from racing expiry.
const expiryLeeway = 30 * time.Second

// RefreshingTokenSource holds an access/refresh token pair obtained from the
// upstream token endpoints and renews the access token ahead of its exp
// claim, or after Invalidate. The refresh token itself is not renewed; when
// it dies the next refresh fails and the operator must log in again.
type RefreshingTokenSource struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger

	mu      sync.Mutex
	access  string
	refresh string
}

func NewRefreshingTokenSource(baseURL string, httpc *http.Client, log zerolog.Logger) *RefreshingTokenSource {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &RefreshingTokenSource{baseURL: baseURL, httpc: httpc, log: log}
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair at {base}/token/.
func (s *RefreshingTokenSource) Login(ctx context.Context, username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	pair, err := s.postToken(ctx, s.baseURL+"/token/", body)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	s.mu.Lock()
	s.access = pair.Access
	s.refresh = pair.Refresh
	s.mu.Unlock()
	return nil
}

// Token returns the cached access token, refreshing it first when it is
// missing or within the expiry leeway.
func (s *RefreshingTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.access != "" && !tokenExpired(s.access, expiryLeeway) {
		return s.access, nil
	}
	if s.refresh == "" {
		return "", fmt.Errorf("no refresh token available")
	}

	body, _ := json.Marshal(map[string]string{"refresh": s.refresh})
	pair, err := s.postToken(ctx, s.baseURL+"/token/refresh/", body)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	s.log.Debug().Msg("access token refreshed")
	s.access = pair.Access
	return s.access, nil
}

// Invalidate drops the cached access token so the next Token call refreshes.
// The upstream client calls this when a request comes back 401.
func (s *RefreshingTokenSource) Invalidate() {
	s.mu.Lock()
	s.access = ""
	s.mu.Unlock()
}

func (s *RefreshingTokenSource) postToken(ctx context.Context, url string, body []byte) (tokenPairResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return tokenPairResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return tokenPairResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tokenPairResponse{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var pair tokenPairResponse
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return tokenPairResponse{}, fmt.Errorf("decoding token response: %w", err)
	}
	if pair.Access == "" {
		return tokenPairResponse{}, fmt.Errorf("token endpoint returned no access token")
	}
	return pair, nil
}

// tokenExpired inspects the exp claim without verifying the signature; the
// upstream verifies, this side only decides when to refresh. A token with no
// exp claim never expires locally.
func tokenExpired(raw string, leeway time.Duration) bool {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().Add(leeway).After(exp.Time)
}
