package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockops/stock-console/internal/auth"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return raw
}

func TestStaticTokenSource(t *testing.T) {
	src := auth.NewStaticTokenSource("fixed-token")
	got, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed-token", got)
}

func TestRefreshingTokenSource_LoginAndCachedToken(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))

	var tokenCalls, refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			tokenCalls++
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "admin", creds["username"])
			json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "refresh-1"})
		case "/token/refresh/":
			refreshCalls++
			json.NewEncoder(w).Encode(map[string]string{"access": access})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := auth.NewRefreshingTokenSource(srv.URL, srv.Client(), zerolog.Nop())
	require.NoError(t, src.Login(context.Background(), "admin", "secret"))

	for i := 0; i < 3; i++ {
		got, err := src.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, access, got)
	}
	assert.Equal(t, 1, tokenCalls)
	assert.Equal(t, 0, refreshCalls, "a live access token must not trigger a refresh")
}

func TestRefreshingTokenSource_RefreshesExpiredToken(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))
	fresh := signedToken(t, time.Now().Add(time.Hour))

	var refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": expired, "refresh": "refresh-1"})
		case "/token/refresh/":
			refreshCalls++
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "refresh-1", body["refresh"])
			json.NewEncoder(w).Encode(map[string]string{"access": fresh})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := auth.NewRefreshingTokenSource(srv.URL, srv.Client(), zerolog.Nop())
	require.NoError(t, src.Login(context.Background(), "admin", "secret"))

	got, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, 1, refreshCalls)
}

func TestRefreshingTokenSource_InvalidateForcesRefresh(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))

	var refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "refresh-1"})
		case "/token/refresh/":
			refreshCalls++
			json.NewEncoder(w).Encode(map[string]string{"access": access})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := auth.NewRefreshingTokenSource(srv.URL, srv.Client(), zerolog.Nop())
	require.NoError(t, src.Login(context.Background(), "admin", "secret"))

	_, err := src.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, refreshCalls)

	src.Invalidate()

	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshCalls)
}

func TestRefreshingTokenSource_NoSession(t *testing.T) {
	src := auth.NewRefreshingTokenSource("http://127.0.0.1:0", nil, zerolog.Nop())
	_, err := src.Token(context.Background())
	require.Error(t, err)
}

func TestRefreshingTokenSource_RefreshFailure(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": expired, "refresh": "refresh-1"})
		case "/token/refresh/":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "refresh token expired"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := auth.NewRefreshingTokenSource(srv.URL, srv.Client(), zerolog.Nop())
	require.NoError(t, src.Login(context.Background(), "admin", "secret"))

	_, err := src.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token refresh failed")
}
