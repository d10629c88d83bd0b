// Package client is the authenticated HTTP adapter for the upstream
// inventory API. It attaches bearer tokens, rate-limits outbound calls and
// normalizes response shapes; everything else is the ledger store's business.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/stockops/stock-console/internal/auth"
	"github.com/stockops/stock-console/internal/ledger"
	"github.com/stockops/stock-console/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to the upstream inventory API. It implements ledger.Transport.
type Client struct {
	baseURL        string
	httpc          *http.Client
	tokens         auth.TokenSource
	limiter        *rate.Limiter
	log            zerolog.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithRateLimit caps outbound requests per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUnauthorizedHook registers the auth collaborator's 401 escalation. The
// hook runs before the error is returned; the caller still sees an ordinary
// transport failure and no retry happens here.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New builds a client for the given API base URL.
func New(baseURL string, tokens auth.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products fetches the product collection.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	return getCollection[models.Product](c, ctx, "/products/")
}

// Stocks fetches the stock record collection.
func (c *Client) Stocks(ctx context.Context) ([]models.StockRecord, error) {
	return getCollection[models.StockRecord](c, ctx, "/stocks/")
}

// Movements fetches the movement history.
func (c *Client) Movements(ctx context.Context) ([]models.MovementEvent, error) {
	return getCollection[models.MovementEvent](c, ctx, "/stock-movements/")
}

// DailySummary fetches the server-aggregated daily buckets.
func (c *Client) DailySummary(ctx context.Context) ([]models.SummaryRow, error) {
	return getCollection[models.SummaryRow](c, ctx, "/stock-movements/daily_summary/")
}

// WeeklySummary fetches the server-aggregated weekly buckets.
func (c *Client) WeeklySummary(ctx context.Context) ([]models.SummaryRow, error) {
	return getCollection[models.SummaryRow](c, ctx, "/stock-movements/weekly_summary/")
}

// CreateMovement posts a movement and returns the server's authoritative
// record of it.
func (c *Client) CreateMovement(ctx context.Context, input models.MovementInput) (models.MovementEvent, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return models.MovementEvent{}, fmt.Errorf("encoding movement: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/stock-movements/", payload)
	if err != nil {
		return models.MovementEvent{}, err
	}
	var ev models.MovementEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return models.MovementEvent{}, &ledger.ShapeError{
			Endpoint: "/stock-movements/",
			Detail:   "movement response is not a single object: " + err.Error(),
		}
	}
	return ev, nil
}

func getCollection[T any](c *Client, ctx context.Context, path string) ([]T, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeCollection[T](path, body)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ledger.TransportError{Message: err.Error()}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &ledger.TransportError{Message: err.Error()}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, &ledger.TransportError{Message: "no bearer token: " + err.Error()}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("path", path).Err(err).Msg("upstream request failed")
		return nil, &ledger.TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ledger.TransportError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
			Msg("upstream returned error status")
		return nil, &ledger.TransportError{Status: resp.StatusCode, Message: serverMessage(body)}
	}
	return body, nil
}

// serverMessage extracts the upstream's error detail when the body carries
// one; otherwise a truncated slice of the raw body has to do.
func serverMessage(body []byte) string {
	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Message != "" {
			return detail.Message
		}
	}
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(bytes.TrimSpace(body))
}
