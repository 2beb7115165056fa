// Package inflection implements the MarketingClient port against the
// Inflection.io HTTP API. The client owns credential attachment: every
// request carries the bearer token from the credential store, and a 401 from
// the upstream triggers clear + re-login + retry, bounded by MaxRetries.
package inflection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/singleflight"

	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

const (
	userAgent = "inflection-mcp/1.0"

	// DefaultMaxRetries bounds re-authentication cycles per logical
	// operation: two retries means at most three request attempts.
	DefaultMaxRetries = 2

	// DefaultTimeout applies to each outbound call, login included.
	DefaultTimeout = 10 * time.Second
)

// Compile-time interface satisfaction check.
var _ driven.MarketingClient = (*Client)(nil)

// Config carries the static inputs the client needs. All fields are read
// once at construction; there is no hot reload.
type Config struct {
	AuthBaseURL       string
	CampaignBaseURL   string
	CampaignV3BaseURL string
	Identity          string
	Secret            string
	Timeout           time.Duration
	MaxRetries        int
}

// Client implements driven.MarketingClient. All endpoint methods funnel
// through do, which runs the ensure-auth / send / re-auth loop.
type Client struct {
	http          *http.Client
	store         driven.CredentialStore
	logger        *slog.Logger
	authBaseURL   string
	campaignURL   string
	campaignV3URL string
	identity      string
	secret        string
	maxRetries    int
	loginGroup    singleflight.Group
}

// NewClient creates a client backed by a pooled transport with the configured
// per-request timeout. The credential store is shared with any other client
// or service that needs to observe authentication state.
func NewClient(cfg Config, store driven.CredentialStore, logger *slog.Logger) *Client {
	httpClient := cleanhttp.DefaultPooledClient()
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient.Timeout = cfg.Timeout

	return newClient(httpClient, cfg, store, logger)
}

// NewClientWithHTTPClient creates a Client with a caller-supplied http.Client.
// This constructor is intended for testing, allowing injection of an httptest
// server.
func NewClientWithHTTPClient(httpClient *http.Client, cfg Config, store driven.CredentialStore, logger *slog.Logger) *Client {
	return newClient(httpClient, cfg, store, logger)
}

func newClient(httpClient *http.Client, cfg Config, store driven.CredentialStore, logger *slog.Logger) *Client {
	// Zero is a valid setting: fail on the first 401 without re-authenticating.
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		http:          httpClient,
		store:         store,
		logger:        logger,
		authBaseURL:   strings.TrimRight(cfg.AuthBaseURL, "/"),
		campaignURL:   strings.TrimRight(cfg.CampaignBaseURL, "/"),
		campaignV3URL: strings.TrimRight(cfg.CampaignV3BaseURL, "/"),
		identity:      cfg.Identity,
		secret:        cfg.Secret,
		maxRetries:    cfg.MaxRetries,
	}
}

// do executes one logical operation against the API. The flow per attempt:
//
//  1. ensure a usable credential is in the store (login if empty or expired)
//  2. send the request with the current token attached
//  3. on 401: clear the store, re-login, retry, up to maxRetries cycles
//
// Any non-401 response ends the loop: 2xx returns the body, other statuses
// become *driven.APIError. Transport errors surface directly and are never
// treated as credential rejection. The token is re-read from the store for
// every attempt so a concurrently refreshed credential is picked up.
func (c *Client) do(ctx context.Context, method, url string, payload any) (json.RawMessage, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
	}

	op := uuid.NewString()

	if !c.store.Get().Usable(time.Now()) {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		status, respBody, err := c.send(ctx, method, url, body, true)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, url, err)
		}

		if status == http.StatusUnauthorized {
			c.logger.Warn("credential rejected by upstream",
				"op", op,
				"method", method,
				"url", url,
				"attempt", attempt,
			)

			if attempt > c.maxRetries {
				c.logger.Error("re-authentication retries exhausted",
					"op", op,
					"attempts", attempt,
				)
				return nil, &driven.MaxRetriesError{Attempts: attempt}
			}

			// Never assume the stale token is still partially valid.
			c.store.Clear()

			c.logger.Info("re-authenticating", "op", op, "attempt", attempt)
			if err := c.login(ctx); err != nil {
				c.logger.Error("re-authentication failed", "op", op, "error", err)
				return nil, &driven.ReauthError{Err: err}
			}
			c.logger.Info("re-authentication succeeded", "op", op)
			continue
		}

		if status < 200 || status >= 300 {
			return nil, &driven.APIError{Status: status, Body: bodySnippet(respBody)}
		}

		return respBody, nil
	}
}

// send issues a single HTTP request. When withAuth is set, the bearer token
// is read fresh from the store and attached. The returned error is transport
// only; HTTP status handling belongs to the caller.
func (c *Client) send(ctx context.Context, method, url string, body []byte, withAuth bool) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if withAuth {
		if rec := c.store.Get(); rec.Populated() {
			req.Header.Set("Authorization", "Bearer "+rec.Token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// bodySnippet truncates an upstream error body so APIError stays readable in
// logs without dumping whole payloads.
func bodySnippet(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
