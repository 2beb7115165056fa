package inflection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

const loginPath = "/accounts/login"

// defaultTokenLifetime is assumed when the login response omits an expiry or
// carries one we cannot parse. One hour matches the upstream's observed
// session lifetime.
const defaultTokenLifetime = time.Hour

// loginRequest is the wire body for the login exchange.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the subset of the login envelope this service consumes.
// The upstream also returns roles and organisation metadata; those are
// ignored.
type loginResponse struct {
	Account struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"account"`
	Session struct {
		AccessToken     string `json:"access_token"`
		AccessExpiresAt string `json:"access_expires_at"`
		SessionID       string `json:"session_id"`
		Status          string `json:"status"`
	} `json:"session"`
}

// Login exchanges the configured identity and secret for a bearer credential
// and writes it into the credential store. Concurrent callers are coalesced:
// at most one login request is in flight per client, and every waiter gets
// the outcome of that single exchange.
func (c *Client) Login(ctx context.Context) error {
	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) error {
	_, err, _ := c.loginGroup.Do("login", func() (any, error) {
		return nil, c.authenticate(ctx)
	})
	return err
}

// authenticate performs the actual login exchange. Exactly one store Set on
// success; no store mutation on failure. The secret and the returned token
// never appear in logs or error text.
func (c *Client) authenticate(ctx context.Context) error {
	if c.identity == "" || c.secret == "" {
		return driven.ErrMissingCredentials
	}

	body, err := json.Marshal(loginRequest{Email: c.identity, Password: c.secret})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	issuedAt := time.Now()
	status, respBody, err := c.send(ctx, http.MethodPost, c.authBaseURL+loginPath, body, false)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if status < 200 || status >= 300 {
		return &driven.AuthError{Status: status}
	}

	var envelope loginResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}
	if envelope.Session.AccessToken == "" {
		return fmt.Errorf("login response carried no access token")
	}

	expiresAt := issuedAt.Add(defaultTokenLifetime)
	if raw := envelope.Session.AccessExpiresAt; raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			expiresAt = parsed
		}
	}

	c.store.Set(model.CredentialRecord{
		Token:     envelope.Session.AccessToken,
		Identity:  c.identity,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	})

	c.logger.Info("login succeeded",
		"account_id", envelope.Account.ID,
		"session_status", envelope.Session.Status,
		"expires_at", expiresAt,
	)
	return nil
}
