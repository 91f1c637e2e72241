package fakturoid

import (
	"context"
	"fmt"
	"time"
)

// tokenExpirySkew renews a token shortly before the server would reject it.
const tokenExpirySkew = 30 * time.Second

// AuthSession is a bearer token issued by the client credentials flow.
type AuthSession struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// IsExpired reports whether the session must be renewed at now.
func (s *AuthSession) IsExpired(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return true
	}
	return !now.Add(tokenExpirySkew).Before(s.ExpiresAt)
}

type tokenRequest struct {
	GrantType string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// session returns a valid session, requesting a new token when needed.
func (c *Client) session(ctx context.Context) (*AuthSession, error) {
	if !c.auth.IsExpired(c.now()) {
		return c.auth, nil
	}
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	return c.auth, nil
}

// authenticate exchanges the client credentials for a bearer token.
func (c *Client) authenticate(ctx context.Context) error {
	const op = "Authenticate"

	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetBody(tokenRequest{GrantType: "client_credentials"}).
		ForceContentType("application/json").
		SetResult(&token).
		Post("/oauth/token")
	if err != nil {
		return fmt.Errorf("%s: token request failed: %w", op, err)
	}
	if !resp.IsSuccess() {
		return newAPIError(op, resp.StatusCode(), resp.String())
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%s: %w: empty access token", op, ErrUnauthorized)
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	c.auth = &AuthSession{
		AccessToken: token.AccessToken,
		TokenType:   tokenType,
		ExpiresAt:   c.now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}

	c.log.Debug().
		Time("expires_at", c.auth.ExpiresAt).
		Msg("Obtained access token")

	return nil
}
