package platform

import (
	"context"
	"net/http"

	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
)

// Login exchanges credentials for a bearer token and user payload. Both
// must be present in the reply; anything less is treated as a failure.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.Call(ctx, CallOptions{
		Method:         http.MethodPost,
		Path:           "/api/auth/login",
		Endpoint:       "auth.login",
		Body:           loginRequest{Email: email, Password: password},
		Out:            &out,
		NoExpirySignal: true,
	})
	if err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "login response missing token or user")
	}
	return &out, nil
}

// Register submits the nested registration payload. A successful reply
// carries the same token/user pair as login.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*AuthResponse, error) {
	var out AuthResponse
	err := c.Call(ctx, CallOptions{
		Method:         http.MethodPost,
		Path:           "/api/auth/register",
		Endpoint:       "auth.register",
		Body:           payload,
		Out:            &out,
		NoExpirySignal: true,
	})
	if err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "register response missing token or user")
	}
	return &out, nil
}

// VerifyToken checks a persisted token. The token travels both as the
// bearer header and in the body for compatibility with endpoints that
// accept either.
func (c *Client) VerifyToken(ctx context.Context, token, sessionID string) (*VerifyResponse, error) {
	var out VerifyResponse
	err := c.Call(ctx, CallOptions{
		Method:         http.MethodPost,
		Path:           "/api/auth/verify-token",
		Endpoint:       "auth.verify_token",
		Token:          token,
		SessionID:      sessionID,
		Body:           verifyTokenRequest{Token: token},
		Out:            &out,
		NoExpirySignal: true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Probe hits the bare status-check endpoint. It is kept separate from
// VerifyToken because the two upstream probes are not interchangeable.
func (c *Client) Probe(ctx context.Context, token string) error {
	return c.Call(ctx, CallOptions{
		Method:         http.MethodGet,
		Path:           "/api/auth/verify",
		Endpoint:       "auth.verify",
		Token:          token,
		NoExpirySignal: true,
	})
}

// Logout notifies the upstream that the token is being discarded.
func (c *Client) Logout(ctx context.Context, token, sessionID string) error {
	return c.Call(ctx, CallOptions{
		Method:         http.MethodPost,
		Path:           "/api/auth/logout",
		Endpoint:       "auth.logout",
		Token:          token,
		SessionID:      sessionID,
		NoExpirySignal: true,
	})
}

// ChangePassword submits a password change for the authenticated user.
func (c *Client) ChangePassword(ctx context.Context, token, sessionID, current, next string) error {
	return c.Call(ctx, CallOptions{
		Method:    http.MethodPost,
		Path:      "/api/auth/change-password",
		Endpoint:  "auth.change_password",
		Token:     token,
		SessionID: sessionID,
		Body:      changePasswordRequest{CurrentPassword: current, NewPassword: next},
	})
}
