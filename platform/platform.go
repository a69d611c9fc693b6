// Package platform implements the REST client for the stock-management
// platform's credential and permission endpoints.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/errors/v5"
	"github.com/rxstock/session/access"
	"github.com/rxstock/session/sessiontypes"
	"go.opentelemetry.io/otel"
)

const name = "github.com/rxstock/session/platform"

// Platform endpoint paths.
const (
	signInPath        = "/auth/sign-in"
	signUpPath        = "/auth/sign-up"
	signOutPath       = "/auth/sign-out"
	refreshTokensPath = "/auth/refresh-tokens"
	catalogPath       = "/permissions"
	myPermissionsPath = "/permissions/me"
)

var _ API = &Client{}

// Client is the HTTP client for the platform API.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. (default: 15s timeout)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// New creates a platform API client rooted at baseURL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// authSessionResponse is the wire shape of sign-in, sign-up, and refresh
// responses. Refresh responses leave User empty and may omit the rotated
// refresh token and expiry.
type authSessionResponse struct {
	User         sessiontypes.Identity `json:"user"`
	AccessToken  string                `json:"accessToken"`
	RefreshToken string                `json:"refreshToken"`
	ExpiresAt    time.Time             `json:"expiresAt"`
}

func (a authSessionResponse) session() *sessiontypes.AuthSession {
	return &sessiontypes.AuthSession{
		Identity: a.User,
		Tokens: sessiontypes.TokenPair{
			AccessToken:  a.AccessToken,
			RefreshToken: a.RefreshToken,
			ExpiresAt:    a.ExpiresAt,
		},
	}
}

// SignIn exchanges credentials for an authenticated session. Rejected
// credentials surface sessiontypes.ErrAuthenticationFailed with the
// platform's message attached for display.
func (c *Client) SignIn(ctx context.Context, creds sessiontypes.Credentials) (*sessiontypes.AuthSession, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.SignIn()")
	defer span.End()

	var res authSessionResponse
	if err := c.do(ctx, http.MethodPost, signInPath, "", creds, &res); err != nil {
		return nil, errors.Wrap(credentialFailure(err), "platform.Client.do()")
	}

	return res.session(), nil
}

// SignUp registers a new account and signs it in. A rejected registration
// surfaces sessiontypes.ErrAuthenticationFailed with the platform's message.
func (c *Client) SignUp(ctx context.Context, reg sessiontypes.Registration) (*sessiontypes.AuthSession, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.SignUp()")
	defer span.End()

	var res authSessionResponse
	if err := c.do(ctx, http.MethodPost, signUpPath, "", reg, &res); err != nil {
		return nil, errors.Wrap(credentialFailure(err), "platform.Client.do()")
	}

	return res.session(), nil
}

// SignOut revokes the platform session held by the access token. Callers
// treat failures as best effort: the local session is already gone.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.SignOut()")
	defer span.End()

	if err := c.do(ctx, http.MethodPost, signOutPath, accessToken, nil, nil); err != nil {
		return errors.Wrap(err, "platform.Client.do()")
	}

	return nil
}

// RefreshTokens exchanges the refresh token for a rotated pair. A rejected
// refresh surfaces sessiontypes.ErrSessionExpired: the platform will not
// extend this session. A response that omits the rotated refresh token
// leaves RefreshToken empty; callers keep their previous one.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (sessiontypes.TokenPair, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.RefreshTokens()")
	defer span.End()

	req := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refreshToken}

	var res authSessionResponse
	if err := c.do(ctx, http.MethodPost, refreshTokensPath, "", req, &res); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			apiErr.sentinel = sessiontypes.ErrSessionExpired
		}

		return sessiontypes.TokenPair{}, errors.Wrap(err, "platform.Client.do()")
	}

	return sessiontypes.TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	}, nil
}

// MyPermissions fetches the permission codes granted to the signed-in
// identity.
func (c *Client) MyPermissions(ctx context.Context, accessToken string) (access.GrantedSet, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.MyPermissions()")
	defer span.End()

	var codes []string
	if err := c.do(ctx, http.MethodGet, myPermissionsPath, accessToken, nil, &codes); err != nil {
		return nil, errors.Wrap(err, "platform.Client.do()")
	}

	return access.NewGrantedSet(codes...), nil
}

// UserPermissions fetches the permission codes granted to another user. The
// platform allows only administrators to call it; everyone else receives
// sessiontypes.ErrPermissionDenied.
func (c *Client) UserPermissions(ctx context.Context, accessToken, userID string) (access.GrantedSet, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.UserPermissions()")
	defer span.End()

	path := fmt.Sprintf("/users/%s/permissions", url.PathEscape(userID))

	var codes []string
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &codes); err != nil {
		return nil, errors.Wrap(err, "platform.Client.do()")
	}

	return access.NewGrantedSet(codes...), nil
}

// PermissionCatalog fetches the platform's catalog of grantable permissions
// with their codes normalized.
func (c *Client) PermissionCatalog(ctx context.Context, accessToken string) ([]access.Definition, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.PermissionCatalog()")
	defer span.End()

	var defs []access.Definition
	if err := c.do(ctx, http.MethodGet, catalogPath, accessToken, nil, &defs); err != nil {
		return nil, errors.Wrap(err, "platform.Client.do()")
	}
	for i := range defs {
		defs[i].Code = access.NormalizeCode(string(defs[i].Code))
	}

	return defs, nil
}

// credentialFailure classifies a rejected sign-in or sign-up so callers can
// match sessiontypes.ErrAuthenticationFailed with errors.Is.
func credentialFailure(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict:
			apiErr.sentinel = sessiontypes.ErrAuthenticationFailed
		}
	}

	return err
}

// do executes one platform request: request marshaling, bearer auth,
// response envelope normalization, and status mapping. Non-2xx responses
// become *Error carrying the body's failure message; 403 additionally
// classifies as sessiontypes.ErrPermissionDenied.
func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "json.Marshal()")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "http.NewRequestWithContext()")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "http.Client.Do()")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "io.ReadAll()")
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		apiErr := &Error{Status: res.StatusCode, Message: failureMessage(raw)}
		if res.StatusCode == http.StatusForbidden {
			apiErr.sentinel = sessiontypes.ErrPermissionDenied
		}

		return apiErr
	}

	return decodeBody(res.StatusCode, raw, out)
}
