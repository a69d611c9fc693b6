package platform

import (
	"context"

	"github.com/rxstock/session/access"
	"github.com/rxstock/session/sessiontypes"
)

// API is the surface of the platform's credential and permission endpoints
// consumed by the session store and handlers.
type API interface {
	// SignIn exchanges credentials for an authenticated session.
	SignIn(ctx context.Context, creds sessiontypes.Credentials) (*sessiontypes.AuthSession, error)

	// SignUp registers a new account and signs it in.
	SignUp(ctx context.Context, reg sessiontypes.Registration) (*sessiontypes.AuthSession, error)

	// SignOut revokes the platform session held by the access token.
	SignOut(ctx context.Context, accessToken string) error

	// RefreshTokens exchanges the refresh token for a rotated pair.
	RefreshTokens(ctx context.Context, refreshToken string) (sessiontypes.TokenPair, error)

	// MyPermissions fetches the permission codes granted to the signed-in identity.
	MyPermissions(ctx context.Context, accessToken string) (access.GrantedSet, error)

	// UserPermissions fetches the permission codes granted to another user.
	UserPermissions(ctx context.Context, accessToken, userID string) (access.GrantedSet, error)

	// PermissionCatalog fetches the catalog of grantable permissions.
	PermissionCatalog(ctx context.Context, accessToken string) ([]access.Definition, error)
}
