package session

import (
	"context"

	"github.com/go-playground/errors/v5"
	"github.com/rxstock/session/sessiontypes"
	"golang.org/x/oauth2"
)

// TokenSource adapts the store to oauth2.TokenSource so HTTP clients built
// on golang.org/x/oauth2 can ride the session's token pair. Tokens are
// rotated through the store, so transports sharing the source also share
// refresh round trips. The context is captured for the life of the source,
// matching how oauth2 binds contexts to sources.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: s}
}

type storeTokenSource struct {
	ctx   context.Context
	store *Store
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	tokens := ts.store.Tokens()
	if !tokens.Valid() {
		return nil, errors.Wrap(sessiontypes.ErrNotAuthenticated, "no active session")
	}
	if tokens.Expired(ts.store.expirySkew) {
		rotated, err := ts.store.refresh(ts.ctx, tokens)
		if err != nil {
			return nil, err
		}
		tokens = rotated
	}

	return &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       tokens.ExpiresAt,
	}, nil
}
