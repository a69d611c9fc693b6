// sessiontypes package contains the shared identity, credential, and token
// types for the session package implementations.
package sessiontypes

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rxstock/session/access"
)

// Sentinel errors for session failure classification. Callers classify with
// errors.Is; wrapped chains preserve the match.
var (
	// ErrAuthenticationFailed reports rejected credentials at sign-in or
	// sign-up. The platform's message is carried alongside for display.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrSessionExpired reports that the refresh token was rejected or the
	// single refresh retry is exhausted. The session is forced anonymous
	// whenever it occurs.
	ErrSessionExpired = errors.New("session expired")

	// ErrPermissionDenied reports a server-side authorization denial.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMalformedState reports an unreadable persisted session record. It is
	// handled internally (the record is discarded) and never shown to users.
	ErrMalformedState = errors.New("malformed persisted session state")

	// ErrNotAuthenticated reports an authenticated-only operation invoked
	// without a signed-in identity.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Identity is the signed-in user's profile as issued by the platform.
type Identity struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   access.Role `json:"role"`
	Active bool        `json:"isActive"`
}

// UnmarshalJSON accepts both the current single-role payload and the legacy
// roles-array payload, taking the first element of the array.
func (id *Identity) UnmarshalJSON(data []byte) error {
	type identity Identity
	aux := struct {
		*identity
		LegacyRoles []access.Role `json:"roles"`
	}{
		identity: (*identity)(id),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if id.Role == "" && len(aux.LegacyRoles) > 0 {
		id.Role = aux.LegacyRoles[0]
	}

	return nil
}

// ExpirySkew is the default clock-skew buffer applied when deciding whether
// an access token is due for refresh.
const ExpirySkew = 30 * time.Second

// TokenPair is the bearer credential pair issued by the platform. The pair
// is always persisted and cleared together with the identity it belongs to.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`

	// ExpiresAt is the access token expiry when the platform reports one.
	// The zero value means the expiry is unknown.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Valid reports whether the pair carries an access token.
func (t TokenPair) Valid() bool {
	return t.AccessToken != ""
}

// Expired reports whether the access token is within skew of its known
// expiry. An unknown expiry is never considered expired; the platform's
// unauthorized response is the authority in that case.
func (t TokenPair) Expired(skew time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}

	return !time.Now().Before(t.ExpiresAt.Add(-skew))
}

// Credentials are the sign-in inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload for a new account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthSession is the platform's response to a successful sign-in or
// sign-up: the identity together with its first token pair.
type AuthSession struct {
	Identity Identity
	Tokens   TokenPair
}
