// sessioninfo package carries the hydrated session through the request context.
package sessioninfo

import (
	"github.com/gofrs/uuid"
	"github.com/rxstock/session/access"
	"github.com/rxstock/session/sessiontypes"
)

// SessionInfo is the per-request view of the web session.
type SessionInfo struct {
	// SID is the client session ID minted by the session cookie. It is
	// present for anonymous visitors too and keys the XSRF token.
	SID uuid.UUID

	// Identity is the signed-in user, or nil for anonymous requests.
	Identity *sessiontypes.Identity

	// Tokens is the bearer pair belonging to Identity. It is zero whenever
	// Identity is nil.
	Tokens sessiontypes.TokenPair
}

// Authenticated reports whether the request carries a signed-in identity.
func (s *SessionInfo) Authenticated() bool {
	return s != nil && s.Identity != nil
}

// Role returns the signed-in identity's role, or "" for anonymous requests.
func (s *SessionInfo) Role() access.Role {
	if !s.Authenticated() {
		return ""
	}

	return s.Identity.Role
}
