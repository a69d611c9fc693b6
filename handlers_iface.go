package session

import (
	"net/http"

	"github.com/rxstock/session/access"
)

type sessionHandlers interface {
	WithSession(next http.Handler) http.Handler
	SetXSRFToken(next http.Handler) http.Handler
	ValidateXSRFToken(next http.Handler) http.Handler
	Protect(req access.Requirement) func(http.Handler) http.Handler
	ProtectAPI(req access.Requirement) func(http.Handler) http.Handler
	Restricted(req access.Requirement, next http.Handler, options ...RestrictedOption) http.Handler
}

// PlatformAuthHandlers defines the interface for platform session handlers.
type PlatformAuthHandlers interface {
	SignIn() http.HandlerFunc
	SignUp() http.HandlerFunc
	SignOut() http.HandlerFunc
	Refresh() http.HandlerFunc
	Authenticated() http.HandlerFunc
	UserPermissions() http.HandlerFunc
	PermissionCatalog() http.HandlerFunc

	// common middleware
	sessionHandlers
}
