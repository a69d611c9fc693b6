package session

import (
	"time"
)

// PlatformAuthOption defines the interface for functional options used when
// creating a new PlatformAuth.
type PlatformAuthOption interface {
	isPlatformAuthOption()
}

// CookieOption defines a function signature for setting cookie client options.
type CookieOption func(*cookieClient)

func (CookieOption) isPlatformAuthOption() {}

// WithCookieName sets the cookie name for the session cookie.
func WithCookieName(name string) CookieOption {
	return CookieOption(func(c *cookieClient) {
		c.cookieName = name
	})
}

// WithCookieDomain sets the domain for the session cookie.
func WithCookieDomain(domain string) CookieOption {
	return CookieOption(func(c *cookieClient) {
		c.domain = domain
	})
}

// WithXSRFCookieName sets the cookie name for the XSRF cookie.
func WithXSRFCookieName(name string) CookieOption {
	return CookieOption(func(c *cookieClient) {
		c.stCookieName = name
	})
}

// WithXSRFHeaderName sets the header name for the XSRF header.
func WithXSRFHeaderName(name string) CookieOption {
	return CookieOption(func(c *cookieClient) {
		c.stHeaderName = name
	})
}

// HandlerOption defines a function signature for setting handler options.
type HandlerOption func(*PlatformAuth)

func (HandlerOption) isPlatformAuthOption() {}

// WithLogHandler sets the LogHandler. (default: Handle)
func WithLogHandler(l LogHandler) HandlerOption {
	return HandlerOption(func(p *PlatformAuth) {
		p.handle = l
	})
}

// WithLoginURL sets the path Protect redirects signed-out users to.
// (default: /sign-in)
func WithLoginURL(u string) HandlerOption {
	return HandlerOption(func(p *PlatformAuth) {
		p.signInURL = u
	})
}

// WithUnauthorizedURL sets the path Protect redirects users without the
// required role or permissions to. (default: /unauthorized)
func WithUnauthorizedURL(u string) HandlerOption {
	return HandlerOption(func(p *PlatformAuth) {
		p.unauthorizedURL = u
	})
}

// WithHomeURL sets the fallback post-login destination. (default: /)
func WithHomeURL(u string) HandlerOption {
	return HandlerOption(func(p *PlatformAuth) {
		p.homeURL = u
	})
}

// StoreOption defines a function signature for setting Store options.
type StoreOption func(*Store)

// WithExpirySkew sets how long before its stated expiry a token pair is
// refreshed. (default: 30s)
func WithExpirySkew(d time.Duration) StoreOption {
	return StoreOption(func(s *Store) {
		s.expirySkew = d
	})
}

// WithSignInPath sets the path of the sign-in screen, which is never
// captured as a post-login redirect target. (default: /sign-in)
func WithSignInPath(p string) StoreOption {
	return StoreOption(func(s *Store) {
		s.signInPath = p
	})
}

// WithHomePath sets the fallback post-login destination. (default: /)
func WithHomePath(p string) StoreOption {
	return StoreOption(func(s *Store) {
		s.homePath = p
	})
}
