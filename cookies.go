package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
	"github.com/gofrs/uuid"
	"github.com/gorilla/securecookie"
	"github.com/rxstock/session/sessioninfo"
	"github.com/rxstock/session/sessiontypes"
)

// scKey is a type for storing values in the session cookie
type scKey string

func (c scKey) String() string {
	return string(c)
}

const (
	// Keys used within the Secure Cookie
	scSessionID    scKey = "sessionID"
	scIdentity     scKey = "identity"
	scAccessToken  scKey = "accessToken"
	scRefreshToken scKey = "refreshToken"
	scTokenExpiry  scKey = "tokenExpiry"

	// Key used within the redirect cookie
	scReturnPath scKey = "returnPath"
)

const (
	defaultAuthCookieName = "auth"

	// redirectCookieName holds the path a signed-out user was denied, so
	// sign-in can send them back. It is short-lived and consumed on read.
	redirectCookieName       = "auth-redirect"
	redirectCookieExpiration = 10 * time.Minute
)

// Interface included for testability
type cookieManager interface {
	newAuthCookie(w http.ResponseWriter, sessionID uuid.UUID) (map[scKey]string, error)
	readAuthCookie(r *http.Request) (map[scKey]string, bool)
	writeAuthCookie(w http.ResponseWriter, cval map[scKey]string) error
	clearAuthCookie(w http.ResponseWriter)
	writeRedirectCookie(w http.ResponseWriter, returnPath string) error
	readRedirectCookie(r *http.Request) (string, bool)
	deleteRedirectCookie(w http.ResponseWriter)
	setXSRFTokenCookie(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, cookieExpiration time.Duration) (set bool)
	hasValidXSRFToken(r *http.Request) bool
}

var _ cookieManager = &cookieClient{}

type cookieClient struct {
	secureCookie *securecookie.SecureCookie
	cookieName   string
	domain       string
	stCookieName string
	stHeaderName string
}

func newCookieClient(secureCookie *securecookie.SecureCookie) *cookieClient {
	return &cookieClient{
		secureCookie: secureCookie,
		cookieName:   defaultAuthCookieName,
		stCookieName: defaultXSRFCookieName,
		stHeaderName: defaultXSRFHeaderName,
	}
}

func (c *cookieClient) newAuthCookie(w http.ResponseWriter, sessionID uuid.UUID) (map[scKey]string, error) {
	cval := map[scKey]string{
		scSessionID: sessionID.String(),
	}

	if err := c.writeAuthCookie(w, cval); err != nil {
		return nil, errors.Wrap(err, "")
	}

	return cval, nil
}

func (c *cookieClient) readAuthCookie(r *http.Request) (map[scKey]string, bool) {
	cval := make(map[scKey]string)

	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return cval, false
	}
	err = c.secureCookie.Decode(c.cookieName, cookie.Value, &cval)
	if err != nil {
		logger.Req(r).Error(errors.Wrap(err, "secureCookie.Decode()"))

		return cval, false
	}

	return cval, true
}

func (c *cookieClient) writeAuthCookie(w http.ResponseWriter, cval map[scKey]string) error {
	encoded, err := c.secureCookie.Encode(c.cookieName, cval)
	if err != nil {
		return errors.Wrap(err, "securecookie.Encode()")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    encoded,
		Path:     "/",
		Domain:   c.domain,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	return nil
}

func (c *cookieClient) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		Expires:  time.Unix(0, 0),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c *cookieClient) writeRedirectCookie(w http.ResponseWriter, returnPath string) error {
	cval := map[scKey]string{
		scReturnPath: returnPath,
	}

	encoded, err := c.secureCookie.Encode(redirectCookieName, cval)
	if err != nil {
		return errors.Wrap(err, "securecookie.Encode()")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     redirectCookieName,
		Value:    encoded,
		Path:     "/",
		Domain:   c.domain,
		Expires:  time.Now().Add(redirectCookieExpiration),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	return nil
}

func (c *cookieClient) readRedirectCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(redirectCookieName)
	if err != nil {
		return "", false
	}

	cval := make(map[scKey]string)
	if err := c.secureCookie.Decode(redirectCookieName, cookie.Value, &cval); err != nil {
		logger.Req(r).Error(errors.Wrap(err, "secureCookie.Decode()"))

		return "", false
	}

	return cval[scReturnPath], true
}

func (c *cookieClient) deleteRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     redirectCookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		Expires:  time.Unix(0, 0),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// authCookieValues flattens a session into secure cookie values. The
// identity travels as JSON; the token expiry as RFC 3339.
func authCookieValues(sessionID uuid.UUID, identity sessiontypes.Identity, tokens sessiontypes.TokenPair) (map[scKey]string, error) {
	rawIdentity, err := json.Marshal(identity)
	if err != nil {
		return nil, errors.Wrap(err, "json.Marshal()")
	}

	cval := map[scKey]string{
		scSessionID:    sessionID.String(),
		scIdentity:     string(rawIdentity),
		scAccessToken:  tokens.AccessToken,
		scRefreshToken: tokens.RefreshToken,
	}
	if !tokens.ExpiresAt.IsZero() {
		cval[scTokenExpiry] = tokens.ExpiresAt.Format(time.RFC3339)
	}

	return cval, nil
}

// sessionFromCookie rebuilds session info from decoded cookie values. A
// cookie without an identity is an anonymous session; an identity without
// an access token, or any value that does not parse, is malformed.
func sessionFromCookie(cval map[scKey]string) (*sessioninfo.SessionInfo, error) {
	sessionID, ok := validSessionID(cval[scSessionID])
	if !ok {
		return nil, errors.Wrap(sessiontypes.ErrMalformedState, "invalid session ID")
	}

	info := &sessioninfo.SessionInfo{SID: sessionID}
	rawIdentity := cval[scIdentity]
	if rawIdentity == "" {
		return info, nil
	}

	identity := &sessiontypes.Identity{}
	if err := json.Unmarshal([]byte(rawIdentity), identity); err != nil {
		return nil, errors.Wrap(sessiontypes.ErrMalformedState, "identity is not valid JSON")
	}
	if cval[scAccessToken] == "" {
		return nil, errors.Wrap(sessiontypes.ErrMalformedState, "identity without an access token")
	}

	tokens := sessiontypes.TokenPair{
		AccessToken:  cval[scAccessToken],
		RefreshToken: cval[scRefreshToken],
	}
	if raw := cval[scTokenExpiry]; raw != "" {
		expiry, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.Wrap(sessiontypes.ErrMalformedState, "invalid token expiry")
		}
		tokens.ExpiresAt = expiry
	}

	info.Identity = identity
	info.Tokens = tokens

	return info, nil
}

// validSessionID checks that the sessionID is a valid uuid
func validSessionID(sessionID string) (uuid.UUID, bool) {
	sessionUUID, err := uuid.FromString(sessionID)
	if err != nil {
		return uuid.Nil, false
	}

	return sessionUUID, true
}
