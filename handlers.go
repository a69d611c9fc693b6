package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
	"github.com/gofrs/uuid"
	"github.com/gorilla/securecookie"
	"github.com/rxstock/session/access"
	"github.com/rxstock/session/platform"
	"github.com/rxstock/session/sessioninfo"
	"github.com/rxstock/session/sessiontypes"
	"go.opentelemetry.io/otel"
)

const (
	// RouterUserID is a constant used for matching the user ID in the router path
	RouterUserID = "userID"

	defaultUnauthorizedPath = "/unauthorized"
)

var _ PlatformAuthHandlers = &PlatformAuth{}

// PlatformAuth serves the platform's session flows over cookie-backed
// HTTP, for dashboards that keep tokens out of the browser: the identity
// and token pair ride in the secure cookie, and every handler works from
// the session hydrated by WithSession.
type PlatformAuth struct {
	api    platform.API
	handle LogHandler

	signInURL       string
	unauthorizedURL string
	homeURL         string

	cookieManager
}

// NewPlatformAuth creates the handler set for the platform's session flows.
func NewPlatformAuth(api platform.API, secureCookie *securecookie.SecureCookie, options ...PlatformAuthOption) *PlatformAuth {
	cookieClient := newCookieClient(secureCookie)
	p := &PlatformAuth{
		api:             api,
		handle:          Handle,
		signInURL:       defaultSignInPath,
		unauthorizedURL: defaultUnauthorizedPath,
		homeURL:         defaultHomePath,
		cookieManager:   cookieClient,
	}

	for _, opt := range options {
		switch o := any(opt).(type) {
		case CookieOption:
			o(cookieClient)
		case HandlerOption:
			o(p)
		}
	}

	return p
}

// WithSession establishes the session cookie if none exists and stores the
// session it carries in the request context. A cookie that fails to decode
// or carries malformed state is replaced with a fresh anonymous session
// rather than failing the request.
func (p *PlatformAuth) WithSession(next http.Handler) http.Handler {
	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.WithSession()")
		defer span.End()

		info, err := p.hydrate(w, r)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		// Store session info in context
		r = r.WithContext(context.WithValue(ctx, sessioninfo.CtxSessionInfo, info))

		// Add session ID to logging context
		logger.Req(r).AddRequestAttribute("session ID", info.SID)
		l := logger.Req(r).WithAttributes().AddAttribute("session ID", info.SID).Logger()
		r = r.WithContext(logger.NewCtx(r.Context(), l))

		next.ServeHTTP(w, r)

		return nil
	})
}

func (p *PlatformAuth) hydrate(w http.ResponseWriter, r *http.Request) (*sessioninfo.SessionInfo, error) {
	cval, ok := p.readAuthCookie(r)
	if ok {
		info, err := sessionFromCookie(cval)
		if err == nil {
			return info, nil
		}
		logger.Req(r).Error(errors.Wrap(err, "session.sessionFromCookie()"))
	}

	return p.newAnonymousSession(w)
}

func (p *PlatformAuth) newAnonymousSession(w http.ResponseWriter) (*sessioninfo.SessionInfo, error) {
	sessionID, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "uuid.NewV4()")
	}
	if _, err := p.newAuthCookie(w, sessionID); err != nil {
		return nil, err
	}

	return &sessioninfo.SessionInfo{SID: sessionID}, nil
}

// SignIn exchanges credentials for a platform session and establishes the
// session cookie. The response carries the signed-in user and where to
// send them next.
func (p *PlatformAuth) SignIn() http.HandlerFunc {
	type request struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RedirectTo string `json:"redirectTo"`
	}
	type response struct {
		User       sessiontypes.Identity `json:"user"`
		RedirectTo string                `json:"redirectTo"`
	}

	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.SignIn()")
		defer span.End()

		// decode request
		req := &request{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return httpio.NewEncoder(w).BadRequestMessage(ctx, "invalid request body")
		}

		auth, err := p.api.SignIn(ctx, sessiontypes.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			if errors.Is(err, sessiontypes.ErrAuthenticationFailed) {
				return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewUnauthorizedMessageWithError(err, credentialMessage(err)))
			}

			return httpio.NewEncoder(w).ClientMessage(ctx, errors.Wrap(err, "platform.API.SignIn()"))
		}

		return p.establishSession(ctx, w, r, auth, req.RedirectTo, func(redirectTo string) any {
			return response{User: auth.Identity, RedirectTo: redirectTo}
		})
	})
}

// SignUp registers an account with the platform and establishes the
// returned session, so a new user lands signed in.
func (p *PlatformAuth) SignUp() http.HandlerFunc {
	type request struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		RedirectTo string `json:"redirectTo"`
	}
	type response struct {
		User       sessiontypes.Identity `json:"user"`
		RedirectTo string                `json:"redirectTo"`
	}

	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.SignUp()")
		defer span.End()

		// decode request
		req := &request{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return httpio.NewEncoder(w).BadRequestMessage(ctx, "invalid request body")
		}

		auth, err := p.api.SignUp(ctx, sessiontypes.Registration{Name: req.Name, Email: req.Email, Password: req.Password})
		if err != nil {
			if errors.Is(err, sessiontypes.ErrAuthenticationFailed) {
				return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewUnauthorizedMessageWithError(err, credentialMessage(err)))
			}

			return httpio.NewEncoder(w).ClientMessage(ctx, errors.Wrap(err, "platform.API.SignUp()"))
		}

		return p.establishSession(ctx, w, r, auth, req.RedirectTo, func(redirectTo string) any {
			return response{User: auth.Identity, RedirectTo: redirectTo}
		})
	})
}

// establishSession binds an authenticated platform session to a fresh
// session ID, rewrites the auth and XSRF cookies, and encodes the
// response. A new ID on every sign-in keeps a pre-auth cookie from riding
// into the authenticated session.
func (p *PlatformAuth) establishSession(ctx context.Context, w http.ResponseWriter, r *http.Request, auth *sessiontypes.AuthSession, redirectTo string, respond func(redirectTo string) any) error {
	if !auth.Identity.Active {
		return httpio.NewEncoder(w).UnauthorizedMessage(ctx, "Account disabled")
	}

	sessionID, err := uuid.NewV4()
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, errors.Wrap(err, "uuid.NewV4()"))
	}

	cval, err := authCookieValues(sessionID, auth.Identity, auth.Tokens)
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}
	if err := p.writeAuthCookie(w, cval); err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}

	// write new XSRF Token Cookie to match the new SessionID
	p.setXSRFTokenCookie(w, r, sessionID, xsrfCookieLife)

	// Log the association between the sessionID and the user
	logger.Req(r).AddRequestAttribute("user ID", auth.Identity.ID).AddRequestAttribute("session ID", sessionID)

	return httpio.NewEncoder(w).Ok(respond(p.postLoginTarget(w, r, redirectTo)))
}

// credentialMessage surfaces the platform's rejection reason when it sent
// one, falling back to a generic message.
func credentialMessage(err error) string {
	if msg := platform.ErrorMessage(err); msg != "" {
		return msg
	}

	return "Invalid Credentials"
}

// postLoginTarget resolves where the client should navigate after sign-in:
// an explicit target from the request wins, then the captured redirect
// cookie, then home. The cookie is only consumed when it is used, so an
// explicit target leaves it for the flow that captured it.
func (p *PlatformAuth) postLoginTarget(w http.ResponseWriter, r *http.Request, explicit string) string {
	if explicit == "" {
		explicit = r.URL.Query().Get("redirectTo")
	}
	if explicit != "" {
		return explicit
	}

	captured, found := p.readRedirectCookie(r)
	if !found {
		return p.homeURL
	}
	p.deleteRedirectCookie(w)
	if captured == "" {
		return p.homeURL
	}

	return captured
}

// SignOut destroys the session. Local cookies are cleared first and
// unconditionally; revoking the tokens with the platform is best effort,
// so SignOut always responds Ok.
func (p *PlatformAuth) SignOut() http.HandlerFunc {
	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.SignOut()")
		defer span.End()

		si := sessioninfo.FromRequest(r)

		p.clearAuthCookie(w)
		p.deleteRedirectCookie(w)

		if si.Authenticated() {
			if err := p.api.SignOut(ctx, si.Tokens.AccessToken); err != nil {
				logger.Req(r).Error(errors.Wrap(err, "platform.API.SignOut()"))
			}
		}

		return httpio.NewEncoder(w).Ok(nil)
	})
}

// Refresh rotates the session's token pair and rewrites the session
// cookie. Clients call it when the access token nears expiry; once the
// refresh token is spent it responds 401 and the session is over.
func (p *PlatformAuth) Refresh() http.HandlerFunc {
	type response struct {
		ExpiresAt time.Time `json:"expiresAt"`
	}

	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.Refresh()")
		defer span.End()

		si := sessioninfo.FromRequest(r)
		if !si.Authenticated() {
			return httpio.NewEncoder(w).UnauthorizedMessage(ctx, "Sign-in required")
		}

		tokens, err := p.refreshSession(ctx, w, si)
		if err != nil {
			if errors.Is(err, sessiontypes.ErrSessionExpired) {
				return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewUnauthorizedMessageWithError(err, "Session expired"))
			}

			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		return httpio.NewEncoder(w).Ok(response{ExpiresAt: tokens.ExpiresAt})
	})
}

// refreshSession rotates the tokens and rewrites the auth cookie in place.
// A dead refresh token clears the auth cookie and surfaces
// sessiontypes.ErrSessionExpired; the redirect cookie survives so a
// captured path outlives the expiry.
func (p *PlatformAuth) refreshSession(ctx context.Context, w http.ResponseWriter, si *sessioninfo.SessionInfo) (sessiontypes.TokenPair, error) {
	if si.Tokens.RefreshToken == "" {
		p.clearAuthCookie(w)

		return sessiontypes.TokenPair{}, errors.Wrap(sessiontypes.ErrSessionExpired, "session has no refresh token")
	}

	rotated, err := p.api.RefreshTokens(ctx, si.Tokens.RefreshToken)
	if err != nil {
		logger.Ctx(ctx).Error(errors.Wrap(err, "platform.API.RefreshTokens()"))
		p.clearAuthCookie(w)

		return sessiontypes.TokenPair{}, errors.Wrap(sessiontypes.ErrSessionExpired, "token refresh failed")
	}
	if rotated.RefreshToken == "" {
		// The platform may omit the refresh token when it does not rotate it.
		rotated.RefreshToken = si.Tokens.RefreshToken
	}

	cval, err := authCookieValues(si.SID, *si.Identity, rotated)
	if err != nil {
		return sessiontypes.TokenPair{}, err
	}
	if err := p.writeAuthCookie(w, cval); err != nil {
		return sessiontypes.TokenPair{}, err
	}
	si.Tokens = rotated

	return rotated, nil
}

// authedCall runs call with the session's access token, refreshing the
// pair when it is near expiry and retrying once after a stale-token
// response. A second stale-token response clears the session.
func (p *PlatformAuth) authedCall(ctx context.Context, w http.ResponseWriter, si *sessioninfo.SessionInfo, call func(ctx context.Context, accessToken string) error) error {
	if !si.Authenticated() {
		return errors.Wrap(sessiontypes.ErrNotAuthenticated, "no active session")
	}

	tokens := si.Tokens
	if tokens.Expired(sessiontypes.ExpirySkew) {
		rotated, err := p.refreshSession(ctx, w, si)
		if err != nil {
			return err
		}
		tokens = rotated
	}

	err := call(ctx, tokens.AccessToken)
	if err == nil {
		return nil
	}
	if !platform.IsUnauthorized(err) {
		return err
	}

	rotated, refreshErr := p.refreshSession(ctx, w, si)
	if refreshErr != nil {
		return refreshErr
	}
	if err := call(ctx, rotated.AccessToken); err != nil {
		if platform.IsUnauthorized(err) {
			p.clearAuthCookie(w)

			return errors.Wrap(sessiontypes.ErrSessionExpired, "platform rejected a freshly rotated token")
		}

		return err
	}

	return nil
}

// Authenticated reports the session state for app bootstrap: who is signed
// in and the permissions they hold. Anonymous and expired sessions both
// report unauthenticated with a 200 so the dashboard can settle without
// error handling.
func (p *PlatformAuth) Authenticated() http.HandlerFunc {
	type response struct {
		Authenticated bool                   `json:"authenticated"`
		User          *sessiontypes.Identity `json:"user,omitempty"`
		Permissions   []access.Permission    `json:"permissions,omitempty"`
	}

	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.Authenticated()")
		defer span.End()

		si := sessioninfo.FromRequest(r)
		if !si.Authenticated() {
			return httpio.NewEncoder(w).Ok(response{})
		}

		var granted access.GrantedSet
		err := p.authedCall(ctx, w, si, func(ctx context.Context, accessToken string) error {
			perms, err := p.api.MyPermissions(ctx, accessToken)
			if err != nil {
				return errors.Wrap(err, "platform.API.MyPermissions()")
			}
			granted = perms

			return nil
		})
		switch {
		case err == nil:
		case errors.Is(err, sessiontypes.ErrSessionExpired):
			return httpio.NewEncoder(w).Ok(response{})
		default:
			// Report the session without permissions; gates fail closed.
			logger.Req(r).Error(err)
		}

		return httpio.NewEncoder(w).Ok(response{
			Authenticated: true,
			User:          si.Identity,
			Permissions:   granted.Slice(),
		})
	})
}

// UserPermissions returns another user's granted permissions, for the
// user-administration screen.
func (p *PlatformAuth) UserPermissions() http.HandlerFunc {
	type response struct {
		UserID      string              `json:"userId"`
		Permissions []access.Permission `json:"permissions"`
	}

	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.UserPermissions()")
		defer span.End()

		si := sessioninfo.FromRequest(r)
		userID := httpio.Param[string](r, RouterUserID)

		var granted access.GrantedSet
		err := p.authedCall(ctx, w, si, func(ctx context.Context, accessToken string) error {
			perms, err := p.api.UserPermissions(ctx, accessToken, userID)
			if err != nil {
				return errors.Wrap(err, "platform.API.UserPermissions()")
			}
			granted = perms

			return nil
		})
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, permissionCallMessage(err, userID))
		}

		return httpio.NewEncoder(w).Ok(response{UserID: userID, Permissions: granted.Slice()})
	})
}

// PermissionCatalog returns every permission the platform defines, for
// building the role-management screen.
func (p *PlatformAuth) PermissionCatalog() http.HandlerFunc {
	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.PermissionCatalog()")
		defer span.End()

		si := sessioninfo.FromRequest(r)

		var defs []access.Definition
		err := p.authedCall(ctx, w, si, func(ctx context.Context, accessToken string) error {
			catalog, err := p.api.PermissionCatalog(ctx, accessToken)
			if err != nil {
				return errors.Wrap(err, "platform.API.PermissionCatalog()")
			}
			defs = catalog

			return nil
		})
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, permissionCallMessage(err, ""))
		}

		return httpio.NewEncoder(w).Ok(defs)
	})
}

// permissionCallMessage maps a failed platform permission call to the
// client message it should surface.
func permissionCallMessage(err error, userID string) error {
	switch {
	case errors.Is(err, sessiontypes.ErrNotAuthenticated), errors.Is(err, sessiontypes.ErrSessionExpired):
		return httpio.NewUnauthorizedMessageWithError(err, "Sign-in required")
	case platform.IsNotFound(err) && userID != "":
		return httpio.NewNotFoundMessagef("user %q not found", userID)
	case errors.Is(err, sessiontypes.ErrPermissionDenied):
		if msg := platform.ErrorMessage(err); msg != "" {
			return httpio.NewForbiddenMessage(msg)
		}

		return httpio.NewForbiddenMessage("Access restricted")
	default:
		return err
	}
}

// Protect guards a routed screen. Signed-out users are redirected to the
// sign-in screen with the denied path captured for the post-login
// redirect; signed-in users lacking the role or permissions go to the
// unauthorized screen.
func (p *PlatformAuth) Protect(req access.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return p.handle(func(w http.ResponseWriter, r *http.Request) error {
			ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.Protect()")
			defer span.End()

			switch p.decide(ctx, w, r, req) {
			case DecisionRender:
				next.ServeHTTP(w, r)
			case DecisionRedirectLogin:
				target := r.URL.RequestURI()
				if capturablePath(target, p.signInURL) {
					if err := p.writeRedirectCookie(w, target); err != nil {
						logger.Req(r).Error(err)
					}
				}
				http.Redirect(w, r, p.signInURL, http.StatusFound)
			default:
				http.Redirect(w, r, p.unauthorizedURL, http.StatusFound)
			}

			return nil
		})
	}
}

// ProtectAPI guards a JSON endpoint. Unlike Protect it never redirects:
// anonymous callers get 401, callers lacking access get 403.
func (p *PlatformAuth) ProtectAPI(req access.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return p.handle(func(w http.ResponseWriter, r *http.Request) error {
			ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.ProtectAPI()")
			defer span.End()

			switch p.decide(ctx, w, r, req) {
			case DecisionRender:
				next.ServeHTTP(w, r)
			case DecisionRedirectLogin:
				return httpio.NewEncoder(w).UnauthorizedMessage(ctx, "Sign-in required")
			default:
				return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewForbiddenMessage("Access restricted"))
			}

			return nil
		})
	}
}

// decide evaluates a requirement against the request's session.
func (p *PlatformAuth) decide(ctx context.Context, w http.ResponseWriter, r *http.Request, req access.Requirement) Decision {
	si := sessioninfo.FromRequest(r)
	granted, expired := p.granted(ctx, w, r, req)
	if expired {
		return DecisionRedirectLogin
	}

	decision := Decide(webSnapshot(si), granted, req)
	if decision == DecisionRedirectUnauthorized {
		if missing := access.Missing(granted, req.Permissions); len(missing) > 0 {
			logger.Req(r).Infof("denied %q: missing permissions %v", r.URL.Path, missing)
		}
	}

	return decision
}

// granted fetches the session's permission set when req calls for one.
// Fetch failures resolve to an empty set so gates fail closed; a session
// that expired during the fetch is reported separately.
func (p *PlatformAuth) granted(ctx context.Context, w http.ResponseWriter, r *http.Request, req access.Requirement) (granted access.GrantedSet, expired bool) {
	si := sessioninfo.FromRequest(r)
	granted = access.GrantedSet{}
	if !si.Authenticated() || len(req.Permissions) == 0 || si.Role().Admin() {
		return granted, false
	}

	err := p.authedCall(ctx, w, si, func(ctx context.Context, accessToken string) error {
		perms, err := p.api.MyPermissions(ctx, accessToken)
		if err != nil {
			return errors.Wrap(err, "platform.API.MyPermissions()")
		}
		granted = perms

		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, sessiontypes.ErrSessionExpired):
		return access.GrantedSet{}, true
	default:
		logger.Req(r).Error(err)

		return access.GrantedSet{}, false
	}

	return granted, false
}

// webSnapshot views a request session as a settled store snapshot.
func webSnapshot(si *sessioninfo.SessionInfo) Snapshot {
	if si.Authenticated() {
		return Snapshot{State: StateAuthenticated, Identity: si.Identity}
	}

	return Snapshot{State: StateAnonymous}
}

// RestrictedOption configures how Restricted responds to a failed gate.
type RestrictedOption func(*restrictedGate)

type restrictedGate struct {
	hidden   bool
	fallback http.Handler
}

// WithRestrictedHidden hides the element entirely: denied requests get
// 204 with no body.
func WithRestrictedHidden() RestrictedOption {
	return func(g *restrictedGate) {
		g.hidden = true
	}
}

// WithRestrictedFallback serves h when the gate fails.
func WithRestrictedFallback(h http.Handler) RestrictedOption {
	return func(g *restrictedGate) {
		g.fallback = h
	}
}

// Restricted gates an in-page fragment. Anonymous users pass when the
// requirement is ungated, and a failed gate serves the fallback instead
// of redirecting, so restricted fragments degrade inside public screens.
func (p *PlatformAuth) Restricted(req access.Requirement, next http.Handler, options ...RestrictedOption) http.Handler {
	gate := &restrictedGate{}
	for _, opt := range options {
		opt(gate)
	}

	return p.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "PlatformAuth.Restricted()")
		defer span.End()

		si := sessioninfo.FromRequest(r)
		granted, expired := p.granted(ctx, w, r, req)
		snap := webSnapshot(si)
		if expired {
			snap = Snapshot{State: StateAnonymous}
		}

		if Permitted(snap, granted, req) {
			next.ServeHTTP(w, r)

			return nil
		}

		switch {
		case gate.hidden:
			w.WriteHeader(http.StatusNoContent)
		case gate.fallback != nil:
			gate.fallback.ServeHTTP(w, r)
		default:
			return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewForbiddenMessage("Access restricted"))
		}

		return nil
	})
}
