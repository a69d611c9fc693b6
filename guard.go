package session

import (
	"context"
	"strings"

	"github.com/go-playground/errors/v5"
	"github.com/rxstock/session/access"
	"go.opentelemetry.io/otel"

	"github.com/cccteam/logger"
)

const (
	defaultSignInPath = "/sign-in"
	defaultHomePath   = "/"
)

// Decision is the outcome of evaluating a route requirement against the
// current session.
type Decision int

const (
	// DecisionPending means the store has not settled yet; hold rendering.
	DecisionPending Decision = iota

	// DecisionRender means the session satisfies the requirement.
	DecisionRender

	// DecisionRedirectLogin means the route needs a signed-in user.
	DecisionRedirectLogin

	// DecisionRedirectUnauthorized means the user is signed in but lacks
	// the required role or permissions.
	DecisionRedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectUnauthorized:
		return "redirect-unauthorized"
	default:
		return "unknown"
	}
}

// Decide evaluates a route requirement against a session snapshot and the
// granted permission set. Anonymous users are always sent to sign in, even
// for requirements without a permission clause: routed screens assume a
// session, and public routes simply carry no requirement check at all.
func Decide(snap Snapshot, granted access.GrantedSet, req access.Requirement) Decision {
	switch snap.State {
	case StateUnbootstrapped, StateLoading:
		return DecisionPending
	default:
	}

	if !snap.Authenticated() {
		return DecisionRedirectLogin
	}
	if !access.RoleAllowed(snap.Role(), req.Roles) {
		return DecisionRedirectUnauthorized
	}
	if !access.Evaluate(snap.Role(), granted, req) {
		return DecisionRedirectUnauthorized
	}

	return DecisionRender
}

// Permitted reports whether an in-page element gated by req should render.
// Unlike Decide it lets anonymous users see ungated elements: it backs
// conditional rendering inside screens that are themselves public.
func Permitted(snap Snapshot, granted access.GrantedSet, req access.Requirement) bool {
	switch snap.State {
	case StateUnbootstrapped, StateLoading:
		return false
	default:
	}

	if !snap.Authenticated() {
		return !req.Gated()
	}
	if !access.RoleAllowed(snap.Role(), req.Roles) {
		return false
	}

	return access.Evaluate(snap.Role(), granted, req)
}

// capturablePath reports whether target is worth storing for a post-login
// redirect. The sign-in screen itself is not: bouncing back to it after
// sign-in would trap the user.
func capturablePath(target, signInPath string) bool {
	if target == "" {
		return false
	}
	pathOnly := target
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		pathOnly = target[:i]
	}

	return pathOnly != signInPath
}

// Guard evaluates one route requirement against the live store.
type Guard struct {
	store *Store
	req   access.Requirement
}

// Guard returns a guard for routes carrying the given requirement.
func (s *Store) Guard(req access.Requirement) *Guard {
	return &Guard{store: s, req: req}
}

// Decision evaluates the guard's requirement against the current session,
// fetching the permission set only when the requirement needs one. When
// the decision is a login redirect and target names a real screen, the
// target is stored so sign-in can return the user there.
func (g *Guard) Decision(ctx context.Context, target string) Decision {
	ctx, span := otel.Tracer(name).Start(ctx, "Guard.Decision()")
	defer span.End()

	snap := g.store.Snapshot()
	granted := g.granted(ctx, snap)

	decision := Decide(snap, granted, g.req)
	if decision == DecisionRedirectLogin && capturablePath(target, g.store.signInPath) {
		if err := g.store.storage.SetPendingPath(ctx, target); err != nil {
			logger.Ctx(ctx).Error(errors.Wrap(err, "sessionstorage.Store.SetPendingPath()"))
		}
	}
	if decision == DecisionRedirectUnauthorized {
		if missing := access.Missing(granted, g.req.Permissions); len(missing) > 0 {
			logger.Ctx(ctx).Infof("denied %q: missing permissions %v", target, missing)
		}
	}

	return decision
}

// granted fetches the permission set when the requirement has a permission
// clause the role cannot bypass. Fetch failures fall back to an empty set,
// so evaluation fails closed.
func (g *Guard) granted(ctx context.Context, snap Snapshot) access.GrantedSet {
	if !snap.Authenticated() || len(g.req.Permissions) == 0 || snap.Role().Admin() {
		return access.GrantedSet{}
	}

	granted, err := g.store.Permissions(ctx)
	if err != nil {
		logger.Ctx(ctx).Error(errors.Wrap(err, "session.Store.Permissions()"))

		return access.GrantedSet{}
	}

	return granted
}

// Watch calls fn with the guard's decision for target now and after every
// session change, until ctx is canceled. Rapid-fire changes coalesce: fn
// observes the latest decision, not necessarily every intermediate one.
func (g *Guard) Watch(ctx context.Context, target string, fn func(Decision)) {
	kick := make(chan struct{}, 1)
	cancel := g.store.Subscribe(func(Snapshot) {
		select {
		case kick <- struct{}{}:
		default:
		}
	})

	go func() {
		defer cancel()

		fn(g.Decision(ctx, target))
		for {
			select {
			case <-ctx.Done():
				return
			case <-kick:
				fn(g.Decision(ctx, target))
			}
		}
	}()
}

// PostLoginTarget resolves where to send the user after sign-in. An
// explicit target (from the sign-in request itself) wins and leaves any
// stored path for the flow that captured it; otherwise the stored
// path is consumed; otherwise the home path.
func (s *Store) PostLoginTarget(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}

	pending, err := s.storage.ConsumePendingPath(ctx)
	if err != nil {
		logger.Ctx(ctx).Error(errors.Wrap(err, "sessionstorage.Store.ConsumePendingPath()"))

		return s.homePath
	}
	if pending == "" {
		return s.homePath
	}

	return pending
}
