// Package session implements client-side session management for the
// pharmacy stock platform: a Store that tracks the signed-in identity and
// its token pair across sign-in, refresh, and sign-out; permission
// evaluation against the platform's grant catalog; route guarding with
// post-login redirect capture; and HTTP handlers that expose the same
// flows over cookie-backed requests.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/errors/v5"
	"github.com/rxstock/session/access"
	"github.com/rxstock/session/platform"
	"github.com/rxstock/session/sessionstorage"
	"github.com/rxstock/session/sessiontypes"
	"go.opentelemetry.io/otel"

	"github.com/cccteam/logger"
)

const name = "github.com/rxstock/session"

// State is the lifecycle phase of a Store.
type State int

const (
	// StateUnbootstrapped is the zero state: no restore attempt has run yet.
	StateUnbootstrapped State = iota

	// StateLoading is the transient state while Bootstrap restores a
	// persisted session.
	StateLoading

	// StateAuthenticated means the store holds an identity and token pair.
	StateAuthenticated

	// StateAnonymous means no session is held.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUnbootstrapped:
		return "unbootstrapped"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the store's observable state.
type Snapshot struct {
	State    State
	Identity *sessiontypes.Identity
}

// Authenticated reports whether the snapshot holds a signed-in identity.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Identity != nil
}

// Role returns the snapshot's role, or the empty Role when anonymous.
func (s Snapshot) Role() access.Role {
	if s.Identity == nil {
		return ""
	}

	return s.Identity.Role
}

// Store owns the client session: who is signed in, which tokens back the
// session, and which permissions the identity holds. All methods are safe
// for concurrent use.
type Store struct {
	api     platform.API
	storage sessionstorage.Store

	expirySkew time.Duration
	signInPath string
	homePath   string

	mu       sync.Mutex
	state    State
	identity *sessiontypes.Identity
	tokens   sessiontypes.TokenPair

	// gen counts commits. Operations capture it before slow work and
	// commit only if it is unchanged, so a sign-out that lands mid-flight
	// stays in force.
	gen uint64

	// refreshMu serializes token refresh so concurrent 401s trigger a
	// single round trip.
	refreshMu sync.Mutex

	// permissions cache, keyed by the access token that fetched it
	permsOwner string
	perms      access.GrantedSet

	notifyMu  sync.Mutex
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewStore returns a Store backed by the given platform client and session
// storage. The store starts unbootstrapped; call Bootstrap to restore any
// persisted session.
func NewStore(api platform.API, storage sessionstorage.Store, opts ...StoreOption) *Store {
	s := &Store{
		api:        api,
		storage:    storage,
		expirySkew: sessiontypes.ExpirySkew,
		signInPath: defaultSignInPath,
		homePath:   defaultHomePath,
		listeners:  make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot returns the current state and identity.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state}
	if s.identity != nil {
		identity := *s.identity
		snap.Identity = &identity
	}

	return snap
}

// Tokens returns a copy of the token pair backing the session. It is empty
// when no session is held.
func (s *Store) Tokens() sessiontypes.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokens
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gen
}

// Subscribe registers fn to run after every committed state change, with a
// snapshot of the new state. Notifications run synchronously in commit
// order on the committing goroutine, so fn must not call store methods
// that commit; spawn a goroutine for that. The returned func cancels the
// subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()

		delete(s.listeners, id)
	}
}

// commitLocked finishes a commit: it bumps the generation, snapshots the
// new state, and notifies subscribers. It enters holding s.mu and releases
// it; notifyMu is taken first so subscribers observe commits in commit
// order.
func (s *Store) commitLocked(mutate func()) {
	mutate()
	s.gen++
	snap := s.snapshotLocked()

	s.notifyMu.Lock()
	s.mu.Unlock()
	for _, fn := range s.listeners {
		fn(snap)
	}
	s.notifyMu.Unlock()
}

// commitWith runs persist and mutate as one step under the store lock,
// discarding both when gen no longer matches the current generation. A
// persist error aborts the commit; persist closures that must not abort
// log the error and return nil.
func (s *Store) commitWith(ctx context.Context, gen uint64, persist func(context.Context) error, mutate func()) (bool, error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()

		return false, nil
	}
	if persist != nil {
		if err := persist(ctx); err != nil {
			s.mu.Unlock()

			return false, err
		}
	}
	s.commitLocked(mutate)

	return true, nil
}

// forceCommitWith is commitWith without the generation check. Sign-out and
// expiry use it so they always win over in-flight operations.
func (s *Store) forceCommitWith(ctx context.Context, persist func(context.Context) error, mutate func()) {
	s.mu.Lock()
	if persist != nil {
		if err := persist(ctx); err != nil {
			logger.Ctx(ctx).Error(err)
		}
	}
	s.commitLocked(mutate)
}

// Bootstrap restores a persisted session, moving the store from
// unbootstrapped through loading to authenticated or anonymous. Restore
// failures are not errors: a missing, malformed, or token-less record
// settles the store anonymous so the caller can render a sign-in flow.
// Bootstrap returns an error only when called on an already-bootstrapped
// store.
func (s *Store) Bootstrap(ctx context.Context) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.Bootstrap()")
	defer span.End()

	s.mu.Lock()
	if s.state != StateUnbootstrapped {
		state := s.state
		s.mu.Unlock()

		return errors.Newf("store already bootstrapped (state %s)", state)
	}
	var gen uint64
	s.commitLocked(func() {
		s.state = StateLoading
		gen = s.gen + 1
	})

	record, err := s.storage.Load(ctx)
	switch {
	case err != nil:
		logger.Ctx(ctx).Error(errors.Wrap(err, "sessionstorage.Store.Load()"))

		return s.settleAnonymous(ctx, gen, true)
	case record == nil:
		return s.settleAnonymous(ctx, gen, false)
	case !record.Tokens.Valid():
		logger.Ctx(ctx).Info("persisted session has no usable tokens, discarding")

		return s.settleAnonymous(ctx, gen, true)
	}

	identity := record.Identity
	tokens := record.Tokens
	committed, err := s.commitWith(ctx, gen, nil, func() {
		s.state = StateAuthenticated
		s.identity = &identity
		s.tokens = tokens
	})
	if err != nil {
		return err
	}
	if !committed {
		logger.Ctx(ctx).Info("session restore superseded by a concurrent operation")
	}

	return nil
}

// settleAnonymous finishes a failed or empty restore. When clear is set the
// persisted record is dropped so the next bootstrap starts clean.
func (s *Store) settleAnonymous(ctx context.Context, gen uint64, clear bool) error {
	var persist func(context.Context) error
	if clear {
		persist = func(ctx context.Context) error {
			if err := s.storage.Clear(ctx); err != nil {
				logger.Ctx(ctx).Error(errors.Wrap(err, "sessionstorage.Store.Clear()"))
			}

			return nil
		}
	}

	committed, err := s.commitWith(ctx, gen, persist, func() {
		s.state = StateAnonymous
		s.identity = nil
		s.tokens = sessiontypes.TokenPair{}
	})
	if err != nil {
		return err
	}
	if !committed {
		logger.Ctx(ctx).Info("session restore superseded by a concurrent operation")
	}

	return nil
}

// SignIn exchanges credentials for a session and establishes it. On
// success the session is persisted and the store becomes authenticated.
// Authentication failures surface sessiontypes.ErrAuthenticationFailed.
func (s *Store) SignIn(ctx context.Context, creds sessiontypes.Credentials) (*sessiontypes.Identity, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.SignIn()")
	defer span.End()

	gen := s.generation()
	auth, err := s.api.SignIn(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "platform.API.SignIn()")
	}

	return s.establish(ctx, gen, auth)
}

// SignUp registers a new account and establishes the returned session.
func (s *Store) SignUp(ctx context.Context, reg sessiontypes.Registration) (*sessiontypes.Identity, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.SignUp()")
	defer span.End()

	gen := s.generation()
	auth, err := s.api.SignUp(ctx, reg)
	if err != nil {
		return nil, errors.Wrap(err, "platform.API.SignUp()")
	}

	return s.establish(ctx, gen, auth)
}

func (s *Store) establish(ctx context.Context, gen uint64, auth *sessiontypes.AuthSession) (*sessiontypes.Identity, error) {
	identity := auth.Identity
	tokens := auth.Tokens
	record := &sessionstorage.Record{
		Identity: identity,
		Tokens:   tokens,
		SavedAt:  time.Now(),
	}

	committed, err := s.commitWith(ctx, gen,
		func(ctx context.Context) error {
			if err := s.storage.Save(ctx, record); err != nil {
				return errors.Wrap(err, "sessionstorage.Store.Save()")
			}

			return nil
		},
		func() {
			s.state = StateAuthenticated
			s.identity = &identity
			s.tokens = tokens
			s.permsOwner = ""
			s.perms = nil
		},
	)
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, errors.New("sign-in superseded by a concurrent sign-out")
	}

	return &identity, nil
}

// Logout drops the session. The local session is cleared first and
// unconditionally; revoking the tokens with the platform is best effort,
// so Logout never fails.
func (s *Store) Logout(ctx context.Context) {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.Logout()")
	defer span.End()

	accessToken := s.Tokens().AccessToken

	s.forceCommitWith(ctx,
		func(ctx context.Context) error {
			if err := s.storage.Clear(ctx); err != nil {
				return errors.Wrap(err, "sessionstorage.Store.Clear()")
			}

			return nil
		},
		func() {
			s.state = StateAnonymous
			s.identity = nil
			s.tokens = sessiontypes.TokenPair{}
			s.permsOwner = ""
			s.perms = nil
		},
	)

	if accessToken == "" {
		return
	}
	if err := s.api.SignOut(ctx, accessToken); err != nil {
		logger.Ctx(ctx).Error(errors.Wrap(err, "platform.API.SignOut()"))
	}
}

// expire drops the session after an unrecoverable token failure. Unlike
// Logout it does not call the platform: the tokens are already dead.
func (s *Store) expire(ctx context.Context) {
	s.forceCommitWith(ctx,
		func(ctx context.Context) error {
			if err := s.storage.Clear(ctx); err != nil {
				return errors.Wrap(err, "sessionstorage.Store.Clear()")
			}

			return nil
		},
		func() {
			s.state = StateAnonymous
			s.identity = nil
			s.tokens = sessiontypes.TokenPair{}
			s.permsOwner = ""
			s.perms = nil
		},
	)
}

// RefreshTokens rotates the session's token pair. Concurrent callers share
// one platform round trip. An unrecoverable refresh failure expires the
// session and returns sessiontypes.ErrSessionExpired.
func (s *Store) RefreshTokens(ctx context.Context) (sessiontypes.TokenPair, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.RefreshTokens()")
	defer span.End()

	return s.refresh(ctx, s.Tokens())
}

// refresh rotates tokens after failed holds the pair that needs replacing.
// Callers that raced an earlier refresh get the already-rotated pair back
// without another round trip.
func (s *Store) refresh(ctx context.Context, failed sessiontypes.TokenPair) (sessiontypes.TokenPair, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	current := s.tokens
	gen := s.gen
	var identity sessiontypes.Identity
	held := s.identity != nil
	if held {
		identity = *s.identity
	}
	s.mu.Unlock()

	if !held {
		return sessiontypes.TokenPair{}, errors.Wrap(sessiontypes.ErrNotAuthenticated, "refresh without a session")
	}
	if current.AccessToken != failed.AccessToken {
		// An earlier caller already rotated the failed pair.
		return current, nil
	}
	if current.RefreshToken == "" {
		s.expire(ctx)

		return sessiontypes.TokenPair{}, errors.Wrap(sessiontypes.ErrSessionExpired, "session has no refresh token")
	}

	rotated, err := s.api.RefreshTokens(ctx, current.RefreshToken)
	if err != nil {
		logger.Ctx(ctx).Error(errors.Wrap(err, "platform.API.RefreshTokens()"))
		s.expire(ctx)

		return sessiontypes.TokenPair{}, errors.Wrap(sessiontypes.ErrSessionExpired, "token refresh failed")
	}
	if rotated.RefreshToken == "" {
		// The platform may omit the refresh token when it does not rotate it.
		rotated.RefreshToken = current.RefreshToken
	}

	record := &sessionstorage.Record{
		Identity: identity,
		Tokens:   rotated,
		SavedAt:  time.Now(),
	}
	committed, err := s.commitWith(ctx, gen,
		func(ctx context.Context) error {
			// The rotation already happened; a failed write must not lose it.
			if err := s.storage.Save(ctx, record); err != nil {
				logger.Ctx(ctx).Error(errors.Wrap(err, "sessionstorage.Store.Save()"))
			}

			return nil
		},
		func() {
			s.tokens = rotated
		},
	)
	if err != nil {
		return sessiontypes.TokenPair{}, err
	}
	if !committed {
		return sessiontypes.TokenPair{}, errors.Wrap(sessiontypes.ErrSessionExpired, "refresh superseded by a concurrent sign-out")
	}

	return rotated, nil
}

// do runs call with a live access token, refreshing proactively when the
// held pair is near expiry and retrying once after a stale-token response.
// A second stale-token response expires the session.
func (s *Store) do(ctx context.Context, call func(ctx context.Context, accessToken string) error) error {
	s.mu.Lock()
	tokens := s.tokens
	authenticated := s.state == StateAuthenticated
	s.mu.Unlock()

	if !authenticated || !tokens.Valid() {
		return errors.Wrap(sessiontypes.ErrNotAuthenticated, "no active session")
	}

	if tokens.Expired(s.expirySkew) {
		rotated, err := s.refresh(ctx, tokens)
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

	rotated, refreshErr := s.refresh(ctx, tokens)
	if refreshErr != nil {
		return refreshErr
	}
	if err := call(ctx, rotated.AccessToken); err != nil {
		if platform.IsUnauthorized(err) {
			s.expire(ctx)

			return errors.Wrap(sessiontypes.ErrSessionExpired, "platform rejected a freshly rotated token")
		}

		return err
	}

	return nil
}

// Permissions returns the signed-in identity's granted permission set,
// fetching it from the platform on first use and caching it for the life
// of the access token. On fetch failure it returns an empty set alongside
// the error so permission checks fail closed.
func (s *Store) Permissions(ctx context.Context) (access.GrantedSet, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.Permissions()")
	defer span.End()

	s.mu.Lock()
	if s.perms != nil && s.permsOwner == s.tokens.AccessToken {
		perms := s.perms
		s.mu.Unlock()

		return perms, nil
	}
	s.mu.Unlock()

	var fetched access.GrantedSet
	var owner string
	err := s.do(ctx, func(ctx context.Context, accessToken string) error {
		granted, err := s.api.MyPermissions(ctx, accessToken)
		if err != nil {
			return errors.Wrap(err, "platform.API.MyPermissions()")
		}
		fetched = granted
		owner = accessToken

		return nil
	})
	if err != nil {
		return access.GrantedSet{}, err
	}

	s.mu.Lock()
	if s.tokens.AccessToken == owner {
		s.perms = fetched
		s.permsOwner = owner
	}
	s.mu.Unlock()

	return fetched, nil
}

// InvalidatePermissions drops the cached permission set so the next
// Permissions call refetches it. Call it after an administrator changes
// the signed-in user's grants.
func (s *Store) InvalidatePermissions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permsOwner = ""
	s.perms = nil
}

// PermissionCatalog returns every permission the platform defines.
func (s *Store) PermissionCatalog(ctx context.Context) ([]access.Definition, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.PermissionCatalog()")
	defer span.End()

	var defs []access.Definition
	err := s.do(ctx, func(ctx context.Context, accessToken string) error {
		catalog, err := s.api.PermissionCatalog(ctx, accessToken)
		if err != nil {
			return errors.Wrap(err, "platform.API.PermissionCatalog()")
		}
		defs = catalog

		return nil
	})
	if err != nil {
		return nil, err
	}

	return defs, nil
}

// UserPermissions returns the granted permission set of another user, for
// administrative screens.
func (s *Store) UserPermissions(ctx context.Context, userID string) (access.GrantedSet, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Store.UserPermissions()")
	defer span.End()

	var granted access.GrantedSet
	err := s.do(ctx, func(ctx context.Context, accessToken string) error {
		perms, err := s.api.UserPermissions(ctx, accessToken, userID)
		if err != nil {
			return errors.Wrap(err, "platform.API.UserPermissions()")
		}
		granted = perms

		return nil
	})
	if err != nil {
		return nil, err
	}

	return granted, nil
}
