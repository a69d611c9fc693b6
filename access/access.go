// Package access defines the roles, permission codes, and access requirements
// used to gate dashboard views, along with the evaluation rules for them.
package access

import (
	"slices"
	"strings"

	"github.com/rxstock/session/util"
)

// Role is the single role the platform assigns to an identity.
type Role string

// Roles issued by the platform API.
const (
	RoleAdmin      Role = "ADMIN"
	RolePharmacist Role = "PHARMACIST"
	RoleCashier    Role = "CASHIER"
)

// Admin reports whether the role carries the admin permission bypass.
func (r Role) Admin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// Permission is an opaque code naming one grantable capability, e.g.
// "inventory.view" or "sales.refund". Codes are compared case-insensitively
// after normalization.
type Permission string

func (p Permission) String() string {
	return string(p)
}

// NormalizeCode canonicalizes a permission code received over the wire.
func NormalizeCode(code string) Permission {
	return Permission(strings.ToLower(strings.TrimSpace(code)))
}

// Definition is one entry in the platform's catalog of grantable permissions.
type Definition struct {
	Code        Permission `json:"code"`
	Description string     `json:"description"`
	Group       string     `json:"group"`
}

// GrantedSet is the set of permission codes held by an identity.
type GrantedSet map[Permission]struct{}

// NewGrantedSet builds a GrantedSet from wire codes, normalizing each code
// and collapsing duplicates. Blank codes are dropped.
func NewGrantedSet(codes ...string) GrantedSet {
	set := make(GrantedSet, len(codes))
	for _, code := range codes {
		p := NormalizeCode(code)
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}

	return set
}

// Has reports whether the permission is in the set.
func (g GrantedSet) Has(p Permission) bool {
	_, ok := g[p]

	return ok
}

// Slice returns the set as a sorted slice for stable responses and logs.
func (g GrantedSet) Slice() []Permission {
	list := make([]Permission, 0, len(g))
	for p := range g {
		list = append(list, p)
	}
	slices.Sort(list)

	return list
}

// MatchMode selects how a Requirement's permission list is satisfied.
type MatchMode int

const (
	// MatchAny is satisfied when at least one required permission is granted.
	MatchAny MatchMode = iota

	// MatchAll is satisfied only when every required permission is granted.
	MatchAll
)

func (m MatchMode) String() string {
	if m == MatchAll {
		return "all"
	}

	return "any"
}

// Requirement is the access gate attached to a protected view or fragment.
// The zero Requirement is public: it is satisfied by everyone.
type Requirement struct {
	// Authenticated requires a signed-in identity even when no role or
	// permission clause is present.
	Authenticated bool

	// Roles is a role allow-list. Empty admits any role. The allow-list is
	// membership only and is never bypassed by the admin role.
	Roles []Role

	// Match selects ANY or ALL semantics for Permissions.
	Match MatchMode

	// Permissions is the permission clause. Empty requires no permission.
	Permissions []Permission
}

// Public returns a Requirement satisfied by everyone.
func Public() Requirement {
	return Requirement{}
}

// SignedIn returns a Requirement satisfied by any authenticated identity.
func SignedIn() Requirement {
	return Requirement{Authenticated: true}
}

// RequireAny returns a Requirement satisfied when the identity holds at
// least one of perms.
func RequireAny(perms ...Permission) Requirement {
	return Requirement{Authenticated: true, Match: MatchAny, Permissions: perms}
}

// RequireAll returns a Requirement satisfied only when the identity holds
// every one of perms.
func RequireAll(perms ...Permission) Requirement {
	return Requirement{Authenticated: true, Match: MatchAll, Permissions: perms}
}

// WithRoles restricts the Requirement to the given role allow-list.
func (r Requirement) WithRoles(roles ...Role) Requirement {
	r.Authenticated = true
	r.Roles = roles

	return r
}

// Gated reports whether the Requirement restricts access at all.
func (r Requirement) Gated() bool {
	return r.Authenticated || len(r.Roles) > 0 || len(r.Permissions) > 0
}

// Evaluate decides whether the permission clause of req is satisfied by the
// granted set. An empty clause is vacuously satisfied. The admin role
// satisfies any clause without consulting the granted set. Role allow-lists
// are evaluated separately by RoleAllowed.
func Evaluate(role Role, granted GrantedSet, req Requirement) bool {
	if len(req.Permissions) == 0 {
		return true
	}
	if role.Admin() {
		return true
	}
	if req.Match == MatchAll {
		for _, p := range req.Permissions {
			if !granted.Has(p) {
				return false
			}
		}

		return true
	}
	for _, p := range req.Permissions {
		if granted.Has(p) {
			return true
		}
	}

	return false
}

// RoleAllowed decides whether role is a member of the allow-list. An empty
// allow-list admits every role. The admin role gets no special treatment.
func RoleAllowed(role Role, allow []Role) bool {
	if len(allow) == 0 {
		return true
	}

	return util.Contains(allow, role)
}

// Missing returns the required permissions not present in granted, for
// logging denied requests.
func Missing(granted GrantedSet, required []Permission) []Permission {
	return util.Exclude(required, granted.Slice())
}
