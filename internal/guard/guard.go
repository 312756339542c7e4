// Package guard gates navigation to protected views. Decisions are pure
// functions of (session state, target route group): callers re-run them on
// every navigation and on every session change, and perform the actual
// redirect themselves.
package guard

import (
	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/session"
)

// RouteGroup names a set of routes sharing one role allowlist
type RouteGroup string

const (
	// GroupAuth covers login/register; public
	GroupAuth RouteGroup = "auth"

	// GroupArtist covers /artist/**
	GroupArtist RouteGroup = "artist"

	// GroupLabel covers /label/**
	GroupLabel RouteGroup = "label"

	// GroupModerator covers /moderation/**; admins may moderate too
	GroupModerator RouteGroup = "moderator"

	// GroupAdmin covers /admin/**
	GroupAdmin RouteGroup = "admin"

	// GroupUser covers pages shared by artist and label accounts (profile)
	GroupUser RouteGroup = "user"

	// GroupAny covers pages open to every authenticated role
	GroupAny RouteGroup = "any"
)

// allowlists is static and known at build time; there is no dynamic
// permission fetch.
var allowlists = map[RouteGroup][]domain.Role{
	GroupArtist:    {domain.RoleArtist},
	GroupLabel:     {domain.RoleLabel},
	GroupModerator: {domain.RoleModerator, domain.RoleAdmin},
	GroupAdmin:     {domain.RoleAdmin},
	GroupUser:      {domain.RoleArtist, domain.RoleLabel},
	GroupAny:       {domain.RoleArtist, domain.RoleLabel, domain.RoleModerator, domain.RoleAdmin, domain.RolePlatform},
}

// Well-known routes
const (
	RouteLogin        = "/login"
	RouteUnauthorized = "/unauthorized"
)

// DecisionKind tags the outcome of a guard evaluation
type DecisionKind int

const (
	// Pending: session state is Unknown; render a loading placeholder and
	// re-evaluate once it resolves. Never guess.
	Pending DecisionKind = iota

	// Admit: render the protected view with the resolved identity
	Admit

	// RedirectLogin: no session; go to the login route, carrying the
	// originally requested path so login can return there
	RedirectLogin

	// RedirectUnauthorized: authenticated but the role is not in the
	// group's allowlist; go to the unauthorized route, carrying the
	// attempted path for display
	RedirectUnauthorized
)

// Decision is the outcome of evaluating a guard. A redirect decision is
// terminal for the navigation attempt: the guarded view never renders.
type Decision struct {
	Kind     DecisionKind
	Identity *domain.User // Set when Kind == Admit
	To       string       // Redirect target (login or unauthorized route)
	Next     string       // Originally requested path, for post-login return
}

// Allowed reports whether a role is in the group's allowlist.
// Unknown groups admit nobody.
func Allowed(group RouteGroup, role domain.Role) bool {
	if group == GroupAuth {
		return true
	}
	for _, r := range allowlists[group] {
		if r == role {
			return true
		}
	}
	return false
}

// Evaluate decides whether a navigation to `attempted` (a route in `group`)
// may proceed. Rules apply in order: unresolved session suspends, anonymous
// redirects to login, wrong role redirects to unauthorized, otherwise admit.
func Evaluate(state session.State, identity *domain.User, group RouteGroup, attempted string) Decision {
	if group == GroupAuth {
		return Decision{Kind: Admit, Identity: identity}
	}

	switch state {
	case session.StateUnknown:
		return Decision{Kind: Pending}
	case session.StateAnonymous:
		return Decision{Kind: RedirectLogin, To: RouteLogin, Next: attempted}
	}

	if identity == nil || !Allowed(group, identity.Role) {
		return Decision{Kind: RedirectUnauthorized, To: RouteUnauthorized, Next: attempted}
	}

	return Decision{Kind: Admit, Identity: identity}
}

// Landing returns the role-specific route to land on after login or when
// visiting the root path while authenticated. Platform accounts have no
// dashboard in this client and land on the unauthorized page.
func Landing(role domain.Role) string {
	switch role {
	case domain.RoleArtist:
		return "/artist"
	case domain.RoleLabel:
		return "/label"
	case domain.RoleModerator:
		return "/moderation"
	case domain.RoleAdmin:
		return "/admin/users"
	default:
		return RouteUnauthorized
	}
}

// GroupForRoute resolves the route group owning a path. Paths outside every
// protected prefix fall into GroupAny.
func GroupForRoute(path string) RouteGroup {
	switch {
	case path == RouteLogin || path == "/register":
		return GroupAuth
	case hasPrefix(path, "/artist"):
		return GroupArtist
	case hasPrefix(path, "/label"):
		return GroupLabel
	case hasPrefix(path, "/moderation"):
		return GroupModerator
	case hasPrefix(path, "/admin"):
		return GroupAdmin
	case hasPrefix(path, "/profile"):
		return GroupUser
	default:
		return GroupAny
	}
}

// hasPrefix matches whole path segments: /artist and /artist/releases,
// not /artistic.
func hasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '/'
}
