package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/session"
)

func user(role domain.Role) *domain.User {
	return &domain.User{ID: 1, Login: "someone", Role: role}
}

func TestAllowedMatrix(t *testing.T) {
	roles := []domain.Role{
		domain.RoleArtist,
		domain.RoleLabel,
		domain.RoleModerator,
		domain.RoleAdmin,
		domain.RolePlatform,
	}

	allowed := map[RouteGroup]map[domain.Role]bool{
		GroupArtist:    {domain.RoleArtist: true},
		GroupLabel:     {domain.RoleLabel: true},
		GroupModerator: {domain.RoleModerator: true, domain.RoleAdmin: true},
		GroupAdmin:     {domain.RoleAdmin: true},
		GroupUser:      {domain.RoleArtist: true, domain.RoleLabel: true},
		GroupAny: {
			domain.RoleArtist:    true,
			domain.RoleLabel:     true,
			domain.RoleModerator: true,
			domain.RoleAdmin:     true,
			domain.RolePlatform:  true,
		},
	}

	for group, want := range allowed {
		for _, role := range roles {
			got := Allowed(group, role)
			assert.Equal(t, want[role], got, "group %s role %s", group, role)
		}
	}
}

func TestAllowedAuthGroupIsPublic(t *testing.T) {
	assert.True(t, Allowed(GroupAuth, domain.RolePlatform))
	assert.True(t, Allowed(GroupAuth, ""))
}

func TestAllowedUnknownGroupAdmitsNobody(t *testing.T) {
	assert.False(t, Allowed(RouteGroup("billing"), domain.RoleAdmin))
}

func TestEvaluateUnknownSessionIsPending(t *testing.T) {
	d := Evaluate(session.StateUnknown, nil, GroupArtist, "/artist/releases")
	assert.Equal(t, Pending, d.Kind)
	assert.Empty(t, d.To)
}

func TestEvaluateAnonymousRedirectsToLogin(t *testing.T) {
	d := Evaluate(session.StateAnonymous, nil, GroupArtist, "/artist/releases")
	require.Equal(t, RedirectLogin, d.Kind)
	assert.Equal(t, RouteLogin, d.To)
	assert.Equal(t, "/artist/releases", d.Next)
}

func TestEvaluateWrongRoleRedirectsToUnauthorized(t *testing.T) {
	d := Evaluate(session.StateAuthenticated, user(domain.RoleLabel), GroupArtist, "/artist/releases")
	require.Equal(t, RedirectUnauthorized, d.Kind)
	assert.Equal(t, RouteUnauthorized, d.To)
	assert.Equal(t, "/artist/releases", d.Next)
}

func TestEvaluateAdmits(t *testing.T) {
	id := user(domain.RoleArtist)
	d := Evaluate(session.StateAuthenticated, id, GroupArtist, "/artist/releases")
	require.Equal(t, Admit, d.Kind)
	assert.Same(t, id, d.Identity)
}

func TestEvaluateAdminMayModerate(t *testing.T) {
	d := Evaluate(session.StateAuthenticated, user(domain.RoleAdmin), GroupModerator, "/moderation")
	assert.Equal(t, Admit, d.Kind)
}

func TestEvaluateAuthGroupAlwaysAdmits(t *testing.T) {
	for _, state := range []session.State{session.StateUnknown, session.StateAnonymous, session.StateAuthenticated} {
		d := Evaluate(state, nil, GroupAuth, RouteLogin)
		assert.Equal(t, Admit, d.Kind, state)
	}
}

func TestEvaluatePlatformOnAnyGroup(t *testing.T) {
	d := Evaluate(session.StateAuthenticated, user(domain.RolePlatform), GroupAny, "/")
	assert.Equal(t, Admit, d.Kind)
}

func TestEvaluateRedirectCarriesAttemptedPath(t *testing.T) {
	// A moderator wandering into the admin area sees what they attempted
	d := Evaluate(session.StateAuthenticated, user(domain.RoleModerator), GroupAdmin, "/admin/users")
	require.Equal(t, RedirectUnauthorized, d.Kind)
	assert.Equal(t, "/admin/users", d.Next)
}

func TestLanding(t *testing.T) {
	cases := map[domain.Role]string{
		domain.RoleArtist:    "/artist",
		domain.RoleLabel:     "/label",
		domain.RoleModerator: "/moderation",
		domain.RoleAdmin:     "/admin/users",
		domain.RolePlatform:  RouteUnauthorized,
	}
	for role, want := range cases {
		assert.Equal(t, want, Landing(role), role)
	}
}

func TestGroupForRoute(t *testing.T) {
	cases := map[string]RouteGroup{
		"/login":             GroupAuth,
		"/register":          GroupAuth,
		"/artist":            GroupArtist,
		"/artist/releases/4": GroupArtist,
		"/artistic":          GroupAny,
		"/label":             GroupLabel,
		"/label/roster":      GroupLabel,
		"/moderation":        GroupModerator,
		"/moderation/7":      GroupModerator,
		"/admin":             GroupAdmin,
		"/admin/users":       GroupAdmin,
		"/profile":           GroupUser,
		"/":                  GroupAny,
		"/unauthorized":      GroupAny,
	}
	for path, want := range cases {
		assert.Equal(t, want, GroupForRoute(path), path)
	}
}
