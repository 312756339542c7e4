package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/guard"
	"github.com/romboooo/distr-is/internal/session"
)

// navigate runs the guard for the requested route and either switches the
// active view or redirects. Guards re-run on every navigation and on every
// session change; a redirect is terminal for the attempt, so the target
// view's load never fires.
func (m *Model) navigate(route string) tea.Cmd {
	state := m.svc.Session.State()
	identity := m.svc.Session.Identity()
	decision := guard.Evaluate(state, identity, guard.GroupForRoute(route), route)

	switch decision.Kind {
	case guard.Pending:
		// Session not resolved yet: suspend the navigation, never guess.
		// SessionResolvedMsg replays it.
		m.pendingRoute = route
		return ResolveSessionCmd(m.svc.Session)

	case guard.RedirectLogin:
		m.next = decision.Next
		m.route = guard.RouteLogin
		m.login = newLoginModel()
		return nil

	case guard.RedirectUnauthorized:
		m.attempted = decision.Next
		m.route = guard.RouteUnauthorized
		return nil
	}

	m.route = route
	return m.enterRoute(route)
}

// enterRoute fires the initial load for an admitted route
func (m *Model) enterRoute(route string) tea.Cmd {
	identity := m.svc.Session.Identity()
	m.loading = true

	switch guard.GroupForRoute(route) {
	case guard.GroupArtist:
		m.artist = newArtistModel(m.pageSize)
		return tea.Batch(
			LoadProfileCmd(m.svc.Artists, m.svc.Labels, identity),
			SpinnerTickCmd(),
		)
	case guard.GroupLabel:
		m.label = newLabelModel()
		return tea.Batch(
			LoadProfileCmd(m.svc.Artists, m.svc.Labels, identity),
			SpinnerTickCmd(),
		)
	case guard.GroupModerator:
		m.mod = newModerationModel(m.pageSize)
		return tea.Batch(
			LoadPendingCmd(m.svc.Moderation, m.mod.page),
			ResolveModeratorCmd(m.svc.Moderation, identity.ID),
			SpinnerTickCmd(),
		)
	case guard.GroupAdmin:
		m.admin = newAdminModel(m.pageSize)
		return tea.Batch(
			LoadUsersCmd(m.svc.Users, m.admin.page, m.admin.roleFilter),
			SpinnerTickCmd(),
		)
	}
	m.loading = false
	return nil
}

// landing routes a freshly authenticated session to its role's home view,
// or back to the originally requested path when one was attempted.
func (m *Model) landing() tea.Cmd {
	identity := m.svc.Session.Identity()
	if identity == nil {
		return m.navigate(guard.RouteLogin)
	}

	target := guard.Landing(identity.Role)
	if m.next != "" {
		target = m.next
		m.next = ""
	}
	return m.navigate(target)
}

// onSessionResolved replays a navigation that was suspended on Unknown
func (m *Model) onSessionResolved(msg SessionResolvedMsg) tea.Cmd {
	if route := m.pendingRoute; route != "" {
		m.pendingRoute = ""
		return m.navigate(route)
	}
	if msg.State == session.StateAuthenticated {
		return m.landing()
	}
	return m.navigate(guard.RouteLogin)
}
