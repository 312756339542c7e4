package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/guard"
	"github.com/romboooo/distr-is/internal/service"
	"github.com/romboooo/distr-is/internal/session"
)

// Services bundles everything the TUI talks to
type Services struct {
	Session    *session.Manager
	Users      *service.UserService
	Artists    *service.ArtistService
	Labels     *service.LabelService
	Releases   *service.ReleaseService
	Moderation *service.ModerationService
	Search     *service.SearchService
}

// Model is the root bubbletea model. It owns the route, runs guards on
// every navigation, and delegates everything else to the active view.
type Model struct {
	svc      Services
	keys     KeyMap
	pageSize int

	width  int
	height int

	route        string
	pendingRoute string // Navigation suspended on an unresolved session
	next         string // Post-login return target
	attempted    string // Path shown on the unauthorized view

	spinnerFrame int
	loading      bool
	status       string
	errText      string

	login  loginModel
	artist artistModel
	label  labelModel
	mod    moderationModel
	admin  adminModel
}

// NewModel creates the root model
func NewModel(svc Services, pageSize int) Model {
	if pageSize <= 0 {
		pageSize = 10
	}
	return Model{
		svc:      svc,
		keys:     DefaultKeyMap(),
		pageSize: pageSize,
		login:    newLoginModel(),
	}
}

// Init resolves the session before rendering anything role-specific
func (m Model) Init() tea.Cmd {
	m.pendingRoute = ""
	return tea.Batch(ResolveSessionCmd(m.svc.Session), SpinnerTickCmd())
}

// Update routes messages to the session machinery and the active view
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SpinnerTickMsg:
		if m.loading || m.route == "" {
			m.spinnerFrame++
			return m, SpinnerTickCmd()
		}
		return m, nil

	case SessionResolvedMsg:
		m.loading = false
		return m, m.onSessionResolved(msg)

	case LoggedInMsg:
		m.errText = ""
		m.status = "signed in as " + msg.User.Login
		return m, m.landing()

	case LoginFailedMsg:
		m.login.submitting = false
		m.login.errText = loginErrorText(msg.Err)
		return m, nil

	case LoggedOutMsg:
		m.status = "signed out"
		m.next = ""
		return m, m.navigate(guard.RouteLogin)

	case NavigateMsg:
		return m, m.navigate(msg.Route)

	case StatusMsg:
		m.status = msg.Text
		return m, nil

	case ErrMsg:
		m.loading = false
		m.errText = msg.Error()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateRoute(msg)
}

// handleGlobalKey handles bindings that work on every view
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Text inputs swallow everything except quit
	if m.capturingInput() {
		if msg.Type == tea.KeyCtrlC {
			return tea.Quit, true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.Logout):
		if m.svc.Session.State() == session.StateAuthenticated {
			return LogoutCmd(m.svc.Session, m.svc.Search), true
		}
	}
	return nil, false
}

// capturingInput reports whether the active view owns the keyboard
func (m *Model) capturingInput() bool {
	switch m.route {
	case guard.RouteLogin:
		return true
	}
	switch guard.GroupForRoute(m.route) {
	case guard.GroupArtist:
		return m.artist.capturingInput()
	case guard.GroupModerator:
		return m.mod.capturingInput()
	case guard.GroupAdmin:
		return m.admin.capturingInput()
	}
	return false
}

// updateRoute delegates to the active view's update function
func (m Model) updateRoute(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case m.route == guard.RouteLogin:
		return m.updateLogin(msg)
	case m.route == guard.RouteUnauthorized:
		return m.updateUnauthorized(msg)
	}

	switch guard.GroupForRoute(m.route) {
	case guard.GroupArtist:
		return m.updateArtist(msg)
	case guard.GroupLabel:
		return m.updateLabel(msg)
	case guard.GroupModerator:
		return m.updateModeration(msg)
	case guard.GroupAdmin:
		return m.updateAdmin(msg)
	}
	return m, nil
}

// View renders the active view plus the shared status bar
func (m Model) View() string {
	var body string
	switch {
	case m.route == "":
		body = m.resolvingView()
	case m.route == guard.RouteLogin:
		body = m.loginView()
	case m.route == guard.RouteUnauthorized:
		body = m.unauthorizedView()
	default:
		switch guard.GroupForRoute(m.route) {
		case guard.GroupArtist:
			body = m.artistView()
		case guard.GroupLabel:
			body = m.labelView()
		case guard.GroupModerator:
			body = m.moderationView()
		case guard.GroupAdmin:
			body = m.adminView()
		default:
			body = m.unauthorizedView()
		}
	}
	return body + "\n" + m.statusBar()
}
