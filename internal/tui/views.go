package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/session"
	"github.com/romboooo/distr-is/internal/tui/styles"
)

func (m Model) spinner() string {
	return styles.SpinnerFrames[m.spinnerFrame%len(styles.SpinnerFrames)]
}

// resolvingView renders while the startup identity fetch is in flight
func (m Model) resolvingView() string {
	return styles.PanelStyle.Render(m.spinner() + " resolving session...")
}

// unauthorizedView tells the user which path was denied and where to go
func (m Model) unauthorizedView() string {
	body := styles.ErrorStyle.Render("access denied") + "\n\n"
	if m.attempted != "" {
		body += styles.SubtitleStyle.Render(fmt.Sprintf("your account cannot open %s", m.attempted)) + "\n"
	}
	if identity := m.svc.Session.Identity(); identity != nil {
		body += styles.DimStyle.Render(fmt.Sprintf("signed in as %s (%s)", identity.Login, identity.Role)) + "\n"
	}
	body += "\n" + styles.DimStyle.Render("enter: your dashboard · L: logout · q: quit")
	return styles.PanelStyle.Render(body)
}

func (m Model) updateUnauthorized(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Matches(keyMsg, m.keys.Enter) {
		m.attempted = ""
		return m, m.landing()
	}
	return m, nil
}

// statusBar renders the shared bottom line
func (m Model) statusBar() string {
	left := "anonymous"
	switch m.svc.Session.State() {
	case session.StateUnknown:
		left = "resolving..."
	case session.StateAuthenticated:
		if identity := m.svc.Session.Identity(); identity != nil {
			left = fmt.Sprintf("%s · %s", identity.Login, identity.Role)
		}
	}

	text := left
	if m.errText != "" {
		text += "  " + styles.ErrorStyle.Render(m.errText)
	} else if m.status != "" {
		text += "  " + styles.DimStyle.Render(m.status)
	}
	return styles.StatusBarStyle.Render(text)
}

// pageFooter renders "page 2/4 · 37 items" for paginated lists
func pageFooter[T any](page *domain.Page[T]) string {
	if page == nil || page.TotalPages <= 1 {
		return ""
	}
	return styles.DimStyle.Render(fmt.Sprintf(
		"page %d/%d · %d items · [/] to page",
		page.CurrentPage+1, page.TotalPages, page.TotalElements,
	))
}
