package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/tui/styles"
)

// loginModel is the credential form shown to anonymous sessions
type loginModel struct {
	login      textinput.Model
	password   textinput.Model
	focused    int // 0 = login, 1 = password
	submitting bool
	errText    string
}

func newLoginModel() loginModel {
	login := textinput.New()
	login.Placeholder = "login"
	login.CharLimit = 64
	login.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{login: login, password: password}
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid login or password"
	case errors.Is(err, domain.ErrServerOffline):
		return "server unreachable, try again"
	default:
		return err.Error()
	}
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.login.submitting {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyDown, tea.KeyUp:
		m.login.focused = (m.login.focused + 1) % 2
		if m.login.focused == 0 {
			m.login.login.Focus()
			m.login.password.Blur()
		} else {
			m.login.password.Focus()
			m.login.login.Blur()
		}
		return m, nil

	case tea.KeyEnter:
		if m.login.focused == 0 {
			m.login.focused = 1
			m.login.login.Blur()
			m.login.password.Focus()
			return m, nil
		}
		login := m.login.login.Value()
		password := m.login.password.Value()
		if login == "" || password == "" {
			m.login.errText = "login and password are required"
			return m, nil
		}
		m.login.submitting = true
		m.login.errText = ""
		return m, LoginCmd(m.svc.Session, login, password)
	}

	var cmd tea.Cmd
	if m.login.focused == 0 {
		m.login.login, cmd = m.login.login.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func (m Model) loginView() string {
	form := styles.TitleStyle.Render("distr") + "\n"
	form += styles.SubtitleStyle.Render("music distribution, in your terminal") + "\n\n"
	form += m.login.login.View() + "\n"
	form += m.login.password.View() + "\n"

	switch {
	case m.login.submitting:
		form += "\n" + styles.DimStyle.Render(m.spinner()+" signing in...")
	case m.login.errText != "":
		form += "\n" + styles.ErrorStyle.Render(m.login.errText)
	default:
		form += "\n" + styles.DimStyle.Render("enter to sign in")
	}

	if m.next != "" {
		form += "\n" + styles.DimStyle.Render(fmt.Sprintf("you will be returned to %s", m.next))
	}

	return styles.FormStyle.Render(form)
}
