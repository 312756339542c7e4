package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/tui/styles"
)

// roleFilters cycles through the admin listing filters, "" meaning all accounts
var roleFilters = []domain.Role{
	"",
	domain.RoleArtist,
	domain.RoleLabel,
	domain.RoleModerator,
	domain.RoleAdmin,
	domain.RolePlatform,
}

// adminModel is the account management screen
type adminModel struct {
	page       domain.PageRequest
	roleFilter domain.Role
	users      *domain.Page[domain.User]
	cursor     int

	confirmDelete *domain.User
}

func newAdminModel(pageSize int) adminModel {
	return adminModel{
		page: domain.PageRequest{Number: 0, Size: pageSize},
	}
}

func (ad *adminModel) capturingInput() bool {
	return ad.confirmDelete != nil
}

func (m Model) updateAdmin(msg tea.Msg) (tea.Model, tea.Cmd) {
	ad := &m.admin

	switch msg := msg.(type) {
	case UsersLoadedMsg:
		m.loading = false
		ad.users = msg.Page
		if ad.cursor >= len(msg.Page.Content) {
			ad.cursor = 0
		}
		return m, nil

	case UserDeletedMsg:
		ad.confirmDelete = nil
		m.status = fmt.Sprintf("account %d removed", msg.UserID)
		m.loading = true
		return m, tea.Batch(
			LoadUsersCmd(m.svc.Users, ad.page, ad.roleFilter),
			SpinnerTickCmd(),
		)

	case tea.KeyMsg:
		return m.handleAdminKey(msg)
	}
	return m, nil
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ad := &m.admin

	if ad.confirmDelete != nil {
		switch {
		case msg.Type == tea.KeyEnter:
			id := ad.confirmDelete.ID
			return m, DeleteUserCmd(m.svc.Users, id)
		case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Back):
			ad.confirmDelete = nil
		}
		return m, nil
	}

	reload := func() (tea.Model, tea.Cmd) {
		m.loading = true
		return m, tea.Batch(LoadUsersCmd(m.svc.Users, ad.page, ad.roleFilter), SpinnerTickCmd())
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if ad.cursor > 0 {
			ad.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if ad.users != nil && ad.cursor+1 < len(ad.users.Content) {
			ad.cursor++
		}
	case key.Matches(msg, m.keys.Tab):
		for i, r := range roleFilters {
			if r == ad.roleFilter {
				ad.roleFilter = roleFilters[(i+1)%len(roleFilters)]
				break
			}
		}
		ad.page.Number = 0
		ad.cursor = 0
		return reload()
	case key.Matches(msg, m.keys.Delete):
		if ad.users != nil && ad.cursor < len(ad.users.Content) {
			u := ad.users.Content[ad.cursor]
			ad.confirmDelete = &u
		}
	case key.Matches(msg, m.keys.Refresh):
		return reload()
	case key.Matches(msg, m.keys.NextPage):
		if ad.users != nil && ad.users.HasNext() {
			ad.page.Number++
			return reload()
		}
	case key.Matches(msg, m.keys.PrevPage):
		if ad.page.Number > 0 {
			ad.page.Number--
			return reload()
		}
	}
	return m, nil
}

func (m Model) adminView() string {
	ad := m.admin

	if ad.confirmDelete != nil {
		var b strings.Builder
		b.WriteString(styles.TitleStyle.Render("delete account") + "\n\n")
		b.WriteString(fmt.Sprintf("%s (%s, id %d)\n\n",
			styles.AccentStyle.Render(ad.confirmDelete.Login),
			ad.confirmDelete.Role,
			ad.confirmDelete.ID))
		b.WriteString(styles.ErrorStyle.Render("this cannot be undone") + "\n\n")
		b.WriteString(styles.DimStyle.Render("enter to delete · esc to cancel"))
		return styles.FormStyle.Render(b.String())
	}

	var b strings.Builder
	title := "accounts"
	if ad.roleFilter != "" {
		title = fmt.Sprintf("accounts · %s", ad.roleFilter)
	}
	b.WriteString(styles.TitleStyle.Render(title) + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner() + " loading...\n")
	case ad.users == nil || len(ad.users.Content) == 0:
		b.WriteString(styles.DimStyle.Render("no accounts match") + "\n")
	default:
		for i, u := range ad.users.Content {
			line := fmt.Sprintf("%-6d %-24s %-10s %s",
				u.ID, truncate(u.Login, 24), u.Role, u.RegistrationDate.Format("2006-01-02"))
			if i == ad.cursor {
				b.WriteString(styles.SelectedItemStyle.Render(line) + "\n")
			} else {
				b.WriteString(styles.NormalItemStyle.Render(line) + "\n")
			}
		}
	}

	if footer := pageFooter(ad.users); footer != "" {
		b.WriteString("\n" + footer)
	}
	b.WriteString("\n" + styles.DimStyle.Render("tab: filter role · d: delete · r: refresh"))
	return styles.PanelStyle.Render(b.String())
}
