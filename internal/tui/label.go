package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/tui/styles"
)

// labelModel is the label dashboard: the artist roster, with the selected
// artist's releases expanded in place.
type labelModel struct {
	profile   *domain.Label
	noProfile bool

	roster []domain.Artist
	cursor int

	expanded *domain.Artist
	releases *domain.Page[domain.Release]
	relPage  domain.PageRequest
}

func newLabelModel() labelModel {
	return labelModel{}
}

func (m Model) updateLabel(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := &m.label

	switch msg := msg.(type) {
	case ProfileLoadedMsg:
		switch p := msg.Profile.(type) {
		case domain.LabelProfile:
			l.profile = &p.Label
			m.loading = true
			return m, tea.Batch(
				LoadRosterCmd(m.svc.Artists, m.svc.Search, p.Label.ID),
				SpinnerTickCmd(),
			)
		default:
			l.noProfile = true
			m.loading = false
		}
		return m, nil

	case RosterLoadedMsg:
		m.loading = false
		l.roster = msg.Artists
		if l.cursor >= len(l.roster) {
			l.cursor = 0
		}
		return m, nil

	case ReleasesLoadedMsg:
		m.loading = false
		if l.expanded != nil && l.expanded.ID == msg.ArtistID {
			l.releases = msg.Page
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleLabelKey(msg)
	}
	return m, nil
}

func (m Model) handleLabelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := &m.label

	if l.expanded != nil {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
			l.expanded = nil
			l.releases = nil
			return m, nil
		case key.Matches(msg, m.keys.NextPage):
			if l.releases != nil && l.releases.HasNext() {
				l.relPage.Number++
				m.loading = true
				return m, tea.Batch(
					LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, l.expanded.ID, l.relPage),
					SpinnerTickCmd(),
				)
			}
		case key.Matches(msg, m.keys.PrevPage):
			if l.relPage.Number > 0 {
				l.relPage.Number--
				m.loading = true
				return m, tea.Batch(
					LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, l.expanded.ID, l.relPage),
					SpinnerTickCmd(),
				)
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if l.cursor+1 < len(l.roster) {
			l.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if l.cursor < len(l.roster) {
			l.expanded = &l.roster[l.cursor]
			l.relPage = domain.PageRequest{Number: 0, Size: m.pageSize}
			m.loading = true
			return m, tea.Batch(
				LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, l.expanded.ID, l.relPage),
				SpinnerTickCmd(),
			)
		}
	case key.Matches(msg, m.keys.Refresh):
		if l.profile != nil {
			m.loading = true
			return m, tea.Batch(
				LoadRosterCmd(m.svc.Artists, m.svc.Search, l.profile.ID),
				SpinnerTickCmd(),
			)
		}
	}
	return m, nil
}

func (m Model) labelView() string {
	l := m.label

	if l.noProfile {
		return styles.PanelStyle.Render(
			styles.TitleStyle.Render("no label profile yet") + "\n\n" +
				styles.SubtitleStyle.Render("ask an admin to create one for this account"))
	}
	if l.profile == nil {
		return styles.PanelStyle.Render(m.spinner() + " loading profile...")
	}
	if l.expanded != nil {
		return m.rosterReleasesView()
	}
	return m.rosterView()
}

func (m Model) rosterView() string {
	l := m.label
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(l.profile.ContactName) + " " +
		styles.DimStyle.Render("roster") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner() + " loading...\n")
	case len(l.roster) == 0:
		b.WriteString(styles.DimStyle.Render("no signed artists") + "\n")
	default:
		for i, artist := range l.roster {
			line := fmt.Sprintf("%-28s %s", truncate(artist.Name, 28), styles.DimStyle.Render(artist.Country))
			if i == l.cursor {
				b.WriteString(styles.SelectedItemStyle.Render(line) + "\n")
			} else {
				b.WriteString(styles.NormalItemStyle.Render(line) + "\n")
			}
		}
	}

	b.WriteString("\n" + styles.DimStyle.Render("enter: releases · r: refresh"))
	return styles.PanelStyle.Render(b.String())
}

func (m Model) rosterReleasesView() string {
	l := m.label
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(l.expanded.Name) + " " +
		styles.DimStyle.Render("releases") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner() + " loading...\n")
	case l.releases == nil || len(l.releases.Content) == 0:
		b.WriteString(styles.DimStyle.Render("no releases") + "\n")
	default:
		for _, r := range l.releases.Content {
			b.WriteString(fmt.Sprintf("  %-32s %-12s %s\n", truncate(r.Name, 32), r.Type, styles.ModerationBadge(string(r.ModerationState))))
		}
	}

	if footer := pageFooter(l.releases); footer != "" {
		b.WriteString("\n" + footer)
	}
	b.WriteString("\n" + styles.DimStyle.Render("h: back to roster"))
	return styles.PanelStyle.Render(b.String())
}
