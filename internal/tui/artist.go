package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/service"
	"github.com/romboooo/distr-is/internal/tui/styles"
)

// artistModel is the artist dashboard: release catalog, detail view with
// tracklist and royalties, and the draft creation form.
type artistModel struct {
	profile   *domain.Artist
	noProfile bool

	page     domain.PageRequest
	releases *domain.Page[domain.Release]
	cursor   int
	visible  []int // Indexes into releases.Content after filtering

	filtering bool
	filter    textinput.Model

	detail    *domain.Release
	songs     []domain.Song
	royalties *domain.Page[domain.Royalty]
	showRoy   bool
	history   []domain.ModerationRecord
	showHist  bool

	draft *draftForm
}

func newArtistModel(pageSize int) artistModel {
	filter := textinput.New()
	filter.Placeholder = "filter releases"
	filter.CharLimit = 64
	return artistModel{
		page:   domain.PageRequest{Number: 0, Size: pageSize},
		filter: filter,
	}
}

func (a *artistModel) capturingInput() bool {
	return a.filtering || a.draft != nil
}

// applyFilter recomputes the visible indexes from the filter query
func (a *artistModel) applyFilter() {
	if a.releases == nil {
		a.visible = nil
		return
	}
	titles := make([]string, len(a.releases.Content))
	for i, r := range a.releases.Content {
		titles[i] = r.Name
	}
	a.visible = service.FilterTitles(a.filter.Value(), titles)
	if a.cursor >= len(a.visible) {
		a.cursor = 0
	}
}

func (a *artistModel) selected() *domain.Release {
	if a.releases == nil || a.cursor >= len(a.visible) {
		return nil
	}
	return &a.releases.Content[a.visible[a.cursor]]
}

// draftForm collects the fields of a new release draft
type draftForm struct {
	name    textinput.Model
	genre   textinput.Model
	date    textinput.Model
	typeIdx int
	focused int // 0 name, 1 genre, 2 date, 3 type
	errText string
}

var releaseTypes = []domain.ReleaseType{
	domain.ReleaseSingle,
	domain.ReleaseMaxiSingle,
	domain.ReleaseEP,
	domain.ReleaseAlbum,
	domain.ReleaseMixtape,
}

func newDraftForm() *draftForm {
	name := textinput.New()
	name.Placeholder = "release name"
	name.CharLimit = 128
	name.Focus()

	genre := textinput.New()
	genre.Placeholder = "genre"
	genre.CharLimit = 64

	date := textinput.New()
	date.Placeholder = "release date (YYYY-MM-DD)"
	date.CharLimit = 10

	return &draftForm{name: name, genre: genre, date: date}
}

func (f *draftForm) focusField(i int) {
	f.focused = i
	for idx, input := range []*textinput.Model{&f.name, &f.genre, &f.date} {
		if idx == i {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (m Model) updateArtist(msg tea.Msg) (tea.Model, tea.Cmd) {
	a := &m.artist

	switch msg := msg.(type) {
	case ProfileLoadedMsg:
		switch p := msg.Profile.(type) {
		case domain.ArtistProfile:
			a.profile = &p.Artist
			m.loading = true
			return m, tea.Batch(
				LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, p.Artist.ID, a.page),
				SpinnerTickCmd(),
			)
		default:
			a.noProfile = true
			m.loading = false
		}
		return m, nil

	case ReleasesLoadedMsg:
		m.loading = false
		a.releases = msg.Page
		a.applyFilter()
		return m, nil

	case ReleaseLoadedMsg:
		a.detail = msg.Release
		return m, nil

	case SongsLoadedMsg:
		if a.detail != nil && a.detail.ID == msg.ReleaseID {
			a.songs = msg.Songs
		}
		return m, nil

	case RoyaltiesLoadedMsg:
		if a.detail != nil && a.detail.ID == msg.ReleaseID {
			a.royalties = msg.Page
			a.showRoy = true
		}
		return m, nil

	case HistoryLoadedMsg:
		if a.detail != nil && a.detail.ID == msg.ReleaseID {
			a.history = msg.Records
			a.showHist = true
		}
		return m, nil

	case ReleaseCreatedMsg:
		a.draft = nil
		a.detail = msg.Release
		a.songs = nil
		m.status = fmt.Sprintf("draft %q created", msg.Release.Name)
		m.loading = true
		return m, tea.Batch(
			LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, a.profile.ID, a.page),
			SpinnerTickCmd(),
		)

	case ReleaseSubmittedMsg:
		a.detail = msg.Release
		m.status = fmt.Sprintf("%q sent to moderation", msg.Release.Name)
		m.loading = true
		return m, tea.Batch(
			LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, a.profile.ID, a.page),
			SpinnerTickCmd(),
		)

	case tea.KeyMsg:
		return m.handleArtistKey(msg)
	}
	return m, nil
}

func (m Model) handleArtistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := &m.artist

	if a.draft != nil {
		return m.updateDraftForm(msg)
	}

	if a.filtering {
		switch msg.Type {
		case tea.KeyEsc:
			a.filtering = false
			a.filter.SetValue("")
			a.applyFilter()
			return m, nil
		case tea.KeyEnter:
			a.filtering = false
			return m, nil
		}
		var cmd tea.Cmd
		a.filter, cmd = a.filter.Update(msg)
		a.applyFilter()
		return m, cmd
	}

	// Detail view keys
	if a.detail != nil {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
			switch {
			case a.showRoy:
				a.showRoy = false
			case a.showHist:
				a.showHist = false
			default:
				a.detail = nil
				a.songs = nil
				a.royalties = nil
				a.history = nil
			}
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			if a.detail.Editable() {
				return m, SubmitForReviewCmd(m.svc.Releases, a.detail.ID, a.profile.ID)
			}
			m.status = "only drafts can be submitted"
			return m, nil
		case key.Matches(msg, m.keys.Royalties):
			return m, LoadRoyaltiesCmd(m.svc.Releases, a.detail.ID, domain.PageRequest{Number: 0, Size: a.page.Size})
		case key.Matches(msg, m.keys.History):
			return m, LoadHistoryCmd(m.svc.Moderation, a.detail.ID)
		}
		return m, nil
	}

	// List view keys
	switch {
	case key.Matches(msg, m.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if a.cursor+1 < len(a.visible) {
			a.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if r := a.selected(); r != nil {
			return m, tea.Batch(
				LoadReleaseCmd(m.svc.Releases, r.ID),
				LoadSongsCmd(m.svc.Releases, r.ID),
			)
		}
	case key.Matches(msg, m.keys.Filter):
		a.filtering = true
		a.filter.Focus()
	case key.Matches(msg, m.keys.New):
		if a.profile != nil {
			a.draft = newDraftForm()
		}
	case key.Matches(msg, m.keys.Refresh):
		if a.profile != nil {
			m.loading = true
			return m, tea.Batch(
				LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, a.profile.ID, a.page),
				SpinnerTickCmd(),
			)
		}
	case key.Matches(msg, m.keys.NextPage):
		if a.releases != nil && a.releases.HasNext() {
			a.page.Number++
			m.loading = true
			return m, tea.Batch(
				LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, a.profile.ID, a.page),
				SpinnerTickCmd(),
			)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if a.page.Number > 0 {
			a.page.Number--
			m.loading = true
			return m, tea.Batch(
				LoadArtistReleasesCmd(m.svc.Artists, m.svc.Search, a.profile.ID, a.page),
				SpinnerTickCmd(),
			)
		}
	}
	return m, nil
}

func (m Model) updateDraftForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := &m.artist
	f := a.draft

	switch msg.Type {
	case tea.KeyEsc:
		a.draft = nil
		return m, nil

	case tea.KeyTab, tea.KeyDown:
		f.focusField((f.focused + 1) % 4)
		return m, nil

	case tea.KeyShiftTab, tea.KeyUp:
		f.focusField((f.focused + 3) % 4)
		return m, nil

	case tea.KeyLeft, tea.KeyRight:
		if f.focused == 3 {
			if msg.Type == tea.KeyRight {
				f.typeIdx = (f.typeIdx + 1) % len(releaseTypes)
			} else {
				f.typeIdx = (f.typeIdx + len(releaseTypes) - 1) % len(releaseTypes)
			}
			return m, nil
		}

	case tea.KeyEnter:
		if f.focused < 3 {
			f.focusField(f.focused + 1)
			return m, nil
		}
		if f.name.Value() == "" || f.genre.Value() == "" || f.date.Value() == "" {
			f.errText = "all fields are required"
			return m, nil
		}
		draft := domain.ReleaseDraft{
			Name:     f.name.Value(),
			ArtistID: a.profile.ID,
			Genre:    f.genre.Value(),
			Type:     releaseTypes[f.typeIdx],
			Date:     f.date.Value(),
		}
		return m, CreateDraftCmd(m.svc.Releases, draft)
	}

	var cmd tea.Cmd
	switch f.focused {
	case 0:
		f.name, cmd = f.name.Update(msg)
	case 1:
		f.genre, cmd = f.genre.Update(msg)
	case 2:
		f.date, cmd = f.date.Update(msg)
	}
	return m, cmd
}

func (m Model) artistView() string {
	a := m.artist

	if a.noProfile {
		return styles.PanelStyle.Render(
			styles.TitleStyle.Render("no artist profile yet") + "\n\n" +
				styles.SubtitleStyle.Render("ask your label or an admin to create one for this account"))
	}
	if a.profile == nil {
		return styles.PanelStyle.Render(m.spinner() + " loading profile...")
	}
	if a.draft != nil {
		return m.draftFormView()
	}
	if a.detail != nil {
		return m.releaseDetailView()
	}
	return m.releaseListView()
}

func (m Model) releaseListView() string {
	a := m.artist
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(a.profile.Name) + " " +
		styles.DimStyle.Render("releases") + "\n\n")

	if a.filtering || a.filter.Value() != "" {
		b.WriteString(a.filter.View() + "\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.spinner() + " loading...\n")
	case a.releases == nil || len(a.releases.Content) == 0:
		b.WriteString(styles.DimStyle.Render("no releases yet · n to open a draft") + "\n")
	case len(a.visible) == 0:
		b.WriteString(styles.DimStyle.Render("no matches") + "\n")
	default:
		for row, idx := range a.visible {
			r := a.releases.Content[idx]
			line := fmt.Sprintf("%-32s %-12s %s", truncate(r.Name, 32), r.Type, styles.ModerationBadge(string(r.ModerationState)))
			if row == a.cursor {
				b.WriteString(styles.SelectedItemStyle.Render(line) + "\n")
			} else {
				b.WriteString(styles.NormalItemStyle.Render(line) + "\n")
			}
		}
	}

	if footer := pageFooter(a.releases); footer != "" {
		b.WriteString("\n" + footer)
	}
	b.WriteString("\n" + styles.DimStyle.Render("enter: open · n: new draft · /: filter · r: refresh"))
	return styles.PanelStyle.Render(b.String())
}

func (m Model) releaseDetailView() string {
	a := m.artist
	r := a.detail
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(r.Name) + "  " + styles.ModerationBadge(string(r.ModerationState)) + "\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("%s · %s · UPC %d", r.Type, r.Genre, r.UPC)) + "\n\n")

	switch {
	case a.showRoy:
		b.WriteString(styles.TitleStyle.Render("royalties") + "\n")
		if a.royalties == nil || len(a.royalties.Content) == 0 {
			b.WriteString(styles.DimStyle.Render("no royalty lines yet") + "\n")
		} else {
			for _, roy := range a.royalties.Content {
				b.WriteString(fmt.Sprintf("  %-28s %-16s %s\n", truncate(roy.SongTitle, 28), roy.PlatformName, styles.AccentStyle.Render(roy.Amount)))
			}
			if footer := pageFooter(a.royalties); footer != "" {
				b.WriteString(footer + "\n")
			}
		}
	case a.showHist:
		b.WriteString(styles.TitleStyle.Render("moderation history") + "\n")
		if len(a.history) == 0 {
			b.WriteString(styles.DimStyle.Render("no decisions recorded") + "\n")
		} else {
			for _, rec := range a.history {
				b.WriteString(fmt.Sprintf("  %s %s\n", styles.ModerationBadge(string(rec.ModerationState)), styles.DimStyle.Render(rec.Date.Format("2006-01-02"))))
				if rec.Comment != "" {
					b.WriteString("    " + styles.SubtitleStyle.Render(rec.Comment) + "\n")
				}
			}
		}
	default:
		b.WriteString(styles.TitleStyle.Render("tracklist") + "\n")
		if len(a.songs) == 0 {
			b.WriteString(styles.DimStyle.Render("no songs yet") + "\n")
		} else {
			for i, song := range a.songs {
				marker := " "
				if song.ParentalAdvisory {
					marker = styles.ErrorStyle.Render("E")
				}
				// Songs carry no title of their own; show the credited artists
				credit := song.MusicAuthor
				if len(song.ArtistNames) > 0 {
					credit = strings.Join(song.ArtistNames, ", ")
				}
				b.WriteString(fmt.Sprintf("  %2d. %-32s %s %s\n", i+1, truncate(credit, 32), song.FormattedLength(), marker))
			}
		}
	}

	b.WriteString("\n" + styles.DimStyle.Render("s: submit · y: royalties · H: history · h: back"))
	return styles.PanelStyle.Render(b.String())
}

func (m Model) draftFormView() string {
	f := m.artist.draft
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("new release draft") + "\n\n")
	b.WriteString(f.name.View() + "\n")
	b.WriteString(f.genre.View() + "\n")
	b.WriteString(f.date.View() + "\n")

	typeLine := fmt.Sprintf("type: %s", releaseTypes[f.typeIdx])
	if f.focused == 3 {
		typeLine += "  " + styles.DimStyle.Render("←/→ to change")
		b.WriteString(styles.AccentStyle.Render(typeLine) + "\n")
	} else {
		b.WriteString(styles.SubtitleStyle.Render(typeLine) + "\n")
	}

	if f.errText != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render(f.errText))
	} else {
		b.WriteString("\n" + styles.DimStyle.Render("enter to create · esc to cancel"))
	}
	return styles.FormStyle.Render(b.String())
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
