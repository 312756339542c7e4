package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/tui/styles"
)

// moderationModel is the review queue for moderators and admins
type moderationModel struct {
	moderatorID int64

	page    domain.PageRequest
	pending *domain.Page[domain.Release]
	cursor  int

	history  []domain.ModerationRecord
	histFor  int64
	showHist bool

	verdict *verdictForm
}

// verdictForm collects a decision on the selected release
type verdictForm struct {
	release domain.Release
	state   domain.ModerationState
	comment textinput.Model
}

func newModerationModel(pageSize int) moderationModel {
	return moderationModel{
		page: domain.PageRequest{Number: 0, Size: pageSize},
	}
}

func (md *moderationModel) capturingInput() bool {
	return md.verdict != nil
}

func newVerdictForm(release domain.Release, state domain.ModerationState) *verdictForm {
	comment := textinput.New()
	comment.Placeholder = "comment for the artist"
	comment.CharLimit = 500
	comment.Focus()
	return &verdictForm{release: release, state: state, comment: comment}
}

func (m Model) updateModeration(msg tea.Msg) (tea.Model, tea.Cmd) {
	md := &m.mod

	switch msg := msg.(type) {
	case ModeratorResolvedMsg:
		md.moderatorID = msg.ModeratorID
		return m, nil

	case PendingLoadedMsg:
		m.loading = false
		md.pending = msg.Page
		if md.cursor >= len(msg.Page.Content) {
			md.cursor = 0
		}
		return m, nil

	case HistoryLoadedMsg:
		md.history = msg.Records
		md.histFor = msg.ReleaseID
		md.showHist = true
		return m, nil

	case ModeratedMsg:
		md.verdict = nil
		m.status = fmt.Sprintf("recorded %s for %q", msg.Record.ModerationState, msg.Record.ReleaseName)
		m.loading = true
		return m, tea.Batch(
			LoadPendingCmd(m.svc.Moderation, md.page),
			SpinnerTickCmd(),
		)

	case tea.KeyMsg:
		return m.handleModerationKey(msg)
	}
	return m, nil
}

func (m Model) handleModerationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	md := &m.mod

	if md.verdict != nil {
		switch msg.Type {
		case tea.KeyEsc:
			md.verdict = nil
			return m, nil
		case tea.KeyEnter:
			f := md.verdict
			if f.state != domain.ModerationApproved && strings.TrimSpace(f.comment.Value()) == "" {
				m.status = "a comment is required for this verdict"
				return m, nil
			}
			return m, ModerateCmd(m.svc.Moderation, domain.ModerationDecision{
				ModeratorID: md.moderatorID,
				ReleaseID:   f.release.ID,
				Comment:     f.comment.Value(),
				State:       f.state,
			})
		}
		var cmd tea.Cmd
		md.verdict.comment, cmd = md.verdict.comment.Update(msg)
		return m, cmd
	}

	if md.showHist {
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Escape) {
			md.showHist = false
		}
		return m, nil
	}

	selected := func() *domain.Release {
		if md.pending == nil || md.cursor >= len(md.pending.Content) {
			return nil
		}
		return &md.pending.Content[md.cursor]
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if md.cursor > 0 {
			md.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if md.pending != nil && md.cursor+1 < len(md.pending.Content) {
			md.cursor++
		}
	case key.Matches(msg, m.keys.Approve):
		if r := selected(); r != nil {
			md.verdict = newVerdictForm(*r, domain.ModerationApproved)
		}
	case key.Matches(msg, m.keys.Reject):
		if r := selected(); r != nil {
			md.verdict = newVerdictForm(*r, domain.ModerationRejected)
		}
	case key.Matches(msg, m.keys.Changes):
		if r := selected(); r != nil {
			md.verdict = newVerdictForm(*r, domain.ModerationWaitingForChanges)
		}
	case key.Matches(msg, m.keys.History):
		if r := selected(); r != nil {
			return m, LoadHistoryCmd(m.svc.Moderation, r.ID)
		}
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(LoadPendingCmd(m.svc.Moderation, md.page), SpinnerTickCmd())
	case key.Matches(msg, m.keys.NextPage):
		if md.pending != nil && md.pending.HasNext() {
			md.page.Number++
			m.loading = true
			return m, tea.Batch(LoadPendingCmd(m.svc.Moderation, md.page), SpinnerTickCmd())
		}
	case key.Matches(msg, m.keys.PrevPage):
		if md.page.Number > 0 {
			md.page.Number--
			m.loading = true
			return m, tea.Batch(LoadPendingCmd(m.svc.Moderation, md.page), SpinnerTickCmd())
		}
	}
	return m, nil
}

func (m Model) moderationView() string {
	md := m.mod

	if md.verdict != nil {
		return m.verdictFormView()
	}
	if md.showHist {
		return m.moderationHistoryView()
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("moderation queue") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner() + " loading...\n")
	case md.pending == nil || len(md.pending.Content) == 0:
		b.WriteString(styles.DimStyle.Render("nothing waiting for review") + "\n")
	default:
		for i, r := range md.pending.Content {
			line := fmt.Sprintf("%-30s %-20s %s", truncate(r.Name, 30), truncate(r.ArtistName, 20), r.Type)
			if i == md.cursor {
				b.WriteString(styles.SelectedItemStyle.Render(line) + "\n")
			} else {
				b.WriteString(styles.NormalItemStyle.Render(line) + "\n")
			}
		}
	}

	if footer := pageFooter(md.pending); footer != "" {
		b.WriteString("\n" + footer)
	}
	b.WriteString("\n" + styles.DimStyle.Render("a: approve · x: reject · c: request changes · H: history · r: refresh"))
	return styles.PanelStyle.Render(b.String())
}

func (m Model) verdictFormView() string {
	f := m.mod.verdict
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(f.release.Name) + "\n")
	b.WriteString(styles.SubtitleStyle.Render("by "+f.release.ArtistName) + "\n\n")
	b.WriteString("verdict: " + styles.ModerationBadge(string(f.state)) + "\n\n")
	b.WriteString(f.comment.View() + "\n\n")
	b.WriteString(styles.DimStyle.Render("enter to record · esc to cancel"))
	return styles.FormStyle.Render(b.String())
}

func (m Model) moderationHistoryView() string {
	md := m.mod
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("moderation history · release %d", md.histFor)) + "\n\n")
	if len(md.history) == 0 {
		b.WriteString(styles.DimStyle.Render("no decisions recorded") + "\n")
	} else {
		for _, rec := range md.history {
			b.WriteString(fmt.Sprintf("%s %s %s\n",
				styles.ModerationBadge(string(rec.ModerationState)),
				styles.DimStyle.Render(rec.Date.Format("2006-01-02 15:04")),
				styles.DimStyle.Render(fmt.Sprintf("moderator %d", rec.ModeratorID))))
			if rec.Comment != "" {
				b.WriteString("  " + styles.SubtitleStyle.Render(rec.Comment) + "\n")
			}
		}
	}
	b.WriteString("\n" + styles.DimStyle.Render("h: back to queue"))
	return styles.PanelStyle.Render(b.String())
}
