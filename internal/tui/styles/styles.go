package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Violet     = lipgloss.Color("#8B5CF6")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Yellow     = lipgloss.Color("#F59E0B")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Violet)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Violet)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Yellow)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Padding(1, 2)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateDark).
			Padding(0, 1)

	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Violet).
			Padding(1, 2)
)

// Moderation state badges
var moderationBadges = map[string]lipgloss.Style{
	"DRAFT":               DimStyle,
	"ON_REVIEW":           WarningStyle,
	"APPROVED":            SuccessStyle,
	"REJECTED":            ErrorStyle,
	"WAITING_FOR_CHANGES": lipgloss.NewStyle().Foreground(Blue),
}

// ModerationBadge renders a release state with its workflow color
func ModerationBadge(state string) string {
	if style, ok := moderationBadges[state]; ok {
		return style.Render(state)
	}
	return DimStyle.Render(state)
}

// SpinnerFrames animates pending loads
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
