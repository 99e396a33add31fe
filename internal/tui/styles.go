package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed     = lipgloss.Color("#ff5555")
	colorGreen   = lipgloss.Color("#50fa7b")
	colorYellow  = lipgloss.Color("#f1fa8c")
	colorBlue    = lipgloss.Color("#8be9fd")
	colorPurple  = lipgloss.Color("#bd93f9")
	colorDim     = lipgloss.Color("#6272a4")
	colorBgLight = lipgloss.Color("#343746")
	colorFg      = lipgloss.Color("#f8f8f2")
	colorOrange  = lipgloss.Color("#ffb86c")
	colorBorder  = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	sectionHeadingStyle = lipgloss.NewStyle().
				Foreground(colorPurple).
				Bold(true)

	fileHeadingStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	findingHeadingStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Bold(true).
				Underline(true)

	fieldStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	passStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	uncheckedStyle = lipgloss.NewStyle().
			Foreground(colorOrange).
			Bold(true)

	severityMajorStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	severityMinorStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	severityNoteStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	suggestionLabelStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	reportViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
