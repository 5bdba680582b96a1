package styles

import "github.com/charmbracelet/lipgloss/v2"

// Listing palette. The chroma style in ui/colorize uses the same colors.
const (
	ListingAddress = "#4F4F4F"
	ListingNumber  = "#FF5F87"
	ListingError   = "#FF5555"
)

var (
	MenuBar = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)

	ListTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			MarginLeft(2)

	Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	Address  = lipgloss.NewStyle().Foreground(lipgloss.Color(ListingAddress))
	Error    = lipgloss.NewStyle().Foreground(lipgloss.Color(ListingError)).Bold(true)
	Spinner  = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
)
