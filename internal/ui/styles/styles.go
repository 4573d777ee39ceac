package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#CCCCCC"} // Cell text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Row numbers, secondary info
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, empty cells

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Grid colors
	HeaderTextColor          = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#FFFFFF"}
	HeaderBackgroundColor    = lipgloss.AdaptiveColor{Light: "#E4E7EB", Dark: "#2D3436"}
	SelectionBackgroundColor = lipgloss.AdaptiveColor{Light: "#CFE3FF", Dark: "#1A5276"}
	SelectionPreviewColor    = lipgloss.AdaptiveColor{Light: "#E3EEFF", Dark: "#1B3A52"} // Drag-select in progress
	EditBackgroundColor      = lipgloss.AdaptiveColor{Light: "#FFF4CC", Dark: "#3A3A1E"}
	FocusStrokeColor         = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	FocusRowBackgroundColor  = lipgloss.AdaptiveColor{Light: "#F2F4F7", Dark: "#262626"}
	FocusTextColor           = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	LockedTextColor          = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#8C8C8C"}

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#8C8C8C"}

	// Toast notification colors
	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	// Status strip colors
	StatusBarTextColor       = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#BBBBBB"}
	StatusBarBackgroundColor = lipgloss.AdaptiveColor{Light: "#E4E7EB", Dark: "#1E1E1E"}

	// Status strip
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(StatusBarTextColor).
			Background(StatusBarBackgroundColor).
			Padding(0, 1)

	// Dirty marker and error text in the status strip
	DirtyStyle = lipgloss.NewStyle().Foreground(StatusWarningColor).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)

	// Key help
	HelpKeyStyle  = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	HelpDescStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
)
