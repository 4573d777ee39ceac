// Package styles contains Lip Gloss colors and styles shared by the table,
// the status strip and overlays.
package styles

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens organized by category.
// These are the keys users can override under theme.colors in their config.
const (
	// Text hierarchy
	TokenTextPrimary   ColorToken = "text.primary"
	TokenTextSecondary ColorToken = "text.secondary"
	TokenTextMuted     ColorToken = "text.muted"

	// Borders
	TokenBorderDefault ColorToken = "border.default"

	// Status indicators
	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"

	// Grid
	TokenHeaderText          ColorToken = "header.text"
	TokenHeaderBackground    ColorToken = "header.background"
	TokenSelectionBackground ColorToken = "selection.background"
	TokenSelectionPreview    ColorToken = "selection.preview"
	TokenEditBackground      ColorToken = "edit.background"
	TokenFocusStroke         ColorToken = "focus.stroke"
	TokenFocusRowBackground  ColorToken = "focus.row"
	TokenFocusText           ColorToken = "focus.text"
	TokenLockedText          ColorToken = "locked.text"

	// Overlays
	TokenOverlayTitle  ColorToken = "overlay.title"
	TokenOverlayBorder ColorToken = "overlay.border"

	// Toast notifications
	TokenToastSuccess ColorToken = "toast.success"
	TokenToastError   ColorToken = "toast.error"
	TokenToastInfo    ColorToken = "toast.info"
	TokenToastWarn    ColorToken = "toast.warn"

	// Status strip
	TokenStatusBarText       ColorToken = "statusbar.text"
	TokenStatusBarBackground ColorToken = "statusbar.background"
)

// AllTokens returns all valid color tokens for validation.
func AllTokens() []ColorToken {
	return []ColorToken{
		TokenTextPrimary,
		TokenTextSecondary,
		TokenTextMuted,

		TokenBorderDefault,

		TokenStatusSuccess,
		TokenStatusWarning,
		TokenStatusError,

		TokenHeaderText,
		TokenHeaderBackground,
		TokenSelectionBackground,
		TokenSelectionPreview,
		TokenEditBackground,
		TokenFocusStroke,
		TokenFocusRowBackground,
		TokenFocusText,
		TokenLockedText,

		TokenOverlayTitle,
		TokenOverlayBorder,

		TokenToastSuccess,
		TokenToastError,
		TokenToastInfo,
		TokenToastWarn,

		TokenStatusBarText,
		TokenStatusBarBackground,
	}
}
