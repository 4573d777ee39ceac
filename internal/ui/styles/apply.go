package styles

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styleRebuilders holds callbacks to rebuild styles in other packages.
// This avoids import cycles (styles can't import datatable, but datatable can
// register).
var styleRebuilders []func()

// RegisterStyleRebuilder adds a callback that will be called after ApplyTheme
// updates colors. Use this to rebuild styles in packages that depend on styles.
func RegisterStyleRebuilder(fn func()) {
	styleRebuilders = append(styleRebuilders, fn)
}

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Preset string
	Colors map[string]string
}

// tokenTargets maps each token to the color variable it sets.
func tokenTargets() map[ColorToken]*lipgloss.AdaptiveColor {
	return map[ColorToken]*lipgloss.AdaptiveColor{
		TokenTextPrimary:         &TextPrimaryColor,
		TokenTextSecondary:       &TextSecondaryColor,
		TokenTextMuted:           &TextMutedColor,
		TokenBorderDefault:       &BorderDefaultColor,
		TokenStatusSuccess:       &StatusSuccessColor,
		TokenStatusWarning:       &StatusWarningColor,
		TokenStatusError:         &StatusErrorColor,
		TokenHeaderText:          &HeaderTextColor,
		TokenHeaderBackground:    &HeaderBackgroundColor,
		TokenSelectionBackground: &SelectionBackgroundColor,
		TokenSelectionPreview:    &SelectionPreviewColor,
		TokenEditBackground:      &EditBackgroundColor,
		TokenFocusStroke:         &FocusStrokeColor,
		TokenFocusRowBackground:  &FocusRowBackgroundColor,
		TokenFocusText:           &FocusTextColor,
		TokenLockedText:          &LockedTextColor,
		TokenOverlayTitle:        &OverlayTitleColor,
		TokenOverlayBorder:       &OverlayBorderColor,
		TokenToastSuccess:        &ToastBorderSuccessColor,
		TokenToastError:          &ToastBorderErrorColor,
		TokenToastInfo:           &ToastBorderInfoColor,
		TokenToastWarn:           &ToastBorderWarnColor,
		TokenStatusBarText:       &StatusBarTextColor,
		TokenStatusBarBackground: &StatusBarBackgroundColor,
	}
}

// ApplyTheme applies a complete theme configuration.
// Order of application:
// 1. Start with default colors
// 2. Apply preset (if specified)
// 3. Apply individual color overrides
// 4. Rebuild all Style objects
func ApplyTheme(cfg ThemeConfig) error {
	colors, err := ResolveTheme(cfg)
	if err != nil {
		return err
	}
	targets := tokenTargets()
	for token, hex := range colors {
		if dst, ok := targets[token]; ok {
			*dst = lipgloss.AdaptiveColor{Light: hex, Dark: hex}
		}
	}
	rebuildStyles()
	return nil
}

// ResolveTheme computes the final token colors of cfg without applying them.
func ResolveTheme(cfg ThemeConfig) (map[ColorToken]string, error) {
	colors := maps.Clone(DefaultPreset.Colors)

	if cfg.Preset != "" && cfg.Preset != "default" {
		preset, ok := Presets[cfg.Preset]
		if !ok {
			return nil, fmt.Errorf("unknown theme preset: %s", cfg.Preset)
		}
		maps.Copy(colors, preset.Colors)
	}

	for key, value := range cfg.Colors {
		token := ColorToken(key)
		if !isValidToken(token) {
			return nil, fmt.Errorf("unknown color token: %s", key)
		}
		if !IsValidHexColor(value) {
			return nil, fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		colors[token] = value
	}
	return colors, nil
}

// rebuildStyles recreates all Style objects with updated colors.
// This is necessary because lipgloss.Style objects capture colors at creation time.
func rebuildStyles() {
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(StatusBarTextColor).
		Background(StatusBarBackgroundColor).
		Padding(0, 1)
	DirtyStyle = lipgloss.NewStyle().Foreground(StatusWarningColor).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	HelpDescStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	for _, fn := range styleRebuilders {
		fn()
	}
}

func isValidToken(token ColorToken) bool {
	return slices.Contains(AllTokens(), token)
}

// IsValidHexColor reports whether s is a #RGB or #RRGGBB color.
func IsValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
