package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func resetTheme(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, ApplyTheme(ThemeConfig{})) })
}

func TestApplyTheme_Default(t *testing.T) {
	resetTheme(t)
	require.NoError(t, ApplyTheme(ThemeConfig{}))
	require.Equal(t, DefaultPreset.Colors[TokenFocusStroke], FocusStrokeColor.Dark)
}

func TestApplyTheme_Preset(t *testing.T) {
	resetTheme(t)
	require.NoError(t, ApplyTheme(ThemeConfig{Preset: "nord"}))
	require.Equal(t, "#88C0D0", FocusStrokeColor.Dark)
	require.Equal(t, "#88C0D0", FocusStrokeColor.Light)
}

func TestApplyTheme_ColorOverride(t *testing.T) {
	resetTheme(t)
	require.NoError(t, ApplyTheme(ThemeConfig{
		Preset: "dracula",
		Colors: map[string]string{"selection.background": "#00FF00"},
	}))
	require.Equal(t, "#00FF00", SelectionBackgroundColor.Dark)
	require.Equal(t, DraculaPreset.Colors[TokenHeaderBackground], HeaderBackgroundColor.Dark)
}

func TestApplyTheme_Errors(t *testing.T) {
	resetTheme(t)
	require.ErrorContains(t, ApplyTheme(ThemeConfig{Preset: "solarized"}), "unknown theme preset")
	require.ErrorContains(t, ApplyTheme(ThemeConfig{Colors: map[string]string{"issue.bug": "#FFF"}}), "unknown color token")
	require.ErrorContains(t, ApplyTheme(ThemeConfig{Colors: map[string]string{"text.muted": "red"}}), "invalid hex color")
}

func TestApplyTheme_CallsRebuilders(t *testing.T) {
	resetTheme(t)
	calls := 0
	RegisterStyleRebuilder(func() { calls++ })
	t.Cleanup(func() { styleRebuilders = styleRebuilders[:len(styleRebuilders)-1] })

	require.NoError(t, ApplyTheme(ThemeConfig{}))
	require.Equal(t, 1, calls)
}

func TestIsValidHexColor(t *testing.T) {
	for s, want := range map[string]bool{"#FFF": true, "#54a0ff": true, "54A0FF": false, "#12345": false, "#GGGGGG": false} {
		require.Equal(t, want, IsValidHexColor(s), s)
	}
}
