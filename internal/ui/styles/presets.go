package styles

// Preset represents a complete color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":          DefaultPreset,
	"catppuccin-mocha": CatppuccinMochaPreset,
	"dracula":          DraculaPreset,
	"nord":             NordPreset,
	"high-contrast":    HighContrastPreset,
}

// DefaultPreset holds the Dark values of the AdaptiveColor definitions in
// styles.go.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default tabula theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#CCCCCC",
		TokenTextSecondary: "#BBBBBB",
		TokenTextMuted:     "#696969",

		TokenBorderDefault: "#696969",

		TokenStatusSuccess: "#73F59F",
		TokenStatusWarning: "#FECA57",
		TokenStatusError:   "#FF8787",

		TokenHeaderText:          "#FFFFFF",
		TokenHeaderBackground:    "#2D3436",
		TokenSelectionBackground: "#1A5276",
		TokenSelectionPreview:    "#1B3A52",
		TokenEditBackground:      "#3A3A1E",
		TokenFocusStroke:         "#54A0FF",
		TokenFocusRowBackground:  "#262626",
		TokenFocusText:           "#FFFFFF",
		TokenLockedText:          "#8C8C8C",

		TokenOverlayTitle:  "#C9C9C9",
		TokenOverlayBorder: "#8C8C8C",

		TokenToastSuccess: "#73F59F",
		TokenToastError:   "#FF8787",
		TokenToastInfo:    "#54A0FF",
		TokenToastWarn:    "#FECA57",

		TokenStatusBarText:       "#BBBBBB",
		TokenStatusBarBackground: "#1E1E1E",
	},
}

// CatppuccinMochaPreset is the Catppuccin Mocha (dark) theme.
// Colors from: https://catppuccin.com/palette
var CatppuccinMochaPreset = Preset{
	Name:        "catppuccin-mocha",
	Description: "Catppuccin Mocha - warm, cozy dark theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#CDD6F4", // text
		TokenTextSecondary: "#BAC2DE", // subtext1
		TokenTextMuted:     "#6C7086", // overlay0

		TokenBorderDefault: "#6C7086", // overlay0

		TokenStatusSuccess: "#A6E3A1", // green
		TokenStatusWarning: "#F9E2AF", // yellow
		TokenStatusError:   "#F38BA8", // red

		TokenHeaderText:          "#CDD6F4", // text
		TokenHeaderBackground:    "#313244", // surface0
		TokenSelectionBackground: "#45475A", // surface1
		TokenSelectionPreview:    "#313244", // surface0
		TokenEditBackground:      "#585B70", // surface2
		TokenFocusStroke:         "#89B4FA", // blue
		TokenFocusRowBackground:  "#181825", // mantle
		TokenFocusText:           "#1E1E2E", // base
		TokenLockedText:          "#7F849C", // overlay1

		TokenOverlayTitle:  "#CDD6F4", // text
		TokenOverlayBorder: "#6C7086", // overlay0

		TokenToastSuccess: "#A6E3A1", // green
		TokenToastError:   "#F38BA8", // red
		TokenToastInfo:    "#89B4FA", // blue
		TokenToastWarn:    "#F9E2AF", // yellow

		TokenStatusBarText:       "#BAC2DE", // subtext1
		TokenStatusBarBackground: "#11111B", // crust
	},
}

// DraculaPreset is the Dracula theme.
// Colors from: https://draculatheme.com/contribute
var DraculaPreset = Preset{
	Name:        "dracula",
	Description: "Dracula - dark theme with vibrant colors",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#F8F8F2", // foreground
		TokenTextSecondary: "#F8F8F2", // foreground
		TokenTextMuted:     "#6272A4", // comment

		TokenBorderDefault: "#6272A4", // comment

		TokenStatusSuccess: "#50FA7B", // green
		TokenStatusWarning: "#F1FA8C", // yellow
		TokenStatusError:   "#FF5555", // red

		TokenHeaderText:          "#F8F8F2", // foreground
		TokenHeaderBackground:    "#44475A", // current line
		TokenSelectionBackground: "#44475A", // selection
		TokenSelectionPreview:    "#343746",
		TokenEditBackground:      "#6272A4", // comment
		TokenFocusStroke:         "#BD93F9", // purple
		TokenFocusRowBackground:  "#21222C", // background darker
		TokenFocusText:           "#282A36", // background
		TokenLockedText:          "#6272A4", // comment

		TokenOverlayTitle:  "#F8F8F2", // foreground
		TokenOverlayBorder: "#BD93F9", // purple

		TokenToastSuccess: "#50FA7B", // green
		TokenToastError:   "#FF5555", // red
		TokenToastInfo:    "#8BE9FD", // cyan
		TokenToastWarn:    "#F1FA8C", // yellow

		TokenStatusBarText:       "#F8F8F2", // foreground
		TokenStatusBarBackground: "#191A21", // background darkest
	},
}

// NordPreset is the Nord theme.
// Colors from: https://www.nordtheme.com/docs/colors-and-palettes
var NordPreset = Preset{
	Name:        "nord",
	Description: "Nord - arctic, north-bluish palette",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#ECEFF4", // snow storm 3
		TokenTextSecondary: "#E5E9F0", // snow storm 2
		TokenTextMuted:     "#4C566A", // polar night 4

		TokenBorderDefault: "#4C566A", // polar night 4

		TokenStatusSuccess: "#A3BE8C", // aurora green
		TokenStatusWarning: "#EBCB8B", // aurora yellow
		TokenStatusError:   "#BF616A", // aurora red

		TokenHeaderText:          "#ECEFF4", // snow storm 3
		TokenHeaderBackground:    "#3B4252", // polar night 2
		TokenSelectionBackground: "#434C5E", // polar night 3
		TokenSelectionPreview:    "#3B4252", // polar night 2
		TokenEditBackground:      "#4C566A", // polar night 4
		TokenFocusStroke:         "#88C0D0", // frost 2
		TokenFocusRowBackground:  "#2E3440", // polar night 1
		TokenFocusText:           "#2E3440", // polar night 1
		TokenLockedText:          "#D8DEE9", // snow storm 1

		TokenOverlayTitle:  "#ECEFF4", // snow storm 3
		TokenOverlayBorder: "#4C566A", // polar night 4

		TokenToastSuccess: "#A3BE8C", // aurora green
		TokenToastError:   "#BF616A", // aurora red
		TokenToastInfo:    "#88C0D0", // frost 2
		TokenToastWarn:    "#EBCB8B", // aurora yellow

		TokenStatusBarText:       "#D8DEE9", // snow storm 1
		TokenStatusBarBackground: "#3B4252", // polar night 2
	},
}

// HighContrastPreset uses pure, saturated colors with no muted tones.
var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "High contrast for accessibility",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#FFFFFF",
		TokenTextSecondary: "#FFFFFF",
		TokenTextMuted:     "#CCCCCC",

		TokenBorderDefault: "#FFFFFF",

		TokenStatusSuccess: "#00FF00",
		TokenStatusWarning: "#FFFF00",
		TokenStatusError:   "#FF0000",

		TokenHeaderText:          "#000000",
		TokenHeaderBackground:    "#FFFFFF",
		TokenSelectionBackground: "#0000FF",
		TokenSelectionPreview:    "#000080",
		TokenEditBackground:      "#800080",
		TokenFocusStroke:         "#FFFF00",
		TokenFocusRowBackground:  "#000000",
		TokenFocusText:           "#000000",
		TokenLockedText:          "#00FFFF",

		TokenOverlayTitle:  "#FFFFFF",
		TokenOverlayBorder: "#FFFFFF",

		TokenToastSuccess: "#00FF00",
		TokenToastError:   "#FF0000",
		TokenToastInfo:    "#00FFFF",
		TokenToastWarn:    "#FFFF00",

		TokenStatusBarText:       "#FFFFFF",
		TokenStatusBarBackground: "#000000",
	},
}
