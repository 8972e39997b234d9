package gui

import (
	"image/color"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// EnvFont points at a TTF with CJK glyphs for the result labels
const EnvFont = "HSHJ_FONT"

var (
	// DefaultWindowSize is the default window dimensions
	DefaultWindowSize = fyne.NewSize(1100, 720)

	ColorPrimary    = color.NRGBA{R: 63, G: 81, B: 181, A: 255}
	ColorSuccess    = color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	ColorWarning    = color.NRGBA{R: 255, G: 152, B: 0, A: 255}
	ColorError      = color.NRGBA{R: 244, G: 67, B: 54, A: 255}
	ColorBackground = color.NRGBA{R: 18, G: 18, B: 18, A: 255}
)

// LocatorTheme is the dark theme of the locator window
type LocatorTheme struct {
	font fyne.Resource
}

// NewLocatorTheme creates the theme, loading the HSHJ_FONT font if set
func NewLocatorTheme() *LocatorTheme {
	t := &LocatorTheme{}
	if path := os.Getenv(EnvFont); path != "" {
		if res, err := fyne.LoadResourceFromPath(path); err == nil {
			t.font = res
		}
	}
	return t
}

func (t *LocatorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameButton:
		return ColorPrimary
	case theme.ColorNameBackground:
		return ColorBackground
	case theme.ColorNameSuccess:
		return ColorSuccess
	case theme.ColorNameWarning:
		return ColorWarning
	case theme.ColorNameError:
		return ColorError
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *LocatorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *LocatorTheme) Font(style fyne.TextStyle) fyne.Resource {
	if t.font != nil && !style.Monospace {
		return t.font
	}
	return theme.DefaultTheme().Font(style)
}

func (t *LocatorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 14
	case theme.SizeNamePadding:
		return 6
	default:
		return theme.DefaultTheme().Size(name)
	}
}
