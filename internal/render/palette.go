package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette defines the colour scheme of the chat screen
type Palette struct {
	Name        string
	Description string
	// GlamourStyle is the markdown style that matches the palette
	GlamourStyle string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Primary and Secondary are the two ends of the brand gradient
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	// DarkPalette is the default: gray-900 surfaces with a blue to orange
	// gradient.
	DarkPalette = Palette{
		Name:         "dark",
		Description:  "Dark gray with blue and orange accents",
		GlamourStyle: "dark",

		Background: lipgloss.Color("#111827"),
		Surface:    lipgloss.Color("#1f2937"),
		Border:     lipgloss.Color("#374151"),

		Primary:   lipgloss.Color("#3b82f6"),
		Secondary: lipgloss.Color("#f97316"),
		Accent:    lipgloss.Color("#60a5fa"),
		Warning:   lipgloss.Color("#fb923c"),
		Error:     lipgloss.Color("#f87171"),

		Text:     lipgloss.Color("#f3f4f6"),
		TextDim:  lipgloss.Color("#9ca3af"),
		TextMute: lipgloss.Color("#4b5563"),
	}

	// LightPalette mirrors DarkPalette on white surfaces
	LightPalette = Palette{
		Name:         "light",
		Description:  "White and gray-50 with blue and orange accents",
		GlamourStyle: "light",

		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#f9fafb"),
		Border:     lipgloss.Color("#d1d5db"),

		Primary:   lipgloss.Color("#2563eb"),
		Secondary: lipgloss.Color("#ea580c"),
		Accent:    lipgloss.Color("#3b82f6"),
		Warning:   lipgloss.Color("#f97316"),
		Error:     lipgloss.Color("#dc2626"),

		Text:     lipgloss.Color("#111827"),
		TextDim:  lipgloss.Color("#6b7280"),
		TextMute: lipgloss.Color("#d1d5db"),
	}

	// TokyoNightPalette is an alternative dark scheme
	TokyoNightPalette = Palette{
		Name:         "tokyonight",
		Description:  "Tokyo Night - dark with blue accents",
		GlamourStyle: "tokyo-night",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#ff9e64"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}
)

// Palettes returns every built-in palette
func Palettes() []Palette {
	return []Palette{DarkPalette, LightPalette, TokyoNightPalette}
}

// PaletteNames returns the names of the built-in palettes
func PaletteNames() []string {
	palettes := Palettes()
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}

// PaletteByName looks a palette up by name
func PaletteByName(name string) (Palette, bool) {
	for _, p := range Palettes() {
		if p.Name == name {
			return p, true
		}
	}
	return Palette{}, false
}

// PaletteOrDefault returns the named palette, or DarkPalette when unknown
func PaletteOrDefault(name string) Palette {
	if p, ok := PaletteByName(name); ok {
		return p
	}
	return DarkPalette
}

// Toggle switches between light and dark. Any non-light palette toggles to
// light.
func Toggle(current Palette) Palette {
	if current.Name == LightPalette.Name {
		return DarkPalette
	}
	return LightPalette
}
