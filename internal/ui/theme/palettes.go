package theme

import "github.com/charmbracelet/lipgloss"

// palette builds a theme from hex colors in the order base, surface,
// overlay, text, subtext, muted, accent, red, peach, yellow, green, teal,
// blue.
func palette(name string, hex ...string) Theme {
	if len(hex) != 13 {
		panic("theme: palette " + name + " needs 13 colors")
	}
	c := func(i int) lipgloss.Color { return lipgloss.Color(hex[i]) }
	return Theme{
		Name: name,
		Base: c(0), Surface: c(1), Overlay: c(2),
		Text: c(3), Subtext: c(4), Muted: c(5),
		Accent: c(6), Red: c(7), Peach: c(8), Yellow: c(9),
		Green: c(10), Teal: c(11), Blue: c(12),
	}
}

// CatppuccinMocha is the default dark theme.
var CatppuccinMocha = palette("Catppuccin Mocha",
	"#1e1e2e", "#313244", "#45475a",
	"#cdd6f4", "#a6adc8", "#585b70",
	"#cba6f7", "#f38ba8", "#fab387", "#f9e2af", "#a6e3a1", "#94e2d5", "#89b4fa")

var builtins = []Theme{
	CatppuccinMocha,
	palette("Catppuccin Macchiato",
		"#24273a", "#363a4f", "#494d64",
		"#cad3f5", "#a5adcb", "#5b6078",
		"#c6a0f6", "#ed8796", "#f5a97f", "#eed49f", "#a6da95", "#8bd5ca", "#8aadf4"),
	palette("Catppuccin Frappé",
		"#303446", "#414559", "#51576d",
		"#c6d0f5", "#a5adce", "#626880",
		"#ca9ee6", "#e78284", "#ef9f76", "#e5c890", "#a6d189", "#81c8be", "#8caaee"),
	palette("Catppuccin Latte",
		"#eff1f5", "#ccd0da", "#9ca0b0",
		"#4c4f69", "#6c6f85", "#8c8fa1",
		"#8839ef", "#d20f39", "#fe640b", "#df8e1d", "#40a02b", "#179299", "#1e66f5"),
	palette("Nord",
		"#2e3440", "#3b4252", "#434c5e",
		"#eceff4", "#d8dee9", "#4c566a",
		"#b48ead", "#bf616a", "#d08770", "#ebcb8b", "#a3be8c", "#8fbcbb", "#5e81ac"),
	palette("Dracula",
		"#282a36", "#44475a", "#6272a4",
		"#f8f8f2", "#d0d0d0", "#6272a4",
		"#bd93f9", "#ff5555", "#ffb86c", "#f1fa8c", "#50fa7b", "#8be9fd", "#6272a4"),
	palette("Gruvbox Dark",
		"#282828", "#3c3836", "#504945",
		"#ebdbb2", "#d5c4a1", "#665c54",
		"#b16286", "#cc241d", "#d65d0e", "#d79921", "#98971a", "#689d6a", "#458588"),
	palette("Tokyo Night",
		"#1a1b26", "#292e42", "#3b4261",
		"#c0caf5", "#a9b1d6", "#565f89",
		"#bb9af7", "#f7768e", "#ff9e64", "#e0af68", "#9ece6a", "#73daca", "#7aa2f7"),
}
