package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme defines the colour scheme of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Series  []asciigraph.AnsiColor
}

var Themes = []Theme{
	{
		Name:    "meadow",
		Primary: lipgloss.Color("#5fd068"),
		Accent:  lipgloss.Color("#feca57"),
		Muted:   lipgloss.Color("#666666"),
		Series:  []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Yellow, asciigraph.Red, asciigraph.Magenta},
	},
	{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Muted:   lipgloss.Color("#4488aa"),
		Series:  []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Cyan, asciigraph.Yellow, asciigraph.White},
	},
	{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Muted:   lipgloss.Color("#888888"),
		Series:  []asciigraph.AnsiColor{asciigraph.White, asciigraph.Gray, asciigraph.Blue, asciigraph.Silver},
	},
}

// GetTheme returns a theme by name, falling back to the first.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
