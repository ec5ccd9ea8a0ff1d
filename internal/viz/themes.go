package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Positive  lipgloss.Color
	Negative  lipgloss.Color
}

var (
	ThemeCockpit = Theme{
		Name:      "cockpit",
		Primary:   lipgloss.Color("#00ff88"),
		Secondary: lipgloss.Color("#ffb000"), // amber
		Accent:    lipgloss.Color("#00ccff"),
		Text:      lipgloss.Color("#e0ffe8"),
		Muted:     lipgloss.Color("#4a6a55"),
		Positive:  lipgloss.Color("#00ff88"),
		Negative:  lipgloss.Color("#ff4444"),
	}

	ThemeBlueprint = Theme{
		Name:      "blueprint",
		Primary:   lipgloss.Color("#e0f0ff"),
		Secondary: lipgloss.Color("#7fb2ff"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4477aa"),
		Positive:  lipgloss.Color("#7fffd4"),
		Negative:  lipgloss.Color("#ff6b6b"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Positive:  lipgloss.Color("#00ff00"),
		Negative:  lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemeCockpit

	Themes = []Theme{
		ThemeCockpit,
		ThemeBlueprint,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCockpit
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemeCockpit
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
