package viz

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ff8800"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	DefaultTheme = ThemeCyberpunk
)

var themes = map[string]Theme{
	ThemeCyberpunk.Name: ThemeCyberpunk,
	ThemeMinimal.Name:   ThemeMinimal,
	ThemeOcean.Name:     ThemeOcean,
}

// GetTheme returns a theme by name, falling back to DefaultTheme.
func GetTheme(name string) (Theme, bool) {
	t, ok := themes[name]
	if !ok {
		return DefaultTheme, false
	}
	return t, true
}

func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Subtle lipgloss.Style
	OK     lipgloss.Style
	Warn   lipgloss.Style
	Err    lipgloss.Style
	Panel  lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Label:  lipgloss.NewStyle().Foreground(t.Muted),
		Value:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Subtle: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		OK:     lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Warn:   lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Err:    lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
	}
}
