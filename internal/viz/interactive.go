package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/experiment"
)

const (
	stateMenu = iota
	stateExplore
)

// App lets the user pick a built-in case and then explores it.
type App struct {
	state, cursor int
	cases         []string
	log           *logrus.Logger
	err           error
	explorer      Model
}

func NewApp(log *logrus.Logger) App {
	return App{state: stateMenu, cases: config.ListPresets(), log: log}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateExplore {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.explorer.Update(msg)
		a.explorer = next.(Model)
		return a, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.cases)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.open(a.cases[a.cursor])
	}
	return a, nil
}

func (a App) open(name string) (App, tea.Cmd) {
	exp := experiment.New(config.GetPreset(name), a.log)
	if err := exp.Setup(); err != nil {
		a.err = fmt.Errorf("%s: %w", name, err)
		return a, nil
	}
	a.err = nil
	a.explorer = NewModel(exp, name)
	a.state = stateExplore
	return a, a.explorer.Init()
}

func (a App) View() string {
	if a.state == stateExplore {
		return a.explorer.View()
	}

	st := themeStyles(CurrentTheme)
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render("AEROLATTICE") + "\n    " + st.muted.Render("vortex lattice explorer") + "\n    " + st.muted.Render("───────────────────────") + "\n\n")
	for i, name := range a.cases {
		cfg := config.GetPreset(name)
		desc := fmt.Sprintf("%d surfaces", len(cfg.Surfaces))
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.active.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-18s", name)), st.active.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.muted.Render(fmt.Sprintf("%-18s", name)), st.muted.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + st.errMsg.Render(a.err.Error()) + "\n")
	}
	keyStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
	b.WriteString("\n    " + keyStyle.Render("j/k") + st.muted.Render(" navigate  ") + keyStyle.Render("enter") + st.muted.Render(" explore  ") + keyStyle.Render("esc") + st.muted.Render(" back  ") + keyStyle.Render("q") + st.muted.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive starts the case menu on the terminal.
func RunInteractive(log *logrus.Logger) error {
	_, err := tea.NewProgram(NewApp(log), tea.WithAltScreen()).Run()
	return err
}
