package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mpmsim/internal/viz"
)

const historyLen = 60

// DoneMsg ends the program once the solver returns.
type DoneMsg struct{ Err error }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type Model struct {
	title  string
	total  int
	styles viz.Styles
	cancel context.CancelFunc

	last    StepMsg
	energy  []float64
	spinner int
	done    bool
	err     error
}

// NewModel builds the progress view. cancel is called when the user quits
// before the run ends.
func NewModel(title string, total int, theme viz.Theme, cancel context.CancelFunc) Model {
	return Model{
		title:  title,
		total:  total,
		styles: theme.Styles(),
		cancel: cancel,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case StepMsg:
		m.last = msg
		m.energy = append(m.energy, msg.KineticEnergy)
		if len(m.energy) > historyLen {
			m.energy = m.energy[len(m.energy)-historyLen:]
		}
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.spinner++
		return m, tick()
	}
	return m, nil
}

func (m Model) Done() bool { return m.done }
func (m Model) Err() error { return m.err }

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	status := s.OK.Render(viz.AnimatedSpinner(m.spinner) + " running")
	switch {
	case m.err != nil:
		status = s.Err.Render("failed: " + m.err.Error())
	case m.done:
		status = s.OK.Render("done")
	}
	b.WriteString(s.Title.Render(m.title) + "  " + status + "\n")

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.last.Step) / float64(m.total)
	}
	fmt.Fprintf(&b, "%s %d/%d\n", viz.ProgressBar(frac, 40), m.last.Step, m.total)
	b.WriteString(viz.Separator(s, frameWidth) + "\n")

	if m.last.Frame != "" {
		b.WriteString(s.Panel.Render(strings.TrimRight(m.last.Frame, "\n")) + "\n")
	}

	b.WriteString(viz.KeyValue(s, "time", m.last.Time) + "\n")
	b.WriteString(viz.KeyValue(s, "kinetic energy", m.last.KineticEnergy) + "\n")
	b.WriteString(viz.KeyValue(s, "max speed", m.last.MaxSpeed) + "\n")
	b.WriteString(s.Label.Render(fmt.Sprintf("%-16s", "energy")) + viz.Sparkline(m.energy, historyLen) + "\n")
	b.WriteString(s.Subtle.Render("q to stop") + "\n")
	return b.String()
}
