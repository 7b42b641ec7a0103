package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mpmsim/internal/experiment"
	"github.com/san-kum/mpmsim/internal/solver"
	"github.com/san-kum/mpmsim/internal/viz"
)

// Run executes a set-up experiment while showing live progress. Quitting
// the view cancels the run; the solver's context error is then returned.
func Run(ctx context.Context, exp *experiment.Experiment, theme viz.Theme, fps int) (*solver.Result, error) {
	if exp.Solver() == nil {
		if err := exp.Setup(); err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := exp.Config()
	p := tea.NewProgram(NewModel(cfg.Name, cfg.Steps, theme, cancel))
	exp.Solver().AddObserver(NewObserver(p.Send, cfg.Steps, fps))

	var (
		result *solver.Result
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = exp.Run(ctx)
		p.Send(DoneMsg{Err: runErr})
	}()

	_, err := p.Run()
	if err != nil {
		cancel()
	}
	<-done
	if err != nil {
		return result, err
	}
	return result, runErr
}
