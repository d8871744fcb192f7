package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"gtodo/internal/session"
)

// Run starts the interactive UI and blocks until the operator quits or ctx
// is cancelled.
func Run(ctx context.Context, ctl *session.Controller, username string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, ctl, username), opts...)

	unsubscribe := ctl.Subscribe(func(st session.State) {
		p.Send(stateMsg(st))
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
