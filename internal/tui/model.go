// Package tui is the full-screen front end for the task session.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gtodo/internal/session"
)

type focus int

const (
	focusInput focus = iota
	focusList
)

// stateMsg carries a controller snapshot into the event loop.
type stateMsg session.State

// draftMsg follows a completed add. The controller clears its draft only on
// success, so the input is re-read from the live state rather than from a
// snapshot that may predate the operator's latest keystrokes.
type draftMsg struct{}

// Model is the bubbletea model for the task session.
type Model struct {
	ctx   context.Context
	ctl   *session.Controller
	state session.State

	userInput textinput.Model
	taskInput textinput.Model
	spinner   spinner.Model
	keys      keyMap

	focus    focus
	cursor   int
	width    int
	quitting bool
}

// New creates the model. username pre-fills the create-user field.
func New(ctx context.Context, ctl *session.Controller, username string) Model {
	ui := textinput.New()
	ui.Placeholder = "Username"
	ui.CharLimit = 64
	ui.Width = 40
	ui.SetValue(username)
	ui.Focus()
	ctl.SetUsername(username)

	ti := textinput.New()
	ti.Placeholder = "New task"
	ti.CharLimit = 256
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = noticeStyle

	return Model{
		ctx:       ctx,
		ctl:       ctl,
		state:     ctl.State(),
		userInput: ui,
		taskInput: ti,
		spinner:   sp,
		keys:      defaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		return m.applyState(session.State(msg))

	case draftMsg:
		if m.state.UserCreated {
			if draft := m.ctl.State().Draft; draft != m.taskInput.Value() {
				m.taskInput.SetValue(draft)
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if !m.state.UserCreated {
			return m.updateCreateUser(msg)
		}
		return m.updateTasks(msg)
	}

	return m, nil
}

// applyState adopts a controller snapshot.
func (m Model) applyState(st session.State) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if st.UserCreated && !m.state.UserCreated {
		m.userInput.Blur()
		m.focus = focusInput
		cmd = m.taskInput.Focus()
	}
	m.state = st

	if m.cursor >= len(st.Tasks) {
		m.cursor = max(len(st.Tasks)-1, 0)
	}
	return m, cmd
}

func (m Model) updateCreateUser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		name := m.userInput.Value()
		if strings.TrimSpace(name) == "" {
			return m, nil
		}
		return m, m.run(func(ctx context.Context, ctl *session.Controller) {
			ctl.CreateUser(ctx, name)
		})
	}

	var cmd tea.Cmd
	m.userInput, cmd = m.userInput.Update(msg)
	m.ctl.SetUsername(m.userInput.Value())
	return m, cmd
}

func (m Model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Focus) {
		return m.toggleFocus()
	}

	if m.focus == focusInput {
		if key.Matches(msg, m.keys.Submit) {
			label := m.taskInput.Value()
			if strings.TrimSpace(label) == "" {
				return m, nil
			}
			ctx, ctl := m.ctx, m.ctl
			return m, func() tea.Msg {
				ctl.AddTask(ctx, label)
				return draftMsg{}
			}
		}
		var cmd tea.Cmd
		m.taskInput, cmd = m.taskInput.Update(msg)
		m.ctl.SetDraft(m.taskInput.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(m.state.Tasks) {
			id := m.state.Tasks[m.cursor].ID
			return m, m.run(func(ctx context.Context, ctl *session.Controller) {
				ctl.DeleteTask(ctx, id)
			})
		}
	case key.Matches(msg, m.keys.ClearAll):
		if m.state.CanClear() {
			return m, m.run(func(ctx context.Context, ctl *session.Controller) {
				ctl.ClearAllTasks(ctx)
			})
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(func(ctx context.Context, ctl *session.Controller) {
			ctl.FetchTasks(ctx)
		})
	}
	return m, nil
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput {
		m.focus = focusList
		m.taskInput.Blur()
		return m, nil
	}
	m.focus = focusInput
	return m, m.taskInput.Focus()
}

// run executes a controller operation off the event loop. Results arrive
// through the controller subscription, so the command yields no message.
func (m Model) run(op func(ctx context.Context, ctl *session.Controller)) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		op(ctx, ctl)
		return nil
	}
}
