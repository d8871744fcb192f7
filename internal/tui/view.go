package tui

import (
	"fmt"
	"strings"

	"gtodo/internal/output"
)

const (
	emptyMessage   = "No pending tasks"
	loadingMessage = "Loading tasks..."
	clearAllLabel  = "[C] Clear all tasks"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.state.UserCreated {
		return frameStyle.Render(m.viewCreateUser())
	}
	return frameStyle.Render(m.viewTasks())
}

func (m Model) viewCreateUser() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create user"))
	b.WriteString("\n")
	b.WriteString(m.userInput.View())
	b.WriteString("\n")
	b.WriteString(m.helpLine("enter", "create user", "esc", "quit"))
	return b.String()
}

func (m Model) viewTasks() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Tasks for %s", m.state.Username)))
	b.WriteString("\n")

	if m.state.Notice != "" {
		b.WriteString(noticeStyle.Render(m.state.Notice))
		b.WriteString("\n\n")
	}

	b.WriteString(m.taskInput.View())
	b.WriteString("\n\n")

	if m.state.CanClear() {
		b.WriteString(dangerStyle.Render(clearAllLabel))
		b.WriteString("\n\n")
	}

	switch {
	case m.state.Loading:
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render(loadingMessage))
		b.WriteString("\n")
	case m.state.Empty():
		b.WriteString(mutedStyle.Render(emptyMessage))
		b.WriteString("\n")
	default:
		for i, task := range m.state.Tasks {
			b.WriteString(m.renderTask(i, output.DisplayLabel(task), task.IsDone))
			b.WriteString("\n")
		}
	}

	if m.focus == focusList {
		b.WriteString(m.helpLine("↑/↓", "select", "d", "delete", "C", "clear all", "r", "refresh", "tab", "input", "esc", "quit"))
	} else {
		b.WriteString(m.helpLine("enter", "add", "tab", "list", "esc", "quit"))
	}
	return b.String()
}

func (m Model) renderTask(i int, label string, done bool) string {
	style := itemStyle
	if done {
		style = doneItemStyle
	}
	if m.focus == focusList && i == m.cursor {
		return selectedStyle.Render("> "+label) + mutedStyle.Render("  [d] delete")
	}
	return style.Render(label)
}

// helpLine renders alternating key/description pairs.
func (m Model) helpLine(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpKeyStyle.Render(pairs[i])+" "+pairs[i+1])
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}
