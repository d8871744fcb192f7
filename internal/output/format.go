// Package output provides formatters for line-oriented output.
package output

import (
	"fmt"
	"io"
	"strings"

	"gtodo/internal/service"
)

const (
	// ListSeparator is the separator line around a list header.
	ListSeparator = "------------"

	// EmptyMessage is printed when the user has no tasks.
	EmptyMessage = "no tasks"

	// LoadingMessage is printed while a fetch is in flight.
	LoadingMessage = "loading tasks..."

	// DoneMarker prefixes the label of a completed task.
	DoneMarker = "[x] "
)

// FormatTask formats a task line.
// Format: "{N:>4}  {LABEL}\n" (4-wide right-aligned number, two spaces, label)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, DisplayLabel(task))
}

// FormatTasks formats every task, numbering from 1, or the empty message.
func FormatTasks(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, EmptyMessage)
		return
	}
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

// FormatListHeader formats the header for a user's list.
func FormatListHeader(w io.Writer, username string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "Tasks for %s\n", normalizeLabel(username))
	fmt.Fprintln(w, ListSeparator)
}

// DisplayLabel returns the label as shown to the operator, with the done
// marker for completed tasks.
func DisplayLabel(task service.Task) string {
	label := normalizeLabel(task.Label)
	if task.IsDone {
		return DoneMarker + label
	}
	return label
}

// normalizeLabel normalizes a label for display.
// - Empty or whitespace-only labels become "(untitled)"
// - Newlines are replaced with spaces
func normalizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")

	if strings.TrimSpace(label) == "" {
		return "(untitled)"
	}
	return label
}
