package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gtodo/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num  int  // 1-based display number, or the task ID when ByID is set
	ByID bool // true for "#<id>" references
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. all digits (e.g. 3) → display number in the current list
//  2. '#' followed by digits (e.g. #42) → server task ID
//  3. anything else → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", strings.Join(args, " "))
	}

	arg := args[0]
	byID := false
	if strings.HasPrefix(arg, "#") {
		byID = true
		arg = arg[1:]
	}
	if !isAllDigits(arg) {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", args[0])
	}
	num, err := strconv.Atoi(arg)
	if err != nil {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", args[0])
	}
	return TaskRef{Num: num, ByID: byID}, nil
}

// Resolve finds the referenced task in tasks, the list currently displayed.
func (r TaskRef) Resolve(tasks []service.Task) (service.Task, error) {
	if r.ByID {
		for _, t := range tasks {
			if t.ID == r.Num {
				return t, nil
			}
		}
		return service.Task{}, fmt.Errorf("task not found: #%d", r.Num)
	}
	if r.Num < 1 || r.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", r.Num)
	}
	return tasks[r.Num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
