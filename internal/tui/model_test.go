package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gtodo/internal/logging"
	"gtodo/internal/session"
	"gtodo/internal/testutil"
)

func newTestModel(t *testing.T, fake *testutil.FakeService, username string) (Model, *session.Controller) {
	t.Helper()
	ctl := session.New(fake, logging.NopLogger())
	return New(context.Background(), ctl, username), ctl
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model, runs any returned command synchronously,
// delivers the command's message and then the resulting controller state.
func send(t *testing.T, m Model, ctl *session.Controller, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	next, _ = m.Update(stateMsg(ctl.State()))
	return next.(Model)
}

func typeText(t *testing.T, m Model, ctl *session.Controller, s string) Model {
	t.Helper()
	next, _ := m.Update(keyRunes(s))
	m = next.(Model)
	next, _ = m.Update(stateMsg(ctl.State()))
	return next.(Model)
}

func TestModelCreateUserView(t *testing.T) {
	m, _ := newTestModel(t, testutil.NewFakeService(), "")

	view := m.View()
	if !strings.Contains(view, "Create user") {
		t.Errorf("view should offer user creation, got:\n%s", view)
	}
	if strings.Contains(view, "New task") {
		t.Errorf("task input should be hidden before a user exists, got:\n%s", view)
	}
}

func TestModelEmptyUsernameIsIgnored(t *testing.T) {
	fake := testutil.NewFakeService()
	m, ctl := newTestModel(t, fake, "")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on empty username should not start an operation")
	}
	m = next.(Model)
	if ctl.Authenticated() {
		t.Error("controller should remain unauthenticated")
	}
	if n := fake.CallCount("CreateUser"); n != 0 {
		t.Errorf("CreateUser calls = %d, want 0", n)
	}
}

func TestModelCreateUserAndAddTask(t *testing.T) {
	fake := testutil.NewFakeService()
	m, ctl := newTestModel(t, fake, "")

	m = typeText(t, m, ctl, "alice")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})

	if !ctl.Authenticated() {
		t.Fatal("controller should be authenticated after enter")
	}
	view := m.View()
	for _, want := range []string{"Tasks for alice", "User alice created", emptyMessage} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, clearAllLabel) {
		t.Errorf("clear-all should be hidden for an empty list:\n%s", view)
	}

	m = typeText(t, m, ctl, "buy milk")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})

	if got := fake.Tasks("alice"); len(got) != 1 || got[0].Label != "buy milk" {
		t.Fatalf("remote tasks = %+v, want one 'buy milk'", got)
	}
	view = m.View()
	if !strings.Contains(view, "buy milk") {
		t.Errorf("view should list the new task:\n%s", view)
	}
	if !strings.Contains(view, clearAllLabel) {
		t.Errorf("clear-all should be offered once tasks exist:\n%s", view)
	}
	if m.taskInput.Value() != "" {
		t.Errorf("task input = %q, want cleared after add", m.taskInput.Value())
	}
}

func TestModelFailedAddKeepsInput(t *testing.T) {
	fake := testutil.NewFakeService()
	m, ctl := newTestModel(t, fake, "bob")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})

	fake.CreateTaskErr = errors.New("boom")
	m = typeText(t, m, ctl, "walk dog")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})

	if m.taskInput.Value() != "walk dog" {
		t.Errorf("task input = %q, want %q after failed add", m.taskInput.Value(), "walk dog")
	}
}

func TestModelDeleteSelectedTask(t *testing.T) {
	fake := testutil.NewFakeService()
	m, ctl := newTestModel(t, fake, "dave")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})
	fake.AddTask("dave", "first", false)
	second := fake.AddTask("dave", "second", false)

	// With input focus, letters are typed rather than treated as keys.
	m = typeText(t, m, ctl, "r")
	if len(m.state.Tasks) != 0 {
		t.Fatal("typing r in the input should not refresh")
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	m = send(t, m, ctl, keyRunes("r"))
	if len(m.state.Tasks) != 2 {
		t.Fatalf("tasks after refresh = %d, want 2", len(m.state.Tasks))
	}

	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, ctl, keyRunes("d"))

	var deleted int
	for _, c := range fake.Calls() {
		if c.Method == "DeleteTask" {
			deleted = c.TaskID
		}
	}
	if deleted != second {
		t.Errorf("deleted task = %d, want %d", deleted, second)
	}
	if len(m.state.Tasks) != 1 || m.state.Tasks[0].Label != "first" {
		t.Errorf("tasks after delete = %+v, want only 'first'", m.state.Tasks)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestModelClearAll(t *testing.T) {
	fake := testutil.NewFakeService()
	m, ctl := newTestModel(t, fake, "erin")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})
	for _, label := range []string{"a", "b", "c"} {
		fake.AddTask("erin", label, false)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	m = send(t, m, ctl, keyRunes("r"))
	fake.ResetCalls()

	m = send(t, m, ctl, keyRunes("C"))

	if n := fake.CallCount("DeleteTask"); n != 3 {
		t.Errorf("DeleteTask calls = %d, want 3", n)
	}
	if n := fake.CallCount("ListTasks"); n != 1 {
		t.Errorf("ListTasks calls = %d, want 1", n)
	}
	if !strings.Contains(m.View(), emptyMessage) {
		t.Errorf("view should show the empty message:\n%s", m.View())
	}
}

func TestModelClearAllIgnoredWhenEmpty(t *testing.T) {
	fake := testutil.NewFakeService()
	m, ctl := newTestModel(t, fake, "frank")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	fake.ResetCalls()

	_, cmd := m.Update(keyRunes("C"))
	if cmd != nil {
		t.Error("clear-all on an empty list should not start an operation")
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("service calls = %d, want 0", n)
	}
}

func TestModelLoadingView(t *testing.T) {
	m, _ := newTestModel(t, testutil.NewFakeService(), "")
	next, _ := m.Update(stateMsg(session.State{Username: "gina", UserCreated: true, Loading: true}))
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, loadingMessage) {
		t.Errorf("view should show loading indicator:\n%s", view)
	}
	if strings.Contains(view, emptyMessage) {
		t.Errorf("empty message should be hidden while loading:\n%s", view)
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t, testutil.NewFakeService(), "")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should produce tea.QuitMsg")
	}
	if view := next.(Model).View(); view != "" {
		t.Errorf("view after quit = %q, want empty", view)
	}
}

func TestModelStaleSnapshotKeepsTyping(t *testing.T) {
	fake := testutil.NewFakeService()
	m, ctl := newTestModel(t, fake, "hank")
	m = send(t, m, ctl, tea.KeyMsg{Type: tea.KeyEnter})
	stale := ctl.State()

	m = typeText(t, m, ctl, "half typed")
	// A refresh that started before the keystrokes completes now.
	next, _ := m.Update(stateMsg(stale))
	m = next.(Model)

	if got := m.taskInput.Value(); got != "half typed" {
		t.Errorf("task input = %q, want %q after a stale snapshot", got, "half typed")
	}
	if got := ctl.State().Draft; got != "half typed" {
		t.Errorf("controller draft = %q, want %q", got, "half typed")
	}
}
