package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gtodo/internal/cli"
	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/logging"
	"gtodo/internal/service"
	"gtodo/internal/session"
	"gtodo/internal/testutil"
)

// isolate points the config directory at a temp dir and clears GTODO_*
// overrides for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"GTODO_BASE_URL", "GTODO_USERNAME", "GTODO_LOG_LEVEL", "GTODO_LOG_FILE", "GTODO_DEBUG", "GTODO_QUIET"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, logger *logging.Logger) (service.Service, error) {
		return svc, nil
	}
}

// tuiRecorder captures the username the interface was started with.
type tuiRecorder struct {
	called   bool
	username string
	err      error
}

func (r *tuiRecorder) run(ctx context.Context, ctl *session.Controller, username string) error {
	r.called = true
	r.username = username
	return r.err
}

func execute(t *testing.T, args []string, opts cli.Options) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	opts.Out = &out
	opts.Err = &errOut
	if opts.In == nil {
		opts.In = strings.NewReader("")
	}
	if opts.Factory == nil {
		opts.Factory = testFactory(testutil.NewFakeService())
	}
	if opts.TUI == nil {
		opts.TUI = (&tuiRecorder{}).run
	}
	code = cli.Execute(context.Background(), args, opts)
	return code, out.String(), errOut.String()
}

func TestExecuteVersion(t *testing.T) {
	isolate(t)
	code, stdout, stderr := execute(t, []string{"version"}, cli.Options{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "gtodo "+cli.Version+"\n" {
		t.Errorf("expected version line, got %q", stdout)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	isolate(t)
	code, _, stderr := execute(t, []string{"bogus"}, cli.Options{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, `error: unknown command "bogus"`) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestExecuteUnknownFlag(t *testing.T) {
	isolate(t)
	code, _, stderr := execute(t, []string{"--nope"}, cli.Options{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown flag: --nope\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestExecuteConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad scheme", []string{"--base-url", "ftp://example.com", "shell"}, "invalid base_url"},
		{"relative url", []string{"--base-url", "todo", "shell"}, "invalid base_url"},
		{"bad level", []string{"--log-level", "LOUD", "shell"}, "invalid log.level"},
		{"missing file", []string{"--config", "/nonexistent/gtodo.yaml", "shell"}, "failed to read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			code, _, stderr := execute(t, tt.args, cli.Options{})
			if code != exitcode.ConfigError {
				t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected stderr to contain %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestExecuteRootStartsInterface(t *testing.T) {
	isolate(t)
	rec := &tuiRecorder{}
	code, _, stderr := execute(t, []string{"--user", "bob"}, cli.Options{TUI: rec.run})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !rec.called {
		t.Fatal("interface was not started")
	}
	if rec.username != "bob" {
		t.Errorf("expected username bob, got %q", rec.username)
	}
}

func TestExecuteInterfaceFailure(t *testing.T) {
	isolate(t)
	rec := &tuiRecorder{err: errors.New("no tty")}
	code, _, stderr := execute(t, nil, cli.Options{TUI: rec.run})

	if code != exitcode.RuntimeError {
		t.Errorf("expected exit code %d, got %d", exitcode.RuntimeError, code)
	}
	if stderr != "error: no tty\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestExecuteFactoryFailure(t *testing.T) {
	isolate(t)
	factory := func(ctx context.Context, cfg *config.Config, logger *logging.Logger) (service.Service, error) {
		return nil, errors.New("dial failed")
	}
	code, _, stderr := execute(t, []string{"shell"}, cli.Options{Factory: factory})

	if code != exitcode.RuntimeError {
		t.Errorf("expected exit code %d, got %d", exitcode.RuntimeError, code)
	}
	// Without --log-file the shell also logs the failure to stderr.
	if !strings.HasSuffix(stderr, "error: backend error: dial failed\n") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestExecuteConfigPrecedence(t *testing.T) {
	dir := isolate(t)
	cfgFile := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(cfgFile, []byte("username: from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &tuiRecorder{}
	execute(t, []string{"--config", cfgFile}, cli.Options{TUI: rec.run})
	if rec.username != "from-file" {
		t.Errorf("config file: expected from-file, got %q", rec.username)
	}

	t.Setenv("GTODO_USERNAME", "from-env")
	execute(t, []string{"--config", cfgFile}, cli.Options{TUI: rec.run})
	if rec.username != "from-env" {
		t.Errorf("env: expected from-env, got %q", rec.username)
	}

	execute(t, []string{"--config", cfgFile, "--user", "from-flag"}, cli.Options{TUI: rec.run})
	if rec.username != "from-flag" {
		t.Errorf("flag: expected from-flag, got %q", rec.username)
	}
}

func TestExecuteEnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("GTODO_USERNAME=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &tuiRecorder{}
	execute(t, nil, cli.Options{TUI: rec.run, EnvFile: envFile})
	if rec.username != "from-dotenv" {
		t.Errorf("expected from-dotenv, got %q", rec.username)
	}
}

func TestExecuteWritesLogFile(t *testing.T) {
	dir := isolate(t)
	logFile := filepath.Join(dir, "gtodo.log")

	code, _, _ := execute(t, []string{"--log-file", logFile, "--debug"}, cli.Options{})
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"config loaded"`) {
		t.Errorf("expected debug entry in log, got %q", data)
	}
}

func TestExecuteDefaultLogLocation(t *testing.T) {
	dir := isolate(t)
	execute(t, nil, cli.Options{})

	if _, err := os.Stat(filepath.Join(dir, config.AppName, config.LogFileName)); err != nil {
		t.Errorf("expected log in config dir: %v", err)
	}
}

func TestExecuteShellAgainstRemoteServer(t *testing.T) {
	dir := isolate(t)
	logFile := filepath.Join(dir, "shell.log")
	srv := testutil.NewRemoteServer()
	defer srv.Close()
	srv.SeedTask("alice", "walk dog", true)

	in := strings.NewReader("user alice\nadd buy milk\nquit\n")
	code, stdout, stderr := execute(t,
		[]string{"--base-url", srv.URL, "--log-file", logFile, "--quiet", "shell"},
		cli.Options{In: in, Factory: cli.RemoteFactory},
	)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	// alice already exists on the server, so creation fails and the shell
	// stays locked.
	if !strings.Contains(stderr, "create a user first") {
		t.Errorf("expected gate error for existing user, got %q", stderr)
	}
	if strings.Contains(stdout, "buy milk") {
		t.Errorf("task should not be added, got %q", stdout)
	}

	in = strings.NewReader("user carol\nadd buy milk\nquit\n")
	code, stdout, stderr = execute(t,
		[]string{"--base-url", srv.URL, "--log-file", logFile, "--quiet", "shell"},
		cli.Options{In: in, Factory: cli.RemoteFactory},
	)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "   1  buy milk\n") {
		t.Errorf("expected new task in output, got %q", stdout)
	}

	var methods []string
	for _, r := range srv.Requests() {
		if strings.HasSuffix(r.Path, "/carol") {
			methods = append(methods, r.Method+" "+r.Path)
		}
	}
	want := []string{"POST /users/carol", "GET /users/carol", "POST /todos/carol", "GET /users/carol"}
	if strings.Join(methods, ",") != strings.Join(want, ",") {
		t.Errorf("requests = %v, want %v", methods, want)
	}
}

func TestExecuteShellLogsToStderr(t *testing.T) {
	dir := isolate(t)
	svc := testutil.NewFakeService()
	svc.CreateUserErr = errors.New("boom")

	code, _, stderr := execute(t, []string{"--quiet", "shell"}, cli.Options{
		In:      strings.NewReader("user alice\n"),
		Factory: testFactory(svc),
	})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, `"msg":"create user failed"`) {
		t.Errorf("expected failure logged to stderr, got %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, config.AppName, config.LogFileName)); !os.IsNotExist(err) {
		t.Errorf("shell should not write the default log file, stat err = %v", err)
	}
}

func TestExecuteShellLogFile(t *testing.T) {
	dir := isolate(t)
	logFile := filepath.Join(dir, "shell.log")
	svc := testutil.NewFakeService()
	svc.CreateUserErr = errors.New("boom")

	_, _, stderr := execute(t, []string{"--quiet", "--log-file", logFile, "shell"}, cli.Options{
		In:      strings.NewReader("user alice\n"),
		Factory: testFactory(svc),
	})

	if stderr != "" {
		t.Errorf("expected no stderr with --log-file, got %q", stderr)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"create user failed"`) {
		t.Errorf("expected failure in log file, got %q", data)
	}
}

func TestExecuteLogFileMissingDir(t *testing.T) {
	dir := isolate(t)
	code, _, stderr := execute(t, []string{"--log-file", filepath.Join(dir, "missing", "x.log")}, cli.Options{})

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.Contains(stderr, "failed to open log") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
