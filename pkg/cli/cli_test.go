package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/config"
	"github.com/platinummonkey/apicheck/pkg/observability"
)

const (
	oldAPI = `package p {
  class public C {
    method public void run();
  }
}
`
	removedAPI = `package p {
  class public C {
  }
}
`
	canonicalOldAPI = "package p {\n\n  class public C {\n    method public void run();\n  }\n\n}\n\n"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	*Env
	dir    string
	root   string
	stdout *syncBuffer
	stderr *syncBuffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "baselines")
	t.Setenv("APICHECK_FILESYSTEM_ROOT", root)
	t.Setenv("APICHECK_STORAGE_TYPE", "filesystem")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Env{
		Stdout: stdout,
		Stderr: stderr,
		Config: cfg,
		Logger: observability.NewLogger(observability.ErrorLevel, stderr),
	}
	return &testEnv{Env: env, dir: dir, root: root, stdout: stdout, stderr: stderr}
}

func (e *testEnv) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (e *testEnv) run(args ...string) error {
	return NewRootCommand(e.Env).Execute(context.Background(), args)
}

func TestRoot_Usage(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.run())
	usage := env.stderr.String()
	for _, name := range []string{"check", "format", "kinds", "serve", "update-baseline", "watch"} {
		assert.Contains(t, usage, "  "+name)
	}
	assert.Less(t, strings.Index(usage, "  check"), strings.Index(usage, "  watch"))

	err := env.run("frobnicate")
	assert.EqualError(t, err, "unknown command: frobnicate")

	assert.NoError(t, env.run("check", "-h"))
}

func TestCheck_PassAndFail(t *testing.T) {
	env := newTestEnv(t)
	oldPath := env.file(t, "old.txt", oldAPI)
	samePath := env.file(t, "same.txt", oldAPI)
	removedPath := env.file(t, "removed.txt", removedAPI)

	require.NoError(t, env.run("check", "--old", oldPath, "--new", samePath))
	assert.Contains(t, env.stdout.String(), "PASSED, 0 error(s), 0 warning(s), 0 hidden")

	err := env.run("check", "--old", oldPath, "--new", removedPath)
	assert.ErrorIs(t, err, checker.ErrIncompatible)
	out := env.stdout.String()
	assert.Contains(t, out, "p.C.run(): error: ")
	assert.Contains(t, out, "[MemberRemoved:10]")
	assert.Contains(t, out, "FAILED, 1 error(s)")

	assert.NoError(t, env.run("check", "--old", oldPath, "--new", removedPath, "--hide", "MemberRemoved"))
}

func TestCheck_JSON(t *testing.T) {
	env := newTestEnv(t)
	oldPath := env.file(t, "old.txt", oldAPI)
	removedPath := env.file(t, "removed.txt", removedAPI)

	err := env.run("check", "--old", oldPath, "--new", removedPath, "--format", "json")
	require.ErrorIs(t, err, checker.ErrIncompatible)

	var out struct {
		RunID  string `json:"run_id"`
		New    string `json:"new"`
		Report struct {
			ErrorCount int `json:"error_count"`
			Entries    []struct {
				Kind     string `json:"kind"`
				Location string `json:"location"`
				Severity string `json:"severity"`
			} `json:"entries"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(env.stdout.String()), &out))
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, removedPath, out.New)
	assert.Equal(t, 1, out.Report.ErrorCount)
	require.Len(t, out.Report.Entries, 1)
	assert.Equal(t, "MemberRemoved", out.Report.Entries[0].Kind)
	assert.Equal(t, "p.C.run()", out.Report.Entries[0].Location)
	assert.Equal(t, "error", out.Report.Entries[0].Severity)

	assert.Error(t, env.run("check", "--old", oldPath, "--new", removedPath, "--format", "yaml"))
}

func TestCheck_FlagErrors(t *testing.T) {
	env := newTestEnv(t)
	newPath := env.file(t, "new.txt", oldAPI)

	assert.EqualError(t, env.run("check", "--old", newPath), "--new is required")
	assert.EqualError(t, env.run("check", "--new", newPath), "one of --old or --module is required")
	assert.EqualError(t, env.run("check", "--new", newPath, "--old", newPath, "--module", "m"),
		"--old and --module are mutually exclusive")
	assert.EqualError(t, env.run("check", "--all"), "--all requires --current-root")
	assert.Error(t, env.run("check", "--old", newPath, "--new", newPath, "--hide", "NoSuchKind"))
}

func TestUpdateBaselineThenCheckModule(t *testing.T) {
	env := newTestEnv(t)
	oldPath := env.file(t, "old.txt", oldAPI)
	removedPath := env.file(t, "removed.txt", removedAPI)

	require.NoError(t, env.run("update-baseline", "--module", "core/widget", "--new", oldPath))
	assert.Contains(t, env.stdout.String(), "updated filesystem baseline for core/widget (1 classes)")

	stored, err := os.ReadFile(filepath.Join(env.root, "core", "widget", "current.txt"))
	require.NoError(t, err)
	assert.Equal(t, canonicalOldAPI, string(stored))

	assert.NoError(t, env.run("check", "--module", "core/widget", "--new", oldPath))
	assert.ErrorIs(t, env.run("check", "--module", "core/widget", "--new", removedPath), checker.ErrIncompatible)
	assert.Error(t, env.run("check", "--module", "missing", "--new", oldPath))
}

func TestUpdateBaseline_Accept(t *testing.T) {
	env := newTestEnv(t)
	oldPath := env.file(t, "old.txt", oldAPI)
	removedPath := env.file(t, "removed.txt", removedAPI)
	acceptedPath := filepath.Join(env.dir, "api", "accepted.txt")

	require.NoError(t, env.run("update-baseline", "--old", oldPath, "--new", removedPath, "--accept", acceptedPath))
	assert.Contains(t, env.stdout.String(), "accepted 1 finding(s) in "+acceptedPath)

	data, err := os.ReadFile(acceptedPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MemberRemoved p.C.run()\n")

	require.NoError(t, env.run("check", "--old", oldPath, "--new", removedPath, "--accepted", acceptedPath, "--verbose"))
	assert.Contains(t, env.stdout.String(), "(accepted)")

	assert.EqualError(t, env.run("update-baseline", "--new", oldPath), "one of --module or --accept is required")
	assert.EqualError(t, env.run("update-baseline", "--module", "m"), "--new is required")
}

func TestCheck_All(t *testing.T) {
	env := newTestEnv(t)
	oldPath := env.file(t, "old.txt", oldAPI)
	env.file(t, "current/a/current.txt", oldAPI)
	env.file(t, "current/b/current.txt", removedAPI)

	require.NoError(t, env.run("update-baseline", "--module", "a", "--new", oldPath))
	require.NoError(t, env.run("update-baseline", "--module", "b", "--new", oldPath))

	err := env.run("check", "--all", "--current-root", filepath.Join(env.dir, "current"))
	assert.ErrorIs(t, err, checker.ErrIncompatible)
	out := env.stdout.String()
	assert.Contains(t, out, "a: PASSED")
	assert.Contains(t, out, "b: FAILED")
}

func TestFormat(t *testing.T) {
	env := newTestEnv(t)
	path := env.file(t, "api.txt", oldAPI)

	require.NoError(t, env.run("format", path))
	assert.Equal(t, canonicalOldAPI, env.stdout.String())

	err := env.run("format", "-check", path)
	assert.EqualError(t, err, "1 file(s) not in canonical form")

	require.NoError(t, env.run("format", "-w", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, canonicalOldAPI, string(data))

	assert.NoError(t, env.run("format", "-check", path))
	assert.Error(t, env.run("format"))
	assert.Error(t, env.run("format", env.file(t, "bad.txt", "package p {")))
}

func TestKinds(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.run("kinds", "--hide", "MemberRemoved", "--werror", "--error", "ClassAdded"))

	rows := map[string][]string{}
	for _, line := range strings.Split(strings.TrimSpace(env.stdout.String()), "\n") {
		fields := strings.Fields(line)
		require.Len(t, fields, 4, line)
		rows[fields[1]] = fields
	}
	assert.Len(t, rows, 22)
	assert.Equal(t, []string{"10", "MemberRemoved", "error", "hidden"}, rows["MemberRemoved"])
	assert.Equal(t, []string{"17", "ConstantValueChanged", "warning", "error"}, rows["ConstantValueChanged"])
	assert.Equal(t, []string{"19", "ClassAdded", "info", "error"}, rows["ClassAdded"])
	assert.Equal(t, []string{"20", "MemberAdded", "info", "info"}, rows["MemberAdded"])
}

func TestWatch(t *testing.T) {
	env := newTestEnv(t)
	oldPath := env.file(t, "old.txt", oldAPI)
	newPath := env.file(t, "new.txt", oldAPI)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRootCommand(env.Env).Execute(ctx, []string{"watch", "--old", oldPath, "--new", newPath, "--debounce", "10ms"})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(env.stdout.String(), "PASSED")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(newPath, []byte(removedAPI), 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(env.stdout.String(), "FAILED")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(newPath, []byte("package p {"), 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(env.stdout.String(), "error: failed to load new API")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestNewHTTPServer(t *testing.T) {
	env := newTestEnv(t)

	srv, shutdown, err := env.newHTTPServer(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", srv.Addr)
	assert.Equal(t, env.Config.Server.ReadTimeout, srv.ReadTimeout)
	require.NotNil(t, srv.Handler)
	assert.NoError(t, shutdown.Shutdown())
}
