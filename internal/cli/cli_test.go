package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cafememo/internal/sqlite"
	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// env is an isolated config and data directory pair.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	return env{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes one CLI invocation against e and returns stdout.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWith(t, []string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
}

func (e env) runWith(t *testing.T, global []string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(global, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "cafememo %s", strings.Join(args, " "))
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "version")
	assert.Contains(t, out, "cafememo v"+Version)
	assert.Contains(t, out, modulePath)
	assert.Contains(t, out, fmt.Sprintf("schema version: %d", sqlite.SchemaVersion))

	info := decode[versionInfo](t, e.mustRun(t, "--json", "version"))
	assert.Equal(t, currentVersion(), info)
	assert.Equal(t, types.ExportVersion, info.ExportVersion)

	_, err := os.Stat(e.dataDir)
	assert.True(t, os.IsNotExist(err), "version must not create the data directory")
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "init")
	assert.Contains(t, out, "cafememo initialized")

	_, err := os.Stat(filepath.Join(e.dataDir, sqlite.DatabaseFile))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(e.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "data_dir: "+e.dataDir)

	e.mustRun(t, "init")
	again, err := os.ReadFile(filepath.Join(e.configDir, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, data, again, "existing config is kept")
}

func TestConfigDataDir(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt),
		[]byte(fmt.Sprintf("backend: sqlite\ndata_dir: %s\n", e.dataDir)), 0o644))
	t.Setenv("CAFEMEMO_DATA_DIR", filepath.Join(t.TempDir(), "ignored"))

	_, err := e.runWith(t, []string{"--config-dir", e.configDir}, "add", "--name", "From config")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(e.dataDir, sqlite.DatabaseFile))
	assert.NoError(t, err, "data_dir from config.yaml wins over the environment")
}

func TestUnknownBackend(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt),
		[]byte("backend: postgres\n"), 0o644))

	_, err := e.run(t, "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestRecordLifecycle(t *testing.T) {
	e := newEnv(t)

	created := decode[types.Cafe](t, e.mustRun(t, "--json", "add",
		"--name", " Blue Door ", "--area", "渋谷", "--rating", "4",
		"--tags", "quiet, wifi", "--memo", "  latte art  ", "--favorite"))
	assert.Equal(t, "Blue Door", created.Name)
	assert.Equal(t, "渋谷", created.Area)
	assert.Equal(t, 4, created.Rating)
	assert.Equal(t, []string{"quiet", "wifi"}, created.Tags)
	assert.Equal(t, "  latte art  ", created.Memo)
	assert.True(t, created.Favorite)

	shown := decode[types.Cafe](t, e.mustRun(t, "--json", "show", created.ID))
	if diff := cmp.Diff(created, shown); diff != "" {
		t.Errorf("show mismatch (-created +shown):\n%s", diff)
	}

	edited := decode[types.Cafe](t, e.mustRun(t, "--json", "edit", created.ID, "--favorite=false", "--rating", "5"))
	assert.False(t, edited.Favorite)
	assert.Equal(t, 5, edited.Rating)
	assert.Equal(t, created.Tags, edited.Tags, "unset flags are not part of the patch")
	assert.Equal(t, created.Memo, edited.Memo)

	text := e.mustRun(t, "show", created.ID)
	assert.Contains(t, text, "Blue Door")
	assert.Contains(t, text, "latte art")

	out := e.mustRun(t, "delete", created.ID)
	assert.Contains(t, out, created.ID)
	e.mustRun(t, "delete", created.ID)

	_, err := e.run(t, "show", created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestAddRequiresName(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "add", "--memo", "no name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestEditNeedsAField(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "edit", "some-id")
	assert.ErrorIs(t, err, errNothingToChange)
}

func TestEditMissing(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "edit", "missing", "--memo", "x")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestList(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "add", "--name", "Alpha", "--area", "渋谷", "--rating", "3", "--tags", "wifi")
	e.mustRun(t, "add", "--name", "Bravo", "--rating", "5", "--favorite")
	e.mustRun(t, "add", "--name", "Charlie", "--area", "渋谷", "--rating", "4", "--tags", "wifi,quiet")

	names := func(out string) []string {
		cafes := decode[[]types.Cafe](t, out)
		got := make([]string, len(cafes))
		for i, c := range cafes {
			got[i] = c.Name
		}
		return got
	}

	assert.Equal(t, []string{"Charlie", "Bravo", "Alpha"}, names(e.mustRun(t, "--json", "list")))
	assert.Equal(t, []string{"Charlie", "Alpha"}, names(e.mustRun(t, "--json", "list", "--tag", "wifi")))
	assert.Equal(t, []string{"Bravo"}, names(e.mustRun(t, "--json", "list", "--favorites")))
	assert.Equal(t, []string{"Charlie", "Bravo"}, names(e.mustRun(t, "--json", "list", "--min-rating", "4")))
	assert.Equal(t, []string{"Alpha", "Charlie"}, names(e.mustRun(t, "--json", "list", "--sort", "rating", "--area", "渋谷")))
	assert.Equal(t, []string{"Bravo", "Charlie", "Alpha"}, names(e.mustRun(t, "--json", "list", "--sort", "rating", "--desc")))
	assert.Equal(t, []string{"Alpha"}, names(e.mustRun(t, "--json", "list", "--text", "ALP")))

	groups := decode[[]areaGroupJSON](t, e.mustRun(t, "--json", "list", "--group"))
	require.Len(t, groups, 2)
	assert.Equal(t, "渋谷", groups[0].Area)
	assert.Len(t, groups[0].Cafes, 2)
	assert.Equal(t, types.DefaultArea, groups[1].Area)

	table := e.mustRun(t, "list")
	assert.Contains(t, table, "Alpha")
	assert.Contains(t, table, "Total: 3 cafe(s)")
}

func TestListEmpty(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun(t, "list"), "No cafes found.")
	assert.JSONEq(t, "[]", e.mustRun(t, "--json", "list"))
}

func TestListFlagValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "list", "--sort", "price", "--min-rating", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort key")
	assert.Contains(t, err.Error(), "--min-rating")

	_, err = e.run(t, "list", "--desc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--desc needs --sort")
}

func TestExportImport(t *testing.T) {
	src := newEnv(t)
	src.mustRun(t, "add", "--name", "One", "--site-url", "https://example.com/?a=1&b=2")
	src.mustRun(t, "add", "--name", "Two", "--visited-at", "2025-04-01")
	want := src.mustRun(t, "--json", "list")

	backup := filepath.Join(t.TempDir(), "backup.json")
	src.mustRun(t, "export", "-o", backup)
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 2`)

	stdout := src.mustRun(t, "export")
	doc := decode[types.ExportDocument](t, stdout)
	assert.Len(t, doc.Cafes, 2)

	dst := newEnv(t)
	res := decode[types.ImportResult](t, dst.mustRun(t, "--json", "import", backup))
	assert.Equal(t, types.ImportResult{Inserted: 2}, res)
	assert.JSONEq(t, want, dst.mustRun(t, "--json", "list"))

	merged := decode[types.ImportResult](t, dst.mustRun(t, "--json", "import", "--merge", backup))
	assert.Equal(t, types.ImportResult{Skipped: 2}, merged)

	restored := dst.mustRun(t, "import", backup)
	assert.Contains(t, restored, "2 replaced")

	raw := dst.mustRun(t, "meta", "get", types.MetaLastImportedAt)
	assert.NotEmpty(t, strings.TrimSpace(raw))
}

func TestImportMalformed(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "add", "--name", "Keep me")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"cafes": 3}`), 0o644))

	_, err := e.run(t, "import", bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
	assert.Equal(t, exitUserError, exitCode(err))

	cafes := decode[[]types.Cafe](t, e.mustRun(t, "--json", "list"))
	assert.Len(t, cafes, 1)
}

func TestImportMissingFile(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "import", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMeta(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "meta", "set", "prefs", `{"sort":"rating"}`)
	assert.JSONEq(t, `{"sort":"rating"}`, e.mustRun(t, "meta", "get", "prefs"))

	e.mustRun(t, "meta", "set", "note", "plain text")
	assert.JSONEq(t, `"plain text"`, e.mustRun(t, "meta", "get", "note"))

	assert.JSONEq(t, "2", e.mustRun(t, "meta", "get", types.MetaSchemaVersion))

	e.mustRun(t, "meta", "delete", "note")
	_, err := e.run(t, "meta", "get", "note")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitSuccess},
		{fmt.Errorf("get cafe: %w", types.ErrNotFound), exitUserError},
		{types.ErrMalformedInput, exitUserError},
		{errors.New("unknown flag: --bogus"), exitUserError},
		{fmt.Errorf("%w: reading: %w", types.ErrStorage, errors.New("disk I/O error")), exitSysError},
		{types.ErrSchemaTooNew, exitSysError},
		{systemError("write backup.json", os.ErrPermission), exitSysError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}
