package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cfgstore/internal/config"
	"cfgstore/internal/config/filestore"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp creates an App around a store for name in a temp dir. The
// file is written with content first unless content is empty.
func setupTestApp(t *testing.T, name, content string) (*App, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	store, _ := filestore.New(path, config.Detect, nil)

	var out bytes.Buffer
	app := &App{
		Store:  store,
		Logger: zerolog.Nop(),
		Out:    &out,
		Err:    &out,
	}
	return app, &out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestGet(t *testing.T) {
	app, out := setupTestApp(t, "plugin.yml", "name: srv\ndb:\n  host: localhost\n")

	cmd := newGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"name"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "srv\n", out.String())

	out.Reset()
	cmd = newGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"db"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "{\"host\":\"localhost\"}\n", out.String())
}

func TestGet_NotSet(t *testing.T) {
	app, out := setupTestApp(t, "plugin.yml", "name: srv\n")

	cmd := newGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"missing"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "missing (not set)", strings.TrimSpace(out.String()))
}

func TestGet_JSONPresentFalse(t *testing.T) {
	app, out := setupTestApp(t, "server.properties", "pvp=off\n")
	app.JSON = true

	cmd := newGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"pvp"})
	require.NoError(t, cmd.Execute())

	var result map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, map[string]any{"key": "pvp", "value": false, "set": true}, result)
}

func TestSet_ParsesValues(t *testing.T) {
	app, out := setupTestApp(t, "settings.json", `{"motd": "hi"}`)

	for _, args := range [][]string{
		{"port", "8080"},
		{"tags", "[a, b]"},
		{"motd", "hello world"},
		{"debug", "false"},
	} {
		cmd := newSetCmd(NewTestProvider(app))
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute(), "set %v", args)
	}
	assert.Contains(t, out.String(), "Set port = 8080\n")
	assert.Contains(t, out.String(), "Set tags = [\"a\",\"b\"]\n")

	doc, err := filestore.ReadDocument(app.Store.Path(), config.Detect)
	require.NoError(t, err)
	want := map[string]any{
		"motd":  "hello world",
		"port":  int64(8080),
		"tags":  []any{"a", "b"},
		"debug": false,
	}
	if diff := cmp.Diff(want, doc.ToMap()); diff != "" {
		t.Errorf("saved document mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"motd", "port", "tags", "debug"}, doc.Keys())
}

func TestSet_NestedMapping(t *testing.T) {
	app, _ := setupTestApp(t, "plugin.yml", "")

	cmd := newSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"database", "{host: localhost, port: 3306}"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "database:\n  host: localhost\n  port: 3306\n", readFile(t, app.Store.Path()))
}

func TestSet_NotWellFormed(t *testing.T) {
	app, _ := setupTestApp(t, "server.cfg", "motd=hi\n")

	cmd := newSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"motd", "bye"})
	err := cmd.Execute()
	require.ErrorIs(t, err, errNotWellFormed)
	assert.Equal(t, "motd=hi\n", readFile(t, app.Store.Path()))
}

func TestAddAndUnset_Enum(t *testing.T) {
	app, out := setupTestApp(t, "ops.txt", "alice\n")

	cmd := newAddCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"bob", "carol"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Added bob, carol\n", out.String())
	assert.Equal(t, "alice\r\nbob\r\ncarol", readFile(t, app.Store.Path()))

	cmd = newUnsetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"alice", "nobody"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "bob\r\ncarol", readFile(t, app.Store.Path()))
}

func TestList(t *testing.T) {
	app, out := setupTestApp(t, "server.properties", "b=1\na=2\n")

	cmd := newListCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Configuration:\n  b = 1\n  a = 2\n", out.String())

	out.Reset()
	cmd = newListCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--sort", "--keys"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "a\nb\n", out.String())
}

func TestList_JSONKeepsOrder(t *testing.T) {
	app, out := setupTestApp(t, "server.properties", "b=1\na=on\n")
	app.JSON = true

	cmd := newListCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "{\"b\":\"1\",\"a\":true}\n", out.String())
}

func TestList_Empty(t *testing.T) {
	app, out := setupTestApp(t, "settings.json", "")

	cmd := newListCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "No configuration set\n", out.String())

	out.Reset()
	app.JSON = true
	cmd = newListCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--keys"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "[]\n", out.String())
}

func TestExists(t *testing.T) {
	app, out := setupTestApp(t, "ops.txt", "Alice\n")

	cmd := newExistsCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"alice"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "false\n", out.String())

	out.Reset()
	cmd = newExistsCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"-i", "alice"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "true\n", out.String())
}

func TestCheck(t *testing.T) {
	app, out := setupTestApp(t, "plugin.yaml", "a: 1\n")

	cmd := newCheckCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "OK ")
	assert.Contains(t, out.String(), "(yaml, 1 keys)")
}

func TestCheck_NotWellFormed(t *testing.T) {
	app, out := setupTestApp(t, "server.cfg", "motd=hi\n")

	cmd := newCheckCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	require.ErrorIs(t, cmd.Execute(), errNotWellFormed)

	out.Reset()
	app.JSON = true
	cmd = newCheckCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	var result map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, false, result["well_formed"])
	assert.Equal(t, "detect", result["format"])
}

func TestReload(t *testing.T) {
	app, out := setupTestApp(t, "settings.json", `{"a": 1}`)
	require.NoError(t, os.WriteFile(app.Store.Path(), []byte(`{"a": 1, "b": 2}`), 0644))

	cmd := newReloadCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "(json, 2 keys)")
	assert.True(t, app.Store.Exists("b"))
}

func TestConvert(t *testing.T) {
	app, out := setupTestApp(t, "server.properties", "pvp=on\nmotd=hi\n")
	dest := filepath.Join(t.TempDir(), "server.yml")

	cmd := newConvertCmd(NewTestProvider(app))
	cmd.SetArgs([]string{dest})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "(properties) to "+dest+" (yaml)")
	assert.Equal(t, "pvp: true\nmotd: hi\n", readFile(t, dest))
}

func TestConvert_ExplicitFormat(t *testing.T) {
	app, _ := setupTestApp(t, "ops.txt", "alice\nbob\n")
	dest := filepath.Join(t.TempDir(), "ops.out")

	cmd := newConvertCmd(NewTestProvider(app))
	cmd.SetArgs([]string{dest, "--to", "json"})
	require.NoError(t, cmd.Execute())

	doc, err := filestore.ReadDocument(dest, config.JSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"alice": true, "bob": true}, doc.ToMap())
}

func TestConvert_UnknownDestination(t *testing.T) {
	app, _ := setupTestApp(t, "ops.txt", "alice\n")

	cmd := newConvertCmd(NewTestProvider(app))
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "ops.cfg")})
	assert.Error(t, cmd.Execute())
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"42", 42},
		{"1.5", 1.5},
		{"plain text", "plain text"},
		{"", ""},
		{"# only a comment", "# only a comment"},
		{"[x, 1]", []any{"x", 1}},
		{"a: b: c", "a: b: c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseValue(tt.raw), "parseValue(%q)", tt.raw)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(m))
}

func TestSet_NonStringKeys(t *testing.T) {
	app, _ := setupTestApp(t, "settings.json", `{}`)

	cmd := newSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"x", "{1: a, true: b}"})
	require.NoError(t, cmd.Execute())

	doc, err := filestore.ReadDocument(app.Store.Path(), config.Detect)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": map[string]any{"1": "a", "true": "b"}}, doc.ToMap())
}

func TestSet_EncodeFailure(t *testing.T) {
	app, _ := setupTestApp(t, "settings.json", `{"a": 1}`)

	cmd := newSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"ratio", ".nan"})
	err := cmd.Execute()
	require.ErrorIs(t, err, errEncode)
	assert.NotErrorIs(t, err, errNotWellFormed)
	assert.True(t, app.Store.Check())
	assert.Equal(t, `{"a": 1}`, readFile(t, app.Store.Path()))
}
