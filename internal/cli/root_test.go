package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/core"
)

type result struct {
	stdout, stderr string
	err            error
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func jsonData[T any](t *testing.T, r result) T {
	t.Helper()
	require.NoError(t, r.err, r.stderr)
	var resp struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &resp), r.stdout)
	assert.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "finctl", cmd.Use)

	for _, path := range [][]string{{"migrate"}, {"categories", "list"}, {"categories", "add"}, {"categories", "rename"}, {"categories", "delete"}, {"categories", "seed"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestInvalidFormat(t *testing.T) {
	r := execute(t, "--db", filepath.Join(t.TempDir(), "f.db"), "--format", "yaml", "migrate")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "invalid format")
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nested", "finbot.db")

	status := jsonData[MigrationStatus](t, execute(t, "--db", db, "--format", "json", "migrate"))
	assert.Equal(t, uint(1), status.Version)
	assert.False(t, status.Dirty)

	r := execute(t, "--db", db, "migrate")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "schema version 1")
}

func TestCategoriesLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "finbot.db")
	run := func(args ...string) result {
		return execute(t, append([]string{"--db", db, "--format", "json"}, args...)...)
	}

	food := jsonData[core.Category](t, run("categories", "add", "Food"))
	assert.Equal(t, int64(1), food.ID)

	r := run("categories", "add", "Food")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "conflict_error")

	renamed := jsonData[core.Category](t, run("categories", "rename", "1", "Groceries"))
	assert.Equal(t, "Groceries", renamed.Name)

	list := jsonData[[]core.Category](t, run("categories", "list"))
	assert.Equal(t, []core.Category{{ID: 1, Name: "Groceries"}}, list)

	jsonData[map[string]int64](t, run("categories", "delete", "1"))

	r = run("categories", "delete", "1")
	require.Error(t, r.err)
	assert.Contains(t, r.stdout, "not_found_error")

	r = run("categories", "rename", "abc", "x")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}

func TestCategoriesTextOutput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "finbot.db")

	r := execute(t, "--db", db, "categories", "add", "Food")
	require.NoError(t, r.err)
	assert.Equal(t, "created category 1 \"Food\"\n", r.stdout)

	r = execute(t, "--db", db, "categories", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "1\tFood\n", r.stdout)

	r = execute(t, "--db", db, "categories", "delete", "7")
	require.Error(t, r.err)
	assert.Contains(t, r.stderr, "Error: category 7 not found")
}

func TestCategoriesSeed(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "finbot.db")
	seedPath := filepath.Join(dir, "categories.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte("categories:\n  - Food\n  - Transport\n"), 0o644))

	created := jsonData[[]core.Category](t, execute(t, "--db", db, "--format", "json", "categories", "seed", seedPath))
	assert.Len(t, created, 2)

	created = jsonData[[]core.Category](t, execute(t, "--db", db, "--format", "json", "categories", "seed", seedPath))
	assert.Empty(t, created)
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	seed, err := LoadSeedFile(write("ok.yaml", "categories: [Food, Rent]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Rent"}, seed.Categories)

	_, err = LoadSeedFile(write("typo.yaml", "category:\n  - Food\n"))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = LoadSeedFile(write("empty.yaml", ""))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = LoadSeedFile(write("none.yaml", "categories: []\n"))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = LoadSeedFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
