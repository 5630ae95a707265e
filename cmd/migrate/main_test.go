package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "up", opts.cmd)

	_, err = parseFlags([]string{"-cmd", "create"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"-cmd", "version"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"-cmd", "explode"})
	assert.Error(t, err)

	opts, err = parseFlags([]string{"-cmd", "version", "-version", "20260301090000"})
	require.NoError(t, err)
	assert.Equal(t, "20260301090000", opts.version)
}

func TestRunCreateAndValidateSkipDatabase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(context.Background(), options{cmd: "create", dir: dir, name: "add ratings"}))

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_ratings.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.NoError(t, run(context.Background(), options{cmd: "validate", dir: dir}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.sql"), []byte("-- +goose Up\n"), 0o644))
	assert.Error(t, run(context.Background(), options{cmd: "validate", dir: dir}))
}
