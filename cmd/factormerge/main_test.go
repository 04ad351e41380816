package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/factormerge/blobstore"
	"github.com/hupe1980/factormerge/model"
	"github.com/hupe1980/factormerge/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("FACTORMERGE_CONFIG", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeInputs(t *testing.T, dir string) {
	t.Helper()
	ctx := context.Background()
	s := store.New(blobstore.NewLocalStore(dir))

	require.NoError(t, s.Save(ctx, model.New(
		model.Vectors{1: {1, 0}, 2: {0, 1}},
		model.Vectors{10: {1, 1}, 20: {2, 0}},
		nil,
	), "a.fm"))
	require.NoError(t, s.Save(ctx, model.New(
		model.Vectors{10: {1, 0}, 20: {0, 1}},
		model.Vectors{100: {5, 5}},
		nil,
	), "b.fm"))
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	textfile := filepath.Join(dir, "metrics.prom")
	t.Setenv("FACTORMERGE_METRICS__TEXTFILE", textfile)

	stdout, _, err := execute(t,
		filepath.Join(dir, "a.fm"),
		filepath.Join(dir, "b.fm"),
		"file://"+filepath.ToSlash(filepath.Join(dir, "out", "merged.fm")),
		"--workers", "2",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "merged 2 rows (dim 2) and 1 columns, 2 shared ids")

	merged, err := store.New(blobstore.NewLocalStore(filepath.Join(dir, "out"))).Load(context.Background(), "merged.fm")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, merged.X[1])
	assert.Equal(t, []float32{1, 0}, merged.X[2])

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "factormerge_merge_shared_ids 2")
}

func TestMergeCommand_Args(t *testing.T) {
	_, _, err := execute(t, "a", "b")
	assert.Error(t, err)
}

func TestMergeCommand_MissingInputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "merged.fm")

	_, _, err := execute(t, filepath.Join(dir, "nope.fm"), filepath.Join(dir, "b.fm"), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load model A")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestMergeCommand_MinOverlapFlag(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)

	// Full overlap passes any threshold.
	_, _, err := execute(t,
		filepath.Join(dir, "a.fm"), filepath.Join(dir, "b.fm"), filepath.Join(dir, "m.fm"),
		"--min-overlap", "1",
	)
	require.NoError(t, err)

	_, _, err = execute(t,
		filepath.Join(dir, "a.fm"), filepath.Join(dir, "b.fm"), filepath.Join(dir, "m.fm"),
		"--min-overlap", "2",
	)
	assert.ErrorContains(t, err, "MinOverlap")
}

func TestMergeCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	cfgPath := filepath.Join(dir, "factormerge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  format: json\nlog:\n  level: error\n"), 0o600))

	_, stderr, err := execute(t,
		"--config", cfgPath,
		filepath.Join(dir, "a.fm"), filepath.Join(dir, "b.fm"), filepath.Join(dir, "m.json"),
	)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	data, err := os.ReadFile(filepath.Join(dir, "m.json"))
	require.NoError(t, err)
	assert.Equal(t, byte('{'), data[0])
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)

	stdout, _, err := execute(t, "inspect", filepath.Join(dir, "a.fm"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "rows=2 row_dim=2 columns=2 column_dim=2")

	stdout, _, err = execute(t, "inspect", "--json", filepath.Join(dir, "b.fm"))
	require.NoError(t, err)
	assert.Contains(t, stdout, `"rows": 2`)
	assert.Contains(t, stdout, `"columns": 1`)
	assert.Contains(t, stdout, `"column_dim": 2`)
}

func TestInspectCommand_Foreign(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.bin")
	require.NoError(t, os.WriteFile(path, []byte("\xac\xed\x00\x05java"), 0o600))

	_, _, err := execute(t, "inspect", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}
