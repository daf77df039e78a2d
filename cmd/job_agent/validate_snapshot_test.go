package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/job-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSnapshotCommand(t *testing.T) {
	isolateEnv(t)
	st := store.New(store.WithSeed(store.DefaultSeed(time.Now())))
	defer st.Close()
	data, err := st.MarshalSnapshot()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := execute(t, "validate-snapshot", "--in", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot is valid: 3 folders, 7 jobs, 2 messages, 0 sessions")
}

func TestValidateSnapshotCommand_Invalid(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"folders": 1, "jobs": []}`), 0o644))

	_, err := execute(t, "validate-snapshot", "--in", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot does not match the schema")
}

func TestValidateSnapshotCommand_RequiresInput(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "validate-snapshot")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestValidateSnapshotCommand_SchemaOverride(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	st := store.New(store.WithSeed(store.DefaultSeed(time.Now())))
	defer st.Close()
	data, err := st.MarshalSnapshot()
	require.NoError(t, err)
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	writeSchema := func(name, minFolders string) string {
		p := filepath.Join(dir, name)
		schema := `{"type": "object", "required": ["folders"], "properties": {"folders": {"type": "array", "minItems": ` + minFolders + `}}}`
		require.NoError(t, os.WriteFile(p, []byte(schema), 0o644))
		return p
	}

	out, err := execute(t, "validate-snapshot", "--in", path, "--schema", writeSchema("loose.schema.json", "1"))
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot is valid: 3 folders, 7 jobs")

	_, err = execute(t, "validate-snapshot", "--in", path, "--schema", writeSchema("strict.schema.json", "4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot does not match the schema (1 problems)")

	_, err = execute(t, "validate-snapshot", "--in", path, "--schema", filepath.Join(dir, "missing.schema.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema file not found")
}
