package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSnapshotName(t *testing.T) {
	date := time.Date(2022, 6, 3, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, "10.0.0.1-Lab-2022-06-03.json", snapshotName("10.0.0.1", "Lab", date))
}

func TestSnapshots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	none, err := listSnapshots(dir)
	require.NoError(t, err)
	assert.Empty(t, none)

	fn, err := createNewSnapshot(dir, "10.0.0.1", "Lab", []byte(`{"imdata":[{"fvTenant":{"attributes":{"name":"Lab"}}}]}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(fn), "10.0.0.1-Lab-"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0-old.json"), []byte(`{}`), 0644))

	list, err := listSnapshots(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0-old.json", filepath.Base(fn)}, list)

	data, path, err := readSnapshot(dir, filepath.Base(fn))
	require.NoError(t, err)
	assert.Equal(t, fn, path)
	assert.Equal(t, "Lab", gjson.GetBytes(data, "imdata.0.fvTenant.attributes.name").String())
	assert.Contains(t, string(data), "\n  ")

	_, _, err = readSnapshot(dir, "missing.json")
	assert.Error(t, err)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "10.0.0.1-Lab-2022-06-03", baseName("data/10.0.0.1-Lab-2022-06-03.json"))
}
