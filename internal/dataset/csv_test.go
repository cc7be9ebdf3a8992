package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile(t *testing.T) {
	path := writeTempCSV(t, "name,age\nAlice,30\n\"Smith, Bob\",25\n")

	ds, err := ReadFile(path, ',')
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"name", "age"}, ds.Schema.ColumnNames())
	assert.Equal(t, TypeString, ds.Schema.Columns[0].Type)
	assert.Equal(t, TypeNumber, ds.Schema.Columns[1].Type)
	assert.Equal(t, Row{"Smith, Bob", "25"}, ds.Rows[1])
}

func TestReadFileEmpty(t *testing.T) {
	path := writeTempCSV(t, "")

	_, err := ReadFile(path, ',')
	require.Error(t, err)
	assert.IsType(t, &ErrSchema{}, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), ',')
	assert.Error(t, err)
}

func TestReadFileCustomDelimiter(t *testing.T) {
	path := writeTempCSV(t, "name;age\nAlice;30\n")

	ds, err := ReadFile(path, ';')
	require.NoError(t, err)
	assert.Equal(t, Row{"Alice", "30"}, ds.Rows[0])
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "expanded_people.csv"), DefaultOutputPath(filepath.Join("data", "people.csv")))
	assert.Equal(t, "expanded_people.csv", DefaultOutputPath("people.csv"))
}

func TestWriterSyncIncremental(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")

	ds := New(testSchema(t), []Row{{"Alice", "30"}})
	w, err := NewWriter(outPath, ds.Schema, ',')
	require.NoError(t, err)

	require.NoError(t, w.Sync(ds))
	assert.Equal(t, 1, w.Written())

	ds.Append(Row{"Bob", "25"})
	require.NoError(t, w.Sync(ds))
	require.NoError(t, w.Close())

	// Rows already persisted must not be written twice.
	reread, err := ReadFile(outPath, ',')
	require.NoError(t, err)
	assert.Equal(t, 2, reread.Len())
	assert.Equal(t, []string{"name", "age"}, reread.Schema.ColumnNames())
}
