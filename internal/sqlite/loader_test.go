package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, dir string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dir, databaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, createSchema(db))
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestLoadAllJSONL(t *testing.T) {
	dir := t.TempDir()
	db := openTestDB(t, dir)

	elements := `{"element_id":"a","class":"Package","created_at":"2026-01-01T00:00:00Z"}
{"element_id":"a","class":"Block","created_at":"2026-01-02T00:00:00Z"}
{"element_id":"b","class":"Block","created_at":"2026-01-01T00:00:00Z","extra":[1,2]}
{"element_id":"c","class":"Block"}
garbage
`
	values := `{"element_id":"a","property":"packagedElement","ordinal":0,"value_type":"ref","value":"b"}
{"element_id":"a","property":"packagedElement","ordinal":0,"value_type":"ref","value":"b"}
{"element_id":"b","property":"name","ordinal":0,"value_type":"string","value":"Frame"}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, elementsJSONL), []byte(elements), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, elementValuesJSONL), []byte(values), 0o644))

	require.NoError(t, loadAllJSONL(db, dir))

	assert.Equal(t, 2, countRows(t, db, "elements"), "duplicate ids and missing columns are skipped")
	assert.Equal(t, 2, countRows(t, db, "element_values"), "duplicate keys are skipped")

	var class string
	require.NoError(t, db.QueryRow("SELECT class FROM elements WHERE element_id = 'a'").Scan(&class))
	assert.Equal(t, "Package", class, "first record wins")
}

func TestLoadAllJSONLEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	db := openTestDB(t, dir)
	require.NoError(t, initJSONLFiles(dir))

	require.NoError(t, loadAllJSONL(db, dir))
	assert.Zero(t, countRows(t, db, "elements"))
}

func TestLoadAllJSONLMissingFile(t *testing.T) {
	dir := t.TempDir()
	db := openTestDB(t, dir)

	assert.Error(t, loadAllJSONL(db, dir))
}
