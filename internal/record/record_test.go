package record

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizukoshi/sqlengine/internal/catalog"
	"github.com/mizukoshi/sqlengine/internal/store"
	"github.com/mizukoshi/sqlengine/internal/value"
)

func newTestStore(t *testing.T) (*store.Store, *catalog.Catalog) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	cat := catalog.New(s)
	return s, cat
}

func testSchema() *catalog.Schema {
	return &catalog.Schema{
		Table: "a",
		Columns: []catalog.Column{
			{Name: "id", Type: value.IntType()},
			{Name: "name", Type: value.CharType(5), Nullable: true},
			{Name: "joined", Type: value.DateType(), Nullable: true},
		},
	}
}

func TestInsertAndScanRoundTrip(t *testing.T) {
	s, cat := newTestStore(t)
	rec := New(s, cat)
	schema := testSchema()

	id, err := rec.Insert(schema, map[string]value.Value{
		"id": value.Int(1), "name": value.Char("alpha"), "joined": value.Null(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	rows, err := rec.Scan(schema)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, int64(1), rows[0].Values["id"].Int())
	assert.Equal(t, "alpha", rows[0].Values["name"].Str())
	assert.True(t, rows[0].Values["joined"].IsNull())
}

func TestEncodeHandlesDelimiterCharactersInText(t *testing.T) {
	s, cat := newTestStore(t)
	rec := New(s, cat)
	schema := testSchema()

	_, err := rec.Insert(schema, map[string]value.Value{
		"id": value.Int(1), "name": value.Char("a|b:c"), "joined": value.Date("2020-01-01"),
	})
	require.NoError(t, err)

	rows, err := rec.Scan(schema)
	require.NoError(t, err)
	assert.Equal(t, "a|b:c", rows[0].Values["name"].Str())
}

func TestDeleteRemovesRow(t *testing.T) {
	s, cat := newTestStore(t)
	rec := New(s, cat)
	schema := testSchema()

	id, err := rec.Insert(schema, map[string]value.Value{"id": value.Int(1), "name": value.Null(), "joined": value.Null()})
	require.NoError(t, err)

	require.NoError(t, rec.Delete("a", id))
	rows, err := rec.Scan(schema)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestScanOrdersByRowID(t *testing.T) {
	s, cat := newTestStore(t)
	rec := New(s, cat)
	schema := testSchema()

	for i := 0; i < 12; i++ {
		_, err := rec.Insert(schema, map[string]value.Value{"id": value.Int(int64(i)), "name": value.Null(), "joined": value.Null()})
		require.NoError(t, err)
	}

	rows, err := rec.Scan(schema)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	for i, row := range rows {
		assert.Equal(t, int64(i+1), row.ID)
	}
}
