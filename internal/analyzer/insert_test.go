package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizukoshi/sqlengine/internal/ast"
	"github.com/mizukoshi/sqlengine/internal/catalog"
	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/value"
)

func tableASchema() *catalog.Schema {
	return &catalog.Schema{
		Table: "a",
		Columns: []catalog.Column{
			{Name: "id", Type: value.IntType(), Key: catalog.KeyPrimary},
			{Name: "name", Type: value.CharType(5), Nullable: true},
			{Name: "joined", Type: value.DateType(), Nullable: true},
		},
		PrimaryKey: []string{"id"},
	}
}

func TestAnalyzeInsertImplicitColumnsTruncatesChar(t *testing.T) {
	cat := newCatalog(t)
	require.NoError(t, cat.Put("a", tableASchema()))

	stmt := &ast.InsertInto{Table: "a", Values: []ast.Literal{
		{IsNum: true, Text: "1"},
		{IsStr: true, Text: "alphabet"},
		{IsNull: true},
	}}
	resolved, err := AnalyzeInsert(cat, stmt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resolved.Values["id"].Int())
	assert.Equal(t, "alpha", resolved.Values["name"].Str())
	assert.True(t, resolved.Values["joined"].IsNull())
}

func TestAnalyzeInsertDateLiteral(t *testing.T) {
	cat := newCatalog(t)
	require.NoError(t, cat.Put("a", tableASchema()))
	stmt := &ast.InsertInto{Table: "a", Values: []ast.Literal{
		{IsNum: true, Text: "1"}, {IsNull: true}, {IsNum: true, Text: "2020-01-01"},
	}}
	resolved, err := AnalyzeInsert(cat, stmt)
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01", resolved.Values["joined"].Str())
}

func TestAnalyzeInsertNoSuchTable(t *testing.T) {
	cat := newCatalog(t)
	_, err := AnalyzeInsert(cat, &ast.InsertInto{Table: "missing"})
	assertKind(t, err, dberrors.NoSuchTable)
}

func TestAnalyzeInsertNullIntoNonNullable(t *testing.T) {
	cat := newCatalog(t)
	require.NoError(t, cat.Put("a", tableASchema()))
	stmt := &ast.InsertInto{Table: "a", Values: []ast.Literal{
		{IsNull: true}, {IsNull: true}, {IsNull: true},
	}}
	_, err := AnalyzeInsert(cat, stmt)
	assertKind(t, err, dberrors.InsertColumnNonNullable)
}

func TestAnalyzeInsertTypeMismatchCount(t *testing.T) {
	cat := newCatalog(t)
	require.NoError(t, cat.Put("a", tableASchema()))
	stmt := &ast.InsertInto{Table: "a", Values: []ast.Literal{{IsNum: true, Text: "1"}}}
	_, err := AnalyzeInsert(cat, stmt)
	assertKind(t, err, dberrors.InsertTypeMismatch)
}

func TestAnalyzeInsertExplicitColumnListMissingPrimaryKey(t *testing.T) {
	cat := newCatalog(t)
	require.NoError(t, cat.Put("a", tableASchema()))
	stmt := &ast.InsertInto{Table: "a", Columns: []string{"name"}, Values: []ast.Literal{{IsStr: true, Text: "x"}}}
	_, err := AnalyzeInsert(cat, stmt)
	assertKind(t, err, dberrors.InsertColumnNonNullable)
}

func TestAnalyzeInsertNegativeIntLiteral(t *testing.T) {
	cat := newCatalog(t)
	require.NoError(t, cat.Put("a", tableASchema()))
	stmt := &ast.InsertInto{Table: "a", Values: []ast.Literal{
		{IsNum: true, Text: "-5"}, {IsNull: true}, {IsNull: true},
	}}
	resolved, err := AnalyzeInsert(cat, stmt)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), resolved.Values["id"].Int())
}
