package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/parser"
	"github.com/mizukoshi/sqlengine/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func run(t *testing.T, e *Engine, stmt string) (string, error) {
	t.Helper()
	parsed, err := parser.Parse(stmt)
	require.NoError(t, err, "statement must parse: %s", stmt)
	return e.Execute(parsed)
}

func requireOK(t *testing.T, e *Engine, stmt string) string {
	t.Helper()
	msg, err := run(t, e, stmt)
	require.NoError(t, err, "statement should succeed: %s", stmt)
	return msg
}

// Scenario 1: CREATE TABLE and DESCRIBE.
func TestScenarioCreateTableAndDescribe(t *testing.T) {
	e := newTestEngine(t)
	msg := requireOK(t, e, "CREATE TABLE a (id int, name char(5), primary key(id))")
	assert.Equal(t, "'a' table is created", msg)

	out := requireOK(t, e, "DESCRIBE a")
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "int")
	assert.Contains(t, out, "PRI")
	assert.Contains(t, out, "char(5)")
}

// Scenario 2: PK duplication on INSERT.
func TestScenarioPrimaryKeyDuplication(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, name char(5), primary key(id))")

	msg := requireOK(t, e, "INSERT INTO a VALUES(1, 'alpha')")
	assert.Equal(t, "1 row inserted", msg)

	_, err := run(t, e, "INSERT INTO a VALUES(1, 'beta')")
	require.Error(t, err)
	assert.Equal(t, "Insertion has failed: Primary key duplication", err.Error())
}

// Scenario 3: referential integrity violation on INSERT.
func TestScenarioInsertReferentialIntegrityViolation(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, name char(5), primary key(id))")
	requireOK(t, e, "CREATE TABLE b (aid int, primary key(aid), foreign key(aid) references a(id))")

	_, err := run(t, e, "INSERT INTO b VALUES(99)")
	require.Error(t, err)
	assert.Equal(t, "Insertion has failed: Referential integrity violation", err.Error())
}

// Scenario 4: SELECT with char truncation and WHERE equality.
func TestScenarioSelectTruncatedChar(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, name char(5), primary key(id))")
	requireOK(t, e, "INSERT INTO a VALUES(1, 'alphabet')")

	out := requireOK(t, e, "SELECT * FROM a WHERE name = 'alpha'")
	assert.Contains(t, out, "alpha")
	assert.NotContains(t, out, "alphabet")
}

// Scenario 5: DELETE blocked by referential integrity reports the match count.
func TestScenarioDeleteBlockedByReferentialIntegrity(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, name char(5), primary key(id))")
	requireOK(t, e, "CREATE TABLE b (aid int, primary key(aid), foreign key(aid) references a(id))")
	requireOK(t, e, "INSERT INTO a VALUES(1, 'alpha')")
	requireOK(t, e, "INSERT INTO b VALUES(1)")

	msg := requireOK(t, e, "DELETE FROM a WHERE id = 1")
	assert.Equal(t, "'1' row(s) are not deleted due to referential integrity", msg)

	out := requireOK(t, e, "SELECT * FROM a")
	assert.Contains(t, out, "alpha")
}

// Scenario 6: DROP TABLE blocked while referenced.
func TestScenarioDropTableBlockedWhileReferenced(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, name char(5), primary key(id))")
	requireOK(t, e, "CREATE TABLE b (aid int, primary key(aid), foreign key(aid) references a(id))")

	_, err := run(t, e, "DROP TABLE a")
	require.Error(t, err)
	assert.Equal(t, "Drop table has failed: 'a' is referenced by other table", err.Error())
}

func TestSelectUnqualifiedColumnHeaderIsTableQualified(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, primary key(id))")
	requireOK(t, e, "INSERT INTO a VALUES(1)")

	out := requireOK(t, e, "SELECT id FROM a")
	assert.Contains(t, out, "a.id")
	assert.NotContains(t, out, "| id ")
}

func TestCrossProductSizeIsProductOfTableSizes(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, primary key(id))")
	requireOK(t, e, "CREATE TABLE b (id int, primary key(id))")
	requireOK(t, e, "INSERT INTO a VALUES(1)")
	requireOK(t, e, "INSERT INTO a VALUES(2)")
	requireOK(t, e, "INSERT INTO b VALUES(1)")
	requireOK(t, e, "INSERT INTO b VALUES(2)")
	requireOK(t, e, "INSERT INTO b VALUES(3)")

	out := requireOK(t, e, "SELECT * FROM a, b")
	lines := countDataRows(out)
	assert.Equal(t, 6, lines)
}

func TestDeleteWithoutReferrersSucceeds(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, primary key(id))")
	requireOK(t, e, "INSERT INTO a VALUES(1)")
	requireOK(t, e, "INSERT INTO a VALUES(2)")

	msg := requireOK(t, e, "DELETE FROM a WHERE id = 1")
	assert.Equal(t, "'1' row(s) deleted", msg)

	out := requireOK(t, e, "SELECT * FROM a")
	assert.NotContains(t, out, "| 1 ")
}

func TestUpdateIsAcknowledgedButNotExecuted(t *testing.T) {
	e := newTestEngine(t)
	requireOK(t, e, "CREATE TABLE a (id int, primary key(id))")
	requireOK(t, e, "INSERT INTO a VALUES(1)")

	msg := requireOK(t, e, "UPDATE a SET id = 2 WHERE id = 1")
	assert.Equal(t, "'UPDATE' requested", msg)

	out := requireOK(t, e, "SELECT * FROM a")
	assert.Contains(t, out, "1")
}

func TestSelectTableExistenceError(t *testing.T) {
	e := newTestEngine(t)
	_, err := run(t, e, "SELECT * FROM missing")
	require.Error(t, err)
	dbErr, ok := err.(*dberrors.Error)
	require.True(t, ok)
	assert.Equal(t, dberrors.SelectTableExistence, dbErr.Kind)
}

// countDataRows counts lines of a rendered table that are not border or
// header lines, by counting lines beneath the second border.
func countDataRows(table string) int {
	count := 0
	borders := 0
	for _, line := range splitLines(table) {
		if len(line) > 0 && line[0] == '+' {
			borders++
			continue
		}
		if borders >= 2 {
			count++
		}
	}
	return count
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
