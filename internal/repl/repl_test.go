package repl

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizukoshi/sqlengine/internal/config"
	"github.com/mizukoshi/sqlengine/internal/engine"
	"github.com/mizukoshi/sqlengine/internal/store"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return engine.New(s)
}

func TestRunAccumulatesMultilineStatementUntilSemicolon(t *testing.T) {
	in := strings.NewReader("CREATE TABLE a (\nid int,\nprimary key(id));\n")
	var out bytes.Buffer
	code := New(in, &out, newEngine(t), config.Default("db")).Run()

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "'a' table is created")
}

func TestRunSplitsMultipleStatementsInOneBuffer(t *testing.T) {
	in := strings.NewReader("CREATE TABLE a (id int, primary key(id)); INSERT INTO a VALUES(1);\n")
	var out bytes.Buffer
	code := New(in, &out, newEngine(t), config.Default("db")).Run()

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "'a' table is created")
	assert.Contains(t, out.String(), "1 row inserted")
}

func TestSyntaxErrorDiscardsRestOfBufferButNotSession(t *testing.T) {
	in := strings.NewReader("GARBAGE STATEMENT; INSERT INTO a VALUES(1);\nCREATE TABLE a (id int, primary key(id));\n")
	var out bytes.Buffer
	code := New(in, &out, newEngine(t), config.Default("db")).Run()

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Syntax Error")
	// The INSERT sharing the first buffer is discarded, but the session
	// keeps going and executes the next buffer's CREATE TABLE.
	assert.Contains(t, out.String(), "'a' table is created")
}

func TestExitEndsSessionWithZeroCode(t *testing.T) {
	in := strings.NewReader("CREATE TABLE a (id int, primary key(id)); EXIT;\nINSERT INTO a VALUES(1);\n")
	var out bytes.Buffer
	code := New(in, &out, newEngine(t), config.Default("db")).Run()

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "'a' table is created")
	assert.NotContains(t, out.String(), "1 row inserted")
}

func TestEchoPrintsStatementBeforeResult(t *testing.T) {
	in := strings.NewReader("CREATE TABLE a (id int, primary key(id));\n")
	var out bytes.Buffer
	cfg := config.Default("db")
	cfg.Echo = true
	New(in, &out, newEngine(t), cfg).Run()

	assert.Contains(t, out.String(), "CREATE TABLE a (id int, primary key(id));")
}

func TestRunPrintsPromptBeforeEachRead(t *testing.T) {
	in := strings.NewReader("EXIT;\n")
	var out bytes.Buffer
	cfg := config.Default("db")
	cfg.Prompt = "test> "
	New(in, &out, newEngine(t), cfg).Run()

	assert.True(t, strings.HasPrefix(out.String(), "test> "))
}

func TestRunReturnsZeroOnEOFWithNoInput(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	code := New(in, &out, newEngine(t), config.Default("db")).Run()
	assert.Equal(t, 0, code)
}
