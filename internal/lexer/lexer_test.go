package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mizukoshi/sqlengine/internal/token"
)

func kinds(input string) []token.Kind {
	l := New(input)
	var out []token.Kind
	for {
		it := l.Next()
		out = append(out, it.Kind)
		if it.Kind == token.EOF {
			return out
		}
	}
}

func TestScanBasicStatement(t *testing.T) {
	got := kinds("SELECT * FROM a WHERE id = 1;")
	assert.Equal(t, []token.Kind{
		token.SELECT, token.STAR, token.FROM, token.IDENT, token.WHERE,
		token.IDENT, token.EQ, token.INT, token.SEMICOLON, token.EOF,
	}, got)
}

func TestScanDateFoldsIntoOneIntToken(t *testing.T) {
	l := New("2020-01-01")
	it := l.Next()
	assert.Equal(t, token.INT, it.Kind)
	assert.Equal(t, "2020-01-01", it.Text)
}

func TestScanNegativeNumberLeadsWithMinus(t *testing.T) {
	l := New("-5")
	first := l.Next()
	second := l.Next()
	assert.Equal(t, token.MINUS, first.Kind)
	assert.Equal(t, token.INT, second.Kind)
	assert.Equal(t, "5", second.Text)
}

func TestScanStringWithEscapedQuote(t *testing.T) {
	l := New("'it''s'")
	it := l.Next()
	assert.Equal(t, token.STRING, it.Kind)
	assert.Equal(t, "it's", it.Text)
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("id")
	peeked := l.Peek()
	next := l.Next()
	assert.Equal(t, peeked, next)
}

func TestScanOperators(t *testing.T) {
	got := kinds("<= >= <> != < > =")
	assert.Equal(t, []token.Kind{
		token.LE, token.GE, token.NEQ, token.NEQ, token.LT, token.GT, token.EQ, token.EOF,
	}, got)
}

func TestIllegalByte(t *testing.T) {
	l := New("@")
	it := l.Next()
	assert.Equal(t, token.ILLEGAL, it.Kind)
}
