// Package lexer provides a hand-written lexical scanner for the engine's
// query grammar, in the style of a classic scan/peek tokenizer: it does not
// build an intermediate token slice, it advances one token at a time.
package lexer

import (
	"strings"

	"github.com/mizukoshi/sqlengine/internal/token"
)

// Lexer scans one statement's worth of input into tokens.
type Lexer struct {
	input  string
	pos    int
	start  int
	peeked bool
	item   token.Item
}

func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns and consumes the next token.
func (l *Lexer) Next() token.Item {
	if l.peeked {
		l.peeked = false
		return l.item
	}
	l.item = l.scan()
	return l.item
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Item {
	if !l.peeked {
		l.item = l.scan()
		l.peeked = true
	}
	return l.item
}

func (l *Lexer) scan() token.Item {
	l.skipSpace()
	l.start = l.pos

	if l.pos >= len(l.input) {
		return l.make(token.EOF, "")
	}

	ch := l.input[l.pos]
	switch ch {
	case '(':
		l.pos++
		return l.make(token.LPAREN, "(")
	case ')':
		l.pos++
		return l.make(token.RPAREN, ")")
	case ',':
		l.pos++
		return l.make(token.COMMA, ",")
	case ';':
		l.pos++
		return l.make(token.SEMICOLON, ";")
	case '.':
		l.pos++
		return l.make(token.DOT, ".")
	case '*':
		l.pos++
		return l.make(token.STAR, "*")
	case '-':
		l.pos++
		return l.make(token.MINUS, "-")
	case '=':
		l.pos++
		return l.make(token.EQ, "=")
	case '\'':
		return l.scanString()
	case '!':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return l.make(token.NEQ, "!=")
		}
		return l.make(token.ILLEGAL, "!")
	case '<':
		l.pos++
		if l.pos < len(l.input) {
			switch l.input[l.pos] {
			case '=':
				l.pos++
				return l.make(token.LE, "<=")
			case '>':
				l.pos++
				return l.make(token.NEQ, "<>")
			}
		}
		return l.make(token.LT, "<")
	case '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return l.make(token.GE, ">=")
		}
		return l.make(token.GT, ">")
	}

	if isIdentStart(ch) {
		return l.scanIdent()
	}
	if isDigit(ch) {
		return l.scanNumber()
	}

	l.pos++
	return l.make(token.ILLEGAL, string(ch))
}

func (l *Lexer) make(kind token.Kind, text string) token.Item {
	return token.Item{Kind: kind, Text: text, Start: l.start}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) scanIdent() token.Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	text := l.input[l.start:l.pos]
	lowered := strings.ToLower(text)
	kind := token.Lookup(lowered)
	if kind == token.IDENT {
		return l.make(token.IDENT, lowered)
	}
	return l.make(kind, lowered)
}

func (l *Lexer) scanNumber() token.Item {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	// dates (YYYY-MM-DD) are lexed as a single token by also eating embedded
	// hyphens and digits, so the parser never needs to reassemble them.
	for l.pos+1 < len(l.input) && l.input[l.pos] == '-' && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return l.make(token.INT, l.input[l.start:l.pos])
}

func (l *Lexer) scanString() token.Item {
	l.pos++ // skip opening '
	var buf []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				buf = append(buf, '\'')
				l.pos += 2
				continue
			}
			l.pos++
			return l.make(token.STRING, string(buf))
		}
		buf = append(buf, ch)
		l.pos++
	}
	return l.make(token.ILLEGAL, l.input[l.start:l.pos])
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '#'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
