// Package parser implements the recursive-descent front end: it consumes
// one statement (without its terminating `;`) and produces an ast.Statement, or a single
// *dberrors.Error with Kind SyntaxError. It performs no semantic validation
// — name resolution and type checking belong to the analyzer.
package parser

import (
	"strconv"
	"strings"

	"github.com/mizukoshi/sqlengine/internal/ast"
	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/lexer"
	"github.com/mizukoshi/sqlengine/internal/token"
	"github.com/mizukoshi/sqlengine/internal/value"
)

// parser holds state for parsing a single statement.
type parser struct {
	lex *lexer.Lexer
}

// Parse parses one statement (the text should not include the trailing
// `;`). Any grammar violation returns a *dberrors.Error with Kind
// SyntaxError.
func Parse(stmt string) (ast.Statement, error) {
	p := &parser{lex: lexer.New(stmt)}
	s, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if tok := p.lex.Peek(); tok.Kind != token.EOF {
		return nil, syntaxErr()
	}
	return s, nil
}

func syntaxErr() error {
	return dberrors.New(dberrors.SyntaxError)
}

func (p *parser) parseStatement() (ast.Statement, error) {
	switch p.lex.Peek().Kind {
	case token.CREATE:
		return p.parseCreateTable()
	case token.DROP:
		return p.parseDropTable()
	case token.DESC, token.DESCRIBE, token.EXPLAIN:
		return p.parseDescribe()
	case token.SHOW:
		return p.parseShowTables()
	case token.INSERT:
		return p.parseInsert()
	case token.DELETE:
		return p.parseDelete()
	case token.SELECT:
		return p.parseSelect()
	case token.UPDATE:
		return p.parseUpdate()
	case token.EXIT:
		p.lex.Next()
		return &ast.Exit{}, nil
	default:
		return nil, syntaxErr()
	}
}

func (p *parser) expect(k token.Kind) (token.Item, error) {
	tok := p.lex.Next()
	if tok.Kind != k {
		return tok, syntaxErr()
	}
	return tok, nil
}

func (p *parser) parseIdent() (string, error) {
	tok, err := p.expect(token.IDENT)
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// --- CREATE TABLE ---

func (p *parser) parseCreateTable() (ast.Statement, error) {
	p.lex.Next() // CREATE
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	stmt := &ast.CreateTable{Table: table}
	for {
		if p.lex.Peek().Kind == token.PRIMARY {
			if stmt.PrimaryKey != nil {
				return nil, syntaxErr()
			}
			pk, err := p.parsePrimaryKeyClause()
			if err != nil {
				return nil, err
			}
			stmt.PrimaryKey = pk
		} else if p.lex.Peek().Kind == token.FOREIGN {
			fk, err := p.parseForeignKeyClause()
			if err != nil {
				return nil, err
			}
			stmt.ForeignKeys = append(stmt.ForeignKeys, *fk)
		} else {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, *col)
		}

		tok := p.lex.Next()
		if tok.Kind == token.RPAREN {
			break
		}
		if tok.Kind != token.COMMA {
			return nil, syntaxErr()
		}
	}
	return stmt, nil
}

func (p *parser) parseColumnDef() (*ast.ColumnDef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	t, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	return &ast.ColumnDef{Name: name, Type: t}, nil
}

func (p *parser) parseTypeName() (value.Type, error) {
	tok := p.lex.Next()
	switch tok.Kind {
	case token.INT_TYPE:
		return value.IntType(), nil
	case token.DATE_TYPE:
		return value.DateType(), nil
	case token.CHAR_TYPE:
		if _, err := p.expect(token.LPAREN); err != nil {
			return value.Type{}, err
		}
		numTok, err := p.expect(token.INT)
		if err != nil {
			return value.Type{}, err
		}
		n, convErr := strconv.Atoi(numTok.Text)
		if convErr != nil {
			return value.Type{}, syntaxErr()
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return value.Type{}, err
		}
		return value.CharType(n), nil
	default:
		return value.Type{}, syntaxErr()
	}
}

func (p *parser) parsePrimaryKeyClause() (*ast.PrimaryKeyConstraint, error) {
	p.lex.Next() // PRIMARY
	if _, err := p.expect(token.KEY); err != nil {
		return nil, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	return &ast.PrimaryKeyConstraint{Columns: cols}, nil
}

func (p *parser) parseForeignKeyClause() (*ast.ForeignKeyConstraint, error) {
	p.lex.Next() // FOREIGN
	if _, err := p.expect(token.KEY); err != nil {
		return nil, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.REFERENCES); err != nil {
		return nil, err
	}
	refTable, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	refCols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	return &ast.ForeignKeyConstraint{Columns: cols, RefTable: refTable, RefColumns: refCols}, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var idents []string
	for {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		idents = append(idents, id)
		tok := p.lex.Next()
		if tok.Kind == token.RPAREN {
			break
		}
		if tok.Kind != token.COMMA {
			return nil, syntaxErr()
		}
	}
	return idents, nil
}

// --- DROP / DESCRIBE / SHOW ---

func (p *parser) parseDropTable() (ast.Statement, error) {
	p.lex.Next() // DROP
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	return &ast.DropTable{Table: table}, nil
}

func (p *parser) parseDescribe() (ast.Statement, error) {
	p.lex.Next() // DESC|DESCRIBE|EXPLAIN
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	return &ast.DescribeTable{Table: table}, nil
}

func (p *parser) parseShowTables() (ast.Statement, error) {
	p.lex.Next() // SHOW
	if _, err := p.expect(token.TABLES); err != nil {
		return nil, err
	}
	return &ast.ShowTables{}, nil
}

// --- INSERT ---

func (p *parser) parseInsert() (ast.Statement, error) {
	p.lex.Next() // INSERT
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	stmt := &ast.InsertInto{Table: table}
	if p.lex.Peek().Kind == token.LPAREN {
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
	}

	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	vals, err := p.parseLiteralList()
	if err != nil {
		return nil, err
	}
	stmt.Values = vals
	return stmt, nil
}

func (p *parser) parseLiteralList() ([]ast.Literal, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var lits []ast.Literal
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		lits = append(lits, lit)
		tok := p.lex.Next()
		if tok.Kind == token.RPAREN {
			break
		}
		if tok.Kind != token.COMMA {
			return nil, syntaxErr()
		}
	}
	return lits, nil
}

func (p *parser) parseLiteral() (ast.Literal, error) {
	neg := false
	if p.lex.Peek().Kind == token.MINUS {
		p.lex.Next()
		neg = true
	}
	tok := p.lex.Next()
	switch tok.Kind {
	case token.NULL:
		if neg {
			return ast.Literal{}, syntaxErr()
		}
		return ast.Literal{IsNull: true}, nil
	case token.STRING:
		if neg {
			return ast.Literal{}, syntaxErr()
		}
		return ast.Literal{IsStr: true, Text: tok.Text}, nil
	case token.INT:
		text := tok.Text
		if neg {
			text = "-" + text
		}
		return ast.Literal{IsNum: true, Text: text}, nil
	default:
		return ast.Literal{}, syntaxErr()
	}
}

// --- SELECT / DELETE / WHERE ---

func (p *parser) parseSelect() (ast.Statement, error) {
	p.lex.Next() // SELECT
	stmt := &ast.SelectStatement{}

	if p.lex.Peek().Kind == token.STAR {
		p.lex.Next()
		stmt.Star = true
	} else {
		for {
			ref, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, ref)
			if p.lex.Peek().Kind != token.COMMA {
				break
			}
			p.lex.Next()
		}
	}

	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	tables, err := p.parseTableList()
	if err != nil {
		return nil, err
	}
	stmt.From = tables

	if p.lex.Peek().Kind == token.WHERE {
		p.lex.Next()
		expr, err := p.parseWhereExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = expr
	}
	return stmt, nil
}

func (p *parser) parseTableList() ([]string, error) {
	var tables []string
	for {
		t, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		if p.lex.Peek().Kind != token.COMMA {
			break
		}
		p.lex.Next()
	}
	return tables, nil
}

func (p *parser) parseDelete() (ast.Statement, error) {
	p.lex.Next() // DELETE
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt := &ast.DeleteStatement{Table: table}
	if p.lex.Peek().Kind == token.WHERE {
		p.lex.Next()
		expr, err := p.parseWhereExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = expr
	}
	return stmt, nil
}

// parseWhereExpr parses the at-most-two-factor WHERE grammar:
//
//	expr := factor [ (AND|OR) factor ]
//	factor := [NOT] predicate
//	predicate := operand op operand | column IS [NOT] NULL
func (p *parser) parseWhereExpr() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	switch p.lex.Peek().Kind {
	case token.AND, token.OR:
		isAnd := p.lex.Next().Kind == token.AND
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryLogic{Left: left, Right: right, IsAnd: isAnd}, nil
	default:
		return left, nil
	}
}

func (p *parser) parseFactor() (ast.Expr, error) {
	negated := false
	if p.lex.Peek().Kind == token.NOT {
		p.lex.Next()
		negated = true
	}

	pred, err := p.parsePredicate()
	if err != nil {
		return nil, err
	}
	if negated {
		return &ast.Not{Operand: pred}, nil
	}
	return pred, nil
}

func (p *parser) parsePredicate() (ast.Expr, error) {
	// Try `column IS [NOT] NULL` by looking ahead: both predicate forms
	// start with an operand, so parse the left operand first.
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if p.lex.Peek().Kind == token.IS {
		if !left.IsColumn {
			return nil, syntaxErr()
		}
		p.lex.Next()
		not := false
		if p.lex.Peek().Kind == token.NOT {
			p.lex.Next()
			not = true
		}
		if _, err := p.expect(token.NULL); err != nil {
			return nil, err
		}
		return &ast.IsNullPred{Column: left.Column, Not: not}, nil
	}

	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &ast.Comparison{Left: left, Op: op, Right: right}, nil
}

func (p *parser) parseOp() (value.Op, error) {
	tok := p.lex.Next()
	switch tok.Kind {
	case token.LT:
		return value.OpLT, nil
	case token.LE:
		return value.OpLE, nil
	case token.EQ:
		return value.OpEQ, nil
	case token.NEQ:
		return value.OpNE, nil
	case token.GE:
		return value.OpGE, nil
	case token.GT:
		return value.OpGT, nil
	default:
		return 0, syntaxErr()
	}
}

func (p *parser) parseOperand() (ast.Operand, error) {
	if p.lex.Peek().Kind == token.MINUS {
		p.lex.Next()
		numTok, err := p.expect(token.INT)
		if err != nil {
			return ast.Operand{}, err
		}
		return ast.Operand{Literal: ast.Literal{IsNum: true, Text: "-" + numTok.Text}}, nil
	}

	tok := p.lex.Peek()
	switch tok.Kind {
	case token.STRING:
		p.lex.Next()
		return ast.Operand{Literal: ast.Literal{IsStr: true, Text: tok.Text}}, nil
	case token.INT:
		p.lex.Next()
		return ast.Operand{Literal: ast.Literal{IsNum: true, Text: tok.Text}}, nil
	case token.NULL:
		p.lex.Next()
		return ast.Operand{Literal: ast.Literal{IsNull: true}}, nil
	case token.IDENT:
		ref, err := p.parseColumnRef()
		if err != nil {
			return ast.Operand{}, err
		}
		return ast.Operand{IsColumn: true, Column: ref}, nil
	default:
		return ast.Operand{}, syntaxErr()
	}
}

func (p *parser) parseColumnRef() (ast.ColumnRef, error) {
	first, err := p.parseIdent()
	if err != nil {
		return ast.ColumnRef{}, err
	}
	if p.lex.Peek().Kind == token.DOT {
		p.lex.Next()
		second, err := p.parseIdent()
		if err != nil {
			return ast.ColumnRef{}, err
		}
		return ast.ColumnRef{Table: first, Column: second}, nil
	}
	return ast.ColumnRef{Column: first}, nil
}

// --- UPDATE (grammar-only; never executed) ---

func (p *parser) parseUpdate() (ast.Statement, error) {
	p.lex.Next() // UPDATE
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	// Consume the remainder of the statement without interpreting it: the
	// grammar recognizes UPDATE but assigns it no execution semantics.
	for {
		tok := p.lex.Next()
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.ILLEGAL {
			return nil, syntaxErr()
		}
	}
	return &ast.UpdateStatement{Table: table}, nil
}

// SplitDate reports whether a numeric literal's text is date-shaped, i.e.
// contains a hyphen after any leading minus sign (the lexer folds dates and
// integers into one INT-kind token; the analyzer disambiguates using the
// target column's declared type and checks the YYYY-MM-DD shape itself).
func SplitDate(text string) bool {
	return strings.Contains(strings.TrimPrefix(text, "-"), "-")
}
