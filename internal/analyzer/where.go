package analyzer

import (
	"strings"

	"github.com/mizukoshi/sqlengine/internal/ast"
	"github.com/mizukoshi/sqlengine/internal/catalog"
	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/parser"
	"github.com/mizukoshi/sqlengine/internal/value"
)

// RowKey qualifies a column name by its source table, matching the keys
// the executor's cross product builds ("table.column").
func RowKey(table, column string) string {
	return table + "." + column
}

// ResolvedExpr is a WHERE expression with every column reference bound to
// its source table and type, ready to be evaluated against a cross-product
// row without re-resolving names.
type ResolvedExpr interface {
	Eval(row map[string]value.Value) value.Tri
}

// ResolvedOperand is either a bound column reference or a literal value.
type ResolvedOperand struct {
	IsColumn bool
	Table    string
	Column   string
	Literal  value.Value
}

func (o ResolvedOperand) resolve(row map[string]value.Value) value.Value {
	if o.IsColumn {
		return row[RowKey(o.Table, o.Column)]
	}
	return o.Literal
}

type resolvedComparison struct {
	left, right ResolvedOperand
	op          value.Op
}

func (c *resolvedComparison) Eval(row map[string]value.Value) value.Tri {
	return value.Compare(c.left.resolve(row), c.op, c.right.resolve(row))
}

type resolvedIsNull struct {
	table, column string
	not           bool
}

func (p *resolvedIsNull) Eval(row map[string]value.Value) value.Tri {
	isNull := row[RowKey(p.table, p.column)].IsNull()
	if p.not {
		isNull = !isNull
	}
	return value.FromBool(isNull)
}

type resolvedNot struct {
	inner ResolvedExpr
}

func (n *resolvedNot) Eval(row map[string]value.Value) value.Tri {
	return n.inner.Eval(row).Not()
}

type resolvedBinary struct {
	left, right ResolvedExpr
	isAnd       bool
}

func (b *resolvedBinary) Eval(row map[string]value.Value) value.Tri {
	l := b.left.Eval(row)
	r := b.right.Eval(row)
	if b.isAnd {
		return value.And(l, r)
	}
	return value.Or(l, r)
}

// AnalyzeWhere resolves and type-checks a WHERE expression against the
// FROM tables' schemas, per the operand-resolution and type-compatibility
// rules in the specification. fromTables must already be lowercased.
func AnalyzeWhere(fromTables []string, schemas map[string]*catalog.Schema, expr ast.Expr) (ResolvedExpr, error) {
	if expr == nil {
		return nil, nil
	}
	return resolveExpr(fromTables, schemas, expr)
}

func resolveExpr(fromTables []string, schemas map[string]*catalog.Schema, expr ast.Expr) (ResolvedExpr, error) {
	switch e := expr.(type) {
	case *ast.Comparison:
		left, leftType, err := resolveOperand(fromTables, schemas, e.Left)
		if err != nil {
			return nil, err
		}
		right, rightType, err := resolveOperand(fromTables, schemas, e.Right)
		if err != nil {
			return nil, err
		}
		if leftType.Family() != rightType.Family() {
			return nil, dberrors.New(dberrors.WhereIncomparable)
		}
		if !value.ValidOp(leftType.Family(), e.Op) {
			return nil, dberrors.New(dberrors.WhereIncomparable)
		}
		return &resolvedComparison{left: left, right: right, op: e.Op}, nil

	case *ast.IsNullPred:
		table, _, err := resolveColumnRef(fromTables, schemas, ast.ColumnRef{Table: e.Column.Table, Column: e.Column.Column})
		if err != nil {
			return nil, err
		}
		return &resolvedIsNull{table: table, column: strings.ToLower(e.Column.Column), not: e.Not}, nil

	case *ast.Not:
		inner, err := resolveExpr(fromTables, schemas, e.Operand)
		if err != nil {
			return nil, err
		}
		return &resolvedNot{inner: inner}, nil

	case *ast.BinaryLogic:
		left, err := resolveExpr(fromTables, schemas, e.Left)
		if err != nil {
			return nil, err
		}
		right, err := resolveExpr(fromTables, schemas, e.Right)
		if err != nil {
			return nil, err
		}
		return &resolvedBinary{left: left, right: right, isAnd: e.IsAnd}, nil

	default:
		return nil, dberrors.New(dberrors.SyntaxError)
	}
}

func resolveOperand(fromTables []string, schemas map[string]*catalog.Schema, op ast.Operand) (ResolvedOperand, value.Type, error) {
	if op.IsColumn {
		table, typ, err := resolveColumnRef(fromTables, schemas, op.Column)
		if err != nil {
			return ResolvedOperand{}, value.Type{}, err
		}
		return ResolvedOperand{IsColumn: true, Table: table, Column: strings.ToLower(op.Column.Column)}, typ, nil
	}

	v, typ, err := literalValue(op.Literal)
	if err != nil {
		return ResolvedOperand{}, value.Type{}, err
	}
	return ResolvedOperand{Literal: v}, typ, nil
}

// resolveColumnRef resolves a possibly-qualified column reference against
// the FROM table list, per the spec's operand-resolution rules.
func resolveColumnRef(fromTables []string, schemas map[string]*catalog.Schema, ref ast.ColumnRef) (string, value.Type, error) {
	column := strings.ToLower(ref.Column)

	if ref.Table != "" {
		table := strings.ToLower(ref.Table)
		if !containsTable(fromTables, table) {
			return "", value.Type{}, dberrors.New(dberrors.WhereTableNotSpecified)
		}
		col, ok := schemas[table].Column(column)
		if !ok {
			return "", value.Type{}, dberrors.New(dberrors.WhereColumnNotExist)
		}
		return table, col.Type, nil
	}

	var matchTable string
	var matchType value.Type
	count := 0
	for _, t := range fromTables {
		if col, ok := schemas[t].Column(column); ok {
			matchTable, matchType = t, col.Type
			count++
		}
	}
	switch count {
	case 0:
		return "", value.Type{}, dberrors.New(dberrors.WhereColumnNotExist)
	case 1:
		return matchTable, matchType, nil
	default:
		return "", value.Type{}, dberrors.New(dberrors.WhereAmbiguousReference)
	}
}

func containsTable(tables []string, t string) bool {
	for _, x := range tables {
		if x == t {
			return true
		}
	}
	return false
}

// literalValue infers a WHERE literal's runtime value and type family from
// its lexical shape, the same way INSERT disambiguates int vs date tokens
// folded into one INT-kind token by the lexer.
func literalValue(lit ast.Literal) (value.Value, value.Type, error) {
	switch {
	case lit.IsNull:
		return value.Null(), value.Type{Kind: value.KindNull}, nil
	case lit.IsStr:
		return value.Char(lit.Text), value.Type{Kind: value.KindChar}, nil
	case lit.IsNum && parser.SplitDate(lit.Text):
		return value.Date(lit.Text), value.Type{Kind: value.KindDate}, nil
	case lit.IsNum:
		n, err := parseSignedInt(lit.Text)
		if err != nil {
			return value.Value{}, value.Type{}, dberrors.New(dberrors.WhereIncomparable)
		}
		return value.Int(n), value.Type{Kind: value.KindInt}, nil
	default:
		return value.Value{}, value.Type{}, dberrors.New(dberrors.WhereIncomparable)
	}
}

func parseSignedInt(s string) (int64, error) {
	var n int64
	neg := false
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, dberrors.New(dberrors.WhereIncomparable)
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, dberrors.New(dberrors.WhereIncomparable)
		}
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
