// Package ast defines the concrete syntax tree the parser produces. The
// parser performs no semantic validation; every node here is a plain data
// carrier resolved later by the analyzer.
package ast

import "github.com/mizukoshi/sqlengine/internal/value"

// Statement is the sum type of every statement the grammar accepts.
type Statement interface {
	isStatement()
}

// ColumnDef is one column definition inside a CREATE TABLE statement.
type ColumnDef struct {
	Name string
	Type value.Type
}

// PrimaryKeyConstraint is a `primary key(c1, c2, ...)` clause.
type PrimaryKeyConstraint struct {
	Columns []string
}

// ForeignKeyConstraint is a `foreign key(c1, ...) references t(r1, ...)` clause.
type ForeignKeyConstraint struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// CreateTable is `CREATE TABLE name (col defs, [PK], [FK]*)`.
type CreateTable struct {
	Table       string
	Columns     []ColumnDef
	PrimaryKey  *PrimaryKeyConstraint
	ForeignKeys []ForeignKeyConstraint
}

func (*CreateTable) isStatement() {}

// DropTable is `DROP TABLE name`.
type DropTable struct {
	Table string
}

func (*DropTable) isStatement() {}

// DescribeTable is `DESC|DESCRIBE|EXPLAIN name`.
type DescribeTable struct {
	Table string
}

func (*DescribeTable) isStatement() {}

// ShowTables is `SHOW TABLES`.
type ShowTables struct{}

func (*ShowTables) isStatement() {}

// Literal is one parsed INSERT value: exactly one of its fields is set,
// matching the grammar's inability to know a value's target column type
// until the analyzer resolves it.
type Literal struct {
	IsNull bool
	IsStr  bool  // quoted string literal -> candidate char(n) or left as-is
	IsNum  bool  // bare numeric literal -> candidate int or date
	Text   string
}

// InsertInto is `INSERT INTO table [(cols...)] VALUES (v1, v2, ...)`.
type InsertInto struct {
	Table   string
	Columns []string // nil if no explicit column list was given
	Values  []Literal
}

func (*InsertInto) isStatement() {}

// ColumnRef is `[table.]column` as it appears in SELECT lists or WHERE.
type ColumnRef struct {
	Table  string // "" if unqualified
	Column string
}

// Expr is the sum type of WHERE-clause boolean expressions.
type Expr interface {
	isExpr()
}

// Comparison is `operand op operand`.
type Comparison struct {
	Left  Operand
	Op    value.Op
	Right Operand
}

func (*Comparison) isExpr() {}

// IsNullPred is `column IS [NOT] NULL`.
type IsNullPred struct {
	Column ColumnRef
	Not    bool
}

func (*IsNullPred) isExpr() {}

// Not is `NOT factor`.
type Not struct {
	Operand Expr
}

func (*Not) isExpr() {}

// BinaryLogic is `left AND right` or `left OR right`.
type BinaryLogic struct {
	Left, Right Expr
	IsAnd       bool // false means OR
}

func (*BinaryLogic) isExpr() {}

// Operand is one side of a comparison predicate: either a column reference
// or a literal value.
type Operand struct {
	IsColumn bool
	Column   ColumnRef
	Literal  Literal
}

// SelectStatement is `SELECT select-list FROM t1, t2, ... [WHERE expr]`.
type SelectStatement struct {
	Columns []ColumnRef // empty means `SELECT *`
	Star    bool
	From    []string
	Where   Expr // nil if absent
}

func (*SelectStatement) isStatement() {}

// DeleteStatement is `DELETE FROM table [WHERE expr]`.
type DeleteStatement struct {
	Table string
	Where Expr
}

func (*DeleteStatement) isStatement() {}

// UpdateStatement is accepted by the grammar but never executed.
type UpdateStatement struct {
	Table string
}

func (*UpdateStatement) isStatement() {}

// Exit is `EXIT`.
type Exit struct{}

func (*Exit) isStatement() {}
