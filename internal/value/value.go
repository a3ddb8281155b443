// Package value implements the tagged runtime value type that row data and
// WHERE-clause operands are built from.
package value

import "fmt"

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindDate
	KindChar
)

// Type identifies a column's declared data type, including the char(n) length.
type Type struct {
	Kind   Kind // KindNull only for the type of a NULL literal in WHERE
	Length int  // char(n) length; unused for Int/Date
}

func IntType() Type            { return Type{Kind: KindInt} }
func DateType() Type           { return Type{Kind: KindDate} }
func CharType(n int) Type      { return Type{Kind: KindChar, Length: n} }
func (t Type) IsChar() bool    { return t.Kind == KindChar }

// Family groups types for the type-compatibility rule in WHERE clauses:
// every char(n) belongs to the same family regardless of n.
func (t Type) Family() Type {
	if t.Kind == KindChar {
		return Type{Kind: KindChar}
	}
	return Type{Kind: t.Kind}
}

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	case KindChar:
		return fmt.Sprintf("char(%d)", t.Length)
	default:
		return "null"
	}
}

// Value is the tagged sum type Int(i64) | Date(string) | Char(string) | Null.
// Date is kept as its canonical YYYY-MM-DD string since lexicographic order
// equals chronological order for that format.
type Value struct {
	kind Kind
	i    int64
	s    string
}

func Null() Value            { return Value{kind: KindNull} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Date(s string) Value    { return Value{kind: KindDate, s: s} }
func Char(s string) Value    { return Value{kind: KindChar, s: s} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) Int() int64    { return v.i }
func (v Value) Str() string   { return v.s }

// Truncate returns s truncated to at most n runes, as INSERT does
// for char(n) columns.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Op is a comparison operator.
type Op int

const (
	OpLT Op = iota
	OpLE
	OpEQ
	OpNE
	OpGE
	OpGT
)

func (o Op) String() string {
	switch o {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpEQ:
		return "="
	case OpNE:
		return "!="
	case OpGE:
		return ">="
	case OpGT:
		return ">"
	default:
		return "?"
	}
}

// Tri is a three-valued logic result: TRUE, FALSE, or UNKNOWN.
type Tri int

const (
	False Tri = iota
	True
	Unknown
)

func FromBool(b bool) Tri {
	if b {
		return True
	}
	return False
}

func (t Tri) Not() Tri {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// And implements the Kleene conjunction truth table.
func And(a, b Tri) Tri {
	if a == False || b == False {
		return False
	}
	if a == True && b == True {
		return True
	}
	return Unknown
}

// Or implements the Kleene disjunction truth table.
func Or(a, b Tri) Tri {
	if a == True || b == True {
		return True
	}
	if a == False && b == False {
		return False
	}
	return Unknown
}

// Compare evaluates `left op right`, returning UNKNOWN if either operand is
// NULL (NULL propagation), per spec's three-valued comparison semantics.
// Callers must have already checked type compatibility via Family().
func Compare(left Value, op Op, right Value) Tri {
	if left.IsNull() || right.IsNull() {
		return Unknown
	}

	switch left.kind {
	case KindInt:
		return compareOrdered(left.i, right.i, op)
	case KindDate:
		return compareOrdered(left.s, right.s, op)
	case KindChar:
		switch op {
		case OpEQ:
			return FromBool(left.s == right.s)
		case OpNE:
			return FromBool(left.s != right.s)
		default:
			// Caller should have rejected this operator for char family already.
			return Unknown
		}
	default:
		return Unknown
	}
}

type ordered interface {
	~int64 | ~string
}

func compareOrdered[T ordered](l, r T, op Op) Tri {
	switch op {
	case OpLT:
		return FromBool(l < r)
	case OpLE:
		return FromBool(l <= r)
	case OpEQ:
		return FromBool(l == r)
	case OpNE:
		return FromBool(l != r)
	case OpGE:
		return FromBool(l >= r)
	case OpGT:
		return FromBool(l > r)
	}
	return Unknown
}

// ValidOp reports whether op is legal for the given type family.
func ValidOp(t Type, op Op) bool {
	if t.Kind == KindChar {
		return op == OpEQ || op == OpNE
	}
	return true
}
