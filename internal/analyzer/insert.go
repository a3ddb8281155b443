package analyzer

import (
	"strings"

	"github.com/mizukoshi/sqlengine/internal/ast"
	"github.com/mizukoshi/sqlengine/internal/catalog"
	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/parser"
	"github.com/mizukoshi/sqlengine/internal/value"
)

// ResolvedInsert is a fully type-checked INSERT, ready for the executor to
// run the PK/FK checks against live data and then write.
type ResolvedInsert struct {
	Table  string
	Values map[string]value.Value // column name -> value, including NULL defaults
}

// AnalyzeInsert validates an INSERT statement against the table schema,
// per the order in the specification, and returns the target column/value
// map (including NULL for every column left unspecified).
func AnalyzeInsert(cat *catalog.Catalog, stmt *ast.InsertInto) (*ResolvedInsert, error) {
	table := strings.ToLower(stmt.Table)
	schema, ok, err := cat.Get(table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberrors.New(dberrors.NoSuchTable)
	}

	targetColumns := stmt.Columns
	if targetColumns == nil {
		for _, c := range schema.Columns {
			targetColumns = append(targetColumns, c.Name)
		}
	} else {
		targetColumns = lowerAll(targetColumns)
		seen := map[string]bool{}
		for _, name := range targetColumns {
			if !schema.HasColumn(name) {
				return nil, dberrors.NewWithArg(dberrors.InsertColumnExistence, name)
			}
			if seen[name] {
				return nil, dberrors.New(dberrors.InsertTableDuplicateColumn)
			}
			seen[name] = true
		}
		for _, pk := range schema.PrimaryKey {
			if !seen[pk] {
				return nil, dberrors.NewWithArg(dberrors.InsertColumnNonNullable, pk)
			}
		}
	}

	if len(stmt.Values) != len(targetColumns) {
		return nil, dberrors.New(dberrors.InsertTypeMismatch)
	}

	values := map[string]value.Value{}
	for _, col := range schema.Columns {
		values[col.Name] = value.Null()
	}

	for i, lit := range stmt.Values {
		col, _ := schema.Column(targetColumns[i])
		v, err := resolveLiteral(col, lit)
		if err != nil {
			return nil, err
		}
		values[col.Name] = v
	}

	return &ResolvedInsert{Table: table, Values: values}, nil
}

func resolveLiteral(col catalog.Column, lit ast.Literal) (value.Value, error) {
	if lit.IsNull {
		if !col.Nullable {
			return value.Value{}, dberrors.NewWithArg(dberrors.InsertColumnNonNullable, col.Name)
		}
		return value.Null(), nil
	}

	switch col.Type.Kind {
	case value.KindInt:
		if !lit.IsNum || parser.SplitDate(lit.Text) {
			return value.Value{}, dberrors.New(dberrors.InsertTypeMismatch)
		}
		n, err := parseInt(lit.Text)
		if err != nil {
			return value.Value{}, dberrors.New(dberrors.InsertTypeMismatch)
		}
		return value.Int(n), nil
	case value.KindDate:
		if !lit.IsNum || !parser.SplitDate(lit.Text) || !isValidDate(lit.Text) {
			return value.Value{}, dberrors.New(dberrors.InsertTypeMismatch)
		}
		return value.Date(lit.Text), nil
	case value.KindChar:
		if !lit.IsStr {
			return value.Value{}, dberrors.New(dberrors.InsertTypeMismatch)
		}
		return value.Char(value.Truncate(lit.Text, col.Type.Length)), nil
	default:
		return value.Value{}, dberrors.New(dberrors.InsertTypeMismatch)
	}
}

func parseInt(s string) (int64, error) {
	var n int64
	neg := false
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, dberrors.New(dberrors.InsertTypeMismatch)
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, dberrors.New(dberrors.InsertTypeMismatch)
		}
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

// isValidDate checks the YYYY-MM-DD shape strictly (four-two-two digit
// groups separated by hyphens); it does not validate calendar correctness
// such as day-of-month bounds.
func isValidDate(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return false
	}
	lens := []int{4, 2, 2}
	for i, p := range parts {
		if len(p) != lens[i] {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
