// Package analyzer walks the parsed ast.Statement tree, resolving names
// against the Catalog and type-checking WHERE operands and DDL constraints.
// It performs no storage mutation; callers (the executor) persist only
// after a statement survives analysis.
package analyzer

import (
	"strings"

	"github.com/mizukoshi/sqlengine/internal/ast"
	"github.com/mizukoshi/sqlengine/internal/catalog"
	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/value"
)

// AnalyzeCreateTable validates a CREATE TABLE statement against the catalog
// and returns the fully annotated schema to persist, enforcing the order
// from the specification (first failure aborts with the named error kind).
func AnalyzeCreateTable(cat *catalog.Catalog, stmt *ast.CreateTable) (*catalog.Schema, error) {
	exists, err := cat.Exists(stmt.Table)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, dberrors.New(dberrors.TableExistence)
	}

	for _, col := range stmt.Columns {
		if col.Type.IsChar() && col.Type.Length < 1 {
			return nil, dberrors.New(dberrors.CharLength)
		}
	}

	seen := map[string]bool{}
	for _, col := range stmt.Columns {
		name := strings.ToLower(col.Name)
		if seen[name] {
			return nil, dberrors.New(dberrors.DuplicateColumnDef)
		}
		seen[name] = true
	}

	// The parser allows at most one PrimaryKeyConstraint per statement
	// structurally (ast.CreateTable.PrimaryKey is a single pointer), so a
	// second `primary key(...)` clause is rejected earlier, at parse time,
	// as a Syntax Error. DuplicatePrimaryKeyDef therefore never fires from
	// this grammar, but the check is kept for symmetry with the other
	// CREATE TABLE validations and in case a future grammar change allows
	// a second clause to parse.
	pkCount := 0
	if stmt.PrimaryKey != nil {
		pkCount++
	}
	if pkCount > 1 {
		return nil, dberrors.New(dberrors.DuplicatePrimaryKeyDef)
	}

	columnType := map[string]value.Type{}
	for _, col := range stmt.Columns {
		columnType[strings.ToLower(col.Name)] = col.Type
	}

	var pkColumns []string
	if stmt.PrimaryKey != nil {
		for _, name := range stmt.PrimaryKey.Columns {
			name = strings.ToLower(name)
			if _, ok := columnType[name]; !ok {
				return nil, dberrors.NewWithArg(dberrors.NonExistingColumnDef, name)
			}
		}
		pkColumns = lowerAll(stmt.PrimaryKey.Columns)
	}

	for _, fk := range stmt.ForeignKeys {
		if err := validateForeignKey(cat, stmt.Table, columnType, &fk); err != nil {
			return nil, err
		}
	}

	schema := &catalog.Schema{
		Table:      strings.ToLower(stmt.Table),
		PrimaryKey: pkColumns,
	}
	pkSet := toSet(pkColumns)

	fkLocalCols := map[string]bool{}
	for _, fk := range stmt.ForeignKeys {
		for _, c := range fk.Columns {
			fkLocalCols[strings.ToLower(c)] = true
		}
		schema.ForeignKeys = append(schema.ForeignKeys, catalog.ForeignKey{
			Columns:    lowerAll(fk.Columns),
			RefTable:   strings.ToLower(fk.RefTable),
			RefColumns: lowerAll(fk.RefColumns),
		})
	}

	for _, col := range stmt.Columns {
		name := strings.ToLower(col.Name)
		isPK := pkSet[name]
		isFK := fkLocalCols[name]

		var role catalog.KeyRole
		switch {
		case isPK && isFK:
			role = catalog.KeyPrimaryForeign
		case isPK:
			role = catalog.KeyPrimary
		case isFK:
			role = catalog.KeyForeign
		default:
			role = catalog.KeyNone
		}

		schema.Columns = append(schema.Columns, catalog.Column{
			Name:     name,
			Type:     col.Type,
			Nullable: !isPK,
			Key:      role,
		})
	}

	return schema, nil
}

func validateForeignKey(cat *catalog.Catalog, table string, columnType map[string]value.Type, fk *ast.ForeignKeyConstraint) error {
	refTable := strings.ToLower(fk.RefTable)
	if refTable == strings.ToLower(table) {
		return dberrors.New(dberrors.ReferenceTableSelf)
	}

	refSchema, ok, err := cat.Get(refTable)
	if err != nil {
		return err
	}
	if !ok {
		return dberrors.New(dberrors.ReferenceTableExistence)
	}

	for _, c := range fk.Columns {
		if _, ok := columnType[strings.ToLower(c)]; !ok {
			return dberrors.NewWithArg(dberrors.NonExistingColumnDef, strings.ToLower(c))
		}
	}

	for _, c := range fk.RefColumns {
		if !refSchema.HasColumn(strings.ToLower(c)) {
			return dberrors.New(dberrors.ReferenceColumnExistence)
		}
	}

	// Mirrors zip()'s truncation to the shorter column list: type checks
	// run over the matched prefix, and the PK-order check runs, before the
	// count itself is checked, so a mismatched pair is reported as
	// ReferenceType rather than being masked by ReferenceColumnCountMismatch.
	n := len(fk.Columns)
	if len(fk.RefColumns) < n {
		n = len(fk.RefColumns)
	}
	for i := 0; i < n; i++ {
		localType := columnType[strings.ToLower(fk.Columns[i])]
		refCol, _ := refSchema.Column(strings.ToLower(fk.RefColumns[i]))
		if !sameTypeFamily(localType, refCol.Type) {
			return dberrors.New(dberrors.ReferenceType)
		}
	}

	if !equalOrderedColumns(lowerAll(fk.RefColumns), refSchema.PrimaryKey) {
		return dberrors.New(dberrors.ReferenceNonPrimaryKey)
	}

	if len(fk.Columns) != len(fk.RefColumns) {
		return dberrors.New(dberrors.ReferenceColumnCountMismatch)
	}

	return nil
}

func sameTypeFamily(a, b value.Type) bool {
	return a.Family() == b.Family()
}

func equalOrderedColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
