// Package engine is the executor: for each analyzed statement it drives the
// Catalog and Record Store to produce effects and a user-visible result,
// enforcing PK uniqueness and FK integrity at row-change time.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mizukoshi/sqlengine/internal/analyzer"
	"github.com/mizukoshi/sqlengine/internal/ast"
	"github.com/mizukoshi/sqlengine/internal/catalog"
	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/record"
	"github.com/mizukoshi/sqlengine/internal/render"
	"github.com/mizukoshi/sqlengine/internal/store"
	"github.com/mizukoshi/sqlengine/internal/value"
)

// Engine ties the Catalog and Record Store together behind one entry point.
type Engine struct {
	cat *catalog.Catalog
	rec *record.Store
}

func New(s *store.Store) *Engine {
	cat := catalog.New(s)
	return &Engine{cat: cat, rec: record.New(s, cat)}
}

// Exit is returned by Execute for an EXIT statement; the REPL checks for it
// with errors.As to know when to stop reading input.
type Exit struct{}

func (*Exit) Error() string { return "exit" }

// Execute runs one analyzed statement and returns its success message, or
// an error. A *dberrors.Error is a normal, non-fatal outcome the caller
// prints and recovers from; any other error is an internal/store failure.
func (e *Engine) Execute(stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.CreateTable:
		return e.createTable(s)
	case *ast.DropTable:
		return e.dropTable(s)
	case *ast.DescribeTable:
		return e.describeTable(s)
	case *ast.ShowTables:
		return e.showTables()
	case *ast.InsertInto:
		return e.insert(s)
	case *ast.DeleteStatement:
		return e.delete(s)
	case *ast.SelectStatement:
		return e.selectStmt(s)
	case *ast.UpdateStatement:
		return "'UPDATE' requested", nil
	case *ast.Exit:
		return "", &Exit{}
	default:
		return "", dberrors.New(dberrors.SyntaxError)
	}
}

func (e *Engine) createTable(stmt *ast.CreateTable) (string, error) {
	schema, err := analyzer.AnalyzeCreateTable(e.cat, stmt)
	if err != nil {
		return "", err
	}
	if err := e.cat.Put(schema.Table, schema); err != nil {
		return "", err
	}
	return fmt.Sprintf("'%s' table is created", schema.Table), nil
}

func (e *Engine) dropTable(stmt *ast.DropTable) (string, error) {
	table := strings.ToLower(stmt.Table)
	exists, err := e.cat.Exists(table)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", dberrors.New(dberrors.NoSuchTable)
	}
	referrers, err := e.cat.Referrers(table)
	if err != nil {
		return "", err
	}
	if len(referrers) > 0 {
		return "", dberrors.NewWithArg(dberrors.DropReferencedTable, table)
	}
	if err := e.cat.Drop(table); err != nil {
		return "", err
	}
	return fmt.Sprintf("'%s' table is dropped", table), nil
}

func (e *Engine) describeTable(stmt *ast.DescribeTable) (string, error) {
	table := strings.ToLower(stmt.Table)
	schema, ok, err := e.cat.Get(table)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", dberrors.New(dberrors.NoSuchTable)
	}

	rows := make([][]string, len(schema.Columns))
	for i, c := range schema.Columns {
		nullable := "N"
		if c.Nullable {
			nullable = "Y"
		}
		rows[i] = []string{c.Name, c.Type.String(), nullable, string(c.Key)}
	}

	title := fmt.Sprintf("table_name [%s]", table)
	return title + "\n" + render.Table([]string{"name", "type", "nullable", "key"}, rows), nil
}

func (e *Engine) showTables() (string, error) {
	names, err := e.cat.List()
	if err != nil {
		return "", err
	}
	sort.Strings(names)
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n}
	}
	return render.Table([]string{"table_name"}, rows), nil
}

func (e *Engine) insert(stmt *ast.InsertInto) (string, error) {
	resolved, err := analyzer.AnalyzeInsert(e.cat, stmt)
	if err != nil {
		return "", err
	}
	schema, _, err := e.cat.Get(resolved.Table)
	if err != nil {
		return "", err
	}

	existing, err := e.rec.Scan(schema)
	if err != nil {
		return "", err
	}

	if len(schema.PrimaryKey) > 0 {
		newPK := tuple(schema.PrimaryKey, resolved.Values)
		for _, row := range existing {
			if tuple(schema.PrimaryKey, row.Values) == newPK {
				return "", dberrors.New(dberrors.InsertDuplicatePrimaryKey)
			}
		}
	}

	for _, fk := range schema.ForeignKeys {
		if anyNull(fk.Columns, resolved.Values) {
			// A NULL local column opts the row out of the FK check (no
			// reference being made), the usual MATCH SIMPLE convention.
			continue
		}
		refSchema, ok, err := e.cat.Get(fk.RefTable)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", dberrors.New(dberrors.InsertReferentialIntegrity)
		}
		refRows, err := e.rec.Scan(refSchema)
		if err != nil {
			return "", err
		}
		localTuple := tuple(fk.Columns, resolved.Values)
		matched := false
		for _, row := range refRows {
			if tuple(fk.RefColumns, row.Values) == localTuple {
				matched = true
				break
			}
		}
		if !matched {
			return "", dberrors.New(dberrors.InsertReferentialIntegrity)
		}
	}

	if _, err := e.rec.Insert(schema, resolved.Values); err != nil {
		return "", err
	}
	return "1 row inserted", nil
}

func (e *Engine) delete(stmt *ast.DeleteStatement) (string, error) {
	table := strings.ToLower(stmt.Table)
	schema, ok, err := e.cat.Get(table)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", dberrors.New(dberrors.NoSuchTable)
	}

	schemas := map[string]*catalog.Schema{table: schema}
	resolvedWhere, err := analyzer.AnalyzeWhere([]string{table}, schemas, stmt.Where)
	if err != nil {
		return "", err
	}

	rows, err := e.rec.Scan(schema)
	if err != nil {
		return "", err
	}

	var matching []record.Row
	for _, row := range rows {
		if matchesWhere(table, row, resolvedWhere) {
			matching = append(matching, row)
		}
	}

	if len(schema.PrimaryKey) > 0 && len(matching) > 0 {
		referenced, err := e.anyReferenced(table, schema, matching)
		if err != nil {
			return "", err
		}
		if referenced {
			return fmt.Sprintf("'%d' row(s) are not deleted due to referential integrity", len(matching)), nil
		}
	}

	for _, row := range matching {
		if err := e.rec.Delete(table, row.ID); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("'%d' row(s) deleted", len(matching)), nil
}

// anyReferenced reports whether any matching row's PK tuple is referenced
// by a row in some other table's FK.
func (e *Engine) anyReferenced(table string, schema *catalog.Schema, matching []record.Row) (bool, error) {
	referrers, err := e.cat.Referrers(table)
	if err != nil {
		return false, err
	}
	for _, referrer := range referrers {
		refSchema, ok, err := e.cat.Get(referrer)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		refRows, err := e.rec.Scan(refSchema)
		if err != nil {
			return false, err
		}
		for _, fk := range refSchema.ForeignKeys {
			if fk.RefTable != table {
				continue
			}
			for _, row := range matching {
				pk := tuple(schema.PrimaryKey, row.Values)
				for _, refRow := range refRows {
					if tuple(fk.Columns, refRow.Values) == pk {
						return true, nil
					}
				}
			}
		}
	}
	return false, nil
}

func (e *Engine) selectStmt(stmt *ast.SelectStatement) (string, error) {
	tables := lowerAll(stmt.From)
	schemas := map[string]*catalog.Schema{}
	for _, t := range tables {
		schema, ok, err := e.cat.Get(t)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", dberrors.NewWithArg(dberrors.SelectTableExistence, t)
		}
		schemas[t] = schema
	}

	crossRows, columnOrder, err := e.crossProduct(tables, schemas)
	if err != nil {
		return "", err
	}

	headers, keys, err := resolveProjection(stmt, tables, schemas, columnOrder)
	if err != nil {
		return "", err
	}

	resolvedWhere, err := analyzer.AnalyzeWhere(tables, schemas, stmt.Where)
	if err != nil {
		return "", err
	}

	var out [][]string
	for _, row := range crossRows {
		if resolvedWhere != nil && resolvedWhere.Eval(row) != value.True {
			continue
		}
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = displayValue(row[k])
		}
		out = append(out, cells)
	}

	return render.Table(headers, out), nil
}

// crossProduct computes the cartesian product of the FROM tables, one
// result row per combination, each a map keyed "table.column". The maps
// hold only the schema's declared columns; the row id is not among them,
// so there is no synthetic "#" column in a result row.
func (e *Engine) crossProduct(tables []string, schemas map[string]*catalog.Schema) ([]map[string]value.Value, []string, error) {
	var columnOrder []string
	var result []map[string]value.Value

	for i, table := range tables {
		rows, err := e.rec.Scan(schemas[table])
		if err != nil {
			return nil, nil, err
		}
		for _, c := range schemas[table].Columns {
			columnOrder = append(columnOrder, analyzer.RowKey(table, c.Name))
		}

		if i == 0 {
			for _, row := range rows {
				result = append(result, qualify(table, row.Values))
			}
			continue
		}

		var next []map[string]value.Value
		for _, left := range result {
			for _, row := range rows {
				merged := make(map[string]value.Value, len(left)+len(row.Values))
				for k, v := range left {
					merged[k] = v
				}
				for k, v := range qualify(table, row.Values) {
					merged[k] = v
				}
				next = append(next, merged)
			}
		}
		result = next
	}
	return result, columnOrder, nil
}

func qualify(table string, values map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(values))
	for col, v := range values {
		out[analyzer.RowKey(table, col)] = v
	}
	return out
}

// resolveProjection builds the display headers and row-map keys for the
// select list, honoring `SELECT *` (every non-synthetic column, in FROM
// order) or an explicit, possibly-qualified column list.
func resolveProjection(stmt *ast.SelectStatement, tables []string, schemas map[string]*catalog.Schema, columnOrder []string) ([]string, []string, error) {
	if stmt.Star {
		var headers, keys []string
		for _, key := range columnOrder {
			if strings.HasSuffix(key, ".#") {
				continue
			}
			headers = append(headers, key)
			keys = append(keys, key)
		}
		return headers, keys, nil
	}

	var headers, keys []string
	for _, ref := range stmt.Columns {
		if ref.Table != "" {
			table := strings.ToLower(ref.Table)
			if !containsString(tables, table) {
				return nil, nil, dberrors.NewWithArg(dberrors.SelectTableExistence, table)
			}
			column := strings.ToLower(ref.Column)
			if !schemas[table].HasColumn(column) {
				return nil, nil, dberrors.NewWithArg(dberrors.SelectColumnResolve, column)
			}
			headers = append(headers, analyzer.RowKey(table, column))
			keys = append(keys, analyzer.RowKey(table, column))
			continue
		}

		column := strings.ToLower(ref.Column)
		var matchTable string
		count := 0
		for _, t := range tables {
			if schemas[t].HasColumn(column) {
				matchTable = t
				count++
			}
		}
		if count != 1 {
			return nil, nil, dberrors.NewWithArg(dberrors.SelectColumnResolve, column)
		}
		headers = append(headers, analyzer.RowKey(matchTable, column))
		keys = append(keys, analyzer.RowKey(matchTable, column))
	}
	return headers, keys, nil
}

func matchesWhere(table string, row record.Row, expr analyzer.ResolvedExpr) bool {
	if expr == nil {
		return true
	}
	return expr.Eval(qualify(table, row.Values)) == value.True
}

func displayValue(v value.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case value.KindInt:
		return fmt.Sprintf("%d", v.Int())
	default:
		return v.Str()
	}
}

func anyNull(cols []string, values map[string]value.Value) bool {
	for _, c := range cols {
		if values[c].IsNull() {
			return true
		}
	}
	return false
}

func tuple(cols []string, values map[string]value.Value) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%d\x1f%s", values[c].Kind(), displayValue(values[c]))
	}
	return strings.Join(parts, "\x1e")
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
