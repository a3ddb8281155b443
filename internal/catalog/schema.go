// Package catalog implements the schema catalog: per-table schema
// serialization and the referential-integrity bookkeeping (table existence,
// primary-key metadata, foreign-key referrers) that the analyzer and
// executor consult.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mizukoshi/sqlengine/internal/store"
	"github.com/mizukoshi/sqlengine/internal/value"
)

// KeyRole is a column's key annotation: "", "PRI", "FOR", or "PRI/FOR".
type KeyRole string

const (
	KeyNone      KeyRole = ""
	KeyPrimary   KeyRole = "PRI"
	KeyForeign   KeyRole = "FOR"
	KeyPrimaryForeign KeyRole = "PRI/FOR"
)

// Column is one column definition within a table schema.
type Column struct {
	Name     string
	Type     value.Type
	Nullable bool
	Key      KeyRole
}

// ForeignKey is one foreign-key constraint: an ordered local column list
// referencing an ordered column list of another table.
type ForeignKey struct {
	Columns   []string
	RefTable  string
	RefColumns []string
}

// Schema is a table's full schema: its ordered columns, primary-key column
// list, and foreign keys.
type Schema struct {
	Table      string
	Columns    []Column
	PrimaryKey []string
	ForeignKeys []ForeignKey
}

// Column looks up a column definition by name, case-insensitively.
func (s *Schema) Column(name string) (Column, bool) {
	name = strings.ToLower(name)
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether name is a column of this schema.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}

const (
	schemaKeyPrefix = "##"
	counterKey      = "###counter"
)

func schemaKey(table string) string { return schemaKeyPrefix + table }

// Encode renders a schema to the on-disk encoding:
//
//	col1:type1:N|Y:key1;col2:type2:...|PK:c1,c2|FK:fk_spec1;fk_spec2
//
// where fk_spec has the shape <local1,local2,...>:<ref_table>:<ref1,ref2,...>
func Encode(s *Schema) string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		nullable := "N"
		if c.Nullable {
			nullable = "Y"
		}
		cols[i] = fmt.Sprintf("%s:%s:%s:%s", c.Name, typeString(c.Type), nullable, string(c.Key))
	}

	pk := strings.Join(s.PrimaryKey, ",")

	fkSpecs := make([]string, len(s.ForeignKeys))
	for i, fk := range s.ForeignKeys {
		fkSpecs[i] = fmt.Sprintf("<%s>:%s:<%s>",
			strings.Join(fk.Columns, ","), fk.RefTable, strings.Join(fk.RefColumns, ","))
	}

	return strings.Join(cols, ";") + "|PK:" + pk + "|FK:" + strings.Join(fkSpecs, ";")
}

// Decode parses the on-disk encoding produced by Encode.
func Decode(table, encoded string) (*Schema, error) {
	parts := strings.SplitN(encoded, "|PK:", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed schema record for %q", table)
	}
	colsPart := parts[0]
	rest := parts[1]

	pkParts := strings.SplitN(rest, "|FK:", 2)
	if len(pkParts) != 2 {
		return nil, fmt.Errorf("malformed schema record for %q", table)
	}
	pkPart, fkPart := pkParts[0], pkParts[1]

	s := &Schema{Table: table}
	if colsPart != "" {
		for _, col := range strings.Split(colsPart, ";") {
			fields := strings.SplitN(col, ":", 4)
			if len(fields) != 4 {
				return nil, fmt.Errorf("malformed column definition %q", col)
			}
			t, err := parseTypeString(fields[1])
			if err != nil {
				return nil, err
			}
			s.Columns = append(s.Columns, Column{
				Name:     fields[0],
				Type:     t,
				Nullable: fields[2] == "Y",
				Key:      KeyRole(fields[3]),
			})
		}
	}
	if pkPart != "" {
		s.PrimaryKey = strings.Split(pkPart, ",")
	}
	if fkPart != "" {
		for _, spec := range strings.Split(fkPart, ";") {
			fk, err := parseFKSpec(spec)
			if err != nil {
				return nil, err
			}
			s.ForeignKeys = append(s.ForeignKeys, fk)
		}
	}
	return s, nil
}

func parseFKSpec(spec string) (ForeignKey, error) {
	// <local1,local2>:<ref_table>:<ref1,ref2>
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return ForeignKey{}, fmt.Errorf("malformed foreign key spec %q", spec)
	}
	locals := strings.Split(strings.Trim(parts[0], "<>"), ",")
	refCols := strings.Split(strings.Trim(parts[2], "<>"), ",")
	return ForeignKey{
		Columns:    locals,
		RefTable:   parts[1],
		RefColumns: refCols,
	}, nil
}

func typeString(t value.Type) string {
	switch t.Kind {
	case value.KindInt:
		return "int"
	case value.KindDate:
		return "date"
	case value.KindChar:
		return fmt.Sprintf("char(%d)", t.Length)
	default:
		return "null"
	}
}

func parseTypeString(s string) (value.Type, error) {
	switch {
	case s == "int":
		return value.IntType(), nil
	case s == "date":
		return value.DateType(), nil
	case strings.HasPrefix(s, "char(") && strings.HasSuffix(s, ")"):
		n, err := strconv.Atoi(s[5 : len(s)-1])
		if err != nil {
			return value.Type{}, fmt.Errorf("malformed char length in %q", s)
		}
		return value.CharType(n), nil
	default:
		return value.Type{}, fmt.Errorf("unknown type %q", s)
	}
}

// Catalog is the schema catalog, backed by the Store.
type Catalog struct {
	store *store.Store
}

func New(s *store.Store) *Catalog {
	return &Catalog{store: s}
}

// Exists reports whether a table with this name has a stored schema.
func (c *Catalog) Exists(table string) (bool, error) {
	return c.store.Exists(schemaKey(table))
}

// Put persists table's schema.
func (c *Catalog) Put(table string, schema *Schema) error {
	return c.store.Put(schemaKey(table), Encode(schema))
}

// Get loads table's schema, returning ok=false if no such table exists.
func (c *Catalog) Get(table string) (*Schema, bool, error) {
	encoded, ok, err := c.store.Get(schemaKey(table))
	if err != nil || !ok {
		return nil, ok, err
	}
	s, err := Decode(table, encoded)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Drop removes table's schema and every row key with prefix "table#".
func (c *Catalog) Drop(table string) error {
	if err := c.store.Delete(schemaKey(table)); err != nil {
		return err
	}
	rows, err := c.store.Scan(table + "#")
	if err != nil {
		return err
	}
	for _, kv := range rows {
		if err := c.store.Delete(kv.Key); err != nil {
			return err
		}
	}
	return nil
}

// List returns all known table names, in catalog key (ascending) order.
func (c *Catalog) List() ([]string, error) {
	kvs, err := c.store.Scan(schemaKeyPrefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, kv := range kvs {
		if kv.Key == counterKey {
			continue
		}
		names = append(names, strings.TrimPrefix(kv.Key, schemaKeyPrefix))
	}
	return names, nil
}

// Referrers returns every table whose foreign key targets `table`.
func (c *Catalog) Referrers(table string) ([]string, error) {
	names, err := c.List()
	if err != nil {
		return nil, err
	}
	var referrers []string
	for _, name := range names {
		if name == table {
			continue
		}
		schema, ok, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, fk := range schema.ForeignKeys {
			if fk.RefTable == table {
				referrers = append(referrers, name)
				break
			}
		}
	}
	return referrers, nil
}

// NextRowID increments and returns the process-wide row counter,
// persisting the new value immediately so it survives a crash between
// allocation and the row write that consumes it.
func (c *Catalog) NextRowID() (int64, error) {
	raw, ok, err := c.store.Get(counterKey)
	if err != nil {
		return 0, err
	}
	var n int64
	if ok {
		n, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt row counter: %w", err)
		}
	}
	n++
	if err := c.store.Put(counterKey, strconv.FormatInt(n, 10)); err != nil {
		return 0, err
	}
	return n, nil
}
