// Package record implements the row codec and record store: it turns a
// resolved column/value map into the flat string payload written under a
// table's "table#<id>" keys, and turns it back again for scans. Row id
// allocation is delegated to the catalog's counter so every inserted row
// gets a permanent, never-reused key.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mizukoshi/sqlengine/internal/catalog"
	"github.com/mizukoshi/sqlengine/internal/store"
	"github.com/mizukoshi/sqlengine/internal/value"
)

// Row is one decoded table row: its synthetic row id and its column values.
type Row struct {
	ID     int64
	Values map[string]value.Value
}

// Store reads and writes row payloads for a single table, given its schema.
type Store struct {
	store *store.Store
	cat   *catalog.Catalog
}

func New(s *store.Store, cat *catalog.Catalog) *Store {
	return &Store{store: s, cat: cat}
}

func rowKey(table string, id int64) string {
	return fmt.Sprintf("%s#%d", table, id)
}

// Insert allocates a new row id from the catalog counter, encodes values in
// schema column order, and persists the row. It returns the allocated id.
func (s *Store) Insert(schema *catalog.Schema, values map[string]value.Value) (int64, error) {
	id, err := s.cat.NextRowID()
	if err != nil {
		return 0, err
	}
	if err := s.store.Put(rowKey(schema.Table, id), encode(schema, values)); err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes a single row by id.
func (s *Store) Delete(table string, id int64) error {
	return s.store.Delete(rowKey(table, id))
}

// Scan returns every row currently stored for the table, in row-key
// (ascending id) order.
func (s *Store) Scan(schema *catalog.Schema) ([]Row, error) {
	kvs, err := s.store.Scan(schema.Table + "#")
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(kvs))
	for _, kv := range kvs {
		idText := strings.TrimPrefix(kv.Key, schema.Table+"#")
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt row key %q: %w", kv.Key, err)
		}
		values, err := decode(schema, kv.Value)
		if err != nil {
			return nil, fmt.Errorf("corrupt row %q: %w", kv.Key, err)
		}
		rows = append(rows, Row{ID: id, Values: values})
	}
	// The store's scan orders keys lexicographically ("a#10" < "a#2"), not
	// numerically, so row order is restored here by id.
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// encode renders a row's values, in schema column order, as a single
// string: each field is either "N" (null) or "V<byte-length>:<text>",
// joined by "|". The length prefix means a column's text may itself
// contain "|", ":", or any other byte without escaping.
func encode(schema *catalog.Schema, values map[string]value.Value) string {
	fields := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		v := values[col.Name]
		if v.IsNull() {
			fields[i] = "N"
			continue
		}
		text := fieldText(v)
		fields[i] = fmt.Sprintf("V%d:%s", len(text), text)
	}
	return strings.Join(fields, "|")
}

func fieldText(v value.Value) string {
	switch v.Kind() {
	case value.KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case value.KindDate, value.KindChar:
		return v.Str()
	default:
		return ""
	}
}

// decode reverses encode, reading each field back into a typed value.Value
// per the corresponding schema column's declared type.
func decode(schema *catalog.Schema, encoded string) (map[string]value.Value, error) {
	values := make(map[string]value.Value, len(schema.Columns))
	rest := encoded
	for i, col := range schema.Columns {
		if i > 0 {
			if len(rest) == 0 || rest[0] != '|' {
				return nil, fmt.Errorf("malformed row payload")
			}
			rest = rest[1:]
		}
		var v value.Value
		var err error
		v, rest, err = readField(col, rest)
		if err != nil {
			return nil, err
		}
		values[col.Name] = v
	}
	return values, nil
}

func readField(col catalog.Column, rest string) (value.Value, string, error) {
	if strings.HasPrefix(rest, "N") {
		return value.Null(), rest[1:], nil
	}
	if !strings.HasPrefix(rest, "V") {
		return value.Value{}, "", fmt.Errorf("malformed field for column %q", col.Name)
	}
	rest = rest[1:]
	colonIdx := strings.IndexByte(rest, ':')
	if colonIdx < 0 {
		return value.Value{}, "", fmt.Errorf("malformed field for column %q", col.Name)
	}
	n, err := strconv.Atoi(rest[:colonIdx])
	if err != nil {
		return value.Value{}, "", fmt.Errorf("malformed field length for column %q", col.Name)
	}
	rest = rest[colonIdx+1:]
	if len(rest) < n {
		return value.Value{}, "", fmt.Errorf("truncated field for column %q", col.Name)
	}
	text, remainder := rest[:n], rest[n:]

	var v value.Value
	switch col.Type.Kind {
	case value.KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return value.Value{}, "", fmt.Errorf("corrupt int field for column %q: %w", col.Name, err)
		}
		v = value.Int(i)
	case value.KindDate:
		v = value.Date(text)
	case value.KindChar:
		v = value.Char(text)
	default:
		return value.Value{}, "", fmt.Errorf("unsupported column type for %q", col.Name)
	}
	return v, remainder, nil
}
