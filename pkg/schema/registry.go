// Package schema holds the static table, column and key metadata of a GTFS
// feed. A Registry is built once per process and shared read-only.
package schema

import (
	"fmt"
	"sort"
	"sync"
)

// TableSchema describes one file of the feed.
type TableSchema struct {
	Filename    string
	Required    bool
	Recommended bool
	Fields      []FieldSchema

	index      map[string]int
	primaryKey []int
}

// NewTable builds a table description and indexes its fields.
func NewTable(filename string, fields ...FieldSchema) *TableSchema {
	t := &TableSchema{
		Filename: filename,
		Fields:   fields,
		index:    make(map[string]int, len(fields)),
	}
	for i := range fields {
		t.index[fields[i].Name] = i
		if fields[i].PrimaryKey {
			t.primaryKey = append(t.primaryKey, i)
		}
	}
	return t
}

// MarkRequired flags a file that must be present in every feed.
func (t *TableSchema) MarkRequired() *TableSchema { t.Required = true; return t }

// MarkRecommended flags a file whose absence draws a warning.
func (t *TableSchema) MarkRecommended() *TableSchema { t.Recommended = true; return t }

// FieldIndex returns the position of the named field.
func (t *TableSchema) FieldIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// MustIndex returns the position of the named field and panics if the
// table does not declare it. Use it only with names known at compile time.
func (t *TableSchema) MustIndex(name string) int {
	i, ok := t.index[name]
	if !ok {
		panic(fmt.Sprintf("schema: %s has no field %q", t.Filename, name))
	}
	return i
}

// Field returns the schema of the field at position i.
func (t *TableSchema) Field(i int) *FieldSchema {
	return &t.Fields[i]
}

// PrimaryKey returns the positions of the primary key fields, in
// declaration order. It is empty for tables without a key.
func (t *TableSchema) PrimaryKey() []int {
	return t.primaryKey
}

// ForeignKey is one declared reference from a child column to a parent column.
type ForeignKey struct {
	ChildTable  string
	ChildField  string
	ParentTable string
	ParentField string
}

func (fk ForeignKey) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", fk.ChildTable, fk.ChildField, fk.ParentTable, fk.ParentField)
}

// Registry maps filenames to table schemas.
type Registry struct {
	tables []*TableSchema
	byName map[string]*TableSchema
}

// NewRegistry validates and indexes the given tables. It fails on a
// duplicate filename or a foreign key to an undeclared column.
func NewRegistry(tables ...*TableSchema) (*Registry, error) {
	r := &Registry{byName: make(map[string]*TableSchema, len(tables))}
	for _, t := range tables {
		if _, dup := r.byName[t.Filename]; dup {
			return nil, fmt.Errorf("schema: duplicate table %s", t.Filename)
		}
		r.byName[t.Filename] = t
		r.tables = append(r.tables, t)
	}
	sort.Slice(r.tables, func(i, j int) bool { return r.tables[i].Filename < r.tables[j].Filename })

	for _, fk := range r.ForeignKeys() {
		parent, ok := r.byName[fk.ParentTable]
		if !ok {
			return nil, fmt.Errorf("schema: %s references unknown table", fk)
		}
		if _, ok := parent.FieldIndex(fk.ParentField); !ok {
			return nil, fmt.Errorf("schema: %s references unknown field", fk)
		}
	}
	return r, nil
}

// Table returns the schema for filename.
func (r *Registry) Table(filename string) (*TableSchema, bool) {
	t, ok := r.byName[filename]
	return t, ok
}

// Tables returns every table sorted by filename.
func (r *Registry) Tables() []*TableSchema {
	return r.tables
}

// ForeignKeys lists every declared reference, ordered by child table then
// child field position.
func (r *Registry) ForeignKeys() []ForeignKey {
	var out []ForeignKey
	for _, t := range r.tables {
		for _, f := range t.Fields {
			if f.ForeignKey == nil {
				continue
			}
			out = append(out, ForeignKey{
				ChildTable:  t.Filename,
				ChildField:  f.Name,
				ParentTable: f.ForeignKey.Table,
				ParentField: f.ForeignKey.Field,
			})
		}
	}
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of the GTFS schedule tables.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(gtfsTables()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
