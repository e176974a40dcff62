package columnar

import (
	"errors"
	"fmt"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/pool"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
)

// ErrRemovalUnsupported is returned by every removal on a store-backed
// collection. Rows are never deleted during a run.
var ErrRemovalUnsupported = errors.New("columnar: removal is not supported")

// DefaultInitialCapacity is the number of rows a new column is sized for.
const DefaultInitialCapacity = 10

// Store holds the rows of one table.
type Store struct {
	table *schema.TableSchema
	kinds []schema.Kind
	// slot maps a field index to its column within the kind group, -1 until
	// the field is first written
	slot []int

	strings       [][]string
	ints          [][]int32
	floats        [][]float64
	intPresence   [][]byte
	floatPresence [][]byte
	rowNumbers    []int32

	rows            int
	initialCapacity int
	intern          *pool.StringInternPool
}

// Option configures a Store.
type Option func(*Store)

// WithInitialCapacity sizes new columns for n rows.
func WithInitialCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.initialCapacity = n
		}
	}
}

// WithInternPool deduplicates ID values through p.
func WithInternPool(p *pool.StringInternPool) Option {
	return func(s *Store) { s.intern = p }
}

// NewStore creates an empty store for table.
func NewStore(table *schema.TableSchema, opts ...Option) *Store {
	s := &Store{
		table:           table,
		kinds:           make([]schema.Kind, len(table.Fields)),
		slot:            make([]int, len(table.Fields)),
		initialCapacity: DefaultInitialCapacity,
	}
	for i := range table.Fields {
		s.kinds[i] = table.Fields[i].Type.Kind()
		s.slot[i] = -1
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rowNumbers = make([]int32, 0, s.initialCapacity)
	return s
}

// Table returns the schema of the stored table.
func (s *Store) Table() *schema.TableSchema {
	return s.table
}

// Len returns the number of built entities.
func (s *Store) Len() int {
	return s.rows
}

// Entity returns the entity at row i.
func (s *Store) Entity(i int) Entity {
	if i < 0 || i >= s.rows {
		panic(fmt.Sprintf("columnar: row %d out of range [0, %d)", i, s.rows))
	}
	return Entity{store: s, row: i}
}

// All returns a read-only view over every entity in row order.
func (s *Store) All() List {
	return List{store: s, n: s.rows}
}

// reserve returns the column of field, reserving it on first use.
func (s *Store) reserve(field int) int {
	if c := s.slot[field]; c >= 0 {
		return c
	}
	var c int
	switch s.kinds[field] {
	case schema.KindInt:
		c = reserveColumn(&s.ints, s.initialCapacity)
		reserveColumn(&s.intPresence, (s.initialCapacity+7)/8)
	case schema.KindFloat:
		c = reserveColumn(&s.floats, s.initialCapacity)
		reserveColumn(&s.floatPresence, (s.initialCapacity+7)/8)
	default:
		c = reserveColumn(&s.strings, s.initialCapacity)
	}
	s.slot[field] = c
	return c
}

// ReservedColumns returns the number of columns reserved so far.
func (s *Store) ReservedColumns() int {
	return len(s.strings) + len(s.ints) + len(s.floats)
}

func (s *Store) setString(field, row int, v string) {
	if v == "" {
		if c := s.slot[field]; c >= 0 {
			setValue(s.strings, c, row, "")
		}
		return
	}
	if s.intern != nil && s.table.Fields[field].Type == schema.TypeID {
		v = s.intern.Intern(v)
	}
	setValue(s.strings, s.reserve(field), row, v)
}

func (s *Store) setInt(field, row int, v int32) {
	c := s.reserve(field)
	setValue(s.ints, c, row, v)
	setPrimitivePresence(s.intPresence, c, row, true)
}

func (s *Store) setFloat(field, row int, v float64) {
	c := s.reserve(field)
	setValue(s.floats, c, row, v)
	setPrimitivePresence(s.floatPresence, c, row, true)
}

func (s *Store) mustKind(field int, kind schema.Kind) {
	if s.kinds[field] != kind {
		panic(fmt.Sprintf("columnar: %s.%s is not stored as %v",
			s.table.Filename, s.table.Fields[field].Name, kind))
	}
}

// TrimToSize releases spare capacity once loading is complete.
func (s *Store) TrimToSize() {
	trim(s.strings, s.rows)
	trim(s.ints, s.rows)
	trim(s.floats, s.rows)
	pages := (s.rows + 7) / 8
	trim(s.intPresence, pages)
	trim(s.floatPresence, pages)
	if cap(s.rowNumbers) > s.rows {
		rn := make([]int32, s.rows)
		copy(rn, s.rowNumbers)
		s.rowNumbers = rn
	}
}

// MemoryUsage estimates the bytes held by the store
func (s *Store) MemoryUsage() int64 {
	var total int64

	// Overhead for the store itself
	total += 128
	total += int64(len(s.slot)) * 16

	for _, col := range s.strings {
		total += int64(cap(col)) * 16 // string headers
		for _, v := range col {
			total += int64(len(v))
		}
	}
	for _, col := range s.ints {
		total += int64(cap(col)) * 4
	}
	for _, col := range s.floats {
		total += int64(cap(col)) * 8
	}
	for _, page := range s.intPresence {
		total += int64(cap(page))
	}
	for _, page := range s.floatPresence {
		total += int64(cap(page))
	}
	total += int64(cap(s.rowNumbers)) * 4

	return total
}

// MemoryPerRecord returns average memory usage per record
func (s *Store) MemoryPerRecord() float64 {
	if s.rows == 0 {
		return 0
	}
	return float64(s.MemoryUsage()) / float64(s.rows)
}

// Builder assembles one entity at a time and appends it to a store.
// Values set since the last Build or Clear are held by the builder and
// written to the store on Build.
type Builder struct {
	store     *Store
	strings   []string
	ints      []int32
	floats    []float64
	set       []bool
	rowNumber int
}

// NewBuilder creates a builder appending to store.
func NewBuilder(store *Store) *Builder {
	n := len(store.table.Fields)
	return &Builder{
		store:   store,
		strings: make([]string, n),
		ints:    make([]int32, n),
		floats:  make([]float64, n),
		set:     make([]bool, n),
	}
}

// SetCSVRowNumber records the data row the entity comes from.
func (b *Builder) SetCSVRowNumber(n int) { b.rowNumber = n }

// SetString sets a string field. An empty value leaves the field absent.
func (b *Builder) SetString(field int, v string) {
	b.store.mustKind(field, schema.KindString)
	b.strings[field] = v
	b.set[field] = v != ""
}

// SetInt sets an integer-like field.
func (b *Builder) SetInt(field int, v int32) {
	b.store.mustKind(field, schema.KindInt)
	b.ints[field] = v
	b.set[field] = true
}

// SetFloat sets a real field.
func (b *Builder) SetFloat(field int, v float64) {
	b.store.mustKind(field, schema.KindFloat)
	b.floats[field] = v
	b.set[field] = true
}

// Clear drops every value set since the last Build.
func (b *Builder) Clear() {
	for i := range b.set {
		b.set[i] = false
		b.strings[i] = ""
	}
	b.rowNumber = 0
}

// Build appends the pending values as a new row and returns its entity.
func (b *Builder) Build() Entity {
	s := b.store
	row := s.rows
	for field, ok := range b.set {
		if !ok {
			continue
		}
		switch s.kinds[field] {
		case schema.KindInt:
			s.setInt(field, row, b.ints[field])
		case schema.KindFloat:
			s.setFloat(field, row, b.floats[field])
		default:
			s.setString(field, row, b.strings[field])
		}
	}
	s.rowNumbers = append(s.rowNumbers, int32(b.rowNumber)) //nolint:gosec // row numbers fit in int32
	s.rows++
	b.Clear()
	return Entity{store: s, row: row}
}
