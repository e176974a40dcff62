package columnar

import (
	"github.com/MobilityData/gtfs-validator-sub014/pkg/gtfs"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
)

// Entity is a handle on one row of a store. Two entities are equal when
// they refer to the same row of the same store.
type Entity struct {
	store *Store
	row   int
}

// IsZero reports whether e refers to no row.
func (e Entity) IsZero() bool { return e.store == nil }

// Row returns the index of the entity within its store.
func (e Entity) Row() int { return e.row }

// Table returns the filename of the entity's table.
func (e Entity) Table() string { return e.store.table.Filename }

// CSVRowNumber returns the data row the entity was read from.
func (e Entity) CSVRowNumber() int {
	return int(e.store.rowNumbers[e.row])
}

// Has reports whether field holds a value.
func (e Entity) Has(field int) bool {
	s := e.store
	c := s.slot[field]
	switch s.kinds[field] {
	case schema.KindInt:
		return hasPrimitive(s.intPresence, c, e.row)
	case schema.KindFloat:
		return hasPrimitive(s.floatPresence, c, e.row)
	default:
		return getValue(s.strings, c, e.row) != ""
	}
}

// String returns a string field, or "" when absent.
func (e Entity) String(field int) string {
	s := e.store
	s.mustKind(field, schema.KindString)
	return getValue(s.strings, s.slot[field], e.row)
}

// Int returns an integer-like field and whether it is present.
func (e Entity) Int(field int) (int32, bool) {
	s := e.store
	s.mustKind(field, schema.KindInt)
	c := s.slot[field]
	if !hasPrimitive(s.intPresence, c, e.row) {
		return 0, false
	}
	return s.ints[c][e.row], true
}

// Float returns a real field and whether it is present.
func (e Entity) Float(field int) (float64, bool) {
	s := e.store
	s.mustKind(field, schema.KindFloat)
	c := s.slot[field]
	if !hasPrimitive(s.floatPresence, c, e.row) {
		return 0, false
	}
	return s.floats[c][e.row], true
}

// Date returns a date field.
func (e Entity) Date(field int) (gtfs.Date, bool) {
	v, ok := e.Int(field)
	return gtfs.Date(v), ok
}

// Time returns a time field.
func (e Entity) Time(field int) (gtfs.Time, bool) {
	v, ok := e.Int(field)
	return gtfs.Time(v), ok
}

// Color returns a color field.
func (e Entity) Color(field int) (gtfs.Color, bool) {
	v, ok := e.Int(field)
	return gtfs.Color(v), ok
}
