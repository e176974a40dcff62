// Package columnar stores the rows of one GTFS table as parallel typed
// columns instead of one object per row.
//
// # Overview
//
// Each table gets a Store. Fields are grouped by physical kind:
//   - string fields (IDs, text, URLs) live in [][]string, "" meaning absent
//   - integer-like fields (enums, dates, times, colors) live in [][]int32
//   - real fields (coordinates, distances, prices) live in [][]float64
//
// Primitive columns carry a presence page of one bit per row, so an unset
// optional value reads as absent rather than as zero. The CSV row number of
// every entity is kept in its own column.
//
// Columns are reserved on the first write to a field, so optional columns
// that a feed never fills cost nothing.
//
// # Entities
//
// An Entity is a (store, row) pair. It is comparable and cheap to copy, and
// it reads through to the store on every access:
//
//	b := columnar.NewBuilder(store)
//	b.SetCSVRowNumber(1)
//	b.SetString(stopID, "S1")
//	b.SetFloat(stopLat, 47.37)
//	e := b.Build()
//
//	lat, ok := e.Float(stopLat) // 47.37, true
//	lon, ok := e.Float(stopLon) // 0, false
//
// # Concurrency
//
// A Store is written by a single loader goroutine and is read-only once the
// table is loaded; reads need no locking.
package columnar
