// Package feed loads every table of a GTFS feed into an immutable Feed.
package feed

import (
	"sort"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
)

// Feed is the set of loaded tables of one run. It holds a container for
// every table of the registry, including absent ones.
type Feed struct {
	registry *schema.Registry
	tables   map[string]*table.Container
}

// New assembles a feed. Tables of the registry missing from containers get
// an absent container with StatusEmpty.
func New(registry *schema.Registry, containers ...*table.Container) *Feed {
	f := &Feed{registry: registry, tables: make(map[string]*table.Container, len(containers))}
	for _, c := range containers {
		f.tables[c.Filename()] = c
	}
	for _, t := range registry.Tables() {
		if _, ok := f.tables[t.Filename]; !ok {
			f.tables[t.Filename] = table.NewAbsent(t)
		}
	}
	return f
}

// Registry returns the schema registry the feed was loaded with.
func (f *Feed) Registry() *schema.Registry { return f.registry }

// Table returns the container of filename, or nil if the registry does not
// declare it.
func (f *Feed) Table(filename string) *table.Container { return f.tables[filename] }

// Filenames returns the declared filenames, sorted.
func (f *Feed) Filenames() []string {
	names := make([]string, 0, len(f.tables))
	for name := range f.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usable reports whether every named table loaded well enough to validate.
func (f *Feed) Usable(filenames ...string) bool {
	for _, name := range filenames {
		c := f.tables[name]
		if c == nil || !c.Status().Usable() {
			return false
		}
	}
	return true
}

// Rows returns the total number of loaded entities.
func (f *Feed) Rows() int {
	n := 0
	for _, c := range f.tables {
		n += c.Len()
	}
	return n
}
