package table

import (
	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
)

// Container is a loaded table: its entities, its load status and the
// columns its header declared. It is read-only once returned by a Loader.
type Container struct {
	store   *columnar.Store
	status  Status
	present bool
	columns map[string]bool
}

func newContainer(t *schema.TableSchema, status Status, present bool, opts ...columnar.Option) *Container {
	return &Container{
		store:   columnar.NewStore(t, opts...),
		status:  status,
		present: present,
		columns: map[string]bool{},
	}
}

// Schema returns the table schema.
func (c *Container) Schema() *schema.TableSchema { return c.store.Table() }

// Filename returns the GTFS filename of the table.
func (c *Container) Filename() string { return c.store.Table().Filename }

// Status returns the load status.
func (c *Container) Status() Status { return c.status }

// Present reports whether the feed contained the file, even if it was empty
// or could not be parsed.
func (c *Container) Present() bool { return c.present }

// Store returns the underlying entity store.
func (c *Container) Store() *columnar.Store { return c.store }

// Len returns the number of loaded entities.
func (c *Container) Len() int { return c.store.Len() }

// Entities returns a read-only view of every loaded entity.
func (c *Container) Entities() columnar.List { return c.store.All() }

// HasColumn reports whether the file header declared the column.
func (c *Container) HasColumn(name string) bool { return c.columns[name] }

// GroupBy indexes the entities by the value of field.
func (c *Container) GroupBy(field string) *columnar.Multimap {
	return columnar.GroupBy(c.store, c.Schema().MustIndex(field))
}

// NewEmpty returns a container with no rows for a file of t that the feed
// contains.
func NewEmpty(t *schema.TableSchema, status Status) *Container {
	return newContainer(t, status, true)
}

// NewAbsent returns the container of an optional table the feed does not
// contain.
func NewAbsent(t *schema.TableSchema) *Container {
	return newContainer(t, StatusEmpty, false)
}
