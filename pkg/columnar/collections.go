package columnar

// List is a read-only view over the first n entities of a store.
type List struct {
	store *Store
	n     int
}

// Len returns the number of entities in the view.
func (l List) Len() int { return l.n }

// At returns the i-th entity.
func (l List) At(i int) Entity { return l.store.Entity(i) }

// Each calls fn for every entity in row order until fn returns false.
func (l List) Each(fn func(Entity) bool) {
	for i := 0; i < l.n; i++ {
		if !fn(Entity{store: l.store, row: i}) {
			return
		}
	}
}

// Remove always fails; rows cannot be removed from a store.
func (l List) Remove(int) error { return ErrRemovalUnsupported }

// Multimap groups entities by a string key. Keys are returned in the
// order they were first inserted.
type Multimap struct {
	groups map[string][]Entity
	keys   []string
}

// NewMultimap creates an empty multimap.
func NewMultimap() *Multimap {
	return &Multimap{groups: make(map[string][]Entity)}
}

// GroupBy groups every entity of store by the value of a string field.
// Entities where the field is absent are left out.
func GroupBy(store *Store, field int) *Multimap {
	m := NewMultimap()
	store.All().Each(func(e Entity) bool {
		if key := e.String(field); key != "" {
			m.Put(key, e)
		}
		return true
	})
	return m
}

// Put appends e under key.
func (m *Multimap) Put(key string, e Entity) {
	group, ok := m.groups[key]
	if !ok {
		m.keys = append(m.keys, key)
	}
	m.groups[key] = append(group, e)
}

// Get returns the entities stored under key. The returned slice must not
// be modified.
func (m *Multimap) Get(key string) []Entity {
	group := m.groups[key]
	return group[:len(group):len(group)]
}

// Contains reports whether key has at least one entity.
func (m *Multimap) Contains(key string) bool {
	_, ok := m.groups[key]
	return ok
}

// Keys returns the keys in first-insertion order.
func (m *Multimap) Keys() []string {
	return m.keys[:len(m.keys):len(m.keys)]
}

// Len returns the number of distinct keys.
func (m *Multimap) Len() int { return len(m.keys) }

// Remove always fails; entities cannot be removed from a store-backed view.
func (m *Multimap) Remove(string, Entity) error { return ErrRemovalUnsupported }
