package notice

import (
	"sort"
	"sync"
)

// Container collects the notices of one run. Add and AddSystemError are
// safe for concurrent use; the lock covers only the append.
type Container struct {
	mu           sync.Mutex
	byCode       map[string][]Notice
	systemErrors []Notice
	count        int
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{byCode: make(map[string][]Notice)}
}

// Add appends a validation notice. Duplicates are kept.
func (c *Container) Add(n Notice) {
	c.mu.Lock()
	c.byCode[n.code] = append(c.byCode[n.code], n)
	c.count++
	c.mu.Unlock()
}

// AddAll appends every notice of other, including its system errors.
func (c *Container) AddAll(other *Container) {
	notices := other.Notices()
	systemErrors := other.SystemErrors()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range notices {
		c.byCode[n.code] = append(c.byCode[n.code], n)
	}
	c.count += len(notices)
	c.systemErrors = append(c.systemErrors, systemErrors...)
}

// AddSystemError appends a notice about a failure of the validator itself.
func (c *Container) AddSystemError(n Notice) {
	c.mu.Lock()
	c.systemErrors = append(c.systemErrors, n)
	c.mu.Unlock()
}

// Len returns the number of validation notices.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// ByCode returns a copy of the notices with the given code.
func (c *Container) ByCode(code string) []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.byCode[code]...)
}

// Codes returns the codes seen so far, sorted.
func (c *Container) Codes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	codes := make([]string, 0, len(c.byCode))
	for code := range c.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Notices returns every validation notice in a deterministic order:
// by code, then severity, then context.
func (c *Container) Notices() []Notice {
	c.mu.Lock()
	out := make([]Notice, 0, c.count)
	for _, group := range c.byCode {
		out = append(out, group...)
	}
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return compareNotices(out[i], out[j]) < 0 })
	return out
}

// SystemErrors returns the system errors in a deterministic order.
func (c *Container) SystemErrors() []Notice {
	c.mu.Lock()
	out := append([]Notice(nil), c.systemErrors...)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return compareNotices(out[i], out[j]) < 0 })
	return out
}

// HasErrors reports whether any validation notice has ERROR severity.
func (c *Container) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, group := range c.byCode {
		for _, n := range group {
			if n.severity == Error {
				return true
			}
		}
	}
	return false
}
