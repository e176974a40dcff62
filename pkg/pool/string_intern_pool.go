package pool

import (
	"sync"
	"sync/atomic"
)

// StringInternPool deduplicates frequently repeated strings, such as the
// trip_id and stop_id values that repeat across stop_times.txt rows.
type StringInternPool struct {
	mu      sync.RWMutex
	strings map[string]string
	maxSize int
	size    int64
	hits    int64
	misses  int64
}

// DefaultInternPoolSize bounds a pool created with a non-positive size.
const DefaultInternPoolSize = 1 << 20

// NewStringInternPool creates a pool holding at most maxSize strings.
func NewStringInternPool(maxSize int) *StringInternPool {
	if maxSize <= 0 {
		maxSize = DefaultInternPoolSize
	}
	return &StringInternPool{
		strings: make(map[string]string, 1024),
		maxSize: maxSize,
	}
}

// Intern returns an interned version of the string
func (p *StringInternPool) Intern(s string) string {
	if s == "" {
		return s
	}
	p.mu.RLock()
	if interned, ok := p.strings[s]; ok {
		p.mu.RUnlock()
		atomic.AddInt64(&p.hits, 1)
		return interned
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if interned, ok := p.strings[s]; ok {
		atomic.AddInt64(&p.hits, 1)
		return interned
	}

	atomic.AddInt64(&p.misses, 1)
	if atomic.LoadInt64(&p.size) >= int64(p.maxSize) {
		return s
	}

	// s may alias a reused CSV record buffer
	owned := string([]byte(s))
	p.strings[owned] = owned
	atomic.AddInt64(&p.size, 1)
	return owned
}

// Stats returns intern pool statistics
func (p *StringInternPool) Stats() (size, hits, misses int64) {
	return atomic.LoadInt64(&p.size),
		atomic.LoadInt64(&p.hits),
		atomic.LoadInt64(&p.misses)
}

// Clear empties the pool
func (p *StringInternPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.strings = make(map[string]string, 1024)
	atomic.StoreInt64(&p.size, 0)
	atomic.StoreInt64(&p.hits, 0)
	atomic.StoreInt64(&p.misses, 0)
}
