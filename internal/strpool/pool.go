// Package strpool interns strings with exact reference counting.
//
// Equal content always maps to the same Handle while at least one reference
// is alive. Every Get must be balanced by one Put; the entry is dropped when
// its count reaches zero.
package strpool

import (
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

const shardCount = 32

// Default is the process-wide pool used by the package level functions.
var Default = New()

type entry struct {
	value string
	refs  int
}

// Handle references an interned string. The zero Handle holds nothing.
type Handle struct {
	e *entry
}

// Value returns the interned content.
func (h Handle) Value() string {
	if h.e == nil {
		return ""
	}
	return h.e.value
}

// IsZero reports whether h references nothing.
func (h Handle) IsZero() bool {
	return h.e == nil
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Pool is a sharded, reference counted string table. Safe for concurrent use.
type Pool struct {
	shards [shardCount]shard
}

// New creates an empty pool.
func New() *Pool {
	p := &Pool{}
	for i := range p.shards {
		p.shards[i].entries = make(map[string]*entry)
	}
	return p
}

func (p *Pool) shardFor(content string) *shard {
	return &p.shards[xxh3.HashString(content)%shardCount]
}

// Get returns the handle for content, adding a reference.
func (p *Pool) Get(content string) Handle {
	s := p.shardFor(content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[content]; ok {
		e.refs++
		return Handle{e: e}
	}

	// Clone so the pool never pins a caller's larger backing array
	e := &entry{value: strings.Clone(content), refs: 1}
	s.entries[e.value] = e
	return Handle{e: e}
}

// Put drops one reference held by h. The zero Handle is ignored.
// Putting a handle whose entry was already reclaimed panics.
func (p *Pool) Put(h Handle) {
	if h.e == nil {
		return
	}

	s := p.shardFor(h.e.value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if h.e.refs <= 0 {
		panic("strpool: put of a released handle")
	}

	h.e.refs--
	if h.e.refs == 0 {
		delete(s.entries, h.e.value)
	}
}

// Refs returns the current reference count for content, 0 if not interned.
func (p *Pool) Refs(content string) int {
	s := p.shardFor(content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[content]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of distinct live entries.
func (p *Pool) Len() int {
	n := 0
	for i := range p.shards {
		s := &p.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Get interns content in the Default pool.
func Get(content string) Handle { return Default.Get(content) }

// Put releases h to the Default pool.
func Put(h Handle) { Default.Put(h) }

// Refs reports the reference count of content in the Default pool.
func Refs(content string) int { return Default.Refs(content) }

// Len reports the number of live entries in the Default pool.
func Len() int { return Default.Len() }
