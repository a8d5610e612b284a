package decomp

import (
	"github.com/crillab/gophercsp/csp"
	"github.com/golang/glog"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize is the default capacity of the memo.
const DefaultMemoSize = 10000

// A Memo remembers the auxiliary variables introduced for non-linear sub-expressions,
// so that identical sub-expressions share the same variable.
// Its capacity is bounded: least recently used entries are evicted, and an evicted
// sub-expression simply gets a new variable the next time it is met.
type Memo struct {
	cache     *lru.Cache[string, *csp.IntVar]
	evictions int
	hits      int
}

// NewMemo returns a memo holding at most size entries.
func NewMemo(size int) (*Memo, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}
	m := &Memo{}
	cache, err := lru.NewWithEvict(size, func(key string, v *csp.IntVar) {
		m.evictions++
		glog.V(2).Infof("memo: evicted %s (%s)", key, v.Name)
	})
	if err != nil {
		return nil, err
	}
	m.cache = cache
	return m, nil
}

// Get returns the variable associated with the given key.
func (m *Memo) Get(key string) (*csp.IntVar, bool) {
	v, ok := m.cache.Get(key)
	if ok {
		m.hits++
	}
	return v, ok
}

// Add associates v with the given key.
func (m *Memo) Add(key string, v *csp.IntVar) {
	m.cache.Add(key, v)
}

// Len returns the number of entries in the memo.
func (m *Memo) Len() int { return m.cache.Len() }

// Evictions returns the number of entries evicted so far.
func (m *Memo) Evictions() int { return m.evictions }

// Hits returns the number of successful lookups so far.
func (m *Memo) Hits() int { return m.hits }
