package gazetteer

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Index is the frozen result of Build: two maps over the same set of
// Location records, safe for unlimited concurrent reads. Construct one
// with Build; there is no exported way to mutate an Index afterward.
type Index struct {
	byID   map[int64]*Location
	byName map[string]map[int64]*Location
}

// Len reports how many distinct locations the index holds.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// LazyIndex wraps a build function so that concurrent first callers
// share a single build instead of racing to build it (and instead of a
// plain sync.Once silently discarding the error from a failed first
// attempt forever). Subsequent calls after a successful build return
// the cached Index immediately.
type LazyIndex struct {
	build func() (*Index, error)

	group singleflight.Group
	mu    sync.RWMutex
	built *Index
}

// NewLazyIndex wraps build for one-shot, deduplicated, process-scope
// construction. The returned loader is safe for concurrent use.
func NewLazyIndex(build func() (*Index, error)) *LazyIndex {
	return &LazyIndex{build: build}
}

// Get returns the built Index, building it on the first call. If the
// underlying build fails, the failure is not cached: the next caller
// gets to retry rather than being stuck with a permanently broken
// process-scope index.
func (l *LazyIndex) Get() (*Index, error) {
	l.mu.RLock()
	if l.built != nil {
		defer l.mu.RUnlock()
		return l.built, nil
	}
	l.mu.RUnlock()

	v, err, _ := l.group.Do("build", func() (interface{}, error) {
		// A caller that saw no index above may reach Do only after an
		// earlier build has finished; reuse that result instead of
		// building again.
		l.mu.RLock()
		built := l.built
		l.mu.RUnlock()
		if built != nil {
			return built, nil
		}

		idx, err := l.build()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.built = idx
		l.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}
