package store

import (
	"sync"

	"github.com/mark-summerfield/gong"
)

var (
	cacheMu sync.Mutex
	cache   = map[string]*Store{}
)

// OpenCached returns the process-wide Store for path, opening it on first
// use. Paths are canonicalized with gong.AbsPath before being used as the
// cache key, so two different spellings of the same file share one handle.
func OpenCached(path string) (*Store, error) {
	abs := gong.AbsPath(path)

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[abs]; ok {
		return s, nil
	}

	s, err := Open(abs)
	if err != nil {
		return nil, err
	}
	cache[abs] = s
	return s, nil
}

// forget drops path's cached handle without closing it. Called by Close, by
// the writer after it publishes a rewritten file, and by tests.
func forget(path string) {
	abs := gong.AbsPath(path)
	cacheMu.Lock()
	defer cacheMu.Unlock()
	delete(cache, abs)
}
