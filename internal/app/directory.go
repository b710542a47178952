package app

import (
	"sort"
	"sync"
)

// Directory is the process-wide set of broadcaster names currently
// considered live. It shares a namespace with room keys but is tracked
// independently; no referential integrity is enforced between the two.
type Directory struct {
	mu        sync.RWMutex
	streamers map[string]struct{}
}

func NewDirectory() *Directory {
	return &Directory{streamers: make(map[string]struct{})}
}

// Register is idempotent.
func (d *Directory) Register(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streamers[name] = struct{}{}
}

// Unregister is idempotent.
func (d *Directory) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.streamers, name)
}

// ListAll returns the current set, sorted for stable output.
func (d *Directory) ListAll() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.streamers))
	for name := range d.streamers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
