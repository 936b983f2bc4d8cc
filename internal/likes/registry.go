package likes

import (
	"sort"
	"time"

	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region types
// Entry is one bookmarked page: the position at like time plus a snapshot
// of the schema shown there. A later re-clustering may put a different
// candidate at the same position; the snapshot keeps what was seen.
type Entry struct {
	PageIndex int              `json:"page_index"`
	Schema    viewspace.Schema `json:"schema,omitempty"`
	LikedAt   time.Time        `json:"liked_at"`
}

// #endregion types

// #region registry
// Registry is a set of liked page positions. It never errors; range checks
// are the caller's concern.
type Registry struct {
	entries map[int]Entry
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int]Entry), now: time.Now}
}

// Toggle removes pageIndex if present, otherwise records it with a copy of
// schema. It returns the membership after the toggle.
func (r *Registry) Toggle(pageIndex int, schema viewspace.Schema) bool {
	if _, ok := r.entries[pageIndex]; ok {
		delete(r.entries, pageIndex)
		return false
	}
	r.entries[pageIndex] = Entry{
		PageIndex: pageIndex,
		Schema:    schema.Clone(),
		LikedAt:   r.now().UTC(),
	}
	return true
}

// IsLiked reports whether pageIndex is in the set.
func (r *Registry) IsLiked(pageIndex int) bool {
	_, ok := r.entries[pageIndex]
	return ok
}

// Get returns the entry for pageIndex.
func (r *Registry) Get(pageIndex int) (Entry, bool) {
	e, ok := r.entries[pageIndex]
	return e, ok
}

// Len returns the number of liked pages.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns all likes ordered by page index.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageIndex < out[j].PageIndex })
	return out
}

// Reset clears every like.
func (r *Registry) Reset() {
	r.entries = make(map[int]Entry)
}

// Restore replaces the set with previously saved entries. Schemas are
// copied as in Toggle.
func (r *Registry) Restore(entries []Entry) {
	r.entries = make(map[int]Entry, len(entries))
	for _, e := range entries {
		e.Schema = e.Schema.Clone()
		r.entries[e.PageIndex] = e
	}
}

// #endregion registry
