package planner

import (
	"fmt"
	"sort"
)

// PurgePlan describes the cache invalidation to submit for one event.
// A nil *PurgePlan means no purge is needed.
type PurgePlan struct {
	// Kind is the plan type: "purge_all" or "purge_urls"
	Kind string `json:"kind"`

	// Reason explains a full purge (empty for URL purges)
	Reason string `json:"reason,omitempty"`

	// URLs is the sorted, duplicate-free set of canonical URLs to purge
	URLs []string `json:"urls,omitempty"`
}

// Plan kind constants
const (
	KindPurgeAll  = "purge_all"
	KindPurgeURLs = "purge_urls"
)

// Purge client method constants, one per plan shape.
const (
	MethodPurgeAll    = "purge_all"
	MethodPurgeSingle = "purge_single"
	MethodPurgeMany   = "purge_many"
)

// NewPurgeAll creates a plan that purges the whole zone.
func NewPurgeAll(reason string) *PurgePlan {
	return &PurgePlan{
		Kind:   KindPurgeAll,
		Reason: reason,
	}
}

// NewPurgeURLs creates a plan that purges the given URLs.
// Duplicates are dropped and the result is sorted. An empty set is an error:
// "nothing to purge" is a nil plan, never an empty URL plan.
func NewPurgeURLs(urls ...string) (*PurgePlan, error) {
	set := newURLSet()
	set.add(urls...)
	if set.len() == 0 {
		return nil, fmt.Errorf("purge plan requires at least one URL")
	}
	return &PurgePlan{
		Kind: KindPurgeURLs,
		URLs: set.sorted(),
	}, nil
}

// IsPurgeAll returns true if the plan purges everything.
func (p *PurgePlan) IsPurgeAll() bool {
	return p.Kind == KindPurgeAll
}

// Method returns which purge client operation carries out the plan.
func (p *PurgePlan) Method() string {
	if p.IsPurgeAll() {
		return MethodPurgeAll
	}
	if len(p.URLs) == 1 {
		return MethodPurgeSingle
	}
	return MethodPurgeMany
}

// urlSet accumulates unique URLs.
type urlSet struct {
	items map[string]struct{}
}

func newURLSet() *urlSet {
	return &urlSet{items: make(map[string]struct{})}
}

func (s *urlSet) add(urls ...string) {
	for _, u := range urls {
		s.items[u] = struct{}{}
	}
}

func (s *urlSet) len() int {
	return len(s.items)
}

func (s *urlSet) sorted() []string {
	out := make([]string, 0, len(s.items))
	for u := range s.items {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
