// Package purge submits cache invalidations to a CDN.
//
// Client is the narrow interface the engine executes plans through. The
// Cloudflare implementation talks to the v4 purge_cache endpoint; Recorder
// keeps calls in memory for dry runs and tests.
package purge

import (
	"context"
	"sync"

	"github.com/danieljhkim/treepurge/internal/planner"
)

// Client submits purge requests. Methods are not retried.
type Client interface {
	// PurgeAll invalidates every cached object in the zone.
	PurgeAll(ctx context.Context, reason string) error

	// PurgeSingle invalidates one canonical page URL.
	PurgeSingle(ctx context.Context, url string) error

	// PurgeMany invalidates several canonical page URLs.
	PurgeMany(ctx context.Context, urls []string) error
}

// Call is one request received by a Recorder.
type Call struct {
	Method string   `json:"method"`
	Reason string   `json:"reason,omitempty"`
	URLs   []string `json:"urls,omitempty"`
}

// Recorder is a Client that stores calls instead of sending them.
type Recorder struct {
	// Err, when set, is returned from every call (the call is still recorded)
	Err error

	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// PurgeAll records a purge_all call.
func (r *Recorder) PurgeAll(ctx context.Context, reason string) error {
	return r.record(Call{Method: planner.MethodPurgeAll, Reason: reason})
}

// PurgeSingle records a purge_single call.
func (r *Recorder) PurgeSingle(ctx context.Context, url string) error {
	return r.record(Call{Method: planner.MethodPurgeSingle, URLs: []string{url}})
}

// PurgeMany records a purge_many call.
func (r *Recorder) PurgeMany(ctx context.Context, urls []string) error {
	return r.record(Call{Method: planner.MethodPurgeMany, URLs: append([]string(nil), urls...)})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.Err
}
