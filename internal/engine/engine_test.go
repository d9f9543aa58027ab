package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/danieljhkim/treepurge/internal/clock"
	"github.com/danieljhkim/treepurge/internal/fsops"
	"github.com/danieljhkim/treepurge/internal/hash"
	"github.com/danieljhkim/treepurge/internal/journal"
	"github.com/danieljhkim/treepurge/internal/planner"
	"github.com/danieljhkim/treepurge/internal/purge"
	"github.com/danieljhkim/treepurge/internal/sitetree"
)

// reasonGate is a closed gate that explains itself.
type reasonGate struct{}

func (reasonGate) Available() bool { return false }
func (reasonGate) Reason() string  { return "cloudflare.zone_id is not set" }

type testEnv struct {
	engine   *Engine
	recorder *purge.Recorder
	journal  *journal.FileStore
	clock    *clock.FakeClock
	logs     *observer.ObservedLogs
	tree     *sitetree.MemoryTree
}

// newTestEnv builds an engine over:
//
//	root("") -> a("products") -> b("widget"), c("gadget")
func newTestEnv(t *testing.T, gate CredentialGate) *testEnv {
	t.Helper()

	tree, err := sitetree.NewMemoryTree([]sitetree.Node{
		{ID: "root", Title: "Home", NavLabel: "Home"},
		{ID: "a", ParentID: "root", Slug: "products", Title: "Products", NavLabel: "Products"},
		{ID: "b", ParentID: "a", Slug: "widget", Title: "Widget", NavLabel: "Widget"},
		{ID: "c", ParentID: "a", Slug: "gadget", Title: "Gadget", NavLabel: "Gadget"},
	})
	if err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	rec := purge.NewRecorder()
	store := journal.NewFileStore(fsops.NewRealFS(), filepath.Join(t.TempDir(), "journal"))
	clk := clock.NewFakeClock(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	eng := New(planner.New(), rec, gate, store, hash.NewSHA256Hasher(), clk, zap.New(core))
	return &testEnv{engine: eng, recorder: rec, journal: store, clock: clk, logs: logs, tree: tree}
}

func (env *testEnv) node(t *testing.T, id string) sitetree.Node {
	t.Helper()
	n, err := env.tree.GetNode(id)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestPlan_Preview(t *testing.T) {
	env := newTestEnv(t, StaticGate(false))
	a := env.node(t, "a")

	result, err := env.engine.Plan(&PlanRequest{Event: planner.NewPublished(&a, a), Tree: env.tree})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if result.Noop() || result.Method != planner.MethodPurgeMany {
		t.Fatalf("Plan() = %+v, want purge_many", result)
	}
	want := []string{"products", "products/gadget", "products/widget"}
	if len(result.Plan.URLs) != len(want) {
		t.Fatalf("URLs = %v, want %v", result.Plan.URLs, want)
	}
	for i := range want {
		if result.Plan.URLs[i] != want[i] {
			t.Errorf("URLs[%d] = %q, want %q", i, result.Plan.URLs[i], want[i])
		}
	}
	if len(env.recorder.Calls()) != 0 {
		t.Error("Plan() must not contact the purge client")
	}
}

func TestPlan_RequiresTree(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))

	a := env.node(t, "a")

	_, err := env.engine.Plan(&PlanRequest{Event: planner.NewPublished(&a, a)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Plan() error = %v, want ErrValidation", err)
	}
}

func TestPlan_FirstPublishNeedsNoTree(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))
	page := sitetree.Node{ID: "new", ParentID: "a", Slug: "new-page", Title: "New"}

	result, err := env.engine.Plan(&PlanRequest{Event: planner.NewPublished(nil, page)})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !result.Noop() {
		t.Errorf("Plan() = %+v, want no-op", result)
	}

	handled, err := env.engine.Handle(context.Background(), &HandleRequest{Event: planner.NewPublished(nil, page)})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if handled.Status != journal.StatusNoop {
		t.Errorf("Handle() status = %q, want %q", handled.Status, journal.StatusNoop)
	}
	if len(env.recorder.Calls()) != 0 {
		t.Errorf("purge client called %d times, want 0", len(env.recorder.Calls()))
	}
}

func TestHandle_MethodMapping(t *testing.T) {
	tests := []struct {
		name       string
		event      func(t *testing.T, env *testEnv) planner.ChangeEvent
		wantMethod string
		wantURLs   []string
	}{
		{
			name: "unpublish purges everything",
			event: func(t *testing.T, env *testEnv) planner.ChangeEvent {
				return planner.NewUnpublished(env.node(t, "b"))
			},
			wantMethod: planner.MethodPurgeAll,
		},
		{
			name: "leaf page purges one url",
			event: func(t *testing.T, env *testEnv) planner.ChangeEvent {
				b := env.node(t, "b")
				return planner.NewPublished(&b, b)
			},
			wantMethod: planner.MethodPurgeSingle,
			wantURLs:   []string{"products/widget"},
		},
		{
			name: "section page purges many urls",
			event: func(t *testing.T, env *testEnv) planner.ChangeEvent {
				a := env.node(t, "a")
				return planner.NewPublished(&a, a)
			},
			wantMethod: planner.MethodPurgeMany,
			wantURLs:   []string{"products", "products/gadget", "products/widget"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, StaticGate(true))

			result, err := env.engine.Handle(context.Background(), &HandleRequest{Event: tt.event(t, env), Tree: env.tree})
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if !result.Submitted() {
				t.Fatalf("Status = %q, want submitted", result.Status)
			}

			calls := env.recorder.Calls()
			if len(calls) != 1 {
				t.Fatalf("purge calls = %d, want 1", len(calls))
			}
			if calls[0].Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", calls[0].Method, tt.wantMethod)
			}
			if len(calls[0].URLs) != len(tt.wantURLs) {
				t.Fatalf("URLs = %v, want %v", calls[0].URLs, tt.wantURLs)
			}
			for i := range tt.wantURLs {
				if calls[0].URLs[i] != tt.wantURLs[i] {
					t.Errorf("URLs[%d] = %q, want %q", i, calls[0].URLs[i], tt.wantURLs[i])
				}
			}
			if tt.wantMethod == planner.MethodPurgeAll && calls[0].Reason == "" {
				t.Error("purge_all should carry a reason")
			}
		})
	}
}

func TestHandle_CredentialsUnavailable(t *testing.T) {
	env := newTestEnv(t, reasonGate{})

	result, err := env.engine.Handle(context.Background(), &HandleRequest{
		Event: planner.NewUnpublished(env.node(t, "a")),
		Tree:  env.tree,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if result.Status != journal.StatusSkipped || result.Plan != nil {
		t.Errorf("result = %+v, want skipped without plan", result)
	}
	if result.Message != "purge credentials unavailable: cloudflare.zone_id is not set" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(env.recorder.Calls()) != 0 {
		t.Error("skipped events must not reach the purge client")
	}
	if env.logs.FilterMessage("purge skipped").Len() != 1 {
		t.Error("expected a purge skipped log entry")
	}
}

func TestHandle_Noop(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))

	result, err := env.engine.Handle(context.Background(), &HandleRequest{
		Event: planner.NewPublished(nil, env.node(t, "b")),
		Tree:  env.tree,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if result.Status != journal.StatusNoop || result.Plan != nil {
		t.Errorf("result = %+v, want noop", result)
	}
	if len(env.recorder.Calls()) != 0 {
		t.Error("no-op must not reach the purge client")
	}
}

func TestHandle_DryRun(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))
	b := env.node(t, "b")

	result, err := env.engine.Handle(context.Background(), &HandleRequest{
		Event:  planner.NewPublished(&b, b),
		Tree:   env.tree,
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if result.Status != journal.StatusDryRun || result.Method != planner.MethodPurgeSingle {
		t.Errorf("result = %+v, want dry_run purge_single", result)
	}
	if len(env.recorder.Calls()) != 0 {
		t.Error("dry run must not reach the purge client")
	}
}

func TestHandle_PlanningErrorSubmitsNothing(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))
	ghost := sitetree.Node{ID: "ghost", ParentID: "a", Slug: "ghost"}

	_, err := env.engine.Handle(context.Background(), &HandleRequest{
		Event: planner.NewPublished(&ghost, ghost),
		Tree:  env.tree,
	})
	if !errors.Is(err, sitetree.ErrNodeNotFound) {
		t.Errorf("Handle() error = %v, want ErrNodeNotFound", err)
	}
	if len(env.recorder.Calls()) != 0 {
		t.Error("planning errors must not reach the purge client")
	}
	records, _ := env.journal.List()
	if len(records) != 0 {
		t.Errorf("journal has %d records, want 0", len(records))
	}
}

func TestHandle_InvalidEvent(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))

	_, err := env.engine.Handle(context.Background(), &HandleRequest{
		Event: planner.ChangeEvent{Kind: "archived", Current: sitetree.Node{ID: "a"}},
		Tree:  env.tree,
	})
	if !errors.Is(err, planner.ErrInvalidEvent) {
		t.Errorf("Handle() error = %v, want ErrInvalidEvent", err)
	}
}

func TestHandle_SubmitFailure(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))
	boom := errors.New("403 forbidden")
	env.recorder.Err = boom

	result, err := env.engine.Handle(context.Background(), &HandleRequest{
		Event: planner.NewUnpublished(env.node(t, "a")),
		Tree:  env.tree,
	})
	if !errors.Is(err, ErrSubmit) || !errors.Is(err, boom) {
		t.Fatalf("Handle() error = %v, want ErrSubmit wrapping cause", err)
	}
	if result == nil || result.Status != journal.StatusFailed || result.Message != boom.Error() {
		t.Fatalf("result = %+v, want failed with message", result)
	}
	if len(env.recorder.Calls()) != 1 {
		t.Errorf("purge calls = %d, want exactly 1 (no retry)", len(env.recorder.Calls()))
	}

	rec, err := env.engine.Record(result.RecordID)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.Status != journal.StatusFailed {
		t.Errorf("journal status = %q, want failed", rec.Status)
	}
}

func TestHandle_JournalAndHistory(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))
	b := env.node(t, "b")

	first, err := env.engine.Handle(context.Background(), &HandleRequest{Event: planner.NewPublished(&b, b), Tree: env.tree})
	if err != nil {
		t.Fatal(err)
	}
	env.clock.Advance(time.Minute)
	second, err := env.engine.Handle(context.Background(), &HandleRequest{Event: planner.NewUnpublished(b), Tree: env.tree})
	if err != nil {
		t.Fatal(err)
	}

	if first.RecordID == "" || first.RecordID == second.RecordID {
		t.Fatalf("record IDs = %q, %q; want distinct non-empty", first.RecordID, second.RecordID)
	}

	history, err := env.engine.History(0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 || history[0].ID != second.RecordID || history[1].ID != first.RecordID {
		t.Fatalf("History() order wrong: %v", history)
	}
	if !history[1].HandledAt.Equal(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("HandledAt = %v", history[1].HandledAt)
	}

	limited, err := env.engine.History(1)
	if err != nil || len(limited) != 1 {
		t.Errorf("History(1) = (%d records, %v), want 1", len(limited), err)
	}

	if _, err := env.engine.Record("20260101T000000.000000000Z-none"); !errors.Is(err, journal.ErrRecordNotFound) {
		t.Errorf("Record() error = %v, want ErrRecordNotFound", err)
	}
}

func TestHandle_WithoutJournal(t *testing.T) {
	rec := purge.NewRecorder()
	eng := New(planner.New(), rec, StaticGate(true), nil, &hash.FakeHasher{}, clock.RealClock{}, nil)

	result, err := eng.Handle(context.Background(), &HandleRequest{
		Event: planner.NewUnpublished(sitetree.Node{ID: "a"}),
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !result.Submitted() || result.RecordID != "" {
		t.Errorf("result = %+v, want submitted without record", result)
	}
}

func TestDescendants(t *testing.T) {
	env := newTestEnv(t, StaticGate(true))

	result, err := env.engine.Descendants(&DescendantsRequest{NodeID: "a", Tree: env.tree})
	if err != nil {
		t.Fatalf("Descendants() error = %v", err)
	}
	if len(result.URLs) != 2 || result.URLs[0] != "products/gadget" || result.URLs[1] != "products/widget" {
		t.Errorf("URLs = %v", result.URLs)
	}

	if _, err := env.engine.Descendants(&DescendantsRequest{NodeID: "missing", Tree: env.tree}); !errors.Is(err, sitetree.ErrNodeNotFound) {
		t.Errorf("Descendants(missing) error = %v, want ErrNodeNotFound", err)
	}
}
