package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danieljhkim/treepurge/internal/clock"
	"github.com/danieljhkim/treepurge/internal/engine"
	"github.com/danieljhkim/treepurge/internal/fsops"
	"github.com/danieljhkim/treepurge/internal/hash"
	"github.com/danieljhkim/treepurge/internal/journal"
	"github.com/danieljhkim/treepurge/internal/planner"
	"github.com/danieljhkim/treepurge/internal/purge"
)

// testFS is a filesystem implementation that keeps files in memory
type testFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

func newTestFS() *testFS {
	return &testFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (fs *testFS) MkdirAll(path string, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for p := path; p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
		fs.dirs[p] = true
	}
	return nil
}

func (fs *testFS) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, path)
	delete(fs.dirs, path)
	return nil
}

func (fs *testFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = append([]byte(nil), data...)
	return nil
}

func (fs *testFS) ReadFile(path string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if content, ok := fs.files[path]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
}

func (fs *testFS) Exists(path string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, hasFile := fs.files[path]
	return hasFile || fs.dirs[path], nil
}

func (fs *testFS) ListFiles(dir, ext string) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var names []string
	for p := range fs.files {
		if filepath.Dir(p) == dir && strings.HasSuffix(p, ext) {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (fs *testFS) ValidateIdentifier(id string) error {
	return fsops.NewRealFS().ValidateIdentifier(id)
}

// cloudflareAPI records purge_cache requests
type cloudflareAPI struct {
	mu       sync.Mutex
	requests []purgeBody
}

type purgeBody struct {
	PurgeEverything bool     `json:"purge_everything"`
	Files           []string `json:"files"`
}

func (a *cloudflareAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body purgeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	a.requests = append(a.requests, body)
	a.mu.Unlock()
	_, _ = w.Write([]byte(`{"success":true,"errors":[]}`))
}

func (a *cloudflareAPI) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = nil
}

func (a *cloudflareAPI) files() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, req := range a.requests {
		out = append(out, req.Files...)
	}
	sort.Strings(out)
	return out
}

type testSetup struct {
	engine  *engine.Engine
	fs      *testFS
	api     *cloudflareAPI
	clock   *clock.FakeClock
	journal *journal.FileStore
}

func setupTestEngine(t *testing.T, batchSize int, opts ...planner.Option) *testSetup {
	t.Helper()

	fs := newTestFS()
	api := &cloudflareAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := purge.NewCloudflare(purge.CloudflareSettings{
		BaseURL:     srv.URL,
		ZoneID:      "zone-1",
		APIToken:    "token",
		SiteURL:     "https://www.example.com",
		BatchSize:   batchSize,
		Concurrency: 2,
	}, srv.Client(), nil)

	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	store := journal.NewFileStore(fs, "/test/journal")

	eng := engine.New(planner.New(opts...), client, engine.StaticGate(true), store, hash.NewSHA256Hasher(), clk, nil)
	return &testSetup{engine: eng, fs: fs, api: api, clock: clk, journal: store}
}
