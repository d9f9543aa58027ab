package fsops

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRealFS_ValidateIdentifier(t *testing.T) {
	fs := &RealFS{}

	tests := []struct {
		name      string
		id        string
		wantError bool
	}{
		{name: "journal record id", id: "20260301T120000.000000000Z-b94d27b9934d", wantError: false},
		{name: "valid with underscores", id: "record_123", wantError: false},
		{name: "empty identifier", id: "", wantError: true},
		{name: "current directory", id: ".", wantError: true},
		{name: "parent directory", id: "..", wantError: true},
		{name: "parent prefix", id: "..secret", wantError: true},
		{name: "path with separator", id: "journal/record", wantError: true},
		{name: "path with backslash", id: "journal\\record", wantError: true},
		{name: "absolute path", id: "/etc/hosts", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateIdentifier(tt.id)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantError %v", tt.id, err, tt.wantError)
			}
		})
	}
}

func TestRealFS_AtomicWrite(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("write creates parent directories", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "nested", "dir", "record.json")
		content := []byte(`{"id":"1"}`)

		if err := fs.AtomicWrite(testFile, content, 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		readContent, err := fs.ReadFile(testFile)
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if string(readContent) != string(content) {
			t.Errorf("File content mismatch: got %q, want %q", readContent, content)
		}
	})

	t.Run("overwrite existing file", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "overwrite.json")
		if err := os.WriteFile(testFile, []byte("initial"), 0644); err != nil {
			t.Fatalf("failed to create initial file: %v", err)
		}

		if err := fs.AtomicWrite(testFile, []byte("overwritten"), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		readContent, err := os.ReadFile(testFile)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(readContent) != "overwritten" {
			t.Errorf("File content not updated: got %q", readContent)
		}
	})
}

func TestRealFS_ListFiles(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	for _, name := range []string{"b.json", "a.json", "notes.txt", ".treepurge-tmp-1"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "dir.json"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := fs.ListFiles(tmpDir, ".json")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if want := []string{"a.json", "b.json"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListFiles() = %v, want %v", got, want)
	}

	missing, err := fs.ListFiles(filepath.Join(tmpDir, "missing"), ".json")
	if err != nil || len(missing) != 0 {
		t.Errorf("ListFiles(missing) = (%v, %v), want empty list", missing, err)
	}
}

func TestRealFS_ExistsAndRemove(t *testing.T) {
	fs := &RealFS{}
	testFile := filepath.Join(t.TempDir(), "remove-me.json")

	exists, err := fs.Exists(testFile)
	if err != nil || exists {
		t.Fatalf("Exists() before write = (%v, %v), want (false, nil)", exists, err)
	}

	if err := fs.AtomicWrite(testFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if exists, _ := fs.Exists(testFile); !exists {
		t.Error("Exists() = false after write")
	}

	if err := fs.Remove(testFile); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := fs.Exists(testFile); exists {
		t.Error("file should have been removed")
	}
}
