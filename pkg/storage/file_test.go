package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFile_RoundTrip(t *testing.T) {
	for _, name := range []string{"draft.json", "draft.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			f, err := OpenFile(path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if f.DraftID() == "" {
				t.Fatalf("expected generated draft id")
			}
			f.SaveAnswer("name", 0, "Ann")
			f.AddMultiple("items", 7)
			f.SaveAnswer("item", 7, "flat")
			f.CopyMultiple("items", 7, 8)
			if err := f.Err(); err != nil {
				t.Fatalf("flush: %v", err)
			}

			reopened, err := OpenFile(path)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			if reopened.DraftID() != f.DraftID() {
				t.Fatalf("draft id changed: %q vs %q", reopened.DraftID(), f.DraftID())
			}
			snap := reopened.Snapshot()
			if got := snap.Value("name", 0); got != "Ann" {
				t.Fatalf("unexpected name %q", got)
			}
			if got := snap.Value("item", 8); got != "flat" {
				t.Fatalf("unexpected copied item %q", got)
			}
			if diff := cmp.Diff([]int64{7, 8}, snap.Multiples["items"]); diff != "" {
				t.Fatalf("roster mismatch (-want +got):\n%s", diff)
			}

			reopened.DeleteMultiple("items", 7)
			again, err := OpenFile(path)
			if err != nil {
				t.Fatalf("reopen after delete: %v", err)
			}
			if got := again.Snapshot().Value("item", 7); got != "" {
				t.Fatalf("expected deleted instance to be purged, got %q", got)
			}
		})
	}
}

func TestFile_Errors(t *testing.T) {
	if _, err := OpenFile("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := OpenFile(path); err == nil || !strings.HasPrefix(err.Error(), "storage: parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestFile_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenFile(filepath.Join(dir, "draft.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.SaveAnswer("name", 0, "x")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if diff := cmp.Diff([]string{"draft.json"}, names); diff != "" {
		t.Fatalf("unexpected files (-want +got):\n%s", diff)
	}
}
