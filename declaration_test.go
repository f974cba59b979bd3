package declaration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-declaration/internal/loader"
	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/testsupport"
)

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := testsupport.ReadFixture(name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadSchema_File(t *testing.T) {
	path := writeFixture(t, "income.yaml")

	decl, err := LoadSchema(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if decl.Code != "income" || len(decl.Pages) != 4 {
		t.Fatalf("unexpected declaration %s with %d pages", decl.Code, len(decl.Pages))
	}
	if decl.Flattened() {
		t.Fatalf("LoadSchema should not flatten")
	}
}

func TestLoadSchema_HTTP(t *testing.T) {
	data, err := testsupport.ReadFixture("actions.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	src, err := schema.SourceFromURL(srv.URL + "/actions.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if _, err := LoadSchema(context.Background(), src); !errors.Is(err, loader.ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled without a client, got %v", err)
	}
	decl, err := LoadSchema(context.Background(), src, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if decl.Code != "actions" {
		t.Fatalf("unexpected declaration %q", decl.Code)
	}
}

func TestLoadSnapshot_FS(t *testing.T) {
	data, err := testsupport.ReadFixture("draft.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	files := fstest.MapFS{"drafts/draft.yaml": {Data: data}}

	snap, err := LoadSnapshot(context.Background(), schema.SourceFromFS("drafts/draft.yaml"), WithFileSystem(files))
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if diff := cmp.Diff([]int64{1700000000001, 1700000000002}, snap.Multiples["sales"]); diff != "" {
		t.Fatalf("roster mismatch (-want +got):\n%s", diff)
	}
	if snap.Value("full_name", 0) != "Ivan Petrov" {
		t.Fatalf("unexpected snapshot %+v", snap.Answers)
	}
}

func TestOpen(t *testing.T) {
	path := writeFixture(t, "income.yaml")
	provider := storage.NewMemory()

	d, err := Open(context.Background(), schema.SourceFromFile(path), storage.Snapshot{}, provider)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !d.Schema().Flattened() || d.ActivePage().Code != "personal" {
		t.Fatalf("session should start flattened on the first page")
	}

	if _, err := Open(context.Background(), nil, storage.Snapshot{}, nil); err == nil {
		t.Fatalf("expected an error for a nil source")
	}
	_, err = Open(context.Background(), schema.SourceFromFile(filepath.Join(t.TempDir(), "missing.yaml")), storage.Snapshot{}, nil)
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
