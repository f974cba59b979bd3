package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-declaration/pkg/schema"
)

const payload = "code: demo\npages:\n  - code: main\n    questions: []\n"

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := New(Options{}).Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != payload {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
	if doc.Location() != path {
		t.Fatalf("unexpected location %q", doc.Location())
	}
}

func TestLoader_FileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := New(Options{}).Load(context.Background(), schema.SourceFromFile(path))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if want := fmt.Sprintf("loader: file %q: read:", path); !strings.HasPrefix(err.Error(), want) {
		t.Fatalf("error should name the source, got %v", err)
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{
		"schemas/demo.yaml": &fstest.MapFile{Data: []byte(payload)},
	}
	l := New(Options{FileSystem: files})

	doc, err := l.Load(context.Background(), schema.SourceFromFS("schemas/demo.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	decl, err := schema.Decode(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decl.Code != "demo" {
		t.Fatalf("unexpected code %q", decl.Code)
	}

	if _, err := New(Options{}).Load(context.Background(), schema.SourceFromFS("schemas/demo.yaml")); err == nil {
		t.Fatalf("expected error without a file system")
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schema.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	src, err := schema.SourceFromURL(srv.URL + "/schema.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if _, err := New(Options{}).Load(context.Background(), src); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	l := New(Options{HTTPClient: srv.Client()})
	doc, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != payload {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	missing, _ := schema.SourceFromURL(srv.URL + "/missing.yaml")
	if _, err := l.Load(context.Background(), missing); err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

type oddSource struct{}

func (oddSource) Kind() schema.SourceKind { return "ftp" }
func (oddSource) Location() string        { return "ftp://x" }

func TestLoader_Errors(t *testing.T) {
	l := New(Options{})
	if _, err := l.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := l.Load(context.Background(), oddSource{}); !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, schema.SourceFromFile("x.yaml")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
