// Package testsupport holds declaration fixtures and helpers shared by the
// package tests.
package testsupport

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

// ReadFixture returns the raw bytes of an embedded fixture.
func ReadFixture(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("testsupport: fixture name is required")
	}
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	return data, nil
}

// LoadDeclaration decodes a fresh, unflattened copy of a fixture schema.
func LoadDeclaration(name string) (*schema.Declaration, error) {
	data, err := ReadFixture(name)
	if err != nil {
		return nil, err
	}
	doc, err := schema.NewDocument(schema.SourceFromFS(name), data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: new document: %w", err)
	}
	return schema.Decode(doc)
}

// MustLoadDeclaration is LoadDeclaration failing the test on error.
func MustLoadDeclaration(t *testing.T, name string) *schema.Declaration {
	t.Helper()

	decl, err := LoadDeclaration(name)
	if err != nil {
		t.Fatalf("load declaration: %v", err)
	}
	return decl
}

// MustLoadSnapshot decodes a fixture answer snapshot.
func MustLoadSnapshot(t *testing.T, name string) storage.Snapshot {
	t.Helper()

	data, err := ReadFixture(name)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFS(name), data)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	var out storage.Snapshot
	if err := schema.Unmarshal(doc, &out); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return out
}

// Question resolves code or fails the test.
func Question(t *testing.T, decl *schema.Declaration, code string) *schema.Question {
	t.Helper()

	q, ok := decl.Question(code)
	if !ok {
		t.Fatalf("question %q not found", code)
	}
	return q
}

// Page resolves code or fails the test.
func Page(t *testing.T, decl *schema.Declaration, code string) *schema.Page {
	t.Helper()

	page, ok := decl.Page(code)
	if !ok {
		t.Fatalf("page %q not found", code)
	}
	return page
}

// Codes lists the codes of questions, for compact assertions.
func Codes(questions []*schema.Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Code)
	}
	return out
}

// Call is one recorded provider call.
type Call struct {
	Method string
	Code   string
	ID     int64
	Value  string
	NewID  int64
}

// RecordingProvider is a storage.Provider that records every call.
type RecordingProvider struct {
	mu    sync.Mutex
	Calls []Call

	// Stats answers Statistics; nil returns zero statistics.
	Stats func(ctx context.Context) (storage.Statistics, error)
}

func (p *RecordingProvider) SaveAnswer(code string, id int64, value string) {
	p.record(Call{Method: "SaveAnswer", Code: code, ID: id, Value: value})
}

func (p *RecordingProvider) DeleteMultiple(code string, id int64) {
	p.record(Call{Method: "DeleteMultiple", Code: code, ID: id})
}

func (p *RecordingProvider) CopyMultiple(code string, id, newID int64) {
	p.record(Call{Method: "CopyMultiple", Code: code, ID: id, NewID: newID})
}

func (p *RecordingProvider) Statistics(ctx context.Context) (storage.Statistics, error) {
	if p.Stats == nil {
		return storage.Statistics{}, nil
	}
	return p.Stats(ctx)
}

// Recorded returns a copy of the calls so far.
func (p *RecordingProvider) Recorded() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.Calls...)
}

func (p *RecordingProvider) record(call Call) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, call)
}

// Sequence returns an id generator yielding start, start+1, ...
func Sequence(start int64) func() int64 {
	next := start
	return func() int64 {
		id := next
		next++
		return id
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
