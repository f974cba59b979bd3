package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/testsupport"
)

func TestMoneyTotals(t *testing.T) {
	decl := testsupport.MustLoadDeclaration(t, "income.yaml")
	snapshot := testsupport.MustLoadSnapshot(t, "draft.yaml")
	snapshot.Answers["sale_amount"][1700000000002] = "250,5"
	snapshot.Answers["sale_amount"][1700000000003] = "n/a"

	stats, err := moneyTotals(decl)(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("money totals: %v", err)
	}
	want := storage.Statistics{Incomes: []storage.Amount{{Name: "Property sales", Value: 1000250.5}}}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("statistics mismatch (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := moneyTotals(decl)(ctx, snapshot); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.yaml")
	content := `schema: schemas/income.yaml
draft: drafts/me.json
output: yaml
http_timeout: 5s
extras:
  resident: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := readConfig(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	want := cliConfig{
		Schema:      filepath.Join(dir, "schemas/income.yaml"),
		Draft:       filepath.Join(dir, "drafts/me.json"),
		Output:      "yaml",
		HTTPTimeout: 5 * time.Second,
		Extras:      map[string]any{"resident": true},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	if _, err := readConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	data, err := testsupport.ReadFixture("income.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	schemaFile := filepath.Join(dir, "income.yaml")
	if err := os.WriteFile(schemaFile, data, 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	draftFile := filepath.Join(dir, "draft.yaml")
	draft := `draft_id: cli-test
snapshot:
  answers:
    full_name:
      0: Ivan Petrov
`
	if err := os.WriteFile(draftFile, []byte(draft), 0o644); err != nil {
		t.Fatalf("write draft: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--schema", schemaFile, "--draft", draftFile})
	err = rootCmd.ExecuteContext(context.Background())
	if !errors.Is(err, errIncomplete) {
		t.Fatalf("expected errIncomplete, got %v", err)
	}

	text := out.String()
	for _, want := range []string{"personal: Field is required\n", "progress: 25%\n"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if strings.Contains(text, "property:") {
		t.Fatalf("gated property page should not be checked:\n%s", text)
	}
}
