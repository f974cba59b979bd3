package tui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/testsupport"
	"github.com/goliatone/go-declaration/pkg/values"
	"github.com/goliatone/go-declaration/pkg/wizard"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func incomeSession(t *testing.T, provider storage.Provider) *wizard.Declaration {
	t.Helper()
	decl := testsupport.MustLoadDeclaration(t, "income.yaml")
	return wizard.New(decl, storage.Snapshot{}, provider,
		wizard.WithValueOptions(values.WithIDGenerator(testsupport.Sequence(1))))
}

func incomeScript() *stubDriver {
	return &stubDriver{
		inputs: []string{
			"Ivan Petrov", "31.01.1990", "",
			"Moscow", "", "Moscow", "Tverskaya", "7", "12", "125009",
			"Flat", "1000000",
		},
		confirm:   []bool{false, true, false, false},
		selectIdx: []int{0},
	}
}

func TestRun_IncomeDeclaration(t *testing.T) {
	driver := incomeScript()
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	d := incomeSession(t, nil)

	res, err := r.Run(context.Background(), d)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Complete() {
		t.Fatalf("expected a complete session, got errors %v", res.Errors)
	}
	if res.Progress != 100 {
		t.Fatalf("expected 100%% progress, got %d", res.Progress)
	}

	checks := map[string]string{
		"full_name":  res.Snapshot.Value("full_name", 0),
		"residence":  res.Snapshot.Value("residence", 0),
		"sale_name":  res.Snapshot.Value("sale_name", 1),
		"has_proper": res.Snapshot.Value("has_property", 0),
	}
	want := map[string]string{
		"full_name":  "Ivan Petrov",
		"residence":  "resident",
		"sale_name":  "Flat",
		"has_proper": "1",
	}
	if diff := cmp.Diff(want, checks); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}

	home := d.AddressModel().Create(res.Snapshot.Value("home", 0))
	if home.FullAddressString != "Moscow, Moscow, Tverskaya, 7" || home.Flat != "12" || home.Postal != "125009" {
		t.Fatalf("unexpected address %+v", home)
	}

	for _, msg := range []string{"[about] Personal data", "[income] Property sales", "Sale #1", "Progress: 100%"} {
		if !slices.Contains(driver.infoMessages, msg) {
			t.Fatalf("expected info %q in %v", msg, driver.infoMessages)
		}
	}
	if driver.inputPos != len(driver.inputs) || driver.confirmPos != len(driver.confirm) {
		t.Fatalf("script not fully consumed: inputs %d/%d confirms %d/%d",
			driver.inputPos, len(driver.inputs), driver.confirmPos, len(driver.confirm))
	}
}

func TestRender_Formats(t *testing.T) {
	tests := []struct {
		format OutputFormat
		ctype  string
		check  func(t *testing.T, out []byte)
	}{
		{
			format: OutputFormatJSON,
			ctype:  "application/json",
			check: func(t *testing.T, out []byte) {
				var snap storage.Snapshot
				if err := json.Unmarshal(out, &snap); err != nil {
					t.Fatalf("decode json: %v", err)
				}
				if snap.Value("sale_amount", 1) != "1000000" {
					t.Fatalf("unexpected json snapshot %s", out)
				}
			},
		},
		{
			format: OutputFormatYAML,
			ctype:  "application/yaml",
			check: func(t *testing.T, out []byte) {
				var snap storage.Snapshot
				if err := yaml.Unmarshal(out, &snap); err != nil {
					t.Fatalf("decode yaml: %v", err)
				}
				if diff := cmp.Diff([]int64{1}, snap.Multiples["sales"]); diff != "" {
					t.Fatalf("roster mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			format: OutputFormatPrettyText,
			ctype:  "text/plain",
			check: func(t *testing.T, out []byte) {
				text := string(out)
				if !strings.Contains(text, "full_name: Ivan Petrov\n") || !strings.Contains(text, "sale_name[1]: Flat\n") {
					t.Fatalf("unexpected pretty output:\n%s", text)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			r, err := New(WithPromptDriver(incomeScript()), WithOutputFormat(tt.format))
			if err != nil {
				t.Fatalf("new renderer: %v", err)
			}
			if r.Name() != "tui" || r.ContentType() != tt.ctype {
				t.Fatalf("unexpected renderer identity %s %s", r.Name(), r.ContentType())
			}
			out, err := r.Render(context.Background(), incomeSession(t, nil))
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			tt.check(t, out)
		})
	}
}

func TestRun_RepromptsUntilValid(t *testing.T) {
	decl := &schema.Declaration{Pages: []*schema.Page{{
		Code:  "p",
		Title: "Details",
		Questions: []*schema.Question{
			{Code: "age", Kind: schema.KindNumber, Title: "Age", Validation: &schema.Validation{Required: true}},
			{Code: "status", Kind: schema.KindRadio, Title: "Status", Answers: []*schema.Question{
				{Code: "status_a", Key: "a", Title: "A"},
				{Code: "status_b", Key: "b", Title: "B"},
			}},
		},
	}}}
	driver := &stubDriver{inputs: []string{"abc", "", "42"}, selectIdx: []int{5, 1}}
	r, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "E: ", RequiredSuffix: " (required)"}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	d := wizard.New(decl, storage.Snapshot{}, nil)

	res, err := r.Run(context.Background(), d)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if d.Value("age", 0) != "42" || d.Value("status", 0) != "b" {
		t.Fatalf("unexpected answers %v", res.Snapshot.Answers)
	}
	for _, msg := range []string{"E: Enter a number", "E: Field is required", "E: Invalid status selection"} {
		if !slices.Contains(driver.infoMessages, msg) {
			t.Fatalf("expected info %q in %v", msg, driver.infoMessages)
		}
	}
}

func TestRun_TotalPageStatistics(t *testing.T) {
	decl := &schema.Declaration{Pages: []*schema.Page{{
		Code:  "total",
		Kind:  schema.PageKindTotal,
		Title: "Total",
	}}}
	provider := &testsupport.RecordingProvider{
		Stats: func(context.Context) (storage.Statistics, error) {
			return storage.Statistics{
				Incomes:                 []storage.Amount{{Name: "salary", Value: 100}},
				PaymentsOrCompensations: []storage.Range{{From: 1, To: 2.5}},
			}, nil
		},
	}
	driver := &stubDriver{}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	if _, err := r.Run(context.Background(), wizard.New(decl, storage.Snapshot{}, provider)); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, msg := range []string{"Total", "Income salary: 100.00", "Payment: 1.00 to 2.50"} {
		if !slices.Contains(driver.infoMessages, msg) {
			t.Fatalf("expected info %q in %v", msg, driver.infoMessages)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrNilDeclaration) {
		t.Fatalf("expected ErrNilDeclaration, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, incomeSession(t, nil)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if _, err := r.Run(context.Background(), incomeSession(t, nil)); err == nil || !strings.Contains(err.Error(), "no input scripted") {
		t.Fatalf("expected driver error, got %v", err)
	}
}

type abortingDriver struct{ stubDriver }

func (a *abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestRender_Aborted(t *testing.T) {
	r, err := New(WithPromptDriver(&abortingDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(context.Background(), incomeSession(t, nil)); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}
