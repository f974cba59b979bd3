package schema

import (
	"strings"
	"testing"
)

const yamlDeclaration = `
code: demo
pages:
  - code: main
    tab: one
    questions:
      - code: name
        type: text
        validation:
          required: true
          max_length: 10
      - code: agree
        type: checkbox
        action:
          type: show_inputs
          codes: [name]
`

const jsonDeclaration = `{
  "code": "demo",
  "pages": [
    {"code": "main", "type": "statement", "questions": [
      {"code": "status", "type": "radio", "action": {"type": "force_values", "codes": ["rate"],
        "rules": [{"when": "a", "values": ["13"]}]},
        "answers": [{"code": "status_a", "key": "a", "title": "A"}]},
      {"code": "rate", "type": "number"}
    ]}
  ]
}`

func TestDecode_YAML(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("demo.yaml"), []byte(yamlDeclaration))
	if doc.Format() != FormatYAML {
		t.Fatalf("expected yaml format, got %s", doc.Format())
	}

	d, err := Decode(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	name, ok := d.Question("name")
	if !ok {
		t.Fatalf("question name not indexed")
	}
	if !name.Validation.Required || name.Validation.MaxLength == nil || *name.Validation.MaxLength != 10 {
		t.Fatalf("validation not decoded: %+v", name.Validation)
	}
	agree, _ := d.Question("agree")
	if !agree.Action.Is(ActionShowInputs) || agree.Action.Codes[0] != "name" {
		t.Fatalf("action not decoded: %+v", agree.Action)
	}
	if d.Pages[0].Tab != "one" {
		t.Fatalf("tab not decoded")
	}
}

func TestDecode_JSON(t *testing.T) {
	doc := MustNewDocument(SourceFromFS("inline"), []byte(jsonDeclaration))
	if doc.Format() != FormatJSON {
		t.Fatalf("expected sniffed json format, got %s", doc.Format())
	}

	d, err := Decode(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Pages[0].Kind != PageKindStatement {
		t.Fatalf("page kind not decoded: %q", d.Pages[0].Kind)
	}
	status, _ := d.Question("status")
	if !status.HasForceValues() {
		t.Fatalf("expected force values on status")
	}
	if got := status.Action.Rules[0].Values[0]; got != "13" {
		t.Fatalf("rule values not decoded: %q", got)
	}
	if option, _ := d.Question("status_a"); option.Key != "a" {
		t.Fatalf("answer key not decoded")
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode(MustNewDocument(SourceFromFile("empty.yaml"), []byte("code: x\n"))); err == nil || !strings.Contains(err.Error(), "no pages") {
		t.Fatalf("expected no pages error, got %v", err)
	}
	if _, err := Decode(MustNewDocument(SourceFromFile("bad.json"), []byte("{"))); err == nil || !strings.HasPrefix(err.Error(), "schema: parse bad.json") {
		t.Fatalf("expected parse error, got %v", err)
	}
	if _, err := NewDocument(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := NewDocument(SourceFromFile("x.yaml"), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource(" https://example.com/schema.json ")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if src.Kind() != SourceKindURL || src.Location() != "https://example.com/schema.json" {
		t.Fatalf("unexpected url source %v %q", src.Kind(), src.Location())
	}

	src, err = ParseSource("testdata/schema.yaml")
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if src.Kind() != SourceKindFile {
		t.Fatalf("expected file source, got %v", src.Kind())
	}

	if _, err := ParseSource("  "); err == nil {
		t.Fatalf("expected error for empty location")
	}
	if _, err := SourceFromURL("::not a url"); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}
