package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Decode parses a declaration document. The result is not yet flattened.
func Decode(doc Document) (*Declaration, error) {
	var decl Declaration
	if err := Unmarshal(doc, &decl); err != nil {
		return nil, err
	}
	if len(decl.Pages) == 0 {
		return nil, fmt.Errorf("schema: %s declares no pages", doc.Location())
	}
	return &decl, nil
}

// Unmarshal decodes a JSON or YAML document into out.
func Unmarshal(doc Document, out any) error {
	var err error
	switch doc.Format() {
	case FormatJSON:
		err = json.Unmarshal(doc.raw, out)
	default:
		err = yaml.Unmarshal(doc.raw, out)
	}
	if err != nil {
		return fmt.Errorf("schema: parse %s: %w", doc.Location(), err)
	}
	return nil
}
