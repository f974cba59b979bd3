// Package declaration loads declaration wizard schemas and answer drafts and
// opens wizard sessions over them.
package declaration

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/wizard"
)

// LoadSchema reads and decodes a declaration schema. The result is not yet
// flattened; wizard.New does that.
func LoadSchema(ctx context.Context, src schema.Source, options ...LoaderOption) (*schema.Declaration, error) {
	doc, err := NewLoader(options...).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	decl, err := schema.Decode(doc)
	if err != nil {
		return nil, err
	}
	return decl, nil
}

// LoadSnapshot reads a JSON or YAML answer snapshot.
func LoadSnapshot(ctx context.Context, src schema.Source, options ...LoaderOption) (storage.Snapshot, error) {
	doc, err := NewLoader(options...).Load(ctx, src)
	if err != nil {
		return storage.Snapshot{}, err
	}
	var snapshot storage.Snapshot
	if err := schema.Unmarshal(doc, &snapshot); err != nil {
		return storage.Snapshot{}, err
	}
	return snapshot, nil
}

// Open loads the schema at src and starts a session seeded with initial.
func Open(ctx context.Context, src schema.Source, initial storage.Snapshot, provider storage.Provider, options ...wizard.Option) (*wizard.Declaration, error) {
	if src == nil {
		return nil, errors.New("declaration: source is nil")
	}
	decl, err := LoadSchema(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("declaration: open %s: %w", src.Location(), err)
	}
	return wizard.New(decl, initial, provider, options...), nil
}
