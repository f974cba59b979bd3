package declaration

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-declaration/internal/loader"
	"github.com/goliatone/go-declaration/pkg/schema"
)

// LoaderOption configures the document loader.
type LoaderOption func(*loader.Options)

// WithFileSystem resolves SourceKindFS sources against files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(o *loader.Options) {
		o.FileSystem = files
	}
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(o *loader.Options) {
		o.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources with a default client.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(o *loader.Options) {
		o.AllowHTTPFallback = true
		o.RequestTimeout = timeout
	}
}

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...LoaderOption) schema.Loader {
	var cfg loader.Options
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return loader.New(cfg)
}
