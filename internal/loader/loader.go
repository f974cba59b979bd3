// Package loader reads declaration and answer documents from files, fs.FS
// entries, or HTTP endpoints.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-declaration/pkg/schema"
)

var (
	// ErrHTTPDisabled is returned for URL sources when no HTTP client is set.
	ErrHTTPDisabled = errors.New("loader: http support disabled")
	// ErrUnsupportedSource is returned for unknown source kinds.
	ErrUnsupportedSource = errors.New("loader: unsupported source kind")
)

// Options configures a Loader.
type Options struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
}

// Loader fetches raw documents for a schema.Source.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// New constructs a Loader from pre-resolved options.
func New(options Options) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a declaration or draft document from src. Failures name the
// source kind and location; sentinel errors stay matchable with errors.Is.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	data, err := l.fetch(ctx, src)
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s %q: %w", src.Kind(), src.Location(), err)
	}
	return schema.NewDocument(src, data)
}

func (l *Loader) fetch(ctx context.Context, src schema.Source) ([]byte, error) {
	switch src.Kind() {
	case schema.SourceKindFile:
		return loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if !l.allowHTTP {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, ErrUnsupportedSource
	}
}
