// Package report renders a plain-text summary of a declaration session with
// pongo2 templates. A default template is embedded; callers may supply their
// own through a directory or an fs.FS.
package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-declaration/internal/markup"
	"github.com/goliatone/go-declaration/pkg/wizard"
)

// DefaultTemplate names the embedded summary template.
const DefaultTemplate = "summary.tpl"

//go:embed templates/*.tpl
var embedded embed.FS

// Option configures a Renderer.
type Option func(*config)

type config struct {
	baseDir  string
	files    fs.FS
	template string
}

// WithBaseDir loads templates from a directory on disk before the embedded set.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files before the embedded set.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithTemplate selects the template rendered by Render.
func WithTemplate(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.template = trimmed
		}
	}
}

// Renderer executes summary templates. It is safe for concurrent use.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	name      string
}

// New constructs a Renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{template: DefaultTemplate}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("report: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	}
	builtin, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("report: embedded templates: %w", err)
	}
	loaders = append(loaders, pongo2.NewFSLoader(builtin))

	registerFilters()
	return &Renderer{
		set:       pongo2.NewSet("declaration-report", loaders...),
		templates: make(map[string]*pongo2.Template),
		name:      cfg.template,
	}, nil
}

// Render writes the summary of d using the configured template.
func (r *Renderer) Render(d *wizard.Declaration, out io.Writer) error {
	if d == nil {
		return errors.New("report: declaration is nil")
	}
	return r.RenderSummary(Build(d), out)
}

// RenderSummary writes an already built summary.
func (r *Renderer) RenderSummary(summary Summary, out io.Writer) error {
	tmpl, err := r.template(r.name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context{"summary": summary}, &buf); err != nil {
		return fmt.Errorf("report: execute template %q: %w", r.name, err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("report: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if pongo2.FilterExists("plain") {
			return
		}
		_ = pongo2.RegisterFilter("plain", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(markup.Plain(in.String())), nil
		})
	})
}
