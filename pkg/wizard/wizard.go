// Package wizard composes the answer store, touch tracker, disclosure
// resolver, validation orchestrator and navigation controller behind a single
// API for a rendering layer.
//
// Every committed mutation invalidates the disclosure and validation caches,
// recomputes progress and fires the rerender callback exactly once.
package wizard

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-declaration/pkg/address"
	"github.com/goliatone/go-declaration/pkg/navigation"
	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/touch"
	"github.com/goliatone/go-declaration/pkg/validation"
	"github.com/goliatone/go-declaration/pkg/values"
	"github.com/goliatone/go-declaration/pkg/visibility"
)

// Declaration is one wizard session. Apart from LoadStatistics and
// Statistics it is not safe for concurrent use.
type Declaration struct {
	schema   *schema.Declaration
	provider storage.Provider
	logger   *slog.Logger

	valueOptions []values.Option
	format       validation.FormatValidator
	address      address.Model
	evaluator    visibility.Evaluator
	extras       map[string]any

	values    *values.Store
	touches   *touch.Tracker
	resolver  *visibility.Resolver
	validator *validation.Orchestrator
	nav       *navigation.Controller

	progress int
	rerender func()

	statsMu  sync.Mutex
	stats    *storage.Statistics
	statsGen uint64
}

// New preprocesses decl and starts a session seeded with initial. provider
// may be nil, in which case edits are kept in memory only.
func New(decl *schema.Declaration, initial storage.Snapshot, provider storage.Provider, options ...Option) *Declaration {
	if decl == nil {
		decl = &schema.Declaration{}
	}
	d := &Declaration{
		schema:   decl,
		provider: provider,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		address:  address.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}

	schema.Flatten(decl)

	d.values = values.New(decl, initial, provider, d.valueOptions...)
	d.touches = touch.New(d.values, d.address)
	d.resolver = visibility.NewResolver(decl, d.values)

	validatorOptions := []validation.Option{validation.WithAddressModel(d.address)}
	if d.format != nil {
		validatorOptions = append(validatorOptions, validation.WithFormatValidator(d.format))
	}
	d.validator = validation.New(d.values, d.touches, d.resolver, validatorOptions...)

	d.nav = navigation.New(decl, d.values,
		navigation.WithEvaluator(d.evaluator),
		navigation.WithExtras(d.extras),
		navigation.WithLogger(d.logger),
	)
	d.progress = navigation.Progress(d)

	d.logger.Debug("declaration ready",
		"code", decl.Code,
		"pages", len(decl.Pages),
		"questions", len(decl.Index()),
		"progress", d.progress,
	)
	return d
}

// SetRerenderCallback registers the single observer notified after each
// committed mutation. A later call replaces the previous callback; nil
// removes it.
func (d *Declaration) SetRerenderCallback(fn func()) {
	d.rerender = fn
}

// Schema returns the preprocessed schema.
func (d *Declaration) Schema() *schema.Declaration {
	return d.schema
}

// Pages returns every page in schema order.
func (d *Declaration) Pages() []*schema.Page {
	return d.nav.Pages()
}

func (d *Declaration) VisiblePages() []*schema.Page          { return d.nav.VisiblePages() }
func (d *Declaration) VisibleTabs() []string                 { return d.nav.Tabs() }
func (d *Declaration) ActiveTab() string                     { return d.nav.ActiveTab() }
func (d *Declaration) ActivePage() *schema.Page              { return d.nav.ActivePage() }
func (d *Declaration) ActiveQuestion() *schema.Question      { return d.nav.ActiveQuestion() }
func (d *Declaration) IsActiveTab(tab string) bool           { return d.nav.IsActiveTab(tab) }
func (d *Declaration) IsActivePage(page *schema.Page) bool   { return d.nav.IsActivePage(page) }
func (d *Declaration) TitlePage(tab string) *schema.Page     { return d.nav.TitlePage(tab) }
func (d *Declaration) CanGoToNextPage() bool                 { return d.nav.CanGoToNextPage() }
func (d *Declaration) CanGoToPrevPage() bool                 { return d.nav.CanGoToPrevPage() }
func (d *Declaration) IsPageEmpty(page *schema.Page) bool    { return d.nav.IsPageEmpty(page) }
func (d *Declaration) MultipleIDs(code string) []int64       { return d.values.MultipleIDs(code) }
func (d *Declaration) Value(code string, id int64) string    { return d.values.Value(code, id) }
func (d *Declaration) Touched(code string, id int64) bool    { return d.touches.Touched(code, id) }
func (d *Declaration) Snapshot() storage.Snapshot            { return d.values.Snapshot() }
func (d *Declaration) AddressModel() address.Model           { return d.address }

// Progress returns the completion percentage computed after the last mutation.
func (d *Declaration) Progress() int {
	return d.progress
}

// VisibleQuestions returns the visible top-level questions of page.
func (d *Declaration) VisibleQuestions(page *schema.Page) []*schema.Question {
	if page == nil {
		return nil
	}
	return d.resolver.Visible(page.Code, page.Questions, 0)
}

// VisibleChildren returns the visible template children of a multiple
// question for one instance.
func (d *Declaration) VisibleChildren(q *schema.Question, id int64) []*schema.Question {
	if q == nil || q.Kind != schema.KindMultiple {
		return nil
	}
	return d.resolver.Visible(q.Code, q.Answers, id)
}

// IsRequired reports whether q is currently required at id: its rules ask
// for a value and no enable_required action or hidden state switches that off.
func (d *Declaration) IsRequired(q *schema.Question, id int64) bool {
	if q == nil || q.Validation == nil || !q.Validation.Required {
		return false
	}
	return d.resolver.RequiredByActions(q, id)
}

// Errors returns the touch-gated errors of q at id.
func (d *Declaration) Errors(q *schema.Question, id int64) []string {
	return d.validator.ValidateQuestion(q, id, true)
}

// ValidateQuestion exposes the orchestrator, including ungated checks.
func (d *Declaration) ValidateQuestion(q *schema.Question, id int64, checkTouch bool) []string {
	return d.validator.ValidateQuestion(q, id, checkTouch)
}

// ValidatePage returns the errors of the visible questions of page.
func (d *Declaration) ValidatePage(page *schema.Page, checkTouch bool) []string {
	return d.validator.ValidatePage(page, checkTouch)
}

// AddressComplete reports whether the address at q/id validates with every
// field considered touched.
func (d *Declaration) AddressComplete(q *schema.Question, id int64) bool {
	for _, errs := range d.validator.AddressErrors(q, id, false) {
		if len(errs) > 0 {
			return false
		}
	}
	return true
}

// InstanceTitle joins the non-empty values of the visible title_type
// children of a multiple instance. It returns "" when none are set.
func (d *Declaration) InstanceTitle(q *schema.Question, id int64) string {
	var parts []string
	for _, child := range d.VisibleChildren(q, id) {
		if !child.TitleType {
			continue
		}
		if value := d.values.Value(child.Code, id); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, ", ")
}

// SetActivePage moves to page. The page being left is touch-swept so its
// errors show on return. It reports false when page is already active.
func (d *Declaration) SetActivePage(page *schema.Page) bool {
	if page == nil || d.nav.IsActivePage(page) {
		return false
	}
	d.touches.TouchPage(d.nav.ActivePage())
	d.nav.SetActivePage(page)
	d.logger.Debug("page activated", "page", page.Code, "tab", page.Tab)
	d.commit()
	return true
}

// SetActiveTab selects tab; the active page follows to the tab's title page
// when it belongs elsewhere.
func (d *Declaration) SetActiveTab(tab string) bool {
	if !d.nav.SetActiveTab(tab) {
		return false
	}
	d.logger.Debug("tab activated", "tab", tab)
	d.commit()
	return true
}

// GoToNextPage advances over the visible page sequence.
func (d *Declaration) GoToNextPage() bool {
	page, ok := d.nav.NextPage()
	if !ok {
		return false
	}
	return d.SetActivePage(page)
}

// GoToPrevPage steps back over the visible page sequence.
func (d *Declaration) GoToPrevPage() bool {
	page, ok := d.nav.PrevPage()
	if !ok {
		return false
	}
	return d.SetActivePage(page)
}

// TouchAll reveals every validation error, typically before submission.
func (d *Declaration) TouchAll() {
	d.touches.TouchAll()
	d.commit()
}

// setValue is the shared write path behind the props closures.
func (d *Declaration) setValue(q *schema.Question, id int64, value string) bool {
	if !d.values.SetValue(q.Code, id, value) {
		return false
	}
	if q.Page == nil || q.Page.Kind != schema.PageKindStatement {
		d.invalidateStatistics()
	}
	if q.Kind == schema.KindCheckbox && value == "1" {
		d.openGatedPage(q, id)
	}
	d.touches.SetTouched(q.Code, id)
	d.logger.Debug("value changed", "code", q.Code, "id", id, "disclosure", q.AffectsDisclosure())
	d.commit()
	return true
}

// openGatedPage adds a first instance to the driving multiple group of the
// page a show_pages checkbox reveals, when that group is still empty.
func (d *Declaration) openGatedPage(q *schema.Question, id int64) {
	if !q.Action.Is(schema.ActionShowPages) || len(q.Action.Codes) == 0 {
		return
	}
	page, ok := d.schema.Page(q.Action.Codes[0])
	if !ok {
		return
	}
	group := navigation.DefaultMultiple(page)
	if group == nil || len(d.values.MultipleIDs(group.Code)) > 0 {
		return
	}
	instance := d.values.NextID()
	d.values.AddMultiple(group.Code, instance)
	d.logger.Debug("first instance added", "page", page.Code, "group", group.Code, "id", instance, "checkbox", q.Code, "checkbox_id", id)
}

func (d *Declaration) commit() {
	d.resolver.Clear()
	d.validator.Reset()
	d.nav.Refresh()
	d.progress = navigation.Progress(d)
	d.notify()
}

func (d *Declaration) notify() {
	if d.rerender != nil {
		d.rerender()
	}
}
