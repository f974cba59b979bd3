// Package navigation keeps the page/tab selection of a declaration session
// and derives the visible page sequence from show_pages checkboxes and page
// visible_if rules.
package navigation

import (
	"io"
	"log/slog"
	"slices"

	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/visibility"
	"github.com/goliatone/go-declaration/pkg/visibility/expr"
)

// Values is the read side of the answer store.
type Values interface {
	Value(code string, id int64) string
	MultipleIDs(code string) []int64
}

// Option configures a Controller.
type Option func(*Controller)

// WithEvaluator replaces the visible_if evaluator.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(c *Controller) {
		if e != nil {
			c.evaluator = e
		}
	}
}

// WithExtras exposes caller flags to visible_if rules as `extras.<name>`.
func WithExtras(extras map[string]any) Option {
	return func(c *Controller) {
		c.extras = extras
	}
}

// WithLogger sets the logger used to report broken visible_if rules.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller is the mutable selection state. It is not safe for concurrent use.
type Controller struct {
	decl      *schema.Declaration
	values    Values
	evaluator visibility.Evaluator
	extras    map[string]any
	logger    *slog.Logger

	gates   map[string][]*schema.Question
	visible []*schema.Page
	tabs    []string

	activeTab      string
	activePage     *schema.Page
	activeQuestion *schema.Question
}

// New builds a controller positioned on the first visible page.
func New(decl *schema.Declaration, values Values, options ...Option) *Controller {
	c := &Controller{
		decl:      decl,
		values:    values,
		evaluator: expr.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		gates:     make(map[string][]*schema.Question),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	for _, page := range decl.Pages {
		for _, q := range page.Questions {
			c.collectGates(q)
		}
	}
	c.Refresh()
	if len(c.visible) > 0 {
		c.activePage = c.visible[0]
		c.activeTab = c.activePage.Tab
	}
	return c
}

func (c *Controller) collectGates(q *schema.Question) {
	if q.Kind == schema.KindCheckbox && q.Action.Is(schema.ActionShowPages) {
		for _, code := range q.Action.Codes {
			c.gates[code] = append(c.gates[code], q)
		}
	}
	for _, answer := range q.Answers {
		c.collectGates(answer)
	}
}

// Refresh recomputes the visible pages and tabs from the current answers.
func (c *Controller) Refresh() {
	c.visible = c.visible[:0]
	c.tabs = c.tabs[:0]
	for _, page := range c.decl.Pages {
		if !c.pageVisible(page) {
			continue
		}
		c.visible = append(c.visible, page)
		if page.Tab != "" && !slices.Contains(c.tabs, page.Tab) {
			c.tabs = append(c.tabs, page.Tab)
		}
	}
	if c.activePage != nil && !slices.Contains(c.visible, c.activePage) {
		c.retreat()
	}
}

// retreat moves off an active page that is no longer visible, onto the
// closest visible page declared before it, or the first visible page.
func (c *Controller) retreat() {
	var target *schema.Page
	for _, page := range c.decl.Pages {
		if page == c.activePage {
			break
		}
		if slices.Contains(c.visible, page) {
			target = page
		}
	}
	if target == nil && len(c.visible) > 0 {
		target = c.visible[0]
	}
	c.activePage = target
	c.activeQuestion = nil
	if target == nil {
		c.activeTab = ""
		return
	}
	c.activeTab = target.Tab
}

func (c *Controller) pageVisible(page *schema.Page) bool {
	if gates := c.gates[page.Code]; len(gates) > 0 {
		open := slices.ContainsFunc(gates, func(q *schema.Question) bool {
			return c.values.Value(q.Code, 0) == "1"
		})
		if !open {
			return false
		}
	}
	if page.VisibleIf == "" {
		return true
	}
	ok, err := c.evaluator.Eval(page.VisibleIf, visibility.Context{
		Lookup: func(code string) (string, bool) {
			value := c.values.Value(code, 0)
			return value, value != ""
		},
		Extras: c.extras,
	})
	if err != nil {
		c.logger.Warn("visible_if rule failed; page stays visible", "page", page.Code, "rule", page.VisibleIf, "error", err)
		return true
	}
	return ok
}

// Pages returns every page in schema order.
func (c *Controller) Pages() []*schema.Page {
	return c.decl.Pages
}

// VisiblePages returns the currently visible page sequence.
func (c *Controller) VisiblePages() []*schema.Page {
	return append([]*schema.Page(nil), c.visible...)
}

// Tabs returns the tabs of the visible pages in page order.
func (c *Controller) Tabs() []string {
	return append([]string(nil), c.tabs...)
}

func (c *Controller) ActiveTab() string                  { return c.activeTab }
func (c *Controller) ActivePage() *schema.Page            { return c.activePage }
func (c *Controller) ActiveQuestion() *schema.Question    { return c.activeQuestion }
func (c *Controller) IsActiveTab(tab string) bool         { return c.activeTab == tab }
func (c *Controller) IsActivePage(page *schema.Page) bool { return page != nil && c.activePage == page }

// TitlePage returns the first visible page of tab.
func (c *Controller) TitlePage(tab string) *schema.Page {
	for _, page := range c.visible {
		if page.Tab == tab {
			return page
		}
	}
	return nil
}

// SetActivePage selects page and its tab. It reports false when page is
// already active.
func (c *Controller) SetActivePage(page *schema.Page) bool {
	if page == nil || c.activePage == page {
		return false
	}
	c.activePage = page
	c.activeTab = page.Tab
	c.activeQuestion = nil
	return true
}

// SetActiveTab selects tab. The active page moves to the tab's title page
// when it belongs to another tab.
func (c *Controller) SetActiveTab(tab string) bool {
	if c.activeTab == tab {
		return false
	}
	c.activeTab = tab
	if c.activePage == nil || c.activePage.Tab != tab {
		if page := c.TitlePage(tab); page != nil {
			c.activePage = page
			c.activeQuestion = nil
		}
	}
	return true
}

// SetActiveQuestion highlights q. It reports false when q is already active.
func (c *Controller) SetActiveQuestion(q *schema.Question) bool {
	if c.activeQuestion == q {
		return false
	}
	c.activeQuestion = q
	return true
}

// NextPage returns the visible page after the active one.
func (c *Controller) NextPage() (*schema.Page, bool) {
	return c.adjacent(1)
}

// PrevPage returns the visible page before the active one.
func (c *Controller) PrevPage() (*schema.Page, bool) {
	return c.adjacent(-1)
}

func (c *Controller) CanGoToNextPage() bool {
	_, ok := c.NextPage()
	return ok
}

func (c *Controller) CanGoToPrevPage() bool {
	_, ok := c.PrevPage()
	return ok
}

func (c *Controller) adjacent(step int) (*schema.Page, bool) {
	pos := slices.Index(c.visible, c.activePage)
	if pos < 0 {
		return nil, false
	}
	next := pos + step
	if next < 0 || next >= len(c.visible) {
		return nil, false
	}
	return c.visible[next], true
}

// DefaultMultiple returns the first multiple question declared on page.
func DefaultMultiple(page *schema.Page) *schema.Question {
	if page == nil {
		return nil
	}
	for _, q := range page.Questions {
		if q.Kind == schema.KindMultiple {
			return q
		}
	}
	return nil
}

// Gate returns the first checkbox whose show_pages action targets page.
func (c *Controller) Gate(page *schema.Page) *schema.Question {
	if page == nil {
		return nil
	}
	if gates := c.gates[page.Code]; len(gates) > 0 {
		return gates[0]
	}
	return nil
}

// IsPageEmpty reports whether the page's driving multiple group has no
// instances or, lacking one, whether its show_pages checkbox is unchecked.
func (c *Controller) IsPageEmpty(page *schema.Page) bool {
	if q := DefaultMultiple(page); q != nil {
		return len(c.values.MultipleIDs(q.Code)) == 0
	}
	if gate := c.Gate(page); gate != nil {
		return c.values.Value(gate.Code, 0) != "1"
	}
	return false
}
