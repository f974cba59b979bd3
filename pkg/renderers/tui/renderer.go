// Package tui walks a declaration session page by page in the terminal,
// prompting for each visible question through a swappable PromptDriver.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-declaration/internal/markup"
	"github.com/goliatone/go-declaration/pkg/address"
	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/wizard"
)

// Renderer drives a wizard.Declaration through terminal prompts.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	logger       *slog.Logger
}

// Result summarizes a finished session.
type Result struct {
	Progress int
	// Errors lists the outstanding errors of each visible page, keyed by
	// page code, after every question was touched.
	Errors   map[string][]string
	Snapshot storage.Snapshot
}

// Complete reports whether the session ended without outstanding errors.
func (r Result) Complete() bool {
	return len(r.Errors) == 0
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		driver:       driver,
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! ", RequiredSuffix: " *"},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatYAML:
		return "application/yaml"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs the session and serializes the resulting answer snapshot.
func (r *Renderer) Render(ctx context.Context, d *wizard.Declaration) ([]byte, error) {
	res, err := r.Run(ctx, d)
	if err != nil {
		return nil, err
	}
	return r.serialize(res.Snapshot)
}

// Run prompts every visible page in order, then touches everything and
// reports the remaining errors.
func (r *Renderer) Run(ctx context.Context, d *wizard.Declaration) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if d == nil {
		return Result{}, ErrNilDeclaration
	}

	for page := d.ActivePage(); page != nil; page = d.ActivePage() {
		if err := r.promptPage(ctx, d, page); err != nil {
			return Result{}, err
		}
		if !d.GoToNextPage() {
			break
		}
	}

	d.TouchAll()
	res := Result{
		Progress: d.Progress(),
		Errors:   make(map[string][]string),
		Snapshot: d.Snapshot(),
	}
	for _, page := range d.VisiblePages() {
		errs := d.ValidatePage(page, true)
		if len(errs) == 0 {
			continue
		}
		res.Errors[page.Code] = errs
		for _, msg := range errs {
			r.info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("%s: %s", pageTitle(page), msg))
		}
	}
	r.info(ctx, r.theme.InfoPrefix+fmt.Sprintf("Progress: %d%%", res.Progress))
	r.logger.Debug("session finished", "progress", res.Progress, "pages_with_errors", len(res.Errors))
	return res, nil
}

func (r *Renderer) promptPage(ctx context.Context, d *wizard.Declaration, page *schema.Page) error {
	header := pageTitle(page)
	if page.Tab != "" {
		header = fmt.Sprintf("[%s] %s", page.Tab, header)
	}
	if err := r.driver.Info(ctx, r.theme.InfoPrefix+header); err != nil {
		return err
	}

	if page.Kind == schema.PageKindTotal {
		return r.showStatistics(ctx, d)
	}

	asked := make(map[string]bool)
	for {
		q := nextUnasked(d.VisibleQuestions(page), asked)
		if q == nil {
			return nil
		}
		asked[q.Code] = true
		if err := r.promptQuestion(ctx, d, q, 0); err != nil {
			return err
		}
	}
}

// nextUnasked re-reads the visible list each time because an answer can
// reveal or hide later questions.
func nextUnasked(questions []*schema.Question, asked map[string]bool) *schema.Question {
	for _, q := range questions {
		if !asked[q.Code] {
			return q
		}
	}
	return nil
}

func (r *Renderer) promptQuestion(ctx context.Context, d *wizard.Declaration, q *schema.Question, id int64) error {
	switch props := d.Props(q, id).(type) {
	case *wizard.MultipleProps:
		return r.promptMultiple(ctx, d, props)
	case *wizard.AddressProps:
		return r.promptAddress(ctx, d, props)
	case *wizard.SingleProps:
		return r.promptSingle(ctx, d, props)
	default:
		return nil
	}
}

func (r *Renderer) promptSingle(ctx context.Context, d *wizard.Declaration, p *wizard.SingleProps) error {
	q := p.Question
	label := r.label(q, p.Required)
	help := markup.Plain(q.Hint)

	switch {
	case q.Kind == schema.KindInfo:
		return r.driver.Info(ctx, label)
	case q.Kind == schema.KindCheckbox:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: p.Value == "1",
			Help:    help,
		})
		if err != nil {
			return err
		}
		value := ""
		if checked {
			value = "1"
		}
		p.SetValue(value)
		p.SetTouched()
		return nil
	case q.IsChoice():
		return r.promptChoice(ctx, d, p, label, help)
	}

	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: d.Value(q.Code, p.ID),
			Help:    help,
		})
		if err != nil {
			return err
		}
		p.SetValue(strings.TrimSpace(response))
		p.SetTouched()

		errs := d.ValidateQuestion(q, p.ID, true)
		if len(errs) == 0 {
			return nil
		}
		for _, msg := range errs {
			r.info(ctx, r.theme.ErrorPrefix+msg)
		}
	}
}

func (r *Renderer) promptChoice(ctx context.Context, d *wizard.Declaration, p *wizard.SingleProps, label, help string) error {
	q := p.Question
	if len(q.Answers) == 0 {
		return nil
	}
	options := make([]string, len(q.Answers))
	defaultIdx := -1
	for i, answer := range q.Answers {
		options[i] = optionTitle(answer)
		if answer.Key != "" && answer.Key == p.Value {
			defaultIdx = i
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			r.info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("Invalid %s selection", q.Code))
			continue
		}
		p.SetValue(q.Answers[idx].Key)
		if q.IsAutocompleteWithActions() {
			p.SetAutocompleteAction(idx)
		}
		p.SetTouched()
		r.logger.Debug("choice selected", "code", q.Code, "id", p.ID, "key", q.Answers[idx].Key)
		return nil
	}
}

var addressPromptFields = []string{
	address.FieldRegion, address.FieldArea, address.FieldCity, address.FieldStreet, address.FieldHouse,
}

var addressFieldLabels = map[string]string{
	address.FieldRegion: "Region",
	address.FieldArea:   "Area",
	address.FieldCity:   "City",
	address.FieldStreet: "Street",
	address.FieldHouse:  "House",
	address.FieldFlat:   "Flat",
	address.FieldPostal: "Postal code",
}

func (r *Renderer) promptAddress(ctx context.Context, d *wizard.Declaration, p *wizard.AddressProps) error {
	q := p.Question
	label := r.label(q, p.Required)
	if err := r.driver.Info(ctx, label); err != nil {
		return err
	}

	for {
		for _, field := range addressPromptFields {
			current := d.AddressModel().Create(d.Value(q.Code, p.ID))
			response, err := r.driver.Input(ctx, InputConfig{
				Message: addressFieldLabels[field],
				Default: addressElementName(current, field),
			})
			if err != nil {
				return err
			}
			response = strings.TrimSpace(response)
			if response != addressElementName(current, field) {
				p.SetElement(field, address.Element{Name: response, Type: field}, true)
			}
			p.SetTouched(field)
		}

		for _, field := range []string{address.FieldFlat, address.FieldPostal} {
			current := d.AddressModel().Create(d.Value(q.Code, p.ID))
			value := current.Flat
			if field == address.FieldPostal {
				value = current.Postal
			}
			response, err := r.driver.Input(ctx, InputConfig{
				Message: addressFieldLabels[field],
				Default: value,
			})
			if err != nil {
				return err
			}
			if field == address.FieldPostal {
				current.Postal = strings.TrimSpace(response)
			} else {
				current.Flat = strings.TrimSpace(response)
			}
			p.SetValue(current)
			p.SetTouched(field)
		}

		fresh := d.AddressProps(q, p.ID)
		errs := fresh.Errors.Flatten(d.AddressModel().FieldNames())
		if len(errs) == 0 {
			return nil
		}
		for _, msg := range errs {
			r.info(ctx, r.theme.ErrorPrefix+msg)
		}
	}
}

func addressElementName(a address.Address, field string) string {
	switch field {
	case address.FieldRegion:
		return a.Region.Name
	case address.FieldArea:
		return a.Area.Name
	case address.FieldCity:
		return a.City.Name
	case address.FieldStreet:
		return a.Street.Name
	case address.FieldHouse:
		return a.House.Name
	}
	return ""
}

func (r *Renderer) promptMultiple(ctx context.Context, d *wizard.Declaration, p *wizard.MultipleProps) error {
	q := p.Question
	label := r.label(q, false)

	for n, id := range p.IDs {
		if err := r.promptInstance(ctx, d, p, id, n+1); err != nil {
			return err
		}
	}

	n := len(p.IDs)
	for {
		message := fmt.Sprintf("Add %s?", label)
		if n > 0 {
			message = fmt.Sprintf("Add another %s?", label)
		}
		more, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: false})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		id := p.AddMultiple()
		if id == 0 {
			return nil
		}
		n++
		if err := r.promptInstance(ctx, d, p, id, n); err != nil {
			return err
		}
	}
}

func (r *Renderer) promptInstance(ctx context.Context, d *wizard.Declaration, p *wizard.MultipleProps, id int64, n int) error {
	header := fmt.Sprintf("%s #%d", r.label(p.Question, false), n)
	if title := p.Title(id); title != "" {
		header += " (" + title + ")"
	}
	if err := r.driver.Info(ctx, r.theme.InfoPrefix+header); err != nil {
		return err
	}

	asked := make(map[string]bool)
	for {
		child := nextUnasked(p.Children(id), asked)
		if child == nil {
			return nil
		}
		asked[child.Code] = true
		if err := r.promptQuestion(ctx, d, child, id); err != nil {
			return err
		}
	}
}

func (r *Renderer) showStatistics(ctx context.Context, d *wizard.Declaration) error {
	if err := d.LoadStatistics(ctx); err != nil {
		if errors.Is(err, wizard.ErrNoProvider) {
			return nil
		}
		r.logger.Warn("statistics unavailable", "error", err)
		return nil
	}
	stats, ok := d.Statistics()
	if !ok {
		return nil
	}
	for _, line := range statisticsLines(stats) {
		if err := r.driver.Info(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func statisticsLines(stats storage.Statistics) []string {
	var lines []string
	for _, income := range stats.Incomes {
		lines = append(lines, fmt.Sprintf("Income %s: %.2f", income.Name, income.Value))
	}
	for _, deduction := range stats.Deductions {
		lines = append(lines, fmt.Sprintf("Deduction %s: %.2f", deduction.Name, deduction.Value))
	}
	for _, payment := range stats.PaymentsOrCompensations {
		lines = append(lines, fmt.Sprintf("Payment: %.2f to %.2f", payment.From, payment.To))
	}
	return lines
}

func (r *Renderer) label(q *schema.Question, required bool) string {
	label := markup.Plain(q.Title)
	if label == "" {
		label = q.Code
	}
	if required {
		label += r.theme.RequiredSuffix
	}
	return r.theme.PromptPrefix + label
}

func optionTitle(answer *schema.Question) string {
	if title := markup.Plain(answer.Title); title != "" {
		return title
	}
	if answer.Key != "" {
		return answer.Key
	}
	return answer.Code
}

func pageTitle(page *schema.Page) string {
	if title := markup.Plain(page.Title); title != "" {
		return title
	}
	return page.Code
}

func (r *Renderer) info(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, msg); err != nil {
		r.logger.Debug("info message dropped", "error", err)
	}
}

func (r *Renderer) serialize(snapshot storage.Snapshot) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatYAML:
		out, err := yaml.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return out, nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(snapshot)), nil
	default:
		out, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return out, nil
	}
}

func prettyPrint(snapshot storage.Snapshot) string {
	codes := make([]string, 0, len(snapshot.Answers))
	for code := range snapshot.Answers {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	var b strings.Builder
	for _, code := range codes {
		byID := snapshot.Answers[code]
		ids := make([]int64, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if id == 0 {
				fmt.Fprintf(&b, "%s: %s\n", code, byID[id])
				continue
			}
			fmt.Fprintf(&b, "%s[%d]: %s\n", code, id, byID[id])
		}
	}
	return b.String()
}
