// Package validation computes and caches per-question and per-page error
// lists. It honours touch state (errors stay hidden until the user reaches a
// field) and the required-ness resolved from disclosure actions.
package validation

import (
	"github.com/goliatone/go-declaration/pkg/address"
	"github.com/goliatone/go-declaration/pkg/schema"
)

// Values is the read side of the answer store.
type Values interface {
	Value(code string, id int64) string
	MultipleIDs(code string) []int64
}

// Touches reports interaction state.
type Touches interface {
	Touched(code string, id int64) bool
}

// Disclosure resolves visible and required sets.
type Disclosure interface {
	Visible(container string, siblings []*schema.Question, id int64) []*schema.Question
	RequiredIn(container string, id int64) []*schema.Question
	RequiredByActions(q *schema.Question, id int64) bool
}

type cacheKey struct {
	code       string
	id         int64
	checkTouch bool
}

// Orchestrator memoizes validation results until the next Reset. It is not
// safe for concurrent use.
type Orchestrator struct {
	values     Values
	touches    Touches
	disclosure Disclosure
	address    address.Model
	format     FormatValidator

	cache map[cacheKey][]string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFormatValidator replaces the default Rules validator.
func WithFormatValidator(v FormatValidator) Option {
	return func(o *Orchestrator) {
		if v != nil {
			o.format = v
		}
	}
}

// WithAddressModel replaces the default address model.
func WithAddressModel(m address.Model) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.address = m
		}
	}
}

// New constructs an Orchestrator.
func New(values Values, touches Touches, disclosure Disclosure, options ...Option) *Orchestrator {
	o := &Orchestrator{
		values:     values,
		touches:    touches,
		disclosure: disclosure,
		address:    address.Default(),
		format:     NewRules(),
		cache:      make(map[cacheKey][]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o
}

// Reset discards every cached result. Any mutation of values, touches or
// navigation must be followed by a Reset.
func (o *Orchestrator) Reset() {
	o.cache = make(map[cacheKey][]string)
}

// Cached reports the number of memoized results.
func (o *Orchestrator) Cached() int {
	return len(o.cache)
}

// ValidateQuestion returns the errors of q at instance id. With checkTouch an
// untouched question reports no errors; without it the full error set is
// returned, which is what submit-time checks want. The returned slice is
// shared with the cache and must not be modified.
func (o *Orchestrator) ValidateQuestion(q *schema.Question, id int64, checkTouch bool) []string {
	if q == nil {
		return nil
	}
	key := cacheKey{code: q.Code, id: id, checkTouch: checkTouch}
	if errs, ok := o.cache[key]; ok {
		return errs
	}
	errs := o.errors(q, id, checkTouch)
	o.cache[key] = errs
	return errs
}

// ValidatePage flattens the errors of the page's visible top-level questions.
func (o *Orchestrator) ValidatePage(page *schema.Page, checkTouch bool) []string {
	if page == nil {
		return nil
	}
	var out []string
	for _, q := range o.disclosure.Visible(page.Code, page.Questions, 0) {
		out = append(out, o.ValidateQuestion(q, 0, checkTouch)...)
	}
	return out
}

// AddressErrors returns per-field errors of an address question.
func (o *Orchestrator) AddressErrors(q *schema.Question, id int64, checkTouch bool) address.Errors {
	touched := func(field string) bool {
		return !checkTouch || o.touches.Touched(o.address.FullCodeName(q, field), id)
	}
	short := q.Validation != nil && q.Validation.ShortAnswer
	return o.address.Validate(o.values.Value(q.Code, id), touched, short, true)
}

func (o *Orchestrator) errors(q *schema.Question, id int64, checkTouch bool) []string {
	switch q.Kind {
	case schema.KindInfo:
		return []string{}
	case schema.KindMultiple:
		out := []string{}
		for _, instance := range o.values.MultipleIDs(q.Code) {
			for _, child := range o.disclosure.RequiredIn(q.Code, instance) {
				out = append(out, o.ValidateQuestion(child, instance, checkTouch)...)
			}
		}
		return out
	case schema.KindAddress:
		out := o.AddressErrors(q, id, checkTouch).Flatten(o.address.FieldNames())
		if out == nil {
			out = []string{}
		}
		return out
	}

	if checkTouch && !o.touches.Touched(q.Code, id) {
		return []string{}
	}
	required := o.disclosure.RequiredByActions(q, id)
	out := o.format.Validate(q, func(code string) string { return o.values.Value(code, id) }, required)
	if out == nil {
		out = []string{}
	}
	return out
}
