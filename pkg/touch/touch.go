// Package touch records which (question, instance) pairs the user has
// interacted with, so validation errors stay hidden until a field is reached.
package touch

import "github.com/goliatone/go-declaration/pkg/schema"

// Rosters exposes the live instances of multiple groups.
type Rosters interface {
	MultipleIDs(code string) []int64
}

// AddressFields names the composite touch codes of address questions.
type AddressFields interface {
	FieldNames() []string
	FullCodeName(q *schema.Question, field string) string
}

type key struct {
	code string
	id   int64
}

// Tracker holds touch state. Once touched, a pair stays touched until Reset.
type Tracker struct {
	touched map[key]bool
	all     bool
	rosters Rosters
	address AddressFields
}

// New returns an empty tracker.
func New(rosters Rosters, address AddressFields) *Tracker {
	return &Tracker{
		touched: make(map[key]bool),
		rosters: rosters,
		address: address,
	}
}

// Touched reports whether code was touched at id.
func (t *Tracker) Touched(code string, id int64) bool {
	if t.all {
		return true
	}
	return t.touched[key{code: code, id: id}]
}

// SetTouched marks code at id and reports whether it was untouched before.
func (t *Tracker) SetTouched(code string, id int64) bool {
	if t.Touched(code, id) {
		return false
	}
	t.touched[key{code: code, id: id}] = true
	return true
}

// TouchAll makes every current and future pair report as touched. It is a
// mode switch because repeatable groups can grow without bound.
func (t *Tracker) TouchAll() {
	t.all = true
}

// All reports whether TouchAll is in effect.
func (t *Tracker) All() bool {
	return t.all
}

// TouchPage marks every question on page, expanding multiple groups over their
// live instances and address questions over their fields. It reports whether
// any pair changed.
func (t *Tracker) TouchPage(page *schema.Page) bool {
	if page == nil {
		return false
	}
	return t.touchQuestions(page.Questions, 0)
}

// Reset forgets every touch and leaves touch-all mode.
func (t *Tracker) Reset() {
	t.touched = make(map[key]bool)
	t.all = false
}

func (t *Tracker) touchQuestions(questions []*schema.Question, id int64) bool {
	changed := false
	for _, q := range questions {
		switch q.Kind {
		case schema.KindMultiple:
			if t.rosters == nil {
				continue
			}
			for _, instance := range t.rosters.MultipleIDs(q.Code) {
				if t.touchQuestions(q.Answers, instance) {
					changed = true
				}
			}
		case schema.KindAddress:
			if t.address == nil {
				continue
			}
			for _, field := range t.address.FieldNames() {
				if t.SetTouched(t.address.FullCodeName(q, field), id) {
					changed = true
				}
			}
		default:
			if t.SetTouched(q.Code, id) {
				changed = true
			}
		}
	}
	return changed
}
