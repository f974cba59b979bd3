package visibility

import (
	"slices"

	"github.com/goliatone/go-declaration/pkg/schema"
)

// Values is the read side of the answer store.
type Values interface {
	Value(code string, id int64) string
}

type cacheKey struct {
	kind      schema.ActionType
	container string
	id        int64
}

// Resolver computes visible and required subsets of sibling lists. It is not
// safe for concurrent use.
type Resolver struct {
	decl   *schema.Declaration
	values Values

	hidden map[cacheKey]map[string]struct{}
	lists  map[cacheKey][]*schema.Question
}

// NewResolver binds a resolver to a preprocessed declaration and a value source.
func NewResolver(decl *schema.Declaration, values Values) *Resolver {
	r := &Resolver{decl: decl, values: values}
	r.Clear()
	return r
}

// Clear drops every memoized result.
func (r *Resolver) Clear() {
	r.hidden = make(map[cacheKey]map[string]struct{})
	r.lists = make(map[cacheKey][]*schema.Question)
}

// Cached reports how many sibling lists are currently memoized.
func (r *Resolver) Cached() int {
	return len(r.lists)
}

// Visible returns the members of siblings not hidden by a show_inputs action
// at instance id. container names the list owner (page or multiple question)
// and scopes the cache entry.
func (r *Resolver) Visible(container string, siblings []*schema.Question, id int64) []*schema.Question {
	key := cacheKey{kind: schema.ActionShowInputs, container: container, id: id}
	if list, ok := r.lists[key]; ok {
		return list
	}
	hidden := r.Hidden(schema.ActionShowInputs, container, siblings, id)
	list := filter(siblings, hidden)
	r.lists[key] = list
	return list
}

// Required returns the visible members of siblings whose required status is
// not switched off by an enable_required action. A hidden question is never
// required.
func (r *Resolver) Required(container string, siblings []*schema.Question, id int64) []*schema.Question {
	key := cacheKey{kind: schema.ActionEnableRequired, container: container, id: id}
	if list, ok := r.lists[key]; ok {
		return list
	}
	visible := r.Visible(container, siblings, id)
	hidden := r.Hidden(schema.ActionEnableRequired, container, siblings, id)
	list := filter(visible, hidden)
	r.lists[key] = list
	return list
}

// RequiredIn is Required with the sibling list looked up from the schema.
func (r *Resolver) RequiredIn(container string, id int64) []*schema.Question {
	return r.Required(container, r.decl.Siblings(container), id)
}

// VisibleIn is Visible with the sibling list looked up from the schema.
func (r *Resolver) VisibleIn(container string, id int64) []*schema.Question {
	return r.Visible(container, r.decl.Siblings(container), id)
}

// RequiredByActions reports whether q is currently in the required set of its
// container: the owning multiple group for template children, the page
// otherwise. It ignores the question's own validation rules.
func (r *Resolver) RequiredByActions(q *schema.Question, id int64) bool {
	if q == nil {
		return false
	}
	if q.ParentCode != "" {
		return slices.Contains(r.RequiredIn(q.ParentCode, id), q)
	}
	if q.Page == nil {
		return false
	}
	return slices.Contains(r.Required(q.Page.Code, q.Page.Questions, 0), q)
}

// Hidden returns the set of codes that actions of the given kind declared in
// siblings currently hide at instance id.
func (r *Resolver) Hidden(kind schema.ActionType, container string, siblings []*schema.Question, id int64) map[string]struct{} {
	key := cacheKey{kind: kind, container: container, id: id}
	if set, ok := r.hidden[key]; ok {
		return set
	}

	set := make(map[string]struct{})
	for _, q := range siblings {
		value := r.values.Value(q.Code, id)
		if q.Action.Is(kind) && needsHide(q, value) {
			addAll(set, q.Action.Codes)
		}
		if q.Kind == schema.KindMultiple {
			continue
		}
		for _, answer := range q.Answers {
			if answer.Action.Is(kind) && value != answer.Key {
				addAll(set, answer.Action.Codes)
			}
		}
	}
	r.hidden[key] = set
	return set
}

// needsHide applies the trigger convention of an action declared on q itself:
// a checkbox reveals its codes when checked ("1"), a question with an explicit
// trigger value reveals them on that value, any other question reveals them
// once it holds a value.
func needsHide(q *schema.Question, value string) bool {
	switch {
	case q.Kind == schema.KindCheckbox:
		return value != "1"
	case q.Action.Value != "":
		return value != q.Action.Value
	default:
		return value == ""
	}
}

func addAll(set map[string]struct{}, codes []string) {
	for _, code := range codes {
		set[code] = struct{}{}
	}
}

func filter(questions []*schema.Question, hidden map[string]struct{}) []*schema.Question {
	out := make([]*schema.Question, 0, len(questions))
	for _, q := range questions {
		if _, skip := hidden[q.Code]; skip {
			continue
		}
		out = append(out, q)
	}
	return out
}
