package navigation

import "github.com/goliatone/go-declaration/pkg/schema"

// ProgressSource exposes the state Progress needs without tying it to the
// wizard facade.
type ProgressSource interface {
	VisiblePages() []*schema.Page
	VisibleQuestions(page *schema.Page) []*schema.Question
	VisibleChildren(q *schema.Question, id int64) []*schema.Question
	MultipleIDs(code string) []int64
	Value(code string, id int64) string
	Errors(q *schema.Question, id int64) []string
	AddressComplete(q *schema.Question, id int64) bool
}

type progressItem struct {
	q  *schema.Question
	id int64
}

// Progress returns the floored completion percentage in [0, 100]. Pages of
// kind statement, total and files are not counted, nor are info and
// checkbox questions or empty questions that may be skipped.
func Progress(src ProgressSource) int {
	var items []progressItem
	for _, page := range src.VisiblePages() {
		if !page.Kind.Countable() {
			continue
		}
		for _, q := range src.VisibleQuestions(page) {
			if q.Kind != schema.KindMultiple {
				items = append(items, progressItem{q: q})
				continue
			}
			for _, id := range src.MultipleIDs(q.Code) {
				for _, child := range src.VisibleChildren(q, id) {
					items = append(items, progressItem{q: child, id: id})
				}
			}
		}
	}

	total, answered := 0, 0
	for _, item := range items {
		switch item.q.Kind {
		case schema.KindInfo, schema.KindCheckbox, schema.KindMultiple:
			continue
		}
		value := src.Value(item.q.Code, item.id)
		if value == "" && item.q.Skippable() {
			continue
		}
		total++
		if value == "" {
			continue
		}
		if item.q.Kind == schema.KindAddress {
			if src.AddressComplete(item.q, item.id) {
				answered++
			}
			continue
		}
		if len(src.Errors(item.q, item.id)) == 0 {
			answered++
		}
	}

	if total == 0 {
		return 0
	}
	return answered * 100 / total
}
