package report

import (
	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
	"github.com/goliatone/go-declaration/pkg/wizard"
)

// Summary is the template view of a session.
type Summary struct {
	Title    string
	Progress int
	Pages    []PageSummary

	HasStatistics bool
	Statistics    storage.Statistics
}

// PageSummary lists the answered questions of one visible page.
type PageSummary struct {
	Code    string
	Tab     string
	Title   string
	Empty   bool
	Answers []Answer
	Errors  []string
}

// Answer is one non-empty answer. Instance is the 1-based position inside a
// multiple group, 0 for top-level questions.
type Answer struct {
	Code     string
	Title    string
	Value    string
	Display  string
	Instance int
}

// Build collects the summary of d. Errors are the ungated ones, so the report
// shows everything still missing regardless of touch state.
func Build(d *wizard.Declaration) Summary {
	summary := Summary{
		Title:    d.Schema().Title,
		Progress: d.Progress(),
	}
	if stats, ok := d.Statistics(); ok {
		summary.HasStatistics = true
		summary.Statistics = stats
	}

	for _, page := range d.VisiblePages() {
		ps := PageSummary{
			Code:   page.Code,
			Tab:    page.Tab,
			Title:  page.Title,
			Empty:  d.IsPageEmpty(page),
			Errors: d.ValidatePage(page, false),
		}
		if ps.Title == "" {
			ps.Title = page.Code
		}
		for _, q := range d.VisibleQuestions(page) {
			if q.Kind != schema.KindMultiple {
				ps.Answers = appendAnswer(ps.Answers, d, q, 0, 0)
				continue
			}
			for n, id := range d.MultipleIDs(q.Code) {
				for _, child := range d.VisibleChildren(q, id) {
					ps.Answers = appendAnswer(ps.Answers, d, child, id, n+1)
				}
			}
		}
		summary.Pages = append(summary.Pages, ps)
	}
	return summary
}

func appendAnswer(out []Answer, d *wizard.Declaration, q *schema.Question, id int64, instance int) []Answer {
	if q.Kind == schema.KindInfo {
		return out
	}
	value := d.Value(q.Code, id)
	if value == "" {
		return out
	}
	title := q.Title
	if title == "" {
		title = q.Code
	}
	return append(out, Answer{
		Code:     q.Code,
		Title:    title,
		Value:    value,
		Display:  display(d, q, value),
		Instance: instance,
	})
}

func display(d *wizard.Declaration, q *schema.Question, value string) string {
	switch {
	case q.Kind == schema.KindCheckbox:
		if value == "1" {
			return "yes"
		}
		return value
	case q.Kind == schema.KindAddress:
		if full := d.AddressModel().Create(value).FullAddressString; full != "" {
			return full
		}
		return value
	case q.IsChoice():
		for _, answer := range q.Answers {
			if answer.Key == value && answer.Title != "" {
				return answer.Title
			}
		}
	}
	return value
}
