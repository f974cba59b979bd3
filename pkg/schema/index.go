package schema

// Index returns the whole-schema code → question map, building it (and the
// page/parent back-references) on first use.
func (d *Declaration) Index() map[string]*Question {
	if d == nil {
		return nil
	}
	if d.index == nil {
		d.index = buildIndex(d)
	}
	return d.index
}

// Question resolves a code against the index.
func (d *Declaration) Question(code string) (*Question, bool) {
	q, ok := d.Index()[code]
	return q, ok
}

// Page returns the page with the supplied code.
func (d *Declaration) Page(code string) (*Page, bool) {
	if d == nil {
		return nil, false
	}
	for _, page := range d.Pages {
		if page.Code == code {
			return page, true
		}
	}
	return nil, false
}

// Siblings returns the question list owned by a container: the template of a
// multiple question, or the top-level list of a page.
func (d *Declaration) Siblings(container string) []*Question {
	if q, ok := d.Question(container); ok && q.Kind == KindMultiple {
		return q.Answers
	}
	if page, ok := d.Page(container); ok {
		return page.Questions
	}
	return nil
}

// Descendants lists every code below q, answer options included.
func (q *Question) Descendants() []string {
	var out []string
	stack := append([]*Question(nil), q.Answers...)
	for len(stack) > 0 {
		last := len(stack) - 1
		cur := stack[last]
		stack = stack[:last]
		out = append(out, cur.Code)
		stack = append(stack, cur.Answers...)
	}
	return out
}

func buildIndex(d *Declaration) map[string]*Question {
	index := make(map[string]*Question)
	var walk func(q *Question, page *Page, parent *Question)
	walk = func(q *Question, page *Page, parent *Question) {
		if q == nil {
			return
		}
		q.Page = page
		if parent != nil && parent.Kind == KindMultiple && q.ParentCode == "" {
			q.ParentCode = parent.Code
		}
		if q.Code != "" {
			index[q.Code] = q
		}
		for _, answer := range q.Answers {
			walk(answer, page, q)
		}
	}
	for _, page := range d.Pages {
		if page == nil {
			continue
		}
		for _, q := range page.Questions {
			walk(q, page, nil)
		}
	}
	return index
}
