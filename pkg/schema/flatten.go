package schema

// Flatten rewrites every show_inputs action so its Codes hold the transitive
// closure of the codes it reveals. Codes that do not resolve to a question are
// dropped. Duplicates reached through different branches are kept.
//
// enable_required actions are left as declared.
//
// The expansion always starts from the codes as originally declared, so
// calling Flatten again yields the same lists.
func Flatten(d *Declaration) {
	if d == nil {
		return
	}
	index := d.Index()

	var visit func(q *Question)
	visit = func(q *Question) {
		if q == nil {
			return
		}
		if q.Action.Is(ActionShowInputs) {
			q.Action.flatten(index)
		}
		for _, answer := range q.Answers {
			visit(answer)
		}
	}

	for _, page := range d.Pages {
		if page == nil {
			continue
		}
		for _, q := range page.Questions {
			visit(q)
		}
	}
	d.flattened = true
}

// Flattened reports whether Flatten has run on d.
func (d *Declaration) Flattened() bool {
	return d != nil && d.flattened
}

func (a *Action) flatten(index map[string]*Question) {
	if a.declared == nil {
		a.declared = append([]string{}, a.Codes...)
	}

	pending := append([]string(nil), a.declared...)
	expanded := make(map[string]struct{})
	codes := make([]string, 0, len(pending))

	for len(pending) > 0 {
		last := len(pending) - 1
		code := pending[last]
		pending = pending[:last]

		q, ok := index[code]
		if !ok {
			continue
		}
		codes = append(codes, code)

		// a code reached twice is listed twice but expanded once, which keeps
		// malformed cyclic schemas from looping
		if _, seen := expanded[code]; seen {
			continue
		}
		expanded[code] = struct{}{}

		if q.Action.Is(ActionShowInputs) {
			pending = append(pending, q.Action.source()...)
		}
		if q.Kind == KindMultiple {
			continue
		}
		for _, answer := range q.Answers {
			if answer.Action.Is(ActionShowInputs) {
				pending = append(pending, answer.Action.source()...)
			}
		}
	}

	a.Codes = codes
}

// source returns the codes as declared before flattening.
func (a *Action) source() []string {
	if a.declared != nil {
		return a.declared
	}
	return a.Codes
}
