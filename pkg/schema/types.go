package schema

// PageKind classifies a page. Unknown kinds behave like PageKindGeneric.
type PageKind string

const (
	PageKindStatement PageKind = "statement"
	PageKindTotal     PageKind = "total"
	PageKindFiles     PageKind = "files"
	PageKindGeneric   PageKind = "generic"
)

// Countable reports whether questions on pages of kind k count toward progress.
func (k PageKind) Countable() bool {
	switch k {
	case PageKindStatement, PageKindTotal, PageKindFiles:
		return false
	default:
		return true
	}
}

// Kind enumerates the question kinds understood by the engine. Answer options
// of choice questions carry an empty Kind.
type Kind string

const (
	KindText                 Kind = "text"
	KindNumber               Kind = "number"
	KindDate                 Kind = "date"
	KindPhone                Kind = "phone"
	KindCheckbox             Kind = "checkbox"
	KindRadio                Kind = "radio"
	KindSelect               Kind = "select"
	KindAddress              Kind = "address"
	KindAutocomplete         Kind = "autocomplete"
	KindCurrencyAutocomplete Kind = "currency-autocomplete"
	KindMoney                Kind = "money"
	KindMoneyInteger         Kind = "money-integer"
	KindShares               Kind = "shares"
	KindInfo                 Kind = "info"
	KindMultiple             Kind = "multiple"
)

// ActionType discriminates the Action variants.
type ActionType string

const (
	ActionShowInputs     ActionType = "show_inputs"
	ActionEnableRequired ActionType = "enable_required"
	ActionShowPages      ActionType = "show_pages"
	ActionForceValues    ActionType = "force_values"
)

// Declaration is the root of a wizard schema.
type Declaration struct {
	Code  string  `json:"code,omitempty" yaml:"code,omitempty"`
	Title string  `json:"title,omitempty" yaml:"title,omitempty"`
	Pages []*Page `json:"pages" yaml:"pages"`

	index     map[string]*Question
	flattened bool
}

// Page groups top-level questions under a tab.
type Page struct {
	Code      string      `json:"code" yaml:"code"`
	Kind      PageKind    `json:"type,omitempty" yaml:"type,omitempty"`
	Tab       string      `json:"tab,omitempty" yaml:"tab,omitempty"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	VisibleIf string      `json:"visible_if,omitempty" yaml:"visible_if,omitempty"`
	Questions []*Question `json:"questions" yaml:"questions"`
}

// Question is a node of the question tree. Choice options and the template
// children of a multiple question are Questions as well, reachable through
// Answers.
type Question struct {
	Code       string      `json:"code" yaml:"code"`
	Kind       Kind        `json:"type,omitempty" yaml:"type,omitempty"`
	Title      string      `json:"title,omitempty" yaml:"title,omitempty"`
	Hint       string      `json:"hint,omitempty" yaml:"hint,omitempty"`
	Key        string      `json:"key,omitempty" yaml:"key,omitempty"`
	TitleType  bool        `json:"title_type,omitempty" yaml:"title_type,omitempty"`
	ParentCode string      `json:"parent_code,omitempty" yaml:"parent_code,omitempty"`
	Validation *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Action     *Action     `json:"action,omitempty" yaml:"action,omitempty"`
	Answers    []*Question `json:"answers,omitempty" yaml:"answers,omitempty"`

	// Page is the owning page, linked during preprocessing.
	Page *Page `json:"-" yaml:"-"`
}

// Validation declares required-ness and format rules for a question.
type Validation struct {
	Required     bool     `json:"required,omitempty" yaml:"required,omitempty"`
	CanBeSkipped bool     `json:"can_be_skipped,omitempty" yaml:"can_be_skipped,omitempty"`
	ShortAnswer  bool     `json:"short_answer,omitempty" yaml:"short_answer,omitempty"`
	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength    *int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength    *int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern      string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message      string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Action is a conditional effect attached to a question or an answer option.
//
// Codes lists the targets for every variant. Value is the trigger value for a
// show_inputs/enable_required action declared on the question itself. Rules
// only apply to force_values.
type Action struct {
	Type  ActionType  `json:"type" yaml:"type"`
	Codes []string    `json:"codes,omitempty" yaml:"codes,omitempty"`
	Value string      `json:"value,omitempty" yaml:"value,omitempty"`
	Rules []ForceRule `json:"rules,omitempty" yaml:"rules,omitempty"`

	declared []string
}

// ForceRule maps a selected answer key onto forced values. Values[i] is
// written to the owning action's Codes[i]. An empty When matches any
// selection, which is how option-level autocomplete actions are declared.
type ForceRule struct {
	When   string   `json:"when,omitempty" yaml:"when,omitempty"`
	Values []string `json:"values" yaml:"values"`
}

// Is reports whether the action is non-nil and of the given type.
func (a *Action) Is(kind ActionType) bool {
	return a != nil && a.Type == kind
}

// IsChoice reports whether answers of q are selectable options rather than
// template children.
func (q *Question) IsChoice() bool {
	switch q.Kind {
	case KindRadio, KindSelect, KindCheckbox, KindAutocomplete, KindCurrencyAutocomplete:
		return true
	default:
		return false
	}
}

// Skippable reports whether an empty value may be left out entirely.
func (q *Question) Skippable() bool {
	return q.Validation != nil && q.Validation.CanBeSkipped
}

// HasActions reports whether q carries a disclosure action on itself.
func (q *Question) HasActions() bool {
	return q.Action.Is(ActionShowInputs) || q.Action.Is(ActionEnableRequired)
}

// HasActionsOnChild reports whether one of q's answer options carries a
// disclosure action.
func (q *Question) HasActionsOnChild() bool {
	if q.Kind == KindMultiple {
		return false
	}
	for _, answer := range q.Answers {
		if answer.HasActions() {
			return true
		}
	}
	return false
}

// HasForceValues reports whether selecting an answer of q forces other values.
func (q *Question) HasForceValues() bool {
	return (q.Kind == KindRadio || q.Kind == KindAutocomplete) && q.Action.Is(ActionForceValues)
}

// IsAutocompleteWithActions reports whether q is an autocomplete whose
// suggestions carry their own force_values actions.
func (q *Question) IsAutocompleteWithActions() bool {
	if q.Kind != KindAutocomplete && q.Kind != KindCurrencyAutocomplete {
		return false
	}
	for _, answer := range q.Answers {
		if answer.Action.Is(ActionForceValues) {
			return true
		}
	}
	return false
}

// AffectsDisclosure reports whether a change to q can alter any visible or
// required set.
func (q *Question) AffectsDisclosure() bool {
	return q.HasForceValues() || q.HasActions() || q.HasActionsOnChild() || q.IsAutocompleteWithActions()
}
