package validation

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-declaration/pkg/schema"
)

// FormatValidator checks a single question value. required is the
// required-ness resolved from disclosure actions; the question's own
// validation descriptor still decides whether the question asks for a value.
type FormatValidator interface {
	Validate(q *schema.Question, get func(code string) string, required bool) []string
}

// Message keys emitted by Rules.
const (
	MessageRequired  = "validation.required"
	MessageNumber    = "validation.number"
	MessageInteger   = "validation.integer"
	MessageMoney     = "validation.money"
	MessageShares    = "validation.shares"
	MessageDate      = "validation.date"
	MessagePhone     = "validation.phone"
	MessageMin       = "validation.min"
	MessageMax       = "validation.max"
	MessageMinLength = "validation.min_length"
	MessageMaxLength = "validation.max_length"
	MessagePattern   = "validation.pattern"
)

// DefaultDateLayout is the date format accepted unless WithDateLayout is used.
const DefaultDateLayout = "02.01.2006"

const (
	phoneMinDigits = 10
	phoneMaxDigits = 11
)

var fallbackMessages = map[string]string{
	MessageRequired:  "Field is required",
	MessageNumber:    "Enter a number",
	MessageInteger:   "Enter a whole amount",
	MessageMoney:     "Enter an amount with at most two decimals",
	MessageShares:    "Enter a share as a fraction, for example 1/2",
	MessageDate:      "Enter a date as %s",
	MessagePhone:     "Enter a valid phone number",
	MessageMin:       "Value must be at least %v",
	MessageMax:       "Value must be at most %v",
	MessageMinLength: "Enter at least %d characters",
	MessageMaxLength: "Enter at most %d characters",
	MessagePattern:   "Value has an invalid format",
}

var (
	moneyPattern   = regexp.MustCompile(`^\d+([.,]\d{1,2})?$`)
	integerPattern = regexp.MustCompile(`^\d+$`)
	sharesPattern  = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
)

// RulesOption configures Rules.
type RulesOption func(*Rules)

// WithTranslator localizes messages through t for locale.
func WithTranslator(t Translator, locale string) RulesOption {
	return func(r *Rules) {
		r.translator = t
		r.locale = locale
	}
}

// WithMissingTranslation installs the handler used for untranslated keys.
func WithMissingTranslation(fn MissingTranslationHandler) RulesOption {
	return func(r *Rules) {
		r.onMissing = fn
	}
}

// WithDateLayout overrides the time layout accepted by date questions.
func WithDateLayout(layout string) RulesOption {
	return func(r *Rules) {
		if strings.TrimSpace(layout) != "" {
			r.dateLayout = layout
		}
	}
}

// Rules is the default FormatValidator: required checks, per-kind formats,
// numeric bounds, length bounds and patterns.
type Rules struct {
	translator Translator
	locale     string
	onMissing  MissingTranslationHandler
	dateLayout string

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

var _ FormatValidator = (*Rules)(nil)

// NewRules constructs the default format validator.
func NewRules(options ...RulesOption) *Rules {
	r := &Rules{
		dateLayout: DefaultDateLayout,
		patterns:   make(map[string]*regexp.Regexp),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Validate implements FormatValidator.
func (r *Rules) Validate(q *schema.Question, get func(code string) string, required bool) []string {
	if q == nil || q.Validation == nil {
		return nil
	}
	rules := q.Validation
	value := strings.TrimSpace(get(q.Code))

	if value == "" {
		if rules.Required && required {
			return []string{r.message(MessageRequired)}
		}
		return nil
	}

	errs := r.checkKind(q.Kind, value, rules)
	if len(errs) == 0 {
		errs = r.checkBounds(value, rules)
	}
	if len(errs) > 0 && strings.TrimSpace(rules.Message) != "" {
		return []string{rules.Message}
	}
	return errs
}

func (r *Rules) checkKind(kind schema.Kind, value string, rules *schema.Validation) []string {
	switch kind {
	case schema.KindNumber:
		if _, ok := parseNumber(value); !ok {
			return []string{r.message(MessageNumber)}
		}
	case schema.KindMoney:
		if !moneyPattern.MatchString(value) {
			return []string{r.message(MessageMoney)}
		}
	case schema.KindMoneyInteger:
		if !integerPattern.MatchString(value) {
			return []string{r.message(MessageInteger)}
		}
	case schema.KindShares:
		m := sharesPattern.FindStringSubmatch(value)
		if m == nil {
			return []string{r.message(MessageShares)}
		}
		num, _ := strconv.Atoi(m[1])
		den, _ := strconv.Atoi(m[2])
		if num <= 0 || den <= 0 || num > den {
			return []string{r.message(MessageShares)}
		}
	case schema.KindDate:
		if _, err := time.Parse(r.dateLayout, value); err != nil {
			return []string{r.message(MessageDate, r.dateLayout)}
		}
	case schema.KindPhone:
		if !isPhone(value) {
			return []string{r.message(MessagePhone)}
		}
	}
	return nil
}

func (r *Rules) checkBounds(value string, rules *schema.Validation) []string {
	var errs []string
	if rules.Min != nil || rules.Max != nil {
		if n, ok := parseNumber(value); ok {
			if rules.Min != nil && n < *rules.Min {
				errs = append(errs, r.message(MessageMin, *rules.Min))
			}
			if rules.Max != nil && n > *rules.Max {
				errs = append(errs, r.message(MessageMax, *rules.Max))
			}
		}
	}
	length := utf8.RuneCountInString(value)
	if rules.MinLength != nil && length < *rules.MinLength {
		errs = append(errs, r.message(MessageMinLength, *rules.MinLength))
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		errs = append(errs, r.message(MessageMaxLength, *rules.MaxLength))
	}
	if re := r.pattern(rules.Pattern); re != nil && !re.MatchString(value) {
		errs = append(errs, r.message(MessagePattern))
	}
	return errs
}

func (r *Rules) pattern(expr string) *regexp.Regexp {
	if expr == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if re, ok := r.patterns[expr]; ok {
		return re
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		// an unusable pattern never fails a value
		re = nil
	}
	r.patterns[expr] = re
	return re
}

func (r *Rules) message(key string, args ...any) string {
	return translate(r.translator, r.locale, key, fallbackMessages[key], r.onMissing, args...)
}

func parseNumber(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, " ", ""), ",", ".")
	n, err := strconv.ParseFloat(cleaned, 64)
	return n, err == nil
}

func isPhone(raw string) bool {
	digits := 0
	for i, c := range raw {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '+' && i == 0:
		case c == ' ' || c == '-' || c == '(' || c == ')':
		default:
			return false
		}
	}
	return digits >= phoneMinDigits && digits <= phoneMaxDigits
}
