package address

import (
	"strings"
	"unicode"
)

// required lists the fields that must be filled in full mode.
var required = []string{FieldRegion, FieldCity, FieldStreet, FieldHouse}

// skipOnShort are relaxed when the question asks for a short answer.
var skipOnShort = map[string]struct{}{
	FieldStreet: {},
	FieldHouse:  {},
}

const (
	defaultRequiredMessage = "Field is required"
	defaultPostalMessage   = "Postal code must contain 6 digits"
)

// Validate checks a serialized address. Only fields for which touched returns
// true report errors; a nil predicate counts every field as touched.
func (m Standard) Validate(serialized string, touched func(field string) bool, short, skipRegion bool) Errors {
	if touched == nil {
		touched = func(string) bool { return true }
	}
	value := m.Create(serialized)
	errs := make(Errors)

	for _, name := range required {
		if short {
			if _, skip := skipOnShort[name]; skip {
				continue
			}
		}
		if skipRegion && name == FieldRegion {
			continue
		}
		if !value.element(name).Empty() || !touched(name) {
			continue
		}
		// a city-level settlement may be filed under the area instead
		if name == FieldCity && !value.Area.Empty() {
			continue
		}
		errs[name] = append(errs[name], m.message("required", defaultRequiredMessage))
	}

	if postal := strings.TrimSpace(value.Postal); postal != "" && touched(FieldPostal) && !isPostal(postal) {
		errs[FieldPostal] = append(errs[FieldPostal], m.message("postal", defaultPostalMessage))
	}
	return errs
}

func (m Standard) message(key, fallback string) string {
	if msg := strings.TrimSpace(m.Messages[key]); msg != "" {
		return msg
	}
	return fallback
}

func isPostal(raw string) bool {
	if len(raw) != 6 {
		return false
	}
	for _, r := range raw {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
