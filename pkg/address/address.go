// Package address is the default address sub-model for address questions: a
// JSON-serialized value object with per-field validation. The classifier
// lookups that normally fill the elements live outside this module.
package address

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-declaration/pkg/schema"
)

// Element is one classifier-backed part of an address.
type Element struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Empty reports whether the element has not been chosen.
func (e Element) Empty() bool {
	return strings.TrimSpace(e.ID) == "" && strings.TrimSpace(e.Name) == ""
}

// Address is the structured value stored (serialized) under an address question.
type Address struct {
	FullAddressString string  `json:"fullAddressString"`
	Region            Element `json:"region"`
	Area              Element `json:"area"`
	City              Element `json:"city"`
	Street            Element `json:"street"`
	House             Element `json:"house"`
	Housing           string  `json:"housing"`
	Flat              string  `json:"flat"`
	Ifnsfl            string  `json:"ifnsfl"`
	IfnsflName        string  `json:"ifnsflName"`
	Oktmo             string  `json:"oktmo"`
	Postal            string  `json:"postal"`
	Description       string  `json:"description"`
	UserEdited        bool    `json:"userEdited"`
}

// Field names, matching the JSON keys.
const (
	FieldFullAddress = "fullAddressString"
	FieldRegion      = "region"
	FieldArea        = "area"
	FieldCity        = "city"
	FieldStreet      = "street"
	FieldHouse       = "house"
	FieldHousing     = "housing"
	FieldFlat        = "flat"
	FieldIfnsfl      = "ifnsfl"
	FieldIfnsflName  = "ifnsflName"
	FieldOktmo       = "oktmo"
	FieldPostal      = "postal"
	FieldDescription = "description"
	FieldUserEdited  = "userEdited"
)

var fieldNames = []string{
	FieldFullAddress, FieldRegion, FieldArea, FieldCity, FieldStreet, FieldHouse,
	FieldHousing, FieldFlat, FieldIfnsfl, FieldIfnsflName, FieldOktmo, FieldPostal,
	FieldDescription, FieldUserEdited,
}

// elementOrder lists the classifier levels from broadest to narrowest.
var elementOrder = []string{FieldRegion, FieldArea, FieldCity, FieldStreet, FieldHouse}

// Errors maps field names to validation messages.
type Errors map[string][]string

// Flatten concatenates the messages in field order.
func (e Errors) Flatten(order []string) []string {
	var out []string
	for _, name := range order {
		out = append(out, e[name]...)
	}
	return out
}

// Model is the contract the engine uses for address questions.
type Model interface {
	Create(serialized string) Address
	Serialize(value Address) string
	ChangeElement(old Address, field string, element Element, userEdited bool) Address
	Validate(serialized string, touched func(field string) bool, short, skipRegion bool) Errors
	FieldNames() []string
	FullCodeName(q *schema.Question, field string) string
}

// Standard is the built-in Model.
type Standard struct {
	// Messages overrides the default English messages, keyed by
	// "required" and "postal".
	Messages map[string]string
}

var _ Model = Standard{}

// Default returns the built-in Model.
func Default() Model {
	return Standard{}
}

// Create decodes a serialized address. Empty or malformed input yields the
// zero Address.
func (Standard) Create(serialized string) Address {
	var out Address
	if strings.TrimSpace(serialized) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(serialized), &out); err != nil {
		return Address{}
	}
	return out
}

// Serialize encodes value as JSON.
func (Standard) Serialize(value Address) string {
	payload, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(payload)
}

// ChangeElement sets one classifier level and clears every narrower level,
// since a new city invalidates the previously chosen street and house.
func (Standard) ChangeElement(old Address, field string, element Element, userEdited bool) Address {
	out := old
	cleared := false
	for _, name := range elementOrder {
		switch {
		case name == field:
			out.setElement(name, element)
			cleared = true
		case cleared:
			out.setElement(name, Element{})
		}
	}
	if !cleared {
		return old
	}
	if field != FieldHouse {
		out.Housing = ""
		out.Flat = ""
	}
	out.UserEdited = userEdited
	out.FullAddressString = out.compose()
	return out
}

// FieldNames lists every address field in display order.
func (Standard) FieldNames() []string {
	return append([]string(nil), fieldNames...)
}

// FullCodeName is the composite touch/validation code of one address field.
func (Standard) FullCodeName(q *schema.Question, field string) string {
	if q == nil {
		return field
	}
	return q.Code + field
}

func (a *Address) setElement(name string, element Element) {
	switch name {
	case FieldRegion:
		a.Region = element
	case FieldArea:
		a.Area = element
	case FieldCity:
		a.City = element
	case FieldStreet:
		a.Street = element
	case FieldHouse:
		a.House = element
	}
}

func (a Address) element(name string) Element {
	switch name {
	case FieldRegion:
		return a.Region
	case FieldArea:
		return a.Area
	case FieldCity:
		return a.City
	case FieldStreet:
		return a.Street
	case FieldHouse:
		return a.House
	default:
		return Element{}
	}
}

func (a Address) compose() string {
	parts := make([]string, 0, len(elementOrder)+2)
	for _, name := range elementOrder {
		if el := a.element(name); !el.Empty() {
			parts = append(parts, strings.TrimSpace(el.Name))
		}
	}
	if v := strings.TrimSpace(a.Housing); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(a.Flat); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, ", ")
}
