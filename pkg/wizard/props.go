package wizard

import (
	"github.com/goliatone/go-declaration/pkg/address"
	"github.com/goliatone/go-declaration/pkg/schema"
)

// Props is the per-question bundle handed to a renderer. It is one of
// *SingleProps, *AddressProps or *MultipleProps.
type Props interface {
	question() *schema.Question
}

// SingleProps drives every plain question kind.
type SingleProps struct {
	Question *schema.Question
	ID       int64
	Value    string
	Errors   []string
	Required bool
	Active   bool

	// SetValue stores a new value. It reports false when nothing changed.
	SetValue func(value string) bool
	// SetTouched marks the question as reached by the user.
	SetTouched func() bool
	SetActive  func() bool
	// SetAutocompleteAction applies the force_values action of the
	// suggestion at index.
	SetAutocompleteAction func(index int) bool
}

// AddressProps drives an address question. Touch state is per field.
type AddressProps struct {
	Question *schema.Question
	ID       int64
	Value    address.Address
	Errors   address.Errors
	Required bool

	SetValue   func(value address.Address) bool
	SetElement func(field string, element address.Element, userEdited bool) bool
	SetTouched func(field string) bool
	SetActive  func() bool
}

// MultipleProps drives a repeatable group.
type MultipleProps struct {
	Question *schema.Question
	IDs      []int64
	Errors   []string

	// Title joins the title_type child values of an instance.
	Title func(id int64) string
	// Children returns the visible template children of an instance.
	Children func(id int64) []*schema.Question
	// AddMultiple creates an instance with a fresh id and returns it.
	AddMultiple    func() int64
	DeleteMultiple func(id int64) bool
	CopyMultiple   func(id int64) (int64, bool)
	SetActive      func() bool
}

func (p *SingleProps) question() *schema.Question   { return p.Question }
func (p *AddressProps) question() *schema.Question  { return p.Question }
func (p *MultipleProps) question() *schema.Question { return p.Question }

// Props builds the bundle for q at instance id. It returns nil for a nil
// question.
func (d *Declaration) Props(q *schema.Question, id int64) Props {
	if q == nil {
		return nil
	}
	switch q.Kind {
	case schema.KindAddress:
		return d.AddressProps(q, id)
	case schema.KindMultiple:
		return d.MultipleProps(q)
	default:
		return d.SingleProps(q, id)
	}
}

// SingleProps builds the bundle of a plain question.
func (d *Declaration) SingleProps(q *schema.Question, id int64) *SingleProps {
	return &SingleProps{
		Question: q,
		ID:       id,
		Value:    d.values.Value(q.Code, id),
		Errors:   d.validator.ValidateQuestion(q, id, true),
		Required: d.IsRequired(q, id),
		Active:   d.nav.ActiveQuestion() == q,
		SetValue: func(value string) bool {
			return d.setValue(q, id, value)
		},
		SetTouched: func() bool {
			return d.setTouched(q.Code, id)
		},
		SetActive: func() bool {
			return d.setActiveQuestion(q)
		},
		SetAutocompleteAction: func(index int) bool {
			if !d.values.ApplyAutocompleteAction(q, id, index) {
				return false
			}
			d.invalidateStatistics()
			d.commit()
			return true
		},
	}
}

// AddressProps builds the bundle of an address question.
func (d *Declaration) AddressProps(q *schema.Question, id int64) *AddressProps {
	current := d.values.Value(q.Code, id)
	props := &AddressProps{
		Question: q,
		ID:       id,
		Value:    d.address.Create(current),
		Errors:   d.validator.AddressErrors(q, id, true),
		Required: d.IsRequired(q, id),
		SetTouched: func(field string) bool {
			return d.setTouched(d.address.FullCodeName(q, field), id)
		},
		SetActive: func() bool {
			return d.setActiveQuestion(q)
		},
	}
	props.SetValue = func(value address.Address) bool {
		return d.setValue(q, id, d.address.Serialize(value))
	}
	props.SetElement = func(field string, element address.Element, userEdited bool) bool {
		old := d.address.Create(d.values.Value(q.Code, id))
		next := d.address.ChangeElement(old, field, element, userEdited)
		touched := d.touches.SetTouched(d.address.FullCodeName(q, field), id)
		if d.setValue(q, id, d.address.Serialize(next)) {
			return true
		}
		if touched {
			d.commit()
		}
		return touched
	}
	return props
}

// MultipleProps builds the bundle of a repeatable group.
func (d *Declaration) MultipleProps(q *schema.Question) *MultipleProps {
	return &MultipleProps{
		Question: q,
		IDs:      d.values.MultipleIDs(q.Code),
		Errors:   d.validator.ValidateQuestion(q, 0, true),
		Title: func(id int64) string {
			return d.InstanceTitle(q, id)
		},
		Children: func(id int64) []*schema.Question {
			return d.VisibleChildren(q, id)
		},
		AddMultiple: func() int64 {
			id := d.values.NextID()
			if !d.values.AddMultiple(q.Code, id) {
				return 0
			}
			d.logger.Debug("instance added", "group", q.Code, "id", id)
			d.invalidateStatistics()
			d.commit()
			return id
		},
		DeleteMultiple: func(id int64) bool {
			if !d.values.DeleteMultiple(q.Code, id) {
				return false
			}
			d.logger.Debug("instance deleted", "group", q.Code, "id", id)
			d.invalidateStatistics()
			d.commit()
			return true
		},
		CopyMultiple: func(id int64) (int64, bool) {
			newID, ok := d.values.CopyMultiple(q.Code, id)
			if !ok {
				return 0, false
			}
			d.logger.Debug("instance copied", "group", q.Code, "from", id, "id", newID)
			d.invalidateStatistics()
			d.commit()
			return newID, true
		},
		SetActive: func() bool {
			return d.setActiveQuestion(q)
		},
	}
}

// AddMultiple adds a caller-chosen instance id to a group.
func (d *Declaration) AddMultiple(code string, id int64) bool {
	if !d.values.AddMultiple(code, id) {
		return false
	}
	d.invalidateStatistics()
	d.commit()
	return true
}

func (d *Declaration) setTouched(code string, id int64) bool {
	if !d.touches.SetTouched(code, id) {
		return false
	}
	d.commit()
	return true
}

func (d *Declaration) setActiveQuestion(q *schema.Question) bool {
	if !d.nav.SetActiveQuestion(q) {
		return false
	}
	d.commit()
	return true
}
