// Package storage defines the persistence contract the declaration engine
// reports answer changes to, plus in-memory and file-backed providers.
package storage

import "context"

// Provider receives every committed change. The engine never waits on it for
// its own state transitions, except for the statistics snapshot.
type Provider interface {
	SaveAnswer(code string, id int64, value string)
	DeleteMultiple(code string, id int64)
	CopyMultiple(code string, id, newID int64)
	Statistics(ctx context.Context) (Statistics, error)
}

// RosterRecorder is implemented by providers that track instance creation.
// The engine checks for it when a multiple instance is added.
type RosterRecorder interface {
	AddMultiple(code string, id int64)
}

// CopyAppender is implemented by providers that can place a copied instance
// at the end of the roster. The engine uses it instead of CopyMultiple when
// copies are configured to be appended.
type CopyAppender interface {
	AppendCopy(code string, id, newID int64)
}

// Statistics is the computed tax summary shown on total pages.
type Statistics struct {
	Incomes                 []Amount `json:"incomes" yaml:"incomes"`
	Deductions              []Amount `json:"deductions" yaml:"deductions"`
	PaymentsOrCompensations []Range  `json:"payments_or_compensations" yaml:"payments_or_compensations"`
}

// Amount is a named money figure.
type Amount struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Range is a from/to money figure.
type Range struct {
	From float64 `json:"from" yaml:"from"`
	To   float64 `json:"to" yaml:"to"`
}

// StatisticsFunc computes statistics from the answers a provider holds.
type StatisticsFunc func(ctx context.Context, snapshot Snapshot) (Statistics, error)

// Snapshot is the portable form of a value store: answers keyed by code and
// instance id, plus the roster of every multiple group.
type Snapshot struct {
	Answers   map[string]map[int64]string `json:"answers" yaml:"answers"`
	Multiples map[string][]int64          `json:"multiples,omitempty" yaml:"multiples,omitempty"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Answers:   make(map[string]map[int64]string, len(s.Answers)),
		Multiples: make(map[string][]int64, len(s.Multiples)),
	}
	for code, byID := range s.Answers {
		inner := make(map[int64]string, len(byID))
		for id, value := range byID {
			inner[id] = value
		}
		out.Answers[code] = inner
	}
	for code, ids := range s.Multiples {
		out.Multiples[code] = append([]int64(nil), ids...)
	}
	return out
}

// Value reads an answer, returning "" when absent.
func (s Snapshot) Value(code string, id int64) string {
	return s.Answers[code][id]
}
