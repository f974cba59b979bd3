// Package values holds the answer store of a declaration session: string
// values keyed by question code and instance id, the rosters of repeatable
// groups, and forced-value propagation.
package values

import (
	"slices"
	"time"

	"github.com/goliatone/go-declaration/pkg/schema"
	"github.com/goliatone/go-declaration/pkg/storage"
)

// CopyPlacement decides where CopyMultiple inserts the new instance.
type CopyPlacement int

const (
	// CopyAfterSource inserts the copy directly after the source instance.
	CopyAfterSource CopyPlacement = iota
	// CopyAppend appends the copy to the end of the roster.
	CopyAppend
)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the instance id source used by CopyMultiple.
// The default is the current Unix time in milliseconds.
func WithIDGenerator(fn func() int64) Option {
	return func(s *Store) {
		if fn != nil {
			s.nextID = fn
		}
	}
}

// WithCopyPlacement selects where copied instances land.
func WithCopyPlacement(placement CopyPlacement) Option {
	return func(s *Store) {
		s.placement = placement
	}
}

// Store is the authoritative answer state. It is not safe for concurrent use.
type Store struct {
	index     map[string]*schema.Question
	values    map[string]map[int64]string
	multiples map[string][]int64
	provider  storage.Provider
	nextID    func() int64
	lastID    int64
	placement CopyPlacement
}

// New builds a store over decl seeded with initial. Answers and rosters for
// codes unknown to decl are dropped.
func New(decl *schema.Declaration, initial storage.Snapshot, provider storage.Provider, options ...Option) *Store {
	s := &Store{
		index:     decl.Index(),
		values:    make(map[string]map[int64]string),
		multiples: make(map[string][]int64),
		provider:  provider,
		nextID:    func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	for code, byID := range initial.Answers {
		if _, ok := s.index[code]; !ok {
			continue
		}
		for id, value := range byID {
			if value == "" {
				continue
			}
			s.put(code, id, value)
		}
	}
	for code, ids := range initial.Multiples {
		q, ok := s.index[code]
		if !ok || q.Kind != schema.KindMultiple {
			continue
		}
		for _, id := range ids {
			if !slices.Contains(s.multiples[code], id) {
				s.multiples[code] = append(s.multiples[code], id)
			}
			s.lastID = max(s.lastID, id)
		}
	}
	return s
}

// Value returns the stored value or "".
func (s *Store) Value(code string, id int64) string {
	return s.values[code][id]
}

// Getter binds Value to an instance id.
func (s *Store) Getter(id int64) func(code string) string {
	return func(code string) string {
		return s.Value(code, id)
	}
}

// SetValue writes value and reports whether anything changed. Writing the
// current value, or writing to an unknown code, is a no-op. When the question
// forces values on other questions, those are written for the same id before
// SetValue returns.
func (s *Store) SetValue(code string, id int64, value string) bool {
	q, ok := s.index[code]
	if !ok {
		return false
	}
	if s.Value(code, id) == value {
		return false
	}
	s.write(code, id, value)
	if q.HasForceValues() {
		s.force(q.Action, value, id)
	}
	return true
}

// ApplyAutocompleteAction applies the force_values action carried by the
// suggestion at index of an autocomplete question. It reports whether any
// value changed.
func (s *Store) ApplyAutocompleteAction(q *schema.Question, id int64, index int) bool {
	if q == nil || !q.IsAutocompleteWithActions() {
		return false
	}
	if index < 0 || index >= len(q.Answers) {
		return false
	}
	option := q.Answers[index]
	if !option.Action.Is(schema.ActionForceValues) {
		return false
	}
	return s.force(option.Action, option.Key, id)
}

// MultipleIDs returns a copy of the roster for a multiple question.
func (s *Store) MultipleIDs(code string) []int64 {
	ids := s.multiples[code]
	if len(ids) == 0 {
		return []int64{}
	}
	return append([]int64(nil), ids...)
}

// AddMultiple appends id to the roster of code. Duplicate ids and non-multiple
// codes are ignored.
func (s *Store) AddMultiple(code string, id int64) bool {
	if !s.isMultiple(code) || slices.Contains(s.multiples[code], id) {
		return false
	}
	s.multiples[code] = append(s.multiples[code], id)
	s.lastID = max(s.lastID, id)
	if rec, ok := s.provider.(storage.RosterRecorder); ok {
		rec.AddMultiple(code, id)
	}
	return true
}

// DeleteMultiple removes id from the roster and purges every descendant value
// stored at id.
func (s *Store) DeleteMultiple(code string, id int64) bool {
	pos := slices.Index(s.multiples[code], id)
	if pos < 0 {
		return false
	}
	s.multiples[code] = slices.Delete(s.multiples[code], pos, pos+1)
	for _, child := range s.index[code].Descendants() {
		if byID, ok := s.values[child]; ok {
			delete(byID, id)
		}
	}
	if s.provider != nil {
		s.provider.DeleteMultiple(code, id)
	}
	return true
}

// CopyMultiple duplicates instance id of code into a fresh instance and
// returns its id.
func (s *Store) CopyMultiple(code string, id int64) (int64, bool) {
	pos := slices.Index(s.multiples[code], id)
	if pos < 0 {
		return 0, false
	}

	newID := s.generateID()
	for _, child := range s.index[code].Descendants() {
		if value, ok := s.values[child][id]; ok {
			s.put(child, newID, value)
		}
	}

	switch s.placement {
	case CopyAppend:
		s.multiples[code] = append(s.multiples[code], newID)
	default:
		s.multiples[code] = slices.Insert(s.multiples[code], pos+1, newID)
	}
	if s.provider == nil {
		return newID, true
	}
	if appender, ok := s.provider.(storage.CopyAppender); ok && s.placement == CopyAppend {
		appender.AppendCopy(code, id, newID)
	} else {
		s.provider.CopyMultiple(code, id, newID)
	}
	return newID, true
}

// Snapshot exports the store.
func (s *Store) Snapshot() storage.Snapshot {
	return storage.Snapshot{Answers: s.values, Multiples: s.multiples}.Clone()
}

func (s *Store) isMultiple(code string) bool {
	q, ok := s.index[code]
	return ok && q.Kind == schema.KindMultiple
}

func (s *Store) force(action *schema.Action, selected string, id int64) bool {
	changed := false
	for _, rule := range action.Rules {
		if rule.When != "" && rule.When != selected {
			continue
		}
		for i, code := range action.Codes {
			if i >= len(rule.Values) {
				break
			}
			if _, ok := s.index[code]; !ok {
				continue
			}
			if s.Value(code, id) == rule.Values[i] {
				continue
			}
			s.write(code, id, rule.Values[i])
			changed = true
		}
	}
	return changed
}

func (s *Store) write(code string, id int64, value string) {
	s.put(code, id, value)
	if s.provider != nil {
		s.provider.SaveAnswer(code, id, value)
	}
}

func (s *Store) put(code string, id int64, value string) {
	if value == "" {
		if byID, ok := s.values[code]; ok {
			delete(byID, id)
		}
		return
	}
	byID := s.values[code]
	if byID == nil {
		byID = make(map[int64]string)
		s.values[code] = byID
	}
	byID[id] = value
}

// NextID reserves a fresh instance id, strictly greater than every id the
// store has seen.
func (s *Store) NextID() int64 {
	return s.generateID()
}

func (s *Store) generateID() int64 {
	id := s.nextID()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
