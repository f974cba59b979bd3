package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps answers in process. Instance ids are globally unique, so
// deleting or copying an instance touches every answer stored under its id.
type Memory struct {
	mu       sync.Mutex
	snapshot Snapshot
	stats    StatisticsFunc
}

// MemoryOption configures a Memory provider.
type MemoryOption func(*Memory)

// WithStatistics installs the statistics calculator.
func WithStatistics(fn StatisticsFunc) MemoryOption {
	return func(m *Memory) {
		m.stats = fn
	}
}

// WithInitial seeds the provider with a snapshot.
func WithInitial(snapshot Snapshot) MemoryOption {
	return func(m *Memory) {
		m.snapshot = snapshot.Clone()
	}
}

// NewMemory constructs an empty in-memory provider.
func NewMemory(options ...MemoryOption) *Memory {
	m := &Memory{snapshot: Snapshot{}.Clone()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

func (m *Memory) SaveAnswer(code string, id int64, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := m.snapshot.Answers[code]
	if byID == nil {
		byID = make(map[int64]string)
		m.snapshot.Answers[code] = byID
	}
	if value == "" {
		delete(byID, id)
		return
	}
	byID[id] = value
}

func (m *Memory) DeleteMultiple(code string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Multiples[code] = slices.DeleteFunc(m.snapshot.Multiples[code], func(cur int64) bool {
		return cur == id
	})
	for _, byID := range m.snapshot.Answers {
		delete(byID, id)
	}
}

func (m *Memory) CopyMultiple(code string, id, newID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyAnswers(id, newID)
	m.snapshot.Multiples[code] = insertAfter(m.snapshot.Multiples[code], id, newID)
}

// AppendCopy is CopyMultiple with the copy placed last in the roster.
func (m *Memory) AppendCopy(code string, id, newID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyAnswers(id, newID)
	if !slices.Contains(m.snapshot.Multiples[code], newID) {
		m.snapshot.Multiples[code] = append(m.snapshot.Multiples[code], newID)
	}
}

func (m *Memory) copyAnswers(id, newID int64) {
	for _, byID := range m.snapshot.Answers {
		if value, ok := byID[id]; ok {
			byID[newID] = value
		}
	}
}

// AddMultiple records a new instance in the roster.
func (m *Memory) AddMultiple(code string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.snapshot.Multiples[code], id) {
		return
	}
	m.snapshot.Multiples[code] = append(m.snapshot.Multiples[code], id)
}

func (m *Memory) Statistics(ctx context.Context) (Statistics, error) {
	if err := ctx.Err(); err != nil {
		return Statistics{}, err
	}
	if m.stats == nil {
		return Statistics{}, nil
	}
	return m.stats(ctx, m.Snapshot())
}

// Snapshot returns a copy of the stored answers.
func (m *Memory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Clone()
}

func insertAfter(ids []int64, after, id int64) []int64 {
	if slices.Contains(ids, id) {
		return ids
	}
	pos := slices.Index(ids, after)
	if pos < 0 {
		return append(ids, id)
	}
	return slices.Insert(ids, pos+1, id)
}
