package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// draftFile is the on-disk layout of a File provider.
type draftFile struct {
	DraftID  string   `json:"draft_id" yaml:"draft_id"`
	Snapshot Snapshot `json:"snapshot" yaml:"snapshot"`
}

// File persists answers to a JSON or YAML document after every change. Write
// failures do not interrupt the engine; they are reported through Err.
type File struct {
	*Memory

	path    string
	draftID string

	errMu sync.Mutex
	err   error
}

// OpenFile loads the draft at path, or starts a new one when the file does not
// exist yet.
func OpenFile(path string, options ...MemoryOption) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: file path is required")
	}

	draft := draftFile{DraftID: uuid.NewString()}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	default:
		if err := decodeDraft(path, raw, &draft); err != nil {
			return nil, err
		}
		if draft.DraftID == "" {
			draft.DraftID = uuid.NewString()
		}
	}

	opts := append([]MemoryOption{WithInitial(draft.Snapshot)}, options...)
	return &File{
		Memory:  NewMemory(opts...),
		path:    path,
		draftID: draft.DraftID,
	}, nil
}

// DraftID identifies the persisted draft across sessions.
func (f *File) DraftID() string {
	return f.draftID
}

// Path returns the backing file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) SaveAnswer(code string, id int64, value string) {
	f.Memory.SaveAnswer(code, id, value)
	f.record(f.Flush())
}

func (f *File) DeleteMultiple(code string, id int64) {
	f.Memory.DeleteMultiple(code, id)
	f.record(f.Flush())
}

func (f *File) CopyMultiple(code string, id, newID int64) {
	f.Memory.CopyMultiple(code, id, newID)
	f.record(f.Flush())
}

func (f *File) AppendCopy(code string, id, newID int64) {
	f.Memory.AppendCopy(code, id, newID)
	f.record(f.Flush())
}

func (f *File) AddMultiple(code string, id int64) {
	f.Memory.AddMultiple(code, id)
	f.record(f.Flush())
}

// Flush writes the current snapshot to disk.
func (f *File) Flush() error {
	draft := draftFile{DraftID: f.draftID, Snapshot: f.Snapshot()}
	payload, err := encodeDraft(f.path, draft)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", f.path, err)
	}
	return nil
}

// Err reports the outcome of the latest flush.
func (f *File) Err() error {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	return f.err
}

func (f *File) record(err error) {
	f.errMu.Lock()
	f.err = err
	f.errMu.Unlock()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func decodeDraft(path string, raw []byte, out *draftFile) error {
	var err error
	if isYAML(path) {
		err = yaml.Unmarshal(raw, out)
	} else {
		err = json.Unmarshal(raw, out)
	}
	if err != nil {
		return fmt.Errorf("storage: parse %s: %w", path, err)
	}
	return nil
}

func encodeDraft(path string, draft draftFile) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	if isYAML(path) {
		payload, err = yaml.Marshal(draft)
	} else {
		payload, err = json.MarshalIndent(draft, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("storage: encode %s: %w", path, err)
	}
	return payload, nil
}
