package snooze

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/SeanReardon/let-food-into-civic/internal/domain"
)

// Store persists the snooze state as a small JSON file. Saves are
// crash-atomic: the state is written to a temp file in the same directory
// and promoted with a rename, so a crash mid-write never leaves a
// truncated file. Callers serialize access through the Coordinator; the
// store itself does no locking.
type Store struct {
	path string
	log  *zap.Logger
}

func NewStore(path string, log *zap.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads the persisted state. A missing or unparseable file means
// "never initialized": the default all-false state is written out and
// returned rather than surfacing an error. Unknown keys are dropped and
// missing household keys filled in.
func (s *Store) Load() domain.SnoozeState {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("snooze state unreadable, reinitializing", zap.Error(err))
		}
		return s.reset()
	}

	var state domain.SnoozeState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.log.Warn("snooze state corrupt, reinitializing", zap.Error(err))
		return s.reset()
	}
	return state.Normalize()
}

// Save writes the state atomically to the canonical path.
func (s *Store) Save(state domain.SnoozeState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state.Normalize(), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snooze-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) reset() domain.SnoozeState {
	state := domain.NewSnoozeState()
	if err := s.Save(state); err != nil {
		s.log.Error("failed to initialize snooze state", zap.Error(err))
	}
	return state
}
