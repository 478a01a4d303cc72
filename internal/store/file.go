package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// FileStore keeps every schedule in memory and mirrors the full set to
// one JSON file on each mutation. The file is written to a temp path
// and renamed into place so a crash never leaves a torn store behind.
type FileStore struct {
	path string

	mu        sync.Mutex
	schedules []model.Schedule
}

// compile-time check that FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore loads the schedule file at path. A missing file is an
// empty store. An unparsable file is moved aside and logged, never fatal.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.schedules); err != nil {
		s.schedules = nil
		if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil {
			log.Warn().Err(err).Str("path", path).Msg("schedule file is corrupt, starting empty")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("schedule file is corrupt, moved aside and starting empty")
		}
	}
	return s, nil
}

func (s *FileStore) ListSchedules() []model.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Schedule, len(s.schedules))
	copy(out, s.schedules)
	return out
}

func (s *FileStore) GetSchedule(id string) (model.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sched := range s.schedules {
		if sched.ID == id {
			return sched, nil
		}
	}
	return model.Schedule{}, ErrNotFound
}

func (s *FileStore) CreateSchedule(draft model.Draft) (model.Schedule, error) {
	if err := draft.Validate(); err != nil {
		return model.Schedule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sched := model.Schedule{
		ID:            uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
		LastRunStatus: model.RunNever,
	}
	applyDraft(&sched, draft)

	s.schedules = append(s.schedules, sched)
	if err := s.persistLocked(); err != nil {
		s.schedules = s.schedules[:len(s.schedules)-1]
		return model.Schedule{}, err
	}
	return sched, nil
}

func (s *FileStore) UpdateSchedule(id string, draft model.Draft) (model.Schedule, error) {
	if err := draft.Validate(); err != nil {
		return model.Schedule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Schedule{}, ErrNotFound
	}

	prev := s.schedules[i]
	next := prev
	applyDraft(&next, draft)
	next.UpdatedAt = time.Now()

	s.schedules[i] = next
	if err := s.persistLocked(); err != nil {
		s.schedules[i] = prev
		return model.Schedule{}, err
	}
	return next, nil
}

func (s *FileStore) DeleteSchedule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}

	prev := make([]model.Schedule, len(s.schedules))
	copy(prev, s.schedules)

	s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
	if err := s.persistLocked(); err != nil {
		s.schedules = prev
		return err
	}
	return nil
}

func (s *FileStore) RecordRun(id string, outcome model.RunOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}

	prev := s.schedules[i]
	next := prev
	finished := outcome.FinishedAt
	next.LastRunAt = &finished
	next.LastRunStatus = outcome.Status
	next.LastRunMessage = outcome.Message

	s.schedules[i] = next
	if err := s.persistLocked(); err != nil {
		s.schedules[i] = prev
		return err
	}
	return nil
}

func (s *FileStore) indexLocked(id string) int {
	for i, sched := range s.schedules {
		if sched.ID == id {
			return i
		}
	}
	return -1
}

func (s *FileStore) persistLocked() error {
	schedules := s.schedules
	if schedules == nil {
		schedules = []model.Schedule{}
	}
	raw, err := json.MarshalIndent(schedules, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schedules: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write schedule file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace schedule file: %w", err)
	}
	return nil
}

func applyDraft(dst *model.Schedule, d model.Draft) {
	dst.Name = d.Name
	dst.Source = d.Source
	dst.Destination = d.Destination
	dst.Frequency = d.Frequency
	dst.DayOfWeek = d.DayOfWeek
	dst.DayOfMonth = d.DayOfMonth
	dst.Hour = d.Hour
	dst.Minute = d.Minute
	dst.Email = d.Email
	dst.Active = d.Active
}
