package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

func testDraft(name string) model.Draft {
	return model.Draft{
		Name:        name,
		Source:      "/media/usb/" + name,
		Destination: "/backups/" + name,
		Frequency:   model.FrequencyDaily,
		Hour:        2,
		Minute:      30,
		Email:       "ops@example.com",
		Active:      true,
	}
}

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedules.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s, path
}

func TestCreateThenGet(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.CreateSchedule(testDraft("docs"))
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created schedule has no id")
	}
	if created.LastRunStatus != model.RunNever {
		t.Errorf("new schedule last run status = %q, want %q", created.LastRunStatus, model.RunNever)
	}

	got, err := s.GetSchedule(created.ID)
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if got.Name != "docs" || got.Source != "/media/usb/docs" || got.Destination != "/backups/docs" {
		t.Errorf("stored schedule does not match draft: %+v", got)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	s, path := newTestStore(t)

	bad := testDraft("docs")
	bad.Hour = 99
	if _, err := s.CreateSchedule(bad); err == nil {
		t.Fatal("expected validation error")
	}
	if len(s.ListSchedules()) != 0 {
		t.Error("invalid draft was stored")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid draft was persisted")
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	s, _ := newTestStore(t)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.CreateSchedule(testDraft(name)); err != nil {
			t.Fatalf("CreateSchedule(%s): %v", name, err)
		}
	}

	list := s.ListSchedules()
	if len(list) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(list))
	}
	for i, want := range []string{"first", "second", "third"} {
		if list[i].Name != want {
			t.Errorf("position %d = %q, want %q", i, list[i].Name, want)
		}
	}
}

func TestUpdateKeepsIdentityAndRunHistory(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.CreateSchedule(testDraft("docs"))
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	outcome := model.RunOutcome{
		Status:     model.RunSuccess,
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Message:    "transferred 3 files",
	}
	if err := s.RecordRun(created.ID, outcome); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	draft := testDraft("docs")
	draft.Frequency = model.FrequencyWeekly
	draft.DayOfWeek = time.Friday
	draft.Hour = 4

	updated, err := s.UpdateSchedule(created.ID, draft)
	if err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if updated.ID != created.ID {
		t.Error("update changed the schedule id")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update changed creation time")
	}
	if updated.Frequency != model.FrequencyWeekly || updated.DayOfWeek != time.Friday || updated.Hour != 4 {
		t.Errorf("update did not apply draft: %+v", updated)
	}
	if updated.LastRunStatus != model.RunSuccess || updated.LastRunAt == nil {
		t.Error("update dropped last-run fields")
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.UpdateSchedule("nope", testDraft("docs")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteThenGet(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.CreateSchedule(testDraft("docs"))
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if err := s.DeleteSchedule(created.ID); err != nil {
		t.Fatalf("DeleteSchedule: %v", err)
	}
	if _, err := s.GetSchedule(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSchedule(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestRecordRunUnknownID(t *testing.T) {
	s, _ := newTestStore(t)
	outcome := model.RunOutcome{Status: model.RunFailure, FinishedAt: time.Now()}
	if err := s.RecordRun("gone", outcome); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReloadAfterRestart(t *testing.T) {
	s, path := newTestStore(t)

	created, err := s.CreateSchedule(testDraft("docs"))
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}

	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.GetSchedule(created.ID)
	if err != nil {
		t.Fatalf("GetSchedule after reload: %v", err)
	}
	if got.Name != created.Name || got.Hour != created.Hour {
		t.Errorf("reloaded schedule differs: %+v", got)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after persist")
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore on corrupt file: %v", err)
	}
	if len(s.ListSchedules()) != 0 {
		t.Error("corrupt store not treated as empty")
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt file not preserved: %v", err)
	}

	// the store must be usable afterwards
	if _, err := s.CreateSchedule(testDraft("docs")); err != nil {
		t.Fatalf("CreateSchedule after corrupt load: %v", err)
	}
}
