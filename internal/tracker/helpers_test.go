package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/pdxmph/tasks-tui/internal/storage"
)

var errWriteFailed = errors.New("write failed")

// flakyBackend wraps a memory backend and fails writes while failSets is set
type flakyBackend struct {
	*storage.MemoryBackend
	failSets bool
}

func (b *flakyBackend) Set(key, value string) error {
	if b.failSets {
		return errWriteFailed
	}
	return b.MemoryBackend.Set(key, value)
}

// fakeClock advances one millisecond on every call unless frozen
type fakeClock struct {
	t      time.Time
	frozen bool
}

func (c *fakeClock) now() time.Time {
	now := c.t
	if !c.frozen {
		c.t = c.t.Add(time.Millisecond)
	}
	return now
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// newTestStore returns an empty store over backend with the builtin defaults
func newTestStore(t *testing.T, backend storage.Backend) *Store {
	t.Helper()

	log, _ := quietLogger()
	s, err := NewStore(NewAdapter(backend, BuiltinDefaults(), log), log)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	s.SetClock(clock.now)
	return s
}

func mustCreate(t *testing.T, s *Store, in NewTask) Task {
	t.Helper()

	task, err := s.Create(in)
	if err != nil {
		t.Fatalf("Create(%q): %v", in.Title, err)
	}
	return task
}

func newTask(title, area, priority, responsible string) NewTask {
	return NewTask{Title: title, Area: area, Priority: priority, Responsible: responsible}
}

// at returns a task created at minute m of a fixed day
func at(id int64, m int, completed bool) Task {
	created := time.Date(2024, 3, 1, 9, m, 0, 0, time.UTC)
	t := Task{
		ID:          id,
		Title:       "task",
		Area:        "Finance",
		Priority:    PriorityNoUrgency,
		Responsible: "Marcos",
		CreatedAt:   created,
		Completed:   completed,
	}
	if completed {
		t.CompletedAt = &created
	}
	return t
}

func ids(tasks []Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
