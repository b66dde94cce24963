package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/pdxmph/tasks-tui/internal/storage"
	"github.com/pdxmph/tasks-tui/internal/tracker"
)

func newMemoryStore(t *testing.T) *tracker.Store {
	t.Helper()

	log, _ := test.NewNullLogger()
	store, err := tracker.NewStore(tracker.NewAdapter(storage.NewMemoryBackend(), tracker.BuiltinDefaults(), log), log)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestBuildFilterRepeatedValuesConstrainOnce(t *testing.T) {
	f, err := buildFilter(
		[]string{"Finance", "Finance"},
		[]string{"urgent", "urgente"},
		[]string{"Marcos", " Marcos "},
		[]string{"pending", "open"},
		"",
	)
	if err != nil {
		t.Fatalf("buildFilter: %v", err)
	}

	if !f.Active() {
		t.Fatalf("filter inactive after repeated values: %+v", f)
	}
	if len(f.Areas) != 1 || !f.Areas.Has("Finance") {
		t.Errorf("areas = %v, want only Finance", f.Areas)
	}
	if len(f.Priorities) != 1 || !f.Priorities.Has(tracker.PriorityUrgent) {
		t.Errorf("priorities = %v, want only urgent", f.Priorities)
	}
	if len(f.Responsibles) != 1 || !f.Responsibles.Has("Marcos") {
		t.Errorf("responsibles = %v, want only Marcos", f.Responsibles)
	}
	if len(f.Statuses) != 1 || !f.Statuses.Has(tracker.StatusPending) {
		t.Errorf("statuses = %v, want only pending", f.Statuses)
	}

	rent := tracker.Task{ID: 1, Title: "rent", Area: "Finance", Priority: tracker.PriorityUrgent, Responsible: "Marcos"}
	server := tracker.Task{ID: 2, Title: "server", Area: "Technical", Priority: tracker.PriorityUrgent, Responsible: "Marcos"}
	if !f.Matches(rent) {
		t.Errorf("filter rejects a matching task")
	}
	if f.Matches(server) {
		t.Errorf("filter admits a task from another area")
	}
}

func TestBuildFilterWithoutFlags(t *testing.T) {
	f, err := buildFilter(nil, nil, []string{"", "  "}, nil, "")
	if err != nil {
		t.Fatalf("buildFilter: %v", err)
	}
	if f.Active() {
		t.Errorf("filter active with no values: %+v", f)
	}
}

func TestBuildFilterRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name       string
		priorities []string
		statuses   []string
	}{
		{"unknown priority", []string{"whenever"}, nil},
		{"unknown status", nil, []string{"someday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildFilter(nil, tt.priorities, nil, tt.statuses, ""); err == nil {
				t.Errorf("buildFilter accepted %v %v", tt.priorities, tt.statuses)
			}
		})
	}
}

func TestSeedFixturesSkipsStoreWithTasks(t *testing.T) {
	store := newMemoryStore(t)

	var out bytes.Buffer
	if err := seedFixtures(store, &out); err != nil {
		t.Fatalf("first seedFixtures: %v", err)
	}
	seeded := len(store.Tasks())
	if seeded == 0 {
		t.Fatalf("no sample tasks added")
	}
	if !strings.Contains(out.String(), "Added") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := seedFixtures(store, &out); err != nil {
		t.Fatalf("second seedFixtures: %v", err)
	}
	if got := len(store.Tasks()); got != seeded {
		t.Errorf("tasks after reseeding = %d, want %d", got, seeded)
	}
	if !strings.Contains(out.String(), "skipping sample data") {
		t.Errorf("output = %q, want skip notice", out.String())
	}
}

func TestSeedFixturesLeavesUserTasksAlone(t *testing.T) {
	store := newMemoryStore(t)
	if _, err := store.Create(tracker.NewTask{Title: "pay rent", Area: "Finance", Responsible: "Marcos"}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := seedFixtures(store, &out); err != nil {
		t.Fatalf("seedFixtures: %v", err)
	}
	if tasks := store.Tasks(); len(tasks) != 1 || tasks[0].Title != "pay rent" {
		t.Errorf("tasks = %+v, want only the user's task", tasks)
	}
}
