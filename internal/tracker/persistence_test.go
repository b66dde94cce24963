package tracker

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdxmph/tasks-tui/internal/storage"
)

func sampleCollection() Collection {
	created := msTime(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli())
	completed := created.Add(90 * time.Minute)
	return Collection{
		Tasks: []Task{
			{
				ID:          created.UnixMilli() + 1,
				Title:       "Answer tickets",
				Description: "three waiting",
				Area:        "Customer Service",
				Priority:    PriorityWaiting,
				Responsible: "Ester",
				CreatedAt:   created.Add(time.Millisecond),
				Completed:   true,
				CompletedAt: &completed,
				Attachment:  &Attachment{Name: "log.txt", MIME: "text/plain; charset=utf-8", Size: 3, Data: []byte("abc")},
			},
			{
				ID:          created.UnixMilli(),
				Title:       "Pay rent",
				Area:        "Finance",
				Priority:    PriorityUrgent,
				Responsible: "Marcos",
				CreatedAt:   created,
			},
		},
		Areas:         []string{"Finance", "Customer Service"},
		Collaborators: []Collaborator{{Name: "Marcos", ColorToken: "33"}, {Name: "Ester", ColorToken: "208"}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	log, _ := quietLogger()
	backend := storage.NewMemoryBackend()
	adapter := NewAdapter(backend, BuiltinDefaults(), log)

	want := sampleCollection()
	if err := adapter.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := adapter.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestLoadMissingEntriesUseDefaults(t *testing.T) {
	log, _ := quietLogger()
	defaults := Defaults{
		Areas:         []string{"Only"},
		Collaborators: []Collaborator{{Name: "Solo", ColorToken: "1"}},
	}
	adapter := NewAdapter(storage.NewMemoryBackend(), defaults, log)

	got, err := adapter.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Tasks) != 0 || got.Tasks == nil {
		t.Errorf("tasks = %#v, want empty non-nil", got.Tasks)
	}
	if !reflect.DeepEqual(got.Areas, defaults.Areas) {
		t.Errorf("areas = %v, want %v", got.Areas, defaults.Areas)
	}
	if !reflect.DeepEqual(got.Collaborators, defaults.Collaborators) {
		t.Errorf("collaborators = %v, want %v", got.Collaborators, defaults.Collaborators)
	}
}

func TestLoadCorruptEntry(t *testing.T) {
	tests := []struct {
		name string
		key  string
		raw  string
	}{
		{"tasks not json", KeyTasks, "{not json"},
		{"tasks not an array", KeyTasks, `{"id": 1}`},
		{"task without id", KeyTasks, `[{"title": "x"}]`},
		{"task without title", KeyTasks, `[{"id": 5, "title": "  "}]`},
		{"areas wrong type", KeyAreas, `[1, 2]`},
		{"collaborators garbage", KeyCollaborators, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := quietLogger()
			backend := storage.NewMemoryBackend()
			adapter := NewAdapter(backend, BuiltinDefaults(), log)

			good := sampleCollection()
			if err := adapter.Save(good); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := backend.Set(tt.key, tt.raw); err != nil {
				t.Fatal(err)
			}

			got, err := adapter.Load()
			if err != nil {
				t.Fatalf("Load() error = %v, want recovery", err)
			}

			if _, found, _ := backend.Get(tt.key); found {
				t.Errorf("corrupt %s entry still stored", tt.key)
			}

			defaults := BuiltinDefaults()
			switch tt.key {
			case KeyTasks:
				if len(got.Tasks) != 0 {
					t.Errorf("tasks = %v, want empty", got.Tasks)
				}
				if !reflect.DeepEqual(got.Areas, good.Areas) {
					t.Errorf("areas = %v, want untouched %v", got.Areas, good.Areas)
				}
			case KeyAreas:
				if !reflect.DeepEqual(got.Areas, defaults.Areas) {
					t.Errorf("areas = %v, want defaults", got.Areas)
				}
				if len(got.Tasks) != len(good.Tasks) {
					t.Errorf("tasks = %d, want untouched %d", len(got.Tasks), len(good.Tasks))
				}
			case KeyCollaborators:
				if !reflect.DeepEqual(got.Collaborators, defaults.Collaborators) {
					t.Errorf("collaborators = %v, want defaults", got.Collaborators)
				}
			}

			entry := hook.LastEntry()
			if entry == nil || entry.Level != logrus.WarnLevel {
				t.Fatalf("expected a warning, got %+v", entry)
			}
			logged, _ := entry.Data[logrus.ErrorKey].(error)
			if !errors.Is(logged, ErrStorageCorrupt) {
				t.Errorf("logged error = %v, want ErrStorageCorrupt", logged)
			}
		})
	}
}

func TestLoadRepairsLegacyTasks(t *testing.T) {
	log, hook := quietLogger()
	backend := storage.NewMemoryBackend()
	raw := `[
		{"id": 1709283600000, "title": " Pay rent ", "desc": "march", "area": "Finance",
		 "priority": "urgente", "responsavel": "Marcos", "timestamp": 1709283600000, "completed": true},
		{"id": 1709283600000, "title": "duplicate", "area": "Finance", "priority": "urgent", "responsible": "Marcos"},
		{"id": 1709283700000, "title": "Odd", "area": "Finance", "priority": "someday",
		 "responsible": "Ester", "completed": false, "completedAt": 1709283800000}
	]`
	if err := backend.Set(KeyTasks, raw); err != nil {
		t.Fatal(err)
	}

	got, err := NewAdapter(backend, BuiltinDefaults(), log).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2 after dropping duplicate id", len(got.Tasks))
	}

	first := got.Tasks[0]
	if first.Title != "Pay rent" || first.Description != "march" || first.Responsible != "Marcos" {
		t.Errorf("legacy fields not mapped: %+v", first)
	}
	if first.Priority != PriorityUrgent {
		t.Errorf("priority = %q, want urgent", first.Priority)
	}
	if !first.CreatedAt.Equal(time.UnixMilli(1709283600000)) {
		t.Errorf("createdAt = %v, want from timestamp", first.CreatedAt)
	}
	if first.CompletedAt == nil {
		t.Errorf("completed task without completedAt was not repaired")
	}

	second := got.Tasks[1]
	if second.Priority != PriorityNoUrgency {
		t.Errorf("unknown priority = %q, want no-urgency", second.Priority)
	}
	if second.CompletedAt != nil {
		t.Errorf("pending task kept completedAt")
	}
	if !second.CreatedAt.Equal(time.UnixMilli(second.ID)) {
		t.Errorf("missing createdAt = %v, want derived from id", second.CreatedAt)
	}

	stored, _, _ := backend.Get(KeyTasks)
	if strings.Contains(stored, "responsavel") || strings.Contains(stored, "duplicate") {
		t.Errorf("repaired tasks not rewritten: %s", stored)
	}
	if len(hook.AllEntries()) == 0 {
		t.Errorf("repair was not logged")
	}
}

func TestLoadMigratesLegacyCollaborators(t *testing.T) {
	log, _ := quietLogger()
	backend := storage.NewMemoryBackend()
	if err := backend.Set(legacyKeyCollaborators, `[{"nome": "Marcos", "cor": "33"}, {"nome": "Ana", "cor": "99"}]`); err != nil {
		t.Fatal(err)
	}

	got, err := NewAdapter(backend, BuiltinDefaults(), log).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []Collaborator{{Name: "Marcos", ColorToken: "33"}, {Name: "Ana", ColorToken: "99"}}
	if !reflect.DeepEqual(got.Collaborators, want) {
		t.Errorf("collaborators = %v, want %v", got.Collaborators, want)
	}
	if _, found, _ := backend.Get(legacyKeyCollaborators); found {
		t.Errorf("legacy key still stored")
	}
	if raw, found, _ := backend.Get(KeyCollaborators); !found || !strings.Contains(raw, `"colorToken":"99"`) {
		t.Errorf("collaborators not written under new key: %q", raw)
	}
}

func TestLoadMapsLegacyColorTokens(t *testing.T) {
	log, _ := quietLogger()
	backend := storage.NewMemoryBackend()
	legacy := `[{"nome": "Marcos", "cor": "--azul"}, {"nome": "Ester", "cor": "var(--laranja-primario)"}, {"nome": "Ana", "cor": "--turquesa"}]`
	if err := backend.Set(legacyKeyCollaborators, legacy); err != nil {
		t.Fatal(err)
	}

	got, err := NewAdapter(backend, BuiltinDefaults(), log).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []Collaborator{
		{Name: "Marcos", ColorToken: "33"},
		{Name: "Ester", ColorToken: "208"},
		{Name: "Ana", ColorToken: DefaultColorToken},
	}
	if !reflect.DeepEqual(got.Collaborators, want) {
		t.Errorf("collaborators = %v, want %v", got.Collaborators, want)
	}
	if raw, _, _ := backend.Get(KeyCollaborators); strings.Contains(raw, "--") {
		t.Errorf("legacy tokens still stored: %q", raw)
	}
}

func TestNormalizeColorToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"--azul", "33"},
		{"var(--azul)", "33"},
		{"--Vermelho", "196"},
		{"--unknown", DefaultColorToken},
		{"99", "99"},
		{"#ff8800", "#ff8800"},
	}
	for _, tt := range tests {
		if got := normalizeColorToken(tt.token); got != tt.want {
			t.Errorf("normalizeColorToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestLoadDedupesAreas(t *testing.T) {
	log, _ := quietLogger()
	backend := storage.NewMemoryBackend()
	if err := backend.Set(KeyAreas, `["Finance", " Finance", "", "Research"]`); err != nil {
		t.Fatal(err)
	}

	got, err := NewAdapter(backend, BuiltinDefaults(), log).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"Finance", "Research"}; !reflect.DeepEqual(got.Areas, want) {
		t.Errorf("areas = %v, want %v", got.Areas, want)
	}
}

func TestLoadEmptyStoredListsAreKept(t *testing.T) {
	log, _ := quietLogger()
	backend := storage.NewMemoryBackend()
	adapter := NewAdapter(backend, BuiltinDefaults(), log)
	if err := adapter.Save(Collection{}); err != nil {
		t.Fatal(err)
	}

	got, err := adapter.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Areas) != 0 || len(got.Collaborators) != 0 {
		t.Errorf("stored empty lists replaced by defaults: %+v", got)
	}
}

func TestLoadBackendFailure(t *testing.T) {
	log, _ := quietLogger()
	backend := storage.NewMemoryBackend()
	backend.Close()

	if _, err := NewAdapter(backend, BuiltinDefaults(), log).Load(); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Load() error = %v, want ErrClosed", err)
	}
}
