package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdxmph/tasks-tui/internal/storage"
)

// Storage keys
const (
	KeyTasks         = "tasks"
	KeyAreas         = "areas"
	KeyCollaborators = "collaborators"

	legacyKeyCollaborators = "colaboradores"
)

// Adapter loads and saves a Collection through a storage backend.
// Each entry is an independent JSON array and is rewritten whole on save.
type Adapter struct {
	backend  storage.Backend
	defaults Defaults
	log      logrus.FieldLogger
}

// NewAdapter creates an adapter. Zero Defaults fall back to BuiltinDefaults.
func NewAdapter(backend storage.Backend, defaults Defaults, log logrus.FieldLogger) *Adapter {
	builtin := BuiltinDefaults()
	if defaults.Areas == nil {
		defaults.Areas = builtin.Areas
	}
	if defaults.Collaborators == nil {
		defaults.Collaborators = builtin.Collaborators
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Adapter{backend: backend, defaults: defaults, log: log}
}

// Load reads the three entries. Missing entries take their defaults.
// Corrupt entries are logged, removed from storage, and replaced by their
// defaults. Only backend I/O failures are returned.
func (a *Adapter) Load() (Collection, error) {
	var c Collection
	var err error

	if c.Tasks, err = a.loadTasks(); err != nil {
		return Collection{}, err
	}
	if c.Areas, err = a.loadAreas(); err != nil {
		return Collection{}, err
	}
	if c.Collaborators, err = a.loadCollaborators(); err != nil {
		return Collection{}, err
	}
	return c, nil
}

// Save rewrites all three entries
func (a *Adapter) Save(c Collection) error {
	if err := a.SaveTasks(c.Tasks); err != nil {
		return err
	}
	if err := a.SaveAreas(c.Areas); err != nil {
		return err
	}
	return a.SaveCollaborators(c.Collaborators)
}

// SaveTasks rewrites the tasks entry
func (a *Adapter) SaveTasks(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	return a.put(KeyTasks, tasks)
}

// SaveAreas rewrites the areas entry
func (a *Adapter) SaveAreas(areas []string) error {
	if areas == nil {
		areas = []string{}
	}
	return a.put(KeyAreas, areas)
}

// SaveCollaborators rewrites the collaborators entry
func (a *Adapter) SaveCollaborators(collaborators []Collaborator) error {
	if collaborators == nil {
		collaborators = []Collaborator{}
	}
	return a.put(KeyCollaborators, collaborators)
}

func (a *Adapter) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := a.backend.Set(key, string(data)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// read fetches key and decodes it into v. ok is false when the key is
// absent or was discarded as corrupt.
func (a *Adapter) read(key string, v any) (ok bool, err error) {
	raw, found, err := a.backend.Get(key)
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := decodeArray(raw, v); err != nil {
		return false, a.discard(key, err)
	}
	return true, nil
}

// discard logs and removes a corrupt entry
func (a *Adapter) discard(key string, cause error) error {
	corrupt := &StorageCorruptError{Key: key, Err: cause}
	a.log.WithError(corrupt).WithField("key", key).Warn("discarding corrupt storage entry")
	if err := a.backend.Delete(key); err != nil {
		return fmt.Errorf("clearing corrupt %s: %w", key, err)
	}
	return nil
}

// decodeArray requires raw to be a JSON array matching v
func decodeArray(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return errors.New("not a JSON array")
	}
	return json.Unmarshal([]byte(trimmed), v)
}

func (a *Adapter) loadTasks() ([]Task, error) {
	var tasks []Task
	ok, err := a.read(KeyTasks, &tasks)
	if err != nil || !ok {
		return []Task{}, err
	}

	if err := checkTaskShape(tasks); err != nil {
		return []Task{}, a.discard(KeyTasks, err)
	}

	repaired, changes := repairTasks(tasks)
	if changes > 0 {
		a.log.WithField("changes", changes).Warn("repaired stored tasks")
		if err := a.SaveTasks(repaired); err != nil {
			return nil, err
		}
	}
	return repaired, nil
}

func (a *Adapter) loadAreas() ([]string, error) {
	var areas []string
	ok, err := a.read(KeyAreas, &areas)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]string(nil), a.defaults.Areas...), nil
	}

	cleaned := dedupeAreas(areas)
	if len(cleaned) != len(areas) {
		a.log.WithField("dropped", len(areas)-len(cleaned)).Warn("repaired stored areas")
		if err := a.SaveAreas(cleaned); err != nil {
			return nil, err
		}
	}
	return cleaned, nil
}

func (a *Adapter) loadCollaborators() ([]Collaborator, error) {
	var collaborators []Collaborator
	ok, err := a.read(KeyCollaborators, &collaborators)
	if err != nil {
		return nil, err
	}

	migrated := false
	if !ok {
		// older versions stored this list under its Portuguese name
		ok, err = a.read(legacyKeyCollaborators, &collaborators)
		if err != nil {
			return nil, err
		}
		migrated = ok
	}
	if !ok {
		return append([]Collaborator(nil), a.defaults.Collaborators...), nil
	}

	cleaned := dedupeCollaborators(collaborators)
	recolored := normalizeColorTokens(cleaned)
	if migrated || recolored || len(cleaned) != len(collaborators) {
		a.log.WithFields(logrus.Fields{
			"migrated":  migrated,
			"recolored": recolored,
		}).Warn("repaired stored collaborators")
		if err := a.SaveCollaborators(cleaned); err != nil {
			return nil, err
		}
		if migrated {
			if err := a.backend.Delete(legacyKeyCollaborators); err != nil {
				return nil, fmt.Errorf("removing legacy collaborators: %w", err)
			}
		}
	}
	return cleaned, nil
}

// checkTaskShape rejects records no repair can make sense of
func checkTaskShape(tasks []Task) error {
	for i, t := range tasks {
		if t.ID <= 0 {
			return fmt.Errorf("task %d: missing id", i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("task %d: missing title", t.ID)
		}
	}
	return nil
}

// repairTasks restores the model invariants on loaded records and reports
// how many fixes were applied
func repairTasks(tasks []Task) ([]Task, int) {
	out := make([]Task, 0, len(tasks))
	seen := make(map[int64]bool, len(tasks))
	changes := 0

	for _, t := range tasks {
		if seen[t.ID] {
			changes++
			continue
		}
		seen[t.ID] = true

		if title := strings.TrimSpace(t.Title); title != t.Title {
			t.Title = title
			changes++
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = msTime(t.ID)
			changes++
		}
		if !t.Priority.Valid() {
			t.Priority = PriorityNoUrgency
			changes++
		}
		switch {
		case t.Completed && t.CompletedAt == nil:
			at := t.CreatedAt
			t.CompletedAt = &at
			changes++
		case !t.Completed && t.CompletedAt != nil:
			t.CompletedAt = nil
			changes++
		}
		out = append(out, t)
	}
	return out, changes
}

func dedupeAreas(areas []string) []string {
	out := make([]string, 0, len(areas))
	seen := make(map[string]bool, len(areas))
	for _, area := range areas {
		area = strings.TrimSpace(area)
		if area == "" || seen[area] {
			continue
		}
		seen[area] = true
		out = append(out, area)
	}
	return out
}

func dedupeCollaborators(collaborators []Collaborator) []Collaborator {
	out := make([]Collaborator, 0, len(collaborators))
	seen := make(map[string]bool, len(collaborators))
	for _, c := range collaborators {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}

// legacyColorTokens maps the CSS variables older versions stored as
// collaborator colors to ANSI 256 codes
var legacyColorTokens = map[string]string{
	"--azul":             "33",
	"--laranja":          "208",
	"--laranja-primario": "208",
	"--verde":            "34",
	"--vermelho":         "196",
	"--roxo":             "129",
	"--amarelo":          "226",
	"--rosa":             "205",
	"--cinza":            "245",
	"--cinza-medio":      "245",
	"--cinza-escuro":     DefaultColorToken,
}

// normalizeColorToken turns a legacy CSS color reference such as "--azul"
// or "var(--azul)" into a terminal color. Unknown CSS variables get
// DefaultColorToken; anything else is returned unchanged.
func normalizeColorToken(token string) string {
	t := strings.TrimSpace(token)
	if strings.HasPrefix(t, "var(") && strings.HasSuffix(t, ")") {
		t = strings.TrimSpace(t[len("var(") : len(t)-1])
	}
	if !strings.HasPrefix(t, "--") {
		return token
	}
	if code, ok := legacyColorTokens[strings.ToLower(t)]; ok {
		return code
	}
	return DefaultColorToken
}

// normalizeColorTokens rewrites legacy tokens in place and reports whether
// any changed
func normalizeColorTokens(collaborators []Collaborator) bool {
	changed := false
	for i, c := range collaborators {
		if token := normalizeColorToken(c.ColorToken); token != c.ColorToken {
			collaborators[i].ColorToken = token
			changed = true
		}
	}
	return changed
}
