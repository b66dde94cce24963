package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NewTask is the input to Create and Edit
type NewTask struct {
	Title       string
	Description string
	Area        string
	Priority    string
	Responsible string
}

// Store owns the task collection and the reference lists. Every mutation
// is saved before it returns; a failed save leaves the store unchanged.
// A Store is not safe for concurrent use.
type Store struct {
	adapter       *Adapter
	clock         *idClock
	log           logrus.FieldLogger
	tasks         []Task
	areas         []string
	collaborators []Collaborator
}

// NewStore loads the collection through adapter
func NewStore(adapter *Adapter, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	c, err := adapter.Load()
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	s := &Store{
		adapter:       adapter,
		clock:         newIDClock(nil),
		log:           log,
		tasks:         c.Tasks,
		areas:         c.Areas,
		collaborators: c.Collaborators,
	}
	for _, t := range s.tasks {
		s.clock.observe(t.ID)
	}

	log.WithFields(logrus.Fields{
		"tasks":         len(s.tasks),
		"areas":         len(s.areas),
		"collaborators": len(s.collaborators),
	}).Info("task store loaded")
	return s, nil
}

// SetClock replaces the time source. Ids already issued stay reserved.
func (s *Store) SetClock(now func() time.Time) {
	last := s.clock.last
	s.clock = newIDClock(now)
	s.clock.observe(last)
}

// Tasks returns a copy of the collection in insertion order (newest first)
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

// Areas returns a copy of the area list
func (s *Store) Areas() []string {
	return append([]string(nil), s.areas...)
}

// Collaborators returns a copy of the collaborator list
func (s *Store) Collaborators() []Collaborator {
	return append([]Collaborator(nil), s.collaborators...)
}

// Get returns the task with the given id
func (s *Store) Get(id int64) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	return s.tasks[i].clone(), nil
}

// ColorFor returns the color token of a responsible, or DefaultColorToken
// when no collaborator has that name
func (s *Store) ColorFor(name string) string {
	for _, c := range s.collaborators {
		if c.Name == name && c.ColorToken != "" {
			return c.ColorToken
		}
	}
	return DefaultColorToken
}

// View runs the query pipeline over the current collection
func (s *Store) View(f FilterState, order SortOrder) View {
	return Query(s.Tasks(), f, order)
}

// Create validates in, prepends a new pending task and saves it
func (s *Store) Create(in NewTask) (Task, error) {
	fields, err := s.validate(in, "")
	if err != nil {
		return Task{}, err
	}

	id := s.clock.next()
	t := Task{
		ID:          id,
		Title:       fields.Title,
		Description: fields.Description,
		Area:        fields.Area,
		Priority:    fields.priority,
		Responsible: fields.Responsible,
		CreatedAt:   msTime(id),
	}

	next := make([]Task, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	if err := s.commitTasks(next); err != nil {
		return Task{}, err
	}

	s.log.WithFields(logrus.Fields{"id": t.ID, "area": t.Area}).Info("task created")
	return t.clone(), nil
}

// Edit replaces the editable fields of a task. Identity, creation time,
// completion state and attachment are kept.
func (s *Store) Edit(id int64, in NewTask) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	fields, err := s.validate(in, s.tasks[i].Area)
	if err != nil {
		return Task{}, err
	}

	return s.update(i, func(t *Task) {
		t.Title = fields.Title
		t.Description = fields.Description
		t.Area = fields.Area
		t.Priority = fields.priority
		t.Responsible = fields.Responsible
	}, "task edited")
}

// ToggleComplete flips the completion state of a task
func (s *Store) ToggleComplete(id int64) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}

	return s.update(i, func(t *Task) {
		t.Completed = !t.Completed
		if t.Completed {
			at := s.clock.stamp()
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	}, "task toggled")
}

// Attach sets the attachment of a task; nil removes it
func (s *Store) Attach(id int64, a *Attachment) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}

	return s.update(i, func(t *Task) {
		if a == nil {
			t.Attachment = nil
			return
		}
		cp := *a
		cp.Data = append([]byte(nil), a.Data...)
		t.Attachment = &cp
	}, "task attachment changed")
}

// Delete removes a task
func (s *Store) Delete(id int64) error {
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	if err := s.commitTasks(next); err != nil {
		return err
	}

	s.log.WithField("id", id).Info("task deleted")
	return nil
}

// AddArea appends an area. Adding an existing area changes nothing.
func (s *Store) AddArea(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Reason: MissingArea}
	}
	if s.hasArea(name) {
		return nil
	}

	next := append(s.Areas(), name)
	if err := s.adapter.SaveAreas(next); err != nil {
		return err
	}
	s.areas = next
	return nil
}

// RemoveArea removes an area from the list. Tasks keep their area.
func (s *Store) RemoveArea(name string) error {
	name = strings.TrimSpace(name)
	if !s.hasArea(name) {
		return nil
	}

	next := make([]string, 0, len(s.areas))
	for _, a := range s.areas {
		if a != name {
			next = append(next, a)
		}
	}
	if err := s.adapter.SaveAreas(next); err != nil {
		return err
	}
	s.areas = next
	return nil
}

// AddCollaborator adds a collaborator, or updates the color of an existing one
func (s *Store) AddCollaborator(name, colorToken string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Reason: MissingResponsible}
	}
	colorToken = strings.TrimSpace(colorToken)
	if colorToken == "" {
		colorToken = DefaultColorToken
	}

	next := s.Collaborators()
	found := false
	for i := range next {
		if next[i].Name == name {
			next[i].ColorToken = colorToken
			found = true
		}
	}
	if !found {
		next = append(next, Collaborator{Name: name, ColorToken: colorToken})
	}

	if err := s.adapter.SaveCollaborators(next); err != nil {
		return err
	}
	s.collaborators = next
	return nil
}

// RemoveCollaborator removes a collaborator. Tasks assigned to them keep
// the name and render with DefaultColorToken.
func (s *Store) RemoveCollaborator(name string) error {
	name = strings.TrimSpace(name)

	next := make([]Collaborator, 0, len(s.collaborators))
	for _, c := range s.collaborators {
		if c.Name != name {
			next = append(next, c)
		}
	}
	if len(next) == len(s.collaborators) {
		return nil
	}

	if err := s.adapter.SaveCollaborators(next); err != nil {
		return err
	}
	s.collaborators = next
	return nil
}

type validFields struct {
	NewTask
	priority Priority
}

// validate trims and checks in. keepArea is accepted even when it is no
// longer in the area list, so edits do not force orphaned tasks to move.
func (s *Store) validate(in NewTask, keepArea string) (validFields, error) {
	v := validFields{NewTask: NewTask{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Area:        strings.TrimSpace(in.Area),
		Responsible: strings.TrimSpace(in.Responsible),
	}}

	switch {
	case v.Title == "":
		return v, &ValidationError{Reason: MissingTitle}
	case v.Area == "":
		return v, &ValidationError{Reason: MissingArea}
	case v.Responsible == "":
		return v, &ValidationError{Reason: MissingResponsible}
	case !s.hasArea(v.Area) && v.Area != keepArea:
		return v, &ValidationError{Reason: UnknownArea, Value: v.Area}
	}

	p, err := ParsePriority(in.Priority)
	if err != nil {
		return v, &ValidationError{Reason: InvalidPriority, Value: in.Priority}
	}
	v.priority = p
	return v, nil
}

// update applies change to a copy of task i and commits it
func (s *Store) update(i int, change func(*Task), msg string) (Task, error) {
	t := s.tasks[i].clone()
	change(&t)

	next := append([]Task(nil), s.tasks...)
	next[i] = t
	if err := s.commitTasks(next); err != nil {
		return Task{}, err
	}

	s.log.WithField("id", t.ID).Info(msg)
	return t.clone(), nil
}

// commitTasks saves next and only then makes it the current collection
func (s *Store) commitTasks(next []Task) error {
	if err := s.adapter.SaveTasks(next); err != nil {
		s.log.WithError(err).Error("saving tasks failed")
		return err
	}
	s.tasks = next
	return nil
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) hasArea(name string) bool {
	for _, a := range s.areas {
		if a == name {
			return true
		}
	}
	return false
}
