package tracker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency tag of a task
type Priority string

const (
	PriorityUrgent    Priority = "urgent"
	PriorityWaiting   Priority = "waiting"
	PriorityNoUrgency Priority = "no-urgency"
)

// Priorities lists the valid priorities, most urgent first
var Priorities = []Priority{PriorityUrgent, PriorityWaiting, PriorityNoUrgency}

// legacy tokens written by older versions of the tracker
var priorityAliases = map[string]Priority{
	"urgente":      PriorityUrgent,
	"espera":       PriorityWaiting,
	"sem-urgencia": PriorityNoUrgency,
	"high":         PriorityUrgent,
	"medium":       PriorityWaiting,
	"low":          PriorityNoUrgency,
}

// ParsePriority parses a priority token. An empty token is PriorityNoUrgency.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityNoUrgency, nil
	}
	for _, p := range Priorities {
		if string(p) == s {
			return p, nil
		}
	}
	if p, ok := priorityAliases[s]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Valid reports whether p is one of Priorities
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Label returns the human readable name of the priority
func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "High priority"
	case PriorityWaiting:
		return "Medium priority"
	case PriorityNoUrgency:
		return "Low priority"
	default:
		return string(p)
	}
}

// Status is the completion state used by filters
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Statuses lists both statuses
var Statuses = []Status{StatusPending, StatusCompleted}

// ParseStatus parses "pending" or "completed" (also "done")
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "open":
		return StatusPending, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Attachment is a small file attached to a task
type Attachment struct {
	Name string `json:"name" yaml:"name"`
	MIME string `json:"mime" yaml:"mime"`
	Size int64  `json:"size" yaml:"size"`
	Data []byte `json:"data" yaml:"data"`
}

// Task is a single trackable work item
type Task struct {
	ID          int64       `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Area        string      `yaml:"area"`
	Priority    Priority    `yaml:"priority"`
	Responsible string      `yaml:"responsible"`
	CreatedAt   time.Time   `yaml:"createdAt"`
	Completed   bool        `yaml:"completed"`
	CompletedAt *time.Time  `yaml:"completedAt,omitempty"`
	Attachment  *Attachment `yaml:"attachment,omitempty"`
}

// Status returns the filter status of the task
func (t Task) Status() Status {
	if t.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// clone returns a copy that shares no pointers with t
func (t Task) clone() Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	if t.Attachment != nil {
		a := *t.Attachment
		a.Data = append([]byte(nil), t.Attachment.Data...)
		t.Attachment = &a
	}
	return t
}

// taskRecord is the stored shape of a task. Times are epoch milliseconds.
// desc, responsavel and timestamp are read for records written by older
// versions and never written.
type taskRecord struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Area        string      `json:"area"`
	Priority    string      `json:"priority"`
	Responsible string      `json:"responsible"`
	CreatedAt   int64       `json:"createdAt"`
	Completed   bool        `json:"completed"`
	CompletedAt *int64      `json:"completedAt"`
	Attachment  *Attachment `json:"attachment,omitempty"`

	Desc        string `json:"desc,omitempty"`
	Responsavel string `json:"responsavel,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

// MarshalJSON writes the stored shape
func (t Task) MarshalJSON() ([]byte, error) {
	rec := taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Area:        t.Area,
		Priority:    string(t.Priority),
		Responsible: t.Responsible,
		Completed:   t.Completed,
		Attachment:  t.Attachment,
	}
	if !t.CreatedAt.IsZero() {
		rec.CreatedAt = t.CreatedAt.UnixMilli()
	}
	if t.CompletedAt != nil {
		ms := t.CompletedAt.UnixMilli()
		rec.CompletedAt = &ms
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads both the current and the legacy stored shape.
// Unknown priorities are kept verbatim so the loader can repair them.
func (t *Task) UnmarshalJSON(data []byte) error {
	var rec taskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	*t = Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Area:        rec.Area,
		Responsible: rec.Responsible,
		Completed:   rec.Completed,
		Attachment:  rec.Attachment,
	}
	if t.Description == "" {
		t.Description = rec.Desc
	}
	if t.Responsible == "" {
		t.Responsible = rec.Responsavel
	}

	if p, err := ParsePriority(rec.Priority); err == nil {
		t.Priority = p
	} else {
		t.Priority = Priority(rec.Priority)
	}

	created := rec.CreatedAt
	if created == 0 {
		created = rec.Timestamp
	}
	if created != 0 {
		t.CreatedAt = msTime(created)
	}
	if rec.CompletedAt != nil {
		at := msTime(*rec.CompletedAt)
		t.CompletedAt = &at
	}
	return nil
}

// Collaborator is a person tasks can be assigned to
type Collaborator struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	ColorToken string `json:"colorToken" yaml:"colorToken" toml:"color"`
}

type collaboratorRecord struct {
	Name       string `json:"name"`
	ColorToken string `json:"colorToken"`
	Nome       string `json:"nome,omitempty"`
	Cor        string `json:"cor,omitempty"`
}

// UnmarshalJSON accepts the legacy nome/cor field names
func (c *Collaborator) UnmarshalJSON(data []byte) error {
	var rec collaboratorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	c.Name = rec.Name
	if c.Name == "" {
		c.Name = rec.Nome
	}
	c.ColorToken = rec.ColorToken
	if c.ColorToken == "" {
		c.ColorToken = rec.Cor
	}
	return nil
}

// Collection is the full persisted state
type Collection struct {
	Tasks         []Task         `json:"tasks" yaml:"tasks"`
	Areas         []string       `json:"areas" yaml:"areas"`
	Collaborators []Collaborator `json:"collaborators" yaml:"collaborators"`
}

// msTime converts epoch milliseconds to the UTC time the model uses everywhere
func msTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
