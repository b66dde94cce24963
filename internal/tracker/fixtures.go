package tracker

import (
	"fmt"

	"github.com/pdxmph/tasks-tui/internal/storage"
)

// fixtureTask is a sample task; done marks it completed after creation
type fixtureTask struct {
	NewTask
	done bool
}

var fixtures = []fixtureTask{
	{NewTask: NewTask{
		Title:       "Pay supplier invoice",
		Description: "Invoice #2291 from the print shop, due Friday",
		Area:        "Finance",
		Priority:    string(PriorityUrgent),
		Responsible: "Marcos",
	}},
	{NewTask: NewTask{
		Title:       "Reconcile card statement",
		Description: "September statement against receipts folder",
		Area:        "Finance",
		Priority:    string(PriorityNoUrgency),
		Responsible: "Ester",
	}, done: true},
	{NewTask: NewTask{
		Title:       "Answer pending support tickets",
		Description: "Three tickets waiting since Monday",
		Area:        "Customer Service",
		Priority:    string(PriorityUrgent),
		Responsible: "Ester",
	}},
	{NewTask: NewTask{
		Title:       "Renew hosting plan",
		Description: "Waiting on the new quote before renewing",
		Area:        "Technical",
		Priority:    string(PriorityWaiting),
		Responsible: "Marcos",
	}},
	{NewTask: NewTask{
		Title:       "Onboarding session with new intern",
		Area:        "Mentoring",
		Priority:    string(PriorityNoUrgency),
		Responsible: "Ester",
	}, done: true},
	{NewTask: NewTask{
		Title:       "Draft newsletter",
		Description: "Monthly product update, include the new pricing page",
		Area:        "Marketing",
		Priority:    string(PriorityWaiting),
		Responsible: "Marcos",
	}},
	{NewTask: NewTask{
		Title:       "Survey competitor onboarding flows",
		Area:        "Research",
		Priority:    string(PriorityNoUrgency),
		Responsible: "Ester",
	}},
}

// SeedFixtures creates a realistic sample set in s. Areas and collaborators
// the fixtures use are added when missing.
func SeedFixtures(s *Store) error {
	for _, f := range fixtures {
		if err := s.AddArea(f.Area); err != nil {
			return fmt.Errorf("adding fixture area: %w", err)
		}
		if s.ColorFor(f.Responsible) == DefaultColorToken {
			if err := s.AddCollaborator(f.Responsible, colorFromDefaults(f.Responsible)); err != nil {
				return fmt.Errorf("adding fixture collaborator: %w", err)
			}
		}

		t, err := s.Create(f.NewTask)
		if err != nil {
			return fmt.Errorf("creating fixture %q: %w", f.Title, err)
		}
		if f.done {
			if _, err := s.ToggleComplete(t.ID); err != nil {
				return fmt.Errorf("completing fixture %q: %w", f.Title, err)
			}
		}
	}
	return nil
}

// NewFixturesStore builds an in-memory store holding the fixture set
func NewFixturesStore() (*Store, error) {
	adapter := NewAdapter(storage.NewMemoryBackend(), BuiltinDefaults(), nil)
	s, err := NewStore(adapter, nil)
	if err != nil {
		return nil, err
	}
	if err := SeedFixtures(s); err != nil {
		return nil, err
	}
	return s, nil
}

func colorFromDefaults(name string) string {
	for _, c := range DefaultCollaborators {
		if c.Name == name {
			return c.ColorToken
		}
	}
	return DefaultColorToken
}
