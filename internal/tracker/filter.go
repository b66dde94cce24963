package tracker

import "strings"

// Set is a small unordered set. A nil Set is empty.
type Set[T comparable] map[T]struct{}

// NewSet builds a set from values
func NewSet[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// admits is the per-dimension rule: an empty set constrains nothing
func (s Set[T]) admits(v T) bool {
	return len(s) == 0 || s.Has(v)
}

func toggle[T comparable](s *Set[T], v T) {
	if *s == nil {
		*s = make(Set[T])
	}
	if (*s).Has(v) {
		delete(*s, v)
		return
	}
	(*s)[v] = struct{}{}
}

// FilterState is the set of active filter constraints plus free-text search
type FilterState struct {
	Areas        Set[string]
	Priorities   Set[Priority]
	Responsibles Set[string]
	Statuses     Set[Status]
	Search       string
}

// ToggleArea adds or removes an area constraint
func (f *FilterState) ToggleArea(area string) { toggle(&f.Areas, area) }

// TogglePriority adds or removes a priority constraint
func (f *FilterState) TogglePriority(p Priority) { toggle(&f.Priorities, p) }

// ToggleResponsible adds or removes a responsible constraint
func (f *FilterState) ToggleResponsible(name string) { toggle(&f.Responsibles, name) }

// ToggleStatus adds or removes a status constraint
func (f *FilterState) ToggleStatus(s Status) { toggle(&f.Statuses, s) }

// SetSearch replaces the search text
func (f *FilterState) SetSearch(text string) { f.Search = text }

// Clear removes every constraint
func (f *FilterState) Clear() { *f = FilterState{} }

// Active reports whether any constraint is set
func (f FilterState) Active() bool {
	return len(f.Areas) > 0 || len(f.Priorities) > 0 || len(f.Responsibles) > 0 ||
		len(f.Statuses) > 0 || f.Search != ""
}

// Matches reports whether t satisfies every dimension of f
func (f FilterState) Matches(t Task) bool {
	return f.matchesText(t) &&
		f.Areas.admits(t.Area) &&
		f.Priorities.admits(t.Priority) &&
		f.Responsibles.admits(t.Responsible) &&
		f.Statuses.admits(t.Status())
}

func (f FilterState) matchesText(t Task) bool {
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// Filter returns the tasks matching f, in input order
func Filter(tasks []Task, f FilterState) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
