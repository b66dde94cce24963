package tracker

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder orders tasks by creation time
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder accepts asc/desc and the longer oldest/newest spellings.
// An empty string is Descending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending", "newest":
		return Descending, nil
	case "asc", "ascending", "oldest":
		return Ascending, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Toggle returns the opposite order
func (o SortOrder) Toggle() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// Label describes the order for display
func (o SortOrder) Label() string {
	if o == Ascending {
		return "oldest first"
	}
	return "newest first"
}

// Sort returns a copy of tasks with pending tasks before completed ones,
// each group ordered by CreatedAt. Equal keys keep their input order.
func Sort(tasks []Task, order SortOrder) []Task {
	out := append([]Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if order == Ascending {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}
