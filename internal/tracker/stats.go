package tracker

// Stats is the completion summary of a collection
type Stats struct {
	Done    int `json:"done" yaml:"done"`
	Total   int `json:"total" yaml:"total"`
	Percent int `json:"percent" yaml:"percent"`
}

// Summarize counts completed tasks. Percent rounds half up and is 0 for an
// empty collection.
func Summarize(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Done++
		}
	}
	if s.Total > 0 {
		s.Percent = (s.Done*200 + s.Total) / (2 * s.Total)
	}
	return s
}

// AllDone reports whether every task of a non-empty collection is complete
func (s Stats) AllDone() bool {
	return s.Total > 0 && s.Done == s.Total
}
