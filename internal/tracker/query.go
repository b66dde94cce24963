package tracker

// View is what the presentation layer renders after every change
type View struct {
	Items []Task `json:"items" yaml:"items"`
	Stats Stats  `json:"stats" yaml:"stats"`
}

// Query filters and sorts tasks for display. Stats always cover the whole
// collection so hiding tasks never changes the reported progress.
func Query(tasks []Task, f FilterState, order SortOrder) View {
	return View{
		Items: Sort(Filter(tasks, f), order),
		Stats: Summarize(tasks),
	}
}
