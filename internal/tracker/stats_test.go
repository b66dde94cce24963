package tracker

import (
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		done  int
		total int
		want  Stats
	}{
		{"empty", 0, 0, Stats{Done: 0, Total: 0, Percent: 0}},
		{"none done", 0, 1, Stats{Done: 0, Total: 1, Percent: 0}},
		{"all done", 1, 1, Stats{Done: 1, Total: 1, Percent: 100}},
		{"one third rounds down", 1, 3, Stats{Done: 1, Total: 3, Percent: 33}},
		{"two thirds rounds up", 2, 3, Stats{Done: 2, Total: 3, Percent: 67}},
		{"half", 2, 4, Stats{Done: 2, Total: 4, Percent: 50}},
		{"one eighth rounds half up", 1, 8, Stats{Done: 1, Total: 8, Percent: 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tasks []Task
			for i := 0; i < tt.total; i++ {
				tasks = append(tasks, at(int64(i+1), i, i < tt.done))
			}

			got := Summarize(tasks)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
			if got.Percent < 0 || got.Percent > 100 {
				t.Errorf("Percent %d out of range", got.Percent)
			}
			if got.AllDone() != (tt.total > 0 && tt.done == tt.total) {
				t.Errorf("AllDone() = %v", got.AllDone())
			}
		})
	}
}

func TestQueryStatsIgnoreFilter(t *testing.T) {
	tasks := []Task{at(1, 1, true), at(2, 2, false), at(3, 3, false)}

	var f FilterState
	f.ToggleStatus(StatusCompleted)
	view := Query(tasks, f, Descending)

	if got := ids(view.Items); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("items = %v, want [1]", got)
	}
	if view.Stats != (Stats{Done: 1, Total: 3, Percent: 33}) {
		t.Errorf("stats = %+v, want 1/3 over the whole collection", view.Stats)
	}
}

func TestQueryFinanceScenario(t *testing.T) {
	var f FilterState
	f.ToggleArea("Finance")

	view := Query(filterFixture(), f, Descending)
	for _, task := range view.Items {
		if task.Area != "Finance" {
			t.Errorf("task %d in area %q passed the Finance filter", task.ID, task.Area)
		}
	}
	if len(view.Items) != 2 {
		t.Errorf("items = %d, want 2", len(view.Items))
	}
	if view.Stats.Total != len(filterFixture()) {
		t.Errorf("stats total = %d, want whole collection", view.Stats.Total)
	}
}
