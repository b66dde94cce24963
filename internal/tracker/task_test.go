package tracker

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"urgent", PriorityUrgent, false},
		{" Waiting ", PriorityWaiting, false},
		{"", PriorityNoUrgency, false},
		{"espera", PriorityWaiting, false},
		{"low", PriorityNoUrgency, false},
		{"someday", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTaskJSONUsesMilliseconds(t *testing.T) {
	created := msTime(1709283600123)
	task := Task{ID: 1709283600123, Title: "t", Priority: PriorityUrgent, CreatedAt: created}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"createdAt":1709283600123`) {
		t.Errorf("createdAt not epoch ms: %s", s)
	}
	if !strings.Contains(s, `"completedAt":null`) {
		t.Errorf("pending task should carry null completedAt: %s", s)
	}

	var back Task
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.CreatedAt.Equal(created) || back.CreatedAt.Location() != time.UTC {
		t.Errorf("createdAt = %v, want %v UTC", back.CreatedAt, created)
	}
}

func TestCollaboratorLegacyFields(t *testing.T) {
	var c Collaborator
	if err := json.Unmarshal([]byte(`{"nome": "Ester", "cor": "208"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c != (Collaborator{Name: "Ester", ColorToken: "208"}) {
		t.Errorf("collaborator = %+v", c)
	}
}
