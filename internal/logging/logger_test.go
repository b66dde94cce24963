package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "discarding corrupt storage entry",
		Data:    logrus.Fields{"key": "tasks", "changes": 2},
	}

	out, err := (&CustomFormatter{SystemName: "tasks-tui"}).Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	line := string(out)

	for _, want := range []string{
		"Date: 2024-03-01, Time: 09:30:00, ",
		"Event Source: tasks-tui, ",
		"Event Type: WARNING, ",
		"Message: discarding corrupt storage entry, changes=2, key=tasks\n",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("output %q missing %q", line, want)
		}
	}

	uuidPattern := regexp.MustCompile(`Event ID: [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}, `)
	if !uuidPattern.MatchString(line) {
		t.Errorf("output %q has no event id", line)
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()

	configure(l, &buf, logrus.InfoLevel)
	l.Debug("hidden")
	l.Info("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug entry written at info level")
	}
	if !strings.Contains(buf.String(), "Message: shown") {
		t.Errorf("info entry missing: %q", buf.String())
	}
	if l.ReportCaller {
		t.Errorf("caller reporting enabled at info level")
	}

	configure(l, &buf, logrus.DebugLevel)
	if !l.ReportCaller {
		t.Errorf("caller reporting disabled at debug level")
	}
}

func TestInit(t *testing.T) {
	prev := Logger
	Logger = newDiscardLogger()
	t.Cleanup(func() { Logger = prev })

	path := filepath.Join(t.TempDir(), "logs", "tasks.log")
	if err := Init(Options{Path: path, Level: "info", MaxSizeMB: 1}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "Message: hello") {
		t.Errorf("log file = %q", data)
	}

	if err := Init(Options{Path: path, Level: "loud"}); err == nil {
		t.Errorf("Init accepted an unknown level")
	}
	if err := Init(Options{Level: "info"}); err == nil {
		t.Errorf("Init accepted an empty path")
	}
}
