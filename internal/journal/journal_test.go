package journal

import (
	"path/filepath"
	"testing"

	"github.com/halden/rcsconsole/internal/logging"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), logging.Discard())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndQueryEvents(t *testing.T) {
	j := openTestJournal(t)
	j.Record("view", "primary -> overlay")
	j.Record("audio", "sink panel-a live")
	j.Record("view", "overlay -> primary")

	events, err := j.Events("view")
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d view events, want 2", len(events))
	}
	if events[0].Detail != "primary -> overlay" || events[1].Detail != "overlay -> primary" {
		t.Fatalf("events out of order: %+v", events)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	first, err := Open(path, logging.Discard())
	if err != nil {
		t.Fatalf("open first session: %v", err)
	}
	first.Record("view", "primary -> overlay")
	first.Close()

	second, err := Open(path, logging.Discard())
	if err != nil {
		t.Fatalf("open second session: %v", err)
	}
	defer second.Close()
	if second.SessionID == first.SessionID {
		t.Fatalf("each run must get its own session id")
	}
	events, err := second.Events("view")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("new session must not see the previous session's events")
	}
}
