package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"runs", "events"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestBeginRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.BeginRun(ctx, "run-1", "red-green", 4); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	r, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if r.Token != "run-1" || r.Item != "red-green" || r.Plan != 4 {
		t.Errorf("ReadRun() = %+v, want run-1/red-green/4", r)
	}
}

func TestBeginRun_DuplicateToken(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.BeginRun(ctx, "run-1", "red-green", 4); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	if err := s.BeginRun(ctx, "run-1", "red-green", 4); err == nil {
		t.Error("duplicate BeginRun() succeeded, want primary key violation")
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if err == nil {
		t.Fatal("ReadRun() succeeded for missing token")
	}
}

func TestListRuns_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, token := range []string{"run-a", "run-b", "run-c"} {
		if err := s.BeginRun(ctx, token, "red-green", i); err != nil {
			t.Fatalf("BeginRun(%q) failed: %v", token, err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	for i, want := range []string{"run-a", "run-b", "run-c"} {
		if runs[i].Token != want {
			t.Errorf("runs[%d].Token = %q, want %q", i, runs[i].Token, want)
		}
	}
}

func TestReadEvents_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.BeginRun(ctx, "run-1", "red-green", 4); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	// Insert out of seq order; reads must come back ordered.
	for _, seq := range []int64{3, 1, 2} {
		e := Event{RunToken: "run-1", Seq: seq, Kind: KindPrepare, Dimension: 0, State: "Fast", Scope: "/Fast/Empty"}
		if err := s.WriteEvent(ctx, e); err != nil {
			t.Fatalf("WriteEvent(seq=%d) failed: %v", seq, err)
		}
	}

	events, err := s.ReadEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadEvents() failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ReadEvents() returned %d events, want 3", len(events))
	}
	for i, want := range []int64{1, 2, 3} {
		if events[i].Seq != want {
			t.Errorf("events[%d].Seq = %d, want %d", i, events[i].Seq, want)
		}
	}
}

func TestWriteEvent_RejectsBadKind(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.BeginRun(ctx, "run-1", "red-green", 4); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	e := Event{RunToken: "run-1", Seq: 1, Kind: EventKind("teardown"), State: "", Scope: ""}
	if err := s.WriteEvent(ctx, e); err == nil {
		t.Error("WriteEvent() accepted an undeclared kind")
	}
}

func TestWriteEvent_RejectsUnknownRun(t *testing.T) {
	s := createTestStore(t)

	e := Event{RunToken: "ghost", Seq: 1, Kind: KindAction, Dimension: -1, State: "", Scope: ""}
	if err := s.WriteEvent(context.Background(), e); err == nil {
		t.Error("WriteEvent() accepted an event for a run that was never begun")
	}
}