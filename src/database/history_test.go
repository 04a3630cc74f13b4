package database

import (
	"errors"
	"sync"
	"testing"

	"nocturne/src/nerrors"
)

func newTestDB(t *testing.T) *HistoryDB {
	t.Helper()
	db, err := NewHistoryDB(":memory:")
	if err != nil {
		t.Fatalf("NewHistoryDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecentBySession(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	exchanges := []Exchange{
		{SessionID: "s1", Persona: "nocturne", Tier: "new", Context: "casual", UserText: "hello", ReplyText: "The void ripples...", TemplateID: "greeting", Intensity: 0.18},
		{SessionID: "s1", Persona: "nocturne", Tier: "new", Context: "serious", UserText: "what is this", ReplyText: "Every certainty...", TemplateID: "philosophical", Intensity: 0.27},
		{SessionID: "s2", Persona: "nocturne", Tier: "established", Context: "casual", UserText: "back again", ReplyText: "Ah. There you are.", TemplateID: "greeting", Intensity: 0.42},
	}
	for _, e := range exchanges {
		if err := db.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := db.RecentBySession("s1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentBySession(s1) returned %d exchanges, want 2", len(got))
	}

	// Newest first.
	if got[0].TemplateID != "philosophical" || got[1].TemplateID != "greeting" {
		t.Errorf("wrong order: %q then %q", got[0].TemplateID, got[1].TemplateID)
	}
	if got[0].Intensity != 0.27 {
		t.Errorf("Intensity = %f, want 0.27", got[0].Intensity)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not populated")
	}
}

func TestRecentAcrossSessions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	for i, sid := range []string{"a", "b", "c", "a"} {
		if err := db.Record(Exchange{SessionID: sid, UserText: "msg", ReplyText: "reply", Intensity: float64(i) * 0.1}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.Recent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent(3) returned %d exchanges", len(got))
	}
	if got[0].SessionID != "a" {
		t.Errorf("newest exchange session = %q, want a", got[0].SessionID)
	}
}

func TestCountBySession(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		if err := db.Record(Exchange{SessionID: "counted", UserText: "x", ReplyText: "y"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.CountBySession("counted")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("CountBySession = %d, want 5", n)
	}

	n, err = db.CountBySession("empty")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("CountBySession(empty) = %d, want 0", n)
	}
}

func TestRecentLimitDefaults(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	for i := 0; i < 25; i++ {
		if err := db.Record(Exchange{SessionID: "many", UserText: "x", ReplyText: "y"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.RecentBySession("many", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 20 {
		t.Errorf("zero limit returned %d exchanges, want default 20", len(got))
	}
}

func TestConcurrentRecords(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errs := make([]error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			errs[i] = db.Record(Exchange{SessionID: "concurrent", UserText: "x", ReplyText: "y"})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d failed: %v", i, err)
		}
	}

	n, err := db.CountBySession("concurrent")
	if err != nil {
		t.Fatal(err)
	}
	if n != numGoroutines {
		t.Errorf("CountBySession = %d, want %d", n, numGoroutines)
	}
}

func TestDatabaseErrorShape(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	db.Close()

	err := db.Record(Exchange{SessionID: "late", UserText: "x"})
	if err == nil {
		t.Fatal("expected error on closed database")
	}
	var dbErr *nerrors.DatabaseError
	if !errors.As(err, &dbErr) {
		t.Errorf("error %v is not a DatabaseError", err)
	}
	if dbErr.Op != "insert" || dbErr.Table != "exchanges" {
		t.Errorf("got op=%q table=%q", dbErr.Op, dbErr.Table)
	}
}
