package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "echobox.db"), testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesMissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "echobox.db")
	s, err := Open(dbPath, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	token, err := s.SessionToken(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		t.Errorf("fresh store should have no session, got %q", token)
	}

	if err := s.SaveSessionToken(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	token, err = s.SessionToken(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if token != "tok-1" {
		t.Errorf("token = %q", token)
	}

	// Saving again replaces, never duplicates.
	if err := s.SaveSessionToken(ctx, "tok-2"); err != nil {
		t.Fatal(err)
	}
	token, _ = s.SessionToken(ctx)
	if token != "tok-2" {
		t.Errorf("token = %q, want replacement", token)
	}

	if err := s.ClearSessionToken(ctx); err != nil {
		t.Fatal(err)
	}
	token, _ = s.SessionToken(ctx)
	if token != "" {
		t.Errorf("token survived clear: %q", token)
	}
}

func TestSession_LoginLogout(t *testing.T) {
	s := openTestStore(t)
	sess := NewSession(s)

	if sess.IsAuthenticated() {
		t.Error("fresh store should not be authenticated")
	}
	if err := sess.Login("my-token"); err != nil {
		t.Fatal(err)
	}
	if !sess.IsAuthenticated() {
		t.Error("authenticated after login")
	}
	if err := sess.Logout(); err != nil {
		t.Fatal(err)
	}
	if sess.IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
}

func TestSession_LoginWithoutTokenGeneratesMarker(t *testing.T) {
	s := openTestStore(t)
	sess := NewSession(s)

	if err := sess.Login(""); err != nil {
		t.Fatal(err)
	}
	token, err := s.SessionToken(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Error("empty login should still persist a generated marker")
	}
}

func TestSeenIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seen, err := s.SeenIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 0 {
		t.Errorf("fresh store has %d seen ids", len(seen))
	}

	if err := s.MarkSeen(ctx, []string{"1", "2", "2"}); err != nil {
		t.Fatal(err)
	}
	// Re-marking an already seen id is harmless.
	if err := s.MarkSeen(ctx, []string{"2", "3"}); err != nil {
		t.Fatal(err)
	}

	seen, err = s.SeenIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 || !seen["1"] || !seen["2"] || !seen["3"] {
		t.Errorf("seen = %v", seen)
	}

	if err := s.MarkSeen(ctx, nil); err != nil {
		t.Errorf("empty batch should be a no-op: %v", err)
	}
}

func TestSentLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []SentEntry{
		{ID: "s1", Kind: "text", Summary: "hello", CreatedAt: base},
		{ID: "s2", Kind: "image", Summary: "cat.jpg", CreatedAt: base.Add(time.Minute)},
		{ID: "s3", Kind: "voice", Summary: "clip.ogg", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := s.RecordSent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.SentCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d", n)
	}

	recent, err := s.RecentSent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d", len(recent))
	}
	if recent[0].ID != "s3" || recent[1].ID != "s2" {
		t.Errorf("order = %s, %s (want newest first)", recent[0].ID, recent[1].ID)
	}
	if recent[0].Kind != "voice" || recent[0].Summary != "clip.ogg" {
		t.Errorf("entry = %+v", recent[0])
	}
}
