package auth

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestContext_SetClear(t *testing.T) {
	c := NewContext("")
	if c.LoggedIn() {
		t.Fatal("new empty context should not be logged in")
	}

	var seen []string
	c.OnChange(func(tok string) { seen = append(seen, tok) })

	c.Set("admin", "tok-1")
	if c.Token() != "tok-1" || c.Username() != "admin" {
		t.Fatalf("after Set: token=%q user=%q", c.Token(), c.Username())
	}
	c.Clear()
	c.Clear()
	if c.LoggedIn() {
		t.Fatal("expected logged out after Clear")
	}
	if len(seen) != 2 || seen[0] != "tok-1" || seen[1] != "" {
		t.Fatalf("hooks saw %v, want [tok-1 \"\"]", seen)
	}
}

func TestContext_ConcurrentReads(t *testing.T) {
	c := NewContext("abc")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Token()
		}()
	}
	c.Set("u", "def")
	wg.Wait()
	if c.Token() != "def" {
		t.Fatalf("Token() = %q", c.Token())
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := OpenSessionStore(path)
	if err != nil {
		t.Fatalf("OpenSessionStore: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Load("http://a"); err != nil || ok {
		t.Fatalf("Load on empty store = ok %v, err %v", ok, err)
	}
	if err := s.Save(Session{APIURL: "http://a", Username: "admin", Token: "t1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Load("http://a")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.Token != "t1" || got.Username != "admin" || got.CreatedAt.IsZero() {
		t.Fatalf("Load = %+v", got)
	}
	if err := s.Delete("http://a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Load("http://a"); ok {
		t.Fatal("session still present after Delete")
	}
}

func TestSessionStore_Bind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := OpenSessionStore(path)
	if err != nil {
		t.Fatalf("OpenSessionStore: %v", err)
	}
	defer s.Close()
	if err := s.Save(Session{APIURL: "http://api", Username: "ops", Token: "stored"}); err != nil {
		t.Fatal(err)
	}

	ctx := NewContext("")
	if err := s.Bind(ctx, "http://api"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if ctx.Token() != "stored" || ctx.Username() != "ops" {
		t.Fatalf("Bind did not seed context: %q %q", ctx.Username(), ctx.Token())
	}

	ctx.Set("ops", "fresh")
	got, _, _ := s.Load("http://api")
	if got.Token != "fresh" {
		t.Fatalf("stored token = %q, want fresh", got.Token)
	}

	ctx.Clear()
	if _, ok, _ := s.Load("http://api"); ok {
		t.Fatal("Clear should remove the persisted session")
	}
}

func TestSessionStore_ReportsFailedWrites(t *testing.T) {
	var logs bytes.Buffer
	s, err := OpenSessionStore(filepath.Join(t.TempDir(), "session.db"),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	if err != nil {
		t.Fatalf("OpenSessionStore: %v", err)
	}

	ctx := NewContext("")
	if err := s.Bind(ctx, "http://api"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	ctx.Set("ops", "tok")
	if err := s.SyncErr(); err != nil {
		t.Fatalf("SyncErr after save = %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	ctx.Clear()

	err = s.SyncErr()
	if err == nil || !strings.Contains(err.Error(), "delete session for http://api") {
		t.Fatalf("SyncErr after failed delete = %v", err)
	}
	if out := logs.String(); !strings.Contains(out, "session not persisted") || !strings.Contains(out, "op=delete") {
		t.Errorf("failed delete not logged: %q", out)
	}
}
