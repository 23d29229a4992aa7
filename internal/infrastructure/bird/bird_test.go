//go:build !windows

package bird

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/outliyr/x-search-mcp/internal/domain/search"
)

// fakeBird writes a shell script standing in for the Bird CLI.
func fakeBird(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bird")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testQuery(t *testing.T) search.Query {
	t.Helper()
	q, err := search.NewQuery("golang", "2026-08-01", "2026-08-31", "quick", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestStatus(t *testing.T) {
	bin := fakeBird(t, `echo '{"authenticated":true,"handle":"@tester"}'`)
	status, err := New(bin).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Authenticated {
		t.Error("expected authenticated")
	}
	if status.Handle != "@tester" {
		t.Errorf("handle = %q", status.Handle)
	}
}

func TestStatus_BadJSON(t *testing.T) {
	bin := fakeBird(t, `echo 'not json'`)
	if _, err := New(bin).Status(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestSearch(t *testing.T) {
	bin := fakeBird(t, `echo '{"items":[{"id":"1","author":"@a","text":"hello gophers","created_at":"2026-08-20T10:00:00Z","likes":3}]}'`)
	res, err := New(bin).Search(context.Background(), testQuery(t))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Source != search.SourceBird {
		t.Errorf("source = %q", res.Source)
	}
	if len(res.Posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(res.Posts))
	}
	if res.Posts[0].Text != "hello gophers" || res.Posts[0].Likes != 3 {
		t.Errorf("unexpected post: %+v", res.Posts[0])
	}
	if res.Posts[0].CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}
	if res.FromDate != "2026-08-01" || res.ToDate != "2026-08-31" {
		t.Errorf("window = %s..%s", res.FromDate, res.ToDate)
	}
}

func TestSearch_LegacyTweetsKey(t *testing.T) {
	bin := fakeBird(t, `echo '{"tweets":[{"text":"old format"}]}'`)
	res, err := New(bin).Search(context.Background(), testQuery(t))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Posts) != 1 || res.Posts[0].Text != "old format" {
		t.Errorf("unexpected posts: %+v", res.Posts)
	}
}

func TestSearch_SchemaViolation(t *testing.T) {
	// "likes" as a string violates the output schema.
	bin := fakeBird(t, `echo '{"items":[{"text":"x","likes":"three"}]}'`)
	_, err := New(bin).Search(context.Background(), testQuery(t))
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("expected schema validation error, got %v", err)
	}
}

func TestSearch_CommandFailure(t *testing.T) {
	bin := fakeBird(t, `echo 'rate limited' >&2; exit 1`)
	_, err := New(bin).Search(context.Background(), testQuery(t))
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestMissingBinary(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "no-such-bird"))
	if _, err := a.Status(context.Background()); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestNotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bird")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path).Status(context.Background()); err == nil {
		t.Error("expected error for non-executable binary")
	}
}
