package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func allJSON(path string) bool {
	return true
}

func TestScanFindsFilesAtRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"))
	writeFile(t, filepath.Join(dir, "b.JSON"))
	writeFile(t, filepath.Join(dir, "c.txt"))

	got, _, err := Scan(context.Background(), dir, Options{MaxDepth: 0, MaxResults: 10}, allJSON)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(got), got)
	}
}

func TestScanMaxDepthZeroExcludesSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.json"))
	writeFile(t, filepath.Join(dir, "nested", "deep.json"))

	got, _, err := Scan(context.Background(), dir, Options{MaxDepth: 0, MaxResults: 10}, allJSON)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(got), got)
	}
}

func TestScanDescendsToMaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.json"))
	writeFile(t, filepath.Join(dir, "a", "one.json"))
	writeFile(t, filepath.Join(dir, "a", "b", "two.json"))

	got, _, err := Scan(context.Background(), dir, Options{MaxDepth: 1, MaxResults: 10}, allJSON)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results at depth 1, want 2: %v", len(got), got)
	}
}

func TestScanRespectsMaxResults(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(dir, string(rune('a'+i))+".json"))
	}

	got, _, err := Scan(context.Background(), dir, Options{MaxDepth: 0, MaxResults: 3, Workers: 4}, allJSON)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) > 3 {
		t.Fatalf("got %d results, want at most 3", len(got))
	}
}

func TestScanAppliesPredicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "match.json"))
	writeFile(t, filepath.Join(dir, "nomatch.json"))

	got, _, err := Scan(context.Background(), dir, Options{MaxDepth: 0, MaxResults: 10}, func(path string) bool {
		return filepath.Base(path) == "match.json"
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "match.json" {
		t.Fatalf("got %v, want only match.json", got)
	}
}

func TestScanCancelledBeforeCallReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	got, _, err := Scan(ctx, dir, Options{MaxDepth: 0, MaxResults: 10}, func(path string) bool {
		atomic.AddInt32(&calls, 1)
		return true
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d results, want 0 for pre-cancelled context", len(got))
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("predicate invoked %d times, want 0", calls)
	}
}

func TestScanSkipsPermissionDeniedSilently(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.MkdirAll(blocked, 0o000); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	defer os.Chmod(blocked, 0o755)
	writeFile(t, filepath.Join(dir, "visible.json"))

	got, _, err := Scan(context.Background(), dir, Options{MaxDepth: 2, MaxResults: 10}, allJSON)
	if err != nil {
		t.Fatalf("Scan returned an error instead of skipping: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1 (blocked dir should be skipped silently)", len(got))
	}
}
