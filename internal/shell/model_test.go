package shell

import (
	"path/filepath"
	"testing"

	"solwallet/internal/store"
	"solwallet/internal/wallet"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i * 5)
	}
	return key
}

func newTestManager(t *testing.T) *wallet.Manager {
	t.Helper()
	dir := t.TempDir()
	s := store.Open(filepath.Join(dir, "store.json"), testKey(t))
	return wallet.New(s)
}

func TestApplyFilterCaseFoldedSubstring(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.records = []store.Record{
		{ID: "Trading-Hot"},
		{ID: "cold-storage"},
		{ID: "treasury"},
	}
	m.filterQuery = "TRAD"
	m.applyFilter()

	if len(m.filtered) != 1 || m.filtered[0].ID != "Trading-Hot" {
		t.Fatalf("filtered = %+v, want only Trading-Hot", m.filtered)
	}
}

func TestApplyFilterEmptyQueryReturnsAll(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.records = []store.Record{{ID: "a"}, {ID: "b"}}
	m.filterQuery = ""
	m.applyFilter()

	if len(m.filtered) != 2 {
		t.Fatalf("filtered = %+v, want all records", m.filtered)
	}
}

func TestApplyFilterClampsCursor(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.records = []store.Record{{ID: "alpha"}, {ID: "beta"}}
	m.cursor = 1
	m.filterQuery = "alpha"
	m.applyFilter()

	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestDigitIndex(t *testing.T) {
	cases := map[string]struct {
		want int
		ok   bool
	}{
		"1": {0, true},
		"9": {8, true},
		"0": {0, false},
		"a": {0, false},
		"":  {0, false},
	}
	for in, want := range cases {
		n, ok := digitIndex(in)
		if ok != want.ok || (ok && n != want.want) {
			t.Errorf("digitIndex(%q) = (%d, %v), want (%d, %v)", in, n, ok, want.want, want.ok)
		}
	}
}
