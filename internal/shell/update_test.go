package shell

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"solwallet/internal/store"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyType(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestWalletListNavigationBounds(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.filtered = []store.Record{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	mm, _ := m.updateWalletList(keyType(tea.KeyUp))
	m = mm.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor should clamp at 0, got %d", m.cursor)
	}

	mm, _ = m.updateWalletList(keyType(tea.KeyDown))
	m = mm.(Model)
	mm, _ = m.updateWalletList(keyType(tea.KeyDown))
	m = mm.(Model)
	mm, _ = m.updateWalletList(keyType(tea.KeyDown))
	m = mm.(Model)
	if m.cursor != 2 {
		t.Errorf("cursor should clamp at len-1=2, got %d", m.cursor)
	}
}

func TestWalletListTransitionsToAddWalletInput(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	mm, _ := m.updateWalletList(keyRune('a'))
	m = mm.(Model)
	if m.state != stateAddWalletInput {
		t.Fatalf("state = %v, want stateAddWalletInput", m.state)
	}
}

func TestWalletListTransitionsToHelp(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	mm, _ := m.updateWalletList(keyRune('h'))
	m = mm.(Model)
	if m.state != stateHelp {
		t.Fatalf("state = %v, want stateHelp", m.state)
	}
}

func TestHelpReturnsToWalletListOnEsc(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.state = stateHelp
	mm, _ := m.updateHelp(keyType(tea.KeyEsc))
	m = mm.(Model)
	if m.state != stateWalletList {
		t.Fatalf("state = %v, want stateWalletList", m.state)
	}
}

func TestConfirmDeleteYConfirms(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.state = stateConfirmDelete
	m.deleteID = "w1"

	mm, cmd := m.updateConfirmDelete(keyRune('y'))
	m = mm.(Model)
	if m.state != stateWalletList {
		t.Fatalf("state = %v, want stateWalletList", m.state)
	}
	if cmd == nil {
		t.Fatal("expected a delete command to be returned")
	}
}

func TestConfirmDeleteOtherKeyCancels(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.state = stateConfirmDelete
	m.deleteID = "w1"

	mm, cmd := m.updateConfirmDelete(keyRune('n'))
	m = mm.(Model)
	if m.state != stateWalletList {
		t.Fatalf("state = %v, want stateWalletList", m.state)
	}
	if cmd != nil {
		t.Fatal("expected no command on cancel")
	}
}

func TestSearchInputFiltersLiveAndEscClears(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.records = []store.Record{{ID: "alpha"}, {ID: "beta"}}
	m.state = stateSearchInput
	m.searchInput.Focus()

	mm, _ := m.updateSearchInput(keyRune('a'))
	m = mm.(Model)
	if m.filterQuery != "a" {
		t.Fatalf("filterQuery = %q, want %q", m.filterQuery, "a")
	}
	if len(m.filtered) != 2 {
		t.Fatalf("filtered = %+v, want both (both contain 'a')", m.filtered)
	}

	mm, _ = m.updateSearchInput(keyType(tea.KeyEsc))
	m = mm.(Model)
	if m.state != stateWalletList || m.filterQuery != "" {
		t.Fatalf("esc should clear filter and return to list, got state=%v query=%q", m.state, m.filterQuery)
	}
}

func TestAddWalletInputRequiresBothFields(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.state = stateAddWalletInput
	m.addIDInput.SetValue("w1")
	m.addPathInput.SetValue("")

	mm, cmd := m.updateAddWalletInput(keyType(tea.KeyEnter))
	m = mm.(Model)
	if m.state != stateAddWalletInput {
		t.Fatalf("should stay in AddWalletInput when path missing, got %v", m.state)
	}
	if cmd == nil {
		t.Fatal("expected a status command warning about missing fields")
	}
}

func TestAddWalletInputTabCyclesFocus(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.state = stateAddWalletInput
	m.addField = addFieldID

	mm, _ := m.updateAddWalletInput(keyType(tea.KeyTab))
	m = mm.(Model)
	if m.addField != addFieldPath {
		t.Fatalf("addField = %v, want addFieldPath", m.addField)
	}
}

func TestVanityInputRequiresBothFields(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.state = stateVanityInput
	m.vanityPrefixInput.SetValue("")
	m.vanityIDInput.SetValue("w1")

	mm, cmd := m.updateVanityInput(keyType(tea.KeyEnter))
	m = mm.(Model)
	if m.state != stateVanityInput {
		t.Fatalf("should stay in VanityInput when prefix missing, got %v", m.state)
	}
	if cmd == nil {
		t.Fatal("expected a status command warning about missing fields")
	}
}

func TestBatchMenuSelectToggleAndCount(t *testing.T) {
	m := New(newTestManager(t), nil, "")
	m.state = stateBatchMenu
	m.batchStep = batchStepSelect
	m.filtered = []store.Record{{ID: "w1"}, {ID: "w2"}}
	m.cursor = 0

	mm, _ := m.updateBatchMenu(keyRune(' '))
	m = mm.(Model)
	if !m.batchSelected["w1"] {
		t.Fatal("expected w1 to be selected after space")
	}
	if m.selectedCount() != 1 {
		t.Fatalf("selectedCount = %d, want 1", m.selectedCount())
	}
}

func TestParseBatchInputsValid(t *testing.T) {
	recipient := mustKeypair(t)
	_, amount, err := parseBatchInputs(recipient, "1000")
	if err != nil {
		t.Fatalf("parseBatchInputs: %v", err)
	}
	if amount != 1000 {
		t.Errorf("amount = %d, want 1000", amount)
	}
}

func TestParseBatchInputsRejectsBadRecipient(t *testing.T) {
	_, _, err := parseBatchInputs("not-base58-!!!", "100")
	if err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}

func TestParseBatchInputsRejectsBadAmount(t *testing.T) {
	_, _, err := parseBatchInputs(mustKeypair(t), "not-a-number")
	if err == nil {
		t.Fatal("expected error for invalid amount")
	}
}

func mustKeypair(t *testing.T) string {
	t.Helper()
	m := newTestManager(t)
	rec, err := m.CreateRandom("tmp")
	if err != nil {
		t.Fatalf("CreateRandom: %v", err)
	}
	return rec.PublicKey
}

func TestPublicFromRecordRoundTrips(t *testing.T) {
	m := newTestManager(t)
	rec, err := m.CreateRandom("w1")
	if err != nil {
		t.Fatalf("CreateRandom: %v", err)
	}
	public := publicFromRecord(rec)
	var zero [32]byte
	if public == zero {
		t.Error("publicFromRecord returned zero key for a valid record")
	}
}
