package shell

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"solwallet/internal/store"
	"solwallet/internal/vanity"
)

// Update is the single entry point bubbletea drives the shell through.
// It first handles messages common to every state (status lifecycle,
// async results, window resize), then dispatches key input to the
// handler for the current state, per the transition table in spec
// §4.7.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case statusMsg:
		m.statusLevel, m.statusText, m.statusSeq = msg.level, msg.text, msg.seq
		return m, nil

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.statusText = ""
		}
		return m, nil

	case listLoadedMsg:
		if msg.err != nil {
			cmd := m.setStatusNow(statusError, "load wallets: "+msg.err.Error())
			return m, cmd
		}
		m.records = msg.records
		m.applyFilter()
		return m, nil

	case importResultMsg:
		if msg.err != nil {
			cmd := m.setStatusNow(statusError, friendlyError("import", msg.err))
			return m, cmd
		}
		m.state = stateWalletList
		return m, tea.Batch(loadListCmd(&m), m.setStatusNow(statusSuccess, "imported "+msg.id))

	case deleteResultMsg:
		if msg.err != nil {
			cmd := m.setStatusNow(statusError, friendlyError("delete", msg.err))
			return m, cmd
		}
		delete(m.balances, msg.id)
		return m, tea.Batch(loadListCmd(&m), m.setStatusNow(statusSuccess, "deleted "+msg.id))

	case scanResultMsg:
		if msg.err == nil {
			m.scanPaths = msg.paths
		}
		return m, nil

	case balanceMsg:
		m.balances[msg.id] = balanceView{amount: msg.amount, fetched: msg.fetched}
		return m, nil

	case vanityProgressMsg:
		if m.vanitySess == nil || msg.gen != m.vanitySess.gen {
			return m, nil
		}
		m.vanityAttempts = msg.attempts
		m.vanityElapsed = msg.elapsed
		return m, waitVanity(m.vanitySess)

	case vanityOutcomeMsg:
		return m.handleVanityOutcome(msg)

	case batchResultMsg:
		m.batchResults = msg.lines
		m.batchStep = batchStepDone
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey dispatches to the handler for the current state.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		m.state = stateExiting
		return m, tea.Quit
	}

	switch m.state {
	case stateWalletList:
		return m.updateWalletList(msg)
	case stateWalletDetail:
		return m.updateWalletDetail(msg)
	case stateHelp:
		return m.updateHelp(msg)
	case stateAddWalletInput:
		return m.updateAddWalletInput(msg)
	case stateSearchInput:
		return m.updateSearchInput(msg)
	case stateVanityInput:
		return m.updateVanityInput(msg)
	case stateVanityProgress:
		return m.updateVanityProgress(msg)
	case stateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case stateBatchMenu:
		return m.updateBatchMenu(msg)
	}
	return m, nil
}

func (m Model) updateWalletList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		m.state = stateExiting
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "enter":
		if rec, ok := m.selectedRecord(); ok {
			m.detailID = rec.ID
			m.state = stateWalletDetail
			if m.chain != nil {
				return m, balanceCmd(&m, rec.ID, publicFromRecord(rec))
			}
		}
	case "a":
		m.state = stateAddWalletInput
		m.addField = addFieldID
		m.addIDInput.SetValue("")
		m.addPathInput.SetValue("")
		m.addIDInput.Focus()
		m.addPathInput.Blur()
		return m, tea.Batch(scanCmd(m.scanRoot), textinput.Blink)
	case "v":
		m.state = stateVanityInput
		m.vanityField = vanityFieldPrefix
		m.vanityPrefixInput.SetValue("")
		m.vanityIDInput.SetValue("")
		m.vanityPrefixInput.Focus()
		m.vanityIDInput.Blur()
		return m, textinput.Blink
	case "d":
		if rec, ok := m.selectedRecord(); ok {
			m.deleteID = rec.ID
			m.state = stateConfirmDelete
		}
	case "r":
		return m, m.refreshBalancesCmd()
	case "/":
		m.state = stateSearchInput
		m.searchInput.SetValue(m.filterQuery)
		m.searchInput.Focus()
		return m, textinput.Blink
	case "h":
		m.state = stateHelp
	case "b":
		if m.chain != nil && len(m.records) > 0 {
			m.state = stateBatchMenu
			m.batchStep = batchStepSelect
			m.batchSelected = map[string]bool{}
			m.batchResults = nil
		}
	}
	return m, nil
}

func (m Model) updateWalletDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.state = stateWalletList
	}
	return m, nil
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.state = stateWalletList
	}
	return m, nil
}

func (m Model) updateAddWalletInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateWalletList
		return m, nil
	case "tab":
		m.addField = (m.addField + 1) % 2
		m.syncAddFocus()
		return m, nil
	case "enter":
		id := m.addIDInput.Value()
		path := m.addPathInput.Value()
		if id == "" || path == "" {
			cmd := m.setStatusNow(statusWarning, "both id and path are required")
			return m, cmd
		}
		return m, importCmd(&m, path, id)
	case "ctrl+g":
		id := m.addIDInput.Value()
		if id == "" {
			cmd := m.setStatusNow(statusWarning, "id is required to generate a random wallet")
			return m, cmd
		}
		return m, createRandomCmd(&m, id)
	}
	// Quick-pick a previously scanned candidate by digit key.
	if n, ok := digitIndex(msg.String()); ok && n < len(m.scanPaths) {
		m.addPathInput.SetValue(m.scanPaths[n])
		return m, nil
	}

	var cmd tea.Cmd
	if m.addField == addFieldID {
		m.addIDInput, cmd = m.addIDInput.Update(msg)
	} else {
		m.addPathInput, cmd = m.addPathInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterQuery = ""
		m.searchInput.SetValue("")
		m.applyFilter()
		m.state = stateWalletList
		return m, nil
	case "enter":
		m.filterQuery = m.searchInput.Value()
		m.applyFilter()
		m.state = stateWalletList
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.filterQuery = m.searchInput.Value()
	m.applyFilter()
	return m, cmd
}

func (m Model) updateVanityInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateWalletList
		return m, nil
	case "tab":
		m.vanityField = (m.vanityField + 1) % 2
		m.syncVanityFocus()
		return m, nil
	case "enter":
		prefix := m.vanityPrefixInput.Value()
		id := m.vanityIDInput.Value()
		if prefix == "" || id == "" {
			cmd := m.setStatusNow(statusWarning, "both prefix and id are required")
			return m, cmd
		}
		m.vanityGen++
		m.vanityAttempts = 0
		m.vanityElapsed = 0
		m.vanitySess = startVanity(prefix, m.vanityCaseFold, vanityThreadCount(), defaultVanityTimeout, m.vanityGen)
		m.state = stateVanityProgress
		return m, tea.Batch(waitVanity(m.vanitySess), m.spin.Tick)
	}
	var cmd tea.Cmd
	if m.vanityField == vanityFieldPrefix {
		m.vanityPrefixInput, cmd = m.vanityPrefixInput.Update(msg)
	} else {
		m.vanityIDInput, cmd = m.vanityIDInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updateVanityProgress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" && m.vanitySess != nil {
		m.vanitySess.cancel()
	}
	return m, nil
}

func (m Model) handleVanityOutcome(msg vanityOutcomeMsg) (tea.Model, tea.Cmd) {
	if m.vanitySess == nil || msg.gen != m.vanitySess.gen {
		return m, nil
	}
	m.vanitySess = nil

	if msg.err != nil {
		m.state = stateWalletList
		return m, m.setStatusNow(statusError, friendlyError("vanity search", msg.err))
	}

	switch msg.outcome.Status {
	case vanity.Found:
		id := m.vanityIDInput.Value()
		kp := msg.outcome.Keypair
		_, err := m.manager.AdoptKeypair(id, kp)
		kp.Close()
		m.state = stateWalletList
		if err != nil {
			return m, m.setStatusNow(statusError, friendlyError("save vanity wallet", err))
		}
		return m, tea.Batch(loadListCmd(&m), m.setStatusNow(statusSuccess, "found and saved "+id))
	case vanity.Cancelled:
		m.state = stateWalletList
		return m, m.setStatusNow(statusWarning, "vanity search cancelled")
	default:
		m.state = stateWalletList
		return m, m.setStatusNow(statusWarning, "vanity search timed out")
	}
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		id := m.deleteID
		m.state = stateWalletList
		return m, deleteCmd(&m, id)
	default:
		m.state = stateWalletList
	}
	return m, nil
}

func (m Model) updateBatchMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.batchStep {
	case batchStepSelect:
		switch msg.String() {
		case "esc":
			m.state = stateWalletList
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
		case " ":
			if rec, ok := m.selectedRecord(); ok {
				m.batchSelected[rec.ID] = !m.batchSelected[rec.ID]
			}
		case "enter":
			if m.selectedCount() > 0 {
				m.batchStep = batchStepRecipient
				m.batchField = 0
				m.batchRecipientInput.SetValue("")
				m.batchAmountInput.SetValue("")
				m.batchRecipientInput.Focus()
				m.batchAmountInput.Blur()
				return m, textinput.Blink
			}
		}
	case batchStepRecipient:
		switch msg.String() {
		case "esc":
			m.batchStep = batchStepSelect
			return m, nil
		case "tab":
			m.batchField = (m.batchField + 1) % 2
			m.syncBatchFocus()
			return m, nil
		case "enter":
			recipient := m.batchRecipientInput.Value()
			amountStr := m.batchAmountInput.Value()
			public, amount, err := parseBatchInputs(recipient, amountStr)
			if err != nil {
				cmd := m.setStatusNow(statusWarning, err.Error())
				return m, cmd
			}
			ids := m.selectedIDs()
			m.batchStep = batchStepRunning
			return m, batchTransferCmd(m.manager, m.chain, ids, public, amount)
		}
		var cmd tea.Cmd
		if m.batchField == 0 {
			m.batchRecipientInput, cmd = m.batchRecipientInput.Update(msg)
		} else {
			m.batchAmountInput, cmd = m.batchAmountInput.Update(msg)
		}
		return m, cmd
	case batchStepDone:
		switch msg.String() {
		case "esc", "enter":
			m.state = stateWalletList
		}
	}
	return m, nil
}

func (m *Model) syncAddFocus() {
	if m.addField == addFieldID {
		m.addIDInput.Focus()
		m.addPathInput.Blur()
	} else {
		m.addPathInput.Focus()
		m.addIDInput.Blur()
	}
}

func (m *Model) syncVanityFocus() {
	if m.vanityField == vanityFieldPrefix {
		m.vanityPrefixInput.Focus()
		m.vanityIDInput.Blur()
	} else {
		m.vanityIDInput.Focus()
		m.vanityPrefixInput.Blur()
	}
}

func (m *Model) syncBatchFocus() {
	if m.batchField == 0 {
		m.batchRecipientInput.Focus()
		m.batchAmountInput.Blur()
	} else {
		m.batchAmountInput.Focus()
		m.batchRecipientInput.Blur()
	}
}

func (m Model) selectedRecord() (store.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return store.Record{}, false
	}
	return m.filtered[m.cursor], true
}

func (m Model) selectedCount() int {
	n := 0
	for _, v := range m.batchSelected {
		if v {
			n++
		}
	}
	return n
}

func (m Model) selectedIDs() []string {
	out := make([]string, 0, len(m.batchSelected))
	for id, v := range m.batchSelected {
		if v {
			out = append(out, id)
		}
	}
	return out
}

func (m Model) refreshBalancesCmd() tea.Cmd {
	if m.chain == nil || len(m.records) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.records))
	for _, rec := range m.records {
		cmds = append(cmds, balanceCmd(&m, rec.ID, publicFromRecord(rec)))
	}
	return tea.Batch(cmds...)
}

func digitIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

// friendlyError renders an error for the status line as the failed
// operation followed by the error's own message; it adds no hint of
// its own. The errors it receives carry ids, paths and sentinel text,
// never secret material.
func friendlyError(op string, err error) string {
	return op + ": " + err.Error()
}
