package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"solwallet/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	statusStyles = map[statusLevel]lipgloss.Style{
		statusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		statusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		statusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		statusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// View renders the current state. The shell never blocks in View —
// everything shown here is already resident in Model from a prior
// Update call, per spec §5's suspension-point model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case stateWalletList:
		body = m.viewWalletList()
	case stateWalletDetail:
		body = m.viewWalletDetail()
	case stateHelp:
		body = m.viewHelp()
	case stateAddWalletInput:
		body = m.viewAddWalletInput()
	case stateSearchInput:
		body = m.viewSearchInput()
	case stateVanityInput:
		body = m.viewVanityInput()
	case stateVanityProgress:
		body = m.viewVanityProgress()
	case stateConfirmDelete:
		body = m.viewConfirmDelete()
	case stateBatchMenu:
		body = m.viewBatchMenu()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("solwallet") + dimStyle.Render(" — "+m.state.String()))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if level, text, ok := m.visibleStatus(); ok {
		b.WriteString("\n" + statusStyles[level].Render(text))
	}
	return b.String()
}

func (m Model) viewWalletList() string {
	if len(m.filtered) == 0 {
		if m.filterQuery != "" {
			return dimStyle.Render(fmt.Sprintf("no wallets match %q. / to change filter, esc to clear.", m.filterQuery))
		}
		return dimStyle.Render("no wallets yet. press 'a' to import one or 'v' to search for a vanity address.")
	}

	var b strings.Builder
	for i, rec := range m.filtered {
		line := fmt.Sprintf("%-24s %s", rec.ID, rec.PublicKey)
		if bal, ok := m.balances[rec.ID]; ok && bal.fetched {
			line += dimStyle.Render(fmt.Sprintf("  (%d lamports)", bal.amount))
		}
		if i == m.cursor {
			b.WriteString(selStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if m.filterQuery != "" {
		b.WriteString(dimStyle.Render("\nfilter: " + m.filterQuery))
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ select · enter detail · a add · v vanity · d delete · / search · b batch · r refresh · h help · q quit"))
	return b.String()
}

func (m Model) viewWalletDetail() string {
	rec, ok := recordByID(m.records, m.detailID)
	if !ok {
		return dimStyle.Render("wallet no longer exists.")
	}
	var b strings.Builder
	b.WriteString("id:         " + rec.ID + "\n")
	b.WriteString("public key: " + rec.PublicKey + "\n")
	b.WriteString("created:    " + rec.CreatedAt.Format("2006-01-02 15:04:05 MST") + "\n")
	if bal, ok := m.balances[rec.ID]; ok {
		if bal.fetched {
			b.WriteString(fmt.Sprintf("balance:    %d lamports\n", bal.amount))
		} else {
			b.WriteString("balance:    (unavailable)\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("esc back"))
	return b.String()
}

func (m Model) viewHelp() string {
	lines := []string{
		"↑ / k       move selection up",
		"↓ / j       move selection down",
		"enter       open wallet detail",
		"a           add a wallet (import from file)",
		"v           vanity-search for a new wallet",
		"d           delete selected wallet (with confirmation)",
		"/           filter by id",
		"b           batch transfer from selected wallets",
		"r           refresh balances",
		"h           this screen",
		"q           quit",
		"esc         back / cancel",
	}
	return strings.Join(lines, "\n") + "\n\n" + helpStyle.Render("esc back")
}

func (m Model) viewAddWalletInput() string {
	var b strings.Builder
	b.WriteString("id:   " + m.addIDInput.View() + "\n")
	b.WriteString("path: " + m.addPathInput.View() + "\n")
	if len(m.scanPaths) > 0 {
		b.WriteString("\n" + dimStyle.Render("quick picks (press a digit to fill path):") + "\n")
		for i, p := range m.scanPaths {
			if i >= 9 {
				break
			}
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, p))
		}
	}
	b.WriteString("\n" + helpStyle.Render("tab switch field · enter import · ctrl+g generate random · esc cancel"))
	return b.String()
}

func (m Model) viewSearchInput() string {
	return "filter: " + m.searchInput.View() + "\n\n" + helpStyle.Render("enter commit · esc clear and cancel")
}

func (m Model) viewVanityInput() string {
	var b strings.Builder
	b.WriteString("prefix: " + m.vanityPrefixInput.View() + "\n")
	b.WriteString("id:     " + m.vanityIDInput.View() + "\n")
	b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("workers: %d · timeout: %s · case-insensitive match", vanityThreadCount(), defaultVanityTimeout)))
	b.WriteString("\n" + helpStyle.Render("tab switch field · enter search · esc cancel"))
	return b.String()
}

func (m Model) viewVanityProgress() string {
	rate := 0.0
	if secs := m.vanityElapsed.Seconds(); secs > 0 {
		rate = float64(m.vanityAttempts) / secs
	}
	return fmt.Sprintf("%s searching for prefix %q\n\nattempts: %d\nelapsed:  %s\nrate:     %.0f/s\n\n%s",
		m.spin.View(),
		m.vanityPrefixInput.Value(),
		m.vanityAttempts,
		m.vanityElapsed.Round(1e7),
		rate,
		helpStyle.Render("esc cancel"))
}

func (m Model) viewConfirmDelete() string {
	return boxStyle.Render(fmt.Sprintf("delete wallet %q? this cannot be undone.\n\ny confirm · any other key cancels", m.deleteID))
}

func (m Model) viewBatchMenu() string {
	switch m.batchStep {
	case batchStepSelect:
		var b strings.Builder
		for i, rec := range m.filtered {
			mark := "[ ]"
			if m.batchSelected[rec.ID] {
				mark = "[x]"
			}
			line := mark + " " + rec.ID
			if i == m.cursor {
				b.WriteString(selStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("%d selected · space toggle · enter continue · esc cancel", m.selectedCount())))
		return b.String()
	case batchStepRecipient:
		return "recipient: " + m.batchRecipientInput.View() + "\namount:    " + m.batchAmountInput.View() +
			"\n\n" + helpStyle.Render("tab switch field · enter send · esc back")
	case batchStepRunning:
		return m.spin.View() + " sending transfers..."
	case batchStepDone:
		var b strings.Builder
		for _, line := range m.batchResults {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("enter/esc back to wallet list"))
		return b.String()
	}
	return ""
}

func recordByID(records []store.Record, id string) (store.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return store.Record{}, false
}
