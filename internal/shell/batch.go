package shell

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mr-tron/base58"

	"solwallet/internal/chainclient"
	"solwallet/internal/wallet"
)

// batchStep is BatchMenu's internal sub-state: select wallets, enter a
// shared recipient and amount, run the sequential transfer loop, show
// results. This is a supplement beyond spec §4.7's enumerated states —
// spec.md §1 excludes batch-transfer *construction* as carrying no
// original design, so this stays the thin per-wallet loop SPEC_FULL.md
// describes, nothing more.
type batchStep int

const (
	batchStepSelect batchStep = iota
	batchStepRecipient
	batchStepRunning
	batchStepDone
)

// batchResultMsg carries one line of outcome per selected wallet once
// the sequential transfer loop finishes.
type batchResultMsg struct {
	lines []string
}

// batchTransferCmd runs Transfer once per id in ids, sequentially, and
// collects a human-readable result line for each — a failure against
// one wallet never aborts the remaining transfers.
func batchTransferCmd(manager *wallet.Manager, chain chainclient.Client, ids []string, recipient [32]byte, amount chainclient.Amount) tea.Cmd {
	return func() tea.Msg {
		lines := make([]string, 0, len(ids))
		for _, id := range ids {
			lines = append(lines, transferOne(manager, chain, id, recipient, amount))
		}
		return batchResultMsg{lines: lines}
	}
}

func transferOne(manager *wallet.Manager, chain chainclient.Client, id string, recipient [32]byte, amount chainclient.Amount) string {
	signer, err := manager.Signer(id)
	if err != nil {
		return id + ": " + err.Error()
	}
	defer signer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	txid, err := chain.Transfer(ctx, signer, recipient, amount)
	if err != nil {
		return id + ": " + err.Error()
	}
	return id + ": " + string(txid)
}

// parseBatchInputs validates the recipient (Base58, 32 bytes) and
// amount (non-negative integer lamports) typed into BatchMenu's
// recipient form.
func parseBatchInputs(recipient, amountStr string) ([32]byte, chainclient.Amount, error) {
	var out [32]byte
	decoded, err := base58.Decode(recipient)
	if err != nil || len(decoded) != 32 {
		return out, 0, errInvalidRecipient
	}
	copy(out[:], decoded)

	lamports, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		return out, 0, errInvalidAmount
	}
	return out, chainclient.Amount(lamports), nil
}
