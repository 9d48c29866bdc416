package shell

import (
	"context"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"solwallet/internal/chainclient"
	"solwallet/internal/store"
	"solwallet/internal/wallet"
)

// defaultScanDepth and defaultScanResults bound the quick-pick scan
// offered from AddWalletInput, per spec §4.2.
const (
	defaultScanDepth   = 3
	defaultScanResults = 20
)

// defaultVanityTimeout is how long a vanity search runs before
// surfacing TimedOut, absent any other signal from the user.
const defaultVanityTimeout = 2 * time.Minute

// addWalletField and vanityField index the fields of their respective
// small forms, cycled with Tab.
type addWalletField int

const (
	addFieldID addWalletField = iota
	addFieldPath
)

type vanityField int

const (
	vanityFieldPrefix vanityField = iota
	vanityFieldID
)

// Model is the bubbletea model driving the entire interactive shell: a
// single-threaded cooperative event loop (§5) holding the view state
// machine of §4.7.
type Model struct {
	manager *wallet.Manager
	chain   chainclient.Client
	scanRoot string

	state viewState

	width, height int

	records  []store.Record
	filtered []store.Record
	cursor   int

	filterQuery string
	searchInput textinput.Model

	addField    addWalletField
	addIDInput  textinput.Model
	addPathInput textinput.Model
	scanPaths   []string

	detailID string
	balances  map[string]balanceView

	deleteID string

	vanityField     vanityField
	vanityPrefixInput textinput.Model
	vanityIDInput     textinput.Model
	vanityCaseFold    bool

	vanitySess    *vanitySession
	vanityGen     int
	vanityAttempts int64
	vanityElapsed time.Duration
	spin          spinner.Model

	batchStep           batchStep
	batchField          int
	batchRecipientInput textinput.Model
	batchAmountInput    textinput.Model
	batchSelected       map[string]bool
	batchResults        []string

	statusLevel statusLevel
	statusText  string
	statusSeq   int

	quitting bool
}

// balanceView is the shell's cached view of an external chain-client
// balance lookup: fetched reports whether the most recent response
// succeeded. A failed fetch replaces any earlier value with an
// unavailable marker rather than erroring the whole view, per spec
// §2's "failures there must never corrupt C4" and §6's tolerance for
// a balance fetch that never returns.
type balanceView struct {
	amount  chainclient.Amount
	fetched bool
}

// New returns a Model ready to drive manager's wallets through the
// interactive shell. chain may be nil, in which case balance
// enrichment and batch transfers are unavailable and the shell
// degrades to id/public-key browsing only.
func New(manager *wallet.Manager, chain chainclient.Client, scanRoot string) Model {
	search := textinput.New()
	search.Placeholder = "filter by id..."
	search.CharLimit = 64

	addID := textinput.New()
	addID.Placeholder = "wallet id"
	addID.CharLimit = 64

	addPath := textinput.New()
	addPath.Placeholder = "path to keypair.json"
	addPath.CharLimit = 512

	vanPrefix := textinput.New()
	vanPrefix.Placeholder = "base58 prefix"
	vanPrefix.CharLimit = 10

	vanID := textinput.New()
	vanID.Placeholder = "wallet id to save as"
	vanID.CharLimit = 64

	batchRecipient := textinput.New()
	batchRecipient.Placeholder = "recipient public key (base58)"
	batchRecipient.CharLimit = 64

	batchAmount := textinput.New()
	batchAmount.Placeholder = "amount (lamports)"
	batchAmount.CharLimit = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		manager:           manager,
		chain:             chain,
		scanRoot:          scanRoot,
		state:             stateWalletList,
		searchInput:       search,
		addIDInput:        addID,
		addPathInput:      addPath,
		vanityPrefixInput:   vanPrefix,
		vanityIDInput:       vanID,
		vanityCaseFold:      true,
		batchRecipientInput: batchRecipient,
		batchAmountInput:    batchAmount,
		spin:                sp,
		balances:            map[string]balanceView{},
		batchSelected:       map[string]bool{},
	}
}

// Init loads the wallet list on startup; nothing else blocks before
// the shell's first frame.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadListCmd(&m), m.spin.Tick)
}

// visibleStatus returns the status line to display, honoring the
// ≈5s auto-dismiss window per spec §4.7.
func (m Model) visibleStatus() (statusLevel, string, bool) {
	if m.statusText == "" {
		return statusInfo, "", false
	}
	return m.statusLevel, m.statusText, true
}

func (m *Model) setStatusNow(level statusLevel, text string) tea.Cmd {
	m.statusSeq++
	m.statusLevel = level
	m.statusText = text
	seq := m.statusSeq
	return expireStatusAfter(statusDismissAfter, seq)
}

// applyFilter recomputes m.filtered from m.records and m.filterQuery
// using a case-folded substring match against id, per spec §4.7.
func (m *Model) applyFilter() {
	if m.filterQuery == "" {
		m.filtered = m.records
		return
	}
	q := strings.ToLower(m.filterQuery)
	out := make([]store.Record, 0, len(m.records))
	for _, r := range m.records {
		if strings.Contains(strings.ToLower(r.ID), q) {
			out = append(out, r)
		}
	}
	m.filtered = out
	if m.cursor >= len(m.filtered) {
		m.cursor = max0(len(m.filtered) - 1)
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func vanityThreadCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

func scanForCandidates(root string) ([]string, int, error) {
	paths, err := quickScan(context.Background(), root)
	if err != nil {
		return nil, 0, err
	}
	return paths, len(paths), nil
}
