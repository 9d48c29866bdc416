package shell

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"solwallet/internal/chainclient"
	"solwallet/internal/store"
	"solwallet/internal/vanity"
)

// statusLevel classifies a status-line message.
type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)

// statusDismissAfter is how long a status message stays visible before
// auto-dismissing, per spec's "≈5s" guidance.
const statusDismissAfter = 5 * time.Second

type statusMsg struct {
	level statusLevel
	text  string
	seq   int
}

// statusExpiredMsg clears the status line once seq still matches the
// currently displayed message (a newer status may have already
// replaced it).
type statusExpiredMsg struct {
	seq int
}

// listLoadedMsg carries a freshly reloaded wallet list from the store.
type listLoadedMsg struct {
	records []store.Record
	err     error
}

// importResultMsg is the outcome of an AddWalletInput import.
type importResultMsg struct {
	id  string
	err error
}

// deleteResultMsg is the outcome of a ConfirmDelete deletion.
type deleteResultMsg struct {
	id  string
	err error
}

// scanResultMsg carries candidate keypair file paths discovered by the
// filesystem scanner, offered as quick picks in AddWalletInput.
type scanResultMsg struct {
	paths []string
	err   error
}

// vanityProgressMsg is emitted on the timer cadence while a vanity
// search is running.
type vanityProgressMsg struct {
	attempts int64
	elapsed  time.Duration
	gen      int
}

// vanityOutcomeMsg is the final result of a vanity search.
type vanityOutcomeMsg struct {
	outcome vanity.Outcome
	err     error
	gen     int
}

// balanceMsg reports one wallet's fetched balance, or that the fetch
// failed — a failure here never corrupts the store and is only ever
// surfaced as "(unavailable)" in the detail view.
type balanceMsg struct {
	id      string
	amount  chainclient.Amount
	fetched bool
}

func expireStatusAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

func loadListCmd(m *Model) tea.Cmd {
	return func() tea.Msg {
		records, err := m.manager.List()
		return listLoadedMsg{records: records, err: err}
	}
}

func importCmd(m *Model, path, id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.manager.Import(path, id)
		return importResultMsg{id: id, err: err}
	}
}

func createRandomCmd(m *Model, id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.manager.CreateRandom(id)
		return importResultMsg{id: id, err: err}
	}
}

func deleteCmd(m *Model, id string) tea.Cmd {
	return func() tea.Msg {
		err := m.manager.Delete(id)
		return deleteResultMsg{id: id, err: err}
	}
}

func scanCmd(root string) tea.Cmd {
	return func() tea.Msg {
		paths, _, err := scanForCandidates(root)
		return scanResultMsg{paths: paths, err: err}
	}
}

func balanceCmd(m *Model, id string, public [32]byte) tea.Cmd {
	return func() tea.Msg {
		if m.chain == nil {
			return balanceMsg{id: id, fetched: false}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		amount, err := m.chain.Balance(ctx, public)
		if err != nil {
			return balanceMsg{id: id, fetched: false}
		}
		return balanceMsg{id: id, amount: amount, fetched: true}
	}
}

// startVanity and waitVanity bridge the vanity engine's
// callback/goroutine-based API into bubbletea's message-polling model:
// Search runs on its own goroutine, reporting progress through a
// buffered channel that a small pump command drains one message at a
// time, re-arming itself until the channel closes.
type vanitySession struct {
	progress chan vanityProgressMsg
	outcome  chan vanityOutcomeMsg
	cancel   context.CancelFunc
	gen      int
}

func startVanity(prefix string, caseInsensitive bool, threads int, timeout time.Duration, gen int) *vanitySession {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &vanitySession{
		progress: make(chan vanityProgressMsg, 8),
		outcome:  make(chan vanityOutcomeMsg, 1),
		cancel:   cancel,
		gen:      gen,
	}

	go func() {
		out, err := vanity.Search(ctx, vanity.Options{
			Prefix:          prefix,
			CaseInsensitive: caseInsensitive,
			Threads:         threads,
			Timeout:         timeout,
			ProgressEvery:   150 * time.Millisecond,
			OnProgress: func(attempts int64, elapsed time.Duration) {
				select {
				case sess.progress <- vanityProgressMsg{attempts: attempts, elapsed: elapsed, gen: gen}:
				default:
				}
			},
		})
		sess.outcome <- vanityOutcomeMsg{outcome: out, err: err, gen: gen}
		close(sess.progress)
	}()

	return sess
}

func waitVanity(sess *vanitySession) tea.Cmd {
	return func() tea.Msg {
		select {
		case p, ok := <-sess.progress:
			if ok {
				return p
			}
			return <-sess.outcome
		case o := <-sess.outcome:
			return o
		}
	}
}
