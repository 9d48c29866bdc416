package shell

import (
	tea "github.com/charmbracelet/bubbletea"

	"solwallet/internal/chainclient"
	"solwallet/internal/wallet"
)

// Run starts the full-screen interactive shell and blocks until the
// user quits (Exiting) or a fatal error occurs. chain may be nil.
func Run(manager *wallet.Manager, chain chainclient.Client, scanRoot string) error {
	m := New(manager, chain, scanRoot)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
