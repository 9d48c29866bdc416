package shell

// viewState is the Shell Coordinator's state machine, enumerated per
// spec §4.7. New views are added by extending this enum and the
// transition table in update.go, not by introducing a callback tree.
type viewState int

const (
	stateWalletList viewState = iota
	stateWalletDetail
	stateHelp
	stateAddWalletInput
	stateSearchInput
	stateVanityInput
	stateVanityProgress
	stateConfirmDelete
	stateBatchMenu
	stateExiting
)

func (s viewState) String() string {
	switch s {
	case stateWalletList:
		return "Wallets"
	case stateWalletDetail:
		return "Wallet"
	case stateHelp:
		return "Help"
	case stateAddWalletInput:
		return "Add Wallet"
	case stateSearchInput:
		return "Search"
	case stateVanityInput:
		return "Vanity Search"
	case stateVanityProgress:
		return "Searching..."
	case stateConfirmDelete:
		return "Confirm Delete"
	case stateBatchMenu:
		return "Batch Transfer"
	case stateExiting:
		return "Exiting"
	default:
		return "Unknown"
	}
}
