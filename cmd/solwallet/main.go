// solwallet is a local, terminal-oriented manager for Solana-style
// Ed25519 keypairs: it discovers candidate keypair files on disk,
// validates them, stores their secret material in an
// authenticated-encrypted local store whose master key is held by the
// operating system's credential service, and lets the user browse,
// create, and delete wallets through a text-mode interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"solwallet/internal/chainclient"
	"solwallet/internal/credential"
	werrors "solwallet/internal/errors"
	wlog "solwallet/internal/log"
	"solwallet/internal/shell"
	"solwallet/internal/store"
	"solwallet/internal/wallet"
)

// version is set at build time via -ldflags, matching the teacher's
// main.go convention; "dev" otherwise.
var version = "dev"

// Exit codes for the two fatal startup conditions spec §7 names;
// everything else the shell absorbs into a status-line message and
// keeps running.
const (
	exitOK                      = 0
	exitCredentialUnavailable   = 1
	exitStoreCorrupt            = 2
	exitFatal                   = 3
)

const (
	configDirEnvVar = "SOLWALLET_CONFIG_DIR"
	appDirName      = "solwallet"
	storeFileName   = "wallets.json"
)

var (
	flagKeyringService string
	flagLogLevel       string
	flagRPCEndpoint    string
	flagScanRoot       string
)

func main() {
	root := &cobra.Command{
		Use:     "solwallet",
		Short:   "Manage Solana-style Ed25519 wallets from the terminal",
		Version: version,
		RunE:    run,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.Flags().StringVar(&flagKeyringService, "keyring-service", "", "override the OS credential service name (default: solwallet)")
	root.Flags().StringVar(&flagLogLevel, "log-level", "", "enable logging to stderr at this level: debug, info, warn, error")
	root.Flags().StringVar(&flagRPCEndpoint, "rpc-endpoint", "", "Solana RPC endpoint for balance lookups and transfers (omit to browse offline)")
	root.Flags().StringVar(&flagScanRoot, "scan-root", "", "directory to offer quick-pick keypair files from when adding a wallet (default: $HOME)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagLogLevel != "" {
		level, err := parseLogLevel(flagLogLevel)
		if err != nil {
			return err
		}
		wlog.SetLogger(wlog.NewSimpleLogger(os.Stderr, level))
	}

	storePath, err := resolveStorePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "solwallet: %v\n", err)
		os.Exit(exitFatal)
	}

	custodian := resolveCustodian()
	masterKey, err := custodian.Acquire()
	if err != nil {
		fmt.Fprintln(os.Stderr, "solwallet: credential service unavailable; cannot unlock the wallet store")
		os.Exit(exitCredentialUnavailable)
	}

	st := store.Open(storePath, masterKey)

	// A fatal StoreCorrupt must surface before the shell ever starts,
	// per spec §7 — list() is enough to force a load without
	// decrypting anything.
	if _, err := st.List(); err != nil && werrors.IsCorrupt(err) {
		fmt.Fprintln(os.Stderr, "solwallet: wallet store is corrupt; move it aside to start fresh")
		os.Exit(exitStoreCorrupt)
	}

	manager := wallet.New(st)

	var chain chainclient.Client
	if flagRPCEndpoint != "" {
		chain = chainclient.New(flagRPCEndpoint)
	}

	scanRoot := flagScanRoot
	if scanRoot == "" {
		if home, err := os.UserHomeDir(); err == nil {
			scanRoot = home
		}
	}

	if err := shell.Run(manager, chain, scanRoot); err != nil {
		return err
	}
	return nil
}

func resolveCustodian() *credential.Custodian {
	if flagKeyringService != "" {
		return credential.NewWithService(flagKeyringService)
	}
	return credential.New()
}

func resolveStorePath() (string, error) {
	if dir := os.Getenv(configDirEnvVar); dir != "" {
		return filepath.Join(dir, appDirName, storeFileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", werrors.NewFileError("resolve-config-dir", "", err)
	}
	return filepath.Join(dir, appDirName, storeFileName), nil
}

func parseLogLevel(s string) (wlog.Level, error) {
	switch s {
	case "debug":
		return wlog.LevelDebug, nil
	case "info":
		return wlog.LevelInfo, nil
	case "warn":
		return wlog.LevelWarn, nil
	case "error":
		return wlog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", s)
	}
}
