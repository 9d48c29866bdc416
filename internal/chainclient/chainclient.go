// Package chainclient is a thin, non-core wrapper over an RPC
// endpoint: balance lookups and transaction submission. Per spec, this
// layer carries no original design — it is a few dozen lines
// classifying network failures as retryable or terminal and nothing
// more. SPL token enumeration and batch-transfer construction beyond
// the shell's one-wallet-at-a-time loop are explicitly out of scope.
package chainclient

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	werrors "solwallet/internal/errors"
	"solwallet/internal/wallet"
)

// Amount is a balance in lamports (1 SOL = 1e9 lamports), matching the
// unit the RPC endpoint itself reports.
type Amount uint64

// TxID is a base58-encoded transaction signature.
type TxID string

// Client is the interface the shell and batch-transfer menu consume.
// Every method returns within the caller-provided ctx's deadline.
type Client interface {
	Balance(ctx context.Context, public [32]byte) (Amount, error)
	Transfer(ctx context.Context, signer *wallet.Signer, recipient [32]byte, amount Amount) (TxID, error)
}

// solanaClient is the only implementation: a thin wrapper over
// gagliardetto/solana-go's JSON-RPC client.
type solanaClient struct {
	rpc *rpc.Client
}

// New returns a Client talking to the given RPC endpoint (e.g.
// rpc.MainNetBeta_RPC or a local validator URL).
func New(endpoint string) Client {
	return &solanaClient{rpc: rpc.New(endpoint)}
}

func (c *solanaClient) Balance(ctx context.Context, public [32]byte) (Amount, error) {
	pub := solana.PublicKeyFromBytes(public[:])
	out, err := c.rpc.GetBalance(ctx, pub, rpc.CommitmentFinalized)
	if err != nil {
		return 0, classify(err)
	}
	return Amount(out.Value), nil
}

func (c *solanaClient) Transfer(ctx context.Context, signer *wallet.Signer, recipient [32]byte, amount Amount) (TxID, error) {
	latest, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", classify(err)
	}

	from := solana.PublicKeyFromBytes(signer.Public()[:])
	to := solana.PublicKeyFromBytes(recipient[:])

	instruction := solana.NewInstruction(
		solana.SystemProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(from, true, true),
			solana.NewAccountMeta(to, true, false),
		},
		buildTransferData(uint64(amount)),
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		latest.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return "", classify(err)
	}

	// Signed through our own Signer rather than gagliardetto's
	// PrivateKey callback: the seed never leaves the wallet package.
	msgBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		return "", classify(err)
	}
	var sigBytes solana.Signature
	copy(sigBytes[:], signer.Sign(msgBytes))
	tx.Signatures = []solana.Signature{sigBytes}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{})
	if err != nil {
		return "", classify(err)
	}
	return TxID(sig.String()), nil
}

// buildTransferData encodes a System Program Transfer instruction:
// 4-byte little-endian discriminant (2) followed by an 8-byte
// little-endian lamport amount.
func buildTransferData(lamports uint64) []byte {
	data := make([]byte, 12)
	data[0] = 2
	for i := 0; i < 8; i++ {
		data[4+i] = byte(lamports >> (8 * i))
	}
	return data
}

// classify marks JSON-RPC error responses as terminal
// (ErrChainTerminal) and every other failure, including context
// deadline or cancellation, as retryable (ErrTimedOut).
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return werrors.Wrap(werrors.ErrTimedOut, err.Error())
	}
	var rpcErr *rpc.JsonRpcError
	if errors.As(err, &rpcErr) {
		// RPC-level errors (bad request, invalid account, etc.) are
		// terminal: retrying the same request will not help.
		return werrors.Wrap(werrors.ErrChainTerminal, err.Error())
	}
	// Anything else (connection reset, DNS failure, timeout below the
	// RPC layer) is presumed transient.
	return werrors.Wrap(werrors.ErrTimedOut, err.Error())
}
