// Package ledger defines the abstract capability this system uses to reach
// the on-chain settlement contract (spec §2, §6). The contract itself —
// bytecode, event semantics — is out of scope; callers depend only on the
// Client interface below, mirroring the way
// ethersphere-go-ethereum/contracts/swap.Backend wraps bind.ContractBackend
// behind a narrow, protocol-specific surface instead of exposing the raw
// chain client.
package ledger

import (
	"context"

	"github.com/althea-net/guac/chantypes"
)

// Client is the abstract LedgerClient capability (spec §6). Every method
// may block (submitting or waiting on a transaction) and every method may
// fail; callers hold their per-counterparty lock across the call, per
// spec §5.
type Client interface {
	// CurrentBlock returns the current block height.
	CurrentBlock(ctx context.Context) (uint64, error)

	// DepositThenNewChannel deposits amount and opens a channel described
	// by tx in a single atomic on-chain operation, returning the assigned
	// channel id.
	DepositThenNewChannel(ctx context.Context, amount chantypes.U256, tx *chantypes.NewChannelTx) (chantypes.ChannelID, error)

	// DepositThenReDraw deposits amount against an already-open channel
	// and applies tx's new balances.
	DepositThenReDraw(ctx context.Context, amount chantypes.U256, tx *chantypes.ReDrawTx) error

	// ReDrawThenWithdraw withdraws amount from an already-open channel
	// and applies tx's new balances.
	ReDrawThenWithdraw(ctx context.Context, amount chantypes.U256, tx *chantypes.ReDrawTx) error

	// CheckForOpen reports the channel id the ledger has on record between
	// a0 and a1, if any.
	CheckForOpen(ctx context.Context, a0, a1 chantypes.Address) (chantypes.ChannelID, bool, error)

	// CheckForReDraw confirms that a redraw at sequenceNumber has landed
	// for the given channel.
	CheckForReDraw(ctx context.Context, id chantypes.ChannelID, sequenceNumber chantypes.U256) error
}
