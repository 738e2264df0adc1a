package ledger

// BlockEpoch carries the height of a newly observed block. It is the
// Ethereum-address-ledger analogue of lnd's chainntfs.BlockEpoch, pared
// down to the one field this system's block-height polling needs.
type BlockEpoch struct {
	Height uint64
}

// BlockEpochEvent is a stream of block epoch notifications, shaped like
// chainntfs.BlockEpochEvent. Nothing in this module produces one: Client has
// no subscription method and Simulated never sends on Epochs, so callers
// that need the block height poll CurrentBlock.
type BlockEpochEvent struct {
	Epochs chan BlockEpoch
}
