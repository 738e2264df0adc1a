package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/althea-net/guac/chantypes"
)

var _ Client = (*Simulated)(nil)

// Simulated is an in-memory Client used by package tests and by local
// tooling in place of a real ledger connection, the way htlcswitch's
// mockServer stands in for a real peer in lnd's package tests.
type Simulated struct {
	mu sync.Mutex

	block uint64

	// openChannels maps the canonical (a0, a1) pair to the channel id the
	// ledger assigned it.
	openChannels map[[2]chantypes.Address]chantypes.ChannelID

	// reDraws records the highest confirmed sequence number per channel.
	reDraws map[chantypes.ChannelID]chantypes.U256

	nextID uint64
}

// NewSimulated returns a Simulated ledger starting at the given block
// height.
func NewSimulated(startBlock uint64) *Simulated {
	return &Simulated{
		block:        startBlock,
		openChannels: make(map[[2]chantypes.Address]chantypes.ChannelID),
		reDraws:      make(map[chantypes.ChannelID]chantypes.U256),
	}
}

// AdvanceBlock moves the simulated chain tip forward by one block, the way
// a real ledger's block height advances while a transaction is pending.
func (s *Simulated) AdvanceBlock() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block++
	return s.block
}

func (s *Simulated) CurrentBlock(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.block, nil
}

func pairKey(a0, a1 chantypes.Address) [2]chantypes.Address {
	return [2]chantypes.Address{a0, a1}
}

func (s *Simulated) DepositThenNewChannel(ctx context.Context, amount chantypes.U256, tx *chantypes.NewChannelTx) (chantypes.ChannelID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(tx.Address0, tx.Address1)
	if _, ok := s.openChannels[key]; ok {
		return chantypes.ChannelID{}, fmt.Errorf("ledger: channel already open between %x and %x", tx.Address0, tx.Address1)
	}

	var id chantypes.ChannelID
	s.nextID++
	id[31] = byte(s.nextID)
	id[30] = byte(s.nextID >> 8)

	s.openChannels[key] = id
	s.reDraws[id] = chantypes.Zero

	return id, nil
}

func (s *Simulated) DepositThenReDraw(ctx context.Context, amount chantypes.U256, tx *chantypes.ReDrawTx) error {
	return s.applyReDraw(tx)
}

func (s *Simulated) ReDrawThenWithdraw(ctx context.Context, amount chantypes.U256, tx *chantypes.ReDrawTx) error {
	return s.applyReDraw(tx)
}

func (s *Simulated) applyReDraw(tx *chantypes.ReDrawTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed, ok := s.reDraws[tx.ChannelID]
	if !ok {
		return fmt.Errorf("ledger: unknown channel %x", tx.ChannelID)
	}
	if tx.SequenceNumber.Cmp(confirmed) <= 0 {
		return fmt.Errorf("ledger: stale redraw sequence for channel %x", tx.ChannelID)
	}

	s.reDraws[tx.ChannelID] = tx.SequenceNumber
	return nil
}

func (s *Simulated) CheckForOpen(ctx context.Context, a0, a1 chantypes.Address) (chantypes.ChannelID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.openChannels[pairKey(a0, a1)]
	return id, ok, nil
}

func (s *Simulated) CheckForReDraw(ctx context.Context, id chantypes.ChannelID, sequenceNumber chantypes.U256) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed, ok := s.reDraws[id]
	if !ok {
		return fmt.Errorf("ledger: unknown channel %x", id)
	}
	if confirmed.Cmp(sequenceNumber) < 0 {
		return fmt.Errorf("ledger: redraw at sequence %s not yet confirmed for channel %x", sequenceNumber, id)
	}
	return nil
}
