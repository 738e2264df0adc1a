package chantypes

// ChannelID is the 32-byte identifier the ledger assigns a channel at open
// time.
type ChannelID [32]byte

// Channel is the off-chain state of a single bidirectional payment channel,
// as held by one of its two participants (spec §3). Both participants hold
// their own Channel value; nothing here is shared memory between them.
type Channel struct {
	ID             ChannelID
	SequenceNumber U256
	Balance0       U256
	Balance1       U256

	// Accrual is the sum of incoming payments not yet observed by the
	// user via check_accrual (spec §4.1).
	Accrual U256

	// IAmZero is set once at open time and never changes afterward: it
	// records whether the local account is address_0 in this channel.
	IAmZero bool
}

// NewChannel constructs the Channel a fresh Open state transitions into,
// with sequence_number and accrual both starting at zero, as the original
// Rust source's Channel::new also establishes (see SPEC_FULL.md §4.1).
func NewChannel(id ChannelID, balance0, balance1 U256, iAmZero bool) *Channel {
	return &Channel{
		ID:             id,
		SequenceNumber: Zero,
		Balance0:       balance0,
		Balance1:       balance1,
		Accrual:        Zero,
		IAmZero:        iAmZero,
	}
}

// Total returns balance_0 + balance_1, the channel's total deposit. This is
// a read-only convenience carried over from the original source's
// Channel::total_balance (SPEC_FULL.md §4.1).
func (c *Channel) Total() U256 {
	return c.Balance0.Add(c.Balance1)
}

// MyBalance returns the local account's current off-chain balance.
func (c *Channel) MyBalance() U256 {
	if c.IAmZero {
		return c.Balance0
	}
	return c.Balance1
}

// TheirBalance returns the counterparty's current off-chain balance.
func (c *Channel) TheirBalance() U256 {
	if c.IAmZero {
		return c.Balance1
	}
	return c.Balance0
}

// Snapshot is an immutable, read-only copy of a Channel, safe to hand to
// callers outside the lock that guards the live value (spec §4.4).
type Snapshot struct {
	ID             ChannelID
	SequenceNumber U256
	Balance0       U256
	Balance1       U256
	Accrual        U256
	IAmZero        bool
}

// Snapshot copies c's fields into a Snapshot.
func (c *Channel) Snapshot() Snapshot {
	return Snapshot{
		ID:             c.ID,
		SequenceNumber: c.SequenceNumber,
		Balance0:       c.Balance0,
		Balance1:       c.Balance1,
		Accrual:        c.Accrual,
		IAmZero:        c.IAmZero,
	}
}

// NewChannelTx is a proposal to open a channel, funded by deposits from one
// or both parties (spec §3). Per the canonical ordering invariant,
// Address0 must be strictly less than Address1.
type NewChannelTx struct {
	Address0             Address
	Address1             Address
	Balance0              U256
	Balance1              U256
	Expiration            uint64 // block number
	SettlingPeriodLength  uint64

	Signature0 *Signature
	Signature1 *Signature
}

// ReDrawTx amends the deposit of an already-open channel (spec §3). OldBalance0/1
// must match the channel's current balances; SequenceNumber must exceed the
// channel's current sequence number.
type ReDrawTx struct {
	ChannelID      ChannelID
	SequenceNumber U256
	OldBalance0    U256
	OldBalance1    U256
	NewBalance0    U256
	NewBalance1    U256
	Expiration     uint64

	Signature0 *Signature
	Signature1 *Signature
}

// UpdateTx is a signed off-chain payment (spec §3). The payer populates its
// own signature slot; the receiver verifies the opposite slot.
type UpdateTx struct {
	ChannelID      ChannelID
	SequenceNumber U256
	Balance0       U256
	Balance1       U256

	Signature0 *Signature
	Signature1 *Signature
}

// SignatureSlot returns a pointer to the signature slot belonging to the
// role identified by iAmZero, so callers can populate or read "my" slot or
// "their" slot without a switch at every call site.
func (u *UpdateTx) SignatureSlot(iAmZero bool) **Signature {
	if iAmZero {
		return &u.Signature0
	}
	return &u.Signature1
}

// SignatureSlot mirrors UpdateTx.SignatureSlot for NewChannelTx.
func (tx *NewChannelTx) SignatureSlot(iAmZero bool) **Signature {
	if iAmZero {
		return &tx.Signature0
	}
	return &tx.Signature1
}

// SignatureSlot mirrors UpdateTx.SignatureSlot for ReDrawTx.
func (tx *ReDrawTx) SignatureSlot(iAmZero bool) **Signature {
	if iAmZero {
		return &tx.Signature0
	}
	return &tx.Signature1
}
