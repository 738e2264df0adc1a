// Package channel implements the pure off-chain balance engine for a single
// bidirectional payment channel (spec §4.1). It has no knowledge of peers,
// the ledger, or the lifecycle state machine that wraps it — every
// operation here is a deterministic function of a *chantypes.Channel and
// its arguments, which is what makes the dual "my view" / "their view"
// packet-loss tolerance described in spec §4.1 and §9 possible: absolute
// balances in every UpdateTx make the latest accepted update fully
// self-describing, so a single Channel value (not a pair of speculative
// states) is enough to stay correct under dropped messages.
package channel

import "github.com/althea-net/guac/chantypes"

// MakePayment advances ch by amount, paid by the local account to its
// counterparty. If overrideSeq is non-nil, the resulting sequence number is
// overrideSeq+1 (used by counterparty.MakePayment's single stale-sequence
// retry, spec §4.2); otherwise it is ch.SequenceNumber+1.
//
// On success, ch's balances and sequence number are committed in place and
// the returned UpdateTx reflects the new state with both signature slots
// empty, ready for the caller to sign.
func MakePayment(ch *chantypes.Channel, amount chantypes.U256, overrideSeq *chantypes.U256) (*chantypes.UpdateTx, error) {
	base := ch.SequenceNumber
	if overrideSeq != nil {
		base = *overrideSeq
	}
	newSeq := base.Add(chantypes.U256From(1))

	mine := ch.MyBalance()
	theirs := ch.TheirBalance()

	if amount.GreaterThan(mine) {
		return nil, NotEnough{What: "payment amount exceeds current balance"}
	}

	newMine, err := mine.Sub(amount)
	if err != nil {
		return nil, NotEnough{What: "payment amount exceeds current balance"}
	}
	newTheirs := theirs.Add(amount)

	var newB0, newB1 chantypes.U256
	if ch.IAmZero {
		newB0, newB1 = newMine, newTheirs
	} else {
		newB0, newB1 = newTheirs, newMine
	}

	ch.Balance0 = newB0
	ch.Balance1 = newB1
	ch.SequenceNumber = newSeq

	return &chantypes.UpdateTx{
		ChannelID:      ch.ID,
		SequenceNumber: newSeq,
		Balance0:       newB0,
		Balance1:       newB1,
	}, nil
}

// ReceivePayment applies an incoming UpdateTx to ch.
//
// If update's sequence number is not greater than ch's, this is a stale or
// duplicate delivery (the peer's ACK of a prior update was lost, and it
// resent); ReceivePayment does not mutate state and returns ch's current
// sequence number so the caller can relay it back as a retry hint
// (spec §4.1, the UpdateTooOld carry-through).
//
// Otherwise ReceivePayment validates that the conserved total is unchanged
// and that the receiver's own balance has not decreased, applies the
// update, adds the receiver's balance increase to Accrual, and returns nil.
func ReceivePayment(ch *chantypes.Channel, update *chantypes.UpdateTx) (*chantypes.U256, error) {
	if update.SequenceNumber.Cmp(ch.SequenceNumber) <= 0 {
		seq := ch.SequenceNumber
		return &seq, nil
	}

	oldTotal := ch.Balance0.Add(ch.Balance1)
	newTotal := update.Balance0.Add(update.Balance1)
	if !oldTotal.Equal(newTotal) {
		return nil, Forbidden{Message: "update changes the channel's conserved total"}
	}

	myOld := ch.MyBalance()
	var myNew chantypes.U256
	if ch.IAmZero {
		myNew = update.Balance0
	} else {
		myNew = update.Balance1
	}
	if myNew.Cmp(myOld) < 0 {
		return nil, Forbidden{Message: "update decreases the receiver's own balance"}
	}

	increase, err := myNew.Sub(myOld)
	if err != nil {
		return nil, Forbidden{Message: "update decreases the receiver's own balance"}
	}

	ch.Balance0 = update.Balance0
	ch.Balance1 = update.Balance1
	ch.SequenceNumber = update.SequenceNumber
	ch.Accrual = ch.Accrual.Add(increase)

	return nil, nil
}

// CheckAccrual returns ch's current accrual and resets it to zero. Two
// calls in immediate succession therefore yield (n, 0) for some n, per the
// idempotence property in spec §8.
func CheckAccrual(ch *chantypes.Channel) chantypes.U256 {
	accrual := ch.Accrual
	ch.Accrual = chantypes.Zero
	return accrual
}
