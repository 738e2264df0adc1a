// Package counterparty implements the per-counterparty lifecycle state
// machine (spec §4.2): the New/Creating/OtherCreating/Open/ReDrawing/
// OtherReDrawing tagged union, the transitions between its variants, and
// the dispatch into package channel for the off-chain payment engine once
// a channel is Open. A Counterparty value is only ever touched while its
// owning store.Guard is held (spec §4.4, §5) — nothing in this package
// takes its own lock.
package counterparty

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/channel"
	"github.com/althea-net/guac/ledger"
)

// PeerClient is the outbound half of PeerApi (spec §6): the calls this
// account makes against its counterparty's peer endpoint. It is declared
// here, at the point of use, rather than in package peerapi, so that
// peerapi's concrete HTTP client can satisfy it without counterparty
// importing peerapi (spec §9, "no import cycle between the state machine
// and its transport").
type PeerClient interface {
	ProposeChannel(ctx context.Context, tx *chantypes.NewChannelTx) (*chantypes.NewChannelTx, error)
	ProposeReDraw(ctx context.Context, tx *chantypes.ReDrawTx) (*chantypes.ReDrawTx, error)
	NotifyChannelOpened(ctx context.Context, id chantypes.ChannelID) error
	NotifyReDraw(ctx context.Context, id chantypes.ChannelID, sequenceNumber chantypes.U256) error
	ReceivePayment(ctx context.Context, update *chantypes.UpdateTx) error
}

// Counterparty is one account's view of its relationship with a single
// peer: the current lifecycle State plus everything needed to drive
// transitions out of it.
type Counterparty struct {
	MyAddress    chantypes.Address
	PeerAddress  chantypes.Address
	ContractAddr chantypes.Address
	Key          *ecdsa.PrivateKey

	Ledger ledger.Client
	Peer   PeerClient

	state State
}

// New returns a fresh Counterparty in StateNew, with the address_0/
// address_1 role already decided by the canonical ordering (spec §4.2).
func New(myAddress, peerAddress, contractAddr chantypes.Address, key *ecdsa.PrivateKey, ledgerClient ledger.Client, peer PeerClient) *Counterparty {
	return &Counterparty{
		MyAddress:    myAddress,
		PeerAddress:  peerAddress,
		ContractAddr: contractAddr,
		Key:          key,
		Ledger:       ledgerClient,
		Peer:         peer,
		state:        StateNew{IAmZero: RoleIsZero(myAddress, peerAddress)},
	}
}

// State returns the current lifecycle state.
func (c *Counterparty) State() State { return c.state }

func wrongState(action string, current State, correct string) error {
	return WrongState{Action: action, Current: string(current.Kind()), Correct: correct}
}

// setState transitions to next, logging the Kind change the way peer.go's
// logWireMessage traces protocol events for a given peer.
func (c *Counterparty) setState(next State) {
	log.Debugf("counterparty %x: %s -> %s", c.PeerAddress, c.state.Kind(), next.Kind())
	c.state = next
}

func (c *Counterparty) sign(digest common.Hash) (chantypes.Signature, error) {
	return chantypes.Sign(digest, c.Key)
}

// --- local-user-initiated transitions ---

// FillChannel opens a new channel (from StateNew) or redraws an existing
// one upward (from StateOpen) by amount, proposing the transaction to the
// peer and waiting for its countersignature before submitting to the
// ledger (spec §4.2).
func (c *Counterparty) FillChannel(ctx context.Context, amount chantypes.U256) error {
	switch st := c.state.(type) {
	case StateNew:
		return c.proposeNewChannel(ctx, st, amount)
	case StateOpen:
		return c.proposeReDraw(ctx, st, amount, chantypes.Zero)
	case StateCreating, StateOtherCreating, StateReDrawing, StateOtherReDrawing:
		// A proposal is already in flight; this is a concurrent retry, not
		// a call from a state fill_channel can never proceed from (spec
		// §4.2, §8 scenario 6).
		return TryAgainLater{Action: "fill_channel"}
	default:
		return wrongState("fill_channel", c.state, "New or Open")
	}
}

// Withdraw redraws an open channel downward by amount (spec §4.2).
func (c *Counterparty) Withdraw(ctx context.Context, amount chantypes.U256) error {
	st, ok := c.state.(StateOpen)
	if !ok {
		return wrongState("withdraw", c.state, "Open")
	}
	return c.proposeReDraw(ctx, st, chantypes.Zero, amount)
}

func (c *Counterparty) proposeNewChannel(ctx context.Context, st StateNew, myDeposit chantypes.U256) error {
	var tx chantypes.NewChannelTx
	if st.IAmZero {
		tx.Address0, tx.Address1 = c.MyAddress, c.PeerAddress
		tx.Balance0, tx.Balance1 = myDeposit, chantypes.Zero
	} else {
		tx.Address0, tx.Address1 = c.PeerAddress, c.MyAddress
		tx.Balance0, tx.Balance1 = chantypes.Zero, myDeposit
	}

	block, err := c.Ledger.CurrentBlock(ctx)
	if err != nil {
		return Error{Message: "fetching current block: " + err.Error()}
	}
	tx.Expiration = block + defaultExpirationDelta
	tx.SettlingPeriodLength = requiredSettlingPeriod

	digest := tx.Digest(c.ContractAddr)
	mySig, err := c.sign(digest)
	if err != nil {
		return Error{Message: "signing proposal: " + err.Error()}
	}
	*tx.SignatureSlot(st.IAmZero) = &mySig

	c.setState(StateCreating{Tx: &tx, IAmZero: st.IAmZero})

	countersigned, err := c.Peer.ProposeChannel(ctx, &tx)
	if err != nil {
		c.state = st
		return err
	}
	if err := c.verifyCountersignature(countersigned, st.IAmZero); err != nil {
		c.state = st
		return err
	}

	id, err := c.Ledger.DepositThenNewChannel(ctx, myDeposit, countersigned)
	if err != nil {
		c.state = st
		return Error{Message: "ledger deposit_then_new_channel: " + err.Error()}
	}

	if err := c.Peer.NotifyChannelOpened(ctx, id); err != nil {
		return err
	}

	c.setState(StateOpen{Channel: chantypes.NewChannel(id, tx.Balance0, tx.Balance1, st.IAmZero)})
	return nil
}

func (c *Counterparty) proposeReDraw(ctx context.Context, st StateOpen, deposit, withdrawal chantypes.U256) error {
	ch := st.Channel

	var newMine chantypes.U256
	mine := ch.MyBalance()
	mine = mine.Add(deposit)
	var err error
	newMine, err = mine.Sub(withdrawal)
	if err != nil {
		return channel.NotEnough{What: "withdrawal exceeds balance plus deposit"}
	}

	var newB0, newB1 chantypes.U256
	if ch.IAmZero {
		newB0, newB1 = newMine, ch.TheirBalance()
	} else {
		newB0, newB1 = ch.TheirBalance(), newMine
	}

	block, err := c.Ledger.CurrentBlock(ctx)
	if err != nil {
		return Error{Message: "fetching current block: " + err.Error()}
	}

	tx := &chantypes.ReDrawTx{
		ChannelID:      ch.ID,
		SequenceNumber: ch.SequenceNumber.Add(chantypes.U256From(1)),
		OldBalance0:    ch.Balance0,
		OldBalance1:    ch.Balance1,
		NewBalance0:    newB0,
		NewBalance1:    newB1,
		Expiration:     block + defaultExpirationDelta,
	}

	digest := tx.Digest(c.ContractAddr)
	mySig, err := c.sign(digest)
	if err != nil {
		return Error{Message: "signing proposal: " + err.Error()}
	}
	*tx.SignatureSlot(ch.IAmZero) = &mySig

	c.setState(StateReDrawing{Channel: ch, Tx: tx})

	countersigned, err := c.Peer.ProposeReDraw(ctx, tx)
	if err != nil {
		c.state = st
		return err
	}
	if err := c.verifyReDrawCountersignature(countersigned, ch.IAmZero); err != nil {
		c.state = st
		return err
	}

	if !deposit.Equal(chantypes.Zero) {
		err = c.Ledger.DepositThenReDraw(ctx, deposit, countersigned)
	} else {
		err = c.Ledger.ReDrawThenWithdraw(ctx, withdrawal, countersigned)
	}
	if err != nil {
		c.state = st
		return Error{Message: "ledger redraw: " + err.Error()}
	}

	if err := c.Peer.NotifyReDraw(ctx, ch.ID, tx.SequenceNumber); err != nil {
		return err
	}

	ch.Balance0, ch.Balance1, ch.SequenceNumber = newB0, newB1, tx.SequenceNumber
	c.setState(StateOpen{Channel: ch})
	return nil
}

func (c *Counterparty) verifyCountersignature(tx *chantypes.NewChannelTx, iAmZero bool) error {
	theirSlot := *tx.SignatureSlot(!iAmZero)
	if theirSlot == nil {
		return Forbidden{Message: "peer did not countersign the channel proposal"}
	}
	signer, err := chantypes.Recover(tx.Digest(c.ContractAddr), *theirSlot)
	if err != nil {
		return Error{Message: "recovering countersignature: " + err.Error()}
	}
	if signer != c.PeerAddress {
		return Forbidden{Message: "countersignature does not recover to peer address"}
	}
	return nil
}

func (c *Counterparty) verifyReDrawCountersignature(tx *chantypes.ReDrawTx, iAmZero bool) error {
	theirSlot := *tx.SignatureSlot(!iAmZero)
	if theirSlot == nil {
		return Forbidden{Message: "peer did not countersign the redraw proposal"}
	}
	signer, err := chantypes.Recover(tx.Digest(c.ContractAddr), *theirSlot)
	if err != nil {
		return Error{Message: "recovering countersignature: " + err.Error()}
	}
	if signer != c.PeerAddress {
		return Forbidden{Message: "countersignature does not recover to peer address"}
	}
	return nil
}

// MakePayment sends amount to the peer over the currently open channel
// (spec §4.1, §4.2). On an UpdateTooOld rejection it retries exactly once
// at the sequence number the peer reports (spec §7). The live channel is
// only changed once the peer accepts the update.
func (c *Counterparty) MakePayment(ctx context.Context, amount chantypes.U256) error {
	st, ok := c.state.(StateOpen)
	if !ok {
		return wrongState("make_payment", c.state, "Open")
	}
	ch := st.Channel

	work := *ch
	update, err := channel.MakePayment(&work, amount, nil)
	if err != nil {
		return err
	}
	err = c.sendUpdate(ctx, &work, update)
	if tooOld, ok := err.(UpdateTooOld); ok {
		work = *ch
		retry, mkErr := channel.MakePayment(&work, amount, &tooOld.CorrectSeq)
		if mkErr != nil {
			return mkErr
		}
		err = c.sendUpdate(ctx, &work, retry)
	}
	if err != nil {
		return err
	}
	*ch = work
	return nil
}

func (c *Counterparty) sendUpdate(ctx context.Context, ch *chantypes.Channel, update *chantypes.UpdateTx) error {
	digest := update.Digest(c.ContractAddr)
	mySig, err := c.sign(digest)
	if err != nil {
		return Error{Message: "signing update: " + err.Error()}
	}
	*update.SignatureSlot(ch.IAmZero) = &mySig

	if err := c.Peer.ReceivePayment(ctx, update); err != nil {
		return err
	}
	return nil
}

// --- peer-initiated transitions ---

// HandleProposeChannel handles an inbound proposal to open a channel: it
// validates tx's addresses and canonical ordering, that the proposer funds
// only their own side (our balance in the proposal is zero), that the
// settling period matches policy, and the proposer's signature; it then
// countersigns and moves to StateOtherCreating (spec §4.2).
func (c *Counterparty) HandleProposeChannel(ctx context.Context, tx *chantypes.NewChannelTx) (*chantypes.NewChannelTx, error) {
	st, ok := c.state.(StateNew)
	if !ok {
		if _, open := c.state.(StateOpen); open {
			return nil, wrongState("propose_channel", c.state, "New")
		}
		return nil, TryAgainLater{Action: "propose_channel"}
	}

	if tx.Address0 != c.canonicalAddress(true, st.IAmZero) || tx.Address1 != c.canonicalAddress(false, st.IAmZero) {
		return nil, Forbidden{Message: "proposal addresses do not match this counterparty pair"}
	}
	if !chantypes.LessThan(tx.Address0, tx.Address1) {
		return nil, Forbidden{Message: "proposal violates canonical address ordering"}
	}

	var myBalance chantypes.U256
	if st.IAmZero {
		myBalance = tx.Balance0
	} else {
		myBalance = tx.Balance1
	}
	if !myBalance.Equal(chantypes.Zero) {
		return nil, Forbidden{Message: "proposal funds our side of the channel"}
	}
	if tx.SettlingPeriodLength != requiredSettlingPeriod {
		return nil, Forbidden{Message: "proposal's settling period does not match policy"}
	}

	theirSlot := *tx.SignatureSlot(!st.IAmZero)
	if theirSlot == nil {
		return nil, Forbidden{Message: "proposal is not signed by the proposer"}
	}
	signer, err := chantypes.Recover(tx.Digest(c.ContractAddr), *theirSlot)
	if err != nil {
		return nil, Error{Message: "recovering proposer signature: " + err.Error()}
	}
	if signer != c.PeerAddress {
		return nil, Forbidden{Message: "proposal signature does not recover to peer address"}
	}

	mySig, err := c.sign(tx.Digest(c.ContractAddr))
	if err != nil {
		return nil, Error{Message: "countersigning proposal: " + err.Error()}
	}
	*tx.SignatureSlot(st.IAmZero) = &mySig

	c.setState(StateOtherCreating{Tx: tx, IAmZero: st.IAmZero})
	return tx, nil
}

func (c *Counterparty) canonicalAddress(wantZero, iAmZero bool) chantypes.Address {
	if wantZero == iAmZero {
		return c.MyAddress
	}
	return c.PeerAddress
}

// HandleNotifyChannelOpened confirms, against the ledger, that the channel
// proposed in StateOtherCreating has actually opened, and moves to
// StateOpen (spec §4.2).
func (c *Counterparty) HandleNotifyChannelOpened(ctx context.Context, id chantypes.ChannelID) error {
	st, ok := c.state.(StateOtherCreating)
	if !ok {
		return wrongState("notify_channel_opened", c.state, "OtherCreating")
	}

	a0, a1 := c.canonicalAddress(true, st.IAmZero), c.canonicalAddress(false, st.IAmZero)
	confirmedID, found, err := c.Ledger.CheckForOpen(ctx, a0, a1)
	if err != nil {
		return Error{Message: "checking ledger for open: " + err.Error()}
	}
	if !found || confirmedID != id {
		return Forbidden{Message: "ledger does not confirm the claimed channel id"}
	}

	tx := st.Tx
	c.setState(StateOpen{Channel: chantypes.NewChannel(id, tx.Balance0, tx.Balance1, st.IAmZero)})
	return nil
}

// HandleProposeReDraw handles an inbound proposal to redraw an open
// channel: validates the proposer's signature and that old_balance_0/1
// match the live channel, countersigns, and moves to StateOtherReDrawing.
func (c *Counterparty) HandleProposeReDraw(ctx context.Context, tx *chantypes.ReDrawTx) (*chantypes.ReDrawTx, error) {
	st, ok := c.state.(StateOpen)
	if !ok {
		if _, isNew := c.state.(StateNew); isNew {
			return nil, wrongState("propose_re_draw", c.state, "Open")
		}
		return nil, TryAgainLater{Action: "propose_re_draw"}
	}
	ch := st.Channel

	if tx.ChannelID != ch.ID {
		return nil, Forbidden{Message: "redraw proposal targets a different channel"}
	}
	if !tx.OldBalance0.Equal(ch.Balance0) || !tx.OldBalance1.Equal(ch.Balance1) {
		return nil, Forbidden{Message: "redraw proposal's old balances do not match the live channel"}
	}
	if tx.SequenceNumber.Cmp(ch.SequenceNumber) <= 0 {
		return nil, UpdateTooOld{CorrectSeq: ch.SequenceNumber}
	}

	myOld := ch.MyBalance()
	var myNew chantypes.U256
	if ch.IAmZero {
		myNew = tx.NewBalance0
	} else {
		myNew = tx.NewBalance1
	}
	if !myNew.Equal(myOld) {
		return nil, Forbidden{Message: "redraw alters this account's own side of the balance"}
	}

	theirSlot := *tx.SignatureSlot(!ch.IAmZero)
	if theirSlot == nil {
		return nil, Forbidden{Message: "redraw proposal is not signed by the proposer"}
	}
	signer, err := chantypes.Recover(tx.Digest(c.ContractAddr), *theirSlot)
	if err != nil {
		return nil, Error{Message: "recovering proposer signature: " + err.Error()}
	}
	if signer != c.PeerAddress {
		return nil, Forbidden{Message: "redraw signature does not recover to peer address"}
	}

	mySig, err := c.sign(tx.Digest(c.ContractAddr))
	if err != nil {
		return nil, Error{Message: "countersigning redraw: " + err.Error()}
	}
	*tx.SignatureSlot(ch.IAmZero) = &mySig

	c.setState(StateOtherReDrawing{Channel: ch, Tx: tx})
	return tx, nil
}

// HandleNotifyReDraw confirms, against the ledger, that the redraw
// proposed in StateOtherReDrawing has landed at sequenceNumber, and
// returns to StateOpen with the channel's balances updated.
func (c *Counterparty) HandleNotifyReDraw(ctx context.Context, id chantypes.ChannelID, sequenceNumber chantypes.U256) error {
	st, ok := c.state.(StateOtherReDrawing)
	if !ok {
		return wrongState("notify_re_draw", c.state, "OtherReDrawing")
	}
	if id != st.Channel.ID || !sequenceNumber.Equal(st.Tx.SequenceNumber) {
		return Forbidden{Message: "notify_re_draw does not match the pending proposal"}
	}

	if err := c.Ledger.CheckForReDraw(ctx, id, sequenceNumber); err != nil {
		return Error{Message: "checking ledger for redraw: " + err.Error()}
	}

	ch := st.Channel
	ch.Balance0, ch.Balance1, ch.SequenceNumber = st.Tx.NewBalance0, st.Tx.NewBalance1, st.Tx.SequenceNumber
	c.setState(StateOpen{Channel: ch})
	return nil
}

// HandleReceivePayment handles an inbound signed UpdateTx: verifies the
// sender's signature, applies it via package channel, and accrues the
// increase (spec §4.1, §4.2). channel.ReceivePayment reports a
// stale/duplicate update as a non-nil sequence number rather than an error;
// this layer returns it as UpdateTooOld so the sender can retry.
func (c *Counterparty) HandleReceivePayment(ctx context.Context, update *chantypes.UpdateTx) error {
	st, ok := c.state.(StateOpen)
	if !ok {
		return wrongState("receive_payment", c.state, "Open")
	}
	ch := st.Channel

	theirSlot := *update.SignatureSlot(!ch.IAmZero)
	if theirSlot == nil {
		return Forbidden{Message: "update is not signed by the sender"}
	}
	signer, err := chantypes.Recover(update.Digest(c.ContractAddr), *theirSlot)
	if err != nil {
		return Error{Message: "recovering sender signature: " + err.Error()}
	}
	if signer != c.PeerAddress {
		return Forbidden{Message: "update signature does not recover to peer address"}
	}

	retrySeq, err := channel.ReceivePayment(ch, update)
	if err != nil {
		if f, ok := err.(channel.Forbidden); ok {
			return Forbidden{Message: f.Message}
		}
		return Error{Message: err.Error()}
	}
	if retrySeq != nil {
		return UpdateTooOld{CorrectSeq: *retrySeq}
	}
	return nil
}

// CheckAccrual returns and resets the channel's accumulated incoming
// payments (spec §4.1).
func (c *Counterparty) CheckAccrual() (chantypes.U256, error) {
	st, ok := c.state.(StateOpen)
	if !ok {
		return chantypes.Zero, wrongState("check_accrual", c.state, "Open")
	}
	return channel.CheckAccrual(st.Channel), nil
}

// CheckMyBalance returns the local account's current off-chain balance.
func (c *Counterparty) CheckMyBalance() (chantypes.U256, error) {
	st, ok := c.state.(StateOpen)
	if !ok {
		return chantypes.Zero, wrongState("check_my_balance", c.state, "Open")
	}
	return st.Channel.MyBalance(), nil
}

// Snapshot returns a read-only copy of the open channel, or ok=false if no
// channel is open yet (spec §4.2 supplement, GetState/GetChannel).
func (c *Counterparty) Snapshot() (snap chantypes.Snapshot, ok bool) {
	st, ok := c.state.(StateOpen)
	if !ok {
		return chantypes.Snapshot{}, false
	}
	return st.Channel.Snapshot(), true
}

// Close begins the settle/dispute flow. Not implemented: see SPEC_FULL.md §4.5.
func (c *Counterparty) Close(ctx context.Context) error {
	return ErrNotImplemented{What: "settle/dispute flow"}
}

const (
	defaultExpirationDelta = 40
	requiredSettlingPeriod = 5000
)
