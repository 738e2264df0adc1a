package counterparty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/crypto"
	"github.com/althea-net/guac/ledger"
)

// directClient routes PeerClient calls straight into a peer Counterparty's
// Handle* methods, standing in for peerapi.Client + peerapi.Server without
// going over the network — the same role htlcswitch's mockServer plays for
// lnd's peer tests.
type directClient struct {
	peer *Counterparty
}

func (d *directClient) ProposeChannel(ctx context.Context, tx *chantypes.NewChannelTx) (*chantypes.NewChannelTx, error) {
	return d.peer.HandleProposeChannel(ctx, tx)
}

func (d *directClient) ProposeReDraw(ctx context.Context, tx *chantypes.ReDrawTx) (*chantypes.ReDrawTx, error) {
	return d.peer.HandleProposeReDraw(ctx, tx)
}

func (d *directClient) NotifyChannelOpened(ctx context.Context, id chantypes.ChannelID) error {
	return d.peer.HandleNotifyChannelOpened(ctx, id)
}

func (d *directClient) NotifyReDraw(ctx context.Context, id chantypes.ChannelID, seq chantypes.U256) error {
	return d.peer.HandleNotifyReDraw(ctx, id, seq)
}

func (d *directClient) ReceivePayment(ctx context.Context, update *chantypes.UpdateTx) error {
	return d.peer.HandleReceivePayment(ctx, update)
}

// testPair wires two Counterparty values to each other over a shared
// Simulated ledger, returning (lower-address, higher-address) so the
// caller always knows which one holds the address_0 role.
func testPair(t *testing.T) (a, b *Counterparty) {
	t.Helper()

	keyA, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyB, err := crypto.GenerateKey()
	require.NoError(t, err)

	addrA := crypto.AddressFromPrivateKey(keyA)
	addrB := crypto.AddressFromPrivateKey(keyB)
	contract := chantypes.Address{0xCC}

	sim := ledger.NewSimulated(100)

	a = New(addrA, addrB, contract, keyA, sim, nil)
	b = New(addrB, addrA, contract, keyB, sim, nil)
	a.Peer = &directClient{peer: b}
	b.Peer = &directClient{peer: a}

	if !chantypes.LessThan(addrA, addrB) {
		a, b = b, a
	}
	return a, b
}

func TestFillChannelOpensBothSides(t *testing.T) {
	a, b := testPair(t)

	err := a.FillChannel(context.Background(), chantypes.U256From(1000))
	require.NoError(t, err)

	require.Equal(t, KindOpen, a.State().Kind())
	require.Equal(t, KindOpen, b.State().Kind())

	snapA, ok := a.Snapshot()
	require.True(t, ok)
	snapB, ok := b.Snapshot()
	require.True(t, ok)
	require.Equal(t, snapA.ID, snapB.ID)
}

func TestMakePaymentMovesBalanceAcrossBothSides(t *testing.T) {
	a, b := testPair(t)
	require.NoError(t, a.FillChannel(context.Background(), chantypes.U256From(1000)))

	require.NoError(t, a.MakePayment(context.Background(), chantypes.U256From(100)))

	aBalance, err := a.CheckMyBalance()
	require.NoError(t, err)
	require.Equal(t, chantypes.U256From(900), aBalance)

	bBalance, err := b.CheckMyBalance()
	require.NoError(t, err)
	require.Equal(t, chantypes.U256From(100), bBalance)

	accrual, err := b.CheckAccrual()
	require.NoError(t, err)
	require.Equal(t, chantypes.U256From(100), accrual)

	// accrual resets
	accrual2, err := b.CheckAccrual()
	require.NoError(t, err)
	require.True(t, accrual2.Equal(chantypes.Zero))
}

func TestMakePaymentBeforeOpenIsWrongState(t *testing.T) {
	a, _ := testPair(t)

	err := a.MakePayment(context.Background(), chantypes.U256From(1))
	require.ErrorAs(t, err, &WrongState{})
}

func TestFillChannelWhileInFlightIsTryAgainLater(t *testing.T) {
	a, _ := testPair(t)

	for _, st := range []State{
		StateCreating{IAmZero: true},
		StateOtherCreating{IAmZero: true},
		StateReDrawing{Channel: chantypes.NewChannel(chantypes.ChannelID{1}, chantypes.Zero, chantypes.Zero, true)},
		StateOtherReDrawing{Channel: chantypes.NewChannel(chantypes.ChannelID{1}, chantypes.Zero, chantypes.Zero, true)},
	} {
		a.state = st
		err := a.FillChannel(context.Background(), chantypes.U256From(1))
		require.ErrorAs(t, err, &TryAgainLater{}, "state %s", st.Kind())
	}
}

func TestWithdrawReducesBalance(t *testing.T) {
	a, b := testPair(t)
	require.NoError(t, a.FillChannel(context.Background(), chantypes.U256From(1000)))

	require.NoError(t, a.Withdraw(context.Background(), chantypes.U256From(200)))

	balance, err := a.CheckMyBalance()
	require.NoError(t, err)
	require.Equal(t, chantypes.U256From(800), balance)

	bBalance, err := b.CheckMyBalance()
	require.NoError(t, err)
	require.Equal(t, chantypes.U256From(0), bBalance)
}

func TestFillChannelAgainRedraws(t *testing.T) {
	a, _ := testPair(t)
	require.NoError(t, a.FillChannel(context.Background(), chantypes.U256From(1000)))
	require.NoError(t, a.FillChannel(context.Background(), chantypes.U256From(500)))

	balance, err := a.CheckMyBalance()
	require.NoError(t, err)
	require.Equal(t, chantypes.U256From(1500), balance)
}

// signedNewChannelTx builds a NewChannelTx from b's perspective (b proposing
// to a, so b's slot is Signature1) and signs it with b's key.
func signedNewChannelTx(t *testing.T, a, b *Counterparty, balance0, balance1 chantypes.U256, settlingPeriod uint64) *chantypes.NewChannelTx {
	t.Helper()
	tx := &chantypes.NewChannelTx{
		Address0:             a.MyAddress,
		Address1:             b.MyAddress,
		Balance0:             balance0,
		Balance1:             balance1,
		Expiration:           140,
		SettlingPeriodLength: settlingPeriod,
	}
	sig, err := chantypes.Sign(tx.Digest(a.ContractAddr), b.Key)
	require.NoError(t, err)
	*tx.SignatureSlot(false) = &sig
	return tx
}

func TestHandleProposeChannelRejectsFundingOurSide(t *testing.T) {
	a, b := testPair(t)

	tx := signedNewChannelTx(t, a, b, chantypes.U256From(1), chantypes.U256From(100), 5000)
	_, err := a.HandleProposeChannel(context.Background(), tx)
	require.ErrorAs(t, err, &Forbidden{})
}

func TestHandleProposeChannelRejectsWrongSettlingPeriod(t *testing.T) {
	a, b := testPair(t)

	tx := signedNewChannelTx(t, a, b, chantypes.Zero, chantypes.U256From(100), 1000)
	_, err := a.HandleProposeChannel(context.Background(), tx)
	require.ErrorAs(t, err, &Forbidden{})
}

func TestHandleProposeChannelAcceptsCompliantProposal(t *testing.T) {
	a, b := testPair(t)

	tx := signedNewChannelTx(t, a, b, chantypes.Zero, chantypes.U256From(100), 5000)
	countersigned, err := a.HandleProposeChannel(context.Background(), tx)
	require.NoError(t, err)
	require.NotNil(t, countersigned.Signature0)
	require.Equal(t, KindOtherCreating, a.State().Kind())
}

func TestHandleProposeReDrawRejectsIncreasingOurBalance(t *testing.T) {
	a, b := testPair(t)
	require.NoError(t, a.FillChannel(context.Background(), chantypes.U256From(1000)))

	st, ok := a.State().(StateOpen)
	require.True(t, ok)
	ch := st.Channel

	// Proposer (b) claims to deposit only on their own side, but also
	// bumps a's (our) balance — not altering only the proposer's side.
	tx := &chantypes.ReDrawTx{
		ChannelID:      ch.ID,
		SequenceNumber: ch.SequenceNumber.Add(chantypes.U256From(1)),
		OldBalance0:    ch.Balance0,
		OldBalance1:    ch.Balance1,
		NewBalance0:    ch.Balance0.Add(chantypes.U256From(1)),
		NewBalance1:    ch.Balance1.Add(chantypes.U256From(500)),
		Expiration:     140,
	}
	sig, err := chantypes.Sign(tx.Digest(a.ContractAddr), b.Key)
	require.NoError(t, err)
	*tx.SignatureSlot(false) = &sig

	_, err = a.HandleProposeReDraw(context.Background(), tx)
	require.ErrorAs(t, err, &Forbidden{})
}
