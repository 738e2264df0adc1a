package channel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/althea-net/guac/chantypes"
)

func newTestChannel(balance0, balance1 uint64, iAmZero bool) *chantypes.Channel {
	return chantypes.NewChannel(chantypes.ChannelID{1}, chantypes.U256From(balance0), chantypes.U256From(balance1), iAmZero)
}

func TestMakePaymentMovesBalance(t *testing.T) {
	ch := newTestChannel(100, 0, true)

	update, err := MakePayment(ch, chantypes.U256From(30), nil)
	require.NoError(t, err)

	require.Equal(t, chantypes.U256From(70), ch.Balance0)
	require.Equal(t, chantypes.U256From(30), ch.Balance1)
	require.Equal(t, chantypes.U256From(1), ch.SequenceNumber)
	require.Equal(t, chantypes.U256From(70), update.Balance0)
	require.Equal(t, chantypes.U256From(30), update.Balance1)
}

func TestMakePaymentInsufficientBalance(t *testing.T) {
	ch := newTestChannel(10, 0, true)

	_, err := MakePayment(ch, chantypes.U256From(30), nil)
	require.ErrorAs(t, err, &NotEnough{})
}

func TestReceivePaymentAccrues(t *testing.T) {
	ch := newTestChannel(100, 0, false) // I am account 1, balance 0

	update := &chantypes.UpdateTx{
		ChannelID:      ch.ID,
		SequenceNumber: chantypes.U256From(1),
		Balance0:       chantypes.U256From(70),
		Balance1:       chantypes.U256From(30),
	}

	retry, err := ReceivePayment(ch, update)
	require.NoError(t, err)
	require.Nil(t, retry)
	require.Equal(t, chantypes.U256From(30), ch.Balance1)
	require.Equal(t, chantypes.U256From(30), ch.Accrual)
}

func TestReceivePaymentStaleIsNotAnError(t *testing.T) {
	ch := newTestChannel(70, 30, false)
	ch.SequenceNumber = chantypes.U256From(5)

	stale := &chantypes.UpdateTx{
		ChannelID:      ch.ID,
		SequenceNumber: chantypes.U256From(3),
		Balance0:       chantypes.U256From(60),
		Balance1:       chantypes.U256From(40),
	}

	retry, err := ReceivePayment(ch, stale)
	require.NoError(t, err)
	require.NotNil(t, retry)
	require.Equal(t, chantypes.U256From(5), *retry)
	// balances unaffected
	require.Equal(t, chantypes.U256From(70), ch.Balance0)
}

func TestReceivePaymentRejectsChangedTotal(t *testing.T) {
	ch := newTestChannel(70, 30, false)

	bad := &chantypes.UpdateTx{
		ChannelID:      ch.ID,
		SequenceNumber: chantypes.U256From(1),
		Balance0:       chantypes.U256From(70),
		Balance1:       chantypes.U256From(40), // total changed from 100 to 110
	}

	_, err := ReceivePayment(ch, bad)
	require.ErrorAs(t, err, &Forbidden{})
}

func TestReceivePaymentRejectsDecreasedOwnBalance(t *testing.T) {
	ch := newTestChannel(70, 30, false) // I am account 1

	bad := &chantypes.UpdateTx{
		ChannelID:      ch.ID,
		SequenceNumber: chantypes.U256From(1),
		Balance0:       chantypes.U256From(90),
		Balance1:       chantypes.U256From(10), // my balance decreased
	}

	_, err := ReceivePayment(ch, bad)
	require.ErrorAs(t, err, &Forbidden{})
}

func TestCheckAccrualResets(t *testing.T) {
	ch := newTestChannel(100, 0, false)
	ch.Accrual = chantypes.U256From(42)

	first := CheckAccrual(ch)
	require.Equal(t, chantypes.U256From(42), first)

	second := CheckAccrual(ch)
	require.True(t, second.Equal(chantypes.Zero))
}
