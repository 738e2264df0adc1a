package chantypes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/althea-net/guac/crypto"
)

func TestUpdateTxSignRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.AddressFromPrivateKey(key)

	contract := Address{1}
	update := &UpdateTx{
		ChannelID:      ChannelID{2},
		SequenceNumber: U256From(5),
		Balance0:       U256From(10),
		Balance1:       U256From(20),
	}

	digest := update.Digest(contract)
	sig, err := Sign(digest, key)
	require.NoError(t, err)

	recovered, err := Recover(digest, sig)
	require.NoError(t, err)
	require.Equal(t, addr, recovered)
}

func TestDigestChangesWithFields(t *testing.T) {
	contract := Address{1}
	base := &UpdateTx{ChannelID: ChannelID{2}, SequenceNumber: U256From(1), Balance0: U256From(5), Balance1: U256From(5)}
	changed := &UpdateTx{ChannelID: ChannelID{2}, SequenceNumber: U256From(2), Balance0: U256From(5), Balance1: U256From(5)}

	require.NotEqual(t, base.Digest(contract), changed.Digest(contract))
}

func TestNewChannelTxDigestDistinctFromReDraw(t *testing.T) {
	contract := Address{1}
	nc := &NewChannelTx{Address0: Address{1}, Address1: Address{2}, Balance0: U256From(1), Balance1: U256From(1)}
	rd := &ReDrawTx{ChannelID: ChannelID{1}, SequenceNumber: U256From(1), NewBalance0: U256From(1), NewBalance1: U256From(1)}

	require.NotEqual(t, nc.Digest(contract), rd.Digest(contract))
}
