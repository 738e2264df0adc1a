package chantypes

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/althea-net/guac/crypto"
)

// Fingerprinting (spec §4.3): every signed object's digest is the Keccak-256
// of a fixed-order byte concatenation: a domain-separation tag, the target
// ledger contract address, then each typed field in the order given below.
// U256 fields are 32-byte big-endian, addresses are their raw 20 bytes, and
// uint64 fields (block numbers, durations) are also encoded as 32-byte
// big-endian to match the contract's ABI-style word packing.

func uint64Word(v uint64) [32]byte {
	return U256From(v).Bytes32()
}

// Digest computes the canonical UpdateTx digest: tag "Update", then
// contract, channel_id, sequence_number, balance_0, balance_1.
func (u *UpdateTx) Digest(contract Address) common.Hash {
	b0 := u.Balance0.Bytes32()
	b1 := u.Balance1.Bytes32()
	seq := u.SequenceNumber.Bytes32()
	return crypto.Hash256(
		[]byte("Update"),
		contract.Bytes(),
		u.ChannelID[:],
		seq[:],
		b0[:],
		b1[:],
	)
}

// Digest computes the canonical NewChannelTx digest: tag "newChannel", then
// contract, address_0, address_1, balance_0, balance_1, expiration,
// settling_period_length.
func (tx *NewChannelTx) Digest(contract Address) common.Hash {
	b0 := tx.Balance0.Bytes32()
	b1 := tx.Balance1.Bytes32()
	exp := uint64Word(tx.Expiration)
	spl := uint64Word(tx.SettlingPeriodLength)
	return crypto.Hash256(
		[]byte("newChannel"),
		contract.Bytes(),
		tx.Address0.Bytes(),
		tx.Address1.Bytes(),
		b0[:],
		b1[:],
		exp[:],
		spl[:],
	)
}

// Digest computes the canonical ReDrawTx digest: tag "reDraw", then
// contract, channel_id, sequence_number, old_balance_0, old_balance_1,
// new_balance_0, new_balance_1, expiration.
func (tx *ReDrawTx) Digest(contract Address) common.Hash {
	oldB0 := tx.OldBalance0.Bytes32()
	oldB1 := tx.OldBalance1.Bytes32()
	newB0 := tx.NewBalance0.Bytes32()
	newB1 := tx.NewBalance1.Bytes32()
	seq := tx.SequenceNumber.Bytes32()
	exp := uint64Word(tx.Expiration)
	return crypto.Hash256(
		[]byte("reDraw"),
		contract.Bytes(),
		tx.ChannelID[:],
		seq[:],
		oldB0[:],
		oldB1[:],
		newB0[:],
		newB1[:],
		exp[:],
	)
}

// Sign signs digest with key and returns the resulting Signature.
func Sign(digest common.Hash, key *crypto.PrivateKey) (Signature, error) {
	raw, err := crypto.Sign(digest, key)
	if err != nil {
		return Signature{}, err
	}
	return Signature(raw), nil
}

// Recover recovers the signer address from sig over digest.
func Recover(digest common.Hash, sig Signature) (Address, error) {
	return crypto.Recover(digest, [65]byte(sig))
}
