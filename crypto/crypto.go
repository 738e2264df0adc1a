// Package crypto provides the signing and recovery primitives used to
// authenticate wire objects exchanged between counterparties. Every signed
// object in this system is authenticated the same way: a Keccak-256 digest
// over a fixed-order byte encoding (see the Digest methods in package
// chantypes) is signed with the
// local account's secret key, and the peer recovers the signer's address
// from the signature and the digest it computes independently.
package crypto

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKey is the local account's secret signing key.
type PrivateKey = ecdsa.PrivateKey

// Hash256 returns the Keccak-256 digest of data.
func Hash256(data ...[]byte) common.Hash {
	return crypto.Keccak256Hash(data...)
}

// Sign produces a 65-byte recoverable signature over digest using key.
func Sign(digest common.Hash, key *PrivateKey) ([65]byte, error) {
	var sig [65]byte

	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return sig, fmt.Errorf("crypto: sign digest: %w", err)
	}
	copy(sig[:], raw)

	return sig, nil
}

// Recover recovers the address that produced sig over digest.
func Recover(digest common.Hash, sig [65]byte) (common.Address, error) {
	pub, err := crypto.SigToPub(digest.Bytes(), sig[:])
	if err != nil {
		return common.Address{}, fmt.Errorf("crypto: recover signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// AddressFromPrivateKey derives the account address that corresponds to key.
func AddressFromPrivateKey(key *PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// GenerateKey creates a fresh secp256k1 private key. It is used only by
// tests and local tooling; production keys are sourced from wallet key
// management, which is explicitly out of scope for this system.
func GenerateKey() (*PrivateKey, error) {
	return crypto.GenerateKey()
}
