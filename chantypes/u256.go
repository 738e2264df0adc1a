package chantypes

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// U256 is a 256-bit non-negative integer, the unit of all on-chain and
// off-chain balances in this system. It wraps uint256.Int the way swarm's
// swap/int256 package wraps math/big.Int: a thin value type exposing only the
// arithmetic the protocol needs. Sub is checked for underflow; Add is not
// checked for overflow and wraps modulo 2^256.
//
// The zero value is a valid U256 equal to zero.
type U256 struct {
	v uint256.Int
}

// Zero is the additive identity.
var Zero = U256{}

// U256From builds a U256 from a uint64.
func U256From(v uint64) U256 {
	var u U256
	u.v.SetUint64(v)
	return u
}

// U256FromBytes builds a U256 from the big-endian bytes of b, which must fit
// in 32 bytes.
func U256FromBytes(b []byte) (U256, error) {
	var u U256
	if len(b) > 32 {
		return u, fmt.Errorf("chantypes: u256 overflow: %d bytes", len(b))
	}
	u.v.SetBytes(b)
	return u, nil
}

// Bytes32 returns the 32-byte big-endian encoding used by the cryptographic
// fingerprint (spec §4.3).
func (u U256) Bytes32() [32]byte {
	return u.v.Bytes32()
}

// Uint64 returns the value truncated to 64 bits; callers must only use this
// where the domain guarantees the value fits (e.g. test fixtures).
func (u U256) Uint64() uint64 {
	return u.v.Uint64()
}

// Add returns u + other. Balances are conserved by construction elsewhere,
// so overflow is not guarded against here; U256 cannot exceed 2^256 in any
// path the protocol exercises given the channel invariant
// balance_0 + balance_1 == total_deposit.
func (u U256) Add(other U256) U256 {
	var out U256
	out.v.Add(&u.v, &other.v)
	return out
}

// ErrUnderflow is returned by Sub when the subtraction would produce a
// negative result. Domain packages (e.g. channel) translate this into their
// own richer error taxonomy (spec §7's NotEnough) rather than surfacing it
// directly.
var ErrUnderflow = fmt.Errorf("chantypes: u256 underflow")

// Sub returns u - other, or ErrUnderflow if it would underflow.
func (u U256) Sub(other U256) (U256, error) {
	if u.Cmp(other) < 0 {
		return Zero, ErrUnderflow
	}
	var out U256
	out.v.Sub(&u.v, &other.v)
	return out, nil
}

// Cmp returns -1, 0, or 1 as u is less than, equal to, or greater than other.
func (u U256) Cmp(other U256) int {
	return u.v.Cmp(&other.v)
}

// Equal reports whether u == other.
func (u U256) Equal(other U256) bool {
	return u.Cmp(other) == 0
}

// GreaterThan reports whether u > other.
func (u U256) GreaterThan(other U256) bool {
	return u.Cmp(other) > 0
}

// String renders the decimal value.
func (u U256) String() string {
	return u.v.Dec()
}

// MarshalJSON renders U256 as a decimal string, matching the wire contract
// of spec §6 (JSON payloads carrying 32-byte-range integers as strings to
// avoid float truncation in non-Go peers).
func (u U256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.v.Dec())
}

// UnmarshalJSON parses a decimal string produced by MarshalJSON.
func (u *U256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := U256FromDecimal(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// U256FromDecimal parses the decimal string form produced by String/
// MarshalJSON, used outside JSON unmarshaling by callers that carry a
// sequence number as a bare string field (e.g. peerapi's error envelope).
func U256FromDecimal(s string) (U256, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Zero, fmt.Errorf("chantypes: parse u256 %q: %w", s, err)
	}
	return U256{v: *v}, nil
}
