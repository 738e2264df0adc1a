package chantypes

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte account identifier with a total order, used
// deterministically to pick which peer is "address_0" in a channel (the
// lower address always takes the address_0 / i_am_0 role, see
// counterparty.RoleIsZero).
type Address = common.Address

// ZeroAddress is the conventional empty address.
var ZeroAddress = common.Address{}

// LessThan reports whether a sorts before b under the canonical ordering
// used to assign channel roles (see counterparty.RoleIsZero). The ordering
// does not settle simultaneous opens: a propose_channel that arrives while
// this side's own proposal is in flight is refused with
// counterparty.TryAgainLater, whichever address is lower.
func LessThan(a, b Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Signature is a 65-byte recoverable ECDSA signature ([R || S || V]).
type Signature [65]byte

// IsZero reports whether the signature slot has not been populated yet.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// MarshalJSON renders the signature as a hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(common.Bytes2Hex(s[:]))
}

// UnmarshalJSON parses a hex-encoded signature.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	raw := common.FromHex(hexStr)
	if len(raw) != len(s) {
		return errInvalidSignatureLength(len(raw))
	}
	copy(s[:], raw)
	return nil
}
