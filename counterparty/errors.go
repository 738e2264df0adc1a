package counterparty

import (
	"fmt"

	"github.com/althea-net/guac/chantypes"
)

// TryAgainLater indicates an in-flight operation already holds this
// counterparty in an intermediate state; the caller should retry once that
// operation completes (spec §7).
type TryAgainLater struct {
	Action string
}

func (e TryAgainLater) Error() string {
	return fmt.Sprintf("%s: counterparty is mid-transition, try again later", e.Action)
}

// WrongState is returned when an action is attempted from a state the
// lifecycle table (spec §4.2) does not permit it from.
type WrongState struct {
	Action  string
	Current string
	Correct string
}

func (e WrongState) Error() string {
	return fmt.Sprintf("%s: wrong state %q, expected %q", e.Action, e.Current, e.Correct)
}

// Forbidden is returned when a peer's proposal or notification fails
// validation: a bad signature, non-canonical balances, a disallowed
// settling period, or a redraw that alters the validator's own side of the
// balance (spec §4.2, §7).
type Forbidden struct {
	Message string
}

func (e Forbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Message)
}

// UpdateTooOld carries the sequence number the receiver is actually at, so
// the sender can retry exactly once with the corrected sequence (spec §7).
type UpdateTooOld struct {
	CorrectSeq chantypes.U256
}

func (e UpdateTooOld) Error() string {
	return fmt.Sprintf("update too old, correct sequence is %s", e.CorrectSeq)
}

// Error wraps an unexpected failure: signature recovery failure, a peer
// lying about addresses, or the ledger refusing a transaction (spec §7).
type Error struct {
	Message string
}

func (e Error) Error() string {
	return e.Message
}

// ErrNotImplemented marks a deliberately unimplemented operation. The
// settle/dispute flow is sketched in the original source but, per spec §1
// and §9, has no coherent design and is out of scope; Counterparty.Close
// returns this rather than a half-built implementation.
type ErrNotImplemented struct {
	What string
}

func (e ErrNotImplemented) Error() string {
	return fmt.Sprintf("not implemented: %s", e.What)
}
