package channel

import "fmt"

// NotEnough is returned by MakePayment when the payer's current balance is
// less than the requested payment amount (spec §7).
type NotEnough struct {
	What string
}

func (e NotEnough) Error() string {
	return fmt.Sprintf("not enough balance: %s", e.What)
}

// Forbidden is returned by ReceivePayment when an incoming update violates
// an invariant a well-behaved peer would never violate: the conserved total
// changed, or the receiver's own balance decreased (spec §4.1, §7).
type Forbidden struct {
	Message string
}

func (e Forbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Message)
}
