package ledger

// Dial constructs the Client guacd uses at startup from a configured
// endpoint. The real settlement contract binding (ABI, transaction
// construction, gas estimation) is explicitly out of scope (spec §1: "the
// ledger contract internals" are a Non-goal) — guac.go's newGuac calls this to
// obtain a Client without depending on a concrete implementation, and
// today that always returns a Simulated, in-memory ledger. A real
// deployment would replace Dial's body with a go-ethereum
// ethclient.Dial(rpcURL) plus a bound contract instance satisfying Client,
// without any caller of Dial needing to change.
func Dial(rpcURL string) (Client, error) {
	return NewSimulated(0), nil
}
