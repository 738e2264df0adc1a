package counterparty

import "github.com/btcsuite/btclog"

// log is this package's subsystem logger. It is disabled until the caller
// wires a real one in via UseLogger, the way btcsuite packages default to
// btclog.Disabled before main's log.go calls in.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by state transitions.
func UseLogger(logger btclog.Logger) {
	log = logger
}
