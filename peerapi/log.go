package peerapi

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger sets the package-wide logger. Neither Server nor Client logs
// through it.
func UseLogger(logger btclog.Logger) {
	log = logger
}
