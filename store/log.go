package store

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger sets the package-wide logger. No code in package store logs
// through it.
func UseLogger(logger btclog.Logger) {
	log = logger
}
