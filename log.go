package main

import (
	"os"

	"github.com/btcsuite/btclog"

	"github.com/althea-net/guac/counterparty"
	"github.com/althea-net/guac/peerapi"
	"github.com/althea-net/guac/store"
)

// subsystem loggers, one per package that wants to log, wired up in
// init the way the teacher's log.go sets up ltndLog/srvrLog/rpcsLog
// against a single shared backend.
var (
	backendLog = btclog.NewBackend(os.Stdout)

	guacLog  = backendLog.Logger("GUAC")
	peerLog  = backendLog.Logger("PEER")
	storeLog = backendLog.Logger("STOR")
	rpcLog   = backendLog.Logger("RPCS")
)

// subsystemLoggers maps each subsystem's log tag to its logger, so
// setLogLevels can apply the --loglevel setting to every subsystem.
var subsystemLoggers = map[string]btclog.Logger{
	"GUAC": guacLog,
	"PEER": peerLog,
	"STOR": storeLog,
	"RPCS": rpcLog,
}

func init() {
	counterparty.UseLogger(peerLog)
	peerapi.UseLogger(peerLog)
	store.UseLogger(storeLog)
}

// setLogLevel sets the log level of the subsystem identified by subsystemID
// to logLevel, doing nothing if the subsystem is unknown.
func setLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return
	}
	logger.SetLevel(level)
}

// setLogLevels sets the log level for every known subsystem. Invalid
// subsystems are ignored.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}
