package actor

import "github.com/btcsuite/btclog/v2"

// log is the package-level logger used by the actor runtime. It defaults to
// the disabled logger so the package is silent until the hosting application
// wires in a real one via UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by the actor package. Callers
// should invoke this once during application startup, before any actors are
// started.
func UseLogger(logger btclog.Logger) {
	log = logger
}
