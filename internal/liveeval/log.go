package liveeval

import "github.com/btcsuite/btclog/v2"

// Subsystem is the logging subsystem tag for this package, used when
// wiring it into a shared multi-subsystem logger at the application's
// entry point.
const Subsystem = "LEVL"

// log is the package-level logger, disabled until the hosting application
// calls UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
