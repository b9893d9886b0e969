package web

import "github.com/btcsuite/btclog/v2"

// Subsystem is the logging subsystem tag for this package.
const Subsystem = "WEBS"

// log is the package-level logger, disabled until the hosting application
// calls UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
