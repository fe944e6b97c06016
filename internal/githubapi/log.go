package githubapi

import (
	btclog "github.com/btcsuite/btclog/v2"
)

// Subsystem is the logging subsystem tag for this package.
const Subsystem = "GHUB"

// log is a logger that is initialized to be disabled. Package output is
// silenced until UseLogger is called during process setup.
var log = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}
